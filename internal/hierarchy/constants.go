package hierarchy

// EdgeFloor is the lower bound on edges fed into the dendrogram (spec §4.7).
const EdgeFloor = 0.30

// CutRangeLo and CutRangeHi bound the similarity range the root recursion
// starts with.
const (
	CutRangeLo = 0.30
	CutRangeHi = 1.00
)

// TightThreshold is the variance of internal-edge weights below which a
// group is considered already cohesive and becomes a leaf.
const TightThreshold = 0.001

// CohesionThreshold is the minimum intra/inter ratio a candidate split must
// exceed for every sibling pair.
const CohesionThreshold = 1.2

// DeltaMin is the minimum gap enforced between successive cut thresholds,
// and the tolerance band used for bridge detection.
const DeltaMin = 0.03

// MinSize returns the tiered minimum group size at recursion depth d.
func MinSize(d int) int {
	switch {
	case d <= 2:
		return 5
	case d <= 4:
		return 10
	case d <= 6:
		return 20
	case d == 7:
		return 40
	default:
		return 100
	}
}

// MinRatio returns the minimum child-size balance ratio required of a
// split, tiered by the parent group's size.
func MinRatio(parentSize int) float64 {
	switch {
	case parentSize >= 500:
		return 0.05
	case parentSize >= 200:
		return 0.08
	case parentSize >= 50:
		return 0.12
	default:
		return 0.25
	}
}
