package hierarchy

import (
	"math"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

func weights(edges []*graph.Edge) []float64 {
	out := make([]float64, 0, len(edges))
	for _, e := range edges {
		if e.Weight != nil {
			out = append(out, *e.Weight)
		}
	}
	return out
}

// mean returns the arithmetic mean of vs, or 0 for an empty slice.
func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// variance returns the population variance of vs.
func variance(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	m := mean(vs)
	var sum float64
	for _, v := range vs {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vs))
}

// intra returns the mean of internal-edge weights within members.
func intra(idx *edgeIndex, members map[string]bool) float64 {
	return mean(weights(idx.internalEdges(members)))
}

// inter returns the mean weight of edges with one endpoint in a and one in b.
func inter(idx *edgeIndex, a, b map[string]bool) float64 {
	var ws []float64
	for _, e := range idx.all {
		if e.Weight == nil {
			continue
		}
		if (a[e.SourceID] && b[e.TargetID]) || (a[e.TargetID] && b[e.SourceID]) {
			ws = append(ws, *e.Weight)
		}
	}
	return mean(ws)
}

// cohesionRatio computes (intra(A)+intra(B)) / (2*inter(A,B)). A split is
// valid for this pair iff the returned ratio exceeds CohesionThreshold.
// When inter is zero, the pair is trivially cohesive (infinite ratio).
func cohesionRatio(idx *edgeIndex, a, b map[string]bool) float64 {
	interAB := inter(idx, a, b)
	if interAB == 0 {
		return math.Inf(1)
	}
	return (intra(idx, a) + intra(idx, b)) / (2 * interAB)
}

// quality scores a candidate split: n * min(sizes)/mean(sizes).
func quality(sizes []int) float64 {
	if len(sizes) == 0 {
		return 0
	}
	minS, sum := sizes[0], 0
	for _, s := range sizes {
		if s < minS {
			minS = s
		}
		sum += s
	}
	n := float64(len(sizes))
	meanS := float64(sum) / n
	if meanS == 0 {
		return 0
	}
	return n * float64(minS) / meanS
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
