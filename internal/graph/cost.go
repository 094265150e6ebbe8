package graph

// TypePriority returns p(t) ∈ [0,1] per spec §4.3.
func TypePriority(t EdgeType) float64 {
	switch t {
	case EdgeContradicts, EdgeFlags:
		return 1.0
	case EdgeDerivesFrom, EdgeSummarizes, EdgeResolves, EdgeSupersedes:
		return 0.7
	case EdgeSupports, EdgeQuestions, EdgePrerequisite, EdgeEvolvedFrom:
		return 0.5
	default:
		return 0.3
	}
}

// DefaultConfidence is used by the cost model when an edge carries no
// explicit confidence value.
const DefaultConfidence = 0.5

// structuralFloor is the minimum cost assigned to any structural edge so
// that same-file/hierarchy proximity never swamps a traversal budget ahead
// of weak-but-semantic edges.
const structuralFloor = 0.4

// minBase is the absolute floor under which no edge cost may fall.
const minBase = 0.001

// Cost computes the Dijkstra traversal cost of e per spec §4.3:
//
//	base = max((1 − c) · (1 − 0.5·p(type(e))), 0.001)
//	cost = s(type(e)) ? max(base, 0.4) : base
func Cost(e *Edge) float64 {
	c := DefaultConfidence
	if e.Confidence != nil {
		c = *e.Confidence
	}
	p := TypePriority(e.Type)
	base := (1 - c) * (1 - 0.5*p)
	if base < minBase {
		base = minBase
	}
	if IsStructural(e.Type) {
		if base < structuralFloor {
			return structuralFloor
		}
	}
	return base
}

// RankScore computes the additive top-K edge ranker score of spec §4.3:
//
//	0.3·recency + 0.3·confidence + 0.4·p(type)
//
// recency and confidence must already be normalized into [0,1] by the
// caller (see internal/ranker).
func RankScore(recency, confidence float64, t EdgeType) float64 {
	return 0.3*recency + 0.3*confidence + 0.4*TypePriority(t)
}
