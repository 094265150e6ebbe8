// Package ranker implements the top-K edge ranker (spec §4.3): an additive
// score over recency, confidence, and type priority, distinct from the
// multiplicative Dijkstra cost model in internal/graph.
package ranker

import (
	"sort"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

// Scored pairs an edge with its computed rank score.
type Scored struct {
	Edge  *graph.Edge
	Score float64
}

// TopK scores every edge touching a node against its siblings and returns
// the k highest, ties broken by edge id ascending for determinism.
//
// recency normalizes each edge's CreatedAt against the min/max CreatedAt
// across edges; when every edge shares the same timestamp (min == max)
// recency is 1 for all of them, since there is nothing to distinguish them
// by age.
func TopK(edges []*graph.Edge, k int) []Scored {
	if len(edges) == 0 {
		return nil
	}

	minT, maxT := edges[0].CreatedAt, edges[0].CreatedAt
	for _, e := range edges[1:] {
		if e.CreatedAt.Before(minT) {
			minT = e.CreatedAt
		}
		if e.CreatedAt.After(maxT) {
			maxT = e.CreatedAt
		}
	}
	span := maxT.Sub(minT).Seconds()

	scored := make([]Scored, len(edges))
	for i, e := range edges {
		recency := 1.0
		if span > 0 {
			recency = e.CreatedAt.Sub(minT).Seconds() / span
		}
		confidence := graph.DefaultConfidence
		if e.Confidence != nil {
			confidence = *e.Confidence
		}
		scored[i] = Scored{Edge: e, Score: graph.RankScore(recency, confidence, e.Type)}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Edge.ID < scored[j].Edge.ID
	})

	if k > 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored
}
