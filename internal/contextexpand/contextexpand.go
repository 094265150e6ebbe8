// Package contextexpand implements the semantic neighborhood retriever
// (spec §4.8): a single-source Dijkstra search over a graph.Snapshot using
// the shared edge cost model, bounded by a result budget, a hop cap, and a
// cost cap.
package contextexpand

import (
	"container/heap"
	"context"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

// Options configures one Expand call.
type Options struct {
	Budget          int                      // N: max results returned, default 20
	MaxHops         int                      // H: max edges from source, default 6
	MaxCost         float64                  // C: max cumulative distance, default 3.0
	EdgeTypeAllow   map[graph.EdgeType]bool  // nil/empty means allow all
	EdgeTypeExclude map[graph.EdgeType]bool
	NotSuperseded   bool // skip edges with SupersededBy set
	ItemsOnly       bool // only items (not groups) appear in results; groups stay traversable
}

// DefaultOptions returns spec §4.8's stated defaults.
func DefaultOptions() Options {
	return Options{Budget: 20, MaxHops: 6, MaxCost: 3.0}
}

// PathStep is one hop of a reconstructed path, the edge used to reach NodeID
// from the previous step.
type PathStep struct {
	NodeID   string
	EdgeID   string
	EdgeType graph.EdgeType
}

// Result is one ranked neighborhood hit.
type Result struct {
	Rank      int
	NodeID    string
	Distance  float64
	Relevance float64
	Hops      int
	Path      []PathStep
}

type prevEntry struct {
	nodeID   string
	edgeID   string
	edgeType graph.EdgeType
}

// heapEntry is a (distance, node_id) pair; the heap orders ascending by
// distance and breaks ties by node id for deterministic results (spec §4.8).
type heapEntry struct {
	dist float64
	id   string
}

type entryHeap []heapEntry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].id < h[j].id
}
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(heapEntry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Expand runs Dijkstra from sourceID over snap, respecting opts, and returns
// up to opts.Budget ranked results. ctx is checked on every heap pop;
// cancellation returns whatever results have accumulated so far (spec §4.8:
// "partial results are valid").
func Expand(ctx context.Context, snap *graph.Snapshot, sourceID string, opts Options) []Result {
	if opts.Budget <= 0 {
		opts.Budget = 20
	}
	if opts.MaxHops <= 0 {
		opts.MaxHops = 6
	}
	if opts.MaxCost <= 0 {
		opts.MaxCost = 3.0
	}

	dist := map[string]float64{sourceID: 0}
	hops := map[string]int{sourceID: 0}
	prev := map[string]prevEntry{}
	finalized := map[string]bool{}

	h := &entryHeap{{dist: 0, id: sourceID}}
	heap.Init(h)

	var results []Result

	for h.Len() > 0 {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		top := heap.Pop(h).(heapEntry)
		id := top.id
		if finalized[id] {
			continue
		}
		finalized[id] = true

		if id != sourceID {
			node := snap.Node(id)
			if !(opts.ItemsOnly && node != nil && !node.IsItem) {
				results = append(results, Result{
					NodeID:   id,
					Distance: dist[id],
					Hops:     hops[id],
					Path:     reconstructPath(prev, id),
				})
				if len(results) >= opts.Budget {
					break
				}
			}
		}

		if hops[id] >= opts.MaxHops {
			continue
		}

		for _, e := range snap.EdgesOf(id) {
			if opts.NotSuperseded && e.SupersededBy != nil {
				continue
			}
			if len(opts.EdgeTypeAllow) > 0 && !opts.EdgeTypeAllow[e.Type] {
				continue
			}
			if opts.EdgeTypeExclude[e.Type] {
				continue
			}

			neighbor := otherEndpoint(e, id)
			if neighbor == "" || finalized[neighbor] {
				continue
			}

			newDist := dist[id] + graph.Cost(e)
			if newDist > opts.MaxCost {
				continue
			}
			newHops := hops[id] + 1
			if newHops > opts.MaxHops {
				continue
			}

			if cur, ok := dist[neighbor]; !ok || newDist < cur {
				dist[neighbor] = newDist
				hops[neighbor] = newHops
				prev[neighbor] = prevEntry{nodeID: id, edgeID: e.ID, edgeType: e.Type}
				heap.Push(h, heapEntry{dist: newDist, id: neighbor})
			}
		}
	}

	for i := range results {
		results[i].Rank = i + 1
		results[i].Relevance = 1 / (1 + results[i].Distance)
	}
	return results
}

func otherEndpoint(e *graph.Edge, id string) string {
	switch id {
	case e.SourceID:
		return e.TargetID
	case e.TargetID:
		return e.SourceID
	default:
		return ""
	}
}

// reconstructPath walks prev back to the source and returns the path in
// source-to-target order.
func reconstructPath(prev map[string]prevEntry, target string) []PathStep {
	var rev []PathStep
	cur := target
	for {
		p, ok := prev[cur]
		if !ok {
			break
		}
		rev = append(rev, PathStep{NodeID: cur, EdgeID: p.edgeID, EdgeType: p.edgeType})
		cur = p.nodeID
	}
	out := make([]PathStep, len(rev))
	for i, step := range rev {
		out[len(rev)-1-i] = step
	}
	return out
}
