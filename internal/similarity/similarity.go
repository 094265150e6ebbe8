// Package similarity builds a candidate `related` edge set from pairwise
// cosine similarity over item embeddings (spec §4.5).
package similarity

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/josephgoksu/corpusgraph/internal/graph"
	"github.com/josephgoksu/corpusgraph/internal/nncollab"
	"github.com/josephgoksu/corpusgraph/internal/vectormath"
)

// DefaultFloor is the minimum similarity (w_min) an edge must meet to be
// emitted.
const DefaultFloor = 0.30

// DefaultTopK is the number of top neighbors emitted per node.
const DefaultTopK = 5

// Item is the (id, embedding) input to the builder.
type Item struct {
	ID        string
	Embedding []float32
}

// Options configures a Build run.
type Options struct {
	Floor   float64 // w_min, default DefaultFloor when zero
	TopK    int     // default DefaultTopK when zero
	Workers int     // worker pool size, default 1 (sequential) when <= 0

	// Index, if set, replaces the brute-force O(N^2) pass with per-node
	// Index.Query calls. The observable contract (top-K neighbors at or
	// above Floor, ties broken by target id ascending) is unchanged.
	Index nncollab.Index

	// Progress, if non-nil, is called after each node's candidate pass
	// completes, for chunk-level progress reporting (spec §5).
	Progress func(processed, total int)
}

// Result reports the outcome of a Build run.
type Result struct {
	Edges       []*graph.Edge
	Emitted     int
	SkippedZero int // pairings skipped due to an all-zero embedding
	SkippedDims int // pairings skipped due to dimension mismatch
	Cancelled   bool
}

// Build performs brute-force O(N^2) pairwise cosine similarity over items
// and emits up to opts.TopK `related` edges per node at or above
// opts.Floor. Ties in similarity are broken by target id ascending.
//
// Practical at up to ~5x10^4 items (spec §4.5); an approximate NN
// collaborator (internal/nncollab) may be substituted by the caller for
// larger corpora without changing this function's contract.
func Build(ctx context.Context, items []Item, opts Options) (*Result, error) {
	floor := opts.Floor
	if floor == 0 {
		floor = DefaultFloor
	}
	topK := opts.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	// Stable order so output is deterministic across runs regardless of
	// input slice order.
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	res := &Result{}
	edgesByNode := make([][]*graph.Edge, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var processed, skippedZeroTotal, skippedDimsTotal atomic.Int64
	for i := range sorted {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}

			var (
				edges                    []*graph.Edge
				skippedZero, skippedDims int
				indexErr                 error
			)
			if opts.Index != nil {
				edges, indexErr = candidatesViaIndex(gctx, opts.Index, sorted[i], floor, topK)
				if indexErr != nil {
					return indexErr
				}
			} else {
				edges, skippedZero, skippedDims = candidatesFor(sorted, i, floor, topK)
			}
			edgesByNode[i] = edges

			if opts.Progress != nil {
				opts.Progress(int(processed.Add(1)), len(sorted))
			}
			skippedZeroTotal.Add(int64(skippedZero))
			skippedDimsTotal.Add(int64(skippedDims))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("similarity build: %w", err)
	}

	if ctx.Err() != nil {
		res.Cancelled = true
	}

	res.SkippedZero = int(skippedZeroTotal.Load())
	res.SkippedDims = int(skippedDimsTotal.Load())

	for _, edges := range edgesByNode {
		res.Edges = append(res.Edges, edges...)
	}
	res.Emitted = len(res.Edges)
	return res, nil
}

type candidate struct {
	targetID string
	sim      float32
}

func candidatesFor(sorted []Item, i int, floor float64, topK int) ([]*graph.Edge, int, int) {
	src := sorted[i]
	if isAllZero(src.Embedding) {
		return nil, len(sorted) - 1, 0
	}

	var cands []candidate
	skippedDims := 0
	skippedZero := 0
	for j, other := range sorted {
		if j == i {
			continue
		}
		if len(other.Embedding) != len(src.Embedding) {
			skippedDims++
			continue
		}
		if isAllZero(other.Embedding) {
			skippedZero++
			continue
		}
		sim := vectormath.Cosine(src.Embedding, other.Embedding)
		if float64(sim) >= floor {
			cands = append(cands, candidate{targetID: other.ID, sim: sim})
		}
	}

	sort.Slice(cands, func(a, b int) bool {
		if cands[a].sim != cands[b].sim {
			return cands[a].sim > cands[b].sim
		}
		return cands[a].targetID < cands[b].targetID
	})
	if len(cands) > topK {
		cands = cands[:topK]
	}

	edges := make([]*graph.Edge, 0, len(cands))
	for _, c := range cands {
		w := float64(c.sim)
		edges = append(edges, &graph.Edge{
			SourceID: src.ID,
			TargetID: c.targetID,
			Type:     graph.EdgeRelated,
			Weight:   &w,
		})
	}
	return edges, skippedZero, skippedDims
}

// candidatesViaIndex asks idx for src's neighbors instead of scanning every
// other item, then applies the same floor/topK/tie-break rules as
// candidatesFor so the two paths are observably identical.
func candidatesViaIndex(ctx context.Context, idx nncollab.Index, src Item, floor float64, topK int) ([]*graph.Edge, error) {
	if isAllZero(src.Embedding) {
		return nil, nil
	}

	// Over-fetch by one in case the index returns src itself as its own
	// nearest neighbor.
	matches, err := idx.Query(ctx, src.Embedding, topK+1)
	if err != nil {
		return nil, fmt.Errorf("nncollab query for %s: %w", src.ID, err)
	}

	var cands []candidate
	for _, m := range matches {
		if m.ID == src.ID {
			continue
		}
		if m.Similarity < floor {
			continue
		}
		cands = append(cands, candidate{targetID: m.ID, sim: float32(m.Similarity)})
	}
	sort.Slice(cands, func(a, b int) bool {
		if cands[a].sim != cands[b].sim {
			return cands[a].sim > cands[b].sim
		}
		return cands[a].targetID < cands[b].targetID
	})
	if len(cands) > topK {
		cands = cands[:topK]
	}

	edges := make([]*graph.Edge, 0, len(cands))
	for _, c := range cands {
		w := float64(c.sim)
		edges = append(edges, &graph.Edge{
			SourceID: src.ID,
			TargetID: c.targetID,
			Type:     graph.EdgeRelated,
			Weight:   &w,
		})
	}
	return edges, nil
}

func isAllZero(v []float32) bool {
	if len(v) == 0 {
		return true
	}
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
