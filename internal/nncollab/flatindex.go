package nncollab

import (
	"context"
	"sort"

	"github.com/josephgoksu/corpusgraph/internal/vectormath"
)

// Entry is one (id, vector) pair held by a FlatIndex.
type Entry struct {
	ID        string
	Embedding []float32
}

// FlatIndex is an in-process, exact Index: it scores every entry against
// the query vector by cosine similarity and returns the top k. It exists so
// internal/similarity and its callers can exercise the Index contract
// without standing up an external ANN service; it does not approximate
// anything, so it offers no speed advantage over internal/similarity's own
// brute-force path at the scales that path already covers. Swap in a real
// ANN-backed Index once item counts exceed the brute-force budget (spec
// §4.5, ~5x10^4 items).
type FlatIndex struct {
	entries []Entry
}

// NewFlatIndex builds a FlatIndex over entries. The slice is copied.
func NewFlatIndex(entries []Entry) *FlatIndex {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &FlatIndex{entries: cp}
}

// Query implements Index.
func (f *FlatIndex) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(f.entries))
	for _, e := range f.entries {
		sim := vectormath.Cosine(vector, e.Embedding)
		matches = append(matches, Match{ID: e.ID, Similarity: float64(sim)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
