package nncollab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlatIndexReturnsTopKByDescendingSimilarity(t *testing.T) {
	idx := NewFlatIndex([]Entry{
		{ID: "self", Embedding: []float32{1, 0}},
		{ID: "near", Embedding: []float32{0.99, 0.01}},
		{ID: "far", Embedding: []float32{0, 1}},
	})

	matches, err := idx.Query(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "self", matches[0].ID)
	require.Equal(t, "near", matches[1].ID)
	require.Greater(t, matches[0].Similarity, matches[1].Similarity)
}

func TestFlatIndexBreaksTiesByIDAscending(t *testing.T) {
	idx := NewFlatIndex([]Entry{
		{ID: "b", Embedding: []float32{1, 0}},
		{ID: "a", Embedding: []float32{1, 0}},
	})

	matches, err := idx.Query(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "a", matches[0].ID)
	require.Equal(t, "b", matches[1].ID)
}

func TestFlatIndexZeroKReturnsNoMatches(t *testing.T) {
	idx := NewFlatIndex([]Entry{{ID: "a", Embedding: []float32{1, 0}}})
	matches, err := idx.Query(context.Background(), []float32{1, 0}, 0)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestFlatIndexRespectsCancelledContext(t *testing.T) {
	idx := NewFlatIndex([]Entry{{ID: "a", Embedding: []float32{1, 0}}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.Query(ctx, []float32{1, 0}, 1)
	require.Error(t, err)
}
