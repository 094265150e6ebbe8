package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/corpusgraph/internal/graph"
	"github.com/josephgoksu/corpusgraph/internal/store"
)

// fakeEmbedder returns a deterministic 384-dim vector per title from a
// fixed lookup table, standing in for the external embedding collaborator
// (spec §6).
type fakeEmbedder struct {
	vectors map[string][]float32
	dim     int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("fakeEmbedder: no vector for %q", text)
	}
	return v, nil
}

func (f *fakeEmbedder) Dim() int { return f.dim }

// clusterVector builds a 384-dim vector with unit mass on baseDim and a
// small perturbation of size eps on a perturbDim unique to this item, so
// every pair within a cluster has identical cosine similarity while
// distinct items remain distinguishable.
func clusterVector(baseDim, perturbDim int, eps float32) []float32 {
	v := make([]float32, store.EmbeddingDim)
	v[baseDim] = 1.0
	v[perturbDim] = eps
	return v
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRunTooSmallForSplitStaysFlat(t *testing.T) {
	st := openTestStore(t)
	vectors := map[string][]float32{}
	for i := 0; i < 3; i++ {
		title := fmt.Sprintf("item-%d", i)
		vectors[title] = clusterVector(0, 10+i, 0.05)
		require.NoError(t, st.CreateNode(&graph.Node{ID: title, Title: title, IsItem: true}))
	}
	embedder := &fakeEmbedder{vectors: vectors, dim: store.EmbeddingDim}

	d := New(st, embedder, nil, DefaultOptions())
	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.EmbeddingsComputed)
	require.Equal(t, 0, report.EmbeddingFailures)
	require.Equal(t, 0, report.GroupsCreated)
	require.False(t, report.Cancelled)

	state, err := st.PipelineStateValue()
	require.NoError(t, err)
	require.Equal(t, store.StateHierarchized, state)

	universe, err := st.Universe()
	require.NoError(t, err)
	require.NotNil(t, universe)

	for title := range vectors {
		n, err := st.GetNode(title)
		require.NoError(t, err)
		require.NotNil(t, n.ParentID)
		require.Equal(t, universe.ID, *n.ParentID)
	}
}

func TestRunSplitsTwoSeparableClusters(t *testing.T) {
	st := openTestStore(t)
	vectors := map[string][]float32{}
	var clusterA, clusterB []string
	for i := 0; i < 5; i++ {
		a := fmt.Sprintf("a-%d", i)
		b := fmt.Sprintf("b-%d", i)
		vectors[a] = clusterVector(0, 10+i, 0.05)
		vectors[b] = clusterVector(1, 20+i, 0.5)
		clusterA = append(clusterA, a)
		clusterB = append(clusterB, b)
		require.NoError(t, st.CreateNode(&graph.Node{ID: a, Title: a, IsItem: true}))
		require.NoError(t, st.CreateNode(&graph.Node{ID: b, Title: b, IsItem: true}))
	}
	embedder := &fakeEmbedder{vectors: vectors, dim: store.EmbeddingDim}

	d := New(st, embedder, nil, DefaultOptions())
	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, report.EmbeddingsComputed)
	require.Equal(t, 0, report.EmbeddingFailures)
	require.Greater(t, report.SimilarityEdgesEmitted, 0)
	require.Equal(t, 2, report.GroupsCreated)

	universe, err := st.Universe()
	require.NoError(t, err)

	groups, err := st.ListGroups()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, g := range groups {
		require.NotNil(t, g.ParentID)
		require.Equal(t, universe.ID, *g.ParentID)
		require.Equal(t, 5, g.ChildCount)
		require.True(t, g.HasEmbedding)
	}

	for _, id := range clusterA {
		n, err := st.GetNode(id)
		require.NoError(t, err)
		require.NotNil(t, n.ParentID)
		require.NotEqual(t, universe.ID, *n.ParentID)
	}
	for _, id := range clusterB {
		n, err := st.GetNode(id)
		require.NoError(t, err)
		require.NotNil(t, n.ParentID)
		require.NotEqual(t, universe.ID, *n.ParentID)
	}

	snap, err := st.Snapshot()
	require.NoError(t, err)
	aNode, err := st.GetNode(clusterA[0])
	require.NoError(t, err)
	require.Equal(t, *aNode.ParentID, snap.Region(clusterA[0]))
}

func TestRunSkipsUnembeddableItemsWithoutFailingStage(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.CreateNode(&graph.Node{ID: "known", Title: "known", IsItem: true}))
	require.NoError(t, st.CreateNode(&graph.Node{ID: "unknown", Title: "unknown", IsItem: true}))

	embedder := &fakeEmbedder{
		vectors: map[string][]float32{"known": clusterVector(0, 10, 0.05)},
		dim:     store.EmbeddingDim,
	}

	d := New(st, embedder, nil, DefaultOptions())
	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.EmbeddingsComputed)
	require.Equal(t, 1, report.EmbeddingFailures)
}
