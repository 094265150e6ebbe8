package dendrogram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

func w(v float64) *float64 { return &v }

func TestTriangleMergeSequence(t *testing.T) {
	// spec §8 scenario 1
	edges := []*graph.Edge{
		{SourceID: "A", TargetID: "B", Weight: w(0.9), Type: graph.EdgeRelated},
		{SourceID: "B", TargetID: "C", Weight: w(0.8), Type: graph.EdgeRelated},
		{SourceID: "A", TargetID: "C", Weight: w(0.7), Type: graph.EdgeRelated},
	}
	merges := Build([]string{"A", "B", "C"}, edges)

	require.Len(t, merges, 2)
	require.Equal(t, "A", merges[0].Left)
	require.Equal(t, "B", merges[0].Right)
	require.InDelta(t, 0.9, merges[0].Weight, 1e-9)
	require.Equal(t, 2, merges[0].Size)

	require.InDelta(t, 0.8, merges[1].Weight, 1e-9)
	require.Equal(t, 3, merges[1].Size)
}

func TestDeterministicAcrossRuns(t *testing.T) {
	edges := []*graph.Edge{
		{SourceID: "X", TargetID: "Y", Weight: w(0.5)},
		{SourceID: "Y", TargetID: "Z", Weight: w(0.5)},
	}
	m1 := Build([]string{"X", "Y", "Z"}, edges)
	m2 := Build([]string{"X", "Y", "Z"}, edges)
	require.Equal(t, m1, m2)
}

func TestSkipsEdgesMissingWeight(t *testing.T) {
	edges := []*graph.Edge{
		{SourceID: "A", TargetID: "B"},
	}
	merges := Build([]string{"A", "B"}, edges)
	require.Empty(t, merges)
}

func TestSkipsEdgesOutsideNodeSet(t *testing.T) {
	edges := []*graph.Edge{
		{SourceID: "A", TargetID: "Z", Weight: w(0.9)},
	}
	merges := Build([]string{"A", "B"}, edges)
	require.Empty(t, merges)
}
