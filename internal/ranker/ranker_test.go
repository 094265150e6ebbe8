package ranker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

func conf(v float64) *float64 { return &v }

func TestTopKOrdersByScoreDescending(t *testing.T) {
	base := time.Unix(1700000000, 0)
	edges := []*graph.Edge{
		{ID: "old-weak", Type: graph.EdgeRelated, Confidence: conf(0.1), CreatedAt: base},
		{ID: "new-strong", Type: graph.EdgeContradicts, Confidence: conf(0.9), CreatedAt: base.Add(10 * time.Hour)},
		{ID: "mid", Type: graph.EdgeSupports, Confidence: conf(0.5), CreatedAt: base.Add(5 * time.Hour)},
	}

	top := TopK(edges, 2)
	require.Len(t, top, 2)
	require.Equal(t, "new-strong", top[0].Edge.ID)
	require.Equal(t, "mid", top[1].Edge.ID)
}

func TestTopKTiesBreakByEdgeID(t *testing.T) {
	same := time.Unix(1700000000, 0)
	edges := []*graph.Edge{
		{ID: "z", Type: graph.EdgeRelated, Confidence: conf(0.5), CreatedAt: same},
		{ID: "a", Type: graph.EdgeRelated, Confidence: conf(0.5), CreatedAt: same},
	}
	top := TopK(edges, 2)
	require.Equal(t, "a", top[0].Edge.ID)
	require.Equal(t, "z", top[1].Edge.ID)
}

func TestTopKDefaultsConfidenceWhenAbsent(t *testing.T) {
	edges := []*graph.Edge{
		{ID: "no-conf", Type: graph.EdgeRelated, CreatedAt: time.Unix(0, 0)},
	}
	top := TopK(edges, 1)
	require.Len(t, top, 1)
	expected := 0.3*1 + 0.3*graph.DefaultConfidence + 0.4*graph.TypePriority(graph.EdgeRelated)
	require.InDelta(t, expected, top[0].Score, 1e-9)
}

func TestTopKEmptyInput(t *testing.T) {
	require.Nil(t, TopK(nil, 5))
}

func TestTopKReturnsAllWhenKExceedsLength(t *testing.T) {
	edges := []*graph.Edge{
		{ID: "a", Type: graph.EdgeRelated, Confidence: conf(0.5), CreatedAt: time.Unix(0, 0)},
	}
	require.Len(t, TopK(edges, 10), 1)
}
