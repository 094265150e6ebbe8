package contextexpand

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

func conf(v float64) *float64 { return &v }

func node(id string, isItem bool) *graph.Node {
	return &graph.Node{ID: id, IsItem: isItem, CreatedAt: time.Unix(0, 0), UpdatedAt: time.Unix(0, 0)}
}

// spec §8 scenario 4: structural floor.
func TestExpandStructuralFloor(t *testing.T) {
	nodes := []*graph.Node{node("S", true), node("F", true), node("T", true)}
	edges := []*graph.Edge{
		{ID: "e1", SourceID: "S", TargetID: "F", Type: graph.EdgeDefinedIn, Confidence: conf(0.9)},
		{ID: "e2", SourceID: "S", TargetID: "T", Type: graph.EdgeSupports, Confidence: conf(0.9)},
	}
	snap := graph.Build(nodes, edges)

	require.InDelta(t, 0.4, graph.Cost(edges[0]), 1e-9)
	require.InDelta(t, 0.075, graph.Cost(edges[1]), 1e-9)

	opts := DefaultOptions()
	opts.MaxCost = 1.0
	opts.Budget = 1

	results := Expand(context.Background(), snap, "S", opts)
	require.Len(t, results, 1)
	require.Equal(t, "T", results[0].NodeID)
	require.InDelta(t, 0.075, results[0].Distance, 1e-9)
	require.Equal(t, 1, results[0].Rank)
	require.InDelta(t, 1/(1+0.075), results[0].Relevance, 1e-9)
}

func TestExpandOrdersByDistanceAndTracksHopsAndPath(t *testing.T) {
	nodes := []*graph.Node{node("S", true), node("A", true), node("B", true)}
	edges := []*graph.Edge{
		{ID: "e1", SourceID: "S", TargetID: "A", Type: graph.EdgeRelated, Confidence: conf(0.9)},
		{ID: "e2", SourceID: "A", TargetID: "B", Type: graph.EdgeRelated, Confidence: conf(0.9)},
	}
	snap := graph.Build(nodes, edges)

	results := Expand(context.Background(), snap, "S", DefaultOptions())
	require.Len(t, results, 2)
	require.Equal(t, "A", results[0].NodeID)
	require.Equal(t, 1, results[0].Hops)
	require.Equal(t, "B", results[1].NodeID)
	require.Equal(t, 2, results[1].Hops)
	require.True(t, results[0].Distance <= results[1].Distance)

	// Path to B must read S -> A -> B.
	require.Len(t, results[1].Path, 2)
	require.Equal(t, "A", results[1].Path[0].NodeID)
	require.Equal(t, "B", results[1].Path[1].NodeID)

	var sumCost float64
	sumCost += graph.Cost(edges[0])
	sumCost += graph.Cost(edges[1])
	require.InDelta(t, sumCost, results[1].Distance, 1e-9)
}

func TestExpandRespectsMaxHops(t *testing.T) {
	nodes := []*graph.Node{node("S", true), node("A", true), node("B", true)}
	edges := []*graph.Edge{
		{ID: "e1", SourceID: "S", TargetID: "A", Type: graph.EdgeRelated, Confidence: conf(0.9)},
		{ID: "e2", SourceID: "A", TargetID: "B", Type: graph.EdgeRelated, Confidence: conf(0.9)},
	}
	snap := graph.Build(nodes, edges)

	opts := DefaultOptions()
	opts.MaxHops = 1
	results := Expand(context.Background(), snap, "S", opts)
	require.Len(t, results, 1)
	require.Equal(t, "A", results[0].NodeID)
}

func TestExpandSkipsSupersededEdgesWhenRequested(t *testing.T) {
	nodes := []*graph.Node{node("S", true), node("A", true)}
	superseder := "other"
	edges := []*graph.Edge{
		{ID: "e1", SourceID: "S", TargetID: "A", Type: graph.EdgeRelated, Confidence: conf(0.9), SupersededBy: &superseder},
	}
	snap := graph.Build(nodes, edges)

	opts := DefaultOptions()
	opts.NotSuperseded = true
	results := Expand(context.Background(), snap, "S", opts)
	require.Empty(t, results)
}

func TestExpandItemsOnlyKeepsGroupsTraversableButUnreported(t *testing.T) {
	nodes := []*graph.Node{node("S", true), node("G", false), node("A", true)}
	edges := []*graph.Edge{
		{ID: "e1", SourceID: "S", TargetID: "G", Type: graph.EdgeRelated, Confidence: conf(0.9)},
		{ID: "e2", SourceID: "G", TargetID: "A", Type: graph.EdgeRelated, Confidence: conf(0.9)},
	}
	snap := graph.Build(nodes, edges)

	opts := DefaultOptions()
	opts.ItemsOnly = true
	results := Expand(context.Background(), snap, "S", opts)
	require.Len(t, results, 1)
	require.Equal(t, "A", results[0].NodeID)
	require.Equal(t, 2, results[0].Hops)
}

func TestExpandCancellationReturnsPartial(t *testing.T) {
	nodes := []*graph.Node{node("S", true), node("A", true)}
	edges := []*graph.Edge{
		{ID: "e1", SourceID: "S", TargetID: "A", Type: graph.EdgeRelated, Confidence: conf(0.9)},
	}
	snap := graph.Build(nodes, edges)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Expand(ctx, snap, "S", DefaultOptions())
	require.Empty(t, results)
}
