package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

func mkNode(id string) *graph.Node {
	return &graph.Node{ID: id, Title: id, CreatedAt: time.Unix(0, 0), UpdatedAt: time.Unix(0, 0)}
}

func mkEdge(id, src, tgt string, t graph.EdgeType) *graph.Edge {
	return &graph.Edge{ID: id, SourceID: src, TargetID: tgt, Type: t, CreatedAt: time.Unix(0, 0)}
}

// spec §8 scenario 5: articulation point graph.
func TestArticulationPointGraph(t *testing.T) {
	nodes := []*graph.Node{mkNode("A"), mkNode("B"), mkNode("C"), mkNode("D"), mkNode("E"), mkNode("F")}
	edges := []*graph.Edge{
		mkEdge("e1", "A", "B", graph.EdgeRelated),
		mkEdge("e2", "B", "C", graph.EdgeRelated),
		mkEdge("e3", "C", "A", graph.EdgeRelated),
		mkEdge("e4", "C", "D", graph.EdgeRelated),
		mkEdge("e5", "D", "E", graph.EdgeRelated),
		mkEdge("e6", "E", "F", graph.EdgeRelated),
		mkEdge("e7", "F", "D", graph.EdgeRelated),
	}
	snap := graph.Build(nodes, edges)

	opts := DefaultOptions()
	opts.Now = time.Unix(0, 0)
	report := Analyze(snap, opts)

	require.Equal(t, 1, report.Topology.NumComponents)

	apIDs := make(map[string]bool)
	for _, ap := range report.Fragility.ArticulationPoints {
		apIDs[ap.NodeID] = true
	}
	require.True(t, apIDs["C"])
	require.True(t, apIDs["D"])
	require.Len(t, report.Fragility.ArticulationPoints, 2)

	require.Len(t, report.Fragility.Bridges, 1)
	bridge := report.Fragility.Bridges[0]
	require.ElementsMatch(t, []string{"C", "D"}, []string{bridge.SourceID, bridge.TargetID})

	require.Equal(t, 2, componentsIfRemoved(snap, "C"))
}

// spec §8 scenario 6: health baseline triangle.
func TestHealthBaselineTriangle(t *testing.T) {
	nodes := []*graph.Node{mkNode("A"), mkNode("B"), mkNode("C")}
	edges := []*graph.Edge{
		mkEdge("e1", "A", "B", graph.EdgeRelated),
		mkEdge("e2", "B", "C", graph.EdgeRelated),
		mkEdge("e3", "C", "A", graph.EdgeRelated),
	}
	snap := graph.Build(nodes, edges)

	opts := DefaultOptions()
	opts.Now = time.Unix(0, 0)
	report := Analyze(snap, opts)

	require.Empty(t, report.Topology.Orphans)
	require.Equal(t, 1, report.Topology.NumComponents)
	require.Empty(t, report.Fragility.ArticulationPoints)
	require.Empty(t, report.Staleness.StaleNodes)
	require.GreaterOrEqual(t, report.Score.Overall, 0.95)
}

// A clique of size >= 3 has zero bridges (spec §8 invariant).
func TestCliqueHasNoBridges(t *testing.T) {
	nodes := []*graph.Node{mkNode("A"), mkNode("B"), mkNode("C"), mkNode("D")}
	edges := []*graph.Edge{
		mkEdge("e1", "A", "B", graph.EdgeRelated),
		mkEdge("e2", "A", "C", graph.EdgeRelated),
		mkEdge("e3", "A", "D", graph.EdgeRelated),
		mkEdge("e4", "B", "C", graph.EdgeRelated),
		mkEdge("e5", "B", "D", graph.EdgeRelated),
		mkEdge("e6", "C", "D", graph.EdgeRelated),
	}
	snap := graph.Build(nodes, edges)
	_, bridges := articulationPointsAndBridges(snap)
	require.Empty(t, bridges)
}

// Adding a bridge edge to a 2-component graph reduces num_components by 1
// (spec §8 invariant).
func TestAddingBridgeEdgeReducesComponentCount(t *testing.T) {
	nodes := []*graph.Node{mkNode("A"), mkNode("B"), mkNode("C"), mkNode("D")}
	edgesDisjoint := []*graph.Edge{
		mkEdge("e1", "A", "B", graph.EdgeRelated),
		mkEdge("e2", "C", "D", graph.EdgeRelated),
	}
	before := Analyze(graph.Build(nodes, edgesDisjoint), Options{Now: time.Unix(0, 0)})
	require.Equal(t, 2, before.Topology.NumComponents)

	edgesConnected := append(append([]*graph.Edge{}, edgesDisjoint...), mkEdge("e3", "B", "C", graph.EdgeRelated))
	after := Analyze(graph.Build(nodes, edgesConnected), Options{Now: time.Unix(0, 0)})
	require.Equal(t, 1, after.Topology.NumComponents)
}

func TestOrphanAndHubDetection(t *testing.T) {
	nodes := []*graph.Node{mkNode("hub"), mkNode("orphan")}
	var edges []*graph.Edge
	for i := 0; i < 20; i++ {
		leaf := mkNode(string(rune('a' + i)))
		nodes = append(nodes, leaf)
		edges = append(edges, mkEdge("e"+string(rune('a'+i)), "hub", leaf.ID, graph.EdgeRelated))
	}
	snap := graph.Build(nodes, edges)

	opts := DefaultOptions()
	opts.Now = time.Unix(0, 0)
	report := Analyze(snap, opts)

	require.Len(t, report.Topology.Hubs, 1)
	require.Equal(t, "hub", report.Topology.Hubs[0].NodeID)
	require.Len(t, report.Topology.Orphans, 1)
	require.Equal(t, "orphan", report.Topology.Orphans[0].NodeID)
}

func TestStaleNodeRequiresRecentIncomingEdge(t *testing.T) {
	now := time.Unix(0, 0).Add(100 * 24 * time.Hour)
	oldUpdate := time.Unix(0, 0)
	nodes := []*graph.Node{
		{ID: "stale-with-activity", Title: "a", UpdatedAt: oldUpdate},
		{ID: "stale-no-activity", Title: "b", UpdatedAt: oldUpdate},
		{ID: "neighbor1", Title: "n1", UpdatedAt: oldUpdate},
		{ID: "neighbor2", Title: "n2", UpdatedAt: oldUpdate},
	}
	edges := []*graph.Edge{
		{ID: "e1", SourceID: "neighbor1", TargetID: "stale-with-activity", Type: graph.EdgeRelated, CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{ID: "e2", SourceID: "neighbor2", TargetID: "stale-no-activity", Type: graph.EdgeRelated, CreatedAt: time.Unix(0, 0)},
	}
	snap := graph.Build(nodes, edges)

	opts := DefaultOptions()
	opts.Now = now
	report := Analyze(snap, opts)

	staleIDs := make(map[string]bool)
	for _, n := range report.Staleness.StaleNodes {
		staleIDs[n.NodeID] = true
	}
	require.True(t, staleIDs["stale-with-activity"])
	require.False(t, staleIDs["stale-no-activity"])
}

func TestStaleSummaryDriftDetection(t *testing.T) {
	summaryUpdated := time.Unix(0, 0)
	targetUpdated := summaryUpdated.Add(10 * 24 * time.Hour)
	nodes := []*graph.Node{
		{ID: "summary", Title: "s", UpdatedAt: summaryUpdated},
		{ID: "target", Title: "t", UpdatedAt: targetUpdated},
	}
	edges := []*graph.Edge{
		{ID: "e1", SourceID: "summary", TargetID: "target", Type: graph.EdgeSummarizes, CreatedAt: time.Unix(0, 0)},
	}
	snap := graph.Build(nodes, edges)

	opts := DefaultOptions()
	opts.Now = targetUpdated
	report := Analyze(snap, opts)

	require.Len(t, report.Staleness.StaleSummaries, 1)
	require.Equal(t, 10, report.Staleness.StaleSummaries[0].DriftDays)
}

func TestEmptyGraphHealthIsZero(t *testing.T) {
	snap := graph.Build(nil, nil)
	report := Analyze(snap, DefaultOptions())
	require.Equal(t, Score{}, report.Score)
}

// The health score must use the true orphan count, not the TopN-capped
// report list: a corpus with more orphans than TopN should score worse,
// not better, than one with fewer.
func TestScoreUsesTrueOrphanCountNotCappedList(t *testing.T) {
	opts := DefaultOptions()
	opts.TopN = 5
	opts.Now = time.Unix(0, 0)

	var nodes []*graph.Node
	var edges []*graph.Edge
	nodes = append(nodes, mkNode("A"), mkNode("B"))
	edges = append(edges, mkEdge("e1", "A", "B", graph.EdgeRelated))
	for i := 0; i < 30; i++ {
		nodes = append(nodes, mkNode("orphan"+string(rune('a'+i))))
	}
	snap := graph.Build(nodes, edges)
	report := Analyze(snap, opts)

	require.Len(t, report.Topology.Orphans, opts.TopN)
	require.Equal(t, 30, report.Topology.OrphanCount)

	total := float64(len(nodes))
	expectedConnectivity := 1 - float64(30)/total
	require.InDelta(t, expectedConnectivity, report.Score.Connectivity, 1e-9)
}
