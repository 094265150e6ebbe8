package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func buildSimple() *Snapshot {
	universe := &Node{ID: "universe", IsUniverse: true, Depth: 0}
	a := &Node{ID: "a", Depth: 1, ParentID: strPtr("universe")}
	b := &Node{ID: "b", Depth: 2, ParentID: strPtr("a")}
	c := &Node{ID: "c", Depth: 1, ParentID: strPtr("universe")}

	edges := []*Edge{
		{ID: "e1", SourceID: "a", TargetID: "b", Type: EdgeContains},
		{ID: "e2", SourceID: "b", TargetID: "c", Type: EdgeRelated},
		{ID: "e3", SourceID: "x", TargetID: "c", Type: EdgeRelated}, // dangling source, dropped
	}
	return Build([]*Node{universe, a, b, c}, edges)
}

func TestBuildDropsDanglingEdges(t *testing.T) {
	s := buildSimple()
	require.Nil(t, s.Edge("e3"))
	require.NotNil(t, s.Edge("e1"))
}

func TestAdjacencyExistsForEveryNode(t *testing.T) {
	s := buildSimple()
	for _, id := range s.NodeIDs() {
		// must not panic / must return a (possibly empty) slice
		_ = s.Neighbors(id)
	}
	require.ElementsMatch(t, []string{"b"}, s.Neighbors("a"))
	require.ElementsMatch(t, []string{"a", "c"}, s.Neighbors("b"))
}

func TestRegionsDepthLessEqualOne(t *testing.T) {
	s := buildSimple()
	require.Equal(t, "universe", s.Region("universe"))
	require.Equal(t, "a", s.Region("a"))
	require.Equal(t, "a", s.Region("b"))
	require.Equal(t, "c", s.Region("c"))
}

func TestRegionsCycleIsUnassigned(t *testing.T) {
	n1 := &Node{ID: "n1", Depth: 3, ParentID: strPtr("n2")}
	n2 := &Node{ID: "n2", Depth: 3, ParentID: strPtr("n1")}
	s := Build([]*Node{n1, n2}, nil)
	require.Equal(t, UnassignedRegion, s.Region("n1"))
	require.Equal(t, UnassignedRegion, s.Region("n2"))
}

func TestRegionsDanglingParentIsUnassigned(t *testing.T) {
	n1 := &Node{ID: "n1", Depth: 3, ParentID: strPtr("ghost")}
	s := Build([]*Node{n1}, nil)
	require.Equal(t, UnassignedRegion, s.Region("n1"))
}

func TestFilterToRegion(t *testing.T) {
	s := buildSimple()
	sub := s.FilterToRegion("a")
	require.ElementsMatch(t, []string{"a", "b"}, sub.NodeIDs())
	require.NotNil(t, sub.Edge("e1"))
	require.Nil(t, sub.Edge("e2")) // b-c crosses out of region a
}

func TestNodeIDsSortedForDeterminism(t *testing.T) {
	s := buildSimple()
	ids := s.NodeIDs()
	for i := 1; i < len(ids); i++ {
		require.Less(t, ids[i-1], ids[i])
	}
}
