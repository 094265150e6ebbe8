// Package hierarchy implements the adaptive tree builder (spec §4.7): the
// recursive cut of a dendrogram range into a multi-way tree of topical
// groups, using balance, cohesion, and gap rules, with bridge detection and
// a deterministic centroid-bisection fallback.
package hierarchy

import "github.com/josephgoksu/corpusgraph/internal/graph"

// GroupNode is one node of the built tree. It carries a synthetic,
// deterministic ID derived from its position in the tree (the root takes
// the given root ID; each child takes its parent's ID, ".", and its index
// among the parent's children) — the persistence layer maps
// these onto real node ids when it writes the tree (see internal/pipeline).
type GroupNode struct {
	ID       string
	Depth    int
	Members  []string // every item id in this node's subtree, sorted
	Children []*GroupNode
	IsLeaf   bool

	// RangeLo/RangeHi are the similarity range this node was built from.
	RangeLo float64
	RangeHi float64

	// Threshold is the cut weight chosen for this node's split, nil for a
	// leaf or a fallback-bisection split (which has no single threshold).
	Threshold *float64

	// Fallback is true if this node's split came from the centroid
	// bisection fallback rather than a valid threshold cut.
	Fallback bool

	// SiblingEdges lists the sibling-edge records between pairs of this
	// node's direct children.
	SiblingEdges []SiblingEdge

	// Bridges maps a bridge member id to the set of this node's children
	// (by child index) it belongs to, for members that straddle the cut
	// within DeltaMin of Threshold on both sides.
	Bridges map[string][]int
}

// SiblingEdge is the `sibling` edge emitted between two children of a
// split (spec §4.7, "Sibling edge").
type SiblingEdge struct {
	LeftChild  int // index into the parent's Children slice
	RightChild int
	Weight     float64 // inter(A,B)
	Threshold  float64
	Bridges    []string
}

// BuildResult is the outcome of a Build call.
type BuildResult struct {
	Root *GroupNode
}

// edgeIndex is a precomputed lookup of internal edges so repeated
// intra/inter/variance computations over a recursion don't re-scan the
// full edge list at every depth.
type edgeIndex struct {
	byPair map[[2]string]*graph.Edge // key: (min(src,tgt), max(src,tgt))
	all    []*graph.Edge
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func buildEdgeIndex(edges []*graph.Edge) *edgeIndex {
	idx := &edgeIndex{byPair: make(map[[2]string]*graph.Edge, len(edges)), all: edges}
	for _, e := range edges {
		idx.byPair[pairKey(e.SourceID, e.TargetID)] = e
	}
	return idx
}

func (idx *edgeIndex) weight(a, b string) (float64, bool) {
	e, ok := idx.byPair[pairKey(a, b)]
	if !ok || e.Weight == nil {
		return 0, false
	}
	return *e.Weight, true
}

// internalEdges returns every indexed edge with both endpoints in members.
func (idx *edgeIndex) internalEdges(members map[string]bool) []*graph.Edge {
	var out []*graph.Edge
	for _, e := range idx.all {
		if e.Weight == nil {
			continue
		}
		if members[e.SourceID] && members[e.TargetID] {
			out = append(out, e)
		}
	}
	return out
}
