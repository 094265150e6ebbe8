package graph

import "sort"

// UnassignedRegion is the sentinel region id used for nodes whose ancestor
// walk hits a cycle or a dangling parent (spec §3, derived region map).
const UnassignedRegion = "unassigned"

// Snapshot is an immutable in-memory view built once from a persisted
// graph. It is safe to share read-only across goroutines (spec §5).
type Snapshot struct {
	nodes    map[string]*Node
	edges    map[string]*Edge
	orderIDs []string // node ids sorted for deterministic enumeration

	adj    map[string][]string // undirected
	outAdj map[string][]string // directed, source -> target
	inAdj  map[string][]string // directed, target -> source

	// nodeEdges maps a node id to every edge id touching it, in the order
	// edges were added, for adjacency iteration that needs the edge itself.
	nodeEdges map[string][]string

	regions map[string]string
}

// Build constructs a Snapshot from the given nodes and edges. Edges whose
// endpoints are absent from nodes are dropped silently (spec §4.4).
func Build(nodes []*Node, edges []*Edge) *Snapshot {
	s := &Snapshot{
		nodes:     make(map[string]*Node, len(nodes)),
		edges:     make(map[string]*Edge, len(edges)),
		adj:       make(map[string][]string),
		outAdj:    make(map[string][]string),
		inAdj:     make(map[string][]string),
		nodeEdges: make(map[string][]string),
	}

	for _, n := range nodes {
		s.nodes[n.ID] = n
		s.adj[n.ID] = nil
		s.outAdj[n.ID] = nil
		s.inAdj[n.ID] = nil
		s.nodeEdges[n.ID] = nil
		s.orderIDs = append(s.orderIDs, n.ID)
	}
	sort.Strings(s.orderIDs)

	for _, e := range edges {
		if _, ok := s.nodes[e.SourceID]; !ok {
			continue
		}
		if _, ok := s.nodes[e.TargetID]; !ok {
			continue
		}
		s.edges[e.ID] = e
		s.adj[e.SourceID] = append(s.adj[e.SourceID], e.TargetID)
		s.adj[e.TargetID] = append(s.adj[e.TargetID], e.SourceID)
		s.outAdj[e.SourceID] = append(s.outAdj[e.SourceID], e.TargetID)
		s.inAdj[e.TargetID] = append(s.inAdj[e.TargetID], e.SourceID)
		s.nodeEdges[e.SourceID] = append(s.nodeEdges[e.SourceID], e.ID)
		s.nodeEdges[e.TargetID] = append(s.nodeEdges[e.TargetID], e.ID)
	}

	s.regions = computeRegions(s.nodes)
	return s
}

// computeRegions maps every node to the nearest ancestor at depth <= 1
// (itself if depth <= 1), marking cycles or dangling parents as
// UnassignedRegion.
func computeRegions(nodes map[string]*Node) map[string]string {
	regions := make(map[string]string, len(nodes))

	for id, n := range nodes {
		if n.Depth <= 1 {
			regions[id] = id
			continue
		}

		visited := make(map[string]bool)
		cur := n
		region := UnassignedRegion
		ok := true
		for {
			if cur.Depth <= 1 {
				region = cur.ID
				break
			}
			if visited[cur.ID] {
				ok = false
				break
			}
			visited[cur.ID] = true
			if cur.ParentID == nil {
				ok = false
				break
			}
			parent, exists := nodes[*cur.ParentID]
			if !exists {
				ok = false
				break
			}
			cur = parent
		}
		if !ok {
			region = UnassignedRegion
		}
		regions[id] = region
	}

	return regions
}

// Node returns the node with the given id, or nil if absent.
func (s *Snapshot) Node(id string) *Node { return s.nodes[id] }

// Edge returns the edge with the given id, or nil if absent.
func (s *Snapshot) Edge(id string) *Edge { return s.edges[id] }

// NodeIDs returns every node id, sorted ascending.
func (s *Snapshot) NodeIDs() []string { return s.orderIDs }

// NodeCount returns the number of nodes in the snapshot.
func (s *Snapshot) NodeCount() int { return len(s.nodes) }

// Edges returns every edge in the snapshot, in no particular order (callers
// that need determinism should sort by ID).
func (s *Snapshot) Edges() []*Edge {
	out := make([]*Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	return out
}

// Neighbors returns the undirected adjacency list of id.
func (s *Snapshot) Neighbors(id string) []string { return s.adj[id] }

// OutNeighbors returns nodes reachable by a directed out-edge from id.
func (s *Snapshot) OutNeighbors(id string) []string { return s.outAdj[id] }

// InNeighbors returns nodes with a directed edge into id.
func (s *Snapshot) InNeighbors(id string) []string { return s.inAdj[id] }

// EdgesOf returns every edge touching id.
func (s *Snapshot) EdgesOf(id string) []*Edge {
	ids := s.nodeEdges[id]
	out := make([]*Edge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, s.edges[eid])
	}
	return out
}

// Degree returns the undirected degree of id.
func (s *Snapshot) Degree(id string) int { return len(s.adj[id]) }

// Region returns the region id (nearest ancestor at depth <= 1) of id.
func (s *Snapshot) Region(id string) string { return s.regions[id] }

// Regions returns the full node->region map.
func (s *Snapshot) Regions() map[string]string { return s.regions }

// FilterToRegion returns a new Snapshot containing exactly the descendants
// of regionID (closed under the parent walk, including regionID itself)
// and the edges internal to that set.
func (s *Snapshot) FilterToRegion(regionID string) *Snapshot {
	keep := make(map[string]bool)
	for id, r := range s.regions {
		if r == regionID {
			keep[id] = true
		} else if rn := s.nodes[r]; rn != nil && rn.ParentID != nil && *rn.ParentID == regionID {
			keep[id] = true
		}
	}

	var nodes []*Node
	for id := range keep {
		nodes = append(nodes, s.nodes[id])
	}

	var edges []*Edge
	for _, e := range s.edges {
		if keep[e.SourceID] && keep[e.TargetID] {
			edges = append(edges, e)
		}
	}

	return Build(nodes, edges)
}
