package health

import (
	"sort"

	"github.com/josephgoksu/corpusgraph/internal/graph"
	"github.com/josephgoksu/corpusgraph/internal/unionfind"
)

// tarjanFrame is one level of the simulated DFS call stack.
type tarjanFrame struct {
	node         string
	edges        []*graph.Edge
	idx          int
	entryEdgeID  string
	skippedEntry bool
}

// articulationPointsAndBridges runs Tarjan's algorithm iteratively (an
// explicit stack standing in for the call stack) so the analyzer does not
// blow the goroutine stack on a large corpus (spec §4.9).
func articulationPointsAndBridges(snap *graph.Snapshot) (map[string]bool, []*graph.Edge) {
	disc := make(map[string]int)
	low := make(map[string]int)
	visited := make(map[string]bool)
	isAP := make(map[string]bool)
	var bridges []*graph.Edge
	timer := 0

	for _, root := range snap.NodeIDs() {
		if visited[root] {
			continue
		}
		visited[root] = true
		disc[root] = timer
		low[root] = timer
		timer++

		stack := []*tarjanFrame{{node: root, edges: snap.EdgesOf(root)}}
		rootChildren := 0

		for len(stack) > 0 {
			top := stack[len(stack)-1]

			if top.idx < len(top.edges) {
				e := top.edges[top.idx]
				top.idx++

				if e.ID == top.entryEdgeID && !top.skippedEntry {
					top.skippedEntry = true
					continue
				}

				neighbor := otherEndpoint(e, top.node)
				if neighbor == "" {
					continue
				}

				if !visited[neighbor] {
					visited[neighbor] = true
					disc[neighbor] = timer
					low[neighbor] = timer
					timer++
					if len(stack) == 1 {
						rootChildren++
					}
					stack = append(stack, &tarjanFrame{node: neighbor, edges: snap.EdgesOf(neighbor), entryEdgeID: e.ID})
				} else if disc[neighbor] < low[top.node] {
					low[top.node] = disc[neighbor]
				}
				continue
			}

			// Done exploring top; pop and fold into its parent.
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				if rootChildren >= 2 {
					isAP[top.node] = true
				}
				break
			}

			parent := stack[len(stack)-1]
			if low[top.node] < low[parent.node] {
				low[parent.node] = low[top.node]
			}
			if len(stack) > 1 && low[top.node] >= disc[parent.node] {
				isAP[parent.node] = true
			}
			if low[top.node] > disc[parent.node] {
				bridges = append(bridges, findEdge(top.entryEdgeID, top.edges))
			}
		}
	}

	return isAP, bridges
}

func otherEndpoint(e *graph.Edge, id string) string {
	switch id {
	case e.SourceID:
		return e.TargetID
	case e.TargetID:
		return e.SourceID
	default:
		return ""
	}
}

// findEdge locates the edge with id among a node's own edge list (the edge
// it was entered by is always present there).
func findEdge(id string, edges []*graph.Edge) *graph.Edge {
	for _, e := range edges {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func componentsIfRemoved(snap *graph.Snapshot, removedID string) int {
	ids := make([]string, 0, snap.NodeCount())
	for _, id := range snap.NodeIDs() {
		if id != removedID {
			ids = append(ids, id)
		}
	}
	uf := unionfind.New(ids)
	for _, e := range snap.Edges() {
		if e.SourceID == removedID || e.TargetID == removedID {
			continue
		}
		uf.Union(e.SourceID, e.TargetID)
	}
	return len(uf.Components())
}

func analyzeFragility(snap *graph.Snapshot, opts Options) Fragility {
	isAP, bridgeEdges := articulationPointsAndBridges(snap)

	var aps []APInfo
	apIDs := make([]string, 0, len(isAP))
	for id := range isAP {
		apIDs = append(apIDs, id)
	}
	sort.Strings(apIDs)
	for _, id := range apIDs {
		aps = append(aps, APInfo{NodeID: id, ComponentsIfRemoved: componentsIfRemoved(snap, id)})
	}

	var bridges []BridgeInfo
	for _, e := range bridgeEdges {
		if e == nil {
			continue
		}
		src, tgt := snap.Node(e.SourceID), snap.Node(e.TargetID)
		var srcTitle, tgtTitle string
		if src != nil {
			srcTitle = src.Title
		}
		if tgt != nil {
			tgtTitle = tgt.Title
		}
		bridges = append(bridges, BridgeInfo{
			SourceID:    e.SourceID,
			TargetID:    e.TargetID,
			SourceTitle: srcTitle,
			TargetTitle: tgtTitle,
		})
	}
	sort.Slice(bridges, func(i, j int) bool {
		if bridges[i].SourceID != bridges[j].SourceID {
			return bridges[i].SourceID < bridges[j].SourceID
		}
		return bridges[i].TargetID < bridges[j].TargetID
	})

	fragilePairs := fragileRegionPairs(snap)

	apCount := len(aps)
	aps = capInt(aps, opts.TopN)
	bridges = capInt(bridges, opts.TopN)
	fragilePairs = capInt(fragilePairs, opts.TopN)

	return Fragility{ArticulationPoints: aps, Bridges: bridges, FragileRegionPairs: fragilePairs, APCount: apCount}
}

// fragileRegionPairs counts cross-region edges for every unordered pair of
// regions and keeps pairs with 1 or 2 such edges (spec glossary: "Fragile
// connection").
func fragileRegionPairs(snap *graph.Snapshot) []FragileRegionPair {
	counts := make(map[[2]string]int)
	for _, e := range snap.Edges() {
		ra, rb := snap.Region(e.SourceID), snap.Region(e.TargetID)
		if ra == "" || rb == "" || ra == rb {
			continue
		}
		key := [2]string{ra, rb}
		if rb < ra {
			key = [2]string{rb, ra}
		}
		counts[key]++
	}

	var out []FragileRegionPair
	for key, count := range counts {
		if count >= 1 && count <= 2 {
			out = append(out, FragileRegionPair{RegionA: key[0], RegionB: key[1], CrossEdgeCount: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegionA != out[j].RegionA {
			return out[i].RegionA < out[j].RegionA
		}
		return out[i].RegionB < out[j].RegionB
	})
	return out
}
