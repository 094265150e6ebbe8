// Package dendrogram builds the merge sequence the adaptive tree builder
// cuts (spec §4.6). A dendrogram is never persisted; it is always computed
// on demand from a node set and its semantic edges.
package dendrogram

import (
	"sort"

	"github.com/josephgoksu/corpusgraph/internal/graph"
	"github.com/josephgoksu/corpusgraph/internal/unionfind"
)

// Merge is one record in the dendrogram: two components joined at weight w.
type Merge struct {
	Left   string // root id of the left component at merge time
	Right  string // root id of the right component at merge time
	Weight float64
	Size   int // combined size after the merge
}

// Build sorts edges descending by weight (ties broken by (source,target)
// ascending for determinism), then sweeps them through a union-find over
// nodeIDs, recording a Merge whenever an edge joins two distinct
// components. Edges with no weight are skipped, as are edges whose
// endpoints are not both in nodeIDs.
func Build(nodeIDs []string, edges []*graph.Edge) []Merge {
	members := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		members[id] = true
	}

	filtered := make([]*graph.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Weight == nil {
			continue
		}
		if !members[e.SourceID] || !members[e.TargetID] {
			continue
		}
		filtered = append(filtered, e)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		wi, wj := *filtered[i].Weight, *filtered[j].Weight
		if wi != wj {
			return wi > wj
		}
		if filtered[i].SourceID != filtered[j].SourceID {
			return filtered[i].SourceID < filtered[j].SourceID
		}
		return filtered[i].TargetID < filtered[j].TargetID
	})

	uf := unionfind.New(nodeIDs)
	var merges []Merge

	for _, e := range filtered {
		rootA, rootB := uf.Find(e.SourceID), uf.Find(e.TargetID)
		if rootA == rootB {
			continue
		}
		sizeA, sizeB := uf.SizeOf(rootA), uf.SizeOf(rootB)
		uf.Union(rootA, rootB)
		merges = append(merges, Merge{
			Left:   rootA,
			Right:  rootB,
			Weight: *e.Weight,
			Size:   sizeA + sizeB,
		})
	}

	return merges
}
