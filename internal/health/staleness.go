package health

import (
	"sort"
	"time"

	"github.com/josephgoksu/corpusgraph/internal/graph"
)

const staleSummaryDriftDays = 7

func analyzeStaleness(snap *graph.Snapshot, opts Options) Staleness {
	staleDays := opts.StaleDays
	if staleDays <= 0 {
		staleDays = 60
	}

	var staleNodes []StaleNode
	for _, id := range snap.NodeIDs() {
		node := snap.Node(id)
		if node == nil {
			continue
		}
		daysSinceEdit := int(opts.Now.Sub(node.UpdatedAt).Hours() / 24)
		if daysSinceEdit < staleDays {
			continue
		}
		if !hasRecentIncomingEdge(snap, id, opts.Now, staleDays) {
			continue
		}
		staleNodes = append(staleNodes, StaleNode{NodeID: id, DaysSinceEdit: daysSinceEdit})
	}
	sort.Slice(staleNodes, func(i, j int) bool {
		if staleNodes[i].DaysSinceEdit != staleNodes[j].DaysSinceEdit {
			return staleNodes[i].DaysSinceEdit > staleNodes[j].DaysSinceEdit
		}
		return staleNodes[i].NodeID < staleNodes[j].NodeID
	})

	var summaries []StaleSummary
	for _, e := range snap.Edges() {
		if e.Type != graph.EdgeSummarizes {
			continue
		}
		src, tgt := snap.Node(e.SourceID), snap.Node(e.TargetID)
		if src == nil || tgt == nil {
			continue
		}
		driftDays := int(tgt.UpdatedAt.Sub(src.UpdatedAt).Hours() / 24)
		if driftDays <= staleSummaryDriftDays {
			continue
		}
		summaries = append(summaries, StaleSummary{
			EdgeID:    e.ID,
			SourceID:  e.SourceID,
			TargetID:  e.TargetID,
			DriftDays: driftDays,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].DriftDays != summaries[j].DriftDays {
			return summaries[i].DriftDays > summaries[j].DriftDays
		}
		return summaries[i].EdgeID < summaries[j].EdgeID
	})

	staleCount := len(staleNodes)
	staleNodes = capInt(staleNodes, opts.TopN)
	summaries = capInt(summaries, opts.TopN)

	return Staleness{StaleNodes: staleNodes, StaleSummaries: summaries, StaleCount: staleCount}
}

func hasRecentIncomingEdge(snap *graph.Snapshot, id string, now time.Time, staleDays int) bool {
	for _, e := range snap.EdgesOf(id) {
		if e.TargetID != id {
			continue
		}
		ageDays := int(now.Sub(e.CreatedAt).Hours() / 24)
		if ageDays < staleDays {
			return true
		}
	}
	return false
}

func aggregate(topo Topology, frag Fragility, stale Staleness) Score {
	if topo.TotalNodes == 0 {
		return Score{}
	}

	total := float64(topo.TotalNodes)
	connectivity := 1 - float64(topo.OrphanCount)/total

	components := 0.0
	if topo.NumComponents > 0 {
		components = 1 / float64(topo.NumComponents)
	}
	if components > 1 {
		components = 1
	}

	staleRatio := float64(stale.StaleCount) / total
	if staleRatio > 1 {
		staleRatio = 1
	}
	stalenessScore := 1 - staleRatio

	apRatio := float64(frag.APCount) / total
	if apRatio > 1 {
		apRatio = 1
	}
	fragilityScore := 1 - apRatio

	overall := (connectivity + components + stalenessScore + fragilityScore) / 4

	return Score{
		Connectivity: connectivity,
		Components:   components,
		Staleness:    stalenessScore,
		Fragility:    fragilityScore,
		Overall:      overall,
	}
}
