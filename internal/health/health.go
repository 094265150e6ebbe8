// Package health implements the graph health analyzer (spec §4.9): topology
// metrics, fragility via iterative Tarjan articulation points and bridges,
// staleness detection, and a four-component health score.
package health

import (
	"sort"
	"time"

	"github.com/josephgoksu/corpusgraph/internal/graph"
	"github.com/josephgoksu/corpusgraph/internal/unionfind"
)

// Options parameterizes one Analyze call (spec §4.9 defaults).
type Options struct {
	HubThreshold int // default 15
	TopN         int // default unbounded when <= 0... callers should set explicitly
	StaleDays    int // default 60
	Now          time.Time
}

// DefaultOptions returns spec-stated defaults. Now must still be set by the
// caller (there is no implicit wall-clock default so results stay
// reproducible in tests).
func DefaultOptions() Options {
	return Options{HubThreshold: 15, TopN: 20, StaleDays: 60}
}

// DegreeBin is one bucket of the degree histogram.
type DegreeBin struct {
	Label string
	Count int
}

// HubInfo describes a node whose degree exceeds HubThreshold.
type HubInfo struct {
	NodeID string
	InDeg  int
	OutDeg int
	Degree int
}

// OrphanInfo describes a degree-0 node.
type OrphanInfo struct {
	NodeID string
	Title  string
}

// Topology is the structural summary of a snapshot.
type Topology struct {
	TotalNodes        int
	TotalEdges        int
	NumComponents     int
	LargestComponent  int
	SmallestComponent int
	DegreeHistogram   []DegreeBin
	Hubs              []HubInfo
	Orphans           []OrphanInfo

	// OrphanCount is the true number of degree-0 nodes, before Orphans is
	// capped to opts.TopN. The health score (spec §4.9) divides by this,
	// not by len(Orphans).
	OrphanCount int
}

// APInfo describes one articulation point.
type APInfo struct {
	NodeID             string
	ComponentsIfRemoved int
}

// BridgeInfo describes one bridge edge.
type BridgeInfo struct {
	SourceID    string
	TargetID    string
	SourceTitle string
	TargetTitle string
}

// FragileRegionPair is a pair of regions joined by at most two cross-region
// edges (spec glossary: "fragile connection").
type FragileRegionPair struct {
	RegionA        string
	RegionB        string
	CrossEdgeCount int
}

// Fragility is the fragility summary of a snapshot.
type Fragility struct {
	ArticulationPoints []APInfo
	Bridges            []BridgeInfo
	FragileRegionPairs []FragileRegionPair

	// APCount is the true number of articulation points, before
	// ArticulationPoints is capped to opts.TopN.
	APCount int
}

// StaleNode is a node flagged as stale.
type StaleNode struct {
	NodeID        string
	DaysSinceEdit int
}

// StaleSummary is a summarizes edge that has drifted from its target.
type StaleSummary struct {
	EdgeID    string
	SourceID  string
	TargetID  string
	DriftDays int
}

// Staleness is the staleness summary of a snapshot.
type Staleness struct {
	StaleNodes     []StaleNode
	StaleSummaries []StaleSummary

	// StaleCount is the true number of stale nodes, before StaleNodes is
	// capped to opts.TopN.
	StaleCount int
}

// Score is the four-component health breakdown plus the overall mean.
type Score struct {
	Connectivity float64
	Components   float64
	Staleness    float64
	Fragility    float64
	Overall      float64
}

// Report is the full output of Analyze.
type Report struct {
	Topology  Topology
	Fragility Fragility
	Staleness Staleness
	Score     Score
}

// Analyze runs every health check against snap.
func Analyze(snap *graph.Snapshot, opts Options) Report {
	topo := analyzeTopology(snap, opts)
	frag := analyzeFragility(snap, opts)
	stale := analyzeStaleness(snap, opts)
	score := aggregate(topo, frag, stale)
	return Report{Topology: topo, Fragility: frag, Staleness: stale, Score: score}
}

func analyzeTopology(snap *graph.Snapshot, opts Options) Topology {
	ids := snap.NodeIDs()
	uf := unionfind.New(ids)
	for _, e := range snap.Edges() {
		uf.Union(e.SourceID, e.TargetID)
	}
	components := uf.Components()

	var largest, smallest int
	if len(components) > 0 {
		largest, smallest = len(components[0]), len(components[0])
		for _, c := range components {
			if len(c) > largest {
				largest = len(c)
			}
			if len(c) < smallest {
				smallest = len(c)
			}
		}
	}

	bins := []DegreeBin{
		{Label: "0"}, {Label: "1"}, {Label: "2"}, {Label: "3-5"},
		{Label: "6-10"}, {Label: "11-20"}, {Label: "21+"},
	}
	var hubs []HubInfo
	var orphans []OrphanInfo
	for _, id := range ids {
		deg := snap.Degree(id)
		bins[degreeBin(deg)].Count++
		if deg == 0 {
			node := snap.Node(id)
			title := ""
			if node != nil {
				title = node.Title
			}
			orphans = append(orphans, OrphanInfo{NodeID: id, Title: title})
		}
		if deg > opts.HubThreshold {
			hubs = append(hubs, HubInfo{
				NodeID: id,
				InDeg:  len(snap.InNeighbors(id)),
				OutDeg: len(snap.OutNeighbors(id)),
				Degree: deg,
			})
		}
	}
	sort.Slice(hubs, func(i, j int) bool { return hubs[i].NodeID < hubs[j].NodeID })
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].NodeID < orphans[j].NodeID })
	orphanCount := len(orphans)
	hubs = capInt(hubs, opts.TopN)
	orphans = capInt(orphans, opts.TopN)

	return Topology{
		TotalNodes:        len(ids),
		TotalEdges:        len(snap.Edges()),
		NumComponents:     len(components),
		LargestComponent:  largest,
		SmallestComponent: smallest,
		DegreeHistogram:   bins,
		Hubs:              hubs,
		Orphans:           orphans,
		OrphanCount:       orphanCount,
	}
}

func degreeBin(deg int) int {
	switch {
	case deg == 0:
		return 0
	case deg == 1:
		return 1
	case deg == 2:
		return 2
	case deg <= 5:
		return 3
	case deg <= 10:
		return 4
	case deg <= 20:
		return 5
	default:
		return 6
	}
}

func capInt[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
