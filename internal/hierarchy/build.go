package hierarchy

import (
	"context"
	"fmt"
	"sort"

	"github.com/josephgoksu/corpusgraph/internal/graph"
	"github.com/josephgoksu/corpusgraph/internal/unionfind"
)

// ProgressFunc is called once per candidate threshold examined, across the
// whole recursion, so a caller can observe and cancel a long build (spec §5:
// "per candidate threshold in the tree builder").
type ProgressFunc func(candidatesExamined int)

// Build recursively cuts the dendrogram implied by edges over members into
// an adaptive tree rooted at rootID, starting from spec.md's canonical
// range [EdgeFloor, 1.0] with no parent threshold at depth 0.
//
// ctx is checked at every candidate-threshold boundary; on cancellation the
// function returns whatever subtree it has built so far (spec §5, §7).
func Build(ctx context.Context, rootID string, members []string, edges []*graph.Edge, progress ProgressFunc) *BuildResult {
	idx := buildEdgeIndex(edges)
	b := &builder{ctx: ctx, idx: idx, progress: progress}
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	root := b.buildNode(rootID, sorted, CutRangeLo, CutRangeHi, nil, 0)
	return &BuildResult{Root: root}
}

type builder struct {
	ctx      context.Context
	idx      *edgeIndex
	progress ProgressFunc
	examined int
}

func (b *builder) cancelled() bool {
	select {
	case <-b.ctx.Done():
		return true
	default:
		return false
	}
}

func (b *builder) buildNode(id string, members []string, lo, hi float64, parentThreshold *float64, depth int) *GroupNode {
	node := &GroupNode{
		ID:      id,
		Depth:   depth,
		Members: members,
		RangeLo: lo,
		RangeHi: hi,
	}

	memberSet := toSet(members)
	internal := b.idx.internalEdges(memberSet)
	iw := weights(internal)

	// Stop condition 1: group too small.
	if len(members) < MinSize(depth) {
		node.IsLeaf = true
		return node
	}
	// Stop condition 2: already cohesive.
	if variance(iw) < TightThreshold {
		node.IsLeaf = true
		return node
	}
	// Stop condition 3: range exhausted.
	if hi-lo < DeltaMin {
		node.IsLeaf = true
		return node
	}

	if b.cancelled() {
		node.IsLeaf = true
		return node
	}

	cut, ok := b.findValidSplit(members, memberSet, lo, hi, parentThreshold, depth)
	if !ok {
		cut, ok = b.centroidBisection(members, memberSet, depth)
		if !ok {
			node.IsLeaf = true
			return node
		}
	}

	node.Threshold = cut.threshold
	node.Fallback = cut.fallback
	node.Bridges = cut.bridges

	for i, comp := range cut.components {
		compMembers := append([]string(nil), comp...)
		sort.Strings(compMembers)
		compInternal := b.idx.internalEdges(toSet(compMembers))
		compWeights := weights(compInternal)
		childLo, childHi := lo, hi
		if len(compWeights) > 0 {
			childLo, childHi = minOf(compWeights), maxOf(compWeights)
		}
		childID := fmt.Sprintf("%s.%d", id, i)
		var childParentThreshold *float64
		if cut.threshold != nil {
			t := *cut.threshold
			childParentThreshold = &t
		}
		child := b.buildNode(childID, compMembers, childLo, childHi, childParentThreshold, depth+1)
		node.Children = append(node.Children, child)
	}

	node.SiblingEdges = b.buildSiblingEdges(cut, node.Children)
	return node
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// buildSiblingEdges emits one SiblingEdge per pair of children, per spec
// §4.7 ("For every pair of resulting children (A,B) emit a sibling edge").
func (b *builder) buildSiblingEdges(cut splitResult, children []*GroupNode) []SiblingEdge {
	var out []SiblingEdge
	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			aSet := toSet(children[i].Members)
			bSet := toSet(children[j].Members)
			interAB := inter(b.idx, aSet, bSet)

			var bridgeIDs []string
			for memberID, childIdxs := range cut.bridges {
				if containsBoth(childIdxs, i, j) {
					bridgeIDs = append(bridgeIDs, memberID)
				}
			}
			sort.Strings(bridgeIDs)

			se := SiblingEdge{
				LeftChild:  i,
				RightChild: j,
				Weight:     interAB,
				Bridges:    bridgeIDs,
			}
			if cut.threshold != nil {
				se.Threshold = *cut.threshold
			}
			out = append(out, se)
		}
	}
	return out
}

func containsBoth(idxs []int, a, b int) bool {
	hasA, hasB := false, false
	for _, v := range idxs {
		if v == a {
			hasA = true
		}
		if v == b {
			hasB = true
		}
	}
	return hasA && hasB
}

type splitResult struct {
	threshold  *float64 // nil for a fallback bisection
	fallback   bool
	components [][]string
	bridges    map[string][]int // member id -> child indices it straddles
}

// findValidSplit enumerates unique internal-edge weights in (lo, hi]
// descending and returns the candidate maximizing quality, per spec §4.7.
func (b *builder) findValidSplit(members []string, memberSet map[string]bool, lo, hi float64, parentThreshold *float64, depth int) (splitResult, bool) {
	internal := b.idx.internalEdges(memberSet)

	uniqueSet := make(map[float64]bool)
	for _, e := range internal {
		w := *e.Weight
		if w > lo && w <= hi {
			uniqueSet[w] = true
		}
	}
	if len(uniqueSet) == 0 {
		return splitResult{}, false
	}
	thresholds := make([]float64, 0, len(uniqueSet))
	for w := range uniqueSet {
		thresholds = append(thresholds, w)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(thresholds)))

	var best *candidateSplit
	for _, tau := range thresholds {
		if b.cancelled() {
			break
		}
		b.examined++
		if b.progress != nil {
			b.progress(b.examined)
		}

		if parentThreshold != nil && absf(tau-*parentThreshold) < DeltaMin {
			continue
		}

		cand := b.evaluateThreshold(members, memberSet, internal, tau, depth)
		if cand == nil {
			continue
		}
		if best == nil || cand.quality > best.quality ||
			(cand.quality == best.quality && cand.tau > best.tau) {
			best = cand
		}
	}

	if best == nil {
		return splitResult{}, false
	}

	tau := best.tau
	return splitResult{
		threshold:  &tau,
		components: best.components,
		bridges:    b.detectBridges(members, memberSet, tau, best.components),
	}, true
}

type candidateSplit struct {
	tau        float64
	components [][]string
	quality    float64
}

func (b *builder) evaluateThreshold(members []string, memberSet map[string]bool, internal []*graph.Edge, tau float64, depth int) *candidateSplit {
	uf := unionfind.New(members)
	for _, e := range internal {
		if *e.Weight > tau {
			uf.Union(e.SourceID, e.TargetID)
		}
	}
	comps := uf.Components()

	minChildSize := MinSize(depth + 1)
	var kept [][]string
	for _, c := range comps {
		if len(c) >= minChildSize {
			kept = append(kept, c)
		}
	}
	if len(kept) < 2 {
		return nil
	}

	// Reattach members of dropped too-small components to the largest
	// surviving component, so every member of G still ends up in exactly
	// one child (resolves an ambiguity the spec leaves open; see DESIGN.md).
	largest := 0
	for i, c := range kept {
		if len(c) > len(kept[largest]) {
			largest = i
		}
		_ = i
	}
	keptSet := make(map[string]bool)
	for _, c := range kept {
		for _, id := range c {
			keptSet[id] = true
		}
	}
	for _, c := range comps {
		if len(c) >= minChildSize {
			continue
		}
		for _, id := range c {
			if !keptSet[id] {
				kept[largest] = append(kept[largest], id)
			}
		}
	}
	for i := range kept {
		sort.Strings(kept[i])
	}

	sizes := make([]int, len(kept))
	for i, c := range kept {
		sizes[i] = len(c)
	}
	minSize, maxSize := sizes[0], sizes[0]
	for _, s := range sizes {
		if s < minSize {
			minSize = s
		}
		if s > maxSize {
			maxSize = s
		}
	}
	if maxSize == 0 || float64(minSize)/float64(maxSize) < MinRatio(len(members)) {
		return nil
	}

	sets := make([]map[string]bool, len(kept))
	for i, c := range kept {
		sets[i] = toSet(c)
	}
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			if cohesionRatio(b.idx, sets[i], sets[j]) <= CohesionThreshold {
				return nil
			}
		}
	}

	return &candidateSplit{tau: tau, components: kept, quality: quality(sizes)}
}

// detectBridges labels members whose best edge within their own final
// component and best edge into the closest other component both lie
// within DeltaMin of tau (spec §4.7, "Bridge detection").
func (b *builder) detectBridges(members []string, memberSet map[string]bool, tau float64, components [][]string) map[string][]int {
	compOf := make(map[string]int, len(members))
	for i, c := range components {
		for _, id := range c {
			compOf[id] = i
		}
	}

	bridges := make(map[string][]int)
	for _, p := range members {
		home, inComponent := compOf[p]
		if !inComponent {
			continue // reattached member, not eligible as a bridge
		}

		edgeAbove := 0.0
		bestOtherComp := -1
		edgeBelow := 0.0

		for _, q := range members {
			if q == p {
				continue
			}
			wgt, ok := b.idx.weight(p, q)
			if !ok {
				continue
			}
			otherComp, ok := compOf[q]
			if !ok {
				continue
			}
			if otherComp == home {
				if wgt > edgeAbove {
					edgeAbove = wgt
				}
			} else if wgt > edgeBelow {
				edgeBelow = wgt
				bestOtherComp = otherComp
			}
		}

		if bestOtherComp == -1 {
			continue
		}
		if absf(edgeAbove-tau) < DeltaMin && absf(edgeBelow-tau) < DeltaMin {
			bridges[p] = []int{home, bestOtherComp}
		}
	}
	return bridges
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
