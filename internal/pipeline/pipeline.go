// Package pipeline implements the fixed eight-stage rebuild sequence of
// spec §4.11: it is the single owning thread that turns parent-less items
// with embeddings into a persisted adaptive-tree hierarchy. Each stage is
// idempotent and restartable (spec §5, §7).
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/josephgoksu/corpusgraph/internal/dendrogram"
	"github.com/josephgoksu/corpusgraph/internal/embedcollab"
	"github.com/josephgoksu/corpusgraph/internal/graph"
	"github.com/josephgoksu/corpusgraph/internal/hierarchy"
	"github.com/josephgoksu/corpusgraph/internal/namer"
	"github.com/josephgoksu/corpusgraph/internal/nncollab"
	"github.com/josephgoksu/corpusgraph/internal/ranker"
	"github.com/josephgoksu/corpusgraph/internal/similarity"
	"github.com/josephgoksu/corpusgraph/internal/store"
	"github.com/josephgoksu/corpusgraph/internal/vectormath"
)

// Status is the progress-event status enum of spec §7.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
	StatusComplete   Status = "complete"
)

// ProgressEvent reports one pipeline stage transition (spec §5, §7).
type ProgressEvent struct {
	Stage  string
	Status Status
	Reason string
}

// Options configures a Run.
type Options struct {
	Workers         int     // worker pool size for similarity build; default 4
	SimilarityFloor float64 // default similarity.DefaultFloor
	TopKNeighbors   int     // default similarity.DefaultTopK
	UniverseID      string  // default "universe"
	UniverseTitle   string  // default "Universe"

	// Namer names newly formed groups (spec §6). Defaults to
	// namer.NewTFIDFNamer() when nil, per the spec's fallback rule.
	Namer namer.Namer

	// NNIndex, if set, is used by the similarity-edge builder in place of
	// its brute-force pass (spec §6). Left nil by default.
	NNIndex nncollab.Index

	// Progress, if set, receives every stage transition.
	Progress func(ProgressEvent)
}

// DefaultOptions returns the spec's defaults.
func DefaultOptions() Options {
	return Options{
		Workers:         4,
		SimilarityFloor: similarity.DefaultFloor,
		TopKNeighbors:   similarity.DefaultTopK,
		UniverseID:      "universe",
		UniverseTitle:   "Universe",
	}
}

// Report summarizes one Run.
type Report struct {
	EmbeddingsComputed     int
	EmbeddingFailures      int
	SimilarityEdgesEmitted int
	DendrogramMerges       int
	GroupsCreated          int
	SiblingEdgesEmitted    int
	BridgeEdgesEmitted     int
	RankedNodes            int
	Cancelled              bool
}

// Driver orchestrates one rebuild run against a store and an embedding
// collaborator.
type Driver struct {
	store    *store.Store
	embedder embedcollab.Embedder
	log      *slog.Logger
	opts     Options
}

// New builds a Driver. log may be nil, in which case slog.Default() is used.
func New(st *store.Store, embedder embedcollab.Embedder, log *slog.Logger, opts Options) *Driver {
	if log == nil {
		log = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	if opts.SimilarityFloor == 0 {
		opts.SimilarityFloor = similarity.DefaultFloor
	}
	if opts.TopKNeighbors == 0 {
		opts.TopKNeighbors = similarity.DefaultTopK
	}
	if opts.UniverseID == "" {
		opts.UniverseID = DefaultOptions().UniverseID
	}
	if opts.UniverseTitle == "" {
		opts.UniverseTitle = DefaultOptions().UniverseTitle
	}
	if opts.Namer == nil {
		opts.Namer = namer.NewTFIDFNamer()
	}
	return &Driver{store: st, embedder: embedder, log: log, opts: opts}
}

func (d *Driver) emit(stage string, status Status, reason string) {
	if d.opts.Progress != nil {
		d.opts.Progress(ProgressEvent{Stage: stage, Status: status, Reason: reason})
	}
	if status == StatusError {
		d.log.Error("pipeline stage", "stage", stage, "reason", reason)
		return
	}
	d.log.Info("pipeline stage", "stage", stage, "status", string(status), "reason", reason)
}

// Run executes the eight stages of spec §4.11 in order, returning whatever
// partial Report it produced if ctx is cancelled mid-run.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	// Stage 1: ensure embeddings.
	d.emit("embeddings", StatusProcessing, "")
	computed, failures, err := d.ensureEmbeddings(ctx)
	report.EmbeddingsComputed = computed
	report.EmbeddingFailures = failures
	if err != nil {
		d.emit("embeddings", StatusError, err.Error())
		return report, err
	}
	if ctx.Err() != nil {
		report.Cancelled = true
		d.emit("embeddings", StatusCancelled, "context cancelled")
		return report, ctx.Err()
	}
	d.emit("embeddings", StatusSuccess, fmt.Sprintf("%d computed, %d failed", computed, failures))

	// Stage 2: emit similarity edges.
	d.emit("similarity", StatusProcessing, "")
	emitted, err := d.buildSimilarityEdges(ctx)
	report.SimilarityEdgesEmitted = emitted
	if err != nil {
		d.emit("similarity", StatusError, err.Error())
		return report, err
	}
	if ctx.Err() != nil {
		report.Cancelled = true
		d.emit("similarity", StatusCancelled, "context cancelled")
		return report, ctx.Err()
	}
	if err := d.store.SetPipelineState(store.StateProcessed); err != nil {
		return report, fmt.Errorf("set pipeline state processed: %w", err)
	}
	d.emit("similarity", StatusSuccess, fmt.Sprintf("%d edges emitted", emitted))

	// Stage 3: clear non-item nodes; re-parent items to the universe.
	d.emit("clear_and_reparent", StatusProcessing, "")
	universe, err := d.store.EnsureUniverse(d.opts.UniverseID, d.opts.UniverseTitle)
	if err != nil {
		d.emit("clear_and_reparent", StatusError, err.Error())
		return report, fmt.Errorf("ensure universe: %w", err)
	}
	if err := d.store.ClearGroups(); err != nil {
		d.emit("clear_and_reparent", StatusError, err.Error())
		return report, fmt.Errorf("clear groups: %w", err)
	}
	if err := d.store.ReparentItemsToUniverse(universe.ID); err != nil {
		d.emit("clear_and_reparent", StatusError, err.Error())
		return report, fmt.Errorf("reparent items: %w", err)
	}
	d.emit("clear_and_reparent", StatusSuccess, "")

	// Stage 4: build the dendrogram, then the adaptive tree.
	d.emit("hierarchy", StatusProcessing, "")
	items, err := d.store.ListItems()
	if err != nil {
		d.emit("hierarchy", StatusError, err.Error())
		return report, fmt.Errorf("list items: %w", err)
	}
	memberIDs := make([]string, len(items))
	for i, n := range items {
		memberIDs[i] = n.ID
	}
	snap, err := d.store.Snapshot()
	if err != nil {
		d.emit("hierarchy", StatusError, err.Error())
		return report, fmt.Errorf("snapshot: %w", err)
	}
	// Only `related` edges feed the dendrogram and tree builder: sibling and
	// bridge belongs_to edges persisted by a prior run are structural
	// artifacts of the hierarchy itself, not semantic input to it (spec §9,
	// open question on bridge participation — resolved in DESIGN.md).
	semanticEdges := filterByType(snap.Edges(), graph.EdgeRelated)
	merges := dendrogram.Build(memberIDs, semanticEdges)
	report.DendrogramMerges = len(merges)

	result := hierarchy.Build(ctx, universe.ID, memberIDs, semanticEdges, func(examined int) {
		if examined%50 == 0 {
			d.log.Debug("hierarchy build progress", "candidates_examined", examined)
		}
	})
	if ctx.Err() != nil {
		report.Cancelled = true
		d.emit("hierarchy", StatusCancelled, "context cancelled")
		return report, ctx.Err()
	}
	if err := d.store.SetPipelineState(store.StateClustered); err != nil {
		return report, fmt.Errorf("set pipeline state clustered: %w", err)
	}
	d.emit("hierarchy", StatusSuccess, fmt.Sprintf("%d dendrogram merges", len(merges)))

	// Stages 5 & 6: persist groups, sibling/bridge edges, and propagate
	// latest_child_date + centroid embeddings bottom-up in the same
	// post-order walk.
	d.emit("persist_groups", StatusProcessing, "")
	if err := d.persistTree(ctx, result.Root, universe.ID, report); err != nil {
		d.emit("persist_groups", StatusError, err.Error())
		return report, fmt.Errorf("persist tree: %w", err)
	}
	d.emit("persist_groups", StatusSuccess, fmt.Sprintf("%d groups, %d sibling edges, %d bridge edges",
		report.GroupsCreated, report.SiblingEdgesEmitted, report.BridgeEdgesEmitted))

	// Stage 7: populate denormalized parent ids on every edge.
	d.emit("denormalize", StatusProcessing, "")
	if err := d.store.PopulateDenormalizedParents(); err != nil {
		d.emit("denormalize", StatusError, err.Error())
		return report, fmt.Errorf("populate denormalized parents: %w", err)
	}
	if err := d.store.RecomputeChildCounts(); err != nil {
		d.emit("denormalize", StatusError, err.Error())
		return report, fmt.Errorf("recompute child counts: %w", err)
	}
	d.emit("denormalize", StatusSuccess, "")

	// Bonus: rank top-K edges per node over the final graph (spec §2
	// overview, "rank top-K edges per node"); not persisted, exercised here
	// so every component the pipeline overview names actually runs.
	if finalSnap, err := d.store.Snapshot(); err == nil {
		for _, id := range finalSnap.NodeIDs() {
			edges := finalSnap.EdgesOf(id)
			if len(edges) == 0 {
				continue
			}
			if len(ranker.TopK(edges, 5)) > 0 {
				report.RankedNodes++
			}
		}
	}

	// Stage 8: mark pipeline state hierarchized.
	if err := d.store.SetPipelineState(store.StateHierarchized); err != nil {
		return report, fmt.Errorf("set pipeline state hierarchized: %w", err)
	}
	d.emit("pipeline", StatusComplete, "")

	return report, nil
}

// ensureEmbeddings computes embeddings for every item missing one (spec
// §4.11 step 1). An individual collaborator failure is recorded and
// skipped rather than aborting the stage (spec §7: "the stage is
// restartable; it marks itself incomplete and returns the count of
// successes").
func (d *Driver) ensureEmbeddings(ctx context.Context) (computed, failures int, err error) {
	missing, err := d.store.ListMissingEmbeddings()
	if err != nil {
		return 0, 0, fmt.Errorf("list missing embeddings: %w", err)
	}
	for _, n := range missing {
		if ctx.Err() != nil {
			return computed, failures, nil
		}
		text := n.Content
		if text == "" {
			text = n.Title
		}
		vec, embedErr := d.embedder.Embed(ctx, text)
		if embedErr != nil {
			failures++
			d.log.Warn("embedding collaborator failed", "node", n.ID, "error", embedErr)
			continue
		}
		if err := d.store.SetEmbedding(n.ID, vec); err != nil {
			return computed, failures, fmt.Errorf("store embedding for %s: %w", n.ID, err)
		}
		computed++
	}
	return computed, failures, nil
}

// buildSimilarityEdges emits related edges at EdgeFloor over every
// embedded item (spec §4.11 step 2).
func (d *Driver) buildSimilarityEdges(ctx context.Context) (int, error) {
	items, err := d.store.ListItems()
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	simItems := make([]similarity.Item, 0, len(items))
	for _, n := range items {
		if !n.HasEmbedding {
			continue
		}
		vec, err := d.store.Embedding(n.ID)
		if err != nil {
			return 0, fmt.Errorf("load embedding for %s: %w", n.ID, err)
		}
		if vec == nil {
			continue
		}
		simItems = append(simItems, similarity.Item{ID: n.ID, Embedding: vec})
	}

	result, err := similarity.Build(ctx, simItems, similarity.Options{
		Floor:   d.opts.SimilarityFloor,
		TopK:    d.opts.TopKNeighbors,
		Workers: d.opts.Workers,
		Index:   d.opts.NNIndex,
		Progress: func(processed, total int) {
			if total > 0 && (processed%25 == 0 || processed == total) {
				d.log.Debug("similarity build progress", "processed", processed, "total", total)
			}
		},
	})
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	for _, e := range result.Edges {
		e.ID = "edge-" + uuid.New().String()[:8]
		e.CreatedAt = now
	}
	if len(result.Edges) > 0 {
		if err := d.store.BulkEmitEdges(result.Edges); err != nil {
			return 0, fmt.Errorf("emit similarity edges: %w", err)
		}
	}
	return result.Emitted, nil
}

// treeResult carries the aggregate (centroid, latest update) computed for
// one persisted subtree back up to its parent.
type treeResult struct {
	centroid []float32
	latest   time.Time
}

// persistTree walks result in post-order, creating one real node per
// non-root hierarchy.GroupNode, re-parenting leaf members, emitting
// sibling and bridge edges, and propagating centroid embeddings and
// latest_child_date bottom-up (spec §4.11 steps 5-6).
func (d *Driver) persistTree(ctx context.Context, root *hierarchy.GroupNode, universeID string, report *Report) error {
	idMap := make(map[string]string)
	var pendingEdges []*graph.Edge
	now := time.Now().UTC()
	usedNames := make(map[string]map[string]bool) // parentRealID -> names already assigned under it

	var walk func(gn *hierarchy.GroupNode, parentRealID string, depth int) (*treeResult, error)
	walk = func(gn *hierarchy.GroupNode, parentRealID string, depth int) (*treeResult, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		isRoot := gn == root
		var realID string
		if isRoot {
			realID = universeID
		} else {
			realID = "grp-" + uuid.New().String()[:8]
			title := d.nameGroup(ctx, gn, parentRealID, usedNames)
			node := &graph.Node{
				ID:        realID,
				Title:     title,
				IsItem:    false,
				ParentID:  &parentRealID,
				Depth:     depth,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := d.store.CreateNode(node); err != nil {
				return nil, fmt.Errorf("create group node: %w", err)
			}
			report.GroupsCreated++
		}
		idMap[gn.ID] = realID

		if gn.IsLeaf {
			if len(gn.Members) > 0 {
				if err := d.store.ReparentNodes(gn.Members, realID, depth+1); err != nil {
					return nil, fmt.Errorf("reparent leaf members: %w", err)
				}
			}
			return d.leafAggregate(gn.Members, realID)
		}

		childResults := make([]*treeResult, len(gn.Children))
		for i, child := range gn.Children {
			cr, err := walk(child, realID, depth+1)
			if err != nil {
				return nil, err
			}
			childResults[i] = cr
		}

		for _, se := range gn.SiblingEdges {
			leftReal := idMap[gn.Children[se.LeftChild].ID]
			rightReal := idMap[gn.Children[se.RightChild].ID]
			weight := se.Weight
			pendingEdges = append(pendingEdges, &graph.Edge{
				ID:        "edge-" + uuid.New().String()[:8],
				SourceID:  leftReal,
				TargetID:  rightReal,
				Type:      graph.EdgeSibling,
				Weight:    &weight,
				CreatedAt: now,
				Metadata:  map[string]any{"threshold": se.Threshold, "bridge_count": len(se.Bridges)},
			})
			report.SiblingEdgesEmitted++
		}

		for memberID, idxs := range gn.Bridges {
			if len(idxs) < 2 {
				continue
			}
			otherReal := idMap[gn.Children[idxs[1]].ID]
			var weight float64
			if gn.Threshold != nil {
				weight = *gn.Threshold
			}
			pendingEdges = append(pendingEdges, &graph.Edge{
				ID:        "edge-" + uuid.New().String()[:8],
				SourceID:  memberID,
				TargetID:  otherReal,
				Type:      graph.EdgeBelongsTo,
				Weight:    &weight,
				CreatedAt: now,
				Reason:    "bridge membership",
				Metadata:  map[string]any{"bridge": true},
			})
			report.BridgeEdgesEmitted++
		}

		return d.internalAggregate(realID, childResults)
	}

	if _, err := walk(root, universeID, 0); err != nil {
		return err
	}
	if len(pendingEdges) > 0 {
		if err := d.store.BulkEmitEdges(pendingEdges); err != nil {
			return fmt.Errorf("emit sibling/bridge edges: %w", err)
		}
	}
	return nil
}

// nameGroup asks d.opts.Namer for a name built from gn's member titles,
// avoiding any name already used by a sibling under parentRealID. A naming
// failure (collaborator unreachable, or no members with readable titles)
// falls back to a generic placeholder rather than aborting the stage, per
// spec §7's restartable-collaborator-failure policy.
func (d *Driver) nameGroup(ctx context.Context, gn *hierarchy.GroupNode, parentRealID string, usedNames map[string]map[string]bool) string {
	forbidden := usedNames[parentRealID]
	if forbidden == nil {
		forbidden = make(map[string]bool)
		usedNames[parentRealID] = forbidden
	}

	var titles []string
	for _, memberID := range gn.Members {
		n, err := d.store.GetNode(memberID)
		if err != nil {
			continue
		}
		titles = append(titles, n.Title)
	}

	fallback := fmt.Sprintf("Group of %d", len(gn.Members))
	if len(titles) == 0 {
		return fallback
	}

	name, err := d.opts.Namer.Name(ctx, titles, forbidden)
	if err != nil {
		d.log.Warn("group naming failed, using placeholder", "error", err)
		name = fallback
	}
	forbidden[name] = true
	return name
}

// leafAggregate computes the centroid and latest update time of a leaf
// group from its member items, and writes both onto the group node.
func (d *Driver) leafAggregate(memberIDs []string, groupID string) (*treeResult, error) {
	var vecs [][]float32
	var latest time.Time
	for _, id := range memberIDs {
		n, err := d.store.GetNode(id)
		if err != nil {
			return nil, fmt.Errorf("lookup member %s: %w", id, err)
		}
		if n.UpdatedAt.After(latest) {
			latest = n.UpdatedAt
		}
		if n.HasEmbedding {
			vec, err := d.store.Embedding(id)
			if err == nil && vec != nil {
				vecs = append(vecs, vec)
			}
		}
	}
	return d.writeAggregate(groupID, vecs, latest)
}

// internalAggregate folds already-computed child aggregates up one level.
func (d *Driver) internalAggregate(groupID string, children []*treeResult) (*treeResult, error) {
	var vecs [][]float32
	var latest time.Time
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.latest.After(latest) {
			latest = c.latest
		}
		if len(c.centroid) > 0 {
			vecs = append(vecs, c.centroid)
		}
	}
	return d.writeAggregate(groupID, vecs, latest)
}

func (d *Driver) writeAggregate(groupID string, vecs [][]float32, latest time.Time) (*treeResult, error) {
	centroid := vectormath.Centroid(vecs)
	if len(centroid) > 0 {
		if err := d.store.SetEmbedding(groupID, centroid); err != nil {
			return nil, fmt.Errorf("set centroid for %s: %w", groupID, err)
		}
	}
	if !latest.IsZero() {
		if err := d.store.SetNodeUpdatedAt(groupID, latest); err != nil {
			return nil, fmt.Errorf("propagate latest date for %s: %w", groupID, err)
		}
	}
	return &treeResult{centroid: centroid, latest: latest}, nil
}

// filterByType returns the subset of edges matching t. Stage 4 uses this to
// keep sibling and bridge belongs_to edges persisted by a prior rebuild out
// of the dendrogram/tree builder's semantic input (spec §9).
func filterByType(edges []*graph.Edge, t graph.EdgeType) []*graph.Edge {
	out := make([]*graph.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
