// Package command implements the closed request/response surface of spec
// §6: one struct pair per operation, validated with
// go-playground/validator/v10, executed against a *store.Store and the
// collaborator interfaces. cmd/ (CLI) and internal/mcpserver (MCP) are both
// thin adapters over this package so the two surfaces can never drift.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/josephgoksu/corpusgraph/internal/contextexpand"
	"github.com/josephgoksu/corpusgraph/internal/embedcollab"
	"github.com/josephgoksu/corpusgraph/internal/graph"
	"github.com/josephgoksu/corpusgraph/internal/health"
	"github.com/josephgoksu/corpusgraph/internal/namer"
	"github.com/josephgoksu/corpusgraph/internal/nncollab"
	"github.com/josephgoksu/corpusgraph/internal/pipeline"
	"github.com/josephgoksu/corpusgraph/internal/store"
)

// ErrorCode is the closed enum spec §7 calls for; every Error returned by
// this package carries exactly one of these.
type ErrorCode string

const (
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	ErrCollaboratorFailed ErrorCode = "COLLABORATOR_FAILED"
	ErrCancelled          ErrorCode = "CANCELLED"
	ErrInternal           ErrorCode = "INTERNAL"
)

// Error is the structured error every handler in this package returns,
// mirroring the teacher's MCPError shape so cmd/ and internal/mcpserver can
// render it the same way regardless of transport.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func newError(code ErrorCode, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(req any) error {
	if err := validate.Struct(req); err != nil {
		return newError(ErrInvalidInput, err.Error(), nil)
	}
	return nil
}

// Handler executes the closed command surface against a store and its
// collaborators. A Handler is cheap to construct; it holds no state of its
// own beyond the dependencies it was given.
type Handler struct {
	Store    *store.Store
	Embedder embedcollab.Embedder

	// NNIndex is optional and passed through to rebuild_hierarchy's
	// similarity-edge stage when set (spec §6). nil is valid; the stage
	// then falls back to brute-force pairwise cosine.
	NNIndex nncollab.Index

	// Namer is optional and passed through to rebuild_hierarchy's group
	// naming stage when set (spec §6). nil falls back to the pipeline's
	// own default, namer.NewTFIDFNamer().
	Namer namer.Namer
}

// NewHandler wires a command Handler over an open store and optional
// embedding collaborator (nil is valid; regenerate_embeddings and
// rebuild_hierarchy then fail with ErrCollaboratorFailed).
func NewHandler(st *store.Store, embedder embedcollab.Embedder) *Handler {
	return &Handler{Store: st, Embedder: embedder}
}

// --- create_node ---

type CreateNodeRequest struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content"`
	IsItem      bool   `json:"is_item"`
	ParentID    string `json:"parent_id"`
	ContentType string `json:"content_type"`
}

type CreateNodeResponse struct {
	Node *graph.Node `json:"node"`
}

func (h *Handler) CreateNode(_ context.Context, req CreateNodeRequest) (*CreateNodeResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	n := &graph.Node{
		ID:          req.ID,
		Title:       req.Title,
		Content:     req.Content,
		IsItem:      req.IsItem,
		ContentType: req.ContentType,
	}
	if req.ParentID != "" {
		n.ParentID = &req.ParentID
	}
	if err := h.Store.CreateNode(n); err != nil {
		return nil, newError(ErrInvariantViolation, err.Error(), map[string]any{"id": req.ID})
	}
	return &CreateNodeResponse{Node: n}, nil
}

// --- update_node ---

type UpdateNodeRequest struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ParentID    string `json:"parent_id"`
	ContentType string `json:"content_type"`
}

type UpdateNodeResponse struct {
	Node *graph.Node `json:"node"`
}

func (h *Handler) UpdateNode(_ context.Context, req UpdateNodeRequest) (*UpdateNodeResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	n, err := h.Store.GetNode(req.ID)
	if err != nil {
		return nil, newError(ErrNotFound, err.Error(), map[string]any{"id": req.ID})
	}
	if req.Title != "" {
		n.Title = req.Title
	}
	if req.Content != "" {
		n.Content = req.Content
	}
	if req.ContentType != "" {
		n.ContentType = req.ContentType
	}
	if req.ParentID != "" {
		n.ParentID = &req.ParentID
	}
	if err := h.Store.UpdateNode(n); err != nil {
		return nil, newError(ErrInvariantViolation, err.Error(), map[string]any{"id": req.ID})
	}
	return &UpdateNodeResponse{Node: n}, nil
}

// --- delete_node ---

type DeleteNodeRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeleteNodeResponse struct {
	Deleted bool `json:"deleted"`
}

func (h *Handler) DeleteNode(_ context.Context, req DeleteNodeRequest) (*DeleteNodeResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := h.Store.DeleteNode(req.ID); err != nil {
		return nil, newError(ErrNotFound, err.Error(), map[string]any{"id": req.ID})
	}
	return &DeleteNodeResponse{Deleted: true}, nil
}

// --- create_edge ---

type CreateEdgeRequest struct {
	ID       string   `json:"id" validate:"required"`
	SourceID string   `json:"source_id" validate:"required"`
	TargetID string   `json:"target_id" validate:"required"`
	Type     string   `json:"type" validate:"required"`
	Weight   *float64 `json:"weight,omitempty"`
	Reason   string   `json:"reason"`
}

type CreateEdgeResponse struct {
	Edge *graph.Edge `json:"edge"`
}

func (h *Handler) CreateEdge(_ context.Context, req CreateEdgeRequest) (*CreateEdgeResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	e := &graph.Edge{
		ID:        req.ID,
		SourceID:  req.SourceID,
		TargetID:  req.TargetID,
		Type:      graph.EdgeType(req.Type),
		Weight:    req.Weight,
		Reason:    req.Reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.CreateEdge(e); err != nil {
		return nil, newError(ErrInvariantViolation, err.Error(), map[string]any{"id": req.ID})
	}
	return &CreateEdgeResponse{Edge: e}, nil
}

// --- query_edges ---

type QueryEdgesRequest struct {
	NodeID   string `json:"node_id"`
	EdgeType string `json:"edge_type"`
}

type QueryEdgesResponse struct {
	Edges []*graph.Edge `json:"edges"`
}

func (h *Handler) QueryEdges(_ context.Context, req QueryEdgesRequest) (*QueryEdgesResponse, error) {
	edges, err := h.Store.QueryEdges(store.QueryEdgeOptions{
		NodeID:   req.NodeID,
		EdgeType: graph.EdgeType(req.EdgeType),
	})
	if err != nil {
		return nil, newError(ErrInternal, err.Error(), nil)
	}
	return &QueryEdgesResponse{Edges: edges}, nil
}

// --- get_children ---

type GetChildrenRequest struct {
	ParentID string `json:"parent_id" validate:"required"`
}

type GetChildrenResponse struct {
	Children []*graph.Node `json:"children"`
}

func (h *Handler) GetChildren(_ context.Context, req GetChildrenRequest) (*GetChildrenResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	children, err := h.Store.Children(req.ParentID)
	if err != nil {
		return nil, newError(ErrInternal, err.Error(), nil)
	}
	return &GetChildrenResponse{Children: children}, nil
}

// --- get_edges_for_view ---

type GetEdgesForViewRequest struct {
	ParentID string `json:"parent_id" validate:"required"`
}

type GetEdgesForViewResponse struct {
	Edges []*graph.Edge `json:"edges"`
}

func (h *Handler) GetEdgesForView(_ context.Context, req GetEdgesForViewRequest) (*GetEdgesForViewResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	edges, err := h.Store.EdgesForView(req.ParentID)
	if err != nil {
		return nil, newError(ErrInternal, err.Error(), nil)
	}
	return &GetEdgesForViewResponse{Edges: edges}, nil
}

// --- search ---

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit"`
}

type SearchResponse struct {
	Results []store.SearchResult `json:"results"`
}

func (h *Handler) Search(_ context.Context, req SearchRequest) (*SearchResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	results, err := h.Store.Search(req.Query, limit)
	if err != nil {
		return nil, newError(ErrInternal, err.Error(), nil)
	}
	return &SearchResponse{Results: results}, nil
}

// --- context_for_task ---

type ContextForTaskRequest struct {
	NodeID  string  `json:"node_id" validate:"required"`
	Budget  int     `json:"budget"`
	MaxHops int     `json:"max_hops"`
	MaxCost float64 `json:"max_cost"`
}

type ContextForTaskResponse struct {
	Results []contextexpand.Result `json:"results"`
}

func (h *Handler) ContextForTask(ctx context.Context, req ContextForTaskRequest) (*ContextForTaskResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	snap, err := h.Store.Snapshot()
	if err != nil {
		return nil, newError(ErrInternal, err.Error(), nil)
	}
	if snap.Node(req.NodeID) == nil {
		return nil, newError(ErrNotFound, "node not found", map[string]any{"id": req.NodeID})
	}
	opts := contextexpand.DefaultOptions()
	opts.NotSuperseded = true
	if req.Budget > 0 {
		opts.Budget = req.Budget
	}
	if req.MaxHops > 0 {
		opts.MaxHops = req.MaxHops
	}
	if req.MaxCost > 0 {
		opts.MaxCost = req.MaxCost
	}
	results := contextexpand.Expand(ctx, snap, req.NodeID, opts)
	if ctx.Err() != nil {
		return &ContextForTaskResponse{Results: results}, newError(ErrCancelled, "context expansion cancelled", nil)
	}
	return &ContextForTaskResponse{Results: results}, nil
}

// --- analyze ---

type AnalyzeRequest struct {
	HubThreshold int `json:"hub_threshold"`
	TopN         int `json:"top_n"`
	StaleDays    int `json:"stale_days"`
}

type AnalyzeResponse struct {
	Report health.Report `json:"report"`
}

func (h *Handler) Analyze(_ context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	snap, err := h.Store.Snapshot()
	if err != nil {
		return nil, newError(ErrInternal, err.Error(), nil)
	}
	opts := health.DefaultOptions()
	opts.Now = time.Now().UTC()
	if req.HubThreshold > 0 {
		opts.HubThreshold = req.HubThreshold
	}
	if req.TopN > 0 {
		opts.TopN = req.TopN
	}
	if req.StaleDays > 0 {
		opts.StaleDays = req.StaleDays
	}
	return &AnalyzeResponse{Report: health.Analyze(snap, opts)}, nil
}

// --- rebuild_hierarchy ---

type RebuildHierarchyRequest struct {
	Workers         int     `json:"workers"`
	SimilarityFloor float64 `json:"similarity_floor"`
	TopKNeighbors   int     `json:"top_k_neighbors"`
}

type RebuildHierarchyResponse struct {
	Report *pipeline.Report `json:"report"`
}

func (h *Handler) RebuildHierarchy(ctx context.Context, req RebuildHierarchyRequest) (*RebuildHierarchyResponse, error) {
	if h.Embedder == nil {
		return nil, newError(ErrCollaboratorFailed, "no embedding collaborator configured", nil)
	}
	opts := pipeline.DefaultOptions()
	if req.Workers > 0 {
		opts.Workers = req.Workers
	}
	if req.SimilarityFloor > 0 {
		opts.SimilarityFloor = req.SimilarityFloor
	}
	if req.TopKNeighbors > 0 {
		opts.TopKNeighbors = req.TopKNeighbors
	}
	opts.NNIndex = h.NNIndex
	if h.Namer != nil {
		opts.Namer = h.Namer
	}
	driver := pipeline.New(h.Store, h.Embedder, nil, opts)
	report, err := driver.Run(ctx)
	if err != nil {
		if report != nil && report.Cancelled {
			return &RebuildHierarchyResponse{Report: report}, newError(ErrCancelled, err.Error(), nil)
		}
		return nil, newError(ErrInternal, err.Error(), nil)
	}
	return &RebuildHierarchyResponse{Report: report}, nil
}

// --- regenerate_embeddings ---

type RegenerateEmbeddingsRequest struct{}

type RegenerateEmbeddingsResponse struct {
	Computed int `json:"computed"`
	Failures int `json:"failures"`
}

// RegenerateEmbeddings runs only the embedding stage of the pipeline,
// without the downstream clustering stages rebuild_hierarchy also runs.
func (h *Handler) RegenerateEmbeddings(ctx context.Context, _ RegenerateEmbeddingsRequest) (*RegenerateEmbeddingsResponse, error) {
	if h.Embedder == nil {
		return nil, newError(ErrCollaboratorFailed, "no embedding collaborator configured", nil)
	}
	items, err := h.Store.ListMissingEmbeddings()
	if err != nil {
		return nil, newError(ErrInternal, err.Error(), nil)
	}
	var computed, failures int
	for _, n := range items {
		text := n.Content
		if text == "" {
			text = n.Title
		}
		vec, err := h.Embedder.Embed(ctx, text)
		if err != nil {
			failures++
			continue
		}
		if err := h.Store.SetEmbedding(n.ID, vec); err != nil {
			return nil, newError(ErrInternal, err.Error(), map[string]any{"id": n.ID})
		}
		computed++
	}
	return &RegenerateEmbeddingsResponse{Computed: computed, Failures: failures}, nil
}
