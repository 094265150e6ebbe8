// Package mcpserver exposes internal/command's closed command surface as
// Model Context Protocol tools (spec §6), the collaborator boundary for a
// desktop UI or any other MCP client. Every tool is a thin wrapper over the
// matching command.Handler method so the MCP and CLI surfaces can never
// drift apart.
package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/josephgoksu/corpusgraph/internal/command"
)

// RegisterTools registers every command-surface operation as an MCP tool on
// server, delegating each call to handler.
func RegisterTools(server *mcpsdk.Server, handler *command.Handler) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create-node",
		Description: "Create a node (item or group) in the corpus graph.",
	}, toolHandler(handler.CreateNode))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "update-node",
		Description: "Update a node's title, content, content type, or parent.",
	}, toolHandler(handler.UpdateNode))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete-node",
		Description: "Delete a node by id.",
	}, toolHandler(handler.DeleteNode))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create-edge",
		Description: "Create a typed, optionally weighted edge between two nodes.",
	}, toolHandler(handler.CreateEdge))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "query-edges",
		Description: "List edges touching a node, optionally filtered by edge type.",
	}, toolHandler(handler.QueryEdges))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get-children",
		Description: "List the direct children of a node.",
	}, toolHandler(handler.GetChildren))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get-edges-for-view",
		Description: "List every edge within a region (denormalized O(1) lookup).",
	}, toolHandler(handler.GetEdgesForView))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "search",
		Description: "Full-text search over node titles and content.",
	}, toolHandler(handler.Search))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "context-for-task",
		Description: "Expand a bounded semantic neighborhood around a node for LLM context assembly.",
	}, toolHandler(handler.ContextForTask))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "analyze",
		Description: "Run the graph health analyzer: topology, fragility, staleness, overall score.",
	}, toolHandler(handler.Analyze))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "rebuild-hierarchy",
		Description: "Run the full eight-stage corpus rebuild: embed, cluster, and re-derive the hierarchy.",
	}, toolHandler(handler.RebuildHierarchy))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "regenerate-embeddings",
		Description: "Recompute embeddings for every item missing one, without rebuilding the hierarchy.",
	}, toolHandler(handler.RegenerateEmbeddings))
}

// toolHandler adapts a command.Handler method (ctx, Req) (*Resp, error) into
// the mcpsdk.ToolHandlerFor shape, dropping the server-session argument the
// closed command surface has no use for.
func toolHandler[Req, Resp any](fn func(context.Context, Req) (*Resp, error)) mcpsdk.ToolHandlerFor[Req, Resp] {
	return func(ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[Req]) (*mcpsdk.CallToolResultFor[Resp], error) {
		resp, err := fn(ctx, params.Arguments)
		if err != nil {
			return nil, err
		}
		return &mcpsdk.CallToolResultFor[Resp]{StructuredContent: *resp}, nil
	}
}
