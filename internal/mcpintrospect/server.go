// Package mcpintrospect exposes a running agent's knowledge graph to
// external tooling over the Model Context Protocol
// (github.com/modelcontextprotocol/go-sdk). It runs as an MCP
// *server* that an external client (an editor, a dashboard) can dial
// into for a single read-only tool. It never mutates the graph and is
// never on any decision module's path — started only under `--serve`.
package mcpintrospect

import (
	"context"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nail-agent/nail/internal/kg"
)

// toolName is the one read-only tool this server exposes.
const toolName = "knowledge_graph_snapshot"

// snapshotInput is the (empty) argument schema for the snapshot tool.
type snapshotInput struct{}

// snapshotOutput carries the rendered graph back to the caller.
type snapshotOutput struct {
	// Snapshot is the knowledge graph rendered exactly as the `.kng`
	// persistent output file (see internal/kg.Render).
	Snapshot string `json:"snapshot" jsonschema:"the rendered knowledge graph, formatted like a .kng file"`
}

// Server hosts the knowledge_graph_snapshot MCP tool over a single
// graph instance. The zero value is not usable; construct with [New].
type Server struct {
	graph *kg.KnowledgeGraph
	mcp   *mcpsdk.Server
}

// New builds a Server that serves read-only snapshots of graph.
func New(graph *kg.KnowledgeGraph) *Server {
	s := &Server{
		graph: graph,
		mcp: mcpsdk.NewServer(
			&mcpsdk.Implementation{Name: "nail-introspect", Version: "1.0.0"},
			nil,
		),
	}

	mcpsdk.AddTool(s.mcp, &mcpsdk.Tool{
		Name:        toolName,
		Description: "Returns a point-in-time text snapshot of the agent's knowledge graph: discovered locations, entities, connections, and recorded action outcomes. Read-only; never mutates agent state.",
	}, s.snapshot)

	return s
}

// snapshot is the handler registered for the knowledge_graph_snapshot
// tool. It takes no arguments and never errors; an empty graph simply
// renders to an empty snapshot.
func (s *Server) snapshot(ctx context.Context, req *mcpsdk.CallToolRequest, _ snapshotInput) (*mcpsdk.CallToolResult, snapshotOutput, error) {
	s.graph.Lock()
	rendered := kg.Render(s.graph)
	s.graph.Unlock()

	return nil, snapshotOutput{Snapshot: rendered}, nil
}

// ServeStdio runs the server over stdio until ctx is cancelled or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcpsdk.StdioTransport{})
}

// HTTPHandler returns an http.Handler that serves this tool over the
// streamable-HTTP transport, for the mcp.transport: streamable-http
// configuration. Every request is served by the same underlying
// server instance; the SDK multiplexes sessions over it.
func (s *Server) HTTPHandler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server { return s.mcp }, nil)
}
