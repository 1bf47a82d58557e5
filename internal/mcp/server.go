// Package mcp exposes pin operations as MCP tools over stdio. The server is
// a thin adapter: every tool call is forwarded to the running daemon over
// IPC, so tool results always reflect the daemon's live registry.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pintop/internal/ipc"
)

const (
	ServerName    = "pintop"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for pin orchestration.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates a new MCP server backed by the daemon IPC socket.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pin_window",
		Description: "Pin a window so it stays always-on-top. Pass window_id from list_pinned or omit it to pin the current foreground window. Returns the pinned window's title, process name and opacity.",
	}, s.handlePinWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unpin_window",
		Description: "Remove a window's always-on-top pin and stop reinforcing it. Pass window_id or omit it to target the current foreground window.",
	}, s.handleUnpinWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_pinned",
		Description: "List all currently pinned windows in pin order, with window id, title, process name and opacity percent.",
	}, s.handleListPinned)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_opacity",
		Description: "Set a pinned window's opacity as a percent. Values are clamped to the 20-100 range; the window must already be pinned.",
	}, s.handleSetWindowOpacity)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Bring a window to the foreground without changing its pin state.",
	}, s.handleFocusWindow)
}
