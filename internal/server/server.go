// Package server exposes an api.Provider as Model Context Protocol tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/uia-provider/internal/api"
	"github.com/mj1618/uia-provider/internal/version"
	"github.com/rs/zerolog"
)

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Options configures a Server.
type Options struct {
	CacheTTL time.Duration
	// ScreenshotDir receives screenshots taken without an explicit path.
	ScreenshotDir string
	Logger        zerolog.Logger
}

// Server wraps the MCP server with the provider and hierarchy cache.
type Server struct {
	provider api.Provider
	cache    *HierarchyCache
	shotDir  string
	log      zerolog.Logger
	mcp      *mcpserver.MCPServer
}

// New creates and configures an MCP server with one tool per provider
// method.
func New(p api.Provider, opts Options) *Server {
	dir := opts.ScreenshotDir
	if dir == "" {
		dir = os.TempDir()
	}
	s := &Server{
		provider: p,
		cache:    NewHierarchyCache(opts.CacheTTL),
		shotDir:  dir,
		log:      opts.Logger,
	}
	s.mcp = mcpserver.NewMCPServer("uia-provider", version.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve runs the configured transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case TransportStdio:
		s.log.Info().Msg("serving MCP over stdio")
		err := mcpserver.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case TransportHTTP:
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errCh := make(chan error, 1)
		go func() { errCh <- httpServer.Start(addr) }()
		s.log.Info().Str("addr", addr).Msg("serving MCP over streamable HTTP")
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("get_ui_hierarchy",
			mcp.WithDescription("Capture the active window's UI tree. Returns nodes with class, package, text, content-desc, resource-id, bounds, clickable and focused. A node's bounds string is its ID for set_text."),
			mcp.WithBoolean("flat", mcp.Description("Return a flat node list with path breadcrumbs")),
			mcp.WithBoolean("raw", mcp.Description("Return the XML document unchanged")),
		),
		s.handleHierarchy,
	)

	s.mcp.AddTool(
		mcp.NewTool("tap",
			mcp.WithDescription("Tap at screen coordinates"),
			mcp.WithNumber("x", mcp.Description("X coordinate"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Y coordinate"), mcp.Required()),
		),
		s.handleTap,
	)

	s.mcp.AddTool(
		mcp.NewTool("long_press",
			mcp.WithDescription("Long-press at screen coordinates"),
			mcp.WithNumber("x", mcp.Description("X coordinate"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Y coordinate"), mcp.Required()),
		),
		s.handleLongPress,
	)

	s.mcp.AddTool(
		mcp.NewTool("swipe",
			mcp.WithDescription("Swipe between two points"),
			mcp.WithNumber("x1", mcp.Description("Start X"), mcp.Required()),
			mcp.WithNumber("y1", mcp.Description("Start Y"), mcp.Required()),
			mcp.WithNumber("x2", mcp.Description("End X"), mcp.Required()),
			mcp.WithNumber("y2", mcp.Description("End Y"), mcp.Required()),
			mcp.WithNumber("duration", mcp.Description("Duration in ms (default: 300)")),
		),
		s.handleSwipe,
	)

	s.mcp.AddTool(
		mcp.NewTool("global_action",
			mcp.WithDescription("Perform a global action: back, home, recents, notifications, quick-settings, power-dialog, split-screen, lock-screen, screenshot, or a numeric code"),
			mcp.WithString("action", mcp.Description("Action name or code"), mcp.Required()),
		),
		s.handleGlobalAction,
	)

	s.mcp.AddTool(
		mcp.NewTool("find_focused",
			mcp.WithDescription("Return the bounds ID of the focused node"),
		),
		s.handleFocused,
	)

	s.mcp.AddTool(
		mcp.NewTool("set_text",
			mcp.WithDescription("Set text on the first editable node at or under the node with the given bounds ID"),
			mcp.WithString("id", mcp.Description("Bounds ID, e.g. [0,100][720,200]"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Text to set"), mcp.Required()),
		),
		s.handleSetText,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the default display"),
			mcp.WithString("format", mcp.Description("Image format: png, jpg (default: png)")),
			mcp.WithString("path", mcp.Description("Also keep the file at this path")),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Report whether the automation backend is connected and the current foreground activity"),
		),
		s.handleStatus,
	)
}
