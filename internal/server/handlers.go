package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/uia-provider/internal/model"
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/mj1618/uia-provider/internal/screenshot"
	"gopkg.in/yaml.v3"
)

// DefaultSwipeDuration is used when the swipe tool gets no duration.
const DefaultSwipeDuration = 300

// toText serializes a tool result to YAML for the MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

// actionResult wraps an acceptance-only call and invalidates the cache when
// the action was accepted.
func (s *Server) actionResult(res output.ActionResult) *mcp.CallToolResult {
	if !res.OK {
		return mcp.NewToolResultError(toText(res))
	}
	s.cache.Invalidate()
	return mcp.NewToolResultText(toText(res))
}

func (s *Server) handleHierarchy(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	flat := BoolParam(params, "flat", false)
	raw := BoolParam(params, "raw", false)

	doc := s.cache.Get(s.provider.GetUIHierarchy)
	if doc == "" {
		return mcp.NewToolResultError("no UI hierarchy available (backend disconnected or no active window)"), nil
	}
	if raw {
		return mcp.NewToolResultText(doc), nil
	}

	root, err := model.ParseHierarchy(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	activity := s.provider.GetCurrentActivityName()
	ts := time.Now().Unix()
	if flat {
		return mcp.NewToolResultText(toText(output.HierarchyFlatResult{
			Activity: activity,
			TS:       ts,
			Nodes:    model.FlattenHierarchy(root),
		})), nil
	}
	return mcp.NewToolResultText(toText(output.HierarchyResult{
		Activity: activity,
		TS:       ts,
		Count:    root.Count(),
		Root:     root,
	})), nil
}

func (s *Server) handleTap(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x, y := IntParam(params, "x", 0), IntParam(params, "y", 0)
	ok := s.provider.PerformClick(x, y)
	return s.actionResult(output.ActionResult{OK: ok, Action: "tap", X: x, Y: y}), nil
}

func (s *Server) handleLongPress(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x, y := IntParam(params, "x", 0), IntParam(params, "y", 0)
	ok := s.provider.PerformLongPress(x, y)
	return s.actionResult(output.ActionResult{OK: ok, Action: "long-press", X: x, Y: y}), nil
}

func (s *Server) handleSwipe(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x1, y1 := IntParam(params, "x1", 0), IntParam(params, "y1", 0)
	x2, y2 := IntParam(params, "x2", 0), IntParam(params, "y2", 0)
	duration := IntParam(params, "duration", DefaultSwipeDuration)
	ok := s.provider.PerformSwipe(x1, y1, x2, y2, int64(duration))
	return s.actionResult(output.ActionResult{
		OK:     ok,
		Action: "swipe",
		X:      x1,
		Y:      y1,
		Target: fmt.Sprintf("%d,%d", x2, y2),
	}), nil
}

func (s *Server) handleGlobalAction(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := StringParam(request.GetArguments(), "action", "")
	id, err := platform.ParseGlobalAction(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok := s.provider.PerformGlobalAction(id)
	return s.actionResult(output.ActionResult{OK: ok, Action: "global", Target: name}), nil
}

func (s *Server) handleFocused(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, found := s.provider.FindFocusedNodeID()
	return mcp.NewToolResultText(toText(output.FocusedResult{Found: found, NodeID: id})), nil
}

func (s *Server) handleSetText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := StringParam(params, "id", "")
	text := StringParam(params, "text", "")
	if _, err := model.ParseRect(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok := s.provider.SetTextOnNode(id, text)
	return s.actionResult(output.ActionResult{OK: ok, Action: "set-text", Target: id}), nil
}

func (s *Server) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	format := screenshot.ParseFormat(StringParam(params, "format", "png"))
	path := StringParam(params, "path", "")
	keep := path != ""
	if !keep {
		path = filepath.Join(s.shotDir, fmt.Sprintf("uia-%d.%s", time.Now().UnixNano(), format))
	}

	if !s.provider.TakeScreenshot(path, format.String()) {
		return mcp.NewToolResultError("screenshot failed"), nil
	}
	data, err := os.ReadFile(path)
	if !keep {
		os.Remove(path)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mimeType := "image/png"
	if format == screenshot.FormatJPEG {
		mimeType = "image/jpeg"
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(data),
				MIMEType: mimeType,
			},
		},
	}, nil
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(toText(output.StatusResult{
		Enabled:  s.provider.IsAccessibilityServiceEnabled(),
		Activity: s.provider.GetCurrentActivityName(),
	})), nil
}
