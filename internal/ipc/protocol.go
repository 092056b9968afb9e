// Package ipc carries api.Provider calls across processes over a websocket.
// The server side dispatches each Call to a provider; Client is the proxy
// that implements api.Provider for the caller.
package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/mj1618/uia-provider/internal/api"
)

// Call is one request frame.
type Call struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Result is the reply to the Call with the same ID. OK is false only for
// protocol errors (unknown method, malformed arguments); provider failures
// come back as OK with the method's default Value.
type Result struct {
	ID    string          `json:"id"`
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// PointArgs are the arguments of performClick and performLongPress.
type PointArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GlobalActionArgs are the arguments of performGlobalAction.
type GlobalActionArgs struct {
	ActionID int `json:"actionId"`
}

// SwipeArgs are the arguments of performSwipe.
type SwipeArgs struct {
	StartX   int   `json:"startX"`
	StartY   int   `json:"startY"`
	EndX     int   `json:"endX"`
	EndY     int   `json:"endY"`
	Duration int64 `json:"duration"`
}

// SetTextArgs are the arguments of setTextOnNode.
type SetTextArgs struct {
	NodeID string `json:"nodeId"`
	Text   string `json:"text"`
}

// ScreenshotArgs are the arguments of takeScreenshot.
type ScreenshotArgs struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// FocusedNode is the value of findFocusedNodeId.
type FocusedNode struct {
	ID    string `json:"id,omitempty"`
	Found bool   `json:"found"`
}

// Dispatch invokes the provider method named by c. A panic in the provider
// becomes an error result.
func Dispatch(p api.Provider, c Call) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{ID: c.ID, Error: fmt.Sprintf("%s: provider panic: %v", c.Method, r)}
		}
	}()
	value, err := invoke(p, c)
	if err != nil {
		return Result{ID: c.ID, Error: err.Error()}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return Result{ID: c.ID, Error: fmt.Sprintf("encode result: %v", err)}
	}
	return Result{ID: c.ID, OK: true, Value: raw}
}

func invoke(p api.Provider, c Call) (interface{}, error) {
	switch c.Method {
	case api.MethodGetUIHierarchy:
		return p.GetUIHierarchy(), nil
	case api.MethodPerformClick:
		var a PointArgs
		if err := decodeArgs(c, &a); err != nil {
			return nil, err
		}
		return p.PerformClick(a.X, a.Y), nil
	case api.MethodPerformLongPress:
		var a PointArgs
		if err := decodeArgs(c, &a); err != nil {
			return nil, err
		}
		return p.PerformLongPress(a.X, a.Y), nil
	case api.MethodPerformGlobalAction:
		var a GlobalActionArgs
		if err := decodeArgs(c, &a); err != nil {
			return nil, err
		}
		return p.PerformGlobalAction(a.ActionID), nil
	case api.MethodPerformSwipe:
		var a SwipeArgs
		if err := decodeArgs(c, &a); err != nil {
			return nil, err
		}
		return p.PerformSwipe(a.StartX, a.StartY, a.EndX, a.EndY, a.Duration), nil
	case api.MethodFindFocusedNodeID:
		id, found := p.FindFocusedNodeID()
		return FocusedNode{ID: id, Found: found}, nil
	case api.MethodSetTextOnNode:
		var a SetTextArgs
		if err := decodeArgs(c, &a); err != nil {
			return nil, err
		}
		return p.SetTextOnNode(a.NodeID, a.Text), nil
	case api.MethodTakeScreenshot:
		var a ScreenshotArgs
		if err := decodeArgs(c, &a); err != nil {
			return nil, err
		}
		return p.TakeScreenshot(a.Path, a.Format), nil
	case api.MethodIsAccessibilityServiceEnabled:
		return p.IsAccessibilityServiceEnabled(), nil
	case api.MethodGetCurrentActivityName:
		return p.GetCurrentActivityName(), nil
	default:
		return nil, fmt.Errorf("unknown method %q", c.Method)
	}
}

func decodeArgs(c Call, v interface{}) error {
	if len(c.Args) == 0 {
		return fmt.Errorf("%s: missing args", c.Method)
	}
	if err := json.Unmarshal(c.Args, v); err != nil {
		return fmt.Errorf("%s: invalid args: %w", c.Method, err)
	}
	return nil
}
