// Package api defines the automation surface exposed to out-of-process callers.
package api

// Method names as they appear on the wire.
const (
	MethodGetUIHierarchy                = "getUiHierarchy"
	MethodPerformClick                  = "performClick"
	MethodPerformLongPress              = "performLongPress"
	MethodPerformGlobalAction           = "performGlobalAction"
	MethodPerformSwipe                  = "performSwipe"
	MethodFindFocusedNodeID             = "findFocusedNodeId"
	MethodSetTextOnNode                 = "setTextOnNode"
	MethodTakeScreenshot                = "takeScreenshot"
	MethodIsAccessibilityServiceEnabled = "isAccessibilityServiceEnabled"
	MethodGetCurrentActivityName        = "getCurrentActivityName"
)

// Methods lists every method of Provider in declaration order.
var Methods = []string{
	MethodGetUIHierarchy,
	MethodPerformClick,
	MethodPerformLongPress,
	MethodPerformGlobalAction,
	MethodPerformSwipe,
	MethodFindFocusedNodeID,
	MethodSetTextOnNode,
	MethodTakeScreenshot,
	MethodIsAccessibilityServiceEnabled,
	MethodGetCurrentActivityName,
}

// Provider is the remote automation interface. Implementations never return
// errors: failures degrade to the zero value of each result (empty string,
// false, or not found), which is also what a disconnected backend returns.
type Provider interface {
	// GetUIHierarchy returns the active window's element tree as an XML
	// document, or "" if it cannot be captured.
	GetUIHierarchy() string

	// PerformClick taps (x, y). The result reports acceptance, not completion.
	PerformClick(x, y int) bool

	// PerformLongPress long-presses (x, y). The result reports acceptance.
	PerformLongPress(x, y int) bool

	// PerformGlobalAction forwards a global action code verbatim.
	PerformGlobalAction(actionID int) bool

	// PerformSwipe drags from (startX, startY) to (endX, endY) over
	// durationMs milliseconds. The result reports acceptance.
	PerformSwipe(startX, startY, endX, endY int, durationMs int64) bool

	// FindFocusedNodeID returns the bounds identifier of the focused node.
	FindFocusedNodeID() (string, bool)

	// SetTextOnNode sets text on the first editable node at or under the
	// node identified by nodeID.
	SetTextOnNode(nodeID, text string) bool

	// TakeScreenshot captures the default display to path as png or jpeg.
	TakeScreenshot(path, format string) bool

	// IsAccessibilityServiceEnabled reports whether a backend is connected.
	IsAccessibilityServiceEnabled() bool

	// GetCurrentActivityName returns the last observed foreground context.
	GetCurrentActivityName() string
}
