package platform

import (
	"context"

	"github.com/mj1618/uia-provider/internal/model"
)

// Minimum host versions for optional capabilities.
const (
	VersionGestures   = 24
	VersionScreenshot = 30
)

// DefaultDisplay identifies the primary display.
const DefaultDisplay = 0

// Node is a borrowed reference into the live element tree. Every Node
// obtained from a Host or from another Node must be released exactly once.
// The element behind a Node may change at any time; attribute reads return
// whatever the host reports at that moment.
type Node interface {
	ClassName() string
	PackageName() string
	ContentDescription() string
	Text() string
	ViewIDResourceName() string
	BoundsInScreen() model.Rect
	IsClickable() bool
	IsFocused() bool
	IsEditable() bool

	// ChildCount returns the number of children at the time of the call.
	ChildCount() int
	// Child returns a new reference to the i-th child, or nil if the child
	// is no longer available. The caller owns the returned reference.
	Child(i int) Node
	// Obtain returns a new, independently released reference to the same element.
	Obtain() Node

	// SetText replaces the element's text. It reports whether the host
	// accepted the action.
	SetText(text string) bool

	Release()
}

// FocusKind selects which focus FindFocus looks up.
type FocusKind int

const (
	FocusInput FocusKind = iota + 1
	FocusAccessibility
)

// Host is the live UI framework the automation backend drives.
type Host interface {
	// Version reports the host capability level.
	Version() int

	// RootInActiveWindow returns the root of the active window, or nil.
	RootInActiveWindow() Node

	// FindFocus returns the node holding the given focus, or nil.
	FindFocus(kind FocusKind) Node

	// DispatchGesture schedules a gesture. The result only reports whether the
	// host accepted it; completion is reported later through cb, which may be nil.
	DispatchGesture(g GestureDescription, cb *GestureCallback) bool

	// PerformGlobalAction performs a system-wide action such as back or home.
	PerformGlobalAction(action int) bool

	// TakeScreenshot requests an asynchronous capture of a display. Exactly one
	// of the callback functions is invoked, on a host-owned goroutine.
	TakeScreenshot(display int, cb ScreenshotCallback)

	// Run delivers lifecycle and accessibility events to l until ctx is done.
	Run(ctx context.Context, l Listener) error
}

// Listener receives host lifecycle callbacks and accessibility events.
type Listener interface {
	OnServiceConnected()
	OnUnbind()
	OnInterrupt()
	OnAccessibilityEvent(ev Event)
}

// EventType identifies the kind of accessibility event.
type EventType int

const (
	EventViewClicked        EventType = 0x1
	EventViewFocused        EventType = 0x8
	EventWindowStateChanged EventType = 0x20
	EventWindowContent      EventType = 0x800
)

// Event is an accessibility event delivered by the host.
type Event struct {
	Type        EventType
	ClassName   string
	PackageName string
}

// Global action codes, forwarded verbatim to the host.
const (
	GlobalActionBack          = 1
	GlobalActionHome          = 2
	GlobalActionRecents       = 3
	GlobalActionNotifications = 4
	GlobalActionQuickSettings = 5
	GlobalActionPowerDialog   = 6
	GlobalActionSplitScreen   = 7
	GlobalActionLockScreen    = 8
	GlobalActionScreenshot    = 9
)
