// Package rpc is the process-boundary surface: each call is forwarded to the
// connected backend, or answered with a safe default when none is connected.
package rpc

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/mj1618/uia-provider/internal/api"
	"github.com/mj1618/uia-provider/internal/journal"
	"github.com/mj1618/uia-provider/internal/session"
	"github.com/rs/zerolog"
)

// Recorder receives one entry per forwarded call.
type Recorder interface {
	Record(e journal.Entry) error
}

// Forwarder implements api.Provider over whichever backend the tracker
// reports as active. It holds no state of its own and is safe for
// concurrent use.
type Forwarder struct {
	tracker *session.Tracker
	log     zerolog.Logger
	rec     Recorder
}

var _ api.Provider = (*Forwarder)(nil)

// New returns a Forwarder. rec may be nil.
func New(tracker *session.Tracker, log zerolog.Logger, rec Recorder) *Forwarder {
	return &Forwarder{tracker: tracker, log: log, rec: rec}
}

// backend returns the active backend, or nil after logging a warning.
func (f *Forwarder) backend(method string) api.Provider {
	st := f.tracker.Snapshot()
	if !st.Connected || st.Backend == nil {
		f.log.Warn().Str("method", method).Msg("backend not connected, returning default")
		return nil
	}
	return st.Backend
}

func (f *Forwarder) record(method string, start time.Time, connected bool, args map[string]interface{}, result string) {
	if f.rec == nil {
		return
	}
	var argStr string
	if len(args) > 0 {
		b, err := json.Marshal(args)
		if err == nil {
			argStr = string(b)
		}
	}
	err := f.rec.Record(journal.Entry{
		Time:      start,
		Method:    method,
		Args:      argStr,
		Result:    result,
		Connected: connected,
		Duration:  time.Since(start),
	})
	if err != nil {
		f.log.Debug().Err(err).Str("method", method).Msg("journal write failed")
	}
}

// GetUIHierarchy implements api.Provider.
func (f *Forwarder) GetUIHierarchy() string {
	start := time.Now()
	b := f.backend(api.MethodGetUIHierarchy)
	var doc string
	if b != nil {
		doc = b.GetUIHierarchy()
	}
	f.record(api.MethodGetUIHierarchy, start, b != nil, nil, strconv.Itoa(len(doc))+" bytes")
	return doc
}

// PerformClick implements api.Provider.
func (f *Forwarder) PerformClick(x, y int) bool {
	start := time.Now()
	b := f.backend(api.MethodPerformClick)
	ok := b != nil && b.PerformClick(x, y)
	f.record(api.MethodPerformClick, start, b != nil, map[string]interface{}{"x": x, "y": y}, strconv.FormatBool(ok))
	return ok
}

// PerformLongPress implements api.Provider.
func (f *Forwarder) PerformLongPress(x, y int) bool {
	start := time.Now()
	b := f.backend(api.MethodPerformLongPress)
	ok := b != nil && b.PerformLongPress(x, y)
	f.record(api.MethodPerformLongPress, start, b != nil, map[string]interface{}{"x": x, "y": y}, strconv.FormatBool(ok))
	return ok
}

// PerformGlobalAction implements api.Provider.
func (f *Forwarder) PerformGlobalAction(actionID int) bool {
	start := time.Now()
	b := f.backend(api.MethodPerformGlobalAction)
	ok := b != nil && b.PerformGlobalAction(actionID)
	f.record(api.MethodPerformGlobalAction, start, b != nil, map[string]interface{}{"actionId": actionID}, strconv.FormatBool(ok))
	return ok
}

// PerformSwipe implements api.Provider.
func (f *Forwarder) PerformSwipe(startX, startY, endX, endY int, durationMs int64) bool {
	start := time.Now()
	b := f.backend(api.MethodPerformSwipe)
	ok := b != nil && b.PerformSwipe(startX, startY, endX, endY, durationMs)
	f.record(api.MethodPerformSwipe, start, b != nil, map[string]interface{}{
		"startX": startX, "startY": startY, "endX": endX, "endY": endY, "duration": durationMs,
	}, strconv.FormatBool(ok))
	return ok
}

// FindFocusedNodeID implements api.Provider.
func (f *Forwarder) FindFocusedNodeID() (string, bool) {
	start := time.Now()
	b := f.backend(api.MethodFindFocusedNodeID)
	var (
		id    string
		found bool
	)
	if b != nil {
		id, found = b.FindFocusedNodeID()
	}
	result := "none"
	if found {
		result = id
	}
	f.record(api.MethodFindFocusedNodeID, start, b != nil, nil, result)
	return id, found
}

// SetTextOnNode implements api.Provider. Only the length of text is
// journaled.
func (f *Forwarder) SetTextOnNode(nodeID, text string) bool {
	start := time.Now()
	b := f.backend(api.MethodSetTextOnNode)
	ok := b != nil && b.SetTextOnNode(nodeID, text)
	f.record(api.MethodSetTextOnNode, start, b != nil, map[string]interface{}{"nodeId": nodeID, "textLen": len(text)}, strconv.FormatBool(ok))
	return ok
}

// TakeScreenshot implements api.Provider.
func (f *Forwarder) TakeScreenshot(path, format string) bool {
	start := time.Now()
	b := f.backend(api.MethodTakeScreenshot)
	ok := b != nil && b.TakeScreenshot(path, format)
	f.record(api.MethodTakeScreenshot, start, b != nil, map[string]interface{}{"path": path, "format": format}, strconv.FormatBool(ok))
	return ok
}

// IsAccessibilityServiceEnabled implements api.Provider.
func (f *Forwarder) IsAccessibilityServiceEnabled() bool {
	start := time.Now()
	b := f.backend(api.MethodIsAccessibilityServiceEnabled)
	ok := b != nil && b.IsAccessibilityServiceEnabled()
	f.record(api.MethodIsAccessibilityServiceEnabled, start, b != nil, nil, strconv.FormatBool(ok))
	return ok
}

// GetCurrentActivityName implements api.Provider.
func (f *Forwarder) GetCurrentActivityName() string {
	start := time.Now()
	b := f.backend(api.MethodGetCurrentActivityName)
	var name string
	if b != nil {
		name = b.GetCurrentActivityName()
	}
	f.record(api.MethodGetCurrentActivityName, start, b != nil, nil, name)
	return name
}
