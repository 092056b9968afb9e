// Package service is the automation backend: it implements api.Provider on
// top of a platform.Host and keeps the session tracker in step with the
// host's lifecycle.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/mj1618/uia-provider/internal/api"
	"github.com/mj1618/uia-provider/internal/gesture"
	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/mj1618/uia-provider/internal/screenshot"
	"github.com/mj1618/uia-provider/internal/session"
	"github.com/mj1618/uia-provider/internal/tree"
	"github.com/rs/zerolog"
)

// Options configures a Service.
type Options struct {
	Screenshot screenshot.Options
	Logger     zerolog.Logger
}

// Service drives one host. It is safe for concurrent use.
type Service struct {
	host     platform.Host
	tracker  *session.Tracker
	gestures *gesture.Engine
	shots    *screenshot.Capturer
	log      zerolog.Logger
}

var (
	_ api.Provider      = (*Service)(nil)
	_ platform.Listener = (*Service)(nil)
)

// New returns a Service for host that reports its lifecycle to tracker.
func New(host platform.Host, tracker *session.Tracker, opts Options) *Service {
	shotOpts := opts.Screenshot
	shotOpts.Logger = opts.Logger.With().Str("component", "screenshot").Logger()
	return &Service{
		host:     host,
		tracker:  tracker,
		gestures: gesture.New(host, opts.Logger.With().Str("component", "gesture").Logger()),
		shots:    screenshot.New(host, shotOpts),
		log:      opts.Logger,
	}
}

// Run delivers host callbacks to the service until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	return s.host.Run(ctx, s)
}

// OnServiceConnected implements platform.Listener.
func (s *Service) OnServiceConnected() {
	s.tracker.Connect(s)
	s.log.Info().Int("version", s.host.Version()).Msg("backend connected")
}

// OnUnbind implements platform.Listener.
func (s *Service) OnUnbind() {
	s.tracker.Disconnect()
	s.log.Info().Msg("backend unbound")
}

// OnInterrupt implements platform.Listener.
func (s *Service) OnInterrupt() {
	s.tracker.Disconnect()
	s.log.Warn().Msg("backend interrupted")
}

// OnAccessibilityEvent implements platform.Listener. Window state changes
// with a class name become the foreground context.
func (s *Service) OnAccessibilityEvent(ev platform.Event) {
	if ev.Type != platform.EventWindowStateChanged || ev.ClassName == "" {
		return
	}
	if s.tracker.SetForegroundContext(ev.ClassName) {
		s.log.Debug().Str("foreground", ev.ClassName).Str("package", ev.PackageName).Msg("foreground changed")
	}
}

// GetUIHierarchy implements api.Provider.
func (s *Service) GetUIHierarchy() string {
	doc, err := tree.Capture(s.host)
	switch {
	case errors.Is(err, tree.ErrEmptyTree):
		s.log.Warn().Msg("no active window to capture")
	case err != nil:
		s.log.Error().Err(err).Msg("capture hierarchy")
	}
	return doc
}

// recoverCall turns a host panic into the caller's zero result. It must be
// deferred directly by a method with named results.
func (s *Service) recoverCall(method string) {
	if r := recover(); r != nil {
		s.log.Error().Str("method", method).Interface("panic", r).Msg("host call panicked")
	}
}

// PerformClick implements api.Provider.
func (s *Service) PerformClick(x, y int) (ok bool) {
	defer s.recoverCall(api.MethodPerformClick)
	return s.gestures.Tap(x, y)
}

// PerformLongPress implements api.Provider.
func (s *Service) PerformLongPress(x, y int) (ok bool) {
	defer s.recoverCall(api.MethodPerformLongPress)
	return s.gestures.LongPress(x, y)
}

// PerformGlobalAction implements api.Provider.
func (s *Service) PerformGlobalAction(actionID int) (ok bool) {
	defer s.recoverCall(api.MethodPerformGlobalAction)
	return s.gestures.GlobalAction(actionID)
}

// PerformSwipe implements api.Provider.
func (s *Service) PerformSwipe(startX, startY, endX, endY int, durationMs int64) (ok bool) {
	defer s.recoverCall(api.MethodPerformSwipe)
	return s.gestures.Swipe(startX, startY, endX, endY, time.Duration(durationMs)*time.Millisecond)
}

// FindFocusedNodeID implements api.Provider. Input focus wins over
// accessibility focus.
func (s *Service) FindFocusedNodeID() (id string, found bool) {
	defer s.recoverCall(api.MethodFindFocusedNodeID)
	n := s.host.FindFocus(platform.FocusInput)
	if n == nil {
		n = s.host.FindFocus(platform.FocusAccessibility)
	}
	if n == nil {
		return "", false
	}
	defer n.Release()
	return n.BoundsInScreen().ShortString(), true
}

// SetTextOnNode implements api.Provider. nodeID names a container; the text
// goes to the container itself or its first editable descendant.
func (s *Service) SetTextOnNode(nodeID, text string) (ok bool) {
	defer s.recoverCall(api.MethodSetTextOnNode)
	root := s.host.RootInActiveWindow()
	if root == nil {
		s.log.Warn().Msg("set text: no active window")
		return false
	}
	container := func() platform.Node {
		defer root.Release()
		return tree.FindByIdentifier(root, nodeID)
	}()
	if container == nil {
		s.log.Warn().Str("node", nodeID).Msg("set text: node not found")
		return false
	}
	defer container.Release()

	target := tree.FindFirstEditable(container)
	if target == nil {
		s.log.Warn().Str("node", nodeID).Msg("set text: no editable node")
		return false
	}
	defer target.Release()

	if !target.SetText(text) {
		s.log.Warn().
			Str("class", target.ClassName()).
			Str("text", target.Text()).
			Str("bounds", target.BoundsInScreen().ShortString()).
			Msg("set text refused by host")
		return false
	}
	return true
}

// TakeScreenshot implements api.Provider.
func (s *Service) TakeScreenshot(path, format string) (ok bool) {
	defer s.recoverCall(api.MethodTakeScreenshot)
	return s.shots.Capture(path, format)
}

// IsAccessibilityServiceEnabled implements api.Provider.
func (s *Service) IsAccessibilityServiceEnabled() bool {
	return s.tracker.IsConnected()
}

// GetCurrentActivityName implements api.Provider.
func (s *Service) GetCurrentActivityName() string {
	return s.tracker.ForegroundContext()
}
