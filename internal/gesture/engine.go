// Package gesture synthesizes pointer gestures against the host.
package gesture

import (
	"time"

	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/rs/zerolog"
)

// Stroke durations for single-point gestures.
const (
	TapDuration       = 50 * time.Millisecond
	LongPressDuration = 600 * time.Millisecond
)

// Host is the subset of platform.Host the engine drives.
type Host interface {
	Version() int
	DispatchGesture(g platform.GestureDescription, cb *platform.GestureCallback) bool
	PerformGlobalAction(action int) bool
}

// Engine dispatches gestures. Every method reports only whether the host
// accepted the request; completion is logged and never changes the result.
type Engine struct {
	host Host
	log  zerolog.Logger
}

// New returns an engine for host.
func New(host Host, log zerolog.Logger) *Engine {
	return &Engine{host: host, log: log}
}

// Tap presses (x, y) briefly.
func (e *Engine) Tap(x, y int) bool {
	return e.press("tap", x, y, TapDuration)
}

// LongPress holds (x, y).
func (e *Engine) LongPress(x, y int) bool {
	return e.press("long_press", x, y, LongPressDuration)
}

func (e *Engine) press(kind string, x, y int, d time.Duration) bool {
	var p platform.Path
	p.MoveTo(float64(x), float64(y)).LineTo(float64(x), float64(y))
	return e.dispatch(kind, p, d)
}

// Swipe drags from (x0, y0) to (x1, y1) over duration. Hosts below
// platform.VersionGestures refuse without dispatching.
func (e *Engine) Swipe(x0, y0, x1, y1 int, duration time.Duration) bool {
	if v := e.host.Version(); v < platform.VersionGestures {
		e.log.Warn().Int("version", v).Int("required", platform.VersionGestures).Msg("swipe not supported by host")
		return false
	}
	var p platform.Path
	p.MoveTo(float64(x0), float64(y0)).LineTo(float64(x1), float64(y1))
	return e.dispatch("swipe", p, duration)
}

// GlobalAction forwards an action code verbatim.
func (e *Engine) GlobalAction(id int) bool {
	return e.host.PerformGlobalAction(id)
}

func (e *Engine) dispatch(kind string, p platform.Path, d time.Duration) bool {
	stroke, err := platform.NewStroke(p, 0, d)
	if err != nil {
		e.log.Warn().Err(err).Str("gesture", kind).Msg("invalid gesture")
		return false
	}
	g, err := platform.NewGesture(stroke)
	if err != nil {
		e.log.Warn().Err(err).Str("gesture", kind).Msg("invalid gesture")
		return false
	}

	log := e.log.With().Str("gesture", kind).Logger()
	cb := &platform.GestureCallback{
		OnCompleted: func(platform.GestureDescription) {
			log.Debug().Msg("gesture completed")
		},
		OnCancelled: func(platform.GestureDescription) {
			log.Warn().Msg("gesture cancelled")
		},
	}
	ok := e.host.DispatchGesture(g, cb)
	if !ok {
		log.Warn().Msg("gesture not accepted by host")
	}
	return ok
}
