package gesture

import (
	"sync"
	"testing"
	"time"

	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/rs/zerolog"
)

// fakeHost records dispatched gestures and never completes them, so tests
// observe that results do not wait for completion.
type fakeHost struct {
	version int
	accept  bool

	mu        sync.Mutex
	gestures  []platform.GestureDescription
	callbacks []*platform.GestureCallback
	actions   []int
}

func (h *fakeHost) Version() int { return h.version }

func (h *fakeHost) DispatchGesture(g platform.GestureDescription, cb *platform.GestureCallback) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gestures = append(h.gestures, g)
	h.callbacks = append(h.callbacks, cb)
	return h.accept
}

func (h *fakeHost) PerformGlobalAction(action int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, action)
	return h.accept
}

func newEngine(h *fakeHost) *Engine { return New(h, zerolog.Nop()) }

func TestTapAndLongPress(t *testing.T) {
	tests := []struct {
		name     string
		call     func(e *Engine) bool
		duration time.Duration
	}{
		{"tap", func(e *Engine) bool { return e.Tap(120, 340) }, TapDuration},
		{"long press", func(e *Engine) bool { return e.LongPress(120, 340) }, LongPressDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHost{version: 30, accept: true}
			if !tt.call(newEngine(h)) {
				t.Fatal("expected acceptance")
			}
			if len(h.gestures) != 1 {
				t.Fatalf("gestures = %d, want 1", len(h.gestures))
			}
			g := h.gestures[0]
			if len(g.Strokes) != 1 {
				t.Fatalf("strokes = %d, want 1", len(g.Strokes))
			}
			s := g.Strokes[0]
			if s.Duration != tt.duration || s.StartDelay != 0 {
				t.Errorf("stroke timing = %v/%v, want 0/%v", s.StartDelay, s.Duration, tt.duration)
			}
			pts := s.Path.Points()
			if len(pts) != 2 || pts[0] != pts[1] || pts[0] != (platform.Point{X: 120, Y: 340}) {
				t.Errorf("path = %v, want zero-length line at (120,340)", pts)
			}
		})
	}
}

func TestSwipe(t *testing.T) {
	h := &fakeHost{version: 30, accept: true}
	start := time.Now()
	if !newEngine(h).Swipe(10, 10, 200, 200, 300*time.Millisecond) {
		t.Fatal("expected acceptance")
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("swipe blocked for %v", elapsed)
	}
	pts := h.gestures[0].Strokes[0].Path.Points()
	want := []platform.Point{{X: 10, Y: 10}, {X: 200, Y: 200}}
	if len(pts) != 2 || pts[0] != want[0] || pts[1] != want[1] {
		t.Errorf("path = %v, want %v", pts, want)
	}
	if d := h.gestures[0].Duration(); d != 300*time.Millisecond {
		t.Errorf("duration = %v", d)
	}
}

func TestSwipe_UnsupportedVersion(t *testing.T) {
	h := &fakeHost{version: platform.VersionGestures - 1, accept: true}
	if newEngine(h).Swipe(0, 0, 10, 10, 100*time.Millisecond) {
		t.Error("swipe should fail below the gesture version")
	}
	if len(h.gestures) != 0 {
		t.Error("nothing should be dispatched on unsupported hosts")
	}
}

func TestSwipe_InvalidDuration(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second, 2 * platform.MaxGestureDuration} {
		h := &fakeHost{version: 30, accept: true}
		if newEngine(h).Swipe(0, 0, 10, 10, d) {
			t.Errorf("duration %v should be refused", d)
		}
		if len(h.gestures) != 0 {
			t.Errorf("duration %v was dispatched", d)
		}
	}
}

func TestNegativeCoordinatesRefused(t *testing.T) {
	h := &fakeHost{version: 30, accept: true}
	if newEngine(h).Tap(-1, 5) {
		t.Error("off-screen tap should be refused")
	}
}

func TestResultIsAcceptanceOnly(t *testing.T) {
	h := &fakeHost{version: 30, accept: false}
	e := newEngine(h)
	if e.Tap(1, 1) {
		t.Error("rejected dispatch must return false")
	}

	h.accept = true
	if !e.Tap(1, 1) {
		t.Fatal("accepted dispatch must return true")
	}
	// Completion and cancellation arrive later and only log.
	h.callbacks[1].Cancelled(h.gestures[1])
	h.callbacks[1].Completed(h.gestures[1])
}

func TestGlobalAction(t *testing.T) {
	h := &fakeHost{version: 30, accept: true}
	if !newEngine(h).GlobalAction(platform.GlobalActionHome) {
		t.Error("expected acceptance")
	}
	if len(h.actions) != 1 || h.actions[0] != platform.GlobalActionHome {
		t.Errorf("actions = %v", h.actions)
	}
}
