// Package sim provides a simulated host driven by a YAML fixture. It keeps
// exact reference accounting for node handles, so tests can assert that
// every borrowed node was released once.
package sim

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mj1618/uia-provider/internal/model"
	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
)

func init() {
	platform.RegisterHost("sim", func(opts platform.HostOptions) (platform.Host, error) {
		o := Options{Logger: opts.Logger}
		if opts.Fixture == "" {
			return New(DefaultFixture(), o), nil
		}
		return Open(opts.Fixture, o)
	})
}

// Options tweaks simulated host behaviour.
type Options struct {
	Logger zerolog.Logger

	// RejectGestures makes DispatchGesture refuse every gesture.
	RejectGestures bool
	// ScreenshotError, when non-zero, fails every capture with that code.
	ScreenshotError int
	// ScreenshotInterval rejects captures requested closer together than this.
	ScreenshotInterval time.Duration
	// Debounce delays fixture reloads after file events. Defaults to 200ms.
	Debounce time.Duration
}

// Host is a simulated platform.Host.
type Host struct {
	opts Options
	log  zerolog.Logger
	path string

	mu      sync.RWMutex
	fixture *Fixture

	outstanding    atomic.Int64
	acquired       atomic.Int64
	doubleReleases atomic.Int64

	recMu         sync.Mutex
	gestures      []platform.GestureDescription
	actions       []int
	screenshots   int
	lastShot      time.Time
	pendingShots  sync.WaitGroup
	events        chan platform.Event
	interrupts    chan struct{}
	reloadedCount atomic.Int64
}

// New returns a host showing f.
func New(f *Fixture, opts Options) *Host {
	if opts.Debounce == 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	return &Host{
		opts:       opts,
		log:        opts.Logger,
		fixture:    f,
		events:     make(chan platform.Event, 64),
		interrupts: make(chan struct{}, 1),
	}
}

// Open loads a fixture file. Run reloads it when the file changes.
func Open(path string, opts Options) (*Host, error) {
	f, err := LoadFixture(path)
	if err != nil {
		return nil, err
	}
	h := New(f, opts)
	h.path = path
	return h, nil
}

// Version implements platform.Host.
func (h *Host) Version() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fixture.Version
}

// RootInActiveWindow implements platform.Host.
func (h *Host) RootInActiveWindow() platform.Node {
	h.mu.RLock()
	root := h.fixture.Root
	h.mu.RUnlock()
	return h.acquire(root)
}

// FindFocus implements platform.Host. Input focus falls back to the first
// element flagged as focused when the fixture names no bounds.
func (h *Host) FindFocus(kind platform.FocusKind) platform.Node {
	h.mu.RLock()
	f := h.fixture
	var el *Element
	switch kind {
	case platform.FocusInput:
		if f.Focus.Input != "" {
			el = f.Root.find(func(e *Element) bool { return e.Bounds == f.Focus.Input && e.Editable })
			if el == nil {
				el = f.Root.find(func(e *Element) bool { return e.Bounds == f.Focus.Input })
			}
		} else {
			el = f.Root.find(func(e *Element) bool { return e.Focused })
		}
	case platform.FocusAccessibility:
		if f.Focus.Accessibility != "" {
			el = f.Root.find(func(e *Element) bool { return e.Bounds == f.Focus.Accessibility })
		}
	}
	h.mu.RUnlock()
	return h.acquire(el)
}

// DispatchGesture implements platform.Host. Accepted gestures complete after
// their total duration.
func (h *Host) DispatchGesture(g platform.GestureDescription, cb *platform.GestureCallback) bool {
	if h.opts.RejectGestures {
		return false
	}
	if err := g.Validate(); err != nil {
		h.log.Debug().Err(err).Msg("gesture rejected")
		return false
	}
	h.recMu.Lock()
	h.gestures = append(h.gestures, g)
	h.recMu.Unlock()

	time.AfterFunc(g.Duration(), func() { cb.Completed(g) })
	return true
}

// PerformGlobalAction implements platform.Host.
func (h *Host) PerformGlobalAction(action int) bool {
	if action < platform.GlobalActionBack || action > platform.GlobalActionScreenshot {
		return false
	}
	h.recMu.Lock()
	h.actions = append(h.actions, action)
	h.recMu.Unlock()
	return true
}

// TakeScreenshot implements platform.Host. The frame is a rendering of the
// fixture's element bounds.
func (h *Host) TakeScreenshot(display int, cb platform.ScreenshotCallback) {
	now := time.Now()
	code := h.opts.ScreenshotError
	h.recMu.Lock()
	if code == 0 && display != platform.DefaultDisplay {
		code = platform.ScreenshotErrorInvalidDisplay
	}
	if code == 0 && h.opts.ScreenshotInterval > 0 && !h.lastShot.IsZero() && now.Sub(h.lastShot) < h.opts.ScreenshotInterval {
		code = platform.ScreenshotErrorIntervalTooShort
	}
	if code == 0 {
		h.lastShot = now
		h.screenshots++
	}
	h.recMu.Unlock()

	h.pendingShots.Add(1)
	go func() {
		defer h.pendingShots.Done()
		if code != 0 {
			if cb.OnFailure != nil {
				cb.OnFailure(code)
			}
			return
		}
		img := h.render()
		buf := platform.NewHardwareBuffer(img.Rect.Dx(), img.Rect.Dy(), img.Stride, platform.PixelFormatRGBA8888, img.Pix, nil)
		if cb.OnSuccess != nil {
			cb.OnSuccess(platform.ScreenshotResult{Buffer: buf, Timestamp: now.UnixNano()})
		}
	}()
}

var (
	colorBackground = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
	colorElement    = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	colorClickable  = color.RGBA{R: 0x3f, G: 0x51, B: 0xb5, A: 0xff}
	colorEditable   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func (h *Host) render() *image.RGBA {
	h.mu.RLock()
	defer h.mu.RUnlock()

	screen := model.Rect{Right: 1, Bottom: 1}
	if h.fixture.Root != nil && !h.fixture.Root.rect.Empty() {
		screen = h.fixture.Root.rect
	}
	img := image.NewRGBA(image.Rect(0, 0, screen.Right, screen.Bottom))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: colorBackground}, image.Point{}, draw.Src)
	if h.fixture.Root == nil {
		return img
	}
	h.fixture.Root.walk(func(e *Element) bool {
		if e == h.fixture.Root {
			return true
		}
		c := colorElement
		switch {
		case e.Editable:
			c = colorEditable
		case e.Clickable:
			c = colorClickable
		}
		r := image.Rect(e.rect.Left, e.rect.Top, e.rect.Right, e.rect.Bottom)
		draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
		return true
	})
	return img
}

// Emit queues an accessibility event for delivery by Run.
func (h *Host) Emit(ev platform.Event) {
	h.events <- ev
}

// Interrupt makes Run deliver OnInterrupt.
func (h *Host) Interrupt() {
	select {
	case h.interrupts <- struct{}{}:
	default:
	}
}

// Run implements platform.Host. It connects, announces the fixture's
// foreground as a window change, and then relays events until ctx is done.
func (h *Host) Run(ctx context.Context, l platform.Listener) error {
	var reloads <-chan *Fixture
	if h.path != "" {
		w, err := newWatcher(h.path, h.opts.Debounce, h.log)
		if err != nil {
			return fmt.Errorf("watch fixture: %w", err)
		}
		defer w.Close()
		reloads = w.fixtures
	}

	l.OnServiceConnected()
	l.OnAccessibilityEvent(h.windowEvent())

	for {
		select {
		case <-ctx.Done():
			l.OnUnbind()
			return nil
		case ev := <-h.events:
			l.OnAccessibilityEvent(ev)
		case <-h.interrupts:
			l.OnInterrupt()
		case f := <-reloads:
			h.swap(f)
			l.OnAccessibilityEvent(h.windowEvent())
		}
	}
}

func (h *Host) swap(f *Fixture) {
	h.mu.Lock()
	h.fixture = f
	h.mu.Unlock()
	h.reloadedCount.Add(1)
	h.log.Info().Str("foreground", f.Foreground).Msg("fixture reloaded")
}

func (h *Host) windowEvent() platform.Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ev := platform.Event{Type: platform.EventWindowStateChanged, ClassName: h.fixture.Foreground}
	if h.fixture.Root != nil {
		ev.PackageName = h.fixture.Root.Package
	}
	return ev
}

// Outstanding returns the number of node handles not yet released.
func (h *Host) Outstanding() int64 { return h.outstanding.Load() }

// Acquired returns the number of node handles ever handed out.
func (h *Host) Acquired() int64 { return h.acquired.Load() }

// DoubleReleases returns how many times an already released handle was released again.
func (h *Host) DoubleReleases() int64 { return h.doubleReleases.Load() }

// Reloads returns how many times the fixture file was reloaded.
func (h *Host) Reloads() int64 { return h.reloadedCount.Load() }

// Gestures returns the accepted gestures in dispatch order.
func (h *Host) Gestures() []platform.GestureDescription {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	return append([]platform.GestureDescription(nil), h.gestures...)
}

// GlobalActions returns the performed global actions in order.
func (h *Host) GlobalActions() []int {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	return append([]int(nil), h.actions...)
}

// Screenshots returns the number of captures that produced a frame.
func (h *Host) Screenshots() int {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	return h.screenshots
}

// WaitScreenshots blocks until every requested capture has called back.
func (h *Host) WaitScreenshots() { h.pendingShots.Wait() }

// TextAt returns the text of the first element with the given bounds.
func (h *Host) TextAt(bounds string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	el := h.fixture.Root.find(func(e *Element) bool { return e.Bounds == bounds && e.Editable })
	if el == nil {
		el = h.fixture.Root.find(func(e *Element) bool { return e.Bounds == bounds })
	}
	if el == nil {
		return "", false
	}
	return el.Text, true
}
