//go:build linux

package x11

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/rs/zerolog"
)

// Capability levels reported by Version.
const (
	versionWithXTest    = 33
	versionWithoutXTest = platform.VersionGestures - 1
)

// motionStep is the interval between synthetic pointer moves along a path.
const motionStep = 10 * time.Millisecond

func init() {
	platform.RegisterHost("x11", func(opts platform.HostOptions) (platform.Host, error) {
		return Open(opts.Display, opts.Logger)
	})
}

// Host drives an X display.
type Host struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	width   int
	height  int
	xtestOK bool
	log     zerolog.Logger

	busy atomic.Bool // a gesture is being played
}

// Open connects to display, or $DISPLAY when empty.
func Open(display string, log zerolog.Logger) (*Host, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	keybind.Initialize(xu)

	h := &Host{
		xu:     xu,
		root:   xu.RootWin(),
		width:  int(xu.Screen().WidthInPixels),
		height: int(xu.Screen().HeightInPixels),
		log:    log,
	}
	if err := xtest.Init(xu.Conn()); err != nil {
		log.Warn().Err(err).Msg("XTEST unavailable, input synthesis disabled")
	} else {
		h.xtestOK = true
	}
	return h, nil
}

// Version implements platform.Host.
func (h *Host) Version() int {
	if h.xtestOK {
		return versionWithXTest
	}
	return versionWithoutXTest
}

// RootInActiveWindow implements platform.Host. The active window is taken
// from _NET_ACTIVE_WINDOW, falling back to the root window.
func (h *Host) RootInActiveWindow() platform.Node {
	win, err := ewmh.ActiveWindowGet(h.xu)
	if err != nil || win == 0 {
		win = h.root
	}
	return h.snapshot(win)
}

// FindFocus implements platform.Host. X has a single input focus; the
// accessibility focus is not tracked.
func (h *Host) FindFocus(kind platform.FocusKind) platform.Node {
	if kind != platform.FocusInput {
		return nil
	}
	reply, err := xproto.GetInputFocus(h.xu.Conn()).Reply()
	if err != nil || reply.Focus == xproto.WindowNone || reply.Focus == h.root {
		return nil
	}
	return h.snapshot(reply.Focus)
}

// DispatchGesture implements platform.Host. Only single-stroke gestures can
// be played with one pointer. The stroke runs on its own goroutine.
func (h *Host) DispatchGesture(g platform.GestureDescription, cb *platform.GestureCallback) bool {
	if !h.xtestOK {
		return false
	}
	if err := g.Validate(); err != nil || len(g.Strokes) != 1 {
		return false
	}
	if !h.busy.CompareAndSwap(false, true) {
		// The pointer is mid-gesture; a second one would interleave.
		return false
	}
	go func() {
		defer h.busy.Store(false)
		if err := h.play(g.Strokes[0]); err != nil {
			h.log.Warn().Err(err).Msg("gesture aborted")
			cb.Cancelled(g)
			return
		}
		cb.Completed(g)
	}()
	return true
}

func (h *Host) play(s platform.Stroke) error {
	pts := s.Path.Points()
	time.Sleep(s.StartDelay)

	if err := h.fake(xproto.MotionNotify, 0, pts[0]); err != nil {
		return err
	}
	if err := h.fake(xproto.ButtonPress, 1, pts[0]); err != nil {
		return err
	}

	steps := int(s.Duration / motionStep)
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		time.Sleep(s.Duration / time.Duration(steps))
		if err := h.fake(xproto.MotionNotify, 0, pointAlong(pts, float64(i)/float64(steps))); err != nil {
			h.fake(xproto.ButtonRelease, 1, pts[len(pts)-1])
			return err
		}
	}
	return h.fake(xproto.ButtonRelease, 1, pts[len(pts)-1])
}

// pointAlong returns the point at fraction t of the polyline through pts,
// with segments weighted equally.
func pointAlong(pts []platform.Point, t float64) platform.Point {
	if len(pts) == 1 || t <= 0 {
		return pts[0]
	}
	if t >= 1 {
		return pts[len(pts)-1]
	}
	segs := float64(len(pts) - 1)
	i := int(t * segs)
	frac := t*segs - float64(i)
	a, b := pts[i], pts[i+1]
	return platform.Point{X: a.X + (b.X-a.X)*frac, Y: a.Y + (b.Y-a.Y)*frac}
}

func (h *Host) fake(eventType, detail byte, p platform.Point) error {
	return xtest.FakeInputChecked(h.xu.Conn(), eventType, detail, 0, h.root, int16(p.X), int16(p.Y), 0).Check()
}

// globalChords maps global actions to desktop key chords.
var globalChords = map[int][]string{
	platform.GlobalActionBack:          {"Alt_L", "Left"},
	platform.GlobalActionHome:          {"Super_L", "d"},
	platform.GlobalActionRecents:       {"Alt_L", "Tab"},
	platform.GlobalActionNotifications: {"Super_L", "v"},
	platform.GlobalActionQuickSettings: {"Super_L", "a"},
	platform.GlobalActionPowerDialog:   {"XF86PowerOff"},
	platform.GlobalActionSplitScreen:   {"Super_L", "Left"},
	platform.GlobalActionLockScreen:    {"Super_L", "l"},
	platform.GlobalActionScreenshot:    {"Print"},
}

// PerformGlobalAction implements platform.Host by pressing the action's key
// chord.
func (h *Host) PerformGlobalAction(action int) bool {
	chord, ok := globalChords[action]
	if !ok || !h.xtestOK {
		return false
	}
	codes := make([]xproto.Keycode, 0, len(chord))
	for _, sym := range chord {
		kc := keybind.StrToKeycodes(h.xu, sym)
		if len(kc) == 0 {
			h.log.Debug().Str("keysym", sym).Msg("no keycode for keysym")
			return false
		}
		codes = append(codes, kc[0])
	}
	c := h.xu.Conn()
	for _, kc := range codes {
		if err := xtest.FakeInputChecked(c, xproto.KeyPress, byte(kc), 0, h.root, 0, 0, 0).Check(); err != nil {
			return false
		}
	}
	for i := len(codes) - 1; i >= 0; i-- {
		xtest.FakeInput(c, xproto.KeyRelease, byte(codes[i]), 0, h.root, 0, 0, 0)
	}
	return true
}

// TakeScreenshot implements platform.Host with a ZPixmap read of the root
// window. The frame is delivered from a new goroutine.
func (h *Host) TakeScreenshot(display int, cb platform.ScreenshotCallback) {
	go func() {
		if display != platform.DefaultDisplay {
			cb.OnFailure(platform.ScreenshotErrorInvalidDisplay)
			return
		}
		now := time.Now()
		reply, err := xproto.GetImage(h.xu.Conn(), xproto.ImageFormatZPixmap, xproto.Drawable(h.root),
			0, 0, uint16(h.width), uint16(h.height), ^uint32(0)).Reply()
		if err != nil {
			h.log.Warn().Err(err).Msg("GetImage failed")
			cb.OnFailure(platform.ScreenshotErrorInternal)
			return
		}
		if reply.Depth != 24 && reply.Depth != 32 {
			h.log.Warn().Uint8("depth", reply.Depth).Msg("unsupported root depth")
			cb.OnFailure(platform.ScreenshotErrorInternal)
			return
		}
		buf := platform.NewHardwareBuffer(h.width, h.height, h.width*4, platform.PixelFormatBGRX8888, reply.Data, nil)
		cb.OnSuccess(platform.ScreenshotResult{Buffer: buf, Timestamp: now.UnixNano()})
	}()
}

// Run implements platform.Host. Changes of _NET_ACTIVE_WINDOW are reported
// as window state changes carrying the new window's WM_CLASS. Losing the X
// connection reports OnInterrupt.
func (h *Host) Run(ctx context.Context, l platform.Listener) error {
	if err := xwindow.New(h.xu, h.root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("listen on root window: %w", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil || name != "_NET_ACTIVE_WINDOW" {
			return
		}
		if e, ok := h.activeWindowEvent(); ok {
			l.OnAccessibilityEvent(e)
		}
	}).Connect(h.xu, h.root)

	l.OnServiceConnected()
	if e, ok := h.activeWindowEvent(); ok {
		l.OnAccessibilityEvent(e)
	}

	mainDone := make(chan struct{})
	go func() {
		defer close(mainDone)
		xevent.Main(h.xu)
	}()

	select {
	case <-ctx.Done():
		xevent.Quit(h.xu)
		h.xu.Conn().Close()
		<-mainDone
		l.OnUnbind()
		return nil
	case <-mainDone:
		l.OnInterrupt()
		return errors.New("x11 event loop stopped")
	}
}

func (h *Host) activeWindowEvent() (platform.Event, bool) {
	win, err := ewmh.ActiveWindowGet(h.xu)
	if err != nil || win == 0 {
		return platform.Event{}, false
	}
	class, err := icccm.WmClassGet(h.xu, win)
	if err != nil {
		return platform.Event{}, false
	}
	return platform.Event{
		Type:        platform.EventWindowStateChanged,
		ClassName:   strings.TrimSpace(class.Class),
		PackageName: strings.TrimSpace(class.Instance),
	}, true
}
