//go:build linux

package x11

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/mj1618/uia-provider/internal/model"
	"github.com/mj1618/uia-provider/internal/platform"
)

// window is a snapshot of one X window taken when the handle is created.
// X windows are server resources, so Release only marks the handle.
type window struct {
	h        *Host
	id       xproto.Window
	class    string
	instance string
	title    string
	bounds   model.Rect
	viewable bool
	focused  bool
	children []xproto.Window
	released atomic.Bool
}

// snapshot reads a window's attributes. It returns nil if the window is
// gone or not mapped.
func (h *Host) snapshot(id xproto.Window) platform.Node {
	c := h.xu.Conn()
	attrs, err := xproto.GetWindowAttributes(c, id).Reply()
	if err != nil {
		return nil
	}
	viewable := attrs.MapState == xproto.MapStateViewable
	if !viewable && id != h.root {
		return nil
	}

	geom, err := xproto.GetGeometry(c, xproto.Drawable(id)).Reply()
	if err != nil {
		return nil
	}
	origin, err := xproto.TranslateCoordinates(c, id, h.root, 0, 0).Reply()
	if err != nil {
		return nil
	}

	w := &window{
		h:        h,
		id:       id,
		viewable: viewable || id == h.root,
		bounds: model.Rect{
			Left:   int(origin.DstX),
			Top:    int(origin.DstY),
			Right:  int(origin.DstX) + int(geom.Width),
			Bottom: int(origin.DstY) + int(geom.Height),
		},
	}
	if cls, err := icccm.WmClassGet(h.xu, id); err == nil {
		w.class = strings.TrimSpace(cls.Class)
		w.instance = strings.TrimSpace(cls.Instance)
	}
	if w.class == "" {
		w.class = "XWindow"
	}
	w.title = windowTitle(h, id)

	if focus, err := xproto.GetInputFocus(c).Reply(); err == nil {
		w.focused = focus.Focus == id
	}
	if tree, err := xproto.QueryTree(c, id).Reply(); err == nil {
		w.children = tree.Children
	}
	return w
}

func windowTitle(h *Host, id xproto.Window) string {
	if title, err := ewmh.WmNameGet(h.xu, id); err == nil && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title, err := icccm.WmNameGet(h.xu, id); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

func (w *window) ClassName() string          { return w.class }
func (w *window) PackageName() string        { return w.instance }
func (w *window) ContentDescription() string { return "" }
func (w *window) Text() string               { return w.title }
func (w *window) ViewIDResourceName() string { return fmt.Sprintf("0x%x", uint32(w.id)) }
func (w *window) BoundsInScreen() model.Rect { return w.bounds }
func (w *window) IsClickable() bool          { return w.viewable }
func (w *window) IsFocused() bool            { return w.focused }
func (w *window) IsEditable() bool           { return false }
func (w *window) ChildCount() int            { return len(w.children) }

// Child returns nil for children that have been unmapped or destroyed.
func (w *window) Child(i int) platform.Node {
	if i < 0 || i >= len(w.children) {
		return nil
	}
	return w.h.snapshot(w.children[i])
}

func (w *window) Obtain() platform.Node {
	return w.h.snapshot(w.id)
}

// SetText is not supported: X windows carry no editable text.
func (w *window) SetText(string) bool { return false }

func (w *window) Release() {
	w.released.Store(true)
}
