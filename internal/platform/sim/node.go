package sim

import (
	"sync/atomic"

	"github.com/mj1618/uia-provider/internal/model"
	"github.com/mj1618/uia-provider/internal/platform"
)

// node is a counted reference to an Element.
type node struct {
	h        *Host
	el       *Element
	released atomic.Bool
}

func (h *Host) acquire(el *Element) platform.Node {
	if el == nil {
		return nil
	}
	h.outstanding.Add(1)
	h.acquired.Add(1)
	return &node{h: h, el: el}
}

// attrs returns a shallow copy of the element taken under the host lock.
// It panics for stale elements.
func (n *node) attrs() Element {
	n.h.mu.RLock()
	el := *n.el
	n.h.mu.RUnlock()
	if el.Stale {
		panic("sim: stale node " + el.Bounds)
	}
	return el
}

func (n *node) ClassName() string          { return n.attrs().Class }
func (n *node) PackageName() string        { return n.attrs().Package }
func (n *node) ContentDescription() string { return n.attrs().ContentDesc }
func (n *node) Text() string               { return n.attrs().Text }
func (n *node) ViewIDResourceName() string { return n.attrs().ResourceID }
func (n *node) BoundsInScreen() model.Rect { return n.attrs().rect }
func (n *node) IsClickable() bool          { return n.attrs().Clickable }
func (n *node) IsFocused() bool            { return n.attrs().Focused }
func (n *node) IsEditable() bool           { return n.attrs().Editable }
func (n *node) ChildCount() int            { return len(n.attrs().Children) }

func (n *node) Child(i int) platform.Node {
	children := n.attrs().Children
	if i < 0 || i >= len(children) {
		return nil
	}
	return n.h.acquire(children[i])
}

func (n *node) Obtain() platform.Node {
	return n.h.acquire(n.el)
}

func (n *node) SetText(text string) bool {
	n.h.mu.Lock()
	defer n.h.mu.Unlock()
	if !n.el.Editable {
		return false
	}
	n.el.Text = text
	return true
}

func (n *node) Release() {
	if !n.released.CompareAndSwap(false, true) {
		n.h.doubleReleases.Add(1)
		return
	}
	n.h.outstanding.Add(-1)
}
