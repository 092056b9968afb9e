// Package session tracks whether the automation backend is connected and
// which foreground context it last observed.
package session

import (
	"sync/atomic"

	"github.com/mj1618/uia-provider/internal/api"
)

// State is an immutable snapshot of the connection. Backend is a non-owning
// reference to the active backend and is nil whenever Connected is false.
type State struct {
	Connected         bool
	Backend           api.Provider
	ForegroundContext string
}

// Tracker publishes State snapshots atomically: readers always observe a
// complete state from a single write, never a mix of two.
type Tracker struct {
	state atomic.Pointer[State]
}

var disconnected = &State{}

// NewTracker returns a tracker in the disconnected state.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.state.Store(disconnected)
	return t
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() State {
	return *t.state.Load()
}

// Connect marks backend as the active backend and starts a new session with
// an empty foreground context.
func (t *Tracker) Connect(backend api.Provider) {
	if backend == nil {
		t.Disconnect()
		return
	}
	t.state.Store(&State{Connected: true, Backend: backend})
}

// SetConnected is Connect(backend) when active, Disconnect otherwise.
func (t *Tracker) SetConnected(active bool, backend api.Provider) {
	if active {
		t.Connect(backend)
		return
	}
	t.Disconnect()
}

// Disconnect clears the connected flag, backend and foreground context in a
// single publish.
func (t *Tracker) Disconnect() {
	t.state.Store(disconnected)
}

// IsConnected reports whether a backend is active.
func (t *Tracker) IsConnected() bool {
	return t.state.Load().Connected
}

// Backend returns the active backend, or nil when disconnected.
func (t *Tracker) Backend() api.Provider {
	return t.state.Load().Backend
}

// ForegroundContext returns the last observed foreground context identifier.
func (t *Tracker) ForegroundContext() string {
	return t.state.Load().ForegroundContext
}

// SetForegroundContext records id for the current session. It reports false
// and changes nothing while disconnected, so a late window event cannot leak
// a context into the disconnected state.
func (t *Tracker) SetForegroundContext(id string) bool {
	for {
		cur := t.state.Load()
		if !cur.Connected {
			return false
		}
		if cur.ForegroundContext == id {
			return true
		}
		next := &State{Connected: true, Backend: cur.Backend, ForegroundContext: id}
		if t.state.CompareAndSwap(cur, next) {
			return true
		}
	}
}
