package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/mj1618/uia-provider/internal/api"
)

type fakeBackend struct {
	api.Provider
	name string
}

func TestTracker_StartsDisconnected(t *testing.T) {
	tr := NewTracker()
	if tr.IsConnected() {
		t.Error("new tracker should be disconnected")
	}
	if tr.Backend() != nil {
		t.Error("new tracker should have no backend")
	}
	if tr.ForegroundContext() != "" {
		t.Error("new tracker should have empty foreground context")
	}
}

func TestTracker_ConnectAndDisconnect(t *testing.T) {
	tr := NewTracker()
	b := &fakeBackend{name: "a"}

	tr.Connect(b)
	if !tr.IsConnected() || tr.Backend() != b {
		t.Fatal("Connect did not publish backend")
	}
	if !tr.SetForegroundContext("com.app/.Main") {
		t.Fatal("SetForegroundContext should succeed while connected")
	}
	if got := tr.ForegroundContext(); got != "com.app/.Main" {
		t.Errorf("ForegroundContext = %q", got)
	}

	tr.Disconnect()
	s := tr.Snapshot()
	if s.Connected || s.Backend != nil || s.ForegroundContext != "" {
		t.Errorf("Disconnect left partial state: %+v", s)
	}
}

func TestTracker_SetConnected(t *testing.T) {
	tr := NewTracker()
	b := &fakeBackend{}
	tr.SetConnected(true, b)
	if !tr.IsConnected() {
		t.Fatal("SetConnected(true) should connect")
	}
	tr.SetConnected(false, b)
	if tr.IsConnected() {
		t.Fatal("SetConnected(false) should disconnect")
	}
	tr.Connect(nil)
	if tr.IsConnected() {
		t.Error("Connect(nil) must not report connected")
	}
}

func TestTracker_ReconnectClearsForeground(t *testing.T) {
	tr := NewTracker()
	tr.Connect(&fakeBackend{})
	tr.SetForegroundContext("old")
	tr.Connect(&fakeBackend{})
	if got := tr.ForegroundContext(); got != "" {
		t.Errorf("new session inherited foreground %q", got)
	}
}

func TestTracker_ForegroundIgnoredWhileDisconnected(t *testing.T) {
	tr := NewTracker()
	if tr.SetForegroundContext("late") {
		t.Error("SetForegroundContext should report false while disconnected")
	}
	if got := tr.ForegroundContext(); got != "" {
		t.Errorf("ForegroundContext = %q, want empty", got)
	}
}

// Readers must never see a torn state: disconnected with a foreground
// context, or connected without a backend.
func TestTracker_ConcurrentReadersSeeCompleteStates(t *testing.T) {
	tr := NewTracker()
	b := &fakeBackend{}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 16)

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				s := tr.Snapshot()
				if !s.Connected && (s.ForegroundContext != "" || s.Backend != nil) {
					select {
					case errs <- fmt.Sprintf("torn disconnected state: %+v", s):
					default:
					}
				}
				if s.Connected && s.Backend == nil {
					select {
					case errs <- "connected without backend":
					default:
					}
				}
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		tr.Connect(b)
		tr.SetForegroundContext(fmt.Sprintf("ctx-%d", i))
		if i%2 == 0 {
			tr.Disconnect()
		} else {
			tr.SetForegroundContext("")
		}
	}
	close(stop)
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
