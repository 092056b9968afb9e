package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mj1618/uia-provider/internal/api"
	"github.com/rs/zerolog"
)

// stubProvider returns recognisable values. TakeScreenshot blocks until
// release is closed, when set.
type stubProvider struct {
	release chan struct{}

	mu      sync.Mutex
	setText [2]string
	swipe   [5]int64
}

func (p *stubProvider) GetUIHierarchy() string              { return `<node class="root"/>` }
func (p *stubProvider) PerformClick(x, y int) bool          { return x == 1 && y == 2 }
func (p *stubProvider) PerformLongPress(x, y int) bool      { return x == 3 && y == 4 }
func (p *stubProvider) PerformGlobalAction(id int) bool     { return id == 2 }
func (p *stubProvider) FindFocusedNodeID() (string, bool)   { return "[0,0][100,50]", true }
func (p *stubProvider) IsAccessibilityServiceEnabled() bool { return true }
func (p *stubProvider) GetCurrentActivityName() string      { return "com.example.Main" }

func (p *stubProvider) PerformSwipe(x0, y0, x1, y1 int, d int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.swipe = [5]int64{int64(x0), int64(y0), int64(x1), int64(y1), d}
	return true
}

func (p *stubProvider) SetTextOnNode(id, text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setText = [2]string{id, text}
	return true
}

func (p *stubProvider) TakeScreenshot(path, format string) bool {
	if p.release != nil {
		<-p.release
	}
	return path == "/tmp/a.png" && format == "png"
}

func startServer(t *testing.T, p api.Provider, opts ServerOptions) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(p, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, opts ClientOptions) *Client {
	t.Helper()
	c, err := Dial(context.Background(), strings.TrimPrefix(ts.URL, "http://"), opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientRoundTrip(t *testing.T) {
	p := &stubProvider{}
	c := dial(t, startServer(t, p, ServerOptions{Logger: zerolog.Nop()}), ClientOptions{Logger: zerolog.Nop()})

	if got := c.GetUIHierarchy(); got != `<node class="root"/>` {
		t.Errorf("hierarchy = %q", got)
	}
	if !c.PerformClick(1, 2) || !c.PerformLongPress(3, 4) || !c.PerformGlobalAction(2) {
		t.Error("point/global calls lost their arguments")
	}
	if !c.PerformSwipe(10, 20, 30, 40, 300) || p.swipe != [5]int64{10, 20, 30, 40, 300} {
		t.Errorf("swipe args = %v", p.swipe)
	}
	if id, ok := c.FindFocusedNodeID(); !ok || id != "[0,0][100,50]" {
		t.Errorf("focused = %q %v", id, ok)
	}
	if !c.SetTextOnNode("[0,0][100,50]", "hello") || p.setText != [2]string{"[0,0][100,50]", "hello"} {
		t.Errorf("setText args = %v", p.setText)
	}
	if !c.TakeScreenshot("/tmp/a.png", "png") {
		t.Error("screenshot args lost")
	}
	if !c.IsAccessibilityServiceEnabled() {
		t.Error("expected enabled")
	}
	if got := c.GetCurrentActivityName(); got != "com.example.Main" {
		t.Errorf("activity = %q", got)
	}
}

func TestConcurrentCallsDoNotBlockEachOther(t *testing.T) {
	p := &stubProvider{release: make(chan struct{})}
	c := dial(t, startServer(t, p, ServerOptions{}), ClientOptions{})

	shot := make(chan bool, 1)
	go func() { shot <- c.TakeScreenshot("/tmp/a.png", "png") }()

	// The blocked screenshot must not hold up other calls.
	done := make(chan string, 1)
	go func() { done <- c.GetCurrentActivityName() }()
	select {
	case got := <-done:
		if got != "com.example.Main" {
			t.Errorf("activity = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("call blocked behind screenshot")
	}

	close(p.release)
	if !<-shot {
		t.Error("screenshot result lost")
	}
}

// panickingProvider panics on focus lookup, as a provider holding a stale
// host node would.
type panickingProvider struct{ stubProvider }

func (*panickingProvider) FindFocusedNodeID() (string, bool) { panic("stale node") }

func TestProviderPanicDoesNotKillServer(t *testing.T) {
	c := dial(t, startServer(t, &panickingProvider{}, ServerOptions{}), ClientOptions{})

	if id, ok := c.FindFocusedNodeID(); ok || id != "" {
		t.Errorf("focused = %q %v, want default", id, ok)
	}
	err := c.Call(context.Background(), "findFocusedNodeId", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "stale node") {
		t.Errorf("err = %v, want provider panic", err)
	}
	// The connection and server survive.
	if got := c.GetCurrentActivityName(); got != "com.example.Main" {
		t.Errorf("activity after panic = %q", got)
	}
}

func TestUnknownMethod(t *testing.T) {
	c := dial(t, startServer(t, &stubProvider{}, ServerOptions{}), ClientOptions{})
	err := c.Call(context.Background(), "rebootDevice", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown method") {
		t.Errorf("err = %v", err)
	}
}

func TestMissingArgs(t *testing.T) {
	c := dial(t, startServer(t, &stubProvider{}, ServerOptions{}), ClientOptions{})
	var v bool
	if err := c.Call(context.Background(), api.MethodPerformClick, nil, &v); err == nil {
		t.Error("expected missing args error")
	}
}

func TestDefaultsAfterServerGone(t *testing.T) {
	// A server that accepts the websocket and hangs up straight away.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer ts.Close()

	c, err := Dial(context.Background(), strings.TrimPrefix(ts.URL, "http://"), ClientOptions{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client did not notice the closed connection")
	}

	if c.GetUIHierarchy() != "" || c.PerformClick(1, 2) || c.IsAccessibilityServiceEnabled() {
		t.Error("expected defaults")
	}
	if id, ok := c.FindFocusedNodeID(); ok || id != "" {
		t.Errorf("focused = %q %v", id, ok)
	}
	if err := c.Call(context.Background(), api.MethodGetUIHierarchy, nil, nil); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestCallTimeout(t *testing.T) {
	p := &stubProvider{release: make(chan struct{})}
	defer close(p.release)
	c := dial(t, startServer(t, p, ServerOptions{}), ClientOptions{Timeout: 50 * time.Millisecond})

	if c.TakeScreenshot("/tmp/a.png", "png") {
		t.Error("timed out call should return the default")
	}
	if c.GetCurrentActivityName() != "com.example.Main" {
		t.Error("client unusable after a timeout")
	}
}

func TestToken(t *testing.T) {
	ts := startServer(t, &stubProvider{}, ServerOptions{Token: "s3cret"})
	addr := strings.TrimPrefix(ts.URL, "http://")

	if _, err := Dial(context.Background(), addr, ClientOptions{}); err == nil {
		t.Error("dial without token should fail")
	}
	c, err := Dial(context.Background(), addr, ClientOptions{Token: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if !c.IsAccessibilityServiceEnabled() {
		t.Error("authorised call failed")
	}
}

func TestRateLimit(t *testing.T) {
	c := dial(t, startServer(t, &stubProvider{}, ServerOptions{CallsPerSecond: 10}), ClientOptions{})
	start := time.Now()
	for i := 0; i < 4; i++ {
		c.GetCurrentActivityName()
	}
	// Burst 1 at 10/s: the 4th call starts no earlier than 300ms in.
	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Errorf("4 calls took %v, limiter not applied", elapsed)
	}
}

func TestHealthz(t *testing.T) {
	ts := startServer(t, &stubProvider{}, ServerOptions{Token: "x"})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestDispatch(t *testing.T) {
	p := &stubProvider{}
	args, _ := json.Marshal(PointArgs{X: 1, Y: 2})
	res := Dispatch(p, Call{ID: "1", Method: api.MethodPerformClick, Args: args})
	if !res.OK || string(res.Value) != "true" || res.ID != "1" {
		t.Errorf("result = %+v", res)
	}

	res = Dispatch(p, Call{ID: "2", Method: api.MethodFindFocusedNodeID})
	var fn FocusedNode
	if err := json.Unmarshal(res.Value, &fn); err != nil || !fn.Found || fn.ID != "[0,0][100,50]" {
		t.Errorf("focused = %+v (%v)", fn, err)
	}

	res = Dispatch(p, Call{ID: "3", Method: api.MethodPerformSwipe, Args: json.RawMessage(`{"startX":"a"}`)})
	if res.OK || res.Error == "" {
		t.Errorf("bad args result = %+v", res)
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := map[string]string{
		"127.0.0.1:9277":        "ws://127.0.0.1:9277/ws",
		"ws://host:1/ws":        "ws://host:1/ws",
		"wss://example.com/uia": "wss://example.com/uia",
	}
	for in, want := range tests {
		if got := WebsocketURL(in); got != want {
			t.Errorf("WebsocketURL(%q) = %q, want %q", in, got, want)
		}
	}
}
