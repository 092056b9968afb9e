package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mj1618/uia-provider/internal/api"
	"github.com/rs/zerolog"
)

// ErrNotConnected is returned for calls on a closed client.
var ErrNotConnected = errors.New("ipc: not connected")

// ClientOptions configures Dial.
type ClientOptions struct {
	Token string
	// Timeout bounds each call. 0 waits for the reply indefinitely.
	Timeout   time.Duration
	WriteWait time.Duration
	Logger    zerolog.Logger
}

// Client is the caller-side proxy. Its api.Provider methods never fail: any
// transport error yields the method's disconnected default and a warning.
type Client struct {
	conn *websocket.Conn
	opts ClientOptions
	log  zerolog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Result
	err     error
	done    chan struct{}
}

var _ api.Provider = (*Client)(nil)

// WebsocketURL turns "host:port" into the server's websocket URL. Full
// ws:// and wss:// URLs are returned unchanged.
func WebsocketURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	return "ws://" + addr + "/ws"
}

// Dial connects to a server.
func Dial(ctx context.Context, addr string, opts ClientOptions) (*Client, error) {
	if opts.WriteWait == 0 {
		opts.WriteWait = 5 * time.Second
	}
	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, WebsocketURL(addr), header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c := &Client{
		conn:    conn,
		opts:    opts,
		log:     opts.Logger,
		pending: make(map[string]chan Result),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	var err error
	for {
		var msg []byte
		_, msg, err = c.conn.ReadMessage()
		if err != nil {
			break
		}
		var res Result
		if jerr := json.Unmarshal(msg, &res); jerr != nil {
			c.log.Warn().Err(jerr).Msg("invalid result frame")
			continue
		}
		c.deliver(res)
	}

	c.mu.Lock()
	c.err = fmt.Errorf("%w: %v", ErrNotConnected, err)
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
	close(c.done)
}

func (c *Client) deliver(res Result) {
	c.mu.Lock()
	ch := c.pending[res.ID]
	delete(c.pending, res.ID)
	c.mu.Unlock()
	if ch != nil {
		ch <- res
	}
}

// Done is closed when the connection has gone away.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close closes the connection. Pending calls fail with ErrNotConnected.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

// Call sends method with args and decodes the reply value into out.
func (c *Client) Call(ctx context.Context, method string, args, out interface{}) error {
	call := Call{ID: uuid.New().String(), Method: method}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("%s: encode args: %w", method, err)
		}
		call.Args = raw
	}
	msg, err := json.Marshal(call)
	if err != nil {
		return err
	}

	ch := make(chan Result, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.pending[call.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
	err = c.conn.WriteMessage(websocket.TextMessage, msg)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(call.ID)
		return fmt.Errorf("%s: %w", method, err)
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return fmt.Errorf("%s: %w", method, ErrNotConnected)
		}
		if !res.OK {
			return fmt.Errorf("%s: %s", method, res.Error)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(res.Value, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		c.forget(call.ID)
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// call runs Call with the configured timeout and logs failures.
func (c *Client) call(method string, args, out interface{}) bool {
	ctx := context.Background()
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	if err := c.Call(ctx, method, args, out); err != nil {
		c.log.Warn().Err(err).Str("method", method).Msg("remote call failed, returning default")
		return false
	}
	return true
}

func (c *Client) callBool(method string, args interface{}) bool {
	var v bool
	if !c.call(method, args, &v) {
		return false
	}
	return v
}

func (c *Client) callString(method string, args interface{}) string {
	var v string
	if !c.call(method, args, &v) {
		return ""
	}
	return v
}

// GetUIHierarchy implements api.Provider.
func (c *Client) GetUIHierarchy() string {
	return c.callString(api.MethodGetUIHierarchy, nil)
}

// PerformClick implements api.Provider.
func (c *Client) PerformClick(x, y int) bool {
	return c.callBool(api.MethodPerformClick, PointArgs{X: x, Y: y})
}

// PerformLongPress implements api.Provider.
func (c *Client) PerformLongPress(x, y int) bool {
	return c.callBool(api.MethodPerformLongPress, PointArgs{X: x, Y: y})
}

// PerformGlobalAction implements api.Provider.
func (c *Client) PerformGlobalAction(actionID int) bool {
	return c.callBool(api.MethodPerformGlobalAction, GlobalActionArgs{ActionID: actionID})
}

// PerformSwipe implements api.Provider.
func (c *Client) PerformSwipe(startX, startY, endX, endY int, durationMs int64) bool {
	return c.callBool(api.MethodPerformSwipe, SwipeArgs{StartX: startX, StartY: startY, EndX: endX, EndY: endY, Duration: durationMs})
}

// FindFocusedNodeID implements api.Provider.
func (c *Client) FindFocusedNodeID() (string, bool) {
	var v FocusedNode
	if !c.call(api.MethodFindFocusedNodeID, nil, &v) || !v.Found {
		return "", false
	}
	return v.ID, true
}

// SetTextOnNode implements api.Provider.
func (c *Client) SetTextOnNode(nodeID, text string) bool {
	return c.callBool(api.MethodSetTextOnNode, SetTextArgs{NodeID: nodeID, Text: text})
}

// TakeScreenshot implements api.Provider.
func (c *Client) TakeScreenshot(path, format string) bool {
	return c.callBool(api.MethodTakeScreenshot, ScreenshotArgs{Path: path, Format: format})
}

// IsAccessibilityServiceEnabled implements api.Provider.
func (c *Client) IsAccessibilityServiceEnabled() bool {
	return c.callBool(api.MethodIsAccessibilityServiceEnabled, nil)
}

// GetCurrentActivityName implements api.Provider.
func (c *Client) GetCurrentActivityName() string {
	return c.callString(api.MethodGetCurrentActivityName, nil)
}
