// Package screenshot bridges the host's asynchronous capture callback to a
// blocking call, paces captures, and encodes frames to disk.
package screenshot

import (
	"sync"
	"time"

	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/rs/zerolog"
)

// DefaultMinInterval is the minimum gap between two captures.
const DefaultMinInterval = 1100 * time.Millisecond

// Host is the subset of platform.Host used for captures.
type Host interface {
	Version() int
	TakeScreenshot(display int, cb platform.ScreenshotCallback)
}

// Options configures a Capturer.
type Options struct {
	MinInterval time.Duration // 0 = DefaultMinInterval
	JPEGQuality int           // 0 = DefaultJPEGQuality
	Scale       float64       // 0 = 1.0
	Logger      zerolog.Logger
}

// Capturer takes one screenshot at a time. Concurrent calls queue on an
// internal lock held for the whole capture, so consecutive captures start at
// least MinInterval apart.
//
// There is no timeout: a host that never calls back blocks Capture, and every
// queued caller behind it, forever.
type Capturer struct {
	host Host
	opts Options
	log  zerolog.Logger

	mu   sync.Mutex
	last time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a Capturer for host.
func New(host Host, opts Options) *Capturer {
	if opts.MinInterval == 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.JPEGQuality == 0 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	if opts.Scale == 0 {
		opts.Scale = 1.0
	}
	return &Capturer{
		host:  host,
		opts:  opts,
		log:   opts.Logger,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Capture grabs the default display and writes it to path. format is png or
// jpg/jpeg, case-insensitive; anything else writes png. It reports whether
// the file was written.
func (c *Capturer) Capture(path, format string) bool {
	if v := c.host.Version(); v < platform.VersionScreenshot {
		c.log.Warn().Int("version", v).Int("required", platform.VersionScreenshot).Msg("screenshots not supported by host")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pace()
	res, code, ok := c.request()
	if !ok {
		c.log.Warn().Int("error_code", code).Msg("screenshot failed")
		return false
	}
	defer res.Buffer.Close()

	img, err := Decode(res.Buffer, c.opts.Scale)
	if err != nil {
		c.log.Error().Err(err).Msg("decode screenshot")
		return false
	}
	if err := WriteFile(path, img, ParseFormat(format), c.opts.JPEGQuality); err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("write screenshot")
		return false
	}
	c.log.Debug().Str("path", path).Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).Msg("screenshot written")
	return true
}

// pace sleeps out the remainder of the minimum interval and records the new
// capture time. Callers hold c.mu.
func (c *Capturer) pace() {
	now := c.now()
	if !c.last.IsZero() {
		elapsed := now.Sub(c.last)
		if elapsed >= 0 && elapsed < c.opts.MinInterval {
			c.sleep(c.opts.MinInterval - elapsed)
		}
	}
	c.last = c.now()
}

// request asks the host for a frame and waits for its first callback.
// Buffers from any later callbacks are released.
func (c *Capturer) request() (platform.ScreenshotResult, int, bool) {
	type outcome struct {
		res  platform.ScreenshotResult
		code int
		ok   bool
	}
	done := make(chan outcome, 1)
	var once sync.Once
	finish := func(o outcome) (delivered bool) {
		once.Do(func() {
			done <- o
			delivered = true
		})
		return delivered
	}

	c.host.TakeScreenshot(platform.DefaultDisplay, platform.ScreenshotCallback{
		OnSuccess: func(r platform.ScreenshotResult) {
			if r.Buffer == nil {
				finish(outcome{code: platform.ScreenshotErrorInternal})
				return
			}
			if !finish(outcome{res: r, ok: true}) {
				// A late duplicate callback; nobody else will close it.
				r.Buffer.Close()
			}
		},
		OnFailure: func(code int) {
			finish(outcome{code: code})
		},
	})

	o := <-done
	return o.res, o.code, o.ok
}
