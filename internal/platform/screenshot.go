package platform

import (
	"fmt"
	"sync/atomic"
)

// Screenshot failure codes reported through ScreenshotCallback.OnFailure.
const (
	ScreenshotErrorInternal         = 1
	ScreenshotErrorNoAccess         = 2
	ScreenshotErrorIntervalTooShort = 3
	ScreenshotErrorInvalidDisplay   = 4
)

// PixelFormat describes the byte layout of a HardwareBuffer.
type PixelFormat int

const (
	PixelFormatRGBA8888 PixelFormat = iota + 1
	PixelFormatBGRX8888
)

// BytesPerPixel returns the pixel size for f.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGBA8888, PixelFormatBGRX8888:
		return 4
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGBA8888:
		return "RGBA_8888"
	case PixelFormatBGRX8888:
		return "BGRX_8888"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// HardwareBuffer is a raw frame owned by the host. It must be closed once
// the pixels have been consumed.
type HardwareBuffer struct {
	Width  int
	Height int
	Stride int
	Format PixelFormat
	Pix    []byte

	release func()
	closed  atomic.Bool
}

// NewHardwareBuffer wraps host-owned pixels. release, if non-nil, runs on the
// first Close.
func NewHardwareBuffer(width, height, stride int, format PixelFormat, pix []byte, release func()) *HardwareBuffer {
	return &HardwareBuffer{
		Width:   width,
		Height:  height,
		Stride:  stride,
		Format:  format,
		Pix:     pix,
		release: release,
	}
}

// Close returns the buffer to the host. Subsequent calls are no-ops.
func (b *HardwareBuffer) Close() {
	if b == nil || !b.closed.CompareAndSwap(false, true) {
		return
	}
	if b.release != nil {
		b.release()
	}
}

// Closed reports whether Close has been called.
func (b *HardwareBuffer) Closed() bool { return b.closed.Load() }

// ScreenshotResult carries a captured frame.
type ScreenshotResult struct {
	Buffer    *HardwareBuffer
	Timestamp int64 // host clock, nanoseconds
}

// ScreenshotCallback receives the asynchronous outcome of TakeScreenshot.
type ScreenshotCallback struct {
	OnSuccess func(ScreenshotResult)
	OnFailure func(errorCode int)
}
