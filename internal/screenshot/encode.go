package screenshot

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mj1618/uia-provider/internal/platform"
	"golang.org/x/image/draw"
)

// DefaultJPEGQuality is used for jpeg output unless configured otherwise.
const DefaultJPEGQuality = 90

// Format is an output image encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
)

func (f Format) String() string {
	if f == FormatJPEG {
		return "jpeg"
	}
	return "png"
}

// ParseFormat maps a format name to a Format. Unknown names map to PNG.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpg", "jpeg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}

// Decode copies a raw frame into an RGBA image, optionally scaled down by
// scale (0 < scale <= 1).
func Decode(buf *platform.HardwareBuffer, scale float64) (*image.RGBA, error) {
	bpp := buf.Format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("unsupported pixel format %v", buf.Format)
	}
	if buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("empty frame %dx%d", buf.Width, buf.Height)
	}
	if buf.Stride < buf.Width*bpp || len(buf.Pix) < buf.Stride*(buf.Height-1)+buf.Width*bpp {
		return nil, fmt.Errorf("frame %dx%d stride %d: short pixel buffer (%d bytes)", buf.Width, buf.Height, buf.Stride, len(buf.Pix))
	}

	img := image.NewRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	for y := 0; y < buf.Height; y++ {
		src := buf.Pix[y*buf.Stride : y*buf.Stride+buf.Width*bpp]
		dst := img.Pix[y*img.Stride : y*img.Stride+buf.Width*4]
		switch buf.Format {
		case platform.PixelFormatRGBA8888:
			copy(dst, src)
		case platform.PixelFormatBGRX8888:
			for x := 0; x < buf.Width; x++ {
				i := x * 4
				dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i+2], src[i+1], src[i], 0xff
			}
		}
	}

	if scale <= 0 || scale >= 1 {
		return img, nil
	}
	w := max(1, int(float64(buf.Width)*scale))
	h := max(1, int(float64(buf.Height)*scale))
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled, nil
}

// WriteFile encodes img to path, creating parent directories as needed.
// A failed encode may leave a partial file behind.
func WriteFile(path string, img image.Image, format Format, jpegQuality int) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format, jpegQuality); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes img in the given format. PNG is lossless.
func Encode(w io.Writer, img image.Image, format Format, jpegQuality int) error {
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	}
	return nil
}
