package screenshot

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mj1618/uia-provider/internal/model"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelMode controls the text drawn on each annotated node.
type LabelMode int

const (
	// LabelCoords draws the "(x,y)" screen center of the node.
	LabelCoords LabelMode = iota
	// LabelIndex draws the "[i]" index of the node in the flattened hierarchy.
	LabelIndex
)

var (
	boxColor     = color.RGBA{R: 255, G: 0, B: 0, A: 100}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// Annotate draws a box and label for each node on a copy of img. screen is
// the on-screen area img covers; node bounds are mapped from screen space to
// image pixels, which accounts for any capture scale.
func Annotate(img image.Image, nodes []model.FlatNode, screen model.Rect, mode LabelMode) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	scaleX, scaleY := 1.0, 1.0
	if w := screen.Width(); w > 0 {
		scaleX = float64(b.Dx()) / float64(w)
	}
	if h := screen.Height(); h > 0 {
		scaleY = float64(b.Dy()) / float64(h)
	}

	for _, n := range nodes {
		r, err := model.ParseRect(n.Bounds)
		if err != nil || r.Empty() {
			continue
		}
		x1 := int(float64(r.Left-screen.Left) * scaleX)
		y1 := int(float64(r.Top-screen.Top) * scaleY)
		x2 := int(float64(r.Right-screen.Left) * scaleX)
		y2 := int(float64(r.Bottom-screen.Top) * scaleY)
		drawRectangle(rgba, x1, y1, x2, y2, boxColor)

		var label string
		switch mode {
		case LabelIndex:
			label = fmt.Sprintf("[%d]", n.Index)
		default:
			cx, cy := r.Center()
			label = fmt.Sprintf("(%d,%d)", cx, cy)
		}
		drawTextWithOutline(rgba, label, (x1+x2)/2, (y1+y2)/2)
	}
	return rgba
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawTextWithOutline centers text on (x, y) with a one pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	// basicfont.Face7x13 glyphs are 7 pixels wide, 13 high.
	offsetX := x - len(text)*7/2
	offsetY := y - 13/2

	stamp := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(offsetX+dx, offsetY+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				stamp(dx, dy, outlineColor)
			}
		}
	}
	stamp(0, 0, textColor)
}
