package screenshot

import (
	"image"
	"image/color"
	"testing"

	"github.com/mj1618/uia-provider/internal/model"
)

func TestAnnotate(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	nodes := []model.FlatNode{
		{Index: 0, Bounds: "[10,10][60,60]"},
		{Index: 1, Bounds: "garbage"},
		{Index: 2, Bounds: "[5,5][5,5]"},
	}
	out := Annotate(src, nodes, model.Rect{Right: 100, Bottom: 100}, LabelCoords)

	if got := out.RGBAAt(10, 55); got != boxColor {
		t.Errorf("left edge = %v, want box color", got)
	}
	if got := out.RGBAAt(80, 80); got != (color.RGBA{}) {
		t.Errorf("outside box = %v, want untouched", got)
	}
	if got := src.RGBAAt(10, 30); got != (color.RGBA{}) {
		t.Error("source image was modified")
	}
}

func TestAnnotate_ScalesToImage(t *testing.T) {
	// A half-size capture of a 200x200 screen.
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	nodes := []model.FlatNode{{Index: 0, Bounds: "[100,100][200,200]"}}
	out := Annotate(src, nodes, model.Rect{Right: 200, Bottom: 200}, LabelIndex)

	if got := out.RGBAAt(50, 70); got != boxColor {
		t.Errorf("scaled left edge = %v, want box color", got)
	}
}
