//go:build linux

package x11

import (
	"testing"

	"github.com/mj1618/uia-provider/internal/platform"
)

func TestPointAlong(t *testing.T) {
	pts := []platform.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	tests := []struct {
		t    float64
		want platform.Point
	}{
		{0, platform.Point{X: 0, Y: 0}},
		{0.25, platform.Point{X: 50, Y: 0}},
		{0.5, platform.Point{X: 100, Y: 0}},
		{0.75, platform.Point{X: 100, Y: 50}},
		{1, platform.Point{X: 100, Y: 100}},
		{2, platform.Point{X: 100, Y: 100}},
	}
	for _, tt := range tests {
		got := pointAlong(pts, tt.t)
		if got != tt.want {
			t.Errorf("pointAlong(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestPointAlongSinglePoint(t *testing.T) {
	pts := []platform.Point{{X: 7, Y: 9}}
	if got := pointAlong(pts, 0.5); got != pts[0] {
		t.Errorf("pointAlong = %v, want %v", got, pts[0])
	}
}

func TestGlobalChordsCoverAllActions(t *testing.T) {
	for a := platform.GlobalActionBack; a <= platform.GlobalActionScreenshot; a++ {
		if len(globalChords[a]) == 0 {
			t.Errorf("no key chord for global action %d", a)
		}
	}
}
