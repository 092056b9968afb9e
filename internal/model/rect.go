package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect is a screen-space rectangle in pixels. Right and Bottom are exclusive.
type Rect struct {
	Left   int `yaml:"left"   json:"left"`
	Top    int `yaml:"top"    json:"top"`
	Right  int `yaml:"right"  json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
}

// ShortString returns the canonical "[left,top][right,bottom]" form.
// It doubles as the node identifier across remote calls.
func (r Rect) ShortString() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}

func (r Rect) String() string { return r.ShortString() }

// Width returns the horizontal extent.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

// Center returns the midpoint, rounded down.
func (r Rect) Center() (int, int) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// ParseRect parses the "[left,top][right,bottom]" short form.
func ParseRect(s string) (Rect, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
	}
	parts := strings.Split(trimmed[1:len(trimmed)-1], "][")
	if len(parts) != 2 {
		return Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
	}
	vals := make([]int, 0, 4)
	for _, p := range parts {
		xy := strings.Split(p, ",")
		if len(xy) != 2 {
			return Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
		}
		for _, v := range xy {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return Rect{}, fmt.Errorf("invalid bounds %q: %w", s, err)
			}
			vals = append(vals, n)
		}
	}
	return Rect{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}, nil
}
