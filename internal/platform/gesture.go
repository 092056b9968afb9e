package platform

import (
	"errors"
	"fmt"
	"time"
)

// Limits enforced by hosts on gesture descriptions.
const (
	MaxStrokeCount     = 20
	MaxGestureDuration = 60 * time.Second
)

// Point is a screen coordinate.
type Point struct {
	X, Y float64
}

// Path is a sequence of points traced by a single pointer.
type Path struct {
	points []Point
}

// MoveTo starts a new path at (x, y), discarding any previous points.
func (p *Path) MoveTo(x, y float64) *Path {
	p.points = []Point{{X: x, Y: y}}
	return p
}

// LineTo extends the path to (x, y).
func (p *Path) LineTo(x, y float64) *Path {
	p.points = append(p.points, Point{X: x, Y: y})
	return p
}

// Points returns a copy of the path's points.
func (p Path) Points() []Point {
	return append([]Point(nil), p.points...)
}

// Stroke is one continuous pointer movement.
type Stroke struct {
	Path       Path
	StartDelay time.Duration
	Duration   time.Duration
}

// NewStroke validates and returns a stroke.
func NewStroke(path Path, startDelay, duration time.Duration) (Stroke, error) {
	if len(path.points) == 0 {
		return Stroke{}, errors.New("stroke path is empty")
	}
	if startDelay < 0 {
		return Stroke{}, fmt.Errorf("stroke start delay %v is negative", startDelay)
	}
	if duration <= 0 {
		return Stroke{}, fmt.Errorf("stroke duration %v must be positive", duration)
	}
	for _, pt := range path.points {
		if pt.X < 0 || pt.Y < 0 {
			return Stroke{}, fmt.Errorf("stroke point (%v, %v) is off screen", pt.X, pt.Y)
		}
	}
	return Stroke{Path: path, StartDelay: startDelay, Duration: duration}, nil
}

// End returns the offset at which the stroke finishes.
func (s Stroke) End() time.Duration { return s.StartDelay + s.Duration }

// GestureDescription is an ordered set of strokes dispatched together.
type GestureDescription struct {
	Strokes []Stroke
}

// NewGesture builds a gesture from strokes.
func NewGesture(strokes ...Stroke) (GestureDescription, error) {
	g := GestureDescription{Strokes: strokes}
	if err := g.Validate(); err != nil {
		return GestureDescription{}, err
	}
	return g, nil
}

// Validate checks the stroke count and total duration limits.
func (g GestureDescription) Validate() error {
	if len(g.Strokes) == 0 {
		return errors.New("gesture has no strokes")
	}
	if len(g.Strokes) > MaxStrokeCount {
		return fmt.Errorf("gesture has %d strokes, max %d", len(g.Strokes), MaxStrokeCount)
	}
	if d := g.Duration(); d > MaxGestureDuration {
		return fmt.Errorf("gesture duration %v exceeds %v", d, MaxGestureDuration)
	}
	return nil
}

// Duration returns the time from dispatch until the last stroke ends.
func (g GestureDescription) Duration() time.Duration {
	var d time.Duration
	for _, s := range g.Strokes {
		if e := s.End(); e > d {
			d = e
		}
	}
	return d
}

// GestureCallback receives the asynchronous outcome of a dispatched gesture.
// Either field may be nil.
type GestureCallback struct {
	OnCompleted func(GestureDescription)
	OnCancelled func(GestureDescription)
}

// Completed invokes OnCompleted if set.
func (cb *GestureCallback) Completed(g GestureDescription) {
	if cb != nil && cb.OnCompleted != nil {
		cb.OnCompleted(g)
	}
}

// Cancelled invokes OnCancelled if set.
func (cb *GestureCallback) Cancelled(g GestureDescription) {
	if cb != nil && cb.OnCancelled != nil {
		cb.OnCancelled(g)
	}
}
