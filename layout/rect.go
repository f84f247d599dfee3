/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package layout

import (
	"fmt"
)

// Size is a canvas size in logical units.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Canonical is the broadcast canvas every table is expressed in.
var Canonical = Size{W: 1920, H: 1080}

// Rect is an axis aligned rectangle in canvas units, anchored top left.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

func (r Rect) Area() float64 {
	return r.W * r.H
}

func (r Rect) Right() float64 {
	return r.X + r.W
}

func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Overlaps reports whether the interiors of r and o intersect. Rects that
// only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Inside reports whether r lies entirely within c.
func (r Rect) Inside(c Size) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= c.W && r.Bottom() <= c.H
}

// Scale maps r from canvas c onto a target of size to.
func (r Rect) Scale(c, to Size) Rect {
	return Rect{
		X: r.X * to.W / c.W,
		Y: r.Y * to.H / c.H,
		W: r.W * to.W / c.W,
		H: r.H * to.H / c.H,
	}
}

// Lerp interpolates between a and b; t is clamped to [0, 1].
func Lerp(a, b Rect, t float64) Rect {
	t = min(max(t, 0), 1)
	mix := func(x, y float64) float64 { return x + (y-x)*t }
	return Rect{X: mix(a.X, b.X), Y: mix(a.Y, b.Y), W: mix(a.W, b.W), H: mix(a.H, b.H)}
}

func (r Rect) String() string {
	return fmt.Sprintf("%gx%g@%g,%g", r.W, r.H, r.X, r.Y)
}
