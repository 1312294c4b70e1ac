package domain

import "math"

// Vector is a 2-D point or offset.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }

// Size is a width and height.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect is an axis aligned box.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// RectAt builds the box at pos with size s.
func RectAt(pos Vector, s Size) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: s.Width, Height: s.Height}
}

func (r Rect) TopLeft() Vector { return Vector{r.X, r.Y} }
func (r Rect) Size() Size      { return Size{r.Width, r.Height} }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Union returns the smallest box containing both.
func (r Rect) Union(o Rect) Rect {
	x, y := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.Right(), o.Right()) - x,
		Height: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// Inflate grows the box by d on every side. Negative d shrinks it.
func (r Rect) Inflate(d float64) Rect {
	return Rect{
		X:      r.X - d,
		Y:      r.Y - d,
		Width:  math.Max(0, r.Width+2*d),
		Height: math.Max(0, r.Height+2*d),
	}
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}
