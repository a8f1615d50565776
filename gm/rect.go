package gm

import (
	"fmt"
)

type Rect struct {
	Min, Max Vec
}

func RectWithPoints(a, b Vec) Rect {
	return Rect{
		Min: Vec{
			X: min(a.X, b.X),
			Y: min(a.Y, b.Y),
		},
		Max: Vec{
			X: max(a.X, b.X),
			Y: max(a.Y, b.Y),
		},
	}
}

func RectWithOriginAndSize(origin, size Vec) Rect {
	return RectWithPoints(origin, origin.Add(size))
}

func (r Rect) Center() Vec {
	return r.Min.Add(r.Max).Mul(0.5)
}

func (r Rect) Size() Vec {
	return r.Max.Sub(r.Min)
}

func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Min: Vec{X: min(r.Min.X, other.Min.X), Y: min(r.Min.Y, other.Min.Y)},
		Max: Vec{X: max(r.Max.X, other.Max.X), Y: max(r.Max.Y, other.Max.Y)},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(min=%s, max=%s)", r.Min, r.Max)
}
