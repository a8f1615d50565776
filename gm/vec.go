package gm

import (
	"fmt"
	"math"
)

type Vec struct {
	X, Y float64
}

func (v Vec) Add(other Vec) Vec {
	v.X += other.X
	v.Y += other.Y
	return v
}

func (v Vec) Sub(other Vec) Vec {
	v.X -= other.X
	v.Y -= other.Y
	return v
}

func (v Vec) Mul(scalar float64) Vec {
	v.X *= scalar
	v.Y *= scalar
	return v
}

// Neg returns the vector pointing into the opposite direction.
func (v Vec) Neg() Vec {
	return Vec{X: -v.X, Y: -v.Y}
}

func (v Vec) Dot(other Vec) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3d cross product of both vectors.
func (v Vec) Cross(other Vec) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Perp returns the vector rotated by 90° counter-clockwise.
func (v Vec) Perp() Vec {
	return Vec{X: -v.Y, Y: v.X}
}

func (v Vec) LengthSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// DistanceSqr returns the squared distance between both points.
func (v Vec) DistanceSqr(other Vec) float64 {
	return other.Sub(v).LengthSqr()
}

func (v Vec) Rotated(angle Rad) Vec {
	sin, cos := math.Sincos(float64(angle))
	return Vec{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

func (v Vec) String() string {
	return fmt.Sprintf("vec(x=%v, y=%v)", v.X, v.Y)
}
