package boxy

import (
	"fmt"

	"github.com/ByteArena/box2d"
	"github.com/oliverbestmann/boxy/gm"
)

// The simulator works in meters, all public values are in pixels. Positions
// are stored negated on the simulator side, so converting between both spaces
// flips both axes and scales by the pixel ratio. Flipping both axes is a
// rotation by 180 degrees, angles therefore pass through unchanged.

// ToUnits converts a length in pixels into simulator units.
func (w *World) ToUnits(px float64) float64 {
	return px / w.pixelsPerMeter
}

// ToPixels converts a length in simulator units into pixels.
func (w *World) ToPixels(units float64) float64 {
	return units * w.pixelsPerMeter
}

func (w *World) PixelsPerMeter() float64 {
	return w.pixelsPerMeter
}

// SetPixelsPerMeter changes the conversion ratio. Bodies already in the world keep
// their simulator state and are reinterpreted using the new ratio.
func (w *World) SetPixelsPerMeter(ratio float64) {
	if ratio <= 0 {
		panic(fmt.Sprintf("pixels per meter must be positive, got %f", ratio))
	}

	w.pixelsPerMeter = ratio
}

// toSim converts a point or a vector with a length from pixel space into simulator space.
func (w *World) toSim(v gm.Vec) box2d.B2Vec2 {
	return box2d.B2Vec2{
		X: -v.X / w.pixelsPerMeter,
		Y: -v.Y / w.pixelsPerMeter,
	}
}

// fromSim converts a point or a vector with a length from simulator space into pixel space.
func (w *World) fromSim(v box2d.B2Vec2) gm.Vec {
	return gm.Vec{
		X: -v.X * w.pixelsPerMeter,
		Y: -v.Y * w.pixelsPerMeter,
	}
}

// fromSimDirection converts a unit vector from simulator space into pixel space.
func fromSimDirection(v box2d.B2Vec2) gm.Vec {
	return gm.Vec{X: -v.X, Y: -v.Y}
}
