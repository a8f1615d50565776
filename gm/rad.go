package gm

import "math"

type Rad float64

func (r Rad) Degrees() float64 {
	return float64(r) * (180 / math.Pi)
}

// Normalized returns the angle normalized to the range [-π, π)
func (r Rad) Normalized() Rad {
	angle := float64(r)

	angle = math.Mod(angle+math.Pi, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}

	return Rad(angle - math.Pi)
}

func DegToRad(deg float64) Rad {
	return Rad(math.Pi / 180 * deg)
}

// WrapDegrees wraps an angle given in degrees into the range [-180, 180)
func WrapDegrees(deg float64) float64 {
	return DegToRad(deg).Normalized().Degrees()
}
