package boxy

import (
	"log/slog"
	"time"

	"github.com/oliverbestmann/boxy/gm"
)

// Config holds the settings of a World. Use DefaultConfig to get a config
// with sensible defaults and modify it before passing it to NewWorld.
type Config struct {
	// Number of pixels that make up one meter in the simulation.
	PixelsPerMeter float64

	// Gravity in pixels per second squared. Positive Y points down.
	Gravity gm.Vec

	// Material defaults of newly created fixtures
	Friction    float64
	Restitution float64
	Density     float64

	// FrameRate is the fixed timestep used by World.Step, unless UseElapsedTime is set.
	FrameRate time.Duration

	// UseElapsedTime makes World.Step advance the simulation by the
	// elapsed time passed in by the caller.
	UseElapsedTime bool

	// MaxSteps limits the number of fixed steps World.Advance runs per call.
	// Zero means no limit.
	MaxSteps int

	VelocityIterations int
	PositionIterations int

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		PixelsPerMeter:     50,
		Friction:           0.2,
		Restitution:        0,
		Density:            1,
		FrameRate:          time.Second / 60,
		MaxSteps:           5,
		VelocityIterations: 8,
		PositionIterations: 3,
	}
}
