package boxy

import (
	"fmt"

	"github.com/ByteArena/box2d"
)

// Motion describes how a body is moved by the simulation.
type Motion uint8

const (
	// Static bodies never move and have infinite mass.
	Static Motion = iota

	// Kinematic bodies move by their velocity but are not affected by forces.
	Kinematic

	// Dynamic bodies are fully simulated.
	Dynamic

	// Bullet bodies are dynamic bodies with continuous collision
	// detection against other dynamic bodies.
	Bullet
)

func (m Motion) String() string {
	switch m {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	case Bullet:
		return "bullet"
	default:
		return fmt.Sprintf("Motion(%d)", uint8(m))
	}
}

func (m Motion) simType() uint8 {
	switch m {
	case Static:
		return box2d.B2BodyType.B2_staticBody
	case Kinematic:
		return box2d.B2BodyType.B2_kinematicBody
	case Dynamic, Bullet:
		return box2d.B2BodyType.B2_dynamicBody
	default:
		panic(fmt.Sprintf("unknown motion %d", uint8(m)))
	}
}
