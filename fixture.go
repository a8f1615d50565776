package boxy

import (
	"fmt"

	"github.com/ByteArena/box2d"
	"github.com/oliverbestmann/boxy/gm"
)

const (
	// DefaultCategory is the collision category of new fixtures.
	DefaultCategory uint32 = 0x0001

	// DefaultMask lets new fixtures collide with every category.
	DefaultMask uint32 = 0xFFFFFFFF

	// WorldBoundsCategory is the category of the walls created by World.SetBounds.
	// It must not be used by other fixtures.
	WorldBoundsCategory uint32 = 0x8000
)

type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeRectangle
	ShapeEdge
	ShapeChain
	ShapeLoop
	ShapePolygon
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeRectangle:
		return "rectangle"
	case ShapeEdge:
		return "edge"
	case ShapeChain:
		return "chain"
	case ShapeLoop:
		return "loop"
	case ShapePolygon:
		return "polygon"
	default:
		return fmt.Sprintf("ShapeKind(%d)", uint8(k))
	}
}

// Fixture is a single convex shape attached to a body, together with
// its material and collision filter.
type Fixture struct {
	id   FixtureId
	body *Body
	kind ShapeKind

	// the shape in simulator units relative to the body origin
	shape box2d.B2ShapeInterface

	// nil until attached to the simulator body
	fixture *box2d.B2Fixture

	category uint32
	mask     uint32

	friction    float64
	restitution float64
	density     float64
	sensor      bool

	removed bool
}

func (f *Fixture) Id() FixtureId {
	return f.id
}

func (f *Fixture) Body() *Body {
	return f.body
}

func (f *Fixture) Kind() ShapeKind {
	return f.kind
}

// Removed reports whether the fixture was removed from its body.
func (f *Fixture) Removed() bool {
	return f.removed
}

// apply runs fn against the simulator fixture as soon as the world allows it.
func (f *Fixture) apply(fn func(fixture *box2d.B2Fixture)) {
	if f.removed || !f.body.Alive() {
		return
	}

	f.body.world.run(func() {
		if f.fixture != nil {
			fn(f.fixture)
		}
	})
}

func (f *Fixture) Category() uint32 {
	return f.category
}

func (f *Fixture) SetCategory(category uint32) {
	if f.removed || !f.body.Alive() {
		return
	}

	f.category = category
	f.apply((*box2d.B2Fixture).Refilter)
}

func (f *Fixture) Mask() uint32 {
	return f.mask
}

func (f *Fixture) SetMask(mask uint32) {
	if f.removed || !f.body.Alive() {
		return
	}

	f.mask = mask
	f.apply((*box2d.B2Fixture).Refilter)
}

// collides implements the filter rule: both fixtures must accept the category of the other one.
func (f *Fixture) collides(other *Fixture) bool {
	return f.category&other.mask != 0 && other.category&f.mask != 0
}

func (f *Fixture) Friction() float64 {
	return f.friction
}

func (f *Fixture) SetFriction(friction float64) {
	if f.removed || !f.body.Alive() {
		return
	}

	f.friction = friction
	f.apply(func(fixture *box2d.B2Fixture) {
		fixture.SetFriction(friction)
	})
}

func (f *Fixture) Restitution() float64 {
	return f.restitution
}

func (f *Fixture) SetRestitution(restitution float64) {
	if f.removed || !f.body.Alive() {
		return
	}

	f.restitution = restitution
	f.apply(func(fixture *box2d.B2Fixture) {
		fixture.SetRestitution(restitution)
	})
}

func (f *Fixture) Density() float64 {
	return f.density
}

// SetDensity changes the density and recomputes the mass of the body.
func (f *Fixture) SetDensity(density float64) {
	if f.removed || !f.body.Alive() {
		return
	}

	if density < 0 {
		panic(fmt.Sprintf("density must not be negative, got %f", density))
	}

	f.density = density
	f.apply(func(fixture *box2d.B2Fixture) {
		fixture.SetDensity(density)
		fixture.GetBody().ResetMassData()
	})
}

func (f *Fixture) IsSensor() bool {
	return f.sensor
}

// SetSensor turns the fixture into a sensor. Sensors report contacts
// but do not take part in collision response.
func (f *Fixture) SetSensor(sensor bool) {
	if f.removed || !f.body.Alive() {
		return
	}

	f.sensor = sensor
	f.apply(func(fixture *box2d.B2Fixture) {
		fixture.SetSensor(sensor)
	})
}

// ContainsPoint tests if the point in world space lies within the fixture.
// Always false for edges and chains.
func (f *Fixture) ContainsPoint(point gm.Vec) bool {
	if f.fixture == nil {
		return false
	}

	return f.fixture.TestPoint(f.body.world.toSim(point))
}

// Bounds returns the bounding box of the fixture in world space, as used by
// the broad phase. Returns an empty rectangle if the fixture is not attached.
func (f *Fixture) Bounds() gm.Rect {
	if f.fixture == nil || f.body.body == nil || !f.body.body.IsActive() {
		return gm.Rect{}
	}

	w := f.body.world

	var bounds gm.Rect
	for child := range f.fixture.GetShape().GetChildCount() {
		aabb := f.fixture.GetAABB(child)
		childBounds := gm.RectWithPoints(w.fromSim(aabb.LowerBound), w.fromSim(aabb.UpperBound))

		if child == 0 {
			bounds = childBounds
		} else {
			bounds = bounds.Union(childBounds)
		}
	}

	return bounds
}

func (b *Body) newFixture(kind ShapeKind, shape box2d.B2ShapeInterface) *Fixture {
	w := b.world
	w.nextFixtureId++

	fixture := &Fixture{
		id:          w.nextFixtureId,
		body:        b,
		kind:        kind,
		shape:       shape,
		category:    DefaultCategory,
		mask:        DefaultMask,
		friction:    w.config.Friction,
		restitution: w.config.Restitution,
		density:     w.config.Density,
	}

	b.fixtures = append(b.fixtures, fixture)

	w.run(func() {
		b.attach(fixture)
	})

	return fixture
}

func (b *Body) attach(fixture *Fixture) {
	if b.body == nil || fixture.removed || fixture.fixture != nil {
		return
	}

	def := box2d.MakeB2FixtureDef()
	def.Shape = fixture.shape
	def.UserData = fixture
	def.Friction = fixture.friction
	def.Restitution = fixture.restitution
	def.Density = fixture.density
	def.IsSensor = fixture.sensor

	fixture.fixture = b.body.CreateFixtureFromDef(&def)
}
