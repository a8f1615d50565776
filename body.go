package boxy

import (
	"github.com/ByteArena/box2d"
	"github.com/oliverbestmann/boxy/gm"
)

// Body is a rigid object in a World. Bodies are created by World.CreateBody and
// stay valid after removal, but all mutating operations turn into no-ops once
// a body was queued for removal.
type Body struct {
	world *World
	id    BodyId

	// nil until the body was created in the simulator and after it was removed
	body *box2d.B2Body

	motion   Motion
	fixtures []*Fixture
	object   Object

	contact   axisTables[ContactEvent]
	preSolve  axisTables[PreSolveEvent]
	postSolve axisTables[PostSolveEvent]

	// transform while the simulator body is not available
	position gm.Vec
	rotation gm.Rad

	killed         bool
	pendingRemoval bool
	removed        bool
}

func (b *Body) Id() BodyId {
	return b.id
}

func (b *Body) World() *World {
	return b.world
}

// Object returns the scene object this body is bound to, if any.
func (b *Body) Object() Object {
	return b.object
}

// Alive reports whether the body is part of the world and not queued for removal.
func (b *Body) Alive() bool {
	return !b.removed && !b.pendingRemoval
}

func (b *Body) Removed() bool {
	return b.removed
}

// Destroy queues the body for removal during the next PreStep.
func (b *Body) Destroy() {
	b.world.RemoveBodyNextStep(b)
}

func (b *Body) materialize() {
	if b.removed || b.body != nil {
		return
	}

	def := box2d.MakeB2BodyDef()
	def.Type = b.motion.simType()
	def.Bullet = b.motion == Bullet
	def.Position = b.world.toSim(b.position)
	def.Angle = float64(b.rotation)
	def.UserData = b

	b.body = b.world.sim.CreateBody(&def)
}

// mutate applies fn to the simulator body as soon as the world allows it.
// Does nothing if the body is queued for removal.
func (b *Body) mutate(fn func(body *box2d.B2Body)) {
	if !b.Alive() {
		return
	}

	b.world.run(func() {
		if b.body != nil {
			fn(b.body)
		}
	})
}

func (b *Body) Motion() Motion {
	return b.motion
}

func (b *Body) SetMotion(motion Motion) {
	if !b.Alive() {
		return
	}

	b.motion = motion

	b.mutate(func(body *box2d.B2Body) {
		body.SetType(motion.simType())
		body.SetBullet(motion == Bullet)
	})
}

func (b *Body) IsStatic() bool {
	return b.motion == Static
}

func (b *Body) IsBullet() bool {
	return b.motion == Bullet
}

// SetBullet toggles continuous collision detection of a dynamic body.
// It has no effect on static and kinematic bodies.
func (b *Body) SetBullet(bullet bool) {
	switch {
	case bullet && b.motion == Dynamic:
		b.SetMotion(Bullet)
	case !bullet && b.motion == Bullet:
		b.SetMotion(Dynamic)
	}
}

// Position returns the position of the body origin in pixels.
func (b *Body) Position() gm.Vec {
	if b.body == nil {
		return b.position
	}

	return b.world.fromSim(b.body.GetPosition())
}

func (b *Body) SetPosition(position gm.Vec) {
	if b.body == nil {
		b.position = position
	}

	b.mutate(func(body *box2d.B2Body) {
		body.SetTransform(b.world.toSim(position), body.GetAngle())
		body.SetAwake(true)
	})
}

// Rotation returns the rotation of the body in radians.
func (b *Body) Rotation() gm.Rad {
	if b.body == nil {
		return b.rotation
	}

	return gm.Rad(b.body.GetAngle())
}

func (b *Body) SetRotation(rotation gm.Rad) {
	if b.body == nil {
		b.rotation = rotation
	}

	b.mutate(func(body *box2d.B2Body) {
		body.SetTransform(body.GetPosition(), float64(rotation))
		body.SetAwake(true)
	})
}

// Angle returns the rotation of the body in degrees, wrapped into [-180, 180).
func (b *Body) Angle() float64 {
	return gm.WrapDegrees(b.Rotation().Degrees())
}

func (b *Body) SetAngle(degrees float64) {
	b.SetRotation(gm.DegToRad(degrees))
}

func (b *Body) SetTransform(position gm.Vec, rotation gm.Rad) {
	if b.body == nil {
		b.position = position
		b.rotation = rotation
	}

	b.mutate(func(body *box2d.B2Body) {
		body.SetTransform(b.world.toSim(position), float64(rotation))
		body.SetAwake(true)
	})
}

// Velocity returns the linear velocity in pixels per second.
func (b *Body) Velocity() gm.Vec {
	if b.body == nil {
		return gm.Vec{}
	}

	return b.world.fromSim(b.body.GetLinearVelocity())
}

func (b *Body) SetVelocity(velocity gm.Vec) {
	b.mutate(func(body *box2d.B2Body) {
		body.SetLinearVelocity(b.world.toSim(velocity))
	})
}

// AngularVelocity returns the angular velocity in radians per second.
func (b *Body) AngularVelocity() float64 {
	if b.body == nil {
		return 0
	}

	return b.body.GetAngularVelocity()
}

func (b *Body) SetAngularVelocity(velocity float64) {
	b.mutate(func(body *box2d.B2Body) {
		body.SetAngularVelocity(velocity)
	})
}

func (b *Body) LinearDamping() float64 {
	if b.body == nil {
		return 0
	}

	return b.body.GetLinearDamping()
}

func (b *Body) SetLinearDamping(damping float64) {
	b.mutate(func(body *box2d.B2Body) {
		body.SetLinearDamping(damping)
	})
}

func (b *Body) AngularDamping() float64 {
	if b.body == nil {
		return 0
	}

	return b.body.GetAngularDamping()
}

func (b *Body) SetAngularDamping(damping float64) {
	b.mutate(func(body *box2d.B2Body) {
		body.SetAngularDamping(damping)
	})
}

func (b *Body) GravityScale() float64 {
	if b.body == nil {
		return 1
	}

	return b.body.GetGravityScale()
}

func (b *Body) SetGravityScale(scale float64) {
	b.mutate(func(body *box2d.B2Body) {
		body.SetGravityScale(scale)
	})
}

func (b *Body) FixedRotation() bool {
	return b.body != nil && b.body.IsFixedRotation()
}

func (b *Body) SetFixedRotation(fixed bool) {
	b.mutate(func(body *box2d.B2Body) {
		body.SetFixedRotation(fixed)
	})
}

// ApplyForce applies a force in pixel space at a point relative to the body origin.
func (b *Body) ApplyForce(force, localPoint gm.Vec) {
	b.mutate(func(body *box2d.B2Body) {
		point := body.GetWorldPoint(b.world.toSim(localPoint))
		body.ApplyForce(b.world.toSim(force), point, true)
	})
}

func (b *Body) ApplyForceToCenter(force gm.Vec) {
	b.mutate(func(body *box2d.B2Body) {
		body.ApplyForceToCenter(b.world.toSim(force), true)
	})
}

// ApplyImpulse applies an impulse in pixel space at a point relative to the body origin.
func (b *Body) ApplyImpulse(impulse, localPoint gm.Vec) {
	b.mutate(func(body *box2d.B2Body) {
		point := body.GetWorldPoint(b.world.toSim(localPoint))
		body.ApplyLinearImpulse(b.world.toSim(impulse), point, true)
	})
}

func (b *Body) SetZeroVelocity() {
	b.SetVelocity(gm.Vec{})
}

func (b *Body) SetZeroRotation() {
	b.SetAngularVelocity(0)
}

func (b *Body) SetZeroDamping() {
	b.SetLinearDamping(0)
	b.SetAngularDamping(0)
}

// forward returns the direction the body is facing, in simulator space.
// An unrotated body faces up on screen.
func forward(body *box2d.B2Body) box2d.B2Vec2 {
	return body.GetWorldVector(box2d.MakeB2Vec2(0, 1))
}

// Thrust applies a force along the direction the body is facing.
func (b *Body) Thrust(power float64) {
	b.mutate(func(body *box2d.B2Body) {
		force := box2d.B2Vec2MulScalar(power/b.world.pixelsPerMeter, forward(body))
		body.ApplyForceToCenter(force, true)
	})
}

// Reverse applies a force against the direction the body is facing.
func (b *Body) Reverse(power float64) {
	b.Thrust(-power)
}

// MoveForward sets the velocity to the given speed in pixels per second in
// the direction the body is facing.
func (b *Body) MoveForward(speed float64) {
	b.mutate(func(body *box2d.B2Body) {
		velocity := box2d.B2Vec2MulScalar(speed/b.world.pixelsPerMeter, forward(body))
		body.SetLinearVelocity(velocity)
	})
}

func (b *Body) MoveBackward(speed float64) {
	b.MoveForward(-speed)
}

// MoveLeft sets the horizontal velocity to move left at the given speed,
// the vertical velocity is kept.
func (b *Body) MoveLeft(speed float64) {
	b.updateVelocity(func(v *gm.Vec) { v.X = -speed })
}

func (b *Body) MoveRight(speed float64) {
	b.updateVelocity(func(v *gm.Vec) { v.X = speed })
}

func (b *Body) MoveUp(speed float64) {
	b.updateVelocity(func(v *gm.Vec) { v.Y = -speed })
}

func (b *Body) MoveDown(speed float64) {
	b.updateVelocity(func(v *gm.Vec) { v.Y = speed })
}

func (b *Body) updateVelocity(update func(v *gm.Vec)) {
	b.mutate(func(body *box2d.B2Body) {
		velocity := b.world.fromSim(body.GetLinearVelocity())
		update(&velocity)
		body.SetLinearVelocity(b.world.toSim(velocity))
	})
}

// RotateLeft rotates the body counter-clockwise on screen with the
// given speed in radians per second.
func (b *Body) RotateLeft(speed float64) {
	b.SetAngularVelocity(-speed)
}

// RotateRight rotates the body clockwise on screen with the
// given speed in radians per second.
func (b *Body) RotateRight(speed float64) {
	b.SetAngularVelocity(speed)
}

// ToWorldPoint converts a point relative to the body into world space.
func (b *Body) ToWorldPoint(local gm.Vec) gm.Vec {
	if b.body == nil {
		return b.position.Add(local.Rotated(b.rotation))
	}

	return b.world.fromSim(b.body.GetWorldPoint(b.world.toSim(local)))
}

// ToLocalPoint converts a point in world space into a point relative to the body.
func (b *Body) ToLocalPoint(world gm.Vec) gm.Vec {
	if b.body == nil {
		return world.Sub(b.position).Rotated(-b.rotation)
	}

	return b.world.fromSim(b.body.GetLocalPoint(b.world.toSim(world)))
}

// ToWorldVector rotates a vector from body space into world space.
func (b *Body) ToWorldVector(local gm.Vec) gm.Vec {
	if b.body == nil {
		return local.Rotated(b.rotation)
	}

	return b.world.fromSim(b.body.GetWorldVector(b.world.toSim(local)))
}

// ToLocalVector rotates a vector from world space into body space.
func (b *Body) ToLocalVector(world gm.Vec) gm.Vec {
	if b.body == nil {
		return world.Rotated(-b.rotation)
	}

	return b.world.fromSim(b.body.GetLocalVector(b.world.toSim(world)))
}

// ContainsPoint tests if the point in world space lies within any
// of the body's fixtures.
func (b *Body) ContainsPoint(point gm.Vec) bool {
	for _, fixture := range b.fixtures {
		if fixture.ContainsPoint(point) {
			return true
		}
	}

	return false
}

// Kill deactivates the body. It stays in the world but takes no part in the
// simulation until it is brought back using Reset.
func (b *Body) Kill() {
	if !b.Alive() {
		return
	}

	b.killed = true

	b.mutate(func(body *box2d.B2Body) {
		body.SetActive(false)
	})
}

// Reset activates a killed body and moves it to the given position.
func (b *Body) Reset(position gm.Vec) {
	if !b.Alive() {
		return
	}

	b.killed = false

	b.mutate(func(body *box2d.B2Body) {
		body.SetActive(true)
		body.SetTransform(b.world.toSim(position), body.GetAngle())
		body.SetLinearVelocity(box2d.B2Vec2{})
		body.SetAngularVelocity(0)
		body.SetAwake(true)
	})
}

func (b *Body) Killed() bool {
	return b.killed
}

// Mass returns the mass of the body in kilograms. Static and kinematic bodies have a mass of zero.
func (b *Body) Mass() float64 {
	if b.body == nil {
		return 0
	}

	return b.body.GetMass()
}

// SetMass rescales the density of all fixtures so that the mass of the body
// matches the given value. A mass of zero turns the body static, any other mass
// turns a static or kinematic body into a dynamic one.
func (b *Body) SetMass(mass float64) {
	if !b.Alive() {
		return
	}

	if mass <= 0 {
		b.SetMotion(Static)
		return
	}

	if b.motion == Static || b.motion == Kinematic {
		b.SetMotion(Dynamic)
	}

	b.mutate(func(body *box2d.B2Body) {
		b.applyMass(body, mass)
	})
}

func (b *Body) applyMass(body *box2d.B2Body, mass float64) {
	var current, area float64

	for _, fixture := range b.fixtures {
		if fixture.fixture == nil {
			continue
		}

		var md box2d.B2MassData
		fixture.fixture.GetMassData(&md)
		current += md.Mass

		// mass at unit density is the area of the shape
		fixture.fixture.GetShape().ComputeMass(&md, 1)
		area += md.Mass
	}

	switch {
	case current > 0:
		scale := mass / current
		for _, fixture := range b.fixtures {
			if fixture.fixture != nil {
				fixture.density *= scale
				fixture.fixture.SetDensity(fixture.density)
			}
		}

	case area > 0:
		density := mass / area
		for _, fixture := range b.fixtures {
			if fixture.fixture != nil {
				fixture.density = density
				fixture.fixture.SetDensity(density)
			}
		}

	default:
		// only shapes without area, e.g. edges and chains
		body.SetMassData(&box2d.B2MassData{Mass: mass, Center: body.GetLocalCenter()})
		return
	}

	body.ResetMassData()
}

// Fixtures returns a copy of the fixtures attached to this body.
func (b *Body) Fixtures() []*Fixture {
	fixtures := make([]*Fixture, len(b.fixtures))
	copy(fixtures, b.fixtures)
	return fixtures
}

func (b *Body) SetFriction(friction float64) {
	for _, fixture := range b.fixtures {
		fixture.SetFriction(friction)
	}
}

func (b *Body) SetRestitution(restitution float64) {
	for _, fixture := range b.fixtures {
		fixture.SetRestitution(restitution)
	}
}

func (b *Body) SetDensity(density float64) {
	for _, fixture := range b.fixtures {
		fixture.SetDensity(density)
	}
}

func (b *Body) SetSensor(sensor bool) {
	for _, fixture := range b.fixtures {
		fixture.SetSensor(sensor)
	}
}

func (b *Body) SetCollisionCategory(category uint32) {
	for _, fixture := range b.fixtures {
		fixture.SetCategory(category)
	}
}

func (b *Body) SetCollisionMask(mask uint32) {
	for _, fixture := range b.fixtures {
		fixture.SetMask(mask)
	}
}

// SetCollideWorldBounds toggles collisions with the walls created by World.SetBounds.
func (b *Body) SetCollideWorldBounds(collide bool) {
	for _, fixture := range b.fixtures {
		mask := fixture.mask
		if collide {
			mask |= WorldBoundsCategory
		} else {
			mask &^= WorldBoundsCategory
		}

		fixture.SetMask(mask)
	}
}
