package boxy

import (
	"math"
	"testing"

	"github.com/oliverbestmann/boxy/gm"
	"github.com/stretchr/testify/require"
)

func TestInvalidShapesAreRejected(t *testing.T) {
	w := newTestWorld()
	body := w.CreateBody(gm.Vec{}, Dynamic)

	require.Nil(t, body.AddCircle(0, gm.Vec{}))
	require.Nil(t, body.AddCircle(-5, gm.Vec{}))
	require.Nil(t, body.AddRectangle(0, 10, gm.Vec{}, 0))
	require.Nil(t, body.AddEdge(gm.Vec{X: 1}, gm.Vec{X: 1}))
	require.Nil(t, body.AddChain([]gm.Vec{{X: 1}, {X: 1}}))
	require.Nil(t, body.AddLoop([]gm.Vec{{X: 0}, {X: 10}}))
	require.Nil(t, body.AddPolygon([]gm.Vec{{X: 0}, {X: 10}}))
	require.Nil(t, body.AddPolygon([]gm.Vec{{X: 0}, {X: 10}, {X: 20}}))

	// self intersecting
	require.Nil(t, body.AddPolygon([]gm.Vec{{X: 0, Y: 0}, {X: 20, Y: 20}, {X: 20, Y: 0}, {X: 0, Y: 10}}))

	require.Empty(t, body.Fixtures())
}

func TestShapeKinds(t *testing.T) {
	w := newTestWorld()
	body := w.CreateBody(gm.Vec{}, Static)

	require.Equal(t, ShapeCircle, body.AddCircle(5, gm.Vec{}).Kind())
	require.Equal(t, ShapeRectangle, body.AddRectangle(5, 5, gm.Vec{}, 0).Kind())
	require.Equal(t, ShapeEdge, body.AddEdge(gm.Vec{}, gm.Vec{X: 10}).Kind())
	require.Equal(t, ShapeChain, body.AddChain([]gm.Vec{{X: 0}, {X: 10}, {X: 10, Y: 10}}).Kind())
	require.Equal(t, ShapeLoop, body.AddLoop([]gm.Vec{{X: 0}, {X: 10}, {X: 10, Y: 10}}).Kind())

	require.Len(t, body.Fixtures(), 5)

	for _, fixture := range body.Fixtures() {
		require.NotNil(t, fixture.fixture)
		require.Same(t, body, fixture.Body())
	}
}

func TestSetLoopReplacesFixtures(t *testing.T) {
	w := newTestWorld()
	body := w.CreateBody(gm.Vec{}, Static)

	previous := body.AddCircle(5, gm.Vec{})
	body.AddRectangle(10, 10, gm.Vec{X: 20}, 0)

	loop := body.SetLoop([]gm.Vec{{X: 0}, {X: 100}, {X: 100, Y: 100}, {X: 0, Y: 100}})
	require.NotNil(t, loop)
	require.Equal(t, ShapeLoop, loop.Kind())
	require.NotNil(t, loop.fixture)

	require.Equal(t, []*Fixture{loop}, body.Fixtures())
	require.Nil(t, previous.fixture)
	require.Equal(t, 1, body.body.M_fixtureCount)

	// invalid input still clears the body
	require.Nil(t, body.SetLoop([]gm.Vec{{X: 0}, {X: 10}}))
	require.Empty(t, body.Fixtures())
	require.Zero(t, body.body.M_fixtureCount)
}

func TestConcavePolygonIsDecomposed(t *testing.T) {
	w := newTestWorld()
	body := w.CreateBody(gm.Vec{}, Dynamic)

	lShape := []gm.Vec{
		{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 25},
		{X: 25, Y: 25}, {X: 25, Y: 50}, {X: 0, Y: 50},
	}

	fixtures := body.AddPolygon(lShape)
	require.Len(t, fixtures, 2)

	for _, fixture := range fixtures {
		require.Equal(t, ShapePolygon, fixture.Kind())
	}

	// three quarters of a square meter at density one
	require.InDelta(t, 0.75, body.Mass(), 1e-6)

	require.True(t, body.ContainsPoint(gm.Vec{X: 10, Y: 40}))
	require.True(t, body.ContainsPoint(gm.Vec{X: 40, Y: 10}))
	require.False(t, body.ContainsPoint(gm.Vec{X: 40, Y: 40}))
}

func TestFixtureIdsAreUnique(t *testing.T) {
	w := newTestWorld()

	seen := map[FixtureId]bool{}
	for idx := range 5 {
		body := w.CreateBody(gm.Vec{X: float64(idx) * 50}, Static)

		for _, fixture := range []*Fixture{body.AddCircle(5, gm.Vec{}), body.AddRectangle(5, 5, gm.Vec{}, 0)} {
			require.False(t, seen[fixture.Id()])
			seen[fixture.Id()] = true
		}
	}
}

func TestFixtureDefaults(t *testing.T) {
	config := DefaultConfig()
	config.Friction = 0.7
	config.Restitution = 0.3
	config.Density = 2
	w := NewWorld(config)

	fixture := w.CreateBody(gm.Vec{}, Dynamic).AddCircle(5, gm.Vec{})

	require.Equal(t, 0.7, fixture.Friction())
	require.Equal(t, 0.3, fixture.Restitution())
	require.Equal(t, 2.0, fixture.Density())
	require.Equal(t, DefaultCategory, fixture.Category())
	require.Equal(t, DefaultMask, fixture.Mask())
	require.False(t, fixture.IsSensor())

	require.Equal(t, 0.7, fixture.fixture.GetFriction())
	require.Equal(t, 0.3, fixture.fixture.GetRestitution())

	require.Panics(t, func() { fixture.SetDensity(-1) })
}

func TestSetMass(t *testing.T) {
	w := newTestWorld()

	body := w.CreateRectangle(gm.Vec{}, 50, 50)
	require.InDelta(t, 1, body.Mass(), 1e-6)

	body.SetMass(5)
	require.InDelta(t, 5, body.Mass(), 1e-6)
	require.InDelta(t, 5, body.Fixtures()[0].Density(), 1e-6)

	body.SetMass(0)
	require.True(t, body.IsStatic())
	require.Zero(t, body.Mass())

	// a static body becomes dynamic again
	body.SetMass(2)
	require.Equal(t, Dynamic, body.Motion())
	require.InDelta(t, 2, body.Mass(), 1e-6)
}

func TestSetMassWithoutArea(t *testing.T) {
	w := newTestWorld()

	body := w.CreateBody(gm.Vec{}, Dynamic)
	body.AddEdge(gm.Vec{}, gm.Vec{X: 50})

	body.SetMass(3)
	require.InDelta(t, 3, body.Mass(), 1e-6)
}

func TestRemoveFixtureUpdatesMass(t *testing.T) {
	w := newTestWorld()

	body := w.CreateBody(gm.Vec{}, Dynamic)
	body.AddRectangle(50, 50, gm.Vec{}, 0)
	extra := body.AddRectangle(50, 50, gm.Vec{X: 100}, 0)

	require.InDelta(t, 2, body.Mass(), 1e-6)

	body.RemoveFixture(extra)
	require.True(t, extra.Removed())
	require.Nil(t, extra.fixture)
	require.Len(t, body.Fixtures(), 1)
	require.InDelta(t, 1, body.Mass(), 1e-6)

	// removing twice does nothing
	body.RemoveFixture(extra)
	require.Len(t, body.Fixtures(), 1)

	body.SetCircle(10, gm.Vec{})
	require.Len(t, body.Fixtures(), 1)
	require.Equal(t, ShapeCircle, body.Fixtures()[0].Kind())
}

func TestMotion(t *testing.T) {
	w := newTestWorld()

	body := w.CreateCircle(gm.Vec{}, 5)
	require.Equal(t, Dynamic, body.Motion())
	require.False(t, body.IsBullet())

	body.SetBullet(true)
	require.True(t, body.IsBullet())
	require.True(t, body.body.IsBullet())

	body.SetMotion(Kinematic)
	require.Equal(t, Kinematic, body.Motion())
	require.False(t, body.body.IsBullet())

	// bullets must be dynamic
	body.SetBullet(true)
	require.Equal(t, Kinematic, body.Motion())

	require.Equal(t, "kinematic", Kinematic.String())
}

func TestKillAndReset(t *testing.T) {
	w := newTestWorld()
	w.SetGravity(gm.Vec{Y: 100})

	body := w.CreateCircle(gm.Vec{X: 10, Y: 10}, 5)
	body.Kill()

	require.True(t, body.Killed())
	require.False(t, body.body.IsActive())

	stepFrames(w, 10)
	require.InDelta(t, 10, body.Position().X, 1e-9)
	require.InDelta(t, 10, body.Position().Y, 1e-9)

	// killed bodies are invisible to queries
	require.Empty(t, w.BodiesAtPoint(gm.Vec{X: 10, Y: 10}, false, false))

	body.Reset(gm.Vec{X: 50, Y: 50})
	require.False(t, body.Killed())
	require.True(t, body.body.IsActive())
	require.InDelta(t, 50, body.Position().X, 1e-9)
	require.InDelta(t, 50, body.Position().Y, 1e-9)

	stepFrames(w, 10)
	require.Greater(t, body.Position().Y, 50.0)
}

func TestCoordinateConversions(t *testing.T) {
	w := newTestWorld()

	body := w.CreateBody(gm.Vec{X: 100, Y: 100}, Dynamic)
	body.SetRotation(math.Pi / 2)

	world := body.ToWorldPoint(gm.Vec{X: 10})
	require.InDelta(t, 100, world.X, 1e-9)
	require.InDelta(t, 110, world.Y, 1e-9)

	local := body.ToLocalPoint(world)
	require.InDelta(t, 10, local.X, 1e-9)
	require.InDelta(t, 0, local.Y, 1e-9)

	vec := body.ToWorldVector(gm.Vec{X: 1})
	require.InDelta(t, 0, vec.X, 1e-9)
	require.InDelta(t, 1, vec.Y, 1e-9)

	vec = body.ToLocalVector(vec)
	require.InDelta(t, 1, vec.X, 1e-9)
	require.InDelta(t, 0, vec.Y, 1e-9)
}

func TestAngleIsWrapped(t *testing.T) {
	w := newTestWorld()

	body := w.CreateBody(gm.Vec{}, Dynamic)

	body.SetAngle(90)
	require.InDelta(t, 90, body.Angle(), 1e-9)
	require.InDelta(t, math.Pi/2, float64(body.Rotation()), 1e-9)

	body.SetAngle(270)
	require.InDelta(t, -90, body.Angle(), 1e-9)
}

func TestMovement(t *testing.T) {
	w := newTestWorld()

	body := w.CreateCircle(gm.Vec{}, 5)

	body.MoveRight(100)
	body.MoveDown(50)
	require.InDelta(t, 100, body.Velocity().X, 1e-9)
	require.InDelta(t, 50, body.Velocity().Y, 1e-9)

	body.MoveLeft(20)
	require.InDelta(t, -20, body.Velocity().X, 1e-9)
	require.InDelta(t, 50, body.Velocity().Y, 1e-9)

	body.SetZeroVelocity()
	require.Equal(t, gm.Vec{}, body.Velocity())

	// an unrotated body faces up
	body.MoveForward(100)
	require.InDelta(t, 0, body.Velocity().X, 1e-9)
	require.InDelta(t, -100, body.Velocity().Y, 1e-9)

	// a quarter turn clockwise faces right
	body.SetRotation(math.Pi / 2)
	body.MoveForward(100)
	require.InDelta(t, 100, body.Velocity().X, 1e-9)
	require.InDelta(t, 0, body.Velocity().Y, 1e-9)

	body.MoveBackward(100)
	require.InDelta(t, -100, body.Velocity().X, 1e-9)

	body.RotateRight(2)
	require.InDelta(t, 2, body.AngularVelocity(), 1e-9)

	body.RotateLeft(2)
	require.InDelta(t, -2, body.AngularVelocity(), 1e-9)

	body.SetZeroRotation()
	require.Zero(t, body.AngularVelocity())
}

func TestThrustAcceleratesForward(t *testing.T) {
	w := newTestWorld()

	body := w.CreateCircle(gm.Vec{}, 5)
	body.SetZeroDamping()

	for range 10 {
		body.Thrust(100)
		w.Update(0)
	}

	require.InDelta(t, 0, body.Velocity().X, 1e-6)
	require.Less(t, body.Velocity().Y, 0.0)
}

func TestMutationsAreDeferredWhileStepping(t *testing.T) {
	w := newTestWorld()

	ground := w.CreateBody(gm.Vec{}, Static)
	ground.AddRectangle(40, 40, gm.Vec{}, 0)

	body := w.CreateCircle(gm.Vec{X: 10}, 10)
	body.Fixtures()[0].SetSensor(true)

	var sensorDuringCallback bool

	body.SetBodyContactCallback(ground, func(event ContactEvent) {
		if !event.Begin {
			return
		}

		body.SetPosition(gm.Vec{X: 500})
		body.Fixtures()[0].SetSensor(false)

		sensorDuringCallback = body.Fixtures()[0].fixture.IsSensor()
	})

	w.Update(0)

	require.True(t, sensorDuringCallback)

	// the local state is updated immediately, the simulator follows on the next PreStep
	require.False(t, body.Fixtures()[0].IsSensor())
	require.True(t, body.Fixtures()[0].fixture.IsSensor())
	require.Less(t, body.Position().X, 100.0)

	w.PreStep()

	require.False(t, body.Fixtures()[0].fixture.IsSensor())
	require.InDelta(t, 500, body.Position().X, 1e-9)
}
