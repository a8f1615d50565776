package boxy

import (
	"log/slog"
	"testing"
	"time"

	"github.com/oliverbestmann/boxy/gm"
	"github.com/stretchr/testify/require"
)

func newTestWorld() *World {
	config := DefaultConfig()
	config.Logger = slog.New(slog.DiscardHandler)
	return NewWorld(config)
}

func TestNewWorldRejectsInvalidRatio(t *testing.T) {
	config := DefaultConfig()
	config.PixelsPerMeter = 0

	require.Panics(t, func() { NewWorld(config) })
}

func TestUnitsRoundTrip(t *testing.T) {
	w := newTestWorld()

	for _, value := range []float64{0, 1, -1, 0.001, 123.456, -98765.4321, 1e9} {
		require.InDelta(t, value, w.ToUnits(w.ToPixels(value)), 1e-9*max(1, value))
		require.InDelta(t, value, w.ToPixels(w.ToUnits(value)), 1e-9*max(1, value))
	}

	for _, p := range []gm.Vec{{}, {X: 12.5, Y: -7}, {X: -1000, Y: 4000.25}} {
		back := w.fromSim(w.toSim(p))
		require.InDelta(t, p.X, back.X, 1e-9)
		require.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestPositionsAreNegatedInSimulator(t *testing.T) {
	w := newTestWorld()

	body := w.CreateBody(gm.Vec{X: 100, Y: 50}, Static)

	simPosition := body.body.GetPosition()
	require.InDelta(t, -2.0, simPosition.X, 1e-12)
	require.InDelta(t, -1.0, simPosition.Y, 1e-12)

	require.InDelta(t, 100, body.Position().X, 1e-9)
	require.InDelta(t, 50, body.Position().Y, 1e-9)
}

func TestBodyIdsAreNeverReused(t *testing.T) {
	w := newTestWorld()

	a := w.CreateBody(gm.Vec{}, Static)
	b := w.CreateBody(gm.Vec{}, Static)
	require.Equal(t, BodyId(1), a.Id())
	require.Equal(t, BodyId(2), b.Id())

	w.RemoveBody(b)

	c := w.CreateBody(gm.Vec{}, Static)
	require.Equal(t, BodyId(3), c.Id())

	w.Clear()

	d := w.CreateBody(gm.Vec{}, Static)
	require.Equal(t, BodyId(4), d.Id())
}

func TestRemoveBodyOutsideStep(t *testing.T) {
	w := newTestWorld()

	var removed []*Body
	w.OnBodyRemoved(func(body *Body) { removed = append(removed, body) })

	body := w.CreateCircle(gm.Vec{X: 10, Y: 20}, 5)
	require.Equal(t, 1, w.BodyCount())

	w.RemoveBody(body)

	require.True(t, body.Removed())
	require.False(t, body.Alive())
	require.Equal(t, 0, w.BodyCount())
	require.Equal(t, []*Body{body}, removed)

	// last known position is kept
	require.InDelta(t, 10, body.Position().X, 1e-9)
	require.InDelta(t, 20, body.Position().Y, 1e-9)

	// removing twice is fine
	w.RemoveBody(body)
	require.Len(t, removed, 1)

	_, ok := w.Body(body.Id())
	require.False(t, ok)
}

func TestRemoveBodyNextStep(t *testing.T) {
	w := newTestWorld()

	body := w.CreateCircle(gm.Vec{}, 5)
	body.Destroy()

	require.False(t, body.Alive())
	require.False(t, body.Removed())
	require.Equal(t, 1, w.BodyCount())

	// mutations are ignored while the removal is pending
	body.SetPosition(gm.Vec{X: 100})
	require.Nil(t, body.AddCircle(10, gm.Vec{}))
	require.InDelta(t, 0, body.Position().X, 1e-9)

	w.PreStep()

	require.True(t, body.Removed())
	require.Equal(t, 0, w.BodyCount())
}

func TestRemoveBodyFromOtherWorldPanics(t *testing.T) {
	a := newTestWorld()
	b := newTestWorld()

	body := a.CreateBody(gm.Vec{}, Static)
	require.Panics(t, func() { b.RemoveBody(body) })
}

func TestObservers(t *testing.T) {
	w := newTestWorld()

	var added []BodyId
	w.OnBodyAdded(func(body *Body) { added = append(added, body.Id()) })

	w.CreateBody(gm.Vec{}, Static)
	w.CreateBody(gm.Vec{}, Dynamic)

	require.Equal(t, []BodyId{1, 2}, added)
}

func TestBodiesSnapshotIsSorted(t *testing.T) {
	w := newTestWorld()

	for range 10 {
		w.CreateBody(gm.Vec{}, Static)
	}

	bodies := w.Bodies()
	require.Len(t, bodies, 10)

	for idx, body := range bodies {
		require.Equal(t, BodyId(idx+1), body.Id())
	}
}

func TestGravityPullsDown(t *testing.T) {
	w := newTestWorld()
	w.SetGravity(gm.Vec{Y: 500})

	require.InDelta(t, 500, w.Gravity().Y, 1e-9)

	body := w.CreateCircle(gm.Vec{X: 10, Y: 10}, 5)

	for range 30 {
		w.Update(0)
	}

	require.Greater(t, body.Position().Y, 10.0)
	require.InDelta(t, 10, body.Position().X, 1e-6)
	require.Greater(t, body.Velocity().Y, 0.0)
}

func TestPauseSkipsStep(t *testing.T) {
	w := newTestWorld()
	w.SetGravity(gm.Vec{Y: 500})

	body := w.CreateCircle(gm.Vec{}, 5)

	w.Pause()
	require.True(t, w.Paused())

	for range 10 {
		w.Update(0)
	}

	require.InDelta(t, 0, body.Position().Y, 1e-9)

	w.Resume()
	w.Update(0)

	require.Greater(t, body.Position().Y, 0.0)
}

func TestElapsedTimeStep(t *testing.T) {
	config := DefaultConfig()
	config.Logger = slog.New(slog.DiscardHandler)
	config.UseElapsedTime = true

	w := NewWorld(config)

	body := w.CreateCircle(gm.Vec{}, 5)
	body.SetVelocity(gm.Vec{X: 100})

	// nothing happens without elapsed time
	w.Update(0)
	require.InDelta(t, 0, body.Position().X, 1e-9)

	w.Update(100_000_000)
	require.InDelta(t, 10, body.Position().X, 1e-6)
}

func TestClear(t *testing.T) {
	w := newTestWorld()
	w.SetGravity(gm.Vec{Y: 100})

	bodies := []*Body{
		w.CreateCircle(gm.Vec{}, 5),
		w.CreateRectangle(gm.Vec{X: 50}, 10, 10),
	}

	w.SetBounds(gm.RectWithOriginAndSize(gm.Vec{}, gm.Vec{X: 100, Y: 100}), AllSides)

	w.Clear()

	require.Equal(t, 0, w.BodyCount())
	require.Empty(t, w.Walls())

	for _, body := range bodies {
		require.True(t, body.Removed())
	}

	require.InDelta(t, 100, w.Gravity().Y, 1e-9)
	require.Equal(t, 0, w.sim.GetBodyCount())
}

func TestSetBounds(t *testing.T) {
	w := newTestWorld()

	bounds := gm.RectWithOriginAndSize(gm.Vec{}, gm.Vec{X: 200, Y: 100})

	walls := w.SetBounds(bounds, AllSides)
	require.Len(t, walls, 4)

	for _, wall := range walls {
		require.True(t, wall.IsStatic())
		require.Len(t, wall.Fixtures(), 1)
		require.Equal(t, WorldBoundsCategory, wall.Fixtures()[0].Category())
	}

	// replaces previous walls
	walls2 := w.SetBounds(bounds, SideLeft|SideBottom)
	require.Len(t, walls2, 2)
	require.Equal(t, 2, w.BodyCount())

	for _, wall := range walls {
		require.True(t, wall.Removed())
	}
}

func TestBodiesStayInsideBounds(t *testing.T) {
	w := newTestWorld()
	w.SetGravity(gm.Vec{Y: 1000})
	w.SetBounds(gm.RectWithOriginAndSize(gm.Vec{}, gm.Vec{X: 200, Y: 200}), AllSides)

	inside := w.CreateCircle(gm.Vec{X: 100, Y: 100}, 5)

	escaping := w.CreateCircle(gm.Vec{X: 50, Y: 100}, 5)
	escaping.SetCollideWorldBounds(false)

	for range 120 {
		w.Update(0)
	}

	require.Less(t, inside.Position().Y, 200.0)
	require.Greater(t, escaping.Position().Y, 300.0)
}

type testObject struct {
	bounds   gm.Rect
	body     *Body
	position gm.Vec
	rotation gm.Rad
	children []Object
}

func (o *testObject) PhysicsBody() *Body {
	return o.body
}

func (o *testObject) SetPhysicsBody(body *Body) {
	o.body = body
}

func (o *testObject) Bounds() gm.Rect {
	return o.bounds
}

func (o *testObject) SetTransform(position gm.Vec, rotation gm.Rad) {
	o.position = position
	o.rotation = rotation
}

func (o *testObject) Children() []Object {
	return o.children
}

func TestEnableObjects(t *testing.T) {
	w := newTestWorld()
	w.SetGravity(gm.Vec{Y: 100})

	child := &testObject{bounds: gm.RectWithOriginAndSize(gm.Vec{X: 100}, gm.Vec{X: 10, Y: 10})}
	parent := &testObject{
		bounds:   gm.RectWithOriginAndSize(gm.Vec{}, gm.Vec{X: 20, Y: 10}),
		children: []Object{child},
	}

	w.Enable(parent)

	require.NotNil(t, parent.body)
	require.NotNil(t, child.body)
	require.Equal(t, Object(parent), parent.body.Object())

	// body is centered on the bounds
	require.InDelta(t, 10, parent.body.Position().X, 1e-9)
	require.InDelta(t, 5, parent.body.Position().Y, 1e-9)

	// enabling twice does not create another body
	w.Enable(parent)
	require.Equal(t, 2, w.BodyCount())

	w.Update(0)

	require.Equal(t, parent.body.Position(), parent.position)
	require.Greater(t, child.position.Y, 5.0)

	// removing the body clears the back reference
	body := parent.body
	w.RemoveBody(body)
	require.Nil(t, parent.body)
	require.Nil(t, body.Object())
}

func TestResolveBodyRef(t *testing.T) {
	w := newTestWorld()

	object := &testObject{bounds: gm.RectWithOriginAndSize(gm.Vec{}, gm.Vec{X: 10, Y: 10})}
	w.Enable(object)

	require.Same(t, object.body, resolveBodyRef(RefOf(object)))
	require.Same(t, object.body, resolveBodyRef(object.body))

	require.Panics(t, func() { resolveBodyRef(nil) })
	require.Panics(t, func() { resolveBodyRef(RefOf(&testObject{})) })
}

func TestAdvanceRunsFixedSteps(t *testing.T) {
	w := newTestWorld()
	w.CreateCircle(gm.Vec{}, 5)

	require.Equal(t, 3, w.Advance(50*time.Millisecond))
	require.Equal(t, 0, w.Advance(10*time.Millisecond))
	require.Equal(t, 1, w.Advance(10*time.Millisecond))

	require.Equal(t, 4, w.Stats().Step.Count)

	// a long frame is capped
	require.Equal(t, 5, w.Advance(time.Second))

	w.Pause()
	require.Equal(t, 0, w.Advance(time.Second))
}

func TestTimings(t *testing.T) {
	var timings Timings

	timings = timings.Add(10 * time.Millisecond)
	require.Equal(t, 10*time.Millisecond, timings.MovingAverage)

	timings = timings.Add(30 * time.Millisecond)
	timings = timings.Add(20 * time.Millisecond)

	require.Equal(t, 3, timings.Count)
	require.Equal(t, 10*time.Millisecond, timings.Min)
	require.Equal(t, 30*time.Millisecond, timings.Max)
	require.Equal(t, 20*time.Millisecond, timings.Latest)
}
