package boxy

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/ByteArena/box2d"
	"github.com/oliverbestmann/boxy/gm"
)

type BodyId uint32

type FixtureId uint32

// World owns the simulator and every body created through it.
// A World is not safe for concurrent use.
type World struct {
	config Config
	logger *slog.Logger

	sim            *box2d.B2World
	pixelsPerMeter float64

	paused bool
	clock  stepClock

	// greater than zero while the world is stepping, flushing or
	// running a query. Simulator mutations are deferred while busy.
	busy int

	nextBodyId    BodyId
	nextFixtureId FixtureId

	bodies map[BodyId]*Body

	// simulator mutations requested while the world was busy,
	// applied in order during the next PreStep
	commands []func()

	// bodies queued for removal during the next PreStep
	pending []*Body

	walls         []*Body
	tilemapBodies map[*TileLayer][]*Body

	onBodyAdded   []func(*Body)
	onBodyRemoved []func(*Body)

	stats StepStats
}

func NewWorld(config Config) *World {
	if config.PixelsPerMeter <= 0 {
		panic(fmt.Sprintf("pixels per meter must be positive, got %f", config.PixelsPerMeter))
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	w := &World{
		config:         config,
		logger:         config.Logger,
		pixelsPerMeter: config.PixelsPerMeter,
		bodies:         map[BodyId]*Body{},
		tilemapBodies:  map[*TileLayer][]*Body{},
	}

	w.sim = w.newSimulator()

	return w
}

func (w *World) newSimulator() *box2d.B2World {
	sim := box2d.MakeB2World(w.toSim(w.config.Gravity))
	sim.SetContactListener(contactListener{})
	sim.SetContactFilter(contactFilter{})
	return &sim
}

// Config returns the configuration the world was created with. Gravity reflects
// the current value.
func (w *World) Config() Config {
	return w.config
}

// Gravity returns the gravity in pixels per second squared.
func (w *World) Gravity() gm.Vec {
	return w.fromSim(w.sim.GetGravity())
}

func (w *World) SetGravity(gravity gm.Vec) {
	w.config.Gravity = gravity
	w.sim.SetGravity(w.toSim(gravity))
}

func (w *World) Pause() {
	w.paused = true
}

func (w *World) Resume() {
	w.paused = false
}

func (w *World) Paused() bool {
	return w.paused
}

// PreStep applies all simulator changes that were deferred during the previous
// step and destroys the bodies queued for removal. Changes requested while
// PreStep is running are deferred to the next frame.
func (w *World) PreStep() {
	if w.busy > 0 {
		panic("PreStep must not be called while the world is stepping or flushing")
	}

	if len(w.commands) == 0 && len(w.pending) == 0 {
		return
	}

	commands, pending := w.commands, w.pending
	w.commands, w.pending = nil, nil

	startTime := time.Now()
	defer func() { w.stats.Flush = w.stats.Flush.Add(time.Since(startTime)) }()

	w.exclusive(func() {
		for _, command := range commands {
			command()
		}

		for _, body := range pending {
			w.destroyBody(body)
		}
	})

	w.logger.Debug("Flushed deferred world changes",
		slog.Int("commands", len(commands)),
		slog.Int("removals", len(pending)),
	)
}

// Step advances the simulation. The timestep is the configured frame rate,
// or the elapsed time if Config.UseElapsedTime is set. Contact callbacks
// are invoked synchronously while stepping.
func (w *World) Step(elapsed time.Duration) {
	if w.busy > 0 {
		panic("Step must not be called while the world is stepping or flushing")
	}

	if w.paused {
		return
	}

	dt := w.config.FrameRate
	if w.config.UseElapsedTime {
		dt = elapsed
	}

	if dt <= 0 {
		return
	}

	startTime := time.Now()

	w.exclusive(func() {
		w.sim.Step(dt.Seconds(), w.config.VelocityIterations, w.config.PositionIterations)
	})

	w.stats.Step = w.stats.Step.Add(time.Since(startTime))

	// push the new transforms to the scene objects
	for _, body := range w.bodies {
		if body.object != nil && body.body != nil {
			body.object.SetTransform(body.Position(), body.Rotation())
		}
	}
}

// Update runs PreStep followed by Step.
func (w *World) Update(elapsed time.Duration) {
	w.PreStep()
	w.Step(elapsed)
}

func (w *World) exclusive(fn func()) {
	w.busy++
	defer func() { w.busy-- }()

	fn()
}

func (w *World) locked() bool {
	return w.busy > 0 || w.sim.IsLocked()
}

// run executes the command right away, or queues it for the
// next PreStep if the simulator must not be mutated right now.
func (w *World) run(command func()) {
	if w.locked() {
		w.commands = append(w.commands, command)
		return
	}

	command()
}

// CreateBody creates a new body at the given position in pixels. If the world is
// currently stepping, the simulator side of the body is created during the next PreStep.
func (w *World) CreateBody(position gm.Vec, motion Motion) *Body {
	w.nextBodyId++

	body := &Body{
		world:    w,
		id:       w.nextBodyId,
		motion:   motion,
		position: position,
	}

	w.bodies[body.id] = body
	w.run(body.materialize)

	w.logger.Debug("Body created",
		slog.Int("id", int(body.id)),
		slog.String("motion", motion.String()),
	)

	for _, observer := range w.onBodyAdded {
		observer(body)
	}

	return body
}

// CreateCircle creates a dynamic body with a single circle fixture.
func (w *World) CreateCircle(position gm.Vec, radius float64) *Body {
	body := w.CreateBody(position, Dynamic)
	body.AddCircle(radius, gm.Vec{})
	return body
}

// CreateRectangle creates a dynamic body with a single rectangle fixture
// centered on the body.
func (w *World) CreateRectangle(position gm.Vec, width, height float64) *Body {
	body := w.CreateBody(position, Dynamic)
	body.AddRectangle(width, height, gm.Vec{}, 0)
	return body
}

// CreatePolygon creates a dynamic body using the given polygon, relative to the body position.
func (w *World) CreatePolygon(position gm.Vec, vertices []gm.Vec) *Body {
	body := w.CreateBody(position, Dynamic)
	body.AddPolygon(vertices)
	return body
}

// RemoveBody removes the body from the world. If the world is currently
// stepping, the removal is deferred to the next PreStep.
func (w *World) RemoveBody(body *Body) {
	w.checkOwnership(body)

	if !body.Alive() {
		return
	}

	if w.locked() {
		w.queueRemoval(body)
		return
	}

	w.destroyBody(body)
}

// RemoveBodyNextStep queues the body for removal during the next PreStep.
func (w *World) RemoveBodyNextStep(body *Body) {
	w.checkOwnership(body)

	if !body.Alive() {
		return
	}

	w.queueRemoval(body)
}

func (w *World) checkOwnership(body *Body) {
	if body == nil {
		panic("body must not be nil")
	}

	if body.world != w {
		panic(fmt.Sprintf("body %d belongs to a different world", body.id))
	}
}

func (w *World) queueRemoval(body *Body) {
	body.pendingRemoval = true
	w.pending = append(w.pending, body)
}

func (w *World) destroyBody(body *Body) {
	if body.removed {
		return
	}

	w.exclusive(func() {
		if body.body != nil {
			// keep the last known transform around
			body.position = w.fromSim(body.body.GetPosition())
			body.rotation = gm.Rad(body.body.GetAngle())

			// fires the end contact callbacks of all touching contacts
			w.sim.DestroyBody(body.body)
			body.body = nil
		}
	})

	for _, fixture := range body.fixtures {
		fixture.fixture = nil
	}

	body.contact.clear()
	body.preSolve.clear()
	body.postSolve.clear()

	if body.object != nil {
		body.object.SetPhysicsBody(nil)
		body.object = nil
	}

	body.pendingRemoval = false
	body.removed = true

	delete(w.bodies, body.id)

	w.logger.Debug("Body removed", slog.Int("id", int(body.id)))

	for _, observer := range w.onBodyRemoved {
		observer(body)
	}
}

// Clear removes every body from the world and starts over with a fresh
// simulator. Gravity and settings are kept, ids are not reused.
// If the world is currently stepping, the bodies are removed during the next
// PreStep. Bodies created after calling Clear are kept and end up in the
// fresh simulator.
func (w *World) Clear() {
	bodies := w.Bodies()

	for _, body := range bodies {
		body.pendingRemoval = true
	}

	w.walls = nil
	clear(w.tilemapBodies)

	w.run(func() {
		for _, body := range bodies {
			w.destroyBody(body)
		}

		w.sim = w.newSimulator()
	})
}

// Body looks up a body by its id.
func (w *World) Body(id BodyId) (*Body, bool) {
	body, ok := w.bodies[id]
	return body, ok
}

// Bodies returns a snapshot of all bodies in the world, ordered by id.
func (w *World) Bodies() []*Body {
	ids := slices.Sorted(maps.Keys(w.bodies))

	bodies := make([]*Body, 0, len(ids))
	for _, id := range ids {
		bodies = append(bodies, w.bodies[id])
	}

	return bodies
}

func (w *World) BodyCount() int {
	return len(w.bodies)
}

// OnBodyAdded registers an observer that is called for every body created in this world.
func (w *World) OnBodyAdded(observer func(body *Body)) {
	w.onBodyAdded = append(w.onBodyAdded, observer)
}

// OnBodyRemoved registers an observer that is called after a body was removed from the world.
func (w *World) OnBodyRemoved(observer func(body *Body)) {
	w.onBodyRemoved = append(w.onBodyRemoved, observer)
}
