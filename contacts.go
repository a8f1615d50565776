package boxy

import (
	"github.com/ByteArena/box2d"
	"github.com/oliverbestmann/boxy/gm"
)

// contactFilter decides which fixture pairs generate contacts, based on
// the 32 bit category and mask of both fixtures.
type contactFilter struct{}

func (contactFilter) ShouldCollide(fixtureA, fixtureB *box2d.B2Fixture) bool {
	a, okA := fixtureA.GetUserData().(*Fixture)
	b, okB := fixtureB.GetUserData().(*Fixture)
	if !okA || !okB {
		return true
	}

	return a.collides(b)
}

// contactListener receives contact events from the simulator and
// dispatches them to the callbacks registered on both bodies.
type contactListener struct{}

// participants resolves both fixtures of a contact. Returns false if
// either side is not backed by a Body of this package.
func participants(contact box2d.B2ContactInterface) (*Fixture, *Fixture, bool) {
	simA := contact.GetFixtureA()
	simB := contact.GetFixtureB()

	if _, ok := simA.GetBody().GetUserData().(*Body); !ok {
		return nil, nil, false
	}

	if _, ok := simB.GetBody().GetUserData().(*Body); !ok {
		return nil, nil, false
	}

	fixtureA, okA := simA.GetUserData().(*Fixture)
	fixtureB, okB := simB.GetUserData().(*Fixture)

	return fixtureA, fixtureB, okA && okB
}

func (l contactListener) BeginContact(contact box2d.B2ContactInterface) {
	l.dispatchContact(contact, true)
}

func (l contactListener) EndContact(contact box2d.B2ContactInterface) {
	l.dispatchContact(contact, false)
}

func (l contactListener) dispatchContact(contact box2d.B2ContactInterface, begin bool) {
	fixtureA, fixtureB, ok := participants(contact)
	if !ok {
		return
	}

	bodyA, bodyB := fixtureA.body, fixtureB.body

	eventA := ContactEvent{
		Self:         bodyA,
		Other:        bodyB,
		SelfFixture:  fixtureA,
		OtherFixture: fixtureB,
		Begin:        begin,
		Contact:      contact,
	}

	eventB := ContactEvent{
		Self:         bodyB,
		Other:        bodyA,
		SelfFixture:  fixtureB,
		OtherFixture: fixtureA,
		Begin:        begin,
		Contact:      contact,
	}

	bodyA.contact.byBody.call(bodyB.id, eventA)
	bodyB.contact.byBody.call(bodyA.id, eventB)

	// the fixture of the other body first, then the body's own fixture
	bodyA.contact.byFixture.call(fixtureB.id, eventA)
	bodyB.contact.byFixture.call(fixtureA.id, eventB)
	bodyA.contact.byFixture.call(fixtureA.id, eventA)
	bodyB.contact.byFixture.call(fixtureB.id, eventB)

	categories := fixtureA.category | fixtureB.category
	bodyA.contact.callCategories(categories, eventA)
	bodyB.contact.callCategories(categories, eventB)
}

func (l contactListener) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {
	fixtureA, fixtureB, ok := participants(contact)
	if !ok {
		return
	}

	eventA := PreSolveEvent{
		Self:         fixtureA.body,
		Other:        fixtureB.body,
		SelfFixture:  fixtureA,
		OtherFixture: fixtureB,
		Contact:      contact,
		OldManifold:  oldManifold,
	}

	eventB := PreSolveEvent{
		Self:         fixtureB.body,
		Other:        fixtureA.body,
		SelfFixture:  fixtureB,
		OtherFixture: fixtureA,
		Contact:      contact,
		OldManifold:  oldManifold,
	}

	dispatchPeers(fixtureA, fixtureB, &fixtureA.body.preSolve, &fixtureB.body.preSolve, eventA, eventB)
}

func (l contactListener) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
	fixtureA, fixtureB, ok := participants(contact)
	if !ok {
		return
	}

	eventA := PostSolveEvent{
		Self:         fixtureA.body,
		Other:        fixtureB.body,
		SelfFixture:  fixtureA,
		OtherFixture: fixtureB,
		Contact:      contact,
		Impulse:      impulse,
	}

	eventB := PostSolveEvent{
		Self:         fixtureB.body,
		Other:        fixtureA.body,
		SelfFixture:  fixtureB,
		OtherFixture: fixtureA,
		Contact:      contact,
		Impulse:      impulse,
	}

	dispatchPeers(fixtureA, fixtureB, &fixtureA.body.postSolve, &fixtureB.body.postSolve, eventA, eventB)
}

// dispatchPeers invokes the handlers keyed on the other side of the contact:
// peer body, peer fixture and peer category.
func dispatchPeers[E any](fixtureA, fixtureB *Fixture, tableA, tableB *axisTables[E], eventA, eventB E) {
	tableA.byBody.call(fixtureB.body.id, eventA)
	tableB.byBody.call(fixtureA.body.id, eventB)

	tableA.byFixture.call(fixtureB.id, eventA)
	tableB.byFixture.call(fixtureA.id, eventB)

	tableA.callCategories(fixtureB.category, eventA)
	tableB.callCategories(fixtureA.category, eventB)
}

// ContactPoints returns the contact normal, pointing from fixture A to fixture B,
// and the contact points of a touching contact in pixel space.
func (w *World) ContactPoints(contact box2d.B2ContactInterface) (gm.Vec, []gm.Vec) {
	manifold := box2d.MakeB2WorldManifold()
	contact.GetWorldManifold(&manifold)

	count := contact.GetManifold().PointCount

	points := make([]gm.Vec, 0, count)
	for idx := range count {
		points = append(points, w.fromSim(manifold.Points[idx]))
	}

	return fromSimDirection(manifold.Normal), points
}
