package boxy

import (
	"maps"
	"slices"

	"github.com/ByteArena/box2d"
)

// ContactEvent is passed to contact callbacks when two fixtures start or stop touching.
// Self is the body the callback was registered on.
type ContactEvent struct {
	Self, Other               *Body
	SelfFixture, OtherFixture *Fixture

	// Begin is true if the fixtures started touching, false if they stopped touching.
	Begin bool

	Contact box2d.B2ContactInterface
}

// PreSolveEvent is passed to pre-solve callbacks once per step while two fixtures touch,
// before the solver runs. Disable the contact using Contact.SetEnabled.
type PreSolveEvent struct {
	Self, Other               *Body
	SelfFixture, OtherFixture *Fixture

	Contact     box2d.B2ContactInterface
	OldManifold box2d.B2Manifold
}

// PostSolveEvent is passed to post-solve callbacks once per step while two fixtures touch,
// after the solver ran.
type PostSolveEvent struct {
	Self, Other               *Body
	SelfFixture, OtherFixture *Fixture

	Contact box2d.B2ContactInterface
	Impulse *box2d.B2ContactImpulse
}

// handlers holds at most one handler per key.
type handlers[K comparable, E any] map[K]func(E)

// set registers the handler, replacing any previous one. A nil handler removes the entry.
func (h *handlers[K, E]) set(key K, handler func(E)) {
	if handler == nil {
		delete(*h, key)
		return
	}

	if *h == nil {
		*h = handlers[K, E]{}
	}

	(*h)[key] = handler
}

func (h handlers[K, E]) call(key K, event E) {
	if handler := h[key]; handler != nil {
		handler(event)
	}
}

// axisTables holds the handlers of one phase, keyed by peer body,
// by fixture and by category bitmask.
type axisTables[E any] struct {
	byBody     handlers[BodyId, E]
	byFixture  handlers[FixtureId, E]
	byCategory handlers[uint32, E]
}

func (t *axisTables[E]) clear() {
	t.byBody = nil
	t.byFixture = nil
	t.byCategory = nil
}

// callCategories invokes every category handler whose key intersects the given
// categories. Each handler is invoked at most once, in ascending key order.
func (t *axisTables[E]) callCategories(categories uint32, event E) {
	if len(t.byCategory) == 0 || categories == 0 {
		return
	}

	for _, key := range slices.Sorted(maps.Keys(t.byCategory)) {
		if key&categories != 0 {
			// a previous handler might have unregistered this one
			t.byCategory.call(key, event)
		}
	}
}

func resolveBodyRef(ref BodyRef) *Body {
	if ref == nil {
		panic("body reference must not be nil")
	}

	body := ref.resolveBody()
	if body == nil {
		panic("body reference does not resolve to a body")
	}

	return body
}

// SetBodyContactCallback registers a handler that is invoked when this body
// starts or stops touching the other body. A nil handler removes the callback.
func (b *Body) SetBodyContactCallback(other BodyRef, handler func(ContactEvent)) {
	peer := resolveBodyRef(other)
	if b.Alive() {
		b.contact.byBody.set(peer.id, handler)
	}
}

// SetFixtureContactCallback registers a handler that is invoked when this body starts
// or stops touching the given fixture. The fixture may also belong to this body, in which
// case the handler is invoked for contacts of that fixture with any other body.
// A nil handler removes the callback.
func (b *Body) SetFixtureContactCallback(fixture *Fixture, handler func(ContactEvent)) {
	if fixture == nil {
		panic("fixture must not be nil")
	}

	if b.Alive() {
		b.contact.byFixture.set(fixture.id, handler)
	}
}

// SetCategoryContactCallback registers a handler that is invoked when this body
// starts or stops touching a fixture whose category intersects the given bitmask.
// A nil handler removes the callback.
func (b *Body) SetCategoryContactCallback(category uint32, handler func(ContactEvent)) {
	if b.Alive() {
		b.contact.byCategory.set(category, handler)
	}
}

func (b *Body) SetBodyPreSolveCallback(other BodyRef, handler func(PreSolveEvent)) {
	peer := resolveBodyRef(other)
	if b.Alive() {
		b.preSolve.byBody.set(peer.id, handler)
	}
}

func (b *Body) SetFixturePreSolveCallback(fixture *Fixture, handler func(PreSolveEvent)) {
	if fixture == nil {
		panic("fixture must not be nil")
	}

	if b.Alive() {
		b.preSolve.byFixture.set(fixture.id, handler)
	}
}

func (b *Body) SetCategoryPreSolveCallback(category uint32, handler func(PreSolveEvent)) {
	if b.Alive() {
		b.preSolve.byCategory.set(category, handler)
	}
}

func (b *Body) SetBodyPostSolveCallback(other BodyRef, handler func(PostSolveEvent)) {
	peer := resolveBodyRef(other)
	if b.Alive() {
		b.postSolve.byBody.set(peer.id, handler)
	}
}

func (b *Body) SetFixturePostSolveCallback(fixture *Fixture, handler func(PostSolveEvent)) {
	if fixture == nil {
		panic("fixture must not be nil")
	}

	if b.Alive() {
		b.postSolve.byFixture.set(fixture.id, handler)
	}
}

func (b *Body) SetCategoryPostSolveCallback(category uint32, handler func(PostSolveEvent)) {
	if b.Alive() {
		b.postSolve.byCategory.set(category, handler)
	}
}
