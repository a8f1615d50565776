package boxy

import (
	"math"
	"slices"

	"github.com/ByteArena/box2d"
	"github.com/oliverbestmann/boxy/gm"
	"github.com/oliverbestmann/boxy/internal/set"
)

// RaycastHit describes a fixture hit by a ray.
type RaycastHit struct {
	Body    *Body
	Fixture *Fixture

	// Point and normal of the hit in pixel space
	Point  gm.Vec
	Normal gm.Vec

	// Fraction along the ray where the fixture was hit, from 0 to 1
	Fraction float64
}

// RaycastFilter decides if a hit should be reported. Returning false
// ignores the fixture without stopping the ray.
type RaycastFilter func(body *Body, fixture *Fixture, point, normal gm.Vec) bool

type QueryHit struct {
	Body    *Body
	Fixture *Fixture
}

// Raycast casts a ray from one point to another and returns all hits ordered by
// their distance to the start of the ray. If closestOnly is set, at most the
// closest hit is returned. The filter is optional.
func (w *World) Raycast(from, to gm.Vec, closestOnly bool, filter RaycastFilter) []RaycastHit {
	hits := []RaycastHit{}

	if from == to {
		return hits
	}

	callback := func(simFixture *box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) float64 {
		fixture, ok := simFixture.GetUserData().(*Fixture)
		if !ok {
			return -1
		}

		hit := RaycastHit{
			Body:     fixture.body,
			Fixture:  fixture,
			Point:    w.fromSim(point),
			Normal:   fromSimDirection(normal),
			Fraction: fraction,
		}

		if filter != nil && !filter(hit.Body, hit.Fixture, hit.Point, hit.Normal) {
			return -1
		}

		if !closestOnly {
			hits = append(hits, hit)
			return 1
		}

		if len(hits) == 0 || fraction < hits[0].Fraction {
			hits = append(hits[:0], hit)
		}

		// clip the ray, only closer hits are reported from now on
		return hits[0].Fraction
	}

	w.exclusive(func() {
		w.sim.RayCast(callback, w.toSim(from), w.toSim(to))
	})

	slices.SortStableFunc(hits, func(a, b RaycastHit) int {
		switch {
		case a.Fraction < b.Fraction:
			return -1
		case a.Fraction > b.Fraction:
			return 1
		default:
			return 0
		}
	})

	return hits
}

// simBounds converts a rectangle in pixel space into an axis aligned box in simulator space.
func (w *World) simBounds(rect gm.Rect) box2d.B2AABB {
	a := w.toSim(rect.Min)
	b := w.toSim(rect.Max)

	return box2d.B2AABB{
		LowerBound: box2d.B2Vec2{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		UpperBound: box2d.B2Vec2{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// QueryAABB returns all fixtures whose bounding boxes overlap the given
// rectangle. This is a broad phase test only, a returned fixture does not
// necessarily overlap the rectangle.
func (w *World) QueryAABB(rect gm.Rect) []QueryHit {
	hits := []QueryHit{}

	w.exclusive(func() {
		w.sim.QueryAABB(func(simFixture *box2d.B2Fixture) bool {
			if fixture, ok := simFixture.GetUserData().(*Fixture); ok {
				hits = append(hits, QueryHit{Body: fixture.body, Fixture: fixture})
			}

			return true
		}, w.simBounds(rect))
	})

	return hits
}

// FixturesAtPoint returns the fixtures containing the given point. If onlyOne is set, the
// search stops after the first fixture found. If onlyDynamic is set, fixtures of static
// and kinematic bodies are ignored.
func (w *World) FixturesAtPoint(point gm.Vec, onlyOne, onlyDynamic bool) []*Fixture {
	fixtures := []*Fixture{}

	simPoint := w.toSim(point)
	bounds := box2d.B2AABB{
		LowerBound: box2d.B2Vec2{X: simPoint.X - box2d.B2_linearSlop, Y: simPoint.Y - box2d.B2_linearSlop},
		UpperBound: box2d.B2Vec2{X: simPoint.X + box2d.B2_linearSlop, Y: simPoint.Y + box2d.B2_linearSlop},
	}

	w.exclusive(func() {
		w.sim.QueryAABB(func(simFixture *box2d.B2Fixture) bool {
			fixture, ok := simFixture.GetUserData().(*Fixture)
			if !ok {
				return true
			}

			if onlyDynamic && simFixture.GetBody().GetType() != box2d.B2BodyType.B2_dynamicBody {
				return true
			}

			if !simFixture.TestPoint(simPoint) {
				return true
			}

			fixtures = append(fixtures, fixture)
			return !onlyOne
		}, bounds)
	})

	return fixtures
}

// BodiesAtPoint works like FixturesAtPoint but returns every body at most once.
func (w *World) BodiesAtPoint(point gm.Vec, onlyOne, onlyDynamic bool) []*Body {
	bodies := []*Body{}

	var seen set.Set[BodyId]
	for _, fixture := range w.FixturesAtPoint(point, onlyOne, onlyDynamic) {
		if seen.Insert(fixture.body.id) {
			bodies = append(bodies, fixture.body)
		}
	}

	return bodies
}

// QueryFixture returns all other fixtures whose shapes overlap the shape
// of the given fixture.
func (w *World) QueryFixture(fixture *Fixture) []*Fixture {
	overlapping := []*Fixture{}

	if fixture == nil || fixture.fixture == nil || fixture.body.body == nil {
		return overlapping
	}

	shape := fixture.fixture.GetShape()
	transform := fixture.body.body.GetTransform()

	var seen set.Set[FixtureId]

	w.exclusive(func() {
		for childA := range shape.GetChildCount() {
			aabb := fixture.fixture.GetAABB(childA)

			w.sim.QueryAABB(func(simFixture *box2d.B2Fixture) bool {
				other, ok := simFixture.GetUserData().(*Fixture)
				if !ok || other == fixture || seen.Has(other.id) {
					return true
				}

				otherShape := simFixture.GetShape()
				otherTransform := simFixture.GetBody().GetTransform()

				for childB := range otherShape.GetChildCount() {
					if box2d.B2TestOverlapShapes(shape, childA, otherShape, childB, transform, otherTransform) {
						seen.Insert(other.id)
						overlapping = append(overlapping, other)
						break
					}
				}

				return true
			}, aabb)
		}
	})

	return overlapping
}
