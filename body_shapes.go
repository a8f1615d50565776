package boxy

import (
	"log/slog"
	"slices"

	"github.com/ByteArena/box2d"
	"github.com/oliverbestmann/boxy/decomp"
	"github.com/oliverbestmann/boxy/gm"
)

// Vertices closer than this are merged by the simulator.
const weldDistanceSqr = (0.5 * box2d.B2_linearSlop) * (0.5 * box2d.B2_linearSlop)

// Chain vertices must be at least this far apart.
const chainDistanceSqr = box2d.B2_linearSlop * box2d.B2_linearSlop

func (b *Body) rejectShape(kind ShapeKind, reason string) {
	b.world.logger.Warn("Rejected shape",
		slog.Int("body", int(b.id)),
		slog.String("shape", kind.String()),
		slog.String("reason", reason),
	)
}

// AddCircle adds a circle with the given radius in pixels. The offset
// moves the circle relative to the body origin.
// Returns nil if the circle could not be created.
func (b *Body) AddCircle(radius float64, offset gm.Vec) *Fixture {
	if !b.Alive() {
		return nil
	}

	if radius <= 0 {
		b.rejectShape(ShapeCircle, "radius must be positive")
		return nil
	}

	shape := box2d.MakeB2CircleShape()
	shape.M_radius = b.world.ToUnits(radius)
	shape.M_p = b.world.toSim(offset)

	return b.newFixture(ShapeCircle, &shape)
}

// AddRectangle adds a rectangle with the given size in pixels, centered
// at the offset relative to the body origin and rotated around its center.
// Returns nil if the rectangle could not be created.
func (b *Body) AddRectangle(width, height float64, offset gm.Vec, rotation gm.Rad) *Fixture {
	if !b.Alive() {
		return nil
	}

	hx := b.world.ToUnits(width) / 2
	hy := b.world.ToUnits(height) / 2

	if hx*hx <= weldDistanceSqr || hy*hy <= weldDistanceSqr {
		b.rejectShape(ShapeRectangle, "rectangle too small")
		return nil
	}

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBoxFromCenterAndAngle(hx, hy, b.world.toSim(offset), float64(rotation))

	return b.newFixture(ShapeRectangle, &shape)
}

// AddEdge adds a line segment between two points relative to the body origin.
// Returns nil if both points are too close to each other.
func (b *Body) AddEdge(start, end gm.Vec) *Fixture {
	if !b.Alive() {
		return nil
	}

	v1 := b.world.toSim(start)
	v2 := b.world.toSim(end)

	if box2d.B2Vec2DistanceSquared(v1, v2) <= chainDistanceSqr {
		b.rejectShape(ShapeEdge, "edge too short")
		return nil
	}

	shape := box2d.MakeB2EdgeShape()
	shape.Set(v1, v2)

	return b.newFixture(ShapeEdge, &shape)
}

// AddChain adds an open chain of line segments. Vertices that are too close to
// their predecessor are dropped. Returns nil if fewer than two vertices remain.
func (b *Body) AddChain(vertices []gm.Vec) *Fixture {
	if !b.Alive() {
		return nil
	}

	points := b.chainVertices(vertices, false)
	if len(points) < 2 {
		b.rejectShape(ShapeChain, "chain needs at least two distinct vertices")
		return nil
	}

	shape := box2d.MakeB2ChainShape()
	shape.CreateChain(points, len(points))

	return b.newFixture(ShapeChain, &shape)
}

// AddLoop adds a closed chain of line segments. The last vertex connects back to
// the first one. Returns nil if fewer than three distinct vertices remain.
func (b *Body) AddLoop(vertices []gm.Vec) *Fixture {
	if !b.Alive() {
		return nil
	}

	points := b.chainVertices(vertices, true)
	if len(points) < 3 {
		b.rejectShape(ShapeLoop, "loop needs at least three distinct vertices")
		return nil
	}

	shape := box2d.MakeB2ChainShape()
	shape.CreateLoop(points, len(points))

	return b.newFixture(ShapeLoop, &shape)
}

func (b *Body) chainVertices(vertices []gm.Vec, closed bool) []box2d.B2Vec2 {
	points := make([]box2d.B2Vec2, 0, len(vertices))

	for _, vertex := range vertices {
		point := b.world.toSim(vertex)

		if len(points) > 0 && box2d.B2Vec2DistanceSquared(points[len(points)-1], point) <= chainDistanceSqr {
			continue
		}

		points = append(points, point)
	}

	if closed {
		for len(points) > 1 && box2d.B2Vec2DistanceSquared(points[0], points[len(points)-1]) <= chainDistanceSqr {
			points = points[:len(points)-1]
		}
	}

	return points
}

// AddPolygon adds a simple polygon relative to the body origin. Concave polygons
// and polygons with more vertices than the simulator supports are decomposed into
// convex pieces, with one fixture per piece.
// Returns nil if the polygon is invalid.
func (b *Body) AddPolygon(vertices []gm.Vec) []*Fixture {
	if !b.Alive() {
		return nil
	}

	if len(vertices) < 3 {
		b.rejectShape(ShapePolygon, "polygon needs at least three vertices")
		return nil
	}

	pieces, err := decomp.Decompose(decomp.Polygon(vertices))
	if err != nil {
		b.rejectShape(ShapePolygon, err.Error())
		return nil
	}

	var fixtures []*Fixture

	for _, piece := range pieces {
		shape, ok := b.polygonShape(piece)
		if !ok {
			b.world.logger.Debug("Skip degenerate polygon piece",
				slog.Int("body", int(b.id)),
				slog.Int("vertices", len(piece)),
			)

			continue
		}

		fixtures = append(fixtures, b.newFixture(ShapePolygon, shape))
	}

	if len(fixtures) == 0 {
		b.rejectShape(ShapePolygon, "polygon is too small")
		return nil
	}

	return fixtures
}

// polygonShape converts a convex polygon into a simulator shape. Returns false
// if the simulator would consider the polygon degenerate.
func (b *Body) polygonShape(piece decomp.Polygon) (*box2d.B2PolygonShape, bool) {
	points := make([]box2d.B2Vec2, 0, len(piece))

	// weld vertices the same way the simulator does
	for _, vertex := range piece {
		point := b.world.toSim(vertex)

		unique := !slices.ContainsFunc(points, func(other box2d.B2Vec2) bool {
			return box2d.B2Vec2DistanceSquared(point, other) < weldDistanceSqr
		})

		if unique {
			points = append(points, point)
		}
	}

	if len(points) < 3 || len(points) > box2d.B2_maxPolygonVertices {
		return nil, false
	}

	welded := make(decomp.Polygon, len(points))
	for idx, point := range points {
		welded[idx] = gm.Vec{X: point.X, Y: point.Y}
	}

	if welded.Area() <= weldDistanceSqr {
		return nil, false
	}

	shape := box2d.MakeB2PolygonShape()
	shape.Set(points, len(points))

	return &shape, true
}

// RemoveFixture detaches the fixture from the body and recomputes the body's mass.
func (b *Body) RemoveFixture(fixture *Fixture) {
	if fixture == nil || fixture.body != b || fixture.removed {
		return
	}

	b.fixtures = slices.DeleteFunc(b.fixtures, func(f *Fixture) bool { return f == fixture })
	fixture.removed = true

	b.world.run(func() {
		if fixture.fixture != nil && b.body != nil {
			b.body.DestroyFixture(fixture.fixture)
		}

		fixture.fixture = nil
	})
}

// ClearFixtures removes all fixtures from the body.
func (b *Body) ClearFixtures() {
	for _, fixture := range b.Fixtures() {
		b.RemoveFixture(fixture)
	}
}

// SetCircle replaces all fixtures of the body with a single circle.
func (b *Body) SetCircle(radius float64, offset gm.Vec) *Fixture {
	b.ClearFixtures()
	return b.AddCircle(radius, offset)
}

// SetRectangle replaces all fixtures of the body with a single rectangle.
func (b *Body) SetRectangle(width, height float64, offset gm.Vec, rotation gm.Rad) *Fixture {
	b.ClearFixtures()
	return b.AddRectangle(width, height, offset, rotation)
}

// SetEdge replaces all fixtures of the body with a single edge.
func (b *Body) SetEdge(start, end gm.Vec) *Fixture {
	b.ClearFixtures()
	return b.AddEdge(start, end)
}

// SetChain replaces all fixtures of the body with a chain.
func (b *Body) SetChain(vertices []gm.Vec) *Fixture {
	b.ClearFixtures()
	return b.AddChain(vertices)
}

// SetLoop replaces all fixtures of the body with a closed chain.
func (b *Body) SetLoop(vertices []gm.Vec) *Fixture {
	b.ClearFixtures()
	return b.AddLoop(vertices)
}

// SetPolygon replaces all fixtures of the body with the given polygon.
func (b *Body) SetPolygon(vertices []gm.Vec) []*Fixture {
	b.ClearFixtures()
	return b.AddPolygon(vertices)
}
