package decomp

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/boxy/gm"
)

// MaxVertices is the maximum number of vertices of a convex polygon
// the simulator accepts.
const MaxVertices = 8

// areaEpsilon is the smallest area a polygon must have to not be
// considered degenerate.
const areaEpsilon = 1e-9

var (
	ErrTooFewVertices   = errors.New("polygon needs at least three vertices")
	ErrDegenerate       = errors.New("polygon is degenerate")
	ErrSelfIntersecting = errors.New("polygon is not simple")
	ErrNoDiagonal       = errors.New("no visible diagonal from reflex vertex")
)

// Polygon is an ordered sequence of vertices. The last vertex
// connects back to the first one.
type Polygon []gm.Vec

// PolygonFromFlat builds a polygon from a flat list of coordinates,
// e.g. [x0, y0, x1, y1, ...]. A trailing odd coordinate is ignored.
func PolygonFromFlat(coords []float64) Polygon {
	p := make(Polygon, 0, len(coords)/2)
	for idx := 0; idx+1 < len(coords); idx += 2 {
		p = append(p, gm.Vec{X: coords[idx], Y: coords[idx+1]})
	}

	return p
}

// at returns the vertex at the given index, wrapping around in both directions.
func (p Polygon) at(i int) gm.Vec {
	n := len(p)
	return p[((i%n)+n)%n]
}

func (p Polygon) cpVertices() []cp.Vector {
	verts := make([]cp.Vector, len(p))
	for idx, v := range p {
		verts[idx] = cp.Vector{X: v.X, Y: v.Y}
	}

	return verts
}

// SignedArea returns the area of the polygon. The value is positive
// for counter-clockwise winding and negative for clockwise winding.
func (p Polygon) SignedArea() float64 {
	if len(p) < 3 {
		return 0
	}

	return cp.AreaForPoly(len(p), p.cpVertices(), 0)
}

func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Centroid returns the center of mass of the polygon.
func (p Polygon) Centroid() gm.Vec {
	if len(p) < 3 {
		return gm.Vec{}
	}

	c := cp.CentroidForPoly(len(p), p.cpVertices())
	return gm.Vec{X: c.X, Y: c.Y}
}

// Clone returns a copy of the polygon that does not share memory with p.
func (p Polygon) Clone() Polygon {
	return slices.Clone(p)
}

// triangleArea returns the signed area of the triangle formed by the vertices
// at the given indices. The result is negative for clockwise windings.
func (p Polygon) triangleArea(a, b, c int) float64 {
	return triangleArea(p.at(a), p.at(b), p.at(c))
}

func triangleArea(a, b, c gm.Vec) float64 {
	return b.Sub(a).Cross(c.Sub(a)) * 0.5
}

func (p Polygon) left(a, b, c int) bool {
	return p.triangleArea(a, b, c) > 0
}

func (p Polygon) leftOn(a, b, c int) bool {
	return p.triangleArea(a, b, c) >= 0
}

func (p Polygon) right(a, b, c int) bool {
	return p.triangleArea(a, b, c) < 0
}

func (p Polygon) rightOn(a, b, c int) bool {
	return p.triangleArea(a, b, c) <= 0
}

// IsCCW reports whether the polygon is wound counter-clockwise. The winding
// is tested at the bottom right vertex, which is always convex.
func (p Polygon) IsCCW() bool {
	if len(p) < 3 {
		return true
	}

	br := 0
	for i := 1; i < len(p); i++ {
		if p[i].Y < p[br].Y || (p[i].Y == p[br].Y && p[i].X > p[br].X) {
			br = i
		}
	}

	return p.left(br-1, br, br+1)
}

// MakeCCW returns a copy of the polygon that is wound counter-clockwise.
func (p Polygon) MakeCCW() Polygon {
	result := p.Clone()
	if !p.IsCCW() {
		slices.Reverse(result)
	}

	return result
}

// withoutCollinear returns a copy of the polygon without the vertices
// lying on the line between their neighbours.
func (p Polygon) withoutCollinear() Polygon {
	result := p.Clone()

	for changed := true; changed; {
		changed = false

		for i := 0; i < len(result) && len(result) > 3; {
			if math.Abs(result.triangleArea(i-1, i, i+1)) <= areaEpsilon {
				result = slices.Delete(result, i, i+1)
				changed = true
				continue
			}

			i++
		}
	}

	return result
}

// IsConvex returns true if the polygon does not turn into different
// directions. Collinear vertices are allowed.
func (p Polygon) IsConvex() bool {
	var positive, negative bool

	for i := range p {
		area := p.triangleArea(i, i+1, i+2)
		switch {
		case area > 0:
			positive = true
		case area < 0:
			negative = true
		}
	}

	return !(positive && negative)
}

// isReflex checks if the vertex at the given index causes concavity.
// The polygon must be wound counter-clockwise.
func (p Polygon) isReflex(i int) bool {
	return p.right(i-1, i, i+1)
}

// adjacent checks if two indices are adjacent or the same on this polygon.
func (p Polygon) adjacent(a, b int) bool {
	n := len(p)
	a, b = a%n, b%n

	diff := a - b
	if diff < 0 {
		diff = -diff
	}

	return diff < 2 || diff == n-1
}

// IsSimple returns true if no two non adjacent edges of the polygon touch or intersect.
func (p Polygon) IsSimple() bool {
	n := len(p)

	for i := 0; i < n; i++ {
		a0, a1 := p.at(i), p.at(i+1)

		for j := i + 1; j < n; j++ {
			if p.adjacent(i, j) {
				continue
			}

			if segmentsTouch(a0, a1, p.at(j), p.at(j+1)) {
				return false
			}
		}
	}

	return true
}

// Validate checks that the polygon can be decomposed. It returns an error
// wrapping one of ErrTooFewVertices, ErrDegenerate or ErrSelfIntersecting.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return fmt.Errorf("got %d vertices: %w", len(p), ErrTooFewVertices)
	}

	for i := range p {
		if p.at(i) == p.at(i+1) {
			return fmt.Errorf("vertex %d is repeated: %w", i, ErrDegenerate)
		}
	}

	if area := p.Area(); area < areaEpsilon {
		return fmt.Errorf("area is %g: %w", area, ErrDegenerate)
	}

	if !p.IsSimple() {
		return ErrSelfIntersecting
	}

	return nil
}

// subPolygon copies the vertices from index i to index j, both included,
// wrapping around the end of the polygon if j is smaller than i.
func (p Polygon) subPolygon(i, j int) Polygon {
	n := len(p)
	if j < i {
		j += n
	}

	result := make(Polygon, 0, j-i+1)
	for k := i; k <= j; k++ {
		result = append(result, p.at(k))
	}

	return result
}

// canSee checks if the vertices at a and b are not adjacent and the diagonal
// between both runs inside the polygon without crossing any edge.
// The polygon must be wound counter-clockwise.
func (p Polygon) canSee(a, b int) bool {
	if p.adjacent(a, b) {
		return false
	}

	// b lies outside the wedge spanned by a's neighbours
	if p.leftOn(a+1, a, b) && p.rightOn(a-1, a, b) {
		return false
	}

	n := len(p)
	for i := 0; i < n; i++ {
		// ignore incident edges
		if (i+1)%n == a || i == a {
			continue
		}

		// the edge crosses the line through the diagonal from right to left
		if p.leftOn(a, b, i+1) && p.rightOn(a, b, i) {
			if _, ok := linesCross(p.at(a), p.at(b), p.at(i), p.at(i+1)); ok {
				return false
			}
		}
	}

	return true
}

// linesCross checks if the segments v0-v1 and t0-t1 intersect. Segments sharing
// an endpoint do not cross. Returns the point of intersection.
func linesCross(v0, v1, t0, t1 gm.Vec) (gm.Vec, bool) {
	if v1 == t0 || v0 == t0 || v1 == t1 || v0 == t1 {
		return gm.Vec{}, false
	}

	vNormal := v1.Sub(v0).Perp().Neg()

	v0d := vNormal.Dot(v0)
	t0d := vNormal.Dot(t0)
	t1d := vNormal.Dot(t1)

	if (t0d > v0d && t1d > v0d) || (t0d < v0d && t1d < v0d) {
		return gm.Vec{}, false
	}

	tNormal := t1.Sub(t0).Perp().Neg()

	t0d = tNormal.Dot(t0)
	v0d = tNormal.Dot(v0)
	v1d := tNormal.Dot(v1)

	if (v0d > t0d && v1d > t0d) || (v0d < t0d && v1d < t0d) {
		return gm.Vec{}, false
	}

	if v1d == v0d {
		// both segments are collinear and overlap
		return v0, true
	}

	f := (t0d - v0d) / (v1d - v0d)
	return v0.Add(v1.Sub(v0).Mul(f)), true
}

// segmentsTouch checks if the closed segments a0-a1 and b0-b1 share at least one point.
func segmentsTouch(a0, a1, b0, b1 gm.Vec) bool {
	d1 := triangleArea(b0, b1, a0)
	d2 := triangleArea(b0, b1, a1)
	d3 := triangleArea(a0, a1, b0)
	d4 := triangleArea(a0, a1, b1)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(b0, b1, a0)) ||
		(d2 == 0 && onSegment(b0, b1, a1)) ||
		(d3 == 0 && onSegment(a0, a1, b0)) ||
		(d4 == 0 && onSegment(a0, a1, b1))
}

// onSegment checks if the point p, known to be collinear with a-b, lies on the segment.
func onSegment(a, b, p gm.Vec) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}
