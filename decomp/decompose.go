package decomp

import (
	"fmt"
	"math"
	"slices"
)

// Decompose splits a simple polygon into convex polygons with at most
// MaxVertices vertices each. Every returned polygon is wound counter-clockwise
// and the union of all pieces covers exactly the input polygon.
//
// The input may be wound in either direction. Collinear vertices are dropped. Convex inputs with at most
// MaxVertices vertices are returned as a single polygon.
func Decompose(polygon Polygon) ([]Polygon, error) {
	if err := polygon.Validate(); err != nil {
		return nil, fmt.Errorf("decompose polygon: %w", err)
	}

	pieces, err := decompose(normalize(polygon))
	if err != nil {
		return nil, err
	}

	return withoutDegenerate(pieces), nil
}

// normalize winds the polygon counter-clockwise and removes collinear vertices.
func normalize(polygon Polygon) Polygon {
	return polygon.MakeCCW().withoutCollinear()
}

// withoutDegenerate drops pieces without area.
func withoutDegenerate(pieces []Polygon) []Polygon {
	return slices.DeleteFunc(pieces, func(piece Polygon) bool {
		return piece.SignedArea() <= areaEpsilon
	})
}

func decompose(p Polygon) ([]Polygon, error) {
	bestI, bestJ := -1, -1
	bestDist := math.Inf(1)

	var foundReflex bool

	for i := range p {
		if !p.isReflex(i) {
			continue
		}

		foundReflex = true

		for j := range p {
			if !p.canSee(i, j) {
				continue
			}

			dist := p.at(i).DistanceSqr(p.at(j))
			if dist < bestDist {
				bestI, bestJ, bestDist = i, j, dist
			}
		}
	}

	if !foundReflex {
		return splitConvex(p), nil
	}

	if bestI < 0 {
		return nil, ErrNoDiagonal
	}

	lower, err := decompose(p.subPolygon(bestI, bestJ))
	if err != nil {
		return nil, err
	}

	upper, err := decompose(p.subPolygon(bestJ, bestI))
	if err != nil {
		return nil, err
	}

	return append(lower, upper...), nil
}

// DecomposeOptimal works like Decompose, but tries every diagonal starting at
// a reflex vertex and keeps the split with the fewest pieces. The runtime is
// exponential in the number of reflex vertices.
func DecomposeOptimal(polygon Polygon) ([]Polygon, error) {
	if err := polygon.Validate(); err != nil {
		return nil, fmt.Errorf("decompose polygon: %w", err)
	}

	pieces, err := decomposeOptimal(normalize(polygon))
	if err != nil {
		return nil, err
	}

	return withoutDegenerate(pieces), nil
}

func decomposeOptimal(p Polygon) ([]Polygon, error) {
	var best []Polygon
	var foundReflex bool

	for i := range p {
		if !p.isReflex(i) {
			continue
		}

		foundReflex = true

		for j := range p {
			if !p.canSee(i, j) {
				continue
			}

			lower, err := decomposeOptimal(p.subPolygon(i, j))
			if err != nil {
				return nil, err
			}

			upper, err := decomposeOptimal(p.subPolygon(j, i))
			if err != nil {
				return nil, err
			}

			if best == nil || len(lower)+len(upper) < len(best) {
				best = append(lower, upper...)
			}
		}
	}

	if !foundReflex {
		return splitConvex(p), nil
	}

	if best == nil {
		return nil, ErrNoDiagonal
	}

	return best, nil
}

// splitConvex splits a convex polygon in halves until every
// piece has at most MaxVertices vertices.
func splitConvex(p Polygon) []Polygon {
	if len(p) <= MaxVertices {
		return []Polygon{p}
	}

	mid := len(p) / 2

	return append(
		splitConvex(p.subPolygon(0, mid)),
		splitConvex(p.subPolygon(mid, 0))...,
	)
}
