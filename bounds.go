package boxy

import (
	"github.com/oliverbestmann/boxy/gm"
)

// Sides selects the walls created by World.SetBounds.
type Sides uint8

const (
	SideLeft Sides = 1 << iota
	SideRight
	SideTop
	SideBottom

	AllSides = SideLeft | SideRight | SideTop | SideBottom
)

const wallThickness = 100.0

// SetBounds surrounds the given rectangle with static walls on the selected sides.
// Walls are placed outside of the rectangle and use the WorldBoundsCategory. Calling
// SetBounds again replaces the previous walls.
func (w *World) SetBounds(bounds gm.Rect, sides Sides) []*Body {
	for _, wall := range w.walls {
		w.RemoveBody(wall)
	}

	w.walls = nil

	size := bounds.Size()
	center := bounds.Center()

	// walls extend past the corners so there are no gaps
	width := size.X + 2*wallThickness
	height := size.Y + 2*wallThickness

	if sides&SideLeft != 0 {
		w.addWall(gm.Vec{X: bounds.Min.X - wallThickness/2, Y: center.Y}, wallThickness, height)
	}

	if sides&SideRight != 0 {
		w.addWall(gm.Vec{X: bounds.Max.X + wallThickness/2, Y: center.Y}, wallThickness, height)
	}

	if sides&SideTop != 0 {
		w.addWall(gm.Vec{X: center.X, Y: bounds.Min.Y - wallThickness/2}, width, wallThickness)
	}

	if sides&SideBottom != 0 {
		w.addWall(gm.Vec{X: center.X, Y: bounds.Max.Y + wallThickness/2}, width, wallThickness)
	}

	return w.Walls()
}

func (w *World) addWall(center gm.Vec, width, height float64) {
	wall := w.CreateBody(center, Static)

	if fixture := wall.AddRectangle(width, height, gm.Vec{}, 0); fixture != nil {
		fixture.SetCategory(WorldBoundsCategory)
	}

	w.walls = append(w.walls, wall)
}

// Walls returns the bodies created by the last call to SetBounds.
func (w *World) Walls() []*Body {
	walls := make([]*Body, len(w.walls))
	copy(walls, w.walls)
	return walls
}
