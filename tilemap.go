package boxy

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/boxy/gm"
)

// TileKind identifies the type of a tile. The set of kinds is declared by the caller.
type TileKind int

// TileEmpty marks a cell without a tile.
const TileEmpty TileKind = -1

type Tile struct {
	Kind     TileKind
	Collides bool
}

// Solid reports whether the tile should get a collision shape.
func (t Tile) Solid() bool {
	return t.Kind != TileEmpty && t.Collides
}

type TileLayer struct {
	Name          string
	Width, Height int

	// Tiles are indexed by row, then by column.
	Tiles [][]Tile
}

// At returns the tile at the given column and row. Cells outside
// of the layer are empty.
func (l *TileLayer) At(x, y int) Tile {
	if y < 0 || y >= len(l.Tiles) || x < 0 || x >= len(l.Tiles[y]) {
		return Tile{Kind: TileEmpty}
	}

	return l.Tiles[y][x]
}

// SetCollision sets the collision flag of all tiles of the given kinds.
func (l *TileLayer) SetCollision(collides bool, kinds ...TileKind) {
	for y := range l.Tiles {
		for x := range l.Tiles[y] {
			tile := &l.Tiles[y][x]

			for _, kind := range kinds {
				if tile.Kind == kind {
					tile.Collides = collides
					break
				}
			}
		}
	}
}

type Tilemap struct {
	// size of a tile in pixels
	TileWidth, TileHeight float64

	// position of the top left corner of the map in pixels
	Offset gm.Vec

	Layers []*TileLayer
}

// SetCollision sets the collision flag of all tiles of the given kinds in every layer.
func (m *Tilemap) SetCollision(collides bool, kinds ...TileKind) {
	for _, layer := range m.Layers {
		layer.SetCollision(collides, kinds...)
	}
}

type TilemapOptions struct {
	// Optimize merges horizontal runs of solid tiles into a single body.
	Optimize bool

	// Categories assigns a collision category to the fixtures created for
	// tiles of the given kinds. Other tiles use DefaultCategory.
	Categories map[TileKind]uint32
}

// ConvertTilemapLayer creates static bodies for all solid tiles of a layer.
// See ConvertTilemapLayerWith.
func (w *World) ConvertTilemapLayer(tilemap *Tilemap, layer int, optimize bool) []*Body {
	return w.ConvertTilemapLayerWith(tilemap, layer, TilemapOptions{Optimize: optimize})
}

// ConvertTilemapLayerWith creates a static body with a rectangle fixture for every solid
// tile of the layer. With Optimize set, horizontally adjacent solid tiles of a row are
// merged into a single body. Bodies created by a previous conversion of the same layer
// are removed first.
func (w *World) ConvertTilemapLayerWith(tilemap *Tilemap, layer int, opts TilemapOptions) []*Body {
	tileLayer := tilemapLayer(tilemap, layer)

	w.ClearTilemapLayerBodies(tilemap, layer)

	category := func(tile Tile) uint32 {
		if cat, ok := opts.Categories[tile.Kind]; ok {
			return cat
		}

		return DefaultCategory
	}

	var bodies []*Body

	for y := range tileLayer.Tiles {
		row := tileLayer.Tiles[y]

		for x := 0; x < len(row); x++ {
			tile := row[x]
			if !tile.Solid() {
				continue
			}

			// number of tiles merged into this body
			run := 1

			if opts.Optimize {
				for x+run < len(row) && row[x+run].Solid() && category(row[x+run]) == category(tile) {
					run++
				}
			}

			body := w.tileBody(tilemap, x, y, run, category(tile))
			bodies = append(bodies, body)

			x += run - 1
		}
	}

	w.tilemapBodies[tileLayer] = bodies

	w.logger.Debug("Converted tilemap layer",
		slog.String("layer", tileLayer.Name),
		slog.Int("bodies", len(bodies)),
		slog.Bool("optimize", opts.Optimize),
	)

	return bodies
}

func (w *World) tileBody(tilemap *Tilemap, x, y, run int, category uint32) *Body {
	width := float64(run) * tilemap.TileWidth
	height := tilemap.TileHeight

	// the body sits on the top left corner of its first tile
	position := tilemap.Offset.Add(gm.Vec{
		X: float64(x) * tilemap.TileWidth,
		Y: float64(y) * tilemap.TileHeight,
	})

	body := w.CreateBody(position, Static)

	fixture := body.AddRectangle(width, height, gm.Vec{X: width / 2, Y: height / 2}, 0)
	if fixture != nil && category != DefaultCategory {
		fixture.SetCategory(category)
	}

	return body
}

// ClearTilemapLayerBodies removes all bodies previously created for the layer.
func (w *World) ClearTilemapLayerBodies(tilemap *Tilemap, layer int) {
	tileLayer := tilemapLayer(tilemap, layer)

	for _, body := range w.tilemapBodies[tileLayer] {
		w.RemoveBody(body)
	}

	delete(w.tilemapBodies, tileLayer)
}

// TilemapLayerBodies returns the bodies created by the last conversion of the layer.
func (w *World) TilemapLayerBodies(tilemap *Tilemap, layer int) []*Body {
	bodies := w.tilemapBodies[tilemapLayer(tilemap, layer)]

	result := make([]*Body, len(bodies))
	copy(result, bodies)
	return result
}

func tilemapLayer(tilemap *Tilemap, layer int) *TileLayer {
	if tilemap == nil {
		panic("tilemap must not be nil")
	}

	if layer < 0 || layer >= len(tilemap.Layers) {
		panic(fmt.Sprintf("layer index %d out of range, tilemap has %d layers", layer, len(tilemap.Layers)))
	}

	return tilemap.Layers[layer]
}
