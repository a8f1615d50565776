package main

import (
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/oliverbestmann/boxy"
	"github.com/oliverbestmann/boxy/gm"
	"github.com/pkg/profile"
)

const (
	tileGround boxy.TileKind = iota
	tileSpikes
)

const spikesCategory uint32 = 0x0002

var level = []string{
	"#..............................#",
	"#..............................#",
	"#.......####........####.......#",
	"#..............................#",
	"#...^^^...............^^^^.....#",
	"#..####...#########...####.....#",
	"#..............................#",
	"################################",
}

func main() {
	frames := flag.Int("frames", 600, "number of frames to simulate")
	bodyCount := flag.Int("bodies", 500, "number of bodies to drop")
	optimize := flag.Bool("optimize", true, "merge adjacent tiles into a single body")
	cpuProfile := flag.Bool("cpuprofile", false, "write a cpu profile")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	config := boxy.DefaultConfig()
	config.Gravity = gm.Vec{Y: 500}
	config.Logger = logger

	world := boxy.NewWorld(config)

	tilemap := parseLevel(level)
	world.ConvertTilemapLayerWith(tilemap, 0, boxy.TilemapOptions{
		Optimize:   *optimize,
		Categories: map[boxy.TileKind]uint32{tileSpikes: spikesCategory},
	})

	mapWidth := float64(len(level[0])) * tilemap.TileWidth
	mapHeight := float64(len(level)) * tilemap.TileHeight
	world.SetBounds(gm.RectWithOriginAndSize(gm.Vec{}, gm.Vec{X: mapWidth, Y: mapHeight}), boxy.SideLeft|boxy.SideRight|boxy.SideBottom)

	var spiked int

	rng := rand.New(rand.NewPCG(1, 2))
	for idx := range *bodyCount {
		position := gm.Vec{
			X: 24 + rng.Float64()*(mapWidth-48),
			Y: -float64(idx) * 4,
		}

		var body *boxy.Body
		if idx%3 == 0 {
			body = world.CreateRectangle(position, 6, 6)
		} else {
			body = world.CreateCircle(position, 3)
		}

		body.SetCategoryContactCallback(spikesCategory, func(event boxy.ContactEvent) {
			if event.Begin && event.Self.Alive() {
				spiked++
				event.Self.Destroy()
			}
		})
	}

	startTime := time.Now()

	for range *frames {
		world.Update(config.FrameRate)
	}

	stats := world.Stats()

	logger.Info("Simulation finished",
		slog.Int("frames", *frames),
		slog.Int("bodies", world.BodyCount()),
		slog.Int("spiked", spiked),
		slog.Duration("total", time.Since(startTime)),
		slog.Duration("stepAvg", stats.Step.MovingAverage),
		slog.Duration("stepMax", stats.Step.Max),
		slog.Duration("flushMax", stats.Flush.Max),
	)
}

func parseLevel(rows []string) *boxy.Tilemap {
	layer := &boxy.TileLayer{Name: "level", Height: len(rows)}

	for _, row := range rows {
		layer.Width = max(layer.Width, len(row))

		tiles := make([]boxy.Tile, 0, len(row))
		for _, ch := range row {
			switch ch {
			case '#':
				tiles = append(tiles, boxy.Tile{Kind: tileGround, Collides: true})
			case '^':
				tiles = append(tiles, boxy.Tile{Kind: tileSpikes, Collides: true})
			default:
				tiles = append(tiles, boxy.Tile{Kind: boxy.TileEmpty})
			}
		}

		layer.Tiles = append(layer.Tiles, tiles)
	}

	return &boxy.Tilemap{
		TileWidth:  16,
		TileHeight: 16,
		Layers:     []*boxy.TileLayer{layer},
	}
}
