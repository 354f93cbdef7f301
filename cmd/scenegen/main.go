// scenegen runs a Lua scenario through the scripting engine and writes the
// resulting obstacle placement as a scene YAML file, so scripted layouts can
// be inspected or served without Lua enabled.
//
// Usage:
//
//	go run ./cmd/scenegen -scripts scripts -scenario default -o config/scene.yaml
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/gridnav/server/internal/nav"
	"github.com/gridnav/server/internal/scene"
	"github.com/gridnav/server/internal/scripting"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	scriptsDir := flag.String("scripts", "scripts", "directory containing Lua scripts")
	scenario := flag.String("scenario", "default", "scenario name passed to setup_scene")
	width := flag.Float64("width", 200, "world width")
	depth := flag.Float64("depth", 200, "world depth")
	gridSize := flag.Float64("grid", 2, "grid cell size")
	out := flag.String("o", "config/scene.yaml", "output scene file")
	flag.Parse()

	if err := run(*scriptsDir, *scenario, *width, *depth, *gridSize, *out); err != nil {
		fmt.Fprintf(os.Stderr, "scenegen: %v\n", err)
		os.Exit(1)
	}
}

func run(scriptsDir, scenario string, width, depth, gridSize float64, out string) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	engine, err := scripting.NewEngine(scriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()

	footprints, err := engine.BuildScene(scenario, width, depth)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	sc := scene.Scene{
		Name:       scenario,
		WorldWidth: width,
		WorldDepth: depth,
		GridSize:   gridSize,
	}
	for _, f := range footprints {
		sc.Obstacles = append(sc.Obstacles, entryFromFootprint(f))
	}

	raw, err := yaml.Marshal(&sc)
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if err := os.WriteFile(out, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Printf("wrote %s (%d obstacles)\n", out, len(sc.Obstacles))
	return nil
}

func entryFromFootprint(f nav.Footprint) scene.ObstacleEntry {
	if f.Kind == nav.FootprintPolygon {
		verts := make([]scene.VertexEntry, len(f.Vertices))
		for i, v := range f.Vertices {
			verts[i] = scene.VertexEntry{X: v.X, Z: v.Z}
		}
		return scene.ObstacleEntry{Kind: "polygon", Vertices: verts}
	}
	return scene.ObstacleEntry{
		Kind:        "box",
		X:           f.Center.X,
		Z:           f.Center.Z,
		Width:       f.Width,
		Depth:       f.Depth,
		RotationDeg: f.Rotation * 180 / math.Pi,
	}
}
