// Package scene loads obstacle layouts from YAML files so deployments can
// describe their world without code or a database.
package scene

import (
	"fmt"
	"math"
	"os"

	"github.com/gridnav/server/internal/nav"
	"gopkg.in/yaml.v3"
)

// ObstacleEntry is one obstacle in a scene file. Kind selects which fields
// apply: "box" uses x/z/width/depth/rotation_deg, "polygon" uses vertices.
type ObstacleEntry struct {
	Kind        string        `yaml:"kind"`
	X           float64       `yaml:"x"`
	Z           float64       `yaml:"z"`
	Width       float64       `yaml:"width"`
	Depth       float64       `yaml:"depth"`
	RotationDeg float64       `yaml:"rotation_deg"`
	Vertices    []VertexEntry `yaml:"vertices"`
}

type VertexEntry struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

// Scene is a named obstacle layout with optional world dimensions that
// override the server config when present.
type Scene struct {
	Name       string          `yaml:"name"`
	WorldWidth float64         `yaml:"world_width"`
	WorldDepth float64         `yaml:"world_depth"`
	GridSize   float64         `yaml:"grid_size"`
	Obstacles  []ObstacleEntry `yaml:"obstacles"`

	skipped int
}

// Load reads a scene file. Entries with an unknown kind or a shape that
// cannot block anything are skipped rather than failing the whole file;
// Skipped reports how many were dropped.
func Load(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}

	valid := s.Obstacles[:0]
	for _, o := range s.Obstacles {
		if entryValid(o) {
			valid = append(valid, o)
		} else {
			s.skipped++
		}
	}
	s.Obstacles = valid
	return &s, nil
}

func entryValid(o ObstacleEntry) bool {
	switch o.Kind {
	case "box":
		return o.Width > 0 && o.Depth > 0
	case "polygon":
		return len(o.Vertices) >= 3
	}
	return false
}

// Skipped returns the number of entries dropped during Load.
func (s *Scene) Skipped() int {
	return s.skipped
}

// Footprints converts every obstacle entry to a nav footprint.
func (s *Scene) Footprints() []nav.Footprint {
	out := make([]nav.Footprint, 0, len(s.Obstacles))
	for _, o := range s.Obstacles {
		out = append(out, o.Footprint())
	}
	return out
}

// Footprint converts a single entry.
func (o ObstacleEntry) Footprint() nav.Footprint {
	if o.Kind == "polygon" {
		verts := make([]nav.Point, len(o.Vertices))
		for i, v := range o.Vertices {
			verts[i] = nav.Point{X: v.X, Z: v.Z}
		}
		return nav.PolygonFootprint(verts)
	}
	return nav.RotatedBoxFootprint(
		nav.Point{X: o.X, Z: o.Z},
		o.Width, o.Depth,
		o.RotationDeg*math.Pi/180,
	)
}

// Apply registers every obstacle with the navigation system.
func (s *Scene) Apply(sys *nav.System) {
	for _, f := range s.Footprints() {
		sys.AddObstacle(f)
	}
}
