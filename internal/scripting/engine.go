// Package scripting hosts the Lua scenario engine. Deployments that need
// procedurally placed obstacles (test arenas, benchmark mazes) write a
// setup_scene function instead of hand-maintaining a YAML scene.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridnav/server/internal/nav"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only (tick
// loop / boot sequence).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all .lua files from the given
// directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scenario scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// BuildScene calls the Lua setup_scene(scenario, world) function and
// converts the returned obstacle list to footprints. world carries the
// configured dimensions so scripts can scale their layouts.
//
// Expected return shape:
//
//	{
//	  {kind = "box", x = 0, z = 0, width = 10, depth = 10, rotation_deg = 0},
//	  {kind = "polygon", vertices = {{x = 1, z = 1}, ...}},
//	}
func (e *Engine) BuildScene(scenario string, worldWidth, worldDepth float64) ([]nav.Footprint, error) {
	fn := e.vm.GetGlobal("setup_scene")
	if fn == lua.LNil {
		return nil, fmt.Errorf("lua function setup_scene not found")
	}

	world := e.vm.NewTable()
	world.RawSetString("width", lua.LNumber(worldWidth))
	world.RawSetString("depth", lua.LNumber(worldDepth))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(scenario), world); err != nil {
		return nil, fmt.Errorf("lua setup_scene: %w", err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua setup_scene returned %s, expected a table", result.Type())
	}

	var footprints []nav.Footprint
	var convErr error
	rt.ForEach(func(_, value lua.LValue) {
		if convErr != nil {
			return
		}
		entry, ok := value.(*lua.LTable)
		if !ok {
			convErr = fmt.Errorf("obstacle entry is %s, expected a table", value.Type())
			return
		}
		f, ok, err := footprintFromTable(entry)
		if err != nil {
			convErr = err
			return
		}
		if !ok {
			// Degenerate entries are skipped, matching the rasterizer's
			// silent no-op for zero-area shapes.
			e.log.Warn("skipping degenerate scripted obstacle")
			return
		}
		footprints = append(footprints, f)
	})
	if convErr != nil {
		return nil, convErr
	}
	return footprints, nil
}

func footprintFromTable(t *lua.LTable) (nav.Footprint, bool, error) {
	kind := lua.LVAsString(t.RawGetString("kind"))
	switch kind {
	case "box":
		width := lFloat(t, "width")
		depth := lFloat(t, "depth")
		if width <= 0 || depth <= 0 {
			return nav.Footprint{}, false, nil
		}
		center := nav.Point{X: lFloat(t, "x"), Z: lFloat(t, "z")}
		rotation := lFloat(t, "rotation_deg") * degToRad
		return nav.RotatedBoxFootprint(center, width, depth, rotation), true, nil
	case "polygon":
		verts, ok := t.RawGetString("vertices").(*lua.LTable)
		if !ok {
			return nav.Footprint{}, false, nil
		}
		var points []nav.Point
		verts.ForEach(func(_, value lua.LValue) {
			if vt, ok := value.(*lua.LTable); ok {
				points = append(points, nav.Point{X: lFloat(vt, "x"), Z: lFloat(vt, "z")})
			}
		})
		if len(points) < 3 {
			return nav.Footprint{}, false, nil
		}
		return nav.PolygonFootprint(points), true, nil
	}
	return nav.Footprint{}, false, fmt.Errorf("unknown obstacle kind %q", kind)
}

const degToRad = 3.141592653589793 / 180

func lFloat(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}
