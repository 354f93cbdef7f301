package nav

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func newTestSystem() *System {
	s := NewSystem(zap.NewNop())
	s.Initialize(200, 200, 2)
	return s
}

func TestUninitializedOperationsReturnSafeDefaults(t *testing.T) {
	s := NewSystem(zap.NewNop())
	if s.Initialized() {
		t.Fatal("fresh system reports initialized")
	}
	if res := s.FindPath(Point{}, Point{X: 10}); res.Success || res.Waypoints != nil || res.Distance != 0 {
		t.Fatalf("uninitialized FindPath returned %+v", res)
	}
	if s.IsWalkable(0, 0) {
		t.Error("uninitialized IsWalkable returned true")
	}
	if s.CanReach(0, 0, 10, 10) {
		t.Error("uninitialized CanReach returned true")
	}
	if _, ok := s.WorldToGrid(0, 0); ok {
		t.Error("uninitialized WorldToGrid reported success")
	}
	if _, ok := s.GridToWorld(0, 0); ok {
		t.Error("uninitialized GridToWorld reported success")
	}
	if dim := s.Dimensions(); dim != (Dimensions{}) {
		t.Errorf("uninitialized Dimensions returned %+v", dim)
	}
	if snap := s.OccupancySnapshot(); snap != nil {
		t.Error("uninitialized OccupancySnapshot returned data")
	}
	// Obstacle calls must be harmless no-ops.
	s.AddBoxObstacle(0, 0, 10, 10)
	s.RemoveBoxObstacle(0, 0, 10, 10)
}

func TestDoubleInitializeKeepsFirstGrid(t *testing.T) {
	s := newTestSystem()
	s.Initialize(50, 50, 1)
	dim := s.Dimensions()
	if dim.Cols != 100 || dim.Rows != 100 || dim.CellSize != 2 {
		t.Fatalf("second Initialize resized the grid: %+v", dim)
	}
}

func TestDisposeReturnsToUninitialized(t *testing.T) {
	s := newTestSystem()
	s.Dispose()
	if s.Initialized() {
		t.Fatal("system still initialized after Dispose")
	}
	if res := s.FindPath(Point{}, Point{X: 10}); res.Success {
		t.Fatal("FindPath succeeded after Dispose")
	}
	s.Initialize(40, 40, 2)
	if dim := s.Dimensions(); dim.Cols != 20 || dim.Rows != 20 {
		t.Fatalf("re-initialize after Dispose produced %+v", dim)
	}
}

func TestFindPathStraightLineOnEmptyGrid(t *testing.T) {
	s := newTestSystem()
	res := s.FindPath(Point{X: -20}, Point{X: 20})
	if !res.Success {
		t.Fatal("expected success on an empty grid")
	}
	if len(res.Waypoints) != 2 {
		t.Fatalf("expected 2 waypoints after simplification, got %d: %v",
			len(res.Waypoints), res.Waypoints)
	}
	if res.Waypoints[1] != (Point{X: 20}) {
		t.Fatalf("final waypoint %v, expected the exact requested end", res.Waypoints[1])
	}
	want := polylineLength(res.Waypoints)
	if math.Abs(res.Distance-want) > 1e-9 {
		t.Fatalf("distance %v does not match waypoint polyline length %v", res.Distance, want)
	}
}

func TestFindPathDetoursAroundCentralObstacle(t *testing.T) {
	s := newTestSystem()
	s.AddBoxObstacle(0, 0, 10, 10)

	res := s.FindPath(Point{X: -20}, Point{X: 20})
	if !res.Success {
		t.Fatal("expected a path around the obstacle")
	}
	if res.Distance <= 40 {
		t.Fatalf("distance %v should exceed the 40-unit straight line", res.Distance)
	}
	for i, wp := range res.Waypoints {
		col, row := s.grid.WorldToGrid(wp.X, wp.Z)
		if i > 0 && !s.grid.IsWalkable(col, row) {
			t.Fatalf("waypoint %d at (%v, %v) resolves to a blocked cell", i, wp.X, wp.Z)
		}
		if wp.X >= -5 && wp.X <= 5 && wp.Z >= -5 && wp.Z <= 5 {
			t.Fatalf("waypoint %d at (%v, %v) lies inside the obstacle", i, wp.X, wp.Z)
		}
	}
	for i := 1; i < len(res.Waypoints); i++ {
		if !hasLineOfSight(s.grid, res.Waypoints[i-1], res.Waypoints[i]) {
			t.Fatalf("no line of sight between waypoints %d and %d", i-1, i)
		}
	}
}

func TestFindPathEndpointExactness(t *testing.T) {
	s := newTestSystem()
	end := Point{X: 13.37, Z: -42.5}
	res := s.FindPath(Point{X: -31.2, Z: 8.8}, end)
	if !res.Success {
		t.Fatal("expected success on an empty grid")
	}
	if got := res.Waypoints[len(res.Waypoints)-1]; got != end {
		t.Fatalf("final waypoint %v, expected exact end %v", got, end)
	}
}

func TestFindPathStartInsideObstacle(t *testing.T) {
	s := newTestSystem()
	s.AddBoxObstacle(0, 0, 10, 10)
	res := s.FindPath(Point{}, Point{X: 20})
	if !res.Success {
		t.Fatal("expected the start to relocate to a nearby walkable cell")
	}
	for i := 1; i < len(res.Waypoints); i++ {
		col, row := s.grid.WorldToGrid(res.Waypoints[i].X, res.Waypoints[i].Z)
		if !s.grid.IsWalkable(col, row) {
			t.Fatalf("waypoint %d resolves to a blocked cell", i)
		}
	}
}

func TestFindPathTargetInsideObstacleClampsIntoResolvedCell(t *testing.T) {
	s := newTestSystem()
	s.AddBoxObstacle(0, 0, 10, 10)

	res := s.FindPath(Point{X: -20}, Point{})
	if !res.Success {
		t.Fatal("expected fallback to a boundary cell")
	}
	final := res.Waypoints[len(res.Waypoints)-1]
	col, row := s.grid.WorldToGrid(final.X, final.Z)
	if !s.grid.IsWalkable(col, row) {
		t.Fatalf("clamped endpoint (%v, %v) resolves to a blocked cell", final.X, final.Z)
	}
	// The endpoint must hug the obstacle boundary rather than stop at a
	// distant cell center.
	if dist := math.Hypot(final.X, final.Z); dist > 12 {
		t.Fatalf("clamped endpoint (%v, %v) is %v units from the target, too far", final.X, final.Z, dist)
	}
}

func TestFindPathFailsWhenTargetBeyondSearchRadius(t *testing.T) {
	s := newTestSystem()
	s.AddBoxObstacle(0, 0, 50, 50)
	res := s.FindPath(Point{X: -60}, Point{})
	if res.Success {
		t.Fatal("target deep inside an oversized obstacle should fail")
	}
	if res.Waypoints != nil || res.Distance != 0 {
		t.Fatalf("failed result should be empty, got %+v", res)
	}
}

func TestSearchRadiusOverride(t *testing.T) {
	s := newTestSystem()
	s.AddBoxObstacle(0, 0, 50, 50)
	s.SetSearchRadius(20)
	if res := s.FindPath(Point{X: -60}, Point{}); !res.Success {
		t.Fatal("widened search radius should reach past the oversized obstacle")
	}
}

func TestClosestWalkableCellScanOrder(t *testing.T) {
	s := newTestSystem()
	// Block exactly the cell whose center is (1, 1).
	s.AddBoxObstacle(1, 1, 2, 2)
	origin := Cell{Col: 50, Row: 50}
	if s.grid.IsWalkable(origin.Col, origin.Row) {
		t.Fatal("setup: origin cell should be blocked")
	}
	resolved, ok := closestWalkableCell(s.grid, origin, defaultSearchRadius)
	if !ok {
		t.Fatal("expected a walkable neighbor")
	}
	// Ring order starts at the top row scanning west to east.
	if resolved != (Cell{Col: 49, Row: 49}) {
		t.Fatalf("resolved %v, expected the northwest neighbor first", resolved)
	}
}

func TestSimplifiedPathKeepsLineOfSight(t *testing.T) {
	s := newTestSystem()
	s.AddBoxObstacle(-10, 0, 8, 30)
	s.AddBoxObstacle(10, -10, 8, 30)
	s.AddObstacle(PolygonFootprint([]Point{{30, 10}, {45, 10}, {38, 28}}))

	res := s.FindPath(Point{X: -40, Z: 0}, Point{X: 50, Z: 20})
	if !res.Success {
		t.Fatal("expected a path through the obstacle field")
	}
	for i := 1; i < len(res.Waypoints); i++ {
		if !hasLineOfSight(s.grid, res.Waypoints[i-1], res.Waypoints[i]) {
			t.Fatalf("simplified pair %d-%d lost line of sight", i-1, i)
		}
	}
}

func TestFindPathDeterminism(t *testing.T) {
	s := newTestSystem()
	s.AddBoxObstacle(0, 0, 10, 10)
	s.AddBoxObstacle(-14, 6, 6, 6)

	first := s.FindPath(Point{X: -30, Z: -2}, Point{X: 30, Z: 4})
	second := s.FindPath(Point{X: -30, Z: -2}, Point{X: 30, Z: 4})
	if first.Success != second.Success || len(first.Waypoints) != len(second.Waypoints) {
		t.Fatalf("repeated search diverged: %+v vs %+v", first, second)
	}
	for i := range first.Waypoints {
		if first.Waypoints[i] != second.Waypoints[i] {
			t.Fatalf("waypoint %d diverged: %v vs %v", i, first.Waypoints[i], second.Waypoints[i])
		}
	}
	if first.Distance != second.Distance {
		t.Fatalf("distance diverged: %v vs %v", first.Distance, second.Distance)
	}
}

func TestCanReachMatchesFindPath(t *testing.T) {
	s := newTestSystem()
	s.AddBoxObstacle(0, 0, 10, 10)
	s.AddBoxObstacle(0, 0, 50, 50)

	cases := []struct {
		sx, sz, ex, ez float64
	}{
		{-20, 0, 20, 0},
		{-40, -40, 40, 40},
		{-20, 0, 0, 0},   // target inside obstacle
		{0, 0, 20, 0},    // start inside obstacle
		{-90, -90, 90, 90},
	}
	for _, tc := range cases {
		want := s.FindPath(Point{X: tc.sx, Z: tc.sz}, Point{X: tc.ex, Z: tc.ez}).Success &&
			s.IsWalkable(tc.sx, tc.sz) && s.IsWalkable(tc.ex, tc.ez)
		if got := s.CanReach(tc.sx, tc.sz, tc.ex, tc.ez); got != want {
			t.Errorf("CanReach(%v, %v, %v, %v) = %v, expected %v",
				tc.sx, tc.sz, tc.ex, tc.ez, got, want)
		}
	}
}

func TestCanReachShortCircuitNearbyPoints(t *testing.T) {
	s := newTestSystem()
	if !s.CanReach(0.5, 0.5, 1.5, 1.5) {
		t.Error("points sharing a cell should be reachable")
	}
	if !s.CanReach(-1, -1, 3, 3) {
		t.Error("adjacent walkable cells should be reachable")
	}
	// A blocked cell between two near points fails the direct visibility
	// check, which is the documented short-circuit behavior.
	s.AddBoxObstacle(1, 1, 2, 2)
	if s.CanReach(-1, -1, 3, 3) {
		t.Error("blocked cell between near points should fail the direct check")
	}
}

func TestSameCellPathEndsAtExactTarget(t *testing.T) {
	s := newTestSystem()
	res := s.FindPath(Point{X: 0.2, Z: 0.3}, Point{X: 1.4, Z: 0.9})
	if !res.Success {
		t.Fatal("expected success within a single cell")
	}
	if got := res.Waypoints[len(res.Waypoints)-1]; got != (Point{X: 1.4, Z: 0.9}) {
		t.Fatalf("final waypoint %v, expected the exact end", got)
	}
}
