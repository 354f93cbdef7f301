package nav

import (
	"math"

	"go.uber.org/zap"
)

// defaultSearchRadius caps the expanding ring search for the nearest
// walkable cell around an unwalkable endpoint.
const defaultSearchRadius = 10

// Result is the outcome of a pathfinding request. Waypoints are world-space
// positions; the first one is the starting cell's center and movement code
// is expected to skip it. Distance is the summed Euclidean length of the
// waypoint polyline, zero on failure.
type Result struct {
	Success   bool
	Waypoints []Point
	Distance  float64
}

// System is the planning façade over one navigation grid. It is created
// empty; Initialize builds the grid and Dispose releases it. While
// uninitialized every operation logs a warning and returns a safe default
// instead of panicking, so callers can probe freely during teardown.
//
// Like the grid it owns, a System is confined to a single goroutine.
type System struct {
	grid         *Grid
	arena        *searchArena
	searchRadius int
	log          *zap.Logger
}

// NewSystem creates an uninitialized navigation system.
func NewSystem(log *zap.Logger) *System {
	return &System{
		searchRadius: defaultSearchRadius,
		log:          log,
	}
}

// Initialize builds the navigation grid for a world rectangle. A second call
// while initialized is rejected with a warning; Dispose first to resize.
func (s *System) Initialize(worldWidth, worldDepth, cellSize float64) {
	if s.grid != nil {
		s.log.Warn("nav system already initialized, ignoring",
			zap.Float64("world_width", worldWidth),
			zap.Float64("world_depth", worldDepth),
		)
		return
	}
	if worldWidth <= 0 || worldDepth <= 0 || cellSize <= 0 {
		s.log.Warn("nav system initialize with non-positive dimensions, ignoring",
			zap.Float64("world_width", worldWidth),
			zap.Float64("world_depth", worldDepth),
			zap.Float64("cell_size", cellSize),
		)
		return
	}
	s.grid = NewGrid(worldWidth, worldDepth, cellSize)
	dim := s.grid.Dimensions()
	s.arena = newSearchArena(dim.Cols, dim.Rows)
	s.log.Info("nav grid initialized",
		zap.Int("cols", dim.Cols),
		zap.Int("rows", dim.Rows),
		zap.Float64("cell_size", dim.CellSize),
	)
}

// Dispose releases the grid and returns the system to the uninitialized
// state.
func (s *System) Dispose() {
	s.grid = nil
	s.arena = nil
}

// Initialized reports whether the system currently owns a grid.
func (s *System) Initialized() bool {
	return s.grid != nil
}

// SetSearchRadius overrides the closest-walkable-cell ring search cap.
// Values below one are ignored.
func (s *System) SetSearchRadius(radius int) {
	if radius >= 1 {
		s.searchRadius = radius
	}
}

// ready guards every public operation against the uninitialized state.
func (s *System) ready(op string) bool {
	if s.grid == nil {
		s.log.Warn("nav system not initialized", zap.String("op", op))
		return false
	}
	return true
}

// AddObstacle registers a footprint with the grid.
func (s *System) AddObstacle(f Footprint) {
	if !s.ready("AddObstacle") {
		return
	}
	s.grid.AddObstacle(f)
}

// RemoveObstacle unregisters a footprint. The shape must match a prior
// AddObstacle call for the occupancy counts to balance.
func (s *System) RemoveObstacle(f Footprint) {
	if !s.ready("RemoveObstacle") {
		return
	}
	s.grid.RemoveObstacle(f)
}

// AddBoxObstacle registers an axis-aligned box centered at (x, z).
func (s *System) AddBoxObstacle(x, z, width, depth float64) {
	s.AddObstacle(BoxFootprint(Point{X: x, Z: z}, width, depth))
}

// RemoveBoxObstacle unregisters a box added with AddBoxObstacle.
func (s *System) RemoveBoxObstacle(x, z, width, depth float64) {
	s.RemoveObstacle(BoxFootprint(Point{X: x, Z: z}, width, depth))
}

// IsWalkable reports whether the world position falls on a walkable cell.
func (s *System) IsWalkable(x, z float64) bool {
	if !s.ready("IsWalkable") {
		return false
	}
	col, row := s.grid.WorldToGrid(x, z)
	return s.grid.IsWalkable(col, row)
}

// WorldToGrid converts a world position to cell indices, reporting false if
// the position is outside the grid.
func (s *System) WorldToGrid(x, z float64) (Cell, bool) {
	if !s.ready("WorldToGrid") {
		return Cell{}, false
	}
	col, row := s.grid.WorldToGrid(x, z)
	if !s.grid.inBounds(col, row) {
		return Cell{}, false
	}
	return Cell{Col: col, Row: row}, true
}

// GridToWorld returns the world-space center of a cell, reporting false if
// the indices are out of bounds.
func (s *System) GridToWorld(col, row int) (Point, bool) {
	if !s.ready("GridToWorld") {
		return Point{}, false
	}
	if !s.grid.inBounds(col, row) {
		return Point{}, false
	}
	return s.grid.GridToWorld(col, row), true
}

// Dimensions returns the grid dimensions, or zero values while
// uninitialized.
func (s *System) Dimensions() Dimensions {
	if !s.ready("Dimensions") {
		return Dimensions{}
	}
	return s.grid.Dimensions()
}

// OccupancySnapshot copies the occupancy matrix for external inspection.
func (s *System) OccupancySnapshot() [][]uint16 {
	if !s.ready("OccupancySnapshot") {
		return nil
	}
	return s.grid.OccupancySnapshot()
}

// Grid exposes the underlying grid for read-only collaborators. May be nil.
func (s *System) Grid() *Grid {
	return s.grid
}

// FindPath plans a walkable, simplified waypoint path between two world
// positions. Endpoints on blocked cells are relocated to the nearest
// walkable cell within the ring search radius; if the end cell had to be
// relocated the final waypoint is the original target clamped into the
// resolved cell, otherwise it is the exact requested end position.
func (s *System) FindPath(start, end Point) Result {
	if !s.ready("FindPath") {
		return Result{}
	}

	startCol, startRow := s.grid.WorldToGrid(start.X, start.Z)
	endCol, endRow := s.grid.WorldToGrid(end.X, end.Z)

	startCell := Cell{Col: startCol, Row: startRow}
	if !s.grid.IsWalkable(startCol, startRow) {
		resolved, ok := closestWalkableCell(s.grid, startCell, s.searchRadius)
		if !ok {
			return Result{}
		}
		startCell = resolved
	}

	endCell := Cell{Col: endCol, Row: endRow}
	endRelocated := false
	if !s.grid.IsWalkable(endCol, endRow) {
		resolved, ok := closestWalkableCell(s.grid, endCell, s.searchRadius)
		if !ok {
			return Result{}
		}
		endCell = resolved
		endRelocated = true
	}

	cells := findCellPath(s.grid, s.arena, startCell, endCell)
	if cells == nil {
		return Result{}
	}

	waypoints := make([]Point, len(cells))
	for i, c := range cells {
		waypoints[i] = s.grid.GridToWorld(c.Col, c.Row)
	}
	if len(waypoints) == 1 {
		// Start and end share a cell: keep the cell center as the skipped
		// first waypoint and let endpoint correction place the real target.
		waypoints = append(waypoints, waypoints[0])
	}

	waypoints = simplifyPath(s.grid, waypoints)

	last := len(waypoints) - 1
	if endRelocated {
		waypoints[last] = clampIntoCell(s.grid, end, endCell)
	} else {
		waypoints[last] = end
	}

	return Result{
		Success:   true,
		Waypoints: waypoints,
		Distance:  polylineLength(waypoints),
	}
}

// CanReach is a cheaper existence check than FindPath. It fails fast on
// unwalkable endpoints, answers nearby queries with a direct line-of-sight
// test, and falls back to a full path search otherwise.
func (s *System) CanReach(startX, startZ, endX, endZ float64) bool {
	if !s.ready("CanReach") {
		return false
	}
	startCol, startRow := s.grid.WorldToGrid(startX, startZ)
	endCol, endRow := s.grid.WorldToGrid(endX, endZ)
	if !s.grid.IsWalkable(startCol, startRow) || !s.grid.IsWalkable(endCol, endRow) {
		return false
	}
	if chebyshev(startCol, startRow, endCol, endRow) <= 2 {
		return cellLineWalkable(s.grid, startCol, startRow, endCol, endRow)
	}
	return s.FindPath(Point{X: startX, Z: startZ}, Point{X: endX, Z: endZ}).Success
}

// closestWalkableCell scans Chebyshev rings of increasing radius around the
// origin cell and returns the first walkable cell found. Each ring is
// scanned in a fixed order — top row west to east, bottom row west to east,
// then the remaining west and east columns north to south — so equally
// distant candidates resolve deterministically.
func closestWalkableCell(g *Grid, origin Cell, maxRadius int) (Cell, bool) {
	for radius := 1; radius <= maxRadius; radius++ {
		top := origin.Row - radius
		bottom := origin.Row + radius
		left := origin.Col - radius
		right := origin.Col + radius

		for col := left; col <= right; col++ {
			if g.IsWalkable(col, top) {
				return Cell{Col: col, Row: top}, true
			}
		}
		for col := left; col <= right; col++ {
			if g.IsWalkable(col, bottom) {
				return Cell{Col: col, Row: bottom}, true
			}
		}
		for row := top + 1; row <= bottom-1; row++ {
			if g.IsWalkable(left, row) {
				return Cell{Col: left, Row: row}, true
			}
		}
		for row := top + 1; row <= bottom-1; row++ {
			if g.IsWalkable(right, row) {
				return Cell{Col: right, Row: row}, true
			}
		}
	}
	return Cell{}, false
}

// clampIntoCell pulls a world position into the bounds of a cell, so agents
// get as close as geometrically possible to a blocked target without
// leaving the reachable cell. The bounds are inset by a sliver of the cell
// size: a point on the shared edge would floor-divide into the neighboring
// (blocked) cell on a later walkability probe.
func clampIntoCell(g *Grid, p Point, cell Cell) Point {
	minX, minZ, maxX, maxZ := g.CellBounds(cell.Col, cell.Row)
	inset := g.cellSize * 1e-3
	return Point{
		X: clampFloat(p.X, minX+inset, maxX-inset),
		Z: clampFloat(p.Z, minZ+inset, maxZ-inset),
	}
}

func polylineLength(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += math.Hypot(points[i].X-points[i-1].X, points[i].Z-points[i-1].Z)
	}
	return total
}

func chebyshev(c0, r0, c1, r1 int) int {
	dc := abs(c1 - c0)
	dr := abs(r1 - r0)
	if dc > dr {
		return dc
	}
	return dr
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
