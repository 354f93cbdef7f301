package nav

import "math"

// Point is a position on the ground plane. X runs east, Z runs south;
// height is not modeled.
type Point struct {
	X float64
	Z float64
}

// Cell identifies one grid square by column and row index.
type Cell struct {
	Col int
	Row int
}

// Dimensions describes the fixed size of a grid.
type Dimensions struct {
	Cols     int
	Rows     int
	CellSize float64
}

// Grid is the obstacle occupancy grid over a world-space rectangle centered
// on the origin. Each cell carries a count of overlapping obstacle
// registrations; a cell is walkable while its count is zero. The grid size
// is fixed at construction, only occupancy mutates.
//
// Single-goroutine access only (tick loop). Callers that share a Grid across
// goroutines must serialize every call themselves.
type Grid struct {
	cols     int
	rows     int
	cellSize float64
	originX  float64 // world X of column 0's west edge
	originZ  float64 // world Z of row 0's north edge
	occupancy []uint16
}

// NewGrid builds an empty grid covering worldWidth × worldDepth centered on
// the world origin. Dimensions are rounded up to whole cells.
func NewGrid(worldWidth, worldDepth, cellSize float64) *Grid {
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldDepth / cellSize))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	return &Grid{
		cols:      cols,
		rows:      rows,
		cellSize:  cellSize,
		originX:   -float64(cols) * cellSize / 2,
		originZ:   -float64(rows) * cellSize / 2,
		occupancy: make([]uint16, cols*rows),
	}
}

// Dimensions returns the grid's fixed size.
func (g *Grid) Dimensions() Dimensions {
	return Dimensions{Cols: g.cols, Rows: g.rows, CellSize: g.cellSize}
}

// WorldToGrid converts a world position to cell indices. The result may be
// out of bounds; IsWalkable reports false for such cells rather than
// panicking, so callers can probe positions outside the world rectangle.
func (g *Grid) WorldToGrid(x, z float64) (col, row int) {
	col = int(math.Floor((x - g.originX) / g.cellSize))
	row = int(math.Floor((z - g.originZ) / g.cellSize))
	return col, row
}

// GridToWorld returns the world-space center of a cell.
func (g *Grid) GridToWorld(col, row int) Point {
	return Point{
		X: g.originX + (float64(col)+0.5)*g.cellSize,
		Z: g.originZ + (float64(row)+0.5)*g.cellSize,
	}
}

// CellBounds returns the world-space rectangle covered by a cell.
func (g *Grid) CellBounds(col, row int) (minX, minZ, maxX, maxZ float64) {
	minX = g.originX + float64(col)*g.cellSize
	minZ = g.originZ + float64(row)*g.cellSize
	return minX, minZ, minX + g.cellSize, minZ + g.cellSize
}

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *Grid) index(col, row int) int {
	return row*g.cols + col
}

// IsWalkable reports whether the cell is in bounds and free of obstacles.
func (g *Grid) IsWalkable(col, row int) bool {
	if !g.inBounds(col, row) {
		return false
	}
	return g.occupancy[g.index(col, row)] == 0
}

// AddObstacle rasterizes the footprint and increments the occupancy count of
// every covered cell. Overlapping registrations stack: each one must be
// removed with the same footprint shape it was added with.
func (g *Grid) AddObstacle(f Footprint) {
	g.forEachCoveredCell(f, func(idx int) {
		g.occupancy[idx]++
	})
}

// RemoveObstacle rasterizes the footprint and decrements the occupancy count
// of every covered cell. Counts never go below zero.
func (g *Grid) RemoveObstacle(f Footprint) {
	g.forEachCoveredCell(f, func(idx int) {
		if g.occupancy[idx] > 0 {
			g.occupancy[idx]--
		}
	})
}

// OccupancySnapshot copies the occupancy matrix for inspection (debug
// overlays etc). Row-major: snapshot[row][col]. The copy never aliases the
// live grid, so readers cannot mutate navigation state.
func (g *Grid) OccupancySnapshot() [][]uint16 {
	snap := make([][]uint16, g.rows)
	for row := 0; row < g.rows; row++ {
		snap[row] = make([]uint16, g.cols)
		copy(snap[row], g.occupancy[row*g.cols:(row+1)*g.cols])
	}
	return snap
}

// BlockedCellCount returns how many cells currently hold at least one
// obstacle registration.
func (g *Grid) BlockedCellCount() int {
	n := 0
	for _, c := range g.occupancy {
		if c > 0 {
			n++
		}
	}
	return n
}
