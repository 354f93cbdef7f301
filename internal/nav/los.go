package nav

// hasLineOfSight reports whether every cell on the grid line between two
// world positions is walkable. The line is walked with Bresenham's
// algorithm over cell indices, including both endpoint cells.
func hasLineOfSight(g *Grid, from, to Point) bool {
	c0, r0 := g.WorldToGrid(from.X, from.Z)
	c1, r1 := g.WorldToGrid(to.X, to.Z)
	return cellLineWalkable(g, c0, r0, c1, r1)
}

func cellLineWalkable(g *Grid, c0, r0, c1, r1 int) bool {
	dc := abs(c1 - c0)
	dr := abs(r1 - r0)
	stepC, stepR := 1, 1
	if c1 < c0 {
		stepC = -1
	}
	if r1 < r0 {
		stepR = -1
	}

	errTerm := dc - dr
	col, row := c0, r0
	for {
		if !g.IsWalkable(col, row) {
			return false
		}
		if col == c1 && row == r1 {
			return true
		}
		e2 := 2 * errTerm
		if e2 > -dr {
			errTerm -= dr
			col += stepC
		}
		if e2 < dc {
			errTerm += dc
			row += stepR
		}
	}
}

// simplifyPath greedily drops interior waypoints that are in direct line of
// sight of an earlier kept waypoint. Only mutually visible points are
// merged, so the simplified polyline never crosses a blocked cell the raw
// path avoided.
func simplifyPath(g *Grid, points []Point) []Point {
	if len(points) <= 2 {
		return points
	}
	simplified := make([]Point, 0, len(points))
	simplified = append(simplified, points[0])
	anchor := 0
	for anchor < len(points)-1 {
		next := anchor + 1
		for j := len(points) - 1; j > anchor+1; j-- {
			if hasLineOfSight(g, points[anchor], points[j]) {
				next = j
				break
			}
		}
		simplified = append(simplified, points[next])
		anchor = next
	}
	return simplified
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
