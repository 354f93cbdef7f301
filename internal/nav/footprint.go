package nav

import "math"

// FootprintKind discriminates the footprint payload.
type FootprintKind int

const (
	FootprintBox FootprintKind = iota
	FootprintPolygon
)

// Footprint is the world-space shape an obstacle blocks cells with. A box is
// described by center, width (X extent), depth (Z extent) and an optional
// rotation about the vertical axis; a polygon by its ordered ground-plane
// vertices. A cell is covered iff its center lies inside the shape, so a
// degenerate shape (zero area, fewer than three vertices) covers nothing.
type Footprint struct {
	Kind     FootprintKind
	Center   Point
	Width    float64
	Depth    float64
	Rotation float64 // radians, counterclockwise
	Vertices []Point
}

// BoxFootprint builds an axis-aligned box footprint.
func BoxFootprint(center Point, width, depth float64) Footprint {
	return Footprint{Kind: FootprintBox, Center: center, Width: width, Depth: depth}
}

// RotatedBoxFootprint builds a box footprint rotated by the given angle in
// radians.
func RotatedBoxFootprint(center Point, width, depth, rotation float64) Footprint {
	return Footprint{Kind: FootprintBox, Center: center, Width: width, Depth: depth, Rotation: rotation}
}

// PolygonFootprint builds a polygon footprint from ordered vertices.
func PolygonFootprint(vertices []Point) Footprint {
	return Footprint{Kind: FootprintPolygon, Vertices: vertices}
}

// forEachCoveredCell visits the index of every in-bounds cell whose center
// lies inside the footprint. Candidates are restricted to the cells whose
// range overlaps the shape's bounding box, so cost is proportional to the
// footprint's bounding-box cell count.
func (g *Grid) forEachCoveredCell(f Footprint, visit func(idx int)) {
	var minX, minZ, maxX, maxZ float64
	switch f.Kind {
	case FootprintBox:
		if f.Width <= 0 || f.Depth <= 0 {
			return
		}
		hw, hd := f.Width/2, f.Depth/2
		if f.Rotation != 0 {
			// Conservative bounds for the rotated rectangle.
			sin, cos := math.Sincos(f.Rotation)
			ex := math.Abs(cos)*hw + math.Abs(sin)*hd
			ez := math.Abs(sin)*hw + math.Abs(cos)*hd
			hw, hd = ex, ez
		}
		minX, maxX = f.Center.X-hw, f.Center.X+hw
		minZ, maxZ = f.Center.Z-hd, f.Center.Z+hd
	case FootprintPolygon:
		if len(f.Vertices) < 3 {
			return
		}
		minX, minZ = f.Vertices[0].X, f.Vertices[0].Z
		maxX, maxZ = minX, minZ
		for _, v := range f.Vertices[1:] {
			minX = math.Min(minX, v.X)
			maxX = math.Max(maxX, v.X)
			minZ = math.Min(minZ, v.Z)
			maxZ = math.Max(maxZ, v.Z)
		}
	default:
		return
	}

	minCol, minRow := g.WorldToGrid(minX, minZ)
	maxCol, maxRow := g.WorldToGrid(maxX, maxZ)
	if minCol < 0 {
		minCol = 0
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			center := g.GridToWorld(col, row)
			if f.contains(center) {
				visit(g.index(col, row))
			}
		}
	}
}

// contains reports whether the point lies inside the footprint shape.
func (f Footprint) contains(p Point) bool {
	switch f.Kind {
	case FootprintBox:
		dx := p.X - f.Center.X
		dz := p.Z - f.Center.Z
		if f.Rotation != 0 {
			// Rotate the point into the box's local frame.
			sin, cos := math.Sincos(-f.Rotation)
			dx, dz = dx*cos-dz*sin, dx*sin+dz*cos
		}
		return math.Abs(dx) <= f.Width/2 && math.Abs(dz) <= f.Depth/2
	case FootprintPolygon:
		return pointInPolygon(p, f.Vertices)
	}
	return false
}

// pointInPolygon is the even-odd ray crossing test.
func pointInPolygon(p Point, verts []Point) bool {
	inside := false
	j := len(verts) - 1
	for i := 0; i < len(verts); i++ {
		vi, vj := verts[i], verts[j]
		if (vi.Z > p.Z) != (vj.Z > p.Z) &&
			p.X < (vj.X-vi.X)*(p.Z-vi.Z)/(vj.Z-vi.Z)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
