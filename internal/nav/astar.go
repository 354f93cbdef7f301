package nav

import (
	"container/heap"
	"math"
)

// neighborOffsets enumerates 8-directional connectivity. Cardinal steps cost
// 1, diagonal steps cost √2.
var neighborOffsets = [...]struct {
	dc, dr int
	cost   float64
}{
	{dc: 0, dr: -1, cost: 1},
	{dc: 1, dr: 0, cost: 1},
	{dc: 0, dr: 1, cost: 1},
	{dc: -1, dr: 0, cost: 1},
	{dc: 1, dr: -1, cost: math.Sqrt2},
	{dc: 1, dr: 1, cost: math.Sqrt2},
	{dc: -1, dr: 1, cost: math.Sqrt2},
	{dc: -1, dr: -1, cost: math.Sqrt2},
}

const (
	nodeUnseen uint8 = iota
	nodeOpen
	nodeClosed
)

// searchNode lives in a flat arena indexed row*cols+col. parent is an arena
// index, not a pointer; gen stamps which search the entry belongs to so the
// arena is reset by bumping a counter instead of clearing memory.
type searchNode struct {
	gCost  float64
	hCost  float64
	fCost  float64
	parent int32
	gen    uint32
	state  uint8
}

// searchArena holds the reusable A* working set for one grid.
type searchArena struct {
	nodes []searchNode
	open  openHeap
	gen   uint32
}

func newSearchArena(cols, rows int) *searchArena {
	a := &searchArena{nodes: make([]searchNode, cols*rows)}
	a.open.arena = a
	return a
}

func (a *searchArena) reset() {
	a.gen++
	a.open.items = a.open.items[:0]
}

// node returns the entry at idx, initializing it if it belongs to an earlier
// search.
func (a *searchArena) node(idx int32) *searchNode {
	n := &a.nodes[idx]
	if n.gen != a.gen {
		*n = searchNode{parent: -1, gen: a.gen}
	}
	return n
}

// openHeap is a min-heap of arena indices ordered by fCost, ties broken by
// hCost so the search prefers nodes closer to the goal.
type openHeap struct {
	arena *searchArena
	items []int32
}

func (h *openHeap) Len() int { return len(h.items) }

func (h *openHeap) Less(i, j int) bool {
	a, b := &h.arena.nodes[h.items[i]], &h.arena.nodes[h.items[j]]
	if a.fCost != b.fCost {
		return a.fCost < b.fCost
	}
	return a.hCost < b.hCost
}

func (h *openHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *openHeap) Push(x any) { h.items = append(h.items, x.(int32)) }

func (h *openHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// octileDistance is the admissible heuristic for 8-directional movement with
// √2 diagonal cost.
func octileDistance(a, b Cell) float64 {
	dc := math.Abs(float64(a.Col - b.Col))
	dr := math.Abs(float64(a.Row - b.Row))
	if dc < dr {
		return dc*math.Sqrt2 + (dr - dc)
	}
	return dr*math.Sqrt2 + (dc - dr)
}

// findCellPath runs A* from start to goal over walkable cells and returns
// the cell sequence including both endpoints, or nil if the goal is
// unreachable. Both endpoints must be walkable.
func findCellPath(g *Grid, arena *searchArena, start, goal Cell) []Cell {
	if start == goal {
		return []Cell{start}
	}

	arena.reset()
	startIdx := int32(g.index(start.Col, start.Row))
	sn := arena.node(startIdx)
	sn.hCost = octileDistance(start, goal)
	sn.fCost = sn.hCost
	sn.state = nodeOpen
	heap.Push(&arena.open, startIdx)

	goalIdx := int32(g.index(goal.Col, goal.Row))

	for arena.open.Len() > 0 {
		currentIdx := heap.Pop(&arena.open).(int32)
		current := arena.node(currentIdx)
		if current.state == nodeClosed {
			continue // stale heap entry, already expanded via a cheaper route
		}
		current.state = nodeClosed

		if currentIdx == goalIdx {
			return reconstructCellPath(g, arena, currentIdx)
		}

		col := int(currentIdx) % g.cols
		row := int(currentIdx) / g.cols

		for _, off := range neighborOffsets {
			nc, nr := col+off.dc, row+off.dr
			if !g.IsWalkable(nc, nr) {
				continue
			}
			nIdx := int32(g.index(nc, nr))
			neighbor := arena.node(nIdx)
			if neighbor.state == nodeClosed {
				continue
			}
			tentativeG := current.gCost + off.cost
			if neighbor.state == nodeOpen && tentativeG >= neighbor.gCost {
				continue
			}
			neighbor.gCost = tentativeG
			neighbor.hCost = octileDistance(Cell{Col: nc, Row: nr}, goal)
			neighbor.fCost = tentativeG + neighbor.hCost
			neighbor.parent = currentIdx
			neighbor.state = nodeOpen
			// Duplicate heap entries are fine: the closed check above skips
			// the stale one.
			heap.Push(&arena.open, nIdx)
		}
	}
	return nil
}

func reconstructCellPath(g *Grid, arena *searchArena, endIdx int32) []Cell {
	var path []Cell
	for idx := endIdx; idx >= 0; idx = arena.nodes[idx].parent {
		path = append(path, Cell{Col: int(idx) % g.cols, Row: int(idx) / g.cols})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
