package handler

import "github.com/gridnav/server/internal/nav"

// ObstacleLedger tracks the footprints currently registered with the grid so
// the live placement can be saved as a layout and swapped out when one is
// loaded. Accessed only from the tick loop goroutine.
type ObstacleLedger struct {
	footprints []nav.Footprint
}

func NewObstacleLedger() *ObstacleLedger {
	return &ObstacleLedger{}
}

func (l *ObstacleLedger) Add(f nav.Footprint) {
	l.footprints = append(l.footprints, f)
}

// RemoveMatch drops the first footprint equal to f. Reports whether a match
// was found.
func (l *ObstacleLedger) RemoveMatch(f nav.Footprint) bool {
	for i, c := range l.footprints {
		if footprintEqual(c, f) {
			l.footprints = append(l.footprints[:i], l.footprints[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the ledger contents, as when a stored layout is applied.
func (l *ObstacleLedger) Replace(footprints []nav.Footprint) {
	l.footprints = append(l.footprints[:0:0], footprints...)
}

// All returns a copy of the registered footprints.
func (l *ObstacleLedger) All() []nav.Footprint {
	return append([]nav.Footprint(nil), l.footprints...)
}

func (l *ObstacleLedger) Count() int {
	return len(l.footprints)
}

func footprintEqual(a, b nav.Footprint) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case nav.FootprintBox:
		return a.Center == b.Center && a.Width == b.Width &&
			a.Depth == b.Depth && a.Rotation == b.Rotation
	case nav.FootprintPolygon:
		if len(a.Vertices) != len(b.Vertices) {
			return false
		}
		for i := range a.Vertices {
			if a.Vertices[i] != b.Vertices[i] {
				return false
			}
		}
		return true
	}
	return false
}

// footprintCenter returns the box center or the polygon vertex average,
// used for change notifications.
func footprintCenter(f nav.Footprint) (float64, float64) {
	if f.Kind == nav.FootprintBox || len(f.Vertices) == 0 {
		return f.Center.X, f.Center.Z
	}
	var sx, sz float64
	for _, v := range f.Vertices {
		sx += v.X
		sz += v.Z
	}
	n := float64(len(f.Vertices))
	return sx / n, sz / n
}
