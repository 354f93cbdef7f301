package handler

import (
	"github.com/gridnav/server/internal/core/event"
	"github.com/gridnav/server/internal/nav"
	"github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
)

// HandleAddBox processes C_ADD_BOX (opcode 20).
// Format: [opcode][centerX F][centerZ F][width F][depth F][rotation F radians]
func HandleAddBox(sess *net.Session, r *packet.Reader, deps *Deps) {
	f := readBoxFootprint(r)
	if f.Width <= 0 || f.Depth <= 0 {
		sendError(sess, packet.C_OPCODE_ADD_BOX, "degenerate box")
		return
	}
	deps.Nav.AddObstacle(f)
	deps.Obstacles.Add(f)
	emitObstacleChange(deps, sess.ID, f, true)
	sendAck(sess, packet.C_OPCODE_ADD_BOX)
}

// HandleRemoveBox processes C_REMOVE_BOX (opcode 21). The fields must match
// a previously added box exactly.
func HandleRemoveBox(sess *net.Session, r *packet.Reader, deps *Deps) {
	f := readBoxFootprint(r)
	if !deps.Obstacles.RemoveMatch(f) {
		sendError(sess, packet.C_OPCODE_REMOVE_BOX, "no such obstacle")
		return
	}
	deps.Nav.RemoveObstacle(f)
	emitObstacleChange(deps, sess.ID, f, false)
	sendAck(sess, packet.C_OPCODE_REMOVE_BOX)
}

// HandleAddPolygon processes C_ADD_POLYGON (opcode 22).
// Format: [opcode][count H][count × (x F, z F)]
func HandleAddPolygon(sess *net.Session, r *packet.Reader, deps *Deps) {
	f, ok := readPolygonFootprint(r)
	if !ok {
		sendError(sess, packet.C_OPCODE_ADD_POLYGON, "polygon needs at least 3 vertices")
		return
	}
	deps.Nav.AddObstacle(f)
	deps.Obstacles.Add(f)
	emitObstacleChange(deps, sess.ID, f, true)
	sendAck(sess, packet.C_OPCODE_ADD_POLYGON)
}

// HandleRemovePolygon processes C_REMOVE_POLYGON (opcode 23).
func HandleRemovePolygon(sess *net.Session, r *packet.Reader, deps *Deps) {
	f, ok := readPolygonFootprint(r)
	if !ok {
		sendError(sess, packet.C_OPCODE_REMOVE_POLYGON, "polygon needs at least 3 vertices")
		return
	}
	if !deps.Obstacles.RemoveMatch(f) {
		sendError(sess, packet.C_OPCODE_REMOVE_POLYGON, "no such obstacle")
		return
	}
	deps.Nav.RemoveObstacle(f)
	emitObstacleChange(deps, sess.ID, f, false)
	sendAck(sess, packet.C_OPCODE_REMOVE_POLYGON)
}

func readBoxFootprint(r *packet.Reader) nav.Footprint {
	center := nav.Point{X: r.ReadF(), Z: r.ReadF()}
	width, depth := r.ReadF(), r.ReadF()
	rotation := r.ReadF()
	return nav.RotatedBoxFootprint(center, width, depth, rotation)
}

func readPolygonFootprint(r *packet.Reader) (nav.Footprint, bool) {
	count := int(r.ReadH())
	if count < 3 || count > r.Remaining()/16 {
		return nav.Footprint{}, false
	}
	verts := make([]nav.Point, count)
	for i := range verts {
		verts[i] = nav.Point{X: r.ReadF(), Z: r.ReadF()}
	}
	return nav.PolygonFootprint(verts), true
}

func emitObstacleChange(deps *Deps, sessionID uint64, f nav.Footprint, added bool) {
	cx, cz := footprintCenter(f)
	if added {
		event.Emit(deps.Bus, event.ObstacleAdded{
			SessionID: sessionID,
			Kind:      int(f.Kind),
			CenterX:   cx,
			CenterZ:   cz,
		})
	} else {
		event.Emit(deps.Bus, event.ObstacleRemoved{
			SessionID: sessionID,
			Kind:      int(f.Kind),
			CenterX:   cx,
			CenterZ:   cz,
		})
	}
}
