package handler

import (
	"github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
)

// HandleIsWalkable processes C_IS_WALKABLE (opcode 12).
// Format: [opcode][x F][z F]
func HandleIsWalkable(sess *net.Session, r *packet.Reader, deps *Deps) {
	x, z := r.ReadF(), r.ReadF()
	sendBool(sess, packet.C_OPCODE_IS_WALKABLE, deps.Nav.IsWalkable(x, z))
}

// HandleDimensions processes C_DIMENSIONS (opcode 13).
// Response S_DIMENSIONS: [cols D][rows D][cellSize F]
func HandleDimensions(sess *net.Session, r *packet.Reader, deps *Deps) {
	dims := deps.Nav.Dimensions()
	w := packet.NewWriter(packet.S_OPCODE_DIMENSIONS)
	w.WriteD(uint32(dims.Cols))
	w.WriteD(uint32(dims.Rows))
	w.WriteF(dims.CellSize)
	sess.Send(w.Bytes())
}

// HandleSubscribeChanges processes C_SUBSCRIBE_CHANGES (opcode 30).
// Format: [opcode][on C] — nonzero subscribes the session to grid change
// notifications, zero unsubscribes.
func HandleSubscribeChanges(sess *net.Session, r *packet.Reader, deps *Deps) {
	sess.WantsChanges = r.ReadC() != 0
	sendAck(sess, packet.C_OPCODE_SUBSCRIBE_CHANGES)
}
