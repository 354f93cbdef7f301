package handler

import (
	"github.com/gridnav/server/internal/nav"
	"github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
)

// HandleFindPath processes C_FIND_PATH (opcode 10).
// Format: [opcode][startX F][startZ F][endX F][endZ F]
// Response S_PATH_RESULT: [success C][count H][count × (x F, z F)][distance F]
func HandleFindPath(sess *net.Session, r *packet.Reader, deps *Deps) {
	start := nav.Point{X: r.ReadF(), Z: r.ReadF()}
	end := nav.Point{X: r.ReadF(), Z: r.ReadF()}

	res := deps.Nav.FindPath(start, end)

	w := packet.NewWriter(packet.S_OPCODE_PATH_RESULT)
	if res.Success {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	w.WriteH(uint16(len(res.Waypoints)))
	for _, p := range res.Waypoints {
		w.WriteF(p.X)
		w.WriteF(p.Z)
	}
	w.WriteF(res.Distance)
	sess.Send(w.Bytes())
}

// HandleCanReach processes C_CAN_REACH (opcode 11).
// Format: [opcode][startX F][startZ F][endX F][endZ F]
func HandleCanReach(sess *net.Session, r *packet.Reader, deps *Deps) {
	startX, startZ := r.ReadF(), r.ReadF()
	endX, endZ := r.ReadF(), r.ReadF()
	sendBool(sess, packet.C_OPCODE_CAN_REACH, deps.Nav.CanReach(startX, startZ, endX, endZ))
}
