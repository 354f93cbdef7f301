package handler

import (
	"github.com/gridnav/server/internal/config"
	"github.com/gridnav/server/internal/core/event"
	"github.com/gridnav/server/internal/nav"
	"github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
	"github.com/gridnav/server/internal/persist"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config    *config.Config
	Log       *zap.Logger
	Nav       *nav.System
	Bus       *event.Bus
	Obstacles *ObstacleLedger
	Layouts   *persist.LayoutRepo // nil when persistence is disabled
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Handshake phase
	reg.Register(packet.C_OPCODE_HELLO,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, r *packet.Reader) {
			HandleHello(sess.(*net.Session), r, deps)
		},
	)

	// Query phase
	readyStates := []packet.SessionState{packet.StateReady}

	reg.Register(packet.C_OPCODE_FIND_PATH, readyStates,
		func(sess any, r *packet.Reader) {
			HandleFindPath(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CAN_REACH, readyStates,
		func(sess any, r *packet.Reader) {
			HandleCanReach(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_IS_WALKABLE, readyStates,
		func(sess any, r *packet.Reader) {
			HandleIsWalkable(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_DIMENSIONS, readyStates,
		func(sess any, r *packet.Reader) {
			HandleDimensions(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_ADD_BOX, readyStates,
		func(sess any, r *packet.Reader) {
			HandleAddBox(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_REMOVE_BOX, readyStates,
		func(sess any, r *packet.Reader) {
			HandleRemoveBox(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_ADD_POLYGON, readyStates,
		func(sess any, r *packet.Reader) {
			HandleAddPolygon(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_REMOVE_POLYGON, readyStates,
		func(sess any, r *packet.Reader) {
			HandleRemovePolygon(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_SUBSCRIBE_CHANGES, readyStates,
		func(sess any, r *packet.Reader) {
			HandleSubscribeChanges(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_SAVE_LAYOUT, readyStates,
		func(sess any, r *packet.Reader) {
			HandleSaveLayout(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_LOAD_LAYOUT, readyStates,
		func(sess any, r *packet.Reader) {
			HandleLoadLayout(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_LIST_LAYOUTS, readyStates,
		func(sess any, r *packet.Reader) {
			HandleListLayouts(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_DELETE_LAYOUT, readyStates,
		func(sess any, r *packet.Reader) {
			HandleDeleteLayout(sess.(*net.Session), r, deps)
		},
	)
}

// sendAck sends S_ACK echoing the request opcode.
func sendAck(sess *net.Session, reqOpcode byte) {
	w := packet.NewWriter(packet.S_OPCODE_ACK)
	w.WriteC(reqOpcode)
	sess.Send(w.Bytes())
}

// sendError sends S_ERROR echoing the request opcode with a message.
func sendError(sess *net.Session, reqOpcode byte, msg string) {
	w := packet.NewWriter(packet.S_OPCODE_ERROR)
	w.WriteC(reqOpcode)
	w.WriteS(msg)
	sess.Send(w.Bytes())
}

// sendBool sends S_BOOL_RESULT echoing the request opcode.
func sendBool(sess *net.Session, reqOpcode byte, v bool) {
	w := packet.NewWriter(packet.S_OPCODE_BOOL_RESULT)
	w.WriteC(reqOpcode)
	if v {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	sess.Send(w.Bytes())
}
