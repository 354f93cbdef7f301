package system

import (
	"time"

	"github.com/gridnav/server/internal/core/event"
	coresys "github.com/gridnav/server/internal/core/system"
	"github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
	"go.uber.org/zap"
)

// Change discriminators in S_GRID_CHANGED.
const (
	gridChangeAdded   byte = 0
	gridChangeRemoved byte = 1
	gridChangeLayout  byte = 2
)

// NotifySystem dispatches the event bus and pushes S_GRID_CHANGED packets to
// sessions that subscribed to grid changes. Phase 1 (Update), so it sees the
// events handlers emitted during Phase 0 of the same tick.
type NotifySystem struct {
	bus   *event.Bus
	store *net.SessionStore
	log   *zap.Logger
}

func NewNotifySystem(bus *event.Bus, store *net.SessionStore, log *zap.Logger) *NotifySystem {
	s := &NotifySystem{bus: bus, store: store, log: log}

	event.Subscribe(bus, func(ev event.ObstacleAdded) {
		s.broadcast(ev.SessionID, obstaclePacket(gridChangeAdded, ev.Kind, ev.CenterX, ev.CenterZ))
	})
	event.Subscribe(bus, func(ev event.ObstacleRemoved) {
		s.broadcast(ev.SessionID, obstaclePacket(gridChangeRemoved, ev.Kind, ev.CenterX, ev.CenterZ))
	})
	event.Subscribe(bus, func(ev event.LayoutLoaded) {
		w := packet.NewWriter(packet.S_OPCODE_GRID_CHANGED)
		w.WriteC(gridChangeLayout)
		w.WriteS(ev.Name)
		w.WriteH(uint16(ev.Obstacles))
		s.broadcast(0, w.Bytes())
	})

	return s
}

func (s *NotifySystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *NotifySystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// broadcast sends data to every subscribed session except the originator,
// which already got a direct response.
func (s *NotifySystem) broadcast(originID uint64, data []byte) {
	s.store.ForEach(func(sess *net.Session) {
		if sess.ID == originID || !sess.WantsChanges || sess.IsClosed() {
			return
		}
		sess.Send(data)
	})
}

func obstaclePacket(change byte, kind int, cx, cz float64) []byte {
	w := packet.NewWriter(packet.S_OPCODE_GRID_CHANGED)
	w.WriteC(change)
	w.WriteC(byte(kind))
	w.WriteF(cx)
	w.WriteF(cz)
	return w.Bytes()
}
