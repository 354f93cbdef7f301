package system

import (
	stdnet "net"
	"testing"
	"time"

	"github.com/gridnav/server/internal/core/event"
	gnet "github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
	"go.uber.org/zap"
)

func newPipeSession(t *testing.T, id uint64) *gnet.Session {
	t.Helper()
	client, server := stdnet.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return gnet.NewSession(server, id, 16, 16, time.Minute, time.Minute, zap.NewNop())
}

func takePacket(t *testing.T, sess *gnet.Session) *packet.Reader {
	t.Helper()
	sess.FlushOutput()
	select {
	case data := <-sess.OutQueue:
		return packet.NewReader(data)
	default:
		return nil
	}
}

func TestNotifyBroadcastsToSubscribersOnly(t *testing.T) {
	bus := event.NewBus()
	store := gnet.NewSessionStore()
	sys := NewNotifySystem(bus, store, zap.NewNop())

	origin := newPipeSession(t, 1)
	origin.WantsChanges = true
	subscriber := newPipeSession(t, 2)
	subscriber.WantsChanges = true
	bystander := newPipeSession(t, 3)
	store.Add(origin)
	store.Add(subscriber)
	store.Add(bystander)

	event.Emit(bus, event.ObstacleAdded{SessionID: 1, Kind: 0, CenterX: 10, CenterZ: -5})
	sys.Update(0)

	r := takePacket(t, subscriber)
	if r == nil {
		t.Fatal("subscriber got no notification")
	}
	if r.Opcode() != packet.S_OPCODE_GRID_CHANGED {
		t.Fatalf("opcode = %d, want S_GRID_CHANGED", r.Opcode())
	}
	if change := r.ReadC(); change != 0 {
		t.Errorf("change = %d, want 0 (added)", change)
	}
	r.ReadC() // footprint kind
	if x := r.ReadF(); x != 10 {
		t.Errorf("center x = %v, want 10", x)
	}
	if z := r.ReadF(); z != -5 {
		t.Errorf("center z = %v, want -5", z)
	}

	if takePacket(t, origin) != nil {
		t.Error("originating session should not be notified")
	}
	if takePacket(t, bystander) != nil {
		t.Error("unsubscribed session should not be notified")
	}
}

func TestNotifyDeliversEventsEmittedSameTick(t *testing.T) {
	bus := event.NewBus()
	store := gnet.NewSessionStore()
	sys := NewNotifySystem(bus, store, zap.NewNop())

	sub := newPipeSession(t, 7)
	sub.WantsChanges = true
	store.Add(sub)

	// Emitted during Phase 0, visible after the Phase 1 buffer swap.
	event.Emit(bus, event.ObstacleRemoved{SessionID: 0, Kind: 1, CenterX: 1, CenterZ: 2})
	sys.Update(0)
	if takePacket(t, sub) == nil {
		t.Fatal("event emitted before Update was not delivered")
	}

	// Nothing pending: Update must not redeliver.
	sys.Update(0)
	if takePacket(t, sub) != nil {
		t.Error("notification delivered twice")
	}
}

func TestNotifyLayoutLoadedShape(t *testing.T) {
	bus := event.NewBus()
	store := gnet.NewSessionStore()
	sys := NewNotifySystem(bus, store, zap.NewNop())

	sub := newPipeSession(t, 4)
	sub.WantsChanges = true
	store.Add(sub)

	event.Emit(bus, event.LayoutLoaded{Name: "arena", Obstacles: 12})
	sys.Update(0)

	r := takePacket(t, sub)
	if r == nil {
		t.Fatal("no layout notification")
	}
	if change := r.ReadC(); change != 2 {
		t.Fatalf("change = %d, want 2 (layout)", change)
	}
	if name := r.ReadS(); name != "arena" {
		t.Errorf("name = %q, want arena", name)
	}
	if n := r.ReadH(); n != 12 {
		t.Errorf("obstacles = %d, want 12", n)
	}
}

func TestOutputFlushesAllSessions(t *testing.T) {
	store := gnet.NewSessionStore()
	a := newPipeSession(t, 1)
	b := newPipeSession(t, 2)
	store.Add(a)
	store.Add(b)

	a.Send([]byte{packet.S_OPCODE_ACK, 1})
	b.Send([]byte{packet.S_OPCODE_ACK, 2})

	NewOutputSystem(store).Update(0)

	for _, sess := range []*gnet.Session{a, b} {
		select {
		case <-sess.OutQueue:
		default:
			t.Errorf("session %d output not flushed", sess.ID)
		}
	}
}
