package handler

import (
	stdnet "net"
	"testing"
	"time"

	"github.com/gridnav/server/internal/config"
	"github.com/gridnav/server/internal/core/event"
	"github.com/gridnav/server/internal/nav"
	gnet "github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	sys := nav.NewSystem(zap.NewNop())
	sys.Initialize(200, 200, 2)
	return &Deps{
		Config:    config.Defaults(),
		Log:       zap.NewNop(),
		Nav:       sys,
		Bus:       event.NewBus(),
		Obstacles: NewObstacleLedger(),
	}
}

// newTestSession builds a session over a pipe without starting its I/O
// goroutines, so handler output can be inspected via FlushOutput + OutQueue.
func newTestSession(t *testing.T) *gnet.Session {
	t.Helper()
	client, server := stdnet.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return gnet.NewSession(server, 1, 16, 16, time.Minute, time.Minute, zap.NewNop())
}

func sentPacket(t *testing.T, sess *gnet.Session) *packet.Reader {
	t.Helper()
	sess.FlushOutput()
	select {
	case data := <-sess.OutQueue:
		return packet.NewReader(data)
	default:
		t.Fatal("no packet sent")
		return nil
	}
}

func TestHelloAcceptsWithoutAccessKey(t *testing.T) {
	deps := newTestDeps(t)
	deps.Config.Server.AccessKeyHash = ""
	sess := newTestSession(t)

	w := packet.NewWriter(packet.C_OPCODE_HELLO)
	w.WriteH(packet.ProtocolVersion)
	w.WriteS("sim-client")
	w.WriteS("")
	HandleHello(sess, packet.NewReader(w.Bytes()), deps)

	r := sentPacket(t, sess)
	if r.Opcode() != packet.S_OPCODE_HELLO_OK {
		t.Fatalf("opcode = %d, want S_HELLO_OK", r.Opcode())
	}
	if sess.State() != packet.StateReady {
		t.Errorf("state = %v, want Ready", sess.State())
	}
	if sess.ClientName != "sim-client" {
		t.Errorf("client name = %q", sess.ClientName)
	}
}

func TestHelloRejectsBadAccessKey(t *testing.T) {
	deps := newTestDeps(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	deps.Config.Server.AccessKeyHash = string(hash)
	sess := newTestSession(t)

	w := packet.NewWriter(packet.C_OPCODE_HELLO)
	w.WriteH(packet.ProtocolVersion)
	w.WriteS("sim-client")
	w.WriteS("wrong")
	HandleHello(sess, packet.NewReader(w.Bytes()), deps)

	if sess.State() == packet.StateReady {
		t.Error("session reached Ready with a bad access key")
	}
	if !sess.IsClosed() {
		t.Error("session not closed after rejection")
	}
}

func TestHelloRejectsProtocolMismatch(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t)

	w := packet.NewWriter(packet.C_OPCODE_HELLO)
	w.WriteH(packet.ProtocolVersion + 1)
	w.WriteS("sim-client")
	w.WriteS("")
	HandleHello(sess, packet.NewReader(w.Bytes()), deps)

	if !sess.IsClosed() {
		t.Error("session not closed after version mismatch")
	}
}

func TestFindPathResponseShape(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t)

	w := packet.NewWriter(packet.C_OPCODE_FIND_PATH)
	w.WriteF(-50)
	w.WriteF(0)
	w.WriteF(50)
	w.WriteF(0)
	HandleFindPath(sess, packet.NewReader(w.Bytes()), deps)

	r := sentPacket(t, sess)
	if r.Opcode() != packet.S_OPCODE_PATH_RESULT {
		t.Fatalf("opcode = %d, want S_PATH_RESULT", r.Opcode())
	}
	if r.ReadC() != 1 {
		t.Fatal("path on empty grid should succeed")
	}
	count := int(r.ReadH())
	if count < 2 {
		t.Fatalf("waypoint count = %d, want >= 2", count)
	}
	var lastX, lastZ float64
	for i := 0; i < count; i++ {
		lastX, lastZ = r.ReadF(), r.ReadF()
	}
	if lastX != 50 || lastZ != 0 {
		t.Errorf("final waypoint = (%v, %v), want (50, 0)", lastX, lastZ)
	}
	if dist := r.ReadF(); dist < 99 || dist > 101 {
		t.Errorf("distance = %v, want about 100", dist)
	}
}

func TestAddBoxBlocksGridAndEmitsEvent(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t)

	var added []event.ObstacleAdded
	event.Subscribe(deps.Bus, func(ev event.ObstacleAdded) {
		added = append(added, ev)
	})

	w := packet.NewWriter(packet.C_OPCODE_ADD_BOX)
	w.WriteF(10)
	w.WriteF(10)
	w.WriteF(6)
	w.WriteF(6)
	w.WriteF(0)
	HandleAddBox(sess, packet.NewReader(w.Bytes()), deps)

	if r := sentPacket(t, sess); r.Opcode() != packet.S_OPCODE_ACK {
		t.Fatalf("opcode = %d, want S_ACK", r.Opcode())
	}
	if deps.Nav.IsWalkable(10, 10) {
		t.Error("box center still walkable")
	}
	if deps.Obstacles.Count() != 1 {
		t.Errorf("ledger count = %d, want 1", deps.Obstacles.Count())
	}

	deps.Bus.SwapBuffers()
	deps.Bus.DispatchAll()
	if len(added) != 1 || added[0].SessionID != sess.ID {
		t.Errorf("obstacle event = %+v", added)
	}
}

func TestRemoveBoxRequiresExactMatch(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t)

	add := packet.NewWriter(packet.C_OPCODE_ADD_BOX)
	add.WriteF(10)
	add.WriteF(10)
	add.WriteF(6)
	add.WriteF(6)
	add.WriteF(0)
	HandleAddBox(sess, packet.NewReader(add.Bytes()), deps)
	sentPacket(t, sess) // discard ack

	wrong := packet.NewWriter(packet.C_OPCODE_REMOVE_BOX)
	wrong.WriteF(10)
	wrong.WriteF(10)
	wrong.WriteF(5) // width differs
	wrong.WriteF(6)
	wrong.WriteF(0)
	HandleRemoveBox(sess, packet.NewReader(wrong.Bytes()), deps)
	if r := sentPacket(t, sess); r.Opcode() != packet.S_OPCODE_ERROR {
		t.Fatalf("opcode = %d, want S_ERROR for mismatched remove", r.Opcode())
	}
	if deps.Nav.IsWalkable(10, 10) {
		t.Error("mismatched remove should not unblock the grid")
	}

	right := packet.NewWriter(packet.C_OPCODE_REMOVE_BOX)
	right.WriteF(10)
	right.WriteF(10)
	right.WriteF(6)
	right.WriteF(6)
	right.WriteF(0)
	HandleRemoveBox(sess, packet.NewReader(right.Bytes()), deps)
	if r := sentPacket(t, sess); r.Opcode() != packet.S_OPCODE_ACK {
		t.Fatalf("opcode = %d, want S_ACK", r.Opcode())
	}
	if !deps.Nav.IsWalkable(10, 10) {
		t.Error("grid still blocked after exact remove")
	}
	if deps.Obstacles.Count() != 0 {
		t.Errorf("ledger count = %d, want 0", deps.Obstacles.Count())
	}
}

func TestAddPolygonRejectsTooFewVertices(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t)

	w := packet.NewWriter(packet.C_OPCODE_ADD_POLYGON)
	w.WriteH(2)
	w.WriteF(0)
	w.WriteF(0)
	w.WriteF(5)
	w.WriteF(0)
	HandleAddPolygon(sess, packet.NewReader(w.Bytes()), deps)

	if r := sentPacket(t, sess); r.Opcode() != packet.S_OPCODE_ERROR {
		t.Fatalf("opcode = %d, want S_ERROR", r.Opcode())
	}
}

func TestSubscribeChangesTogglesFlag(t *testing.T) {
	deps := newTestDeps(t)
	sess := newTestSession(t)

	on := packet.NewWriter(packet.C_OPCODE_SUBSCRIBE_CHANGES)
	on.WriteC(1)
	HandleSubscribeChanges(sess, packet.NewReader(on.Bytes()), deps)
	if !sess.WantsChanges {
		t.Error("WantsChanges not set")
	}
	if r := sentPacket(t, sess); r.Opcode() != packet.S_OPCODE_ACK {
		t.Fatalf("opcode = %d, want S_ACK", r.Opcode())
	}

	off := packet.NewWriter(packet.C_OPCODE_SUBSCRIBE_CHANGES)
	off.WriteC(0)
	HandleSubscribeChanges(sess, packet.NewReader(off.Bytes()), deps)
	if sess.WantsChanges {
		t.Error("WantsChanges still set")
	}
}

func TestLayoutOpsWithoutDatabase(t *testing.T) {
	deps := newTestDeps(t) // Layouts nil
	sess := newTestSession(t)

	w := packet.NewWriter(packet.C_OPCODE_SAVE_LAYOUT)
	w.WriteS("default")
	HandleSaveLayout(sess, packet.NewReader(w.Bytes()), deps)

	r := sentPacket(t, sess)
	if r.Opcode() != packet.S_OPCODE_ERROR {
		t.Fatalf("opcode = %d, want S_ERROR", r.Opcode())
	}
	r.ReadC() // echoed opcode
	if msg := r.ReadS(); msg != "persistence disabled" {
		t.Errorf("error message = %q", msg)
	}
}
