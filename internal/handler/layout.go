package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gridnav/server/internal/core/event"
	"github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
	"github.com/gridnav/server/internal/persist"
	"go.uber.org/zap"
)

const layoutOpTimeout = 5 * time.Second

// HandleSaveLayout processes C_SAVE_LAYOUT (opcode 40).
// Format: [opcode][name S] — stores the currently registered obstacles
// under the given name.
func HandleSaveLayout(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadS()
	if name == "" {
		sendError(sess, packet.C_OPCODE_SAVE_LAYOUT, "empty layout name")
		return
	}
	if deps.Layouts == nil {
		sendError(sess, packet.C_OPCODE_SAVE_LAYOUT, "persistence disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), layoutOpTimeout)
	defer cancel()

	if err := deps.Layouts.SaveLayout(ctx, name, deps.Obstacles.All()); err != nil {
		deps.Log.Error("layout save failed", zap.String("name", name), zap.Error(err))
		sendError(sess, packet.C_OPCODE_SAVE_LAYOUT, "save failed")
		return
	}

	deps.Log.Info("layout saved",
		zap.String("name", name),
		zap.Int("obstacles", deps.Obstacles.Count()),
	)
	sendAck(sess, packet.C_OPCODE_SAVE_LAYOUT)
}

// HandleLoadLayout processes C_LOAD_LAYOUT (opcode 41).
// Format: [opcode][name S] — all currently registered obstacles are removed
// and the stored layout's footprints take their place.
func HandleLoadLayout(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadS()
	if deps.Layouts == nil {
		sendError(sess, packet.C_OPCODE_LOAD_LAYOUT, "persistence disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), layoutOpTimeout)
	defer cancel()

	footprints, err := deps.Layouts.LoadLayout(ctx, name)
	if err != nil {
		if errors.Is(err, persist.ErrLayoutNotFound) {
			sendError(sess, packet.C_OPCODE_LOAD_LAYOUT, "layout not found")
			return
		}
		deps.Log.Error("layout load failed", zap.String("name", name), zap.Error(err))
		sendError(sess, packet.C_OPCODE_LOAD_LAYOUT, "load failed")
		return
	}

	for _, f := range deps.Obstacles.All() {
		deps.Nav.RemoveObstacle(f)
	}
	for _, f := range footprints {
		deps.Nav.AddObstacle(f)
	}
	deps.Obstacles.Replace(footprints)

	event.Emit(deps.Bus, event.LayoutLoaded{Name: name, Obstacles: len(footprints)})

	deps.Log.Info("layout loaded",
		zap.String("name", name),
		zap.Int("obstacles", len(footprints)),
	)
	sendAck(sess, packet.C_OPCODE_LOAD_LAYOUT)
}

// HandleDeleteLayout processes C_DELETE_LAYOUT (opcode 43).
// Format: [opcode][name S] — drops the stored layout; obstacles currently
// on the grid are unaffected.
func HandleDeleteLayout(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadS()
	if deps.Layouts == nil {
		sendError(sess, packet.C_OPCODE_DELETE_LAYOUT, "persistence disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), layoutOpTimeout)
	defer cancel()

	if err := deps.Layouts.DeleteLayout(ctx, name); err != nil {
		if errors.Is(err, persist.ErrLayoutNotFound) {
			sendError(sess, packet.C_OPCODE_DELETE_LAYOUT, "layout not found")
			return
		}
		deps.Log.Error("layout delete failed", zap.String("name", name), zap.Error(err))
		sendError(sess, packet.C_OPCODE_DELETE_LAYOUT, "delete failed")
		return
	}

	deps.Log.Info("layout deleted", zap.String("name", name))
	sendAck(sess, packet.C_OPCODE_DELETE_LAYOUT)
}

// HandleListLayouts processes C_LIST_LAYOUTS (opcode 42).
// Response S_LAYOUT_LIST: [count H][count × (name S, obstacles H)]
func HandleListLayouts(sess *net.Session, r *packet.Reader, deps *Deps) {
	if deps.Layouts == nil {
		sendError(sess, packet.C_OPCODE_LIST_LAYOUTS, "persistence disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), layoutOpTimeout)
	defer cancel()

	infos, err := deps.Layouts.ListLayouts(ctx)
	if err != nil {
		deps.Log.Error("layout list failed", zap.Error(err))
		sendError(sess, packet.C_OPCODE_LIST_LAYOUTS, "list failed")
		return
	}

	w := packet.NewWriter(packet.S_OPCODE_LAYOUT_LIST)
	w.WriteH(uint16(len(infos)))
	for _, info := range infos {
		w.WriteS(info.Name)
		w.WriteH(uint16(info.Obstacles))
	}
	sess.Send(w.Bytes())
}
