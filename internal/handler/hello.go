package handler

import (
	"github.com/gridnav/server/internal/net"
	"github.com/gridnav/server/internal/net/packet"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HandleHello processes C_HELLO (opcode 1).
// Format: [opcode][version H][client_name S][access_key S]
func HandleHello(sess *net.Session, r *packet.Reader, deps *Deps) {
	version := r.ReadH()
	clientName := r.ReadS()
	accessKey := r.ReadS()

	if version != packet.ProtocolVersion {
		deps.Log.Warn("hello rejected: protocol mismatch",
			zap.Uint64("session", sess.ID),
			zap.Uint16("client_version", version),
		)
		sendHelloFail(sess, "unsupported protocol version")
		sess.Close()
		return
	}

	// Empty hash in config disables the key check.
	if hash := deps.Config.Server.AccessKeyHash; hash != "" {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(accessKey)) != nil {
			deps.Log.Warn("hello rejected: bad access key",
				zap.Uint64("session", sess.ID),
				zap.String("client", clientName),
			)
			sendHelloFail(sess, "access denied")
			sess.Close()
			return
		}
	}

	sess.ClientName = clientName
	sess.SetState(packet.StateReady)

	deps.Log.Info("client ready",
		zap.Uint64("session", sess.ID),
		zap.String("client", clientName),
	)

	w := packet.NewWriter(packet.S_OPCODE_HELLO_OK)
	w.WriteH(packet.ProtocolVersion)
	w.WriteS(deps.Config.Server.Name)
	sess.Send(w.Bytes())
}

func sendHelloFail(sess *net.Session, reason string) {
	w := packet.NewWriter(packet.S_OPCODE_HELLO_FAIL)
	w.WriteS(reason)
	sess.Send(w.Bytes())
}
