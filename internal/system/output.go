package system

import (
	"time"

	coresys "github.com/gridnav/server/internal/core/system"
	"github.com/gridnav/server/internal/net"
)

// OutputSystem flushes buffered session output to the writer goroutines.
// Phase 2 (Output), last in the tick.
type OutputSystem struct {
	store *net.SessionStore
}

func NewOutputSystem(store *net.SessionStore) *OutputSystem {
	return &OutputSystem{store: store}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}
