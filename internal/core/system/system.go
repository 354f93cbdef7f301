package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput  Phase = iota // 0: drain session queues, dispatch requests
	PhaseUpdate              // 1: deliver events, push grid-change notices
	PhaseOutput              // 2: flush session output buffers
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
