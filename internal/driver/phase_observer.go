package driver

import (
	"time"

	"surge/internal/observ"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Build.
type PhaseObserver func(PhaseEvent)

// phaseHandle ties an observ.Timer phase slot to an optional PhaseObserver,
// so Build can report both the aggregate observ.Report (for its trailing
// ObsTimings diagnostic) and live start/end events to a caller such as a
// watch-mode CLI.
type phaseHandle struct {
	name  string
	idx   int
	timer *observ.Timer
	obs   PhaseObserver
	start time.Time
}

func beginPhase(timer *observ.Timer, obs PhaseObserver, name string) phaseHandle {
	if obs != nil {
		obs(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return phaseHandle{name: name, idx: timer.Begin(name), timer: timer, obs: obs, start: time.Now()}
}

func (h phaseHandle) end(note string) {
	h.timer.End(h.idx, note)
	if h.obs != nil {
		h.obs(PhaseEvent{Name: h.name, Status: PhaseEnd, Elapsed: time.Since(h.start)})
	}
}
