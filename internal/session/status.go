package session

import (
	"time"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// PendingReporter is implemented by journal backends that buffer writes.
type PendingReporter interface {
	Pending() int
}

// DropReporter is implemented by journal backends that may drop messages.
type DropReporter interface {
	Dropped() uint64
}

// Status is a point-in-time view of the session.
type Status struct {
	SessionID          string        `json:"sessionId"`
	Device             string        `json:"device"`
	Uptime             time.Duration `json:"uptime"`
	Markers            int           `json:"markers"`
	Pending            int           `json:"pending"`
	Attached           int           `json:"attached"`
	Failed             int           `json:"failed"`
	SceneNodes         int           `json:"sceneNodes"`
	LoopQueue          int           `json:"loopQueue"`
	Waypoints          int           `json:"waypoints"`
	WaypointGeneration uint64        `json:"waypointGeneration"`
	JournalPending     int           `json:"journalPending,omitempty"`
	JournalDropped     uint64        `json:"journalDropped,omitempty"`
}

// Status reports counters without going through the loop.
func (s *Session) Status() Status {
	counts := s.engine.Registry().CountByState()
	st := Status{
		SessionID:          s.info.ID,
		Device:             s.info.Device,
		Uptime:             s.deps.Now().Sub(s.info.StartedAt),
		Markers:            s.engine.Registry().Len(),
		Pending:            counts[core.Pending],
		Attached:           counts[core.Attached],
		Failed:             counts[core.Failed],
		SceneNodes:         s.scene.Count(),
		LoopQueue:          s.loop.Pending(),
		Waypoints:          len(s.store.Get()),
		WaypointGeneration: s.store.Generation(),
	}
	if p, ok := s.deps.Backend.(PendingReporter); ok {
		st.JournalPending = p.Pending()
	}
	if d, ok := s.deps.Backend.(DropReporter); ok {
		st.JournalDropped = d.Dropped()
	}
	return st
}
