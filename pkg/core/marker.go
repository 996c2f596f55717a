// pkg/core/marker.go
package core

import (
	"sync"
	"time"
)

// AttachmentState tracks the visual attachment of a placed marker.
type AttachmentState int

const (
	Pending AttachmentState = iota
	Attached
	Failed
)

func (s AttachmentState) String() string {
	switch s {
	case Attached:
		return "attached"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// MarkerRecord is created once per successful placement and never reused.
// Its anchor is fixed at construction; the attachment state leaves Pending exactly once.
type MarkerRecord struct {
	Seq      int       // zero-based placement order within the session
	Anchor   Anchor    // never reassigned
	Target   Pose      // projected pose the anchor was requested at
	Camera   Pose      // camera pose the projection was computed from
	PlacedAt time.Time

	mu         sync.Mutex
	state      AttachmentState
	err        error
	resolvedAt time.Time
	done       chan struct{}
}

// NewMarkerRecord creates a Pending record for the given anchor.
func NewMarkerRecord(seq int, anchor Anchor, target, camera Pose, placedAt time.Time) *MarkerRecord {
	return &MarkerRecord{
		Seq:      seq,
		Anchor:   anchor,
		Target:   target,
		Camera:   camera,
		PlacedAt: placedAt,
		state:    Pending,
		done:     make(chan struct{}),
	}
}

// AnchorID returns the anchor handle's ID, or "" for a record without an anchor.
func (r *MarkerRecord) AnchorID() string {
	if r.Anchor == nil {
		return ""
	}
	return r.Anchor.ID()
}

// State returns the current attachment state.
func (r *MarkerRecord) State() AttachmentState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the attachment failure, if any.
func (r *MarkerRecord) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// ResolvedAt returns when the record left Pending, or the zero time.
func (r *MarkerRecord) ResolvedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolvedAt
}

// Done is closed when the record leaves Pending.
func (r *MarkerRecord) Done() <-chan struct{} {
	return r.done
}

// Resolve moves the record out of Pending: to Attached when err is nil, to Failed
// otherwise. Only the first call has an effect; it reports whether it won.
func (r *MarkerRecord) Resolve(err error, at time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Pending {
		return false
	}
	if err != nil {
		r.state = Failed
		r.err = err
	} else {
		r.state = Attached
	}
	r.resolvedAt = at
	close(r.done)
	return true
}

// MarkerSnapshot is an immutable view of a MarkerRecord for readers outside the loop.
type MarkerSnapshot struct {
	Seq        int       `json:"seq"`
	AnchorID   string    `json:"anchorId"`
	Target     Vec3      `json:"target"`
	Camera     Vec3      `json:"camera"`
	PlacedAt   time.Time `json:"placedAt"`
	State      string    `json:"state"`
	Error      string    `json:"error,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt,omitzero"`
}

// Snapshot copies the record's current state.
func (r *MarkerRecord) Snapshot() MarkerSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := MarkerSnapshot{
		Seq:        r.Seq,
		AnchorID:   r.AnchorID(),
		Target:     Vec3FromR3(r.Target.Position),
		Camera:     Vec3FromR3(r.Camera.Position),
		PlacedAt:   r.PlacedAt,
		State:      r.state.String(),
		ResolvedAt: r.resolvedAt,
	}
	if r.err != nil {
		s.Error = r.err.Error()
	}
	return s
}
