// pkg/core/tracking.go
package core

import "strings"

// TrackingState gates whether a camera pose may be trusted for placement.
type TrackingState int

const (
	NotTracking TrackingState = iota
	Tracking
	Paused
)

func (s TrackingState) String() string {
	switch s {
	case Tracking:
		return "TRACKING"
	case Paused:
		return "PAUSED"
	default:
		return "NOT_TRACKING"
	}
}

// ParseTrackingState converts a state name (case-insensitive) to a TrackingState.
func ParseTrackingState(s string) (TrackingState, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACKING":
		return Tracking, true
	case "PAUSED":
		return Paused, true
	case "NOT_TRACKING", "STOPPED":
		return NotTracking, true
	default:
		return NotTracking, false
	}
}

// Anchor is an opaque handle binding a world pose to a reference the tracking
// subsystem keeps refining. Identity is the handle, not the pose.
type Anchor interface {
	// ID is stable for the anchor's lifetime and unique within a session.
	ID() string
	// Pose is the provider's current estimate; it may drift from the creation pose.
	Pose() Pose
	TrackingState() TrackingState
	// Detach releases the anchor. The tracking state becomes NotTracking.
	Detach()
}
