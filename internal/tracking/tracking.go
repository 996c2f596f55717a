// Package tracking defines the boundary with the device's visual-inertial tracking
// subsystem and provides a scripted Simulator implementation.
package tracking

import "github.com/kunalpal97/ar-indoor-nav/pkg/core"

// Frame is one tracked camera frame.
type Frame interface {
	CameraPose() core.Pose
	TrackingState() core.TrackingState
}

// Session is the provider's underlying tracking session.
type Session interface {
	// Active reports whether the session is running (not paused or destroyed).
	Active() bool
	// CreateAnchor binds a world pose to a stable spatial reference.
	CreateAnchor(pose core.Pose) (core.Anchor, error)
}

// Provider supplies frames and the session anchors are created from.
type Provider interface {
	// CurrentFrame returns the latest frame, or false when none is available yet.
	CurrentFrame() (Frame, bool)
	// Session returns the underlying session, or false when there is none.
	Session() (Session, bool)
}
