package tracking

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Simulator is an in-process Provider driven by explicit pose and state updates.
// It is safe for concurrent use.
type Simulator struct {
	mu       sync.RWMutex
	hasFrame bool
	pose     core.Pose
	state    core.TrackingState
	hasSess  bool
	active   bool
	anchors  []*simAnchor

	// FailAnchors makes CreateAnchor return an error.
	FailAnchors bool
}

// NewSimulator returns a simulator with an active session and no frame.
func NewSimulator() *Simulator {
	return &Simulator{hasSess: true, active: true}
}

// SetFrame publishes a frame with the given camera pose and tracking state.
func (s *Simulator) SetFrame(pose core.Pose, state core.TrackingState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasFrame = true
	s.pose = pose
	s.state = state
}

// SetPose updates the camera pose of the current frame, creating one if needed.
func (s *Simulator) SetPose(pose core.Pose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasFrame = true
	s.pose = pose
}

// SetTrackingState updates the tracking state of the current frame.
func (s *Simulator) SetTrackingState(state core.TrackingState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// ClearFrame drops the current frame, as before the first camera image arrives.
func (s *Simulator) ClearFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasFrame = false
}

// SetSessionActive pauses or resumes the session.
func (s *Simulator) SetSessionActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

// RemoveSession makes Session report no session at all.
func (s *Simulator) RemoveSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasSess = false
}

// CurrentFrame implements Provider.
func (s *Simulator) CurrentFrame() (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasFrame {
		return nil, false
	}
	return simFrame{pose: s.pose, state: s.state}, true
}

// Session implements Provider.
func (s *Simulator) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasSess {
		return nil, false
	}
	return (*simSession)(s), true
}

// Anchors returns every anchor created so far, detached or not.
func (s *Simulator) Anchors() []core.Anchor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Anchor, len(s.anchors))
	for i, a := range s.anchors {
		out[i] = a
	}
	return out
}

type simFrame struct {
	pose  core.Pose
	state core.TrackingState
}

func (f simFrame) CameraPose() core.Pose              { return f.pose }
func (f simFrame) TrackingState() core.TrackingState { return f.state }

type simSession Simulator

func (ss *simSession) Active() bool {
	s := (*Simulator)(ss)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (ss *simSession) CreateAnchor(pose core.Pose) (core.Anchor, error) {
	s := (*Simulator)(ss)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAnchors {
		return nil, fmt.Errorf("simulated anchor failure at %s", pose)
	}
	a := &simAnchor{id: uuid.NewString(), pose: pose}
	s.anchors = append(s.anchors, a)
	return a, nil
}

type simAnchor struct {
	id       string
	mu       sync.Mutex
	pose     core.Pose
	detached bool
}

func (a *simAnchor) ID() string { return a.id }

func (a *simAnchor) Pose() core.Pose {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pose
}

func (a *simAnchor) TrackingState() core.TrackingState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detached {
		return core.NotTracking
	}
	return core.Tracking
}

func (a *simAnchor) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detached = true
}
