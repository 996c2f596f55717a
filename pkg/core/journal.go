// pkg/core/journal.go
package core

import "time"

// Session identifies one AR session for journaling.
type Session struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt,omitzero"`
}

// PlacementEvent records one placement attempt, successful or not.
type PlacementEvent struct {
	Time      time.Time `json:"time"`
	Seq       int       `json:"seq"` // -1 when the attempt failed
	AnchorID  string    `json:"anchorId,omitempty"`
	Target    Vec3      `json:"target"`
	Camera    Vec3      `json:"camera"`
	ErrorKind string    `json:"errorKind,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// AttachmentEvent records the resolution of one marker's attachment.
type AttachmentEvent struct {
	Time      time.Time `json:"time"`
	Seq       int       `json:"seq"`
	AnchorID  string    `json:"anchorId"`
	State     string    `json:"state"`
	ErrorKind string    `json:"errorKind,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// UploadEvent records one upload to the recognition service.
type UploadEvent struct {
	Time       time.Time  `json:"time"`
	StatusCode int        `json:"statusCode"`
	Message    string     `json:"message"`
	Waypoints  []Waypoint `json:"waypoints"`
	Error      string     `json:"error,omitempty"`
}
