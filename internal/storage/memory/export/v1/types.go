// Package v1 contains the v1 export format for session journals.
package v1

import (
	"time"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// FormatVersion is written to every v1 export.
const FormatVersion = "1"

// Export is the root JSON structure for v1 format
type Export struct {
	FormatVersion string    `json:"formatVersion"`
	AppVersion    string    `json:"appVersion"`
	SessionID     string    `json:"sessionId"`
	Device        string    `json:"device"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
	Duration      float64   `json:"duration"`
	Markers       []Marker  `json:"markers"`
	// Events are [secondsSinceStart, "type", ...details]
	Events     [][]any         `json:"events"`
	Waypoints  []core.Waypoint `json:"waypoints"`
	PathLength float64         `json:"pathLength"`
	Summary    Summary         `json:"summary"`
}

// Marker joins a successful placement with its attachment outcome
type Marker struct {
	Seq      int        `json:"seq"`
	AnchorID string     `json:"anchorId"`
	Position [3]float64 `json:"position"`
	Camera   [3]float64 `json:"camera"`
	PlacedAt float64    `json:"placedAt"`
	State    string     `json:"state"`
	Error    string     `json:"error,omitempty"`
}

// Summary counts the session's outcomes
type Summary struct {
	Placements        int `json:"placements"`
	FailedPlacements  int `json:"failedPlacements"`
	Attached          int `json:"attached"`
	FailedAttachments int `json:"failedAttachments"`
	Uploads           int `json:"uploads"`
	FailedUploads     int `json:"failedUploads"`
}
