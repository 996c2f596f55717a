package v1

import (
	"sort"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/geo"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// SessionData contains all the data needed to build an export
type SessionData struct {
	Session     *core.Session
	AppVersion  string
	Placements  []core.PlacementEvent
	Attachments []core.AttachmentEvent
	Uploads     []core.UploadEvent
}

// Build converts journaled session data to the v1 export.
func Build(data *SessionData) Export {
	export := Export{
		FormatVersion: FormatVersion,
		AppVersion:    data.AppVersion,
		Markers:       make([]Marker, 0),
		Events:        make([][]any, 0),
		Waypoints:     make([]core.Waypoint, 0),
	}

	var start time.Time
	if data.Session != nil {
		export.SessionID = data.Session.ID
		export.Device = data.Session.Device
		export.StartedAt = data.Session.StartedAt
		export.EndedAt = data.Session.EndedAt
		start = data.Session.StartedAt
		if !data.Session.EndedAt.IsZero() {
			export.Duration = data.Session.EndedAt.Sub(start).Seconds()
		}
	}
	offset := func(t time.Time) float64 {
		if start.IsZero() || t.IsZero() {
			return 0
		}
		return t.Sub(start).Seconds()
	}

	bySeq := make(map[int]int)
	for _, p := range data.Placements {
		if p.Seq < 0 {
			export.Summary.FailedPlacements++
			export.Events = append(export.Events, []any{offset(p.Time), "placementFailed", p.ErrorKind, p.Error})
			continue
		}
		export.Summary.Placements++
		bySeq[p.Seq] = len(export.Markers)
		export.Markers = append(export.Markers, Marker{
			Seq:      p.Seq,
			AnchorID: p.AnchorID,
			Position: vecArray(p.Target),
			Camera:   vecArray(p.Camera),
			PlacedAt: offset(p.Time),
			State:    core.Pending.String(),
		})
		export.Events = append(export.Events, []any{offset(p.Time), "placed", p.Seq, p.AnchorID})
	}

	for _, a := range data.Attachments {
		if a.Error != "" {
			export.Summary.FailedAttachments++
		} else {
			export.Summary.Attached++
		}
		export.Events = append(export.Events, []any{offset(a.Time), "attachment", a.Seq, a.State, a.ErrorKind})
		if i, ok := bySeq[a.Seq]; ok {
			export.Markers[i].State = a.State
			export.Markers[i].Error = a.Error
		}
	}

	for _, u := range data.Uploads {
		export.Summary.Uploads++
		ok := u.Error == "" && u.StatusCode >= 200 && u.StatusCode < 300
		if !ok {
			export.Summary.FailedUploads++
			export.Events = append(export.Events, []any{offset(u.Time), "uploadFailed", u.StatusCode, failureText(u)})
			continue
		}
		export.Events = append(export.Events, []any{offset(u.Time), "upload", u.StatusCode, len(u.Waypoints)})
		// last successful upload wins
		export.Waypoints = append(export.Waypoints[:0], u.Waypoints...)
	}
	// non-finite waypoints leave the length at zero
	export.PathLength, _ = geo.PathLength(export.Waypoints)

	sort.Slice(export.Markers, func(i, j int) bool {
		return export.Markers[i].Seq < export.Markers[j].Seq
	})
	sort.SliceStable(export.Events, func(i, j int) bool {
		return export.Events[i][0].(float64) < export.Events[j][0].(float64)
	})

	return export
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func failureText(u core.UploadEvent) string {
	if u.Error != "" {
		return u.Error
	}
	return u.Message
}
