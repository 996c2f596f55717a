package convert

import (
	"encoding/json"
	"fmt"

	"github.com/kunalpal97/ar-indoor-nav/internal/geo"
	"github.com/kunalpal97/ar-indoor-nav/internal/model"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// SessionToCore converts a GORM model.Session to a core.Session.
func SessionToCore(s model.Session) core.Session {
	return core.Session{
		ID:        s.SessionUUID,
		Device:    s.Device,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
}

// PlacementToCore converts a GORM model.Placement to a core.PlacementEvent.
// Empty points convert to the origin.
func PlacementToCore(p model.Placement) core.PlacementEvent {
	target, _ := geo.VecFromPoint(p.Target)
	camera, _ := geo.VecFromPoint(p.Camera)
	return core.PlacementEvent{
		Time:      p.Time,
		Seq:       p.Seq,
		AnchorID:  p.AnchorID,
		Target:    target,
		Camera:    camera,
		ErrorKind: p.ErrorKind,
		Error:     p.Error,
	}
}

// AttachmentToCore converts a GORM model.Attachment to a core.AttachmentEvent.
func AttachmentToCore(a model.Attachment) core.AttachmentEvent {
	return core.AttachmentEvent{
		Time:      a.Time,
		Seq:       a.Seq,
		AnchorID:  a.AnchorID,
		State:     a.State,
		ErrorKind: a.ErrorKind,
		Error:     a.Error,
	}
}

// UploadToCore converts a GORM model.Upload to a core.UploadEvent.
func UploadToCore(u model.Upload) (core.UploadEvent, error) {
	wps := []core.Waypoint{}
	if len(u.Waypoints) > 0 {
		if err := json.Unmarshal(u.Waypoints, &wps); err != nil {
			return core.UploadEvent{}, fmt.Errorf("decoding waypoints of upload %d: %w", u.ID, err)
		}
	}
	return core.UploadEvent{
		Time:       u.Time,
		StatusCode: u.StatusCode,
		Message:    u.Message,
		Waypoints:  wps,
		Error:      u.Error,
	}, nil
}
