// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/kunalpal97/ar-indoor-nav/internal/geo"
	"github.com/kunalpal97/ar-indoor-nav/internal/model"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"gorm.io/datatypes"
)

// waypointsToJSON converts waypoints to datatypes.JSON for DB storage.
func waypointsToJSON(wps []core.Waypoint) datatypes.JSON {
	if len(wps) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(wps)
	return datatypes.JSON(data)
}

// truncate keeps free-text columns within their size limit.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// CoreToSession converts a core.Session to a GORM model.Session.
func CoreToSession(s core.Session) model.Session {
	return model.Session{
		SessionUUID: s.ID,
		Device:      truncate(s.Device, 127),
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
	}
}

// CoreToPlacement converts a core.PlacementEvent to a GORM model.Placement.
func CoreToPlacement(sessionID uint, e core.PlacementEvent) (model.Placement, error) {
	target, err := geo.PointFromVec(e.Target)
	if err != nil {
		return model.Placement{}, fmt.Errorf("placement %d target: %w", e.Seq, err)
	}
	camera, err := geo.PointFromVec(e.Camera)
	if err != nil {
		return model.Placement{}, fmt.Errorf("placement %d camera: %w", e.Seq, err)
	}
	return model.Placement{
		Time:      e.Time,
		SessionID: sessionID,
		Seq:       e.Seq,
		AnchorID:  e.AnchorID,
		Target:    target,
		Camera:    camera,
		ErrorKind: e.ErrorKind,
		Error:     truncate(e.Error, 255),
	}, nil
}

// CoreToAttachment converts a core.AttachmentEvent to a GORM model.Attachment.
func CoreToAttachment(sessionID uint, e core.AttachmentEvent) model.Attachment {
	return model.Attachment{
		Time:      e.Time,
		SessionID: sessionID,
		Seq:       e.Seq,
		AnchorID:  e.AnchorID,
		State:     e.State,
		ErrorKind: e.ErrorKind,
		Error:     truncate(e.Error, 255),
	}
}

// CoreToUpload converts a core.UploadEvent to a GORM model.Upload.
func CoreToUpload(sessionID uint, e core.UploadEvent) (model.Upload, error) {
	path, err := geo.WaypointPath(e.Waypoints)
	if err != nil {
		return model.Upload{}, fmt.Errorf("upload path: %w", err)
	}
	return model.Upload{
		Time:          e.Time,
		SessionID:     sessionID,
		StatusCode:    e.StatusCode,
		Message:       truncate(e.Message, 255),
		WaypointCount: len(e.Waypoints),
		Waypoints:     waypointsToJSON(e.Waypoints),
		Path:          path,
		Error:         truncate(e.Error, 255),
	}, nil
}
