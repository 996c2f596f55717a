package gormstore

import (
	"errors"
	"fmt"

	"github.com/kunalpal97/ar-indoor-nav/internal/model"
	"github.com/kunalpal97/ar-indoor-nav/internal/model/convert"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"gorm.io/gorm"
)

// ErrSessionNotFound is returned by LoadHistory when no session matches.
var ErrSessionNotFound = errors.New("session not found")

// History is a journaled session read back from the database.
type History struct {
	Session     core.Session           `json:"session"`
	Placements  []core.PlacementEvent  `json:"placements"`
	Attachments []core.AttachmentEvent `json:"attachments"`
	Uploads     []core.UploadEvent     `json:"uploads"`
}

// LoadHistory reads one session and its events in time order. An empty
// sessionUUID selects the most recently started session.
func LoadHistory(db *gorm.DB, sessionUUID string) (*History, error) {
	var row model.Session
	q := db.Preload("Placements", orderByTime).
		Preload("Attachments", orderByTime).
		Preload("Uploads", orderByTime)
	if sessionUUID != "" {
		q = q.Where("session_uuid = ?", sessionUUID)
	} else {
		q = q.Order("started_at DESC")
	}
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	h := &History{
		Session:     convert.SessionToCore(row),
		Placements:  make([]core.PlacementEvent, 0, len(row.Placements)),
		Attachments: make([]core.AttachmentEvent, 0, len(row.Attachments)),
		Uploads:     make([]core.UploadEvent, 0, len(row.Uploads)),
	}
	for _, p := range row.Placements {
		h.Placements = append(h.Placements, convert.PlacementToCore(p))
	}
	for _, a := range row.Attachments {
		h.Attachments = append(h.Attachments, convert.AttachmentToCore(a))
	}
	for _, u := range row.Uploads {
		e, err := convert.UploadToCore(u)
		if err != nil {
			return nil, err
		}
		h.Uploads = append(h.Uploads, e)
	}
	return h, nil
}

func orderByTime(db *gorm.DB) *gorm.DB {
	return db.Order("time, id")
}
