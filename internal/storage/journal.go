package storage

import (
	"log/slog"

	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Journal is a notify.Sink that records every notification in a Backend.
// Backend errors are logged and never reach the notifier.
type Journal struct {
	backend Backend
	logger  *slog.Logger
}

// NewJournal wraps backend. A nil logger uses slog.Default.
func NewJournal(backend Backend, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{backend: backend, logger: logger}
}

// Backend returns the wrapped backend.
func (j *Journal) Backend() Backend {
	return j.backend
}

func (j *Journal) Notify(e notify.Event) {
	var err error
	switch e.Kind {
	case notify.PlacementSucceeded, notify.PlacementFailed:
		pe := PlacementFromEvent(e)
		err = j.backend.RecordPlacement(&pe)
	case notify.AttachmentSucceeded, notify.AttachmentFailed:
		ae := AttachmentFromEvent(e)
		err = j.backend.RecordAttachment(&ae)
	case notify.UploadSucceeded, notify.UploadFailed:
		ue := UploadFromEvent(e)
		err = j.backend.RecordUpload(&ue)
	default:
		return
	}
	if err != nil {
		j.logger.Error("journal write failed", "kind", e.Kind.String(), "error", err)
	}
}

// PlacementFromEvent builds the journal entry for a placement notification.
func PlacementFromEvent(e notify.Event) core.PlacementEvent {
	pe := core.PlacementEvent{
		Time: e.Time,
		Seq:  -1,
	}
	if e.Record != nil {
		s := e.Record.Snapshot()
		pe.Seq = s.Seq
		pe.AnchorID = s.AnchorID
		pe.Target = s.Target
		pe.Camera = s.Camera
	}
	if e.Err != nil {
		pe.ErrorKind = core.ErrorKind(e.Err)
		pe.Error = e.Err.Error()
	}
	return pe
}

// AttachmentFromEvent builds the journal entry for an attachment notification.
func AttachmentFromEvent(e notify.Event) core.AttachmentEvent {
	ae := core.AttachmentEvent{Time: e.Time, Seq: -1}
	if e.Record != nil {
		ae.Seq = e.Record.Seq
		ae.AnchorID = e.Record.AnchorID()
		ae.State = e.Record.State().String()
	}
	if e.Err != nil {
		ae.ErrorKind = core.ErrorKind(e.Err)
		ae.Error = e.Err.Error()
	}
	return ae
}

// UploadFromEvent builds the journal entry for an upload notification.
func UploadFromEvent(e notify.Event) core.UploadEvent {
	ue := core.UploadEvent{
		Time:       e.Time,
		StatusCode: e.StatusCode,
		Message:    e.Message,
		Waypoints:  append([]core.Waypoint(nil), e.Waypoints...),
	}
	if e.Err != nil {
		ue.Error = e.Err.Error()
	}
	return ue
}
