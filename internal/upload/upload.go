package upload

import (
	"context"
	"log/slog"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/api"
	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/waypoint"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Uploader sends an image to the recognition service.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (*api.Response, error)
}

// Result is what one upload produced.
type Result struct {
	Response *api.Response
	Err      error
	// Stored is true when the store was replaced with the response's waypoints.
	Stored bool
}

// Service runs the upload flow and feeds the waypoint store.
type Service struct {
	client Uploader
	store  *waypoint.Store
	sink   notify.Sink
	logger *slog.Logger
	now    func() time.Time
}

// New creates an upload Service
func New(client Uploader, store *waypoint.Store, sink notify.Sink, logger *slog.Logger) *Service {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, store: store, sink: sink, logger: logger, now: time.Now}
}

// Store returns the waypoint store the service writes
func (s *Service) Store() *waypoint.Store {
	return s.store
}

// UploadImage uploads the image and, on success, replaces the store contents with
// the returned list. Failures leave the store untouched.
func (s *Service) UploadImage(ctx context.Context, filePath string) Result {
	start := s.now()
	resp, err := s.client.Upload(ctx, filePath)
	res := Result{Response: resp, Err: err}

	ev := notify.Event{Time: s.now(), Err: err}
	switch {
	case err != nil:
		ev.Kind = notify.UploadFailed
		s.logger.Warn("upload failed", "file", filePath, "error", err)
	case !resp.Success():
		ev.Kind = notify.UploadFailed
		ev.StatusCode = resp.StatusCode
		ev.Message = resp.Status
		s.logger.Warn("upload rejected", "file", filePath, "status", resp.StatusCode, "reason", resp.Status)
	default:
		res.Stored = Ingest(s.store, resp)
		ev.Kind = notify.UploadSucceeded
		ev.StatusCode = resp.StatusCode
		ev.Message = resp.Message
		ev.Waypoints = resp.Waypoints
		s.logger.Info("upload complete",
			"file", filePath,
			"waypoints", len(ev.Waypoints),
			"stored", res.Stored,
			"duration", time.Since(start),
		)
	}
	s.sink.Notify(ev)
	return res
}

// Ingest applies a response to the store: only a successful response with a body
// replaces the contents. Reports whether the store changed.
func Ingest(store *waypoint.Store, resp *api.Response) bool {
	if resp == nil || !resp.Success() || !resp.HasBody {
		return false
	}
	wps := resp.Waypoints
	if wps == nil {
		wps = []core.Waypoint{}
	}
	store.Set(wps)
	return true
}
