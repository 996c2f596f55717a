package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Kind identifies a user-facing notification.
type Kind int

const (
	PlacementSucceeded Kind = iota
	PlacementFailed
	AttachmentSucceeded
	AttachmentFailed
	UploadSucceeded
	UploadFailed
)

func (k Kind) String() string {
	switch k {
	case PlacementSucceeded:
		return "placement.succeeded"
	case PlacementFailed:
		return "placement.failed"
	case AttachmentSucceeded:
		return "attachment.succeeded"
	case AttachmentFailed:
		return "attachment.failed"
	case UploadSucceeded:
		return "upload.succeeded"
	case UploadFailed:
		return "upload.failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failed reports whether the kind describes a failure
func (k Kind) Failed() bool {
	return k == PlacementFailed || k == AttachmentFailed || k == UploadFailed
}

// Event is a discrete notification emitted by the core. Record is set for placement
// success and attachment events; upload fields are set for upload events.
type Event struct {
	Kind   Kind
	Time   time.Time
	Record *core.MarkerRecord
	Err    error

	StatusCode int
	Message    string
	Waypoints  []core.Waypoint
}

// Text is the message shown to the operator.
func (e Event) Text() string {
	switch e.Kind {
	case PlacementSucceeded:
		return "Marker placed!"
	case PlacementFailed:
		switch {
		case errors.Is(e.Err, core.ErrFrameUnavailable), errors.Is(e.Err, core.ErrTrackingLost):
			return "AR Frame not available or tracking lost"
		case errors.Is(e.Err, core.ErrSessionUnavailable):
			return "AR session is not available"
		default:
			return fmt.Sprintf("Could not place marker: %v", e.Err)
		}
	case AttachmentSucceeded:
		return "Marker model attached"
	case AttachmentFailed:
		switch {
		case errors.Is(e.Err, core.ErrAssetLoadFailed):
			return "Could not load marker model"
		case errors.Is(e.Err, core.ErrInstanceCreationFailed):
			return "Failed to create model instance"
		default:
			return fmt.Sprintf("Could not attach marker: %v", e.Err)
		}
	case UploadSucceeded:
		return "Upload successful"
	case UploadFailed:
		if e.StatusCode > 0 {
			return fmt.Sprintf("Error: %d - %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("Upload failed: %v", e.Err)
	default:
		return e.Kind.String()
	}
}

// Sink receives notifications. Implementations must not block for long: sinks are
// called from the loop goroutine.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Event)

func (f SinkFunc) Notify(e Event) { f(e) }

// Discard drops every notification
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans a notification out to every sink in order
type Multi []Sink

func (m Multi) Notify(e Event) {
	for _, s := range m {
		if s != nil {
			s.Notify(e)
		}
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	subs   []chan Event
}

func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	for _, ch := range r.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Events returns a copy of the recorded notifications
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded kinds in order
func (r *Recorder) Kinds() []Kind {
	events := r.Events()
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

// Subscribe returns a channel receiving future notifications. Slow subscribers miss
// events rather than stall the notifier. The returned func unsubscribes.
func (r *Recorder) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, c := range r.subs {
			if c == ch {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
}

// LogSink writes notifications to a slog logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(e Event) {
	attrs := []any{"kind", e.Kind.String(), "text", e.Text()}
	if e.Record != nil {
		attrs = append(attrs, "seq", e.Record.Seq, "anchor", e.Record.AnchorID())
	}
	if e.Err != nil {
		attrs = append(attrs, "errorKind", core.ErrorKind(e.Err), "error", e.Err)
	}
	if e.Kind == UploadSucceeded || e.Kind == UploadFailed {
		attrs = append(attrs, "status", e.StatusCode, "waypoints", len(e.Waypoints))
	}

	if e.Kind.Failed() {
		s.Logger.Warn("notification", attrs...)
		return
	}
	s.Logger.Info("notification", attrs...)
}
