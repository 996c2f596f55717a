package placement

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/projector"
	"github.com/kunalpal97/ar-indoor-nav/internal/registry"
	"github.com/kunalpal97/ar-indoor-nav/internal/tracking"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Attacher starts attaching the visual representation of a placed marker.
// It must return without waiting for the attachment to complete.
type Attacher interface {
	Attach(rec *core.MarkerRecord)
}

// Config holds projection parameters.
type Config struct {
	ForwardOffset float64
	FloorY        float64
}

// Dependencies are the collaborators an Engine needs.
type Dependencies struct {
	Provider tracking.Provider
	Registry *registry.Registry
	Attacher Attacher
	Sink     notify.Sink
	Logger   *slog.Logger
	Now      func() time.Time
}

// Engine turns touches into anchored markers. It is not safe for concurrent use:
// every call must come from the loop goroutine.
type Engine struct {
	projector projector.Projector
	deps      Dependencies
	closed    bool
}

// New creates an Engine
func New(cfg Config, deps Dependencies) *Engine {
	if deps.Registry == nil {
		deps.Registry = registry.New()
	}
	if deps.Sink == nil {
		deps.Sink = notify.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Engine{
		projector: projector.New(cfg.ForwardOffset, cfg.FloorY),
		deps:      deps,
	}
}

// Registry returns the registry the engine appends to
func (e *Engine) Registry() *registry.Registry {
	return e.deps.Registry
}

// HandleTouch places a marker on a touch-down and ignores every other action.
// The gesture is always reported as consumed.
func (e *Engine) HandleTouch(ev core.TouchEvent) bool {
	if ev.Action == core.TouchDown {
		// failures are already reported through the sink
		_, _ = e.PlaceMarkerAt(ev)
	}
	return true
}

// PlaceMarkerAt places one marker in front of the current camera. The record is in
// the registry when this returns; its attachment resolves later.
func (e *Engine) PlaceMarkerAt(ev core.TouchEvent) (*core.MarkerRecord, error) {
	rec, err := e.place()
	if err != nil {
		e.deps.Logger.Debug("placement rejected", "x", ev.X, "y", ev.Y, "error", err)
		e.deps.Sink.Notify(notify.Event{Kind: notify.PlacementFailed, Time: e.deps.Now(), Err: err})
		return nil, err
	}

	e.deps.Logger.Info("marker placed",
		"seq", rec.Seq,
		"anchor", rec.AnchorID(),
		"target", rec.Target.Position,
		"camera", rec.Camera.Position,
	)
	e.deps.Sink.Notify(notify.Event{Kind: notify.PlacementSucceeded, Time: rec.PlacedAt, Record: rec})
	e.deps.Attacher.Attach(rec)
	return rec, nil
}

func (e *Engine) place() (*core.MarkerRecord, error) {
	if e.closed {
		return nil, core.ErrSessionClosed
	}
	frame, ok := e.deps.Provider.CurrentFrame()
	if !ok || frame == nil {
		return nil, core.ErrFrameUnavailable
	}
	if st := frame.TrackingState(); st != core.Tracking {
		return nil, fmt.Errorf("%w: state %s", core.ErrTrackingLost, st)
	}
	sess, ok := e.deps.Provider.Session()
	if !ok || sess == nil || !sess.Active() {
		return nil, core.ErrSessionUnavailable
	}

	camera := frame.CameraPose()
	target := e.projector.Project(camera)

	anchor, err := sess.CreateAnchor(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAnchorCreationFailed, err)
	}
	if anchor == nil {
		return nil, core.ErrAnchorCreationFailed
	}

	rec := core.NewMarkerRecord(e.deps.Registry.NextSeq(), anchor, target, camera, e.deps.Now())
	e.deps.Registry.Append(rec)
	return rec, nil
}

// Close detaches every anchor and discards the registry. Placements after Close
// fail with ErrSessionClosed. Returns the number of markers dropped.
func (e *Engine) Close() int {
	e.closed = true
	dropped := e.deps.Registry.Reset()
	for _, rec := range dropped {
		rec.Anchor.Detach()
	}
	if len(dropped) > 0 {
		e.deps.Logger.Info("session markers discarded", "count", len(dropped))
	}
	return len(dropped)
}
