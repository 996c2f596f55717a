// Package session wires the loop, the placement engine, the attachment loader and
// the waypoint store into one AR session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kunalpal97/ar-indoor-nav/internal/attach"
	"github.com/kunalpal97/ar-indoor-nav/internal/dispatcher"
	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/placement"
	"github.com/kunalpal97/ar-indoor-nav/internal/registry"
	"github.com/kunalpal97/ar-indoor-nav/internal/scene"
	"github.com/kunalpal97/ar-indoor-nav/internal/storage"
	"github.com/kunalpal97/ar-indoor-nav/internal/tracking"
	"github.com/kunalpal97/ar-indoor-nav/internal/upload"
	"github.com/kunalpal97/ar-indoor-nav/internal/waypoint"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Loop commands
const (
	CmdTouch   = "touch"
	CmdPlace   = "place"
	CmdMarkers = "markers"
	CmdScene   = "scene"
	CmdBarrier = "barrier"
	CmdClose   = "close"
)

// ErrNoUploader is returned by Upload when no recognition client is configured.
var ErrNoUploader = errors.New("no upload client configured")

// Config holds session parameters.
type Config struct {
	// ID names the session; a random UUID is used when empty.
	ID        string
	Device    string
	Placement placement.Config
	Attach    attach.Config
	Loop      dispatcher.Config
}

// Dependencies holds the collaborators of a session. Provider and Assets are
// required; everything else has a usable default.
type Dependencies struct {
	Provider   tracking.Provider
	Assets     attach.Assets
	Uploader   upload.Uploader
	Backend    storage.Backend
	Sinks      []notify.Sink
	Logger     *slog.Logger
	LoopLogger dispatcher.Logger
	Now        func() time.Time
}

// Session is one running AR session.
type Session struct {
	info     core.Session
	deps     Dependencies
	loop     *dispatcher.Dispatcher
	engine   *placement.Engine
	loader   *attach.Loader
	scene    *scene.Scene
	store    *waypoint.Store
	uploads  *upload.Service
	recorder *notify.Recorder
	journal  *storage.Journal

	closeOnce sync.Once
	closeErr  error
	dropped   int
}

// New builds and starts a session. The backend, when set, is initialized and
// receives StartSession before New returns.
func New(cfg Config, deps Dependencies) (*Session, error) {
	if deps.Provider == nil {
		return nil, fmt.Errorf("session: tracking provider is required")
	}
	if deps.Assets == nil {
		return nil, fmt.Errorf("session: asset loader is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.LoopLogger == nil {
		deps.LoopLogger = slogLoopLogger{deps.Logger}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.Device == "" {
		cfg.Device = "unknown"
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	s := &Session{
		info: core.Session{
			ID:        cfg.ID,
			Device:    cfg.Device,
			StartedAt: deps.Now(),
		},
		deps:     deps,
		scene:    scene.New(),
		store:    waypoint.NewStore(),
		recorder: &notify.Recorder{},
	}
	logger := deps.Logger.With("session", s.info.ID)

	sinks := notify.Multi{s.recorder, notify.LogSink{Logger: logger}}
	if deps.Backend != nil {
		if err := deps.Backend.Init(); err != nil {
			return nil, fmt.Errorf("session: init journal: %w", err)
		}
		if err := deps.Backend.StartSession(&s.info); err != nil {
			_ = deps.Backend.Close()
			return nil, fmt.Errorf("session: start journal: %w", err)
		}
		s.journal = storage.NewJournal(deps.Backend, logger)
		sinks = append(sinks, s.journal)
	}
	sinks = append(sinks, deps.Sinks...)

	loop, err := dispatcher.New(deps.LoopLogger, cfg.Loop)
	if err != nil {
		return nil, fmt.Errorf("session: create loop: %w", err)
	}
	s.loop = loop

	s.loader = attach.New(cfg.Attach, attach.Dependencies{
		Assets: deps.Assets,
		Scene:  s.scene,
		Loop:   loop,
		Sink:   sinks,
		Logger: logger,
		Now:    deps.Now,
	})
	s.engine = placement.New(cfg.Placement, placement.Dependencies{
		Provider: deps.Provider,
		Registry: registry.New(),
		Attacher: s.loader,
		Sink:     sinks,
		Logger:   logger,
		Now:      deps.Now,
	})
	if deps.Uploader != nil {
		s.uploads = upload.New(deps.Uploader, s.store, sinks, logger)
	}

	s.RegisterHandlers(loop)
	loop.Start()

	logger.Info("session started", "device", s.info.Device)
	return s, nil
}

// RegisterHandlers registers the session commands with the loop.
func (s *Session) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(CmdTouch, s.handleTouch, dispatcher.Logged())
	d.Register(CmdPlace, s.handlePlace, dispatcher.Logged())
	d.Register(CmdMarkers, s.handleMarkers)
	d.Register(CmdScene, s.handleScene)
	d.Register(CmdBarrier, func(dispatcher.Event) (any, error) { return nil, nil })
	d.Register(CmdClose, s.handleClose, dispatcher.Logged())
}

func (s *Session) handleTouch(e dispatcher.Event) (any, error) {
	ev, ok := e.Payload.(core.TouchEvent)
	if !ok {
		return nil, fmt.Errorf("touch: unexpected payload %T", e.Payload)
	}
	return s.engine.HandleTouch(ev), nil
}

func (s *Session) handlePlace(e dispatcher.Event) (any, error) {
	ev, _ := e.Payload.(core.TouchEvent)
	return s.engine.PlaceMarkerAt(ev)
}

func (s *Session) handleMarkers(dispatcher.Event) (any, error) {
	return s.engine.Registry().Snapshots(), nil
}

func (s *Session) handleScene(dispatcher.Event) (any, error) {
	return s.scene.Dump(), nil
}

func (s *Session) handleClose(dispatcher.Event) (any, error) {
	n := s.engine.Close()
	s.scene.Clear()
	return n, nil
}

// Info returns the session identity
func (s *Session) Info() core.Session {
	return s.info
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.info.ID
}

// Touch queues a touch for the loop and returns without waiting for it.
func (s *Session) Touch(ev core.TouchEvent) error {
	if ev.Time.IsZero() {
		ev.Time = s.deps.Now()
	}
	return s.loop.Send(dispatcher.Event{Command: CmdTouch, Payload: ev, Timestamp: ev.Time})
}

// Place places a marker on the loop and waits for the placement result. The
// attachment still resolves asynchronously; wait on the record's Done channel.
func (s *Session) Place(ev core.TouchEvent) (*core.MarkerRecord, error) {
	v, err := s.loop.Dispatch(dispatcher.Event{Command: CmdPlace, Payload: ev, Timestamp: s.deps.Now()})
	if err != nil {
		return nil, err
	}
	rec, _ := v.(*core.MarkerRecord)
	return rec, nil
}

// Markers returns a snapshot of every placed marker in placement order.
func (s *Session) Markers() ([]core.MarkerSnapshot, error) {
	v, err := s.loop.Dispatch(dispatcher.Event{Command: CmdMarkers, Timestamp: s.deps.Now()})
	if err != nil {
		return nil, err
	}
	snaps, _ := v.([]core.MarkerSnapshot)
	return snaps, nil
}

// Scene renders the scene graph, one node per line.
func (s *Session) Scene() ([]string, error) {
	v, err := s.loop.Dispatch(dispatcher.Event{Command: CmdScene, Timestamp: s.deps.Now()})
	if err != nil {
		return nil, err
	}
	lines, _ := v.([]string)
	return lines, nil
}

// Settle waits until every queued touch has run and every started attachment has
// been resolved on the loop, or ctx is done.
func (s *Session) Settle(ctx context.Context) error {
	if err := s.barrier(ctx); err != nil {
		return err
	}
	done := make(chan struct{})
	go func() {
		s.loader.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.barrier(ctx)
}

// Waypoints returns the waypoint store
func (s *Session) Waypoints() *waypoint.Store {
	return s.store
}

// Notifications returns the recorder holding every notification of the session
func (s *Session) Notifications() *notify.Recorder {
	return s.recorder
}

// Upload sends an image to the recognition service and feeds the waypoint store.
func (s *Session) Upload(ctx context.Context, filePath string) upload.Result {
	if s.uploads == nil {
		return upload.Result{Err: ErrNoUploader}
	}
	return s.uploads.UploadImage(ctx, filePath)
}

// Close tears the session down: anchors are detached, the registry and scene are
// discarded, the loop is stopped and the journal is ended. Pending attachments
// resolve with ErrSessionClosed. Returns the number of markers dropped.
func (s *Session) Close() (int, error) {
	s.closeOnce.Do(func() {
		var errs []error
		v, err := s.loop.Dispatch(dispatcher.Event{Command: CmdClose, Timestamp: s.deps.Now()})
		if err != nil {
			errs = append(errs, fmt.Errorf("close markers: %w", err))
		}
		s.dropped, _ = v.(int)

		s.loop.Stop()
		s.loader.Wait()

		if s.deps.Backend != nil {
			if err := s.deps.Backend.EndSession(); err != nil {
				errs = append(errs, fmt.Errorf("end journal: %w", err))
			}
			if err := s.deps.Backend.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close journal: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
		s.deps.Logger.Info("session closed", "session", s.info.ID, "dropped", s.dropped)
	})
	return s.dropped, s.closeErr
}

// slogLoopLogger adapts slog to the loop's logger interface when no dedicated
// loop logger is supplied.
type slogLoopLogger struct {
	l *slog.Logger
}

func (a slogLoopLogger) Debug(msg string, kv ...any) { a.l.Debug(msg, kv...) }
func (a slogLoopLogger) Info(msg string, kv ...any)  { a.l.Info(msg, kv...) }
func (a slogLoopLogger) Error(msg string, kv ...any) { a.l.Error(msg, kv...) }
