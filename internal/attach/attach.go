package attach

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/asset"
	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/scene"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultScale   = 0.1
	DefaultOffsetY = 0.05
	DefaultTimeout = 30 * time.Second
)

// Assets loads and instantiates 3D assets.
type Assets interface {
	LoadAsset(ctx context.Context, id string) (*asset.Asset, error)
	CreateInstance(a *asset.Asset) (*scene.Node, error)
}

// Poster schedules a function on the loop goroutine.
type Poster interface {
	Post(fn func()) error
}

// Config holds the fixed asset and its placement under the marker node.
type Config struct {
	AssetID string
	Scale   float64
	OffsetY float64
	Timeout time.Duration
}

// Dependencies are the collaborators a Loader needs.
type Dependencies struct {
	Assets Assets
	Scene  *scene.Scene
	Loop   Poster
	Sink   notify.Sink
	Logger *slog.Logger
	Now    func() time.Time
}

// Loader attaches the marker model to placed anchors. Attach returns immediately;
// the load runs on its own goroutine and its completion is posted back to the loop,
// where the record is resolved.
type Loader struct {
	cfg  Config
	deps Dependencies
	wg   sync.WaitGroup
}

// New creates a Loader, filling unset config with defaults
func New(cfg Config, deps Dependencies) *Loader {
	if cfg.Scale == 0 {
		cfg.Scale = DefaultScale
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
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
	return &Loader{cfg: cfg, deps: deps}
}

// Attach adds the anchor and marker nodes for rec and starts loading the model.
// Must be called on the loop goroutine.
func (l *Loader) Attach(rec *core.MarkerRecord) {
	anchorNode := l.deps.Scene.AddAnchor(rec.Anchor)
	marker := scene.NewNode(fmt.Sprintf("marker:%d", rec.Seq))
	l.deps.Scene.AddChild(anchorNode, marker)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), l.cfg.Timeout)
		defer cancel()
		a, err := l.deps.Assets.LoadAsset(ctx, l.cfg.AssetID)
		if err != nil {
			err = fmt.Errorf("%w: %v", core.ErrAssetLoadFailed, err)
		}

		postErr := l.deps.Loop.Post(func() {
			l.complete(rec, marker, a, err)
		})
		if postErr != nil {
			// The loop is gone, nothing else can touch the record now.
			l.resolve(rec, fmt.Errorf("%w: %v", core.ErrSessionClosed, postErr))
		}
	}()
}

func (l *Loader) complete(rec *core.MarkerRecord, marker *scene.Node, a *asset.Asset, err error) {
	if err == nil && !l.deps.Scene.Contains(marker) {
		err = fmt.Errorf("%w: marker node removed", core.ErrSessionClosed)
	}
	if err == nil {
		var model *scene.Node
		model, err = l.deps.Assets.CreateInstance(a)
		if err != nil {
			err = fmt.Errorf("%w: %v", core.ErrInstanceCreationFailed, err)
		} else {
			model.Scale = r3.Vec{X: l.cfg.Scale, Y: l.cfg.Scale, Z: l.cfg.Scale}
			model.Position = r3.Vec{Y: l.cfg.OffsetY}
			l.deps.Scene.AddChild(marker, model)
		}
	}
	l.resolve(rec, err)
}

func (l *Loader) resolve(rec *core.MarkerRecord, err error) {
	if !rec.Resolve(err, l.deps.Now()) {
		return
	}

	ev := notify.Event{Kind: notify.AttachmentSucceeded, Time: rec.ResolvedAt(), Record: rec, Err: err}
	if err != nil {
		ev.Kind = notify.AttachmentFailed
		l.deps.Logger.Warn("marker attachment failed", "seq", rec.Seq, "anchor", rec.AnchorID(), "error", err)
	} else {
		l.deps.Logger.Debug("marker attached", "seq", rec.Seq, "anchor", rec.AnchorID())
	}
	l.deps.Sink.Notify(ev)
}

// Wait blocks until every started load has handed its completion to the loop.
func (l *Loader) Wait() {
	l.wg.Wait()
}
