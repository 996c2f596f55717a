package attach

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/asset"
	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/scene"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type testAnchor struct{ id string }

func (a testAnchor) ID() string                        { return a.id }
func (a testAnchor) Pose() core.Pose                   { return core.MakeTranslation(0, 0, 1) }
func (a testAnchor) TrackingState() core.TrackingState { return core.Tracking }
func (a testAnchor) Detach()                           {}

type fakeAssets struct {
	mu          sync.Mutex
	gate        chan struct{}
	loadErr     error
	instanceErr error
	loads       int
}

func (f *fakeAssets) LoadAsset(ctx context.Context, id string) (*asset.Asset, error) {
	f.mu.Lock()
	gate, err := f.gate, f.loadErr
	f.loads++
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &asset.Asset{ID: id}, nil
}

func (f *fakeAssets) CreateInstance(a *asset.Asset) (*scene.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.instanceErr != nil {
		return nil, f.instanceErr
	}
	return scene.NewNode("model:" + a.ID), nil
}

func (f *fakeAssets) set(loadErr, instanceErr error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadErr, f.instanceErr = loadErr, instanceErr
}

// serialPoster runs posted functions immediately, one at a time.
type serialPoster struct {
	mu     sync.Mutex
	closed bool
}

func (p *serialPoster) Post(fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("loop stopped")
	}
	fn()
	return nil
}

type fixture struct {
	loader *Loader
	assets *fakeAssets
	scene  *scene.Scene
	loop   *serialPoster
	events *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		assets: &fakeAssets{},
		scene:  scene.New(),
		loop:   &serialPoster{},
		events: &notify.Recorder{},
	}
	f.loader = New(Config{AssetID: "test.glb", OffsetY: DefaultOffsetY}, Dependencies{
		Assets: f.assets,
		Scene:  f.scene,
		Loop:   f.loop,
		Sink:   f.events,
	})
	return f
}

func newRecord(seq int, id string) *core.MarkerRecord {
	return core.NewMarkerRecord(seq, testAnchor{id: id}, core.MakeTranslation(0, 0, 1), core.MakeTranslation(0, 1.5, 0), time.Now())
}

func TestLoader_AttachesModelUnderMarkerNode(t *testing.T) {
	f := newFixture(t)
	rec := newRecord(0, "a0")

	f.loader.Attach(rec)
	f.loader.Wait()

	assert.Equal(t, core.Attached, rec.State())
	assert.NoError(t, rec.Err())

	anchorNode, ok := f.scene.AnchorNode("a0")
	require.True(t, ok)
	children := anchorNode.Children()
	require.Len(t, children, 1)
	marker := children[0]
	assert.Equal(t, "marker:0", marker.Name)

	models := marker.Children()
	require.Len(t, models, 1)
	assert.Equal(t, r3.Vec{X: 0.1, Y: 0.1, Z: 0.1}, models[0].Scale)
	assert.Equal(t, r3.Vec{Y: 0.05}, models[0].Position)

	assert.Equal(t, []notify.Kind{notify.AttachmentSucceeded}, f.events.Kinds())
}

func TestLoader_AttachReturnsBeforeLoadCompletes(t *testing.T) {
	f := newFixture(t)
	f.assets.gate = make(chan struct{})
	rec := newRecord(0, "a0")

	f.loader.Attach(rec)

	assert.Equal(t, core.Pending, rec.State())
	_, ok := f.scene.AnchorNode("a0")
	assert.True(t, ok, "anchor node exists as soon as Attach returns")

	close(f.assets.gate)
	f.loader.Wait()
	assert.Equal(t, core.Attached, rec.State())
}

func TestLoader_AssetLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.assets.set(errors.New("file not found"), nil)
	rec := newRecord(0, "a0")

	f.loader.Attach(rec)
	f.loader.Wait()

	assert.Equal(t, core.Failed, rec.State())
	assert.ErrorIs(t, rec.Err(), core.ErrAssetLoadFailed)

	anchorNode, ok := f.scene.AnchorNode("a0")
	require.True(t, ok)
	require.Len(t, anchorNode.Children(), 1)
	assert.Empty(t, anchorNode.Children()[0].Children(), "no model on failure")

	evs := f.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, notify.AttachmentFailed, evs[0].Kind)
	assert.Equal(t, "Could not load marker model", evs[0].Text())
}

func TestLoader_InstanceCreationFailure(t *testing.T) {
	f := newFixture(t)
	f.assets.set(nil, errors.New("no renderable"))
	rec := newRecord(0, "a0")

	f.loader.Attach(rec)
	f.loader.Wait()

	assert.Equal(t, core.Failed, rec.State())
	assert.ErrorIs(t, rec.Err(), core.ErrInstanceCreationFailed)
}

func TestLoader_FailureIsolatedToOneRecord(t *testing.T) {
	f := newFixture(t)
	recs := []*core.MarkerRecord{newRecord(0, "a0"), newRecord(1, "a1"), newRecord(2, "a2")}

	f.loader.Attach(recs[0])
	f.loader.Wait()

	f.assets.set(errors.New("corrupt"), nil)
	f.loader.Attach(recs[1])
	f.loader.Wait()

	f.assets.set(nil, nil)
	f.loader.Attach(recs[2])
	f.loader.Wait()

	assert.Equal(t, core.Attached, recs[0].State())
	assert.Equal(t, core.Failed, recs[1].State())
	assert.Equal(t, core.Attached, recs[2].State())
}

func TestLoader_ConcurrentAttachmentsResolveOnce(t *testing.T) {
	f := newFixture(t)
	f.assets.gate = make(chan struct{})

	var recs []*core.MarkerRecord
	for i := 0; i < 20; i++ {
		rec := newRecord(i, "a"+string(rune('a'+i)))
		recs = append(recs, rec)
		f.loader.Attach(rec)
	}
	close(f.assets.gate)
	f.loader.Wait()

	for _, rec := range recs {
		assert.Equal(t, core.Attached, rec.State())
	}
	assert.Len(t, f.events.Events(), 20)
}

func TestLoader_LoopStoppedResolvesSessionClosed(t *testing.T) {
	f := newFixture(t)
	f.loop.closed = true
	rec := newRecord(0, "a0")

	f.loader.Attach(rec)
	f.loader.Wait()

	assert.Equal(t, core.Failed, rec.State())
	assert.ErrorIs(t, rec.Err(), core.ErrSessionClosed)
}

func TestLoader_SceneClearedBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	f.assets.gate = make(chan struct{})
	rec := newRecord(0, "a0")

	f.loader.Attach(rec)
	anchorNode, ok := f.scene.AnchorNode("a0")
	require.True(t, ok)
	marker := anchorNode.Children()[0]
	f.scene.Remove(marker)

	close(f.assets.gate)
	f.loader.Wait()

	assert.Equal(t, core.Failed, rec.State())
	assert.ErrorIs(t, rec.Err(), core.ErrSessionClosed)
	assert.Empty(t, marker.Children())
}

func TestNew_Defaults(t *testing.T) {
	l := New(Config{}, Dependencies{})
	assert.Equal(t, DefaultScale, l.cfg.Scale)
	assert.Equal(t, DefaultTimeout, l.cfg.Timeout)
	assert.NotNil(t, l.deps.Sink)
	assert.NotNil(t, l.deps.Logger)
}
