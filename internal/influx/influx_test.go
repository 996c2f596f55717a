package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/config"
	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnchor struct{}

func (fakeAnchor) ID() string                        { return "a-1" }
func (fakeAnchor) Pose() core.Pose                   { return core.Pose{} }
func (fakeAnchor) TrackingState() core.TrackingState { return core.Tracking }
func (fakeAnchor) Detach()                           {}

var _ notify.Sink = Sink{}

func tags(t *testing.T, e notify.Event) (map[string]string, map[string]any) {
	t.Helper()
	p, ok := PointFromEvent(e, "s-1")
	require.True(t, ok)
	tagMap := map[string]string{}
	for _, tag := range p.TagList() {
		tagMap[tag.Key] = tag.Value
	}
	fieldMap := map[string]any{}
	for _, f := range p.FieldList() {
		fieldMap[f.Key] = f.Value
	}
	return tagMap, fieldMap
}

func TestPointFromEvent_Placement(t *testing.T) {
	rec := core.NewMarkerRecord(4, fakeAnchor{}, core.MakeTranslation(1, 0, -2), core.MakeTranslation(1, 1.4, -1), time.Now())
	tagMap, fields := tags(t, notify.Event{Kind: notify.PlacementSucceeded, Record: rec})

	assert.Equal(t, "success", tagMap["outcome"])
	assert.Equal(t, "s-1", tagMap["session"])
	assert.EqualValues(t, 4, fields["seq"])
	assert.Equal(t, 1.0, fields["x"])
	assert.Equal(t, -2.0, fields["z"])
	assert.Equal(t, 1.4, fields["camera_height"])
}

func TestPointFromEvent_FailureTagsErrorKind(t *testing.T) {
	tagMap, _ := tags(t, notify.Event{Kind: notify.PlacementFailed, Err: core.ErrSessionUnavailable})

	assert.Equal(t, "failure", tagMap["outcome"])
	assert.Equal(t, "SessionUnavailable", tagMap["error_kind"])
}

func TestPointFromEvent_AttachmentLatency(t *testing.T) {
	placed := time.Now()
	rec := core.NewMarkerRecord(0, fakeAnchor{}, core.Pose{}, core.Pose{}, placed)
	rec.Resolve(nil, placed.Add(250*time.Millisecond))

	_, fields := tags(t, notify.Event{Kind: notify.AttachmentSucceeded, Record: rec})
	assert.EqualValues(t, 250, fields["latency_ms"])
}

func TestPointFromEvent_Upload(t *testing.T) {
	_, fields := tags(t, notify.Event{Kind: notify.UploadFailed, StatusCode: 503, Err: errors.New("x")})
	assert.EqualValues(t, 503, fields["status_code"])
	assert.EqualValues(t, 0, fields["waypoints"])
}

func TestPointFromEvent_UnknownKind(t *testing.T) {
	_, ok := PointFromEvent(notify.Event{Kind: notify.Kind(99)}, "")
	assert.False(t, ok)
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	assert.Error(t, m.Connect(context.Background()))
}

func TestConnect_UnreachableFallsBackToBackup(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "metrics.lp.gz")
	m := NewManager(config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     "1",
		Org:      "o",
		Bucket:   "b",
	}, zerolog.Nop(), backup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)

	Sink{Manager: m, SessionID: "s-1"}.Notify(notify.Event{Kind: notify.UploadSucceeded, StatusCode: 200})
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	line := string(data)
	assert.True(t, strings.HasPrefix(line, "upload,"), line)
	assert.Contains(t, line, "session=s-1")
	assert.Contains(t, line, "status_code=200i")
}

func TestWritePoint_NoBackend(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	p, _ := PointFromEvent(notify.Event{Kind: notify.UploadSucceeded}, "")
	assert.Error(t, m.WritePoint(p))
}
