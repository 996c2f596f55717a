package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kunalpal97/ar-indoor-nav/internal/api"
	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/waypoint"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedUploader struct {
	responses []*api.Response
	errs      []error
	calls     int
}

func (u *scriptedUploader) Upload(ctx context.Context, filePath string) (*api.Response, error) {
	i := u.calls
	u.calls++
	return u.responses[i], u.errs[i]
}

func ok(wps ...core.Waypoint) *api.Response {
	return &api.Response{StatusCode: 200, Status: "OK", Message: "done", Waypoints: wps, HasBody: true}
}

func newService(u Uploader) (*Service, *waypoint.Store, *notify.Recorder) {
	store := waypoint.NewStore()
	rec := &notify.Recorder{}
	return New(u, store, rec, nil), store, rec
}

func TestUploadImage_SecondUploadSupersedesFirst(t *testing.T) {
	first := []core.Waypoint{{ID: 1, X: 1}, {ID: 2, X: 2}}
	second := []core.Waypoint{{ID: 7, X: -1, Z: 3}}
	u := &scriptedUploader{
		responses: []*api.Response{ok(first...), ok(second...)},
		errs:      []error{nil, nil},
	}
	svc, store, _ := newService(u)

	require.True(t, svc.UploadImage(context.Background(), "a.jpg").Stored)
	require.True(t, svc.UploadImage(context.Background(), "b.jpg").Stored)

	if diff := cmp.Diff(second, store.Get()); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestUploadImage_FailureAfterSuccessLeavesStore(t *testing.T) {
	prior := []core.Waypoint{{ID: 1, X: 1}, {ID: 2, X: 2}}
	u := &scriptedUploader{
		responses: []*api.Response{
			ok(prior...),
			{StatusCode: 500, Status: "Internal Server Error"},
			nil,
		},
		errs: []error{nil, nil, errors.New("connection refused")},
	}
	svc, store, events := newService(u)

	svc.UploadImage(context.Background(), "a.jpg")
	res := svc.UploadImage(context.Background(), "b.jpg")
	assert.False(t, res.Stored)
	res = svc.UploadImage(context.Background(), "c.jpg")
	assert.False(t, res.Stored)
	assert.Error(t, res.Err)

	if diff := cmp.Diff(prior, store.Get()); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint64(1), store.Generation())

	evs := events.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, "Upload successful", evs[0].Text())
	assert.Equal(t, "Error: 500 - Internal Server Error", evs[1].Text())
	assert.Equal(t, "Upload failed: connection refused", evs[2].Text())
}

func TestUploadImage_SuccessWithoutBodyKeepsStore(t *testing.T) {
	prior := []core.Waypoint{{ID: 1}}
	u := &scriptedUploader{
		responses: []*api.Response{ok(prior...), {StatusCode: 200, Status: "OK"}},
		errs:      []error{nil, nil},
	}
	svc, store, events := newService(u)

	svc.UploadImage(context.Background(), "a.jpg")
	res := svc.UploadImage(context.Background(), "b.jpg")

	assert.False(t, res.Stored)
	assert.Equal(t, prior, store.Get())
	ev := events.Events()[1]
	assert.Equal(t, notify.UploadSucceeded, ev.Kind)
	assert.Empty(t, ev.Waypoints, "bodyless response reports no waypoints")
}

func TestUploadImage_EventCarriesResponseWaypoints(t *testing.T) {
	mine := []core.Waypoint{{ID: 4, X: 2, Z: -1}}
	u := &scriptedUploader{
		responses: []*api.Response{ok(mine...)},
		errs:      []error{nil},
	}
	svc, _, events := newService(u)

	svc.UploadImage(context.Background(), "a.jpg")

	evs := events.Events()
	require.Len(t, evs, 1)
	if diff := cmp.Diff(mine, evs[0].Waypoints); diff != "" {
		t.Errorf("event waypoints mismatch (-want +got):\n%s", diff)
	}
}

func TestUploadImage_EmptyListReplaces(t *testing.T) {
	u := &scriptedUploader{
		responses: []*api.Response{ok(core.Waypoint{ID: 1}), ok()},
		errs:      []error{nil, nil},
	}
	svc, store, _ := newService(u)

	svc.UploadImage(context.Background(), "a.jpg")
	res := svc.UploadImage(context.Background(), "b.jpg")

	assert.True(t, res.Stored)
	assert.Empty(t, store.Get())
}

func TestIngest(t *testing.T) {
	store := waypoint.NewStore()

	assert.False(t, Ingest(store, nil))
	assert.False(t, Ingest(store, &api.Response{StatusCode: 404, HasBody: true}))
	assert.True(t, Ingest(store, ok(core.Waypoint{ID: 3})))
	assert.Equal(t, []core.Waypoint{{ID: 3}}, store.Get())
}
