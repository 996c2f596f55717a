package gormstore

import (
	"testing"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHistory(t *testing.T) {
	b, db := newTestBackend(t)
	s := testSession()
	require.NoError(t, b.StartSession(s))

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, b.RecordPlacement(&core.PlacementEvent{Time: t0.Add(time.Second), Seq: -1, ErrorKind: "TrackingLost"}))
	require.NoError(t, b.RecordPlacement(&core.PlacementEvent{Time: t0, Seq: 0, AnchorID: "a", Target: core.Vec3{X: 1, Z: -1}}))
	require.NoError(t, b.RecordAttachment(&core.AttachmentEvent{Time: t0, Seq: 0, AnchorID: "a", State: "attached"}))
	require.NoError(t, b.RecordUpload(&core.UploadEvent{Time: t0, StatusCode: 200, Message: "ok",
		Waypoints: []core.Waypoint{{ID: 1, X: 1.5, Z: -2}}}))
	require.NoError(t, b.EndSession())

	h, err := LoadHistory(db, "")
	require.NoError(t, err)

	assert.Equal(t, s.ID, h.Session.ID)
	assert.Equal(t, "sim", h.Session.Device)
	require.Len(t, h.Placements, 2)
	assert.Equal(t, 0, h.Placements[0].Seq, "placements come back in time order")
	assert.Equal(t, "TrackingLost", h.Placements[1].ErrorKind)
	require.Len(t, h.Attachments, 1)
	assert.Equal(t, "attached", h.Attachments[0].State)
	require.Len(t, h.Uploads, 1)
	assert.Equal(t, []core.Waypoint{{ID: 1, X: 1.5, Z: -2}}, h.Uploads[0].Waypoints)

	byID, err := LoadHistory(db, s.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Session.ID, byID.Session.ID)
}

func TestLoadHistory_NotFound(t *testing.T) {
	_, db := newTestBackend(t)

	_, err := LoadHistory(db, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = LoadHistory(db, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
