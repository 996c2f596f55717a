// pkg/core/errors.go
package core

import "errors"

// Placement-time errors. All are recoverable: the user retries the touch.
var (
	ErrFrameUnavailable     = errors.New("frame unavailable")
	ErrTrackingLost         = errors.New("tracking lost")
	ErrSessionUnavailable   = errors.New("session unavailable")
	ErrAnchorCreationFailed = errors.New("anchor creation failed")
)

// Attachment-time errors. Terminal for the attachment attempt, never retried.
var (
	ErrAssetLoadFailed        = errors.New("asset load failed")
	ErrInstanceCreationFailed = errors.New("instance creation failed")
)

// ErrSessionClosed is returned for work submitted after session teardown.
var ErrSessionClosed = errors.New("session closed")

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrFrameUnavailable, "FrameUnavailable"},
	{ErrTrackingLost, "TrackingLost"},
	{ErrSessionUnavailable, "SessionUnavailable"},
	{ErrAnchorCreationFailed, "AnchorCreationFailed"},
	{ErrAssetLoadFailed, "AssetLoadFailed"},
	{ErrInstanceCreationFailed, "InstanceCreationFailed"},
	{ErrSessionClosed, "SessionClosed"},
}

// ErrorKind names the taxonomy entry err belongs to, "" for nil and "Unknown" otherwise.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Unknown"
}
