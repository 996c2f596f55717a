// pkg/core/touch.go
package core

import (
	"strings"
	"time"
)

// TouchAction is the phase of a touch gesture.
type TouchAction int

const (
	TouchDown TouchAction = iota
	TouchMove
	TouchUp
	TouchCancel
)

func (a TouchAction) String() string {
	switch a {
	case TouchDown:
		return "down"
	case TouchMove:
		return "move"
	case TouchUp:
		return "up"
	default:
		return "cancel"
	}
}

// ParseTouchAction converts an action name to a TouchAction.
func ParseTouchAction(s string) (TouchAction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down", "tap":
		return TouchDown, true
	case "move":
		return TouchMove, true
	case "up":
		return TouchUp, true
	case "cancel":
		return TouchCancel, true
	default:
		return TouchCancel, false
	}
}

// TouchEvent is a single touch sample on the camera view, in screen pixels.
type TouchEvent struct {
	Action TouchAction
	X, Y   float64
	Time   time.Time
}
