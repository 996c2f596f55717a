// Package projector maps a tracked camera pose to a marker placement pose on the
// floor plane in front of the camera.
package projector

import (
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// Defaults used by the placement engine.
const (
	DefaultForwardOffset = 1.0
	DefaultFloorY        = 0.0
)

// horizontal components shorter than this are treated as a vertical axis
const degenerateXZ = 1e-6

// Projector holds the fixed forward offset and floor height.
type Projector struct {
	ForwardOffset float64
	FloorY        float64
}

// New creates a Projector.
func New(forwardOffset, floorY float64) Projector {
	return Projector{ForwardOffset: forwardOffset, FloorY: floorY}
}

// Project returns a translation-only pose ForwardOffset units in front of the camera
// at height FloorY. "In front" is the camera's negated local Z axis flattened onto
// the XZ plane and renormalised, so the horizontal displacement is always
// ForwardOffset regardless of pitch. When the camera looks straight up or down the
// local Y axis (top of the screen) gives the direction instead.
func (p Projector) Project(camera core.Pose) core.Pose {
	dir := Heading(camera)
	return core.MakeTranslation(
		camera.Position.X+dir.X*p.ForwardOffset,
		p.FloorY,
		camera.Position.Z+dir.Z*p.ForwardOffset,
	)
}

// Heading is the unit XZ-plane direction the camera faces.
func Heading(camera core.Pose) r3.Vec {
	z := camera.ZAxis()
	fwd := r3.Vec{X: -z.X, Z: -z.Z}
	if r3.Norm(fwd) < degenerateXZ {
		y := camera.YAxis()
		if z.Y < 0 {
			// looking up: the top of the screen points backwards
			fwd = r3.Vec{X: -y.X, Z: -y.Z}
		} else {
			fwd = r3.Vec{X: y.X, Z: y.Z}
		}
	}
	return r3.Unit(fwd)
}

// HorizontalDistance is the XZ-plane distance between two points.
func HorizontalDistance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Vec{X: a.X - b.X, Z: a.Z - b.Z})
}
