// pkg/core/pose.go
package core

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// IdentityRotation is the orientation of a translation-only pose.
var IdentityRotation = quat.Number{Real: 1}

// Pose is a 6-DoF position + orientation in world coordinates.
// Orientation is a unit quaternion; constructors normalise it.
type Pose struct {
	Position    r3.Vec
	Orientation quat.Number
}

// NewPose builds a pose from a position and an orientation. A zero quaternion is
// treated as the identity.
func NewPose(position r3.Vec, orientation quat.Number) Pose {
	return Pose{Position: position, Orientation: normalize(orientation)}
}

// MakeTranslation returns a translation-only pose at (x, y, z).
func MakeTranslation(x, y, z float64) Pose {
	return Pose{Position: r3.Vec{X: x, Y: y, Z: z}, Orientation: IdentityRotation}
}

// Rotate applies the pose orientation to v.
func (p Pose) Rotate(v r3.Vec) r3.Vec {
	return r3.Rotation(normalize(p.Orientation)).Rotate(v)
}

// XAxis returns the pose's local +X axis in world coordinates.
func (p Pose) XAxis() r3.Vec { return p.Rotate(r3.Vec{X: 1}) }

// YAxis returns the pose's local +Y axis in world coordinates.
func (p Pose) YAxis() r3.Vec { return p.Rotate(r3.Vec{Y: 1}) }

// ZAxis returns the pose's local +Z axis in world coordinates. For a camera pose
// this points away from the viewing direction.
func (p Pose) ZAxis() r3.Vec { return p.Rotate(r3.Vec{Z: 1}) }

func (p Pose) String() string {
	return fmt.Sprintf("t=(%.3f, %.3f, %.3f) q=(%.3f, %.3f, %.3f, %.3f)",
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.Imag, p.Orientation.Jmag, p.Orientation.Kmag, p.Orientation.Real)
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return IdentityRotation
	}
	if n == 1 {
		return q
	}
	return quat.Scale(1/n, q)
}
