// pkg/core/waypoint.go
package core

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a JSON-friendly 3D coordinate.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec3FromR3 converts a gonum vector.
func Vec3FromR3(v r3.Vec) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// R3 converts to a gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Waypoint is a single 3D coordinate returned by the recognition service.
type Waypoint struct {
	ID int     `json:"waypoint_id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

func (w Waypoint) String() string {
	return fmt.Sprintf("Waypoint %d: (%v, %v, %v)", w.ID, w.X, w.Y, w.Z)
}

// Position returns the waypoint coordinate as a vector.
func (w Waypoint) Position() r3.Vec {
	return r3.Vec{X: w.X, Y: w.Y, Z: w.Z}
}
