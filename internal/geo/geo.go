package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// POINTS
// AR world frames are local and metric, so points carry no SRID. The floor plane
// (AR x,z) maps to XY and height (AR y) to Z. Stored as XYZ WKB, which SQLite keeps
// as an opaque blob and PostGIS reads natively.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, ErrInvalidCoordinates
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, ErrInvalidCoordinates
		}
		out[i] = v
	}
	return out, nil
}

// VecFromString parses "x,y,z" into a vector
func VecFromString(coords string) (r3.Vec, error) {
	v, err := parseFloats(coords, 3)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

// QuatFromString parses "qx,qy,qz,qw" (scalar last) into a quaternion
func QuatFromString(q string) (quat.Number, error) {
	v, err := parseFloats(q, 4)
	if err != nil {
		return quat.Number{}, err
	}
	return quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2], Real: v[3]}, nil
}

// PointFromVec converts a coordinate to an XYZ point. Non-finite floor-plane
// coordinates are rejected.
func PointFromVec(v core.Vec3) (geom.Point, error) {
	p, err := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: v.X, Y: v.Z},
		Z:    v.Y,
		Type: geom.DimXYZ,
	})
	if err != nil {
		return geom.Point{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return p, nil
}

// VecFromPoint converts an XYZ point back. False for the empty point.
func VecFromPoint(p geom.Point) (core.Vec3, bool) {
	c, ok := p.Coordinates()
	if !ok {
		return core.Vec3{}, false
	}
	return core.Vec3{X: c.X, Y: c.Z, Z: c.Y}, true
}
