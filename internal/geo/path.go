package geo

import (
	"fmt"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// WaypointPath joins waypoints, in list order, into an XYZ line string. A list
// with fewer than two distinct floor positions gives an empty line string.
func WaypointPath(wps []core.Waypoint) (geom.LineString, error) {
	empty := geom.LineString{}.ForceCoordinatesType(geom.DimXYZ)
	if !spansFloor(wps) {
		return empty, nil
	}
	flat := make([]float64, 0, len(wps)*3)
	for _, w := range wps {
		flat = append(flat, w.X, w.Z, w.Y)
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ))
	if err != nil {
		return empty, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return ls, nil
}

// spansFloor reports whether some waypoint sits at a different floor
// position than the first one.
func spansFloor(wps []core.Waypoint) bool {
	for i := 1; i < len(wps); i++ {
		if wps[i].X != wps[0].X || wps[i].Z != wps[0].Z {
			return true
		}
	}
	return false
}

// PathLength is the floor-plane length of the path
func PathLength(wps []core.Waypoint) (float64, error) {
	ls, err := WaypointPath(wps)
	if err != nil {
		return 0, err
	}
	return ls.Length(), nil
}
