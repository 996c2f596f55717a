package projector

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func yaw(deg float64) quat.Number {
	half := deg * math.Pi / 360
	return quat.Number{Real: math.Cos(half), Jmag: math.Sin(half)}
}

func TestProject_ZAxisTowardNegativeZ(t *testing.T) {
	// Camera Z axis is (0,0,-1): the camera looks toward +Z.
	camera := core.NewPose(r3.Vec{X: 0, Y: 1.5, Z: 0}, yaw(180))
	assert.InDelta(t, -1.0, camera.ZAxis().Z, eps)

	got := New(1.0, 0).Project(camera)

	assert.InDelta(t, 0.0, got.Position.X, eps)
	assert.Equal(t, 0.0, got.Position.Y)
	assert.InDelta(t, 1.0, got.Position.Z, eps)
	assert.Equal(t, core.IdentityRotation, got.Orientation)
}

func TestProject_IdentityCamera(t *testing.T) {
	camera := core.MakeTranslation(2, 1.2, 3)

	got := New(1.0, 0).Project(camera)

	assert.InDelta(t, 2.0, got.Position.X, eps)
	assert.InDelta(t, 2.0, got.Position.Z, eps)
	assert.Equal(t, 0.0, got.Position.Y)
}

func TestProject_FloorHeightIgnoresCameraHeight(t *testing.T) {
	p := New(1.0, -0.25)
	for _, h := range []float64{-3, 0, 0.8, 1.5, 40} {
		got := p.Project(core.MakeTranslation(0, h, 0))
		assert.Equal(t, -0.25, got.Position.Y, "camera height %v", h)
	}
}

func TestProject_PitchedDownKeepsOffset(t *testing.T) {
	// pitch 30 degrees toward the floor about +X
	half := -30 * math.Pi / 360
	pitch := quat.Number{Real: math.Cos(half), Imag: math.Sin(half)}
	camera := core.NewPose(r3.Vec{Y: 1.5}, pitch)

	got := New(1.0, 0).Project(camera)

	assert.InDelta(t, 1.0, HorizontalDistance(got.Position, camera.Position), eps)
	assert.Less(t, got.Position.Z, 0.0)
}

func TestProject_LookingStraightDownUsesScreenTop(t *testing.T) {
	// -90 degrees about +X: the camera looks at the floor, screen top faces -Z.
	half := -90 * math.Pi / 360
	down := quat.Number{Real: math.Cos(half), Imag: math.Sin(half)}
	camera := core.NewPose(r3.Vec{Y: 1.5}, down)

	got := New(1.0, 0).Project(camera)

	assert.InDelta(t, 1.0, HorizontalDistance(got.Position, camera.Position), 1e-6)
	assert.InDelta(t, -1.0, got.Position.Z, 1e-6)
}

func TestProject_PropertyFloorAndOffset(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := New(1.0, 0)

	for i := 0; i < 500; i++ {
		q := quat.Number{
			Real: rng.NormFloat64(),
			Imag: rng.NormFloat64(),
			Jmag: rng.NormFloat64(),
			Kmag: rng.NormFloat64(),
		}
		camera := core.NewPose(r3.Vec{
			X: rng.Float64()*20 - 10,
			Y: rng.Float64() * 3,
			Z: rng.Float64()*20 - 10,
		}, q)

		got := p.Project(camera)

		assert.Equal(t, 0.0, got.Position.Y)
		assert.InDelta(t, 1.0, HorizontalDistance(got.Position, camera.Position), 1e-6)
	}
}

func TestHeading_IsUnitHorizontal(t *testing.T) {
	h := Heading(core.NewPose(r3.Vec{}, yaw(45)))
	assert.InDelta(t, 1.0, r3.Norm(h), eps)
	assert.Equal(t, 0.0, h.Y)
}
