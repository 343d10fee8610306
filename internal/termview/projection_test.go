package termview

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/atomesh/internal/motion"
)

func TestRotate(t *testing.T) {
	tests := []struct {
		name string
		p    r3.Vec
		o    motion.Orientation
		want r3.Vec
	}{
		{"identity", r3.Vec{X: 1, Y: 2, Z: 3}, motion.Orientation{}, r3.Vec{X: 1, Y: 2, Z: 3}},
		{"quarter yaw", r3.Vec{X: 1}, motion.Orientation{Yaw: math.Pi / 2}, r3.Vec{Z: -1}},
		{"quarter pitch", r3.Vec{Y: 1}, motion.Orientation{Pitch: math.Pi / 2}, r3.Vec{Z: 1}},
		{"yaw then pitch", r3.Vec{X: 1}, motion.Orientation{Yaw: math.Pi / 2, Pitch: math.Pi / 2}, r3.Vec{Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(tt.p, tt.o)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}

func TestRotate_PreservesLength(t *testing.T) {
	p := r3.Vec{X: 3, Y: -4, Z: 12}
	got := Rotate(p, motion.Orientation{Yaw: 0.7, Pitch: -1.3})
	assert.InDelta(t, r3.Norm(p), r3.Norm(got), 1e-9)
}

func TestCamera_Project(t *testing.T) {
	cam := DefaultCamera()

	x, y, ok := cam.Project(r3.Vec{}, 80, 24)
	assert.True(t, ok)
	assert.InDelta(t, 40, x, 1e-9)
	assert.InDelta(t, 12, y, 1e-9)

	// Up is toward row zero and right is toward higher columns.
	x, y, _ = cam.Project(r3.Vec{X: 5, Y: 5}, 80, 24)
	assert.Greater(t, x, 40.0)
	assert.Less(t, y, 12.0)

	// Nearer points spread further from the center.
	near, _, _ := cam.Project(r3.Vec{X: 5, Z: 20}, 80, 24)
	far, _, _ := cam.Project(r3.Vec{X: 5, Z: -20}, 80, 24)
	assert.Greater(t, near, far)

	_, _, ok = cam.Project(r3.Vec{Z: 50}, 80, 24)
	assert.False(t, ok, "point at the camera")
	_, _, ok = cam.Project(r3.Vec{Z: 60}, 80, 24)
	assert.False(t, ok, "point behind the camera")
}

func TestCamera_ExpandedSphereFits(t *testing.T) {
	cam := DefaultCamera()
	x, y, ok := cam.Project(r3.Vec{Y: 20}, 80, 24)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, y, 0.0)
	assert.InDelta(t, 40, x, 1e-9)
}
