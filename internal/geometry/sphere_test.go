package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSphere_PointsLieOnSphere(t *testing.T) {
	for _, radius := range []float64{5, 20} {
		for _, p := range Sphere(200, radius) {
			assert.InDelta(t, radius, r3.Norm(p), 1e-9)
		}
	}
}

func TestSphere_DistinctPoints(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 200, 500} {
		points := Sphere(n, 20)
		require.Len(t, points, n)

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := r3.Norm(r3.Sub(points[i], points[j]))
				if d < 1e-6 {
					t.Fatalf("n=%d: points %d and %d coincide", n, i, j)
				}
			}
		}
	}
}

func TestSphere_FirstPointIsNorthPole(t *testing.T) {
	p := SpherePoint(0, 200, 20)
	assert.InDelta(t, 0, p.X, 1e-12)
	assert.InDelta(t, 0, p.Y, 1e-12)
	assert.InDelta(t, 20, p.Z, 1e-12)
}

func TestSphere_Deterministic(t *testing.T) {
	assert.Equal(t, Sphere(64, 7), Sphere(64, 7))
}

func TestSphere_Empty(t *testing.T) {
	assert.Nil(t, Sphere(0, 20))
	assert.Nil(t, Sphere(-3, 20))
}

func TestNewLayouts_SharedDirections(t *testing.T) {
	l := NewLayouts(100, 20, 5)
	require.Len(t, l.Expanded, 100)
	require.Len(t, l.Contracted, 100)

	for i := range l.Expanded {
		scaled := r3.Scale(5.0/20.0, l.Expanded[i])
		assert.InDelta(t, 0, r3.Norm(r3.Sub(scaled, l.Contracted[i])), 1e-9, "index %d", i)
	}
}

func TestSphere_EvenHemispheres(t *testing.T) {
	var north int
	for _, p := range Sphere(200, 1) {
		if p.Z > 0 {
			north++
		}
	}
	assert.InDelta(t, 100, north, 2)
	assert.False(t, math.IsNaN(SpherePoint(199, 200, 1).X))
}
