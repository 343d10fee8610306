// Package geometry computes the canonical particle layouts of the mesh.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// goldenAngle is π(1+√5), the per-index azimuth increment of the spiral.
var goldenAngle = math.Pi * (1 + math.Sqrt(5))

// SpherePoint returns the i-th of n points spread over a sphere of the given radius
// along a golden-angle spiral.
func SpherePoint(i, n int, radius float64) r3.Vec {
	phi := math.Acos(1 - 2*float64(i)/float64(n))
	theta := goldenAngle * float64(i)
	return r3.Vec{
		X: radius * math.Cos(theta) * math.Sin(phi),
		Y: radius * math.Sin(theta) * math.Sin(phi),
		Z: radius * math.Cos(phi),
	}
}

// Sphere returns n points evenly spread over a sphere of the given radius.
func Sphere(n int, radius float64) []r3.Vec {
	if n <= 0 {
		return nil
	}
	points := make([]r3.Vec, n)
	for i := range points {
		points[i] = SpherePoint(i, n, radius)
	}
	return points
}

// Layouts holds the two canonical arrangements of the particles. Index i of
// Expanded and Contracted share the same direction from the origin.
type Layouts struct {
	Expanded   []r3.Vec
	Contracted []r3.Vec
}

// NewLayouts computes the expanded and contracted spheres for n particles.
func NewLayouts(n int, expandedRadius, contractedRadius float64) Layouts {
	return Layouts{
		Expanded:   Sphere(n, expandedRadius),
		Contracted: Sphere(n, contractedRadius),
	}
}
