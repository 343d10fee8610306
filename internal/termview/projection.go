// Package termview renders the atomic mesh in a terminal with tcell.
package termview

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/atomesh/internal/motion"
)

// CellAspect is how much taller a terminal cell is than it is wide.
const CellAspect = 2.0

// Camera is a perspective camera on the +Z axis looking at the origin.
type Camera struct {
	Distance float64
	FOV      float64 // vertical, radians
}

// DefaultCamera frames the expanded sphere with some margin.
func DefaultCamera() Camera {
	return Camera{Distance: 50, FOV: 75 * math.Pi / 180}
}

var (
	xAxis = r3.Vec{X: 1}
	yAxis = r3.Vec{Y: 1}
)

// Rotate applies yaw about Y and then pitch about X, the order a scene
// graph applies Euler XYZ rotation to its children.
func Rotate(p r3.Vec, o motion.Orientation) r3.Vec {
	p = r3.NewRotation(o.Yaw, yAxis).Rotate(p)
	return r3.NewRotation(o.Pitch, xAxis).Rotate(p)
}

// Project maps a world point to fractional cell coordinates on a w×h grid.
// Points at or behind the camera are rejected.
func (c Camera) Project(p r3.Vec, w, h int) (x, y float64, ok bool) {
	depth := c.Distance - p.Z
	if depth <= 0.1 {
		return 0, 0, false
	}

	focal := float64(h) / 2 / math.Tan(c.FOV/2)
	x = float64(w)/2 + p.X*focal*CellAspect/depth
	y = float64(h)/2 - p.Y*focal/depth
	return x, y, true
}
