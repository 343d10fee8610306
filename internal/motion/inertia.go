// Package motion turns wrist movement into inertial rotation of the mesh.
package motion

import (
	"math"

	"github.com/ayusman/atomesh/internal/config"
)

// Orientation is the scene rotation in radians.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Velocity is the angular velocity in radians per tick.
type Velocity struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Inertia integrates wrist deltas into a decaying angular velocity.
// Velocity keeps coasting and decaying while no hand is tracked.
type Inertia struct {
	speed    float64
	friction float64
	max      float64

	velocity    Velocity
	orientation Orientation

	lastX, lastY float64
	tracking     bool
}

// NewInertia creates an Inertia model from the configured tunables.
func NewInertia(t config.Tunables) *Inertia {
	return &Inertia{
		speed:    t.RotationSpeed,
		friction: t.Friction,
		max:      t.MaxRotationVelocity,
	}
}

// Track feeds the wrist position of the current landmark frame. The first
// frame after Lose only records the position.
func (in *Inertia) Track(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		in.Lose()
		return
	}

	if in.tracking {
		dx := x - in.lastX
		dy := y - in.lastY

		in.velocity.Yaw = clamp(in.velocity.Yaw+dx*in.speed, in.max)
		in.velocity.Pitch = clamp(in.velocity.Pitch-dy*in.speed, in.max)
	}

	in.lastX, in.lastY = x, y
	in.tracking = true
}

// Lose forgets the previous wrist position so reacquisition does not jump.
func (in *Inertia) Lose() {
	in.tracking = false
}

// Step advances the orientation by one tick and applies friction.
func (in *Inertia) Step() Orientation {
	in.orientation.Yaw += in.velocity.Yaw
	in.orientation.Pitch += in.velocity.Pitch

	in.velocity.Yaw *= in.friction
	in.velocity.Pitch *= in.friction

	return in.orientation
}

// Impulse adds to the velocity directly, subject to the same clamp.
func (in *Inertia) Impulse(yaw, pitch float64) {
	in.velocity.Yaw = clamp(in.velocity.Yaw+yaw, in.max)
	in.velocity.Pitch = clamp(in.velocity.Pitch+pitch, in.max)
}

func (in *Inertia) Velocity() Velocity {
	return in.velocity
}

func (in *Inertia) Orientation() Orientation {
	return in.orientation
}

// Tracking reports whether a previous wrist position is known.
func (in *Inertia) Tracking() bool {
	return in.tracking
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
