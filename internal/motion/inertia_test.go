package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/atomesh/internal/config"
)

func newInertia() *Inertia {
	return NewInertia(config.DefaultTunables())
}

func TestInertia_FirstFrameRecordsOnly(t *testing.T) {
	in := newInertia()
	in.Track(0.9, 0.1)

	assert.Equal(t, Velocity{}, in.Velocity())
	assert.True(t, in.Tracking())
}

func TestInertia_Accumulates(t *testing.T) {
	in := newInertia()
	in.Track(0.50, 0.50)
	in.Track(0.60, 0.40)

	v := in.Velocity()
	assert.InDelta(t, 0.01, v.Yaw, 1e-12)
	assert.InDelta(t, 0.01, v.Pitch, 1e-12, "moving up (y decreasing) pitches positive")

	in.Track(0.65, 0.45)
	v = in.Velocity()
	assert.InDelta(t, 0.015, v.Yaw, 1e-12)
	assert.InDelta(t, 0.005, v.Pitch, 1e-12)
}

func TestInertia_Clamped(t *testing.T) {
	in := newInertia()
	in.Track(0, 0)
	for i := 1; i <= 20; i++ {
		// Huge deltas in both directions.
		in.Track(float64(i)*100, float64(i)*-100)
		v := in.Velocity()
		require.LessOrEqual(t, math.Abs(v.Yaw), config.DefaultMaxRotationVelocity)
		require.LessOrEqual(t, math.Abs(v.Pitch), config.DefaultMaxRotationVelocity)
	}
	assert.Equal(t, config.DefaultMaxRotationVelocity, in.Velocity().Yaw)
	assert.Equal(t, config.DefaultMaxRotationVelocity, in.Velocity().Pitch)

	in.Impulse(-5, -5)
	assert.Equal(t, -config.DefaultMaxRotationVelocity, in.Velocity().Yaw)
}

func TestInertia_DecaysGeometrically(t *testing.T) {
	in := newInertia()
	in.Track(0.5, 0.5)
	in.Track(0.7, 0.6)
	v0 := in.Velocity()

	var yaw, pitch float64
	for k := 1; k <= 50; k++ {
		yaw += in.Velocity().Yaw
		pitch += in.Velocity().Pitch
		o := in.Step()

		factor := math.Pow(config.DefaultFriction, float64(k))
		assert.InDelta(t, v0.Yaw*factor, in.Velocity().Yaw, 1e-12, "frame %d", k)
		assert.InDelta(t, v0.Pitch*factor, in.Velocity().Pitch, 1e-12, "frame %d", k)
		assert.InDelta(t, yaw, o.Yaw, 1e-12)
		assert.InDelta(t, pitch, o.Pitch, 1e-12)
	}
}

func TestInertia_CoastsAfterLoss(t *testing.T) {
	in := newInertia()
	in.Track(0.5, 0.5)
	in.Track(0.6, 0.5)
	in.Lose()

	before := in.Orientation()
	in.Step()
	assert.Greater(t, in.Orientation().Yaw, before.Yaw, "velocity persists without a hand")
	assert.False(t, in.Tracking())
}

func TestInertia_NoJumpOnReacquire(t *testing.T) {
	in := newInertia()
	in.Track(0.1, 0.1)
	in.Lose()
	in.Track(0.9, 0.9)

	assert.Equal(t, Velocity{}, in.Velocity())
}

func TestInertia_NonFiniteWristIgnored(t *testing.T) {
	in := newInertia()
	in.Track(0.5, 0.5)
	in.Track(math.NaN(), 0.5)
	in.Track(0.6, 0.5)

	v := in.Velocity()
	assert.Equal(t, 0.0, v.Yaw)
	assert.False(t, math.IsNaN(in.Step().Yaw))
}
