package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Change detection parameters. Frames are compared at GateWidth x GateHeight
// after a blur so sensor noise does not count as movement.
const (
	GateWidth     = 160
	GateHeight    = 120
	GateBlurSize  = 7
	GateDiffLevel = 25
)

// MotionGate tells still camera frames from moving ones by differencing
// each frame against the previous one.
type MotionGate struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
	mu        sync.Mutex
}

// NewMotionGate creates a gate that reports movement when more than
// threshold percent of the pixels changed.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Changed compares frame with the previous one and returns whether it moved
// and the changed-pixel percentage. The first frame always counts as moved.
func (g *MotionGate) Changed(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return true, 100
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(*frame, &small, image.Point{X: GateWidth, Y: GateHeight}, 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	defer gray.Close()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Point{X: GateBlurSize, Y: GateBlurSize}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		gray.CopyTo(&g.prev)
		g.primed = true
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, g.prev, &diff)
	gocv.Threshold(diff, &diff, GateDiffLevel, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(GateWidth*GateHeight) * 100
	gray.CopyTo(&g.prev)

	return changed > g.threshold, changed
}

// Reset forgets the previous frame so the next one counts as moved.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.primed = false
}

// Close releases the stored frame.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prev.Close()
	g.prev = gocv.NewMat()
	g.primed = false
}
