// Package gesture classifies hand poses and turns them into mesh commands.
package gesture

import (
	"github.com/ayusman/atomesh/internal/config"
	"github.com/ayusman/atomesh/internal/detector"
)

var (
	// fistTips must all be folded onto the middle finger base.
	fistTips = []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	// spreadTips must all be extended away from the wrist.
	spreadTips = []int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
)

// IsFist reports whether every non-thumb fingertip lies within threshold of the
// middle finger base. Fewer than NumLandmarks points never classify.
func IsFist(points []detector.Point3D, threshold float64) bool {
	if len(points) < detector.NumLandmarks {
		return false
	}

	base := points[detector.MiddleMCP]
	for _, tip := range fistTips {
		if detector.PlanarDistance(points[tip], base) > threshold {
			return false
		}
	}
	return true
}

// IsHandSpread reports whether every fingertip lies at least threshold away
// from the wrist. Fewer than NumLandmarks points never classify.
func IsHandSpread(points []detector.Point3D, threshold float64) bool {
	if len(points) < detector.NumLandmarks {
		return false
	}

	wrist := points[detector.Wrist]
	for _, tip := range spreadTips {
		if detector.PlanarDistance(points[tip], wrist) < threshold {
			return false
		}
	}
	return true
}

// Signal is the classification of one landmark frame.
type Signal struct {
	Present bool             // a usable hand is in frame
	Fist    bool             // closed fist
	Open    bool             // open palm; may overlap Fist, the Machine resolves ties
	Wrist   detector.Point3D // valid only when Present
}

// Classifier maps landmark frames to Signals.
type Classifier struct {
	FistThreshold     float64
	OpenHandThreshold float64
}

// NewClassifier creates a Classifier from the configured thresholds.
func NewClassifier(t config.Tunables) Classifier {
	return Classifier{
		FistThreshold:     t.FistThreshold,
		OpenHandThreshold: t.OpenHandThreshold,
	}
}

// Classify inspects the first detected hand. A missing hand, a hand without
// points, or a hand with non-finite coordinates yields an absent Signal.
func (c Classifier) Classify(hands []detector.HandLandmarks) Signal {
	if len(hands) == 0 {
		return Signal{}
	}

	hand := &hands[0]
	wrist, ok := hand.Wrist()
	if !ok || !hand.Finite() {
		return Signal{}
	}

	return Signal{
		Present: true,
		Fist:    IsFist(hand.Points, c.FistThreshold),
		Open:    IsHandSpread(hand.Points, c.OpenHandThreshold),
		Wrist:   wrist,
	}
}
