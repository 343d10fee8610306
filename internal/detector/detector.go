package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/atomesh/internal/config"
)

// Detector finds hand landmarks in camera frames.
type Detector interface {
	// Detect returns the hands found in frame, best first. No hands is an
	// empty slice, not an error.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes the landmark model. The mesh follows a single hand, so
// MaxHands is normally 1.
type Config struct {
	MaxHands        int
	MinConfidence   float64
	MinTrackingConf float64

	// Script and Python override the service script and interpreter lookup.
	Script string
	Python string
}

func DefaultConfig() Config {
	return Config{
		MaxHands:        config.DefaultMaxHands,
		MinConfidence:   config.DefaultMinConfidence,
		MinTrackingConf: config.DefaultMinConfidence,
	}
}

// ConfigFrom maps the detector section of the application settings.
// Tracking confidence follows detection confidence.
func ConfigFrom(c config.DetectorConfig) Config {
	cfg := DefaultConfig()
	if c.MaxHands > 0 {
		cfg.MaxHands = c.MaxHands
	}
	if c.MinConfidence > 0 {
		cfg.MinConfidence = c.MinConfidence
		cfg.MinTrackingConf = c.MinConfidence
	}
	cfg.Script = c.Script
	cfg.Python = c.Python
	return cfg
}
