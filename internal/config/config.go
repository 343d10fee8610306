// Package config holds the tunable parameters and runtime settings for the atomic mesh.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default tunables.
const (
	DefaultFistThreshold       = 0.15
	DefaultOpenHandThreshold   = 0.3
	DefaultCooldown            = 800 * time.Millisecond
	DefaultRotationSpeed       = 0.1
	DefaultFriction            = 0.96
	DefaultMaxRotationVelocity = 0.1
	DefaultParticleCount       = 200
	DefaultConnectionDistance  = 8.0
	DefaultExpandedRadius      = 20.0
	DefaultContractedRadius    = 5.0
	DefaultSmoothFactor        = 0.08
	DefaultLineColor           = 0x00FF00
	DefaultParticleColor       = 0x0000FF

	// MaxParticleCount bounds the edge buffers, which grow with the square of the count.
	MaxParticleCount = 2000
)

// Default runtime settings.
const (
	DefaultAddr          = ":8080"
	DefaultCameraID      = 0
	DefaultInferenceFPS  = 15
	DefaultRenderFPS     = 60
	DefaultMaxHands      = 1
	DefaultMinConfidence = 0.7
	DefaultHookTimeout   = 5 * time.Second
)

// Tunables are the externally configured parameters of the gesture and particle engine.
type Tunables struct {
	FistThreshold       float64       `yaml:"fist_threshold" json:"fist_threshold"`
	OpenHandThreshold   float64       `yaml:"open_hand_threshold" json:"open_hand_threshold"`
	Cooldown            time.Duration `yaml:"cooldown" json:"cooldown"`
	RotationSpeed       float64       `yaml:"rotation_speed" json:"rotation_speed"`
	Friction            float64       `yaml:"friction" json:"friction"`
	MaxRotationVelocity float64       `yaml:"max_rotation_velocity" json:"max_rotation_velocity"`
	ParticleCount       int           `yaml:"particle_count" json:"particle_count"`
	ConnectionDistance  float64       `yaml:"connection_distance" json:"connection_distance"`
	ExpandedRadius      float64       `yaml:"expanded_radius" json:"expanded_radius"`
	ContractedRadius    float64       `yaml:"contracted_radius" json:"contracted_radius"`
	SmoothFactor        float64       `yaml:"smooth_factor" json:"smooth_factor"`
	LineColor           uint32        `yaml:"line_color" json:"line_color"`
	ParticleColor       uint32        `yaml:"particle_color" json:"particle_color"`
}

// DetectorConfig configures the hand landmark detector.
type DetectorConfig struct {
	MaxHands      int     `yaml:"max_hands"`
	MinConfidence float64 `yaml:"min_confidence"`
	Script        string  `yaml:"script,omitempty"`
	Python        string  `yaml:"python,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	Tunables     Tunables       `yaml:"tunables"`
	Detector     DetectorConfig `yaml:"detector"`
	Addr         string         `yaml:"addr"`
	StaticDir    string         `yaml:"static_dir"`
	DataDir      string         `yaml:"data_dir"`
	CameraID     int            `yaml:"camera_id"`
	InferenceFPS int            `yaml:"inference_fps"`
	RenderFPS    int            `yaml:"render_fps"`
	Preview      bool           `yaml:"preview"`

	// HookDir holds layout hooks, one subdirectory each. Empty disables hooks.
	HookDir     string        `yaml:"hook_dir"`
	HookTimeout time.Duration `yaml:"hook_timeout"`

	// MotionThreshold is the percentage of changed pixels below which a
	// camera frame counts as still and the previous detection is reused.
	// Zero runs the detector on every frame.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// DefaultTunables returns the tunables the mesh was designed around.
func DefaultTunables() Tunables {
	return Tunables{
		FistThreshold:       DefaultFistThreshold,
		OpenHandThreshold:   DefaultOpenHandThreshold,
		Cooldown:            DefaultCooldown,
		RotationSpeed:       DefaultRotationSpeed,
		Friction:            DefaultFriction,
		MaxRotationVelocity: DefaultMaxRotationVelocity,
		ParticleCount:       DefaultParticleCount,
		ConnectionDistance:  DefaultConnectionDistance,
		ExpandedRadius:      DefaultExpandedRadius,
		ContractedRadius:    DefaultContractedRadius,
		SmoothFactor:        DefaultSmoothFactor,
		LineColor:           DefaultLineColor,
		ParticleColor:       DefaultParticleColor,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Tunables: DefaultTunables(),
		Detector: DetectorConfig{
			MaxHands:      DefaultMaxHands,
			MinConfidence: DefaultMinConfidence,
		},
		Addr:         DefaultAddr,
		CameraID:     DefaultCameraID,
		InferenceFPS: DefaultInferenceFPS,
		RenderFPS:    DefaultRenderFPS,
		Preview:      true,
		HookTimeout:  DefaultHookTimeout,
	}
}

// Load reads a YAML config file. Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the runtime settings and the tunables.
func (c *Config) Validate() error {
	if c.InferenceFPS <= 0 {
		return errors.New("inference_fps must be positive")
	}
	if c.RenderFPS <= 0 {
		return errors.New("render_fps must be positive")
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return errors.New("detector.min_confidence must be within [0, 1]")
	}
	if c.HookTimeout < 0 {
		return errors.New("hook_timeout must not be negative")
	}
	if c.MotionThreshold < 0 || c.MotionThreshold > 100 {
		return errors.New("motion_threshold must be within [0, 100]")
	}
	return c.Tunables.Validate()
}

// Validate rejects tunables the engine cannot run with.
func (t Tunables) Validate() error {
	switch {
	case t.FistThreshold <= 0:
		return errors.New("fist_threshold must be positive")
	case t.OpenHandThreshold <= 0:
		return errors.New("open_hand_threshold must be positive")
	case t.Cooldown < 0:
		return errors.New("cooldown must not be negative")
	case t.Friction < 0 || t.Friction > 1:
		return errors.New("friction must be within [0, 1]")
	case t.MaxRotationVelocity < 0:
		return errors.New("max_rotation_velocity must not be negative")
	case t.ParticleCount <= 0:
		return errors.New("particle_count must be positive")
	case t.ParticleCount > MaxParticleCount:
		return fmt.Errorf("particle_count must be at most %d", MaxParticleCount)
	case t.ConnectionDistance <= 0:
		return errors.New("connection_distance must be positive")
	case t.ExpandedRadius <= 0 || t.ContractedRadius <= 0:
		return errors.New("sphere radii must be positive")
	case t.SmoothFactor <= 0 || t.SmoothFactor > 1:
		return errors.New("smooth_factor must be within (0, 1]")
	}
	return nil
}

// MarshalTunables encodes tunables as YAML, the format presets are stored in.
func MarshalTunables(t Tunables) ([]byte, error) {
	return yaml.Marshal(t)
}

// UnmarshalTunables decodes YAML tunables on top of the defaults.
func UnmarshalTunables(data []byte) (Tunables, error) {
	t := DefaultTunables()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tunables{}, err
	}
	return t, t.Validate()
}
