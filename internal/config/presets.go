package config

import (
	"sort"
	"time"
)

var presets = map[string]func() Tunables{
	"default": DefaultTunables,
	"dense": func() Tunables {
		t := DefaultTunables()
		t.ParticleCount = 320
		t.ConnectionDistance = 6
		t.ContractedRadius = 4
		return t
	},
	"calm": func() Tunables {
		t := DefaultTunables()
		t.RotationSpeed = 0.05
		t.Friction = 0.9
		t.MaxRotationVelocity = 0.04
		t.SmoothFactor = 0.04
		t.Cooldown = 1200 * time.Millisecond
		return t
	},
}

// GetPreset returns a built-in preset by name, or nil if there is none.
func GetPreset(name string) *Tunables {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	t := fn()
	return &t
}

// ListPresets returns the built-in preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
