package config

import (
	"sort"

	"github.com/san-kum/poolsim/internal/emitter"
)

var Presets = map[string]func() *Config{
	"fountain": func() *Config {
		return DefaultConfig()
	},
	"ring": func() *Config {
		cfg := DefaultConfig()
		cfg.Emitter.Pattern = "ring"
		cfg.Emitter.Rate = 6
		cfg.Emitter.Gravity = 0
		cfg.Emitter.Speed = 0.8
		cfg.Emitter.LifetimeMin, cfg.Emitter.LifetimeMax = 15, 25
		return cfg
	},
	"rain": func() *Config {
		cfg := DefaultConfig()
		cfg.Emitter.Pattern = "rain"
		cfg.Emitter.Rate = 4
		cfg.Emitter.Spread = 40
		cfg.Emitter.OriginY = 20
		cfg.Emitter.Gravity = -0.02
		cfg.Emitter.Speed = 0.5
		return cfg
	},
	// spawn demand outruns turnover; shows the overflow policy at work
	"saturate": func() *Config {
		cfg := DefaultConfig()
		cfg.Pool.Capacity = 64
		cfg.Emitter.Rate = 5
		cfg.Emitter.LifetimeMin, cfg.Emitter.LifetimeMax = 20, 30
		cfg.Emitter.Overflow = emitter.PolicyQueue
		cfg.Emitter.Backlog = 32
		return cfg
	},
	"classic": func() *Config {
		cfg := DefaultConfig()
		cfg.Pool.Capacity = 100
		cfg.Emitter.Pattern = "point"
		cfg.Emitter.Rate = 0.2
		cfg.Emitter.LifetimeMin, cfg.Emitter.LifetimeMax = 5, 15
		cfg.Run.Ticks = 20
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
