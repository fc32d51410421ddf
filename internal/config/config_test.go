package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/poolsim/internal/emitter"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pool.Capacity != DefaultCapacity {
		t.Errorf("expected capacity %d, got %d", DefaultCapacity, cfg.Pool.Capacity)
	}
	if cfg.Emitter.Pattern != "fountain" {
		t.Errorf("expected pattern fountain, got %s", cfg.Emitter.Pattern)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero capacity", func(c *Config) { c.Pool.Capacity = 0 }},
		{"zero ticks", func(c *Config) { c.Run.Ticks = 0 }},
		{"negative tick rate", func(c *Config) { c.Run.TickRate.Duration = -time.Second }},
		{"bad emitter", func(c *Config) { c.Emitter.Overflow = "steal" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
pool:
  capacity: 50
emitter:
  rate: 2.5
  pattern: ring
  overflow: queue
run:
  ticks: 40
  tick_rate: 16ms
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Pool.Capacity != 50 || cfg.Emitter.Rate != 2.5 || cfg.Emitter.Pattern != "ring" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Emitter.Overflow != emitter.PolicyQueue {
		t.Errorf("expected queue overflow, got %s", cfg.Emitter.Overflow)
	}
	if cfg.Run.TickRate.Duration != 16*time.Millisecond {
		t.Errorf("expected tick rate 16ms, got %s", cfg.Run.TickRate)
	}
	// untouched fields keep defaults
	if cfg.Emitter.LifetimeMin != emitter.DefaultConfig().LifetimeMin {
		t.Errorf("expected default lifetime_min, got %d", cfg.Emitter.LifetimeMin)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	data := `
data_dir = "/tmp/runs"

[pool]
capacity = 12

[emitter]
pattern = "rain"
backlog = 8

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Pool.Capacity != 12 || cfg.Emitter.Pattern != "rain" || cfg.Emitter.Backlog != 8 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || cfg.DataDir != "/tmp/runs" {
		t.Errorf("unexpected ambient config: %+v %s", cfg.Logging, cfg.DataDir)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("pool: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, name := range []string{"cfg.yaml", "cfg.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := GetPreset("saturate")
			cfg.Run.TickRate.Duration = 20 * time.Millisecond

			if err := Save(path, cfg); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if got.Pool != cfg.Pool || got.Emitter != cfg.Emitter || got.Run != cfg.Run {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("saturate")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Emitter.Overflow != emitter.PolicyQueue {
		t.Errorf("expected queue overflow, got %s", cfg.Emitter.Overflow)
	}

	cfg.Pool.Capacity = 1
	if again := GetPreset("saturate"); again.Pool.Capacity == 1 {
		t.Error("preset shared between callers")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
