package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/poolsim/internal/emitter"
)

const (
	DefaultCapacity = 256
	DefaultTicks    = 300
	DefaultDataDir  = ".poolsim"
)

type Config struct {
	Pool    PoolConfig     `yaml:"pool" toml:"pool"`
	Emitter emitter.Config `yaml:"emitter" toml:"emitter"`
	Run     RunConfig      `yaml:"run" toml:"run"`
	Logging LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics" toml:"metrics"`
	DataDir string         `yaml:"data_dir" toml:"data_dir"`
}

type PoolConfig struct {
	Capacity int `yaml:"capacity" toml:"capacity"`
}

type RunConfig struct {
	Ticks    int      `yaml:"ticks" toml:"ticks"`
	TickRate Duration `yaml:"tick_rate" toml:"tick_rate"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Duration reads "16ms"-style strings from both yaml and toml.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Pool:    PoolConfig{Capacity: DefaultCapacity},
		Emitter: emitter.DefaultConfig(),
		Run:     RunConfig{Ticks: DefaultTicks},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		DataDir: DefaultDataDir,
	}
}

func (c *Config) Validate() error {
	if c.Pool.Capacity <= 0 {
		return fmt.Errorf("pool.capacity must be positive, got %d", c.Pool.Capacity)
	}
	if c.Run.Ticks <= 0 {
		return fmt.Errorf("run.ticks must be positive, got %d", c.Run.Ticks)
	}
	if c.Run.TickRate.Duration < 0 {
		return fmt.Errorf("run.tick_rate must not be negative, got %s", c.Run.TickRate)
	}
	if err := c.Emitter.Validate(); err != nil {
		return fmt.Errorf("emitter: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a yaml or toml file (by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(cfg)
		data = []byte(b.String())
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
