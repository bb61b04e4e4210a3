package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/stochlab/internal/stochastic"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRate     = 0.5
	DefaultDt       = 1.0 / 60
	DefaultDuration = 30.0
	DefaultFPS      = 60
	DefaultTheme    = "zinc"
	DefaultDataDir  = ".stochlab"
)

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Mode     stochastic.Mode `yaml:"mode" toml:"mode"`
	Rate     float64         `yaml:"rate" toml:"rate"`
	Seed     int64           `yaml:"seed" toml:"seed"`
	Dt       float64         `yaml:"dt" toml:"dt"`
	Duration float64         `yaml:"duration" toml:"duration"`
	Display  DisplayConfig   `yaml:"display" toml:"display"`
	DataDir  string          `yaml:"data_dir" toml:"data_dir"`
}

type DisplayConfig struct {
	FPS   int    `yaml:"fps" toml:"fps"`
	Theme string `yaml:"theme" toml:"theme"`
	// Refresh is the stats readout interval in seconds.
	Refresh float64 `yaml:"refresh" toml:"refresh"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:     stochastic.Bernoulli,
		Rate:     DefaultRate,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Display: DisplayConfig{
			FPS:     DefaultFPS,
			Theme:   DefaultTheme,
			Refresh: 0.1,
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML config, or TOML when the file ends in .toml. Fields
// missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto decodes the file at path on top of a copy of base, so fields the
// file leaves out keep base's values. base itself is not modified.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := base.Clone()
	if isTOML(path) {
		_, err = toml.Decode(string(data), cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg in the format its extension names.
func Save(path string, cfg *Config) error {
	var data []byte
	var err error
	if isTOML(path) {
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Validate rejects values no run can use. Out-of-range rates are not an
// error; the simulation clamps them.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, c.Duration)
	}
	if c.Display.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.Display.FPS)
	}
	return nil
}

// Clone returns a copy safe to modify without touching shared presets.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
