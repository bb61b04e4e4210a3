package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/stochlab/internal/stochastic"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

func preset(mode stochastic.Mode, rate, duration float64) *Config {
	c := DefaultConfig()
	c.Mode = mode
	c.Rate = rate
	c.Duration = duration
	return c
}

var Presets = map[stochastic.Mode]map[string]*Config{
	stochastic.Bernoulli: {
		"fair":     preset(stochastic.Bernoulli, 0.5, 40),
		"biased":   preset(stochastic.Bernoulli, 0.8, 40),
		"rare":     preset(stochastic.Bernoulli, 0.05, 120),
		"saturate": preset(stochastic.Bernoulli, stochastic.MaxRate, 40),
	},
	stochastic.Poisson: {
		"quiet":  preset(stochastic.Poisson, 0.05, 30),
		"tonic":  preset(stochastic.Poisson, 0.5, 20),
		"burst":  preset(stochastic.Poisson, stochastic.MaxRate, 10),
		"sparse": preset(stochastic.Poisson, stochastic.MinRate, 60),
	},
}

// GetPreset returns a copy of the named preset for mode.
func GetPreset(mode stochastic.Mode, name string) (*Config, error) {
	cfg, ok := Presets[mode][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPreset, mode, name)
	}
	return cfg.Clone(), nil
}

// ListPresets returns the preset names for mode, sorted.
func ListPresets(mode stochastic.Mode) []string {
	modePresets, ok := Presets[mode]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modePresets))
	for name := range modePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
