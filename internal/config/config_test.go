package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/stochlab/internal/stochastic"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != stochastic.Bernoulli {
		t.Errorf("expected mode bernoulli, got %s", cfg.Mode)
	}
	if cfg.Rate != DefaultRate {
		t.Errorf("expected rate %v, got %v", DefaultRate, cfg.Rate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg, err := GetPreset(stochastic.Bernoulli, "biased")
	if err != nil {
		t.Fatalf("expected preset, got %v", err)
	}
	if cfg.Rate != 0.8 {
		t.Errorf("expected rate 0.8, got %f", cfg.Rate)
	}

	cfg.Rate = 0.1
	again, _ := GetPreset(stochastic.Bernoulli, "biased")
	if again.Rate != 0.8 {
		t.Error("modifying a returned preset changed the shared preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	_, err := GetPreset(stochastic.Poisson, "fair")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}

	_, err = GetPreset(stochastic.Mode(9), "fair")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset for unknown mode, got %v", err)
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets(stochastic.Poisson)
	want := []string{"burst", "quiet", "sparse", "tonic"}
	if len(presets) != len(want) {
		t.Fatalf("expected %v, got %v", want, presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("expected %v, got %v", want, presets)
		}
	}

	if ListPresets(stochastic.Mode(9)) != nil {
		t.Error("expected nil for unknown mode")
	}
}

func TestPresetsMatchMode(t *testing.T) {
	for mode, presets := range Presets {
		for name, cfg := range presets {
			if cfg.Mode != mode {
				t.Errorf("preset %s/%s has mode %s", mode, name, cfg.Mode)
			}
			if cfg.Rate < stochastic.MinRate || cfg.Rate > stochastic.MaxRate {
				t.Errorf("preset %s/%s rate %v out of range", mode, name, cfg.Rate)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s/%s invalid: %v", mode, name, err)
			}
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.yaml")
	cfg := DefaultConfig()
	cfg.Mode = stochastic.Poisson
	cfg.Rate = 0.3
	cfg.Seed = 99
	cfg.Display.Theme = "ocean"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.yaml")
	if err := os.WriteFile(path, []byte("mode: spikes\nrate: 0.9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != stochastic.Poisson {
		t.Errorf("expected poisson, got %s", cfg.Mode)
	}
	if cfg.Dt != DefaultDt || cfg.Display.FPS != DefaultFPS {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"unknown mode", "mode: gaussian\n", stochastic.ErrUnknownMode},
		{"zero dt", "dt: 0\n", ErrInvalidConfig},
		{"negative fps", "display:\n  fps: -1\n", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.toml")
	cfg := DefaultConfig()
	cfg.Mode = stochastic.Poisson
	cfg.Rate = 0.75
	cfg.Seed = 12
	cfg.Display.FPS = 30

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `mode = "poisson"`) {
		t.Errorf("expected toml output, got:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadTOMLPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lab.toml")
	content := "mode = \"coin\"\nrate = 0.2\n\n[display]\ntheme = \"retro\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != stochastic.Bernoulli || cfg.Rate != 0.2 || cfg.Display.Theme != "retro" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Display.FPS != DefaultFPS {
		t.Errorf("expected default fps, got %d", cfg.Display.FPS)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("mode = \"gaussian\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestLoadIntoKeepsBase(t *testing.T) {
	dir := t.TempDir()
	base, err := GetPreset(stochastic.Poisson, "burst")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		file     string
		content  string
		rate     float64
		duration float64
		theme    string
	}{
		{"yaml theme only", "a.yaml", "display:\n  theme: ocean\n", 0.99, 10, "ocean"},
		{"yaml rate", "b.yaml", "rate: 0.3\n", 0.3, 10, DefaultTheme},
		{"toml duration", "c.toml", "duration = 4.0\n", 0.99, 4, DefaultTheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadInto(path, base)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Mode != stochastic.Poisson || cfg.Rate != tt.rate || cfg.Duration != tt.duration || cfg.Display.Theme != tt.theme {
				t.Errorf("got mode=%s rate=%v duration=%v theme=%s", cfg.Mode, cfg.Rate, cfg.Duration, cfg.Display.Theme)
			}
		})
	}

	if base.Rate != 0.99 || base.Display.Theme != DefaultTheme {
		t.Errorf("base modified: %+v", base)
	}
}
