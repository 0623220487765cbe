// Package config loads and saves simulation settings, mirroring the
// engine and driver knobs as a YAML document plus named presets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ebmlab/internal/driver"
	"github.com/san-kum/ebmlab/internal/ebm"
)

const (
	DefaultBands           = 90
	DefaultFrameDt         = 0.05
	DefaultAdvancesPerTick = 4
	DefaultFluxThreshold   = 0.05
	DefaultHoldSeconds     = 3.0
	DefaultSnapshotMillis  = 100
)

type Config struct {
	Bands           int     `yaml:"bands"`
	FrameDt         float64 `yaml:"frame_dt"`
	AdvancesPerTick int     `yaml:"advances_per_tick"`
	IterationCap    int     `yaml:"iteration_cap"`

	SolarScale float64 `yaml:"solar_scale"`
	Greenhouse float64 `yaml:"greenhouse"`

	Physics     ebm.Params        `yaml:"physics"`
	Equilibrium EquilibriumConfig `yaml:"equilibrium"`
}

type EquilibriumConfig struct {
	FluxThreshold  float64 `yaml:"flux_threshold"`
	HoldSeconds    float64 `yaml:"hold_seconds"`
	SnapshotMillis int     `yaml:"snapshot_millis"`
}

func Default() *Config {
	return &Config{
		Bands:           DefaultBands,
		FrameDt:         DefaultFrameDt,
		AdvancesPerTick: DefaultAdvancesPerTick,
		SolarScale:      1.0,
		Greenhouse:      0.0,
		Physics:         ebm.DefaultParams(),
		Equilibrium: EquilibriumConfig{
			FluxThreshold:  DefaultFluxThreshold,
			HoldSeconds:    DefaultHoldSeconds,
			SnapshotMillis: DefaultSnapshotMillis,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

func (c *Config) Validate() error {
	if c.Bands <= 0 {
		return fmt.Errorf("config: bands must be positive, got %d", c.Bands)
	}
	if c.FrameDt <= 0 {
		return fmt.Errorf("config: frame_dt must be positive, got %f", c.FrameDt)
	}
	if c.AdvancesPerTick <= 0 {
		return fmt.Errorf("config: advances_per_tick must be positive, got %d", c.AdvancesPerTick)
	}
	return c.Physics.Validate()
}

// DriverConfig maps the document onto the frame loop settings.
func (c *Config) DriverConfig() driver.Config {
	return driver.Config{
		FrameDt:         c.FrameDt,
		AdvancesPerTick: c.AdvancesPerTick,
		IterationCap:    c.IterationCap,
		EquilibriumFlux: c.Equilibrium.FluxThreshold,
		EquilibriumHold: time.Duration(c.Equilibrium.HoldSeconds * float64(time.Second)),
		SnapshotEvery:   time.Duration(c.Equilibrium.SnapshotMillis) * time.Millisecond,
	}
}
