package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Bands != 90 {
		t.Errorf("expected 90 bands, got %d", cfg.Bands)
	}
	if cfg.FrameDt <= 0 {
		t.Error("frame_dt should be positive")
	}
	if cfg.SolarScale != 1.0 {
		t.Errorf("expected solar scale 1.0, got %f", cfg.SolarScale)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Bands = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero bands")
	}

	cfg = Default()
	cfg.Physics.D = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative diffusivity")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("snowball")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.SolarScale != 0.9 {
		t.Errorf("expected solar scale 0.9, got %f", cfg.SolarScale)
	}

	cfg = GetPreset("weak_mixing")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Physics.D != 0.1 {
		t.Errorf("expected D 0.1, got %f", cfg.Physics.D)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	if len(ListPresets()) == 0 {
		t.Error("expected at least one preset")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ebmlab.yaml")

	cfg := Default()
	cfg.Bands = 45
	cfg.Greenhouse = -0.5
	cfg.Physics.S0 = 1300

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Bands != 45 {
		t.Errorf("expected 45 bands, got %d", loaded.Bands)
	}
	if loaded.Greenhouse != -0.5 {
		t.Errorf("expected greenhouse -0.5, got %f", loaded.Greenhouse)
	}
	if loaded.Physics.S0 != 1300 {
		t.Errorf("expected S0 1300, got %f", loaded.Physics.S0)
	}
}

func TestDriverConfigMapping(t *testing.T) {
	cfg := Default()
	dc := cfg.DriverConfig()

	if dc.FrameDt != cfg.FrameDt {
		t.Errorf("frame dt mismatch: %f vs %f", dc.FrameDt, cfg.FrameDt)
	}
	if dc.AdvancesPerTick != cfg.AdvancesPerTick {
		t.Error("advances per tick mismatch")
	}
	if dc.EquilibriumHold.Seconds() != cfg.Equilibrium.HoldSeconds {
		t.Error("hold duration mismatch")
	}
}
