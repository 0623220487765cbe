package config

// Preset is a named forcing scenario for the CLI and TUI. A zero
// Diffusivity keeps the default D.
type Preset struct {
	SolarScale  float64
	Greenhouse  float64
	Diffusivity float64
}

var Presets = map[string]Preset{
	// Present-day calibration.
	"modern": {SolarScale: 1.0},
	// 10% dimmer sun, enough to run the ice edge to the equator.
	"snowball": {SolarScale: 0.9},
	"faint_sun": {SolarScale: 0.8},
	// Full greenhouse deflection, -30 W/m² off the longwave intercept.
	"hothouse": {SolarScale: 1.0, Greenhouse: 1.0},
	// Cut mixing to emphasize the pole-to-equator contrast.
	"weak_mixing": {SolarScale: 1.0, Diffusivity: 0.1},
}

// GetPreset returns a full config for the named scenario, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := Default()
	cfg.SolarScale = p.SolarScale
	cfg.Greenhouse = p.Greenhouse
	if p.Diffusivity > 0 {
		cfg.Physics.D = p.Diffusivity
	}
	return cfg
}

// ListPresets returns the available scenario names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
