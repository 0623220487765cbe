package ebm

// Params holds the physical constants of the energy-balance model. The
// engine copies the struct at construction, so callers may reuse or
// mutate their own copy freely afterwards.
type Params struct {
	// S0 is the solar constant in W/m².
	S0 float64 `json:"s0" yaml:"s0"`
	// A and B are the coefficients of the linearized outgoing longwave
	// law OLR = A + B·T, with A in W/m² and B in W/m²/°C.
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
	// D is the meridional heat diffusivity in W/m²/°C.
	D float64 `json:"d" yaml:"d"`
	// IceAlbedo and OceanAlbedo are the two branches of the step-function
	// surface albedo; IceThreshold is the temperature in °C below which a
	// band is treated as ice covered.
	IceAlbedo    float64 `json:"ice_albedo" yaml:"ice_albedo"`
	OceanAlbedo  float64 `json:"ocean_albedo" yaml:"ocean_albedo"`
	IceThreshold float64 `json:"ice_threshold" yaml:"ice_threshold"`
}

// DefaultParams returns the standard present-day calibration.
func DefaultParams() Params {
	return Params{
		S0:           1360.0,
		A:            210.0,
		B:            2.0,
		D:            0.6,
		IceAlbedo:    0.62,
		OceanAlbedo:  0.3,
		IceThreshold: -10.0,
	}
}

// Validate reports the first violated parameter constraint.
func (p Params) Validate() error {
	if p.D <= 0 {
		return ErrDiffusivity
	}
	if p.B <= 0 {
		return ErrRestoring
	}
	if p.IceAlbedo <= p.OceanAlbedo {
		return ErrAlbedoOrder
	}
	return nil
}
