package ebm

import "errors"

// Construction errors. The engine has no runtime error paths: numerical
// degeneracy during integration is recovered in place, never returned.
var (
	// ErrBandCount indicates a non-positive latitude band count.
	ErrBandCount = errors.New("ebm: band count must be positive")

	// ErrDiffusivity indicates a non-positive diffusivity D.
	ErrDiffusivity = errors.New("ebm: diffusivity must be positive")

	// ErrRestoring indicates a non-positive longwave slope B, which would
	// turn the radiative restoring term into an amplifier.
	ErrRestoring = errors.New("ebm: longwave slope must be positive")

	// ErrAlbedoOrder indicates ice albedo not exceeding ocean albedo.
	ErrAlbedoOrder = errors.New("ebm: ice albedo must exceed ocean albedo")
)
