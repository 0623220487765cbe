// Package ebm implements a one-dimensional latitudinal energy-balance
// climate model on a sine-latitude grid.
//
// The [Engine] owns the grid, the surface temperature field, and all
// derived diagnostic fields:
//
//   - insolation: annual-mean two-term Legendre expansion of solar input
//   - albedo: discontinuous ice/ocean step function (ice-albedo feedback)
//   - ASR/OLR: absorbed solar and linearized outgoing longwave radiation
//   - transport: flux-form (1-x²) spherical diffusion of heat
//
// Time integration is explicit forward Euler with adaptive sub-stepping
// bounded by the diffusive stability limit, so a caller may request any
// time increment without destabilizing the solution:
//
//	e, _ := ebm.New(90, ebm.DefaultParams())
//	e.Advance(0.05)
//	fmt.Println(e.GlobalMeanTemp(), e.GlobalMeanNetFlux())
//
// Insolation is deliberately not refreshed per step. After mutating the
// solar constant the caller must invoke [Engine.RecomputeInsolation];
// after mutating any other parameter, [Engine.RefreshDiagnostics].
package ebm
