package ebm

import (
	"math"

	"github.com/sirupsen/logrus"
)

const (
	// heatCapacity sets the thermal inertia of a band. It paces how fast
	// the model relaxes on screen; it is not a physical heat capacity.
	heatCapacity = 40.0

	// stabilityMargin keeps sub-steps 20% below the explicit diffusion
	// stability bound dx²/(2D).
	stabilityMargin = 0.8

	// stabilityEpsilon avoids a zero divisor in the stability bound as D→0.
	stabilityEpsilon = 1e-12

	// maxSubSteps caps the work a single Advance call may do. Exceeding it
	// truncates the call rather than stalling the frame.
	maxSubSteps = 2000
)

// Engine is a one-dimensional energy-balance model. It is not safe for
// concurrent use; a single driving loop must own it.
type Engine struct {
	bands int
	x     []float64 // sine of latitude, band centers
	lat   []float64 // latitude in degrees

	temp []float64 // surface temperature, °C; the only integrated field

	// Derived fields, refreshed from temp and params; never integrated.
	insol     []float64
	albedo    []float64
	asr       []float64
	olr       []float64
	transport []float64

	flux []float64 // interface-flux scratch, length bands+1
	prev []float64 // last valid temperature, for sub-step rollback

	params Params
	time   float64
	steps  int
}

// New constructs an engine with the given band count and a private copy
// of params, initializes a smooth warm-equator temperature profile, and
// performs one full diagnostic refresh.
func New(bands int, params Params) (*Engine, error) {
	if bands <= 0 {
		return nil, ErrBandCount
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		bands:     bands,
		temp:      make([]float64, bands),
		insol:     make([]float64, bands),
		albedo:    make([]float64, bands),
		asr:       make([]float64, bands),
		olr:       make([]float64, bands),
		transport: make([]float64, bands),
		flux:      make([]float64, bands+1),
		prev:      make([]float64, bands),
		params:    params,
	}
	e.x, e.lat = buildGrid(bands)

	for i, x := range e.x {
		e.temp[i] = 30 - 45*x*x
	}

	e.RecomputeInsolation()
	e.RefreshDiagnostics()
	return e, nil
}

// Advance integrates the temperature field forward by dt using explicit
// Euler with adaptive sub-stepping below the diffusive stability limit.
// Simulated time always advances by the full dt, even when a guard
// truncates the sub-stepping.
func (e *Engine) Advance(dt float64) {
	if dt <= 0 {
		return
	}

	dx := 2.0 / float64(e.bands)
	safeDt := stabilityMargin * dx * dx / (2*e.params.D + stabilityEpsilon)
	sentinel := e.bands / 2

	remaining := dt
	steps := 0
	for remaining > 0 {
		if steps >= maxSubSteps {
			logrus.WithFields(logrus.Fields{
				"requested": dt,
				"remaining": remaining,
			}).Warn("advance truncated: sub-step ceiling reached")
			break
		}

		sub := math.Min(remaining, safeDt)
		e.RefreshDiagnostics()

		copy(e.prev, e.temp)
		for i := range e.temp {
			e.temp[i] += (e.asr[i] - e.olr[i] + e.transport[i]) / heatCapacity * sub
		}

		if math.IsNaN(e.temp[sentinel]) || math.IsInf(e.temp[sentinel], 0) {
			copy(e.temp, e.prev)
			logrus.WithFields(logrus.Fields{
				"time": e.time,
				"band": sentinel,
			}).Warn("advance aborted: non-finite temperature")
			break
		}

		remaining -= sub
		steps++
		e.steps++
	}

	e.time += dt
}

// RecomputeInsolation rebuilds the annual-mean insolation profile from
// the current solar constant. It must be called after SetSolarConstant;
// the per-step diagnostic refresh deliberately leaves insolation alone,
// since solar forcing changes far less often than temperature.
func (e *Engine) RecomputeInsolation() {
	const s2 = -0.482
	for i, x := range e.x {
		p2 := 0.5 * (3*x*x - 1)
		e.insol[i] = e.params.S0 / 4 * (1 + s2*p2)
	}
}

// RefreshDiagnostics recomputes albedo, ASR, OLR, and transport from the
// current temperature field without advancing time.
func (e *Engine) RefreshDiagnostics() {
	p := e.params
	for i, t := range e.temp {
		if t < p.IceThreshold {
			e.albedo[i] = p.IceAlbedo
		} else {
			e.albedo[i] = p.OceanAlbedo
		}
		e.asr[i] = e.insol[i] * (1 - e.albedo[i])
		e.olr[i] = p.A + p.B*t
	}
	e.computeTransport()
}

// computeTransport evaluates the flux-form central difference of
// d/dx[D(1-x²)dT/dx]. Interface fluxes vanish at both poles, so the
// discrete divergence redistributes heat without creating or losing any.
func (e *Engine) computeTransport() {
	n := e.bands
	dx := 2.0 / float64(n)

	e.flux[0] = 0
	e.flux[n] = 0
	for i := 1; i < n; i++ {
		xi := -1 + float64(i)*dx
		e.flux[i] = -e.params.D * (1 - xi*xi) * (e.temp[i] - e.temp[i-1]) / dx
	}
	for i := 0; i < n; i++ {
		e.transport[i] = -(e.flux[i+1] - e.flux[i]) / dx
	}
}

// GlobalMeanTemp returns the area-weighted mean surface temperature.
// The sine-latitude grid makes every band equal area, so this is a
// plain arithmetic mean.
func (e *Engine) GlobalMeanTemp() float64 {
	sum := 0.0
	for _, t := range e.temp {
		sum += t
	}
	return sum / float64(e.bands)
}

// GlobalMeanNetFlux returns mean(ASR-OLR), the radiative imbalance used
// to detect equilibrium. Transport is excluded: it sums to zero globally.
func (e *Engine) GlobalMeanNetFlux() float64 {
	sum := 0.0
	for i := range e.asr {
		sum += e.asr[i] - e.olr[i]
	}
	return sum / float64(e.bands)
}

// SetSolarConstant writes a new solar constant. Insolation stays stale
// until the caller invokes RecomputeInsolation.
func (e *Engine) SetSolarConstant(s0 float64) { e.params.S0 = s0 }

// SetRadiativeOffset writes a new longwave intercept A, the greenhouse
// proxy. The caller should follow with RefreshDiagnostics.
func (e *Engine) SetRadiativeOffset(a float64) { e.params.A = a }

// Bands returns the number of latitude bands.
func (e *Engine) Bands() int { return e.bands }

// Time returns accumulated simulated time.
func (e *Engine) Time() float64 { return e.time }

// Steps returns the total number of integration sub-steps taken.
func (e *Engine) Steps() int { return e.steps }

// Params returns a copy of the engine's parameter set.
func (e *Engine) Params() Params { return e.params }

// IceThreshold returns the ice-formation temperature, for reference
// lines in a consumer's rendering.
func (e *Engine) IceThreshold() float64 { return e.params.IceThreshold }

// The field accessors below expose the engine's internal arrays without
// copying. They are valid until the next Advance or refresh; consumers
// needing a stable view must copy.

func (e *Engine) Latitudes() []float64        { return e.lat }
func (e *Engine) Temperature() []float64      { return e.temp }
func (e *Engine) Albedo() []float64           { return e.albedo }
func (e *Engine) Insolation() []float64       { return e.insol }
func (e *Engine) AbsorbedSolar() []float64    { return e.asr }
func (e *Engine) OutgoingLongwave() []float64 { return e.olr }
func (e *Engine) Transport() []float64        { return e.transport }
