// Package driver runs the engine under a cooperative, frame-scheduled
// loop: a fixed amount of physics per tick, a time-debounced equilibrium
// stop, and throttled snapshot emission to a presentation layer.
package driver

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/ebmlab/internal/ebm"
)

// greenhouseRange maps the unit greenhouse control onto the longwave
// intercept A: full deflection shifts A by 30 W/m². Illustrative
// calibration only, not a derived gas response.
const greenhouseRange = 30.0

// Config tunes the loop cadence and stop conditions.
type Config struct {
	// FrameDt is the simulated-time increment per Advance call.
	FrameDt float64
	// AdvancesPerTick is how many Advance calls each Tick issues.
	AdvancesPerTick int
	// IterationCap resets the whole simulation after this many ticks;
	// zero disables the cap.
	IterationCap int
	// EquilibriumFlux is the |global net flux| band counted as settled.
	EquilibriumFlux float64
	// EquilibriumHold is how long the flux must stay inside the band
	// before the loop stops advancing.
	EquilibriumHold time.Duration
	// SnapshotEvery throttles observer emission; zero emits every tick.
	SnapshotEvery time.Duration
}

// DefaultConfig matches the interactive visualization cadence.
func DefaultConfig() Config {
	return Config{
		FrameDt:         0.05,
		AdvancesPerTick: 4,
		IterationCap:    0,
		EquilibriumFlux: 0.05,
		EquilibriumHold: 3 * time.Second,
		SnapshotEvery:   100 * time.Millisecond,
	}
}

// Snapshot is a copied view of the engine handed to observers. It never
// aliases engine internals, so observers may retain it.
type Snapshot struct {
	Time         float64   `json:"time"`
	Lat          []float64 `json:"lat"`
	Temp         []float64 `json:"temp"`
	Albedo       []float64 `json:"albedo"`
	Insol        []float64 `json:"insol"`
	ASR          []float64 `json:"asr"`
	OLR          []float64 `json:"olr"`
	Transport    []float64 `json:"transport"`
	MeanTemp     float64   `json:"mean_temp"`
	NetFlux      float64   `json:"net_flux"`
	IceThreshold float64   `json:"ice_threshold"`
	SolarScale   float64   `json:"solar_scale"`
	Greenhouse   float64   `json:"greenhouse"`
	Settled      bool      `json:"settled"`
}

// Observer receives throttled snapshots.
type Observer func(Snapshot)

// Loop owns one engine for a session. It is single-threaded: Tick and
// the mutators must be called from one goroutine.
type Loop struct {
	cfg    Config
	bands  int
	params ebm.Params

	engine     *ebm.Engine
	solarScale float64
	greenhouse float64

	ticks        int
	settled      bool
	withinSince  time.Time
	lastSnapshot time.Time
	observer     Observer
}

// New builds a loop around a freshly constructed engine.
func New(bands int, params ebm.Params, cfg Config) (*Loop, error) {
	engine, err := ebm.New(bands, params)
	if err != nil {
		return nil, err
	}
	return &Loop{
		cfg:        cfg,
		bands:      bands,
		params:     params,
		engine:     engine,
		solarScale: 1.0,
	}, nil
}

// SetObserver registers the snapshot sink. Pass nil to detach.
func (l *Loop) SetObserver(fn Observer) { l.observer = fn }

// Tick runs one frame: cap check, physics, equilibrium debounce, and
// throttled snapshot emission. now should be the caller's wall clock.
func (l *Loop) Tick(now time.Time) {
	l.ticks++
	if l.cfg.IterationCap > 0 && l.ticks > l.cfg.IterationCap {
		logrus.WithField("ticks", l.ticks).Info("iteration cap reached, resetting")
		l.Reset()
	}

	if !l.settled {
		for i := 0; i < l.cfg.AdvancesPerTick; i++ {
			l.engine.Advance(l.cfg.FrameDt)
		}
		l.updateDebounce(now)
	}

	if l.observer != nil && (l.lastSnapshot.IsZero() || now.Sub(l.lastSnapshot) >= l.cfg.SnapshotEvery) {
		l.observer(l.Snapshot())
		l.lastSnapshot = now
	}
}

// updateDebounce stops the loop only after the net flux has stayed
// inside the equilibrium band continuously for the hold duration. A
// single in-band reading is not enough: the flux crosses zero on the
// way to a new state.
func (l *Loop) updateDebounce(now time.Time) {
	flux := l.engine.GlobalMeanNetFlux()
	if flux < -l.cfg.EquilibriumFlux || flux > l.cfg.EquilibriumFlux {
		l.withinSince = time.Time{}
		return
	}
	if l.withinSince.IsZero() {
		l.withinSince = now
		return
	}
	if now.Sub(l.withinSince) >= l.cfg.EquilibriumHold {
		l.settled = true
		logrus.WithFields(logrus.Fields{
			"time":      l.engine.Time(),
			"mean_temp": l.engine.GlobalMeanTemp(),
		}).Info("equilibrium reached, halting advancement")
	}
}

// SetSolarScale applies a multiplier to the default solar constant,
// recomputes insolation, and re-arms the equilibrium debounce.
func (l *Loop) SetSolarScale(scale float64) {
	l.solarScale = scale
	l.engine.SetSolarConstant(scale * l.params.S0)
	l.engine.RecomputeInsolation()
	l.engine.RefreshDiagnostics()
	l.rearm()
}

// SetGreenhouse maps the control g in [-1, 1] onto the longwave
// intercept and re-arms the equilibrium debounce. Insolation is
// untouched: only temperature-dependent diagnostics need refreshing.
func (l *Loop) SetGreenhouse(g float64) {
	l.greenhouse = g
	l.engine.SetRadiativeOffset(l.params.A - greenhouseRange*g)
	l.engine.RefreshDiagnostics()
	l.rearm()
}

// Reset discards the engine wholesale and rebuilds it, reapplying the
// current control settings to the fresh instance.
func (l *Loop) Reset() {
	engine, err := ebm.New(l.bands, l.params)
	if err != nil {
		// Construction succeeded once with these arguments; it cannot
		// fail on an identical rebuild.
		panic(err)
	}
	l.engine = engine
	l.ticks = 0
	l.rearm()
	if l.solarScale != 1.0 {
		l.SetSolarScale(l.solarScale)
	}
	if l.greenhouse != 0 {
		l.SetGreenhouse(l.greenhouse)
	}
}

func (l *Loop) rearm() {
	l.settled = false
	l.withinSince = time.Time{}
}

// Settled reports whether the loop has halted at equilibrium.
func (l *Loop) Settled() bool { return l.settled }

// SolarScale returns the current solar control setting.
func (l *Loop) SolarScale() float64 { return l.solarScale }

// Greenhouse returns the current greenhouse control setting.
func (l *Loop) Greenhouse() float64 { return l.greenhouse }

// Engine exposes the owned engine for direct (single-threaded) reads.
func (l *Loop) Engine() *ebm.Engine { return l.engine }

// Snapshot copies the engine's state for hand-off to observers.
func (l *Loop) Snapshot() Snapshot {
	e := l.engine
	return Snapshot{
		Time:         e.Time(),
		Lat:          clone(e.Latitudes()),
		Temp:         clone(e.Temperature()),
		Albedo:       clone(e.Albedo()),
		Insol:        clone(e.Insolation()),
		ASR:          clone(e.AbsorbedSolar()),
		OLR:          clone(e.OutgoingLongwave()),
		Transport:    clone(e.Transport()),
		MeanTemp:     e.GlobalMeanTemp(),
		NetFlux:      e.GlobalMeanNetFlux(),
		IceThreshold: e.IceThreshold(),
		SolarScale:   l.solarScale,
		Greenhouse:   l.greenhouse,
		Settled:      l.settled,
	}
}

func clone(s []float64) []float64 {
	c := make([]float64, len(s))
	copy(c, s)
	return c
}
