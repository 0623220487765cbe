package ebm

import (
	"math"
	"testing"
)

func TestTransportConserves(t *testing.T) {
	e, err := New(90, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	// Perturb into an asymmetric profile so fluxes are non-trivial.
	for i := range e.temp {
		e.temp[i] += 15 * math.Sin(3*float64(i))
	}
	e.RefreshDiagnostics()

	if e.flux[0] != 0 || e.flux[e.bands] != 0 {
		t.Errorf("polar fluxes must vanish, got %f and %f", e.flux[0], e.flux[e.bands])
	}

	sum := 0.0
	for _, v := range e.transport {
		sum += v
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("transport sum %e, want 0", sum)
	}
}

func TestTransportTwoBandAnalytic(t *testing.T) {
	p := DefaultParams()
	e, err := New(2, p)
	if err != nil {
		t.Fatal(err)
	}
	e.temp[0] = -10
	e.temp[1] = 10
	e.RefreshDiagnostics()

	// dx=1, single interior interface at x=0: flux = -D(1-0)(T1-T0)/1.
	wantFlux := -p.D * 20.0
	want0 := -wantFlux // -(flux[1]-0)/dx
	want1 := wantFlux  // -(0-flux[1])/dx

	if math.Abs(e.transport[0]-want0) > 1e-12 || math.Abs(e.transport[1]-want1) > 1e-12 {
		t.Errorf("transport = %v, want [%f %f]", e.transport, want0, want1)
	}
}

func TestAdvanceTimeAccounting(t *testing.T) {
	e, err := New(90, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	e.Advance(0.05)
	if math.Abs(e.Time()-0.05) > 1e-12 {
		t.Errorf("time %f, want 0.05", e.Time())
	}

	// A request far beyond the sub-step ceiling must truncate the work
	// but still account the full increment.
	e.Advance(1e6)
	if math.Abs(e.Time()-(0.05+1e6)) > 1e-6 {
		t.Errorf("time %f after truncated advance, want %f", e.Time(), 0.05+1e6)
	}
}

func TestAdvanceStaysFinite(t *testing.T) {
	for _, d := range []float64{0.05, 0.6, 5.0} {
		p := DefaultParams()
		p.D = d
		e, err := New(90, p)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 50; i++ {
			e.Advance(0.5)
		}
		for i, v := range e.Temperature() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("D=%f: non-finite temperature at band %d", d, i)
			}
		}
	}
}

func TestSentinelGuardRecovers(t *testing.T) {
	e, err := New(90, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	before := append([]float64(nil), e.Temperature()...)

	// A NaN longwave intercept poisons the first sub-step's tendency; the
	// guard must roll the field back and abandon the call.
	e.SetRadiativeOffset(math.NaN())
	e.Advance(1.0)

	for i, v := range e.Temperature() {
		if v != before[i] {
			t.Fatalf("band %d mutated to %f, want last valid %f", i, v, before[i])
		}
	}
	if e.Time() != 1.0 {
		t.Errorf("time %f, want full requested 1.0", e.Time())
	}
}

func TestInsolationStaleUntilRecompute(t *testing.T) {
	e, err := New(90, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	old := append([]float64(nil), e.Insolation()...)

	e.SetSolarConstant(0.5 * DefaultParams().S0)
	e.RefreshDiagnostics()
	for i, v := range e.Insolation() {
		if v != old[i] {
			t.Fatalf("insolation changed at band %d before explicit recompute", i)
		}
	}

	e.RecomputeInsolation()
	for i, v := range e.Insolation() {
		if math.Abs(v-old[i]/2) > 1e-9 {
			t.Fatalf("insolation[%d]=%f after halving S0, want %f", i, v, old[i]/2)
		}
	}
}

func TestInsolationProfile(t *testing.T) {
	p := DefaultParams()
	e, err := New(90, p)
	if err != nil {
		t.Fatal(err)
	}
	const s2 = -0.482
	for i, x := range e.x {
		want := p.S0 / 4 * (1 + s2*0.5*(3*x*x-1))
		if math.Abs(e.insol[i]-want) > 1e-9 {
			t.Errorf("insol[%d]=%f, want %f", i, e.insol[i], want)
		}
	}
}

func TestAlbedoStepFunction(t *testing.T) {
	p := DefaultParams()
	e, err := New(4, p)
	if err != nil {
		t.Fatal(err)
	}
	e.temp = []float64{-30, p.IceThreshold, p.IceThreshold - 1e-9, 25}
	e.RefreshDiagnostics()

	want := []float64{p.IceAlbedo, p.OceanAlbedo, p.IceAlbedo, p.OceanAlbedo}
	for i := range want {
		if e.albedo[i] != want[i] {
			t.Errorf("albedo[%d]=%f, want %f", i, e.albedo[i], want[i])
		}
	}
}

func TestParamsCopyIsolation(t *testing.T) {
	p := DefaultParams()
	a, err := New(60, p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(60, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	p.A = 999
	p.S0 = 0

	for i := 0; i < 20; i++ {
		a.Advance(0.5)
		b.Advance(0.5)
	}
	for i := range a.Temperature() {
		if a.Temperature()[i] != b.Temperature()[i] {
			t.Fatalf("caller mutation leaked into engine at band %d", i)
		}
	}
}

func TestGlobalMeans(t *testing.T) {
	e, err := New(3, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	e.temp = []float64{-10, 0, 10}
	e.RefreshDiagnostics()

	if got := e.GlobalMeanTemp(); math.Abs(got) > 1e-12 {
		t.Errorf("mean temp %f, want 0", got)
	}

	want := 0.0
	for i := range e.asr {
		want += e.asr[i] - e.olr[i]
	}
	want /= 3
	if got := e.GlobalMeanNetFlux(); math.Abs(got-want) > 1e-12 {
		t.Errorf("net flux %f, want %f", got, want)
	}
}
