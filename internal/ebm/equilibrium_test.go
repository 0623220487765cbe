package ebm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ebmlab/internal/ebm"
)

// settle integrates long enough for the slowest relaxation mode
// (heat capacity over longwave slope, ~20 time units) to decay away.
func settle(e *ebm.Engine) {
	for i := 0; i < 600; i++ {
		e.Advance(0.5)
	}
}

func equilibriumTemp(p ebm.Params) float64 {
	e, err := ebm.New(90, p)
	Expect(err).NotTo(HaveOccurred())
	settle(e)
	return e.GlobalMeanTemp()
}

var _ = Describe("radiative equilibrium", func() {
	It("converges the global net flux toward zero", func() {
		e, err := ebm.New(90, ebm.DefaultParams())
		Expect(err).NotTo(HaveOccurred())

		settle(e)
		Expect(e.GlobalMeanNetFlux()).To(BeNumerically("~", 0, 1))
		Expect(e.GlobalMeanTemp()).To(BeNumerically(">", 0))
		Expect(e.GlobalMeanTemp()).To(BeNumerically("<", 25))
	})

	It("is idempotent once settled", func() {
		e, err := ebm.New(90, ebm.DefaultParams())
		Expect(err).NotTo(HaveOccurred())

		settle(e)
		before := e.GlobalMeanTemp()
		for i := 0; i < 20; i++ {
			e.Advance(0.5)
		}
		perUnitTime := (e.GlobalMeanTemp() - before) / 10
		Expect(perUnitTime).To(BeNumerically("~", 0, 0.01))
	})

	It("warms strictly with stronger solar forcing", func() {
		base := ebm.DefaultParams()
		brighter := base
		brighter.S0 = 1.05 * base.S0
		Expect(equilibriumTemp(brighter)).To(BeNumerically(">", equilibriumTemp(base)))
	})

	It("warms strictly with stronger greenhouse forcing", func() {
		base := ebm.DefaultParams()
		greenhouse := base
		greenhouse.A = base.A - 30
		Expect(equilibriumTemp(greenhouse)).To(BeNumerically(">", equilibriumTemp(base)))
	})
})

var _ = Describe("snowball hysteresis", func() {
	It("stays frozen after solar forcing is restored", func() {
		p := ebm.DefaultParams()
		e, err := ebm.New(90, p)
		Expect(err).NotTo(HaveOccurred())
		settle(e)
		warm := e.GlobalMeanTemp()
		Expect(warm).To(BeNumerically(">", 0))

		// Dim the sun 10%: the ice edge runs away to the equator.
		e.SetSolarConstant(0.9 * p.S0)
		e.RecomputeInsolation()
		e.RefreshDiagnostics()
		settle(e)
		frozen := e.GlobalMeanTemp()
		Expect(frozen).To(BeNumerically("<", -20))
		for _, t := range e.Temperature() {
			Expect(t).To(BeNumerically("<", e.IceThreshold()))
		}

		// Restore full forcing: the high ice albedo holds the model on
		// the frozen branch instead of returning to the warm state.
		e.SetSolarConstant(p.S0)
		e.RecomputeInsolation()
		e.RefreshDiagnostics()
		settle(e)
		restored := e.GlobalMeanTemp()
		Expect(restored).To(BeNumerically("<", -30))
		Expect(restored).To(BeNumerically("~", frozen, 10))
		Expect(restored).NotTo(BeNumerically("~", warm, 20))
	})
})
