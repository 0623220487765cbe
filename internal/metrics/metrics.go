// Package metrics derives scalar summaries from driver snapshots, in
// the spirit of run-level metrics reported after a batch simulation.
package metrics

import (
	"math"

	"github.com/san-kum/ebmlab/internal/driver"
)

// Metric accumulates over a run and reports one value at the end.
type Metric interface {
	Name() string
	Observe(s driver.Snapshot)
	Value() float64
	Reset()
}

// IceEdge tracks the lowest absolute latitude of any frozen band in the
// most recent snapshot: 90 means ice free, 0 means snowball.
type IceEdge struct {
	edge float64
}

func NewIceEdge() *IceEdge { return &IceEdge{edge: 90} }

func (m *IceEdge) Name() string { return "ice_edge_lat" }

func (m *IceEdge) Observe(s driver.Snapshot) {
	edge := 90.0
	for i, t := range s.Temp {
		if t < s.IceThreshold {
			if a := math.Abs(s.Lat[i]); a < edge {
				edge = a
			}
		}
	}
	m.edge = edge
}

func (m *IceEdge) Value() float64 { return m.edge }
func (m *IceEdge) Reset()         { m.edge = 90 }

// Drift reports the largest rate of change of the global mean
// temperature per unit simulated time seen between observations. Near
// zero means the run genuinely settled.
type Drift struct {
	lastTime float64
	lastTemp float64
	maxRate  float64
	samples  int
}

func NewDrift() *Drift { return &Drift{} }

func (m *Drift) Name() string { return "temp_drift" }

func (m *Drift) Observe(s driver.Snapshot) {
	if m.samples > 0 && s.Time > m.lastTime {
		rate := math.Abs(s.MeanTemp-m.lastTemp) / (s.Time - m.lastTime)
		if rate > m.maxRate {
			m.maxRate = rate
		}
	}
	m.lastTime = s.Time
	m.lastTemp = s.MeanTemp
	m.samples++
}

func (m *Drift) Value() float64 { return m.maxRate }

func (m *Drift) Reset() {
	m.lastTime = 0
	m.lastTemp = 0
	m.maxRate = 0
	m.samples = 0
}

// NetFlux reports the final global radiative imbalance.
type NetFlux struct {
	flux float64
}

func NewNetFlux() *NetFlux { return &NetFlux{} }

func (m *NetFlux) Name() string { return "net_flux" }

func (m *NetFlux) Observe(s driver.Snapshot) { m.flux = s.NetFlux }

func (m *NetFlux) Value() float64 { return m.flux }
func (m *NetFlux) Reset()         { m.flux = 0 }
