package metrics

import (
	"math"

	"github.com/san-kum/virosim/internal/model"
	"github.com/san-kum/virosim/internal/sim"
)

// PeakInfectedFraction tracks the maximum infected fraction seen over a
// trajectory.
type PeakInfectedFraction struct {
	lay  model.Layout
	peak float64
}

func NewPeakInfectedFraction(lay model.Layout) *PeakInfectedFraction {
	return &PeakInfectedFraction{lay: lay}
}

func (m *PeakInfectedFraction) Name() string { return "peak_infected_fraction" }

func (m *PeakInfectedFraction) Observe(x sim.State, t float64) {
	total := x.Sum()
	if total <= 0 {
		return
	}
	inf := x[m.lay.DeadInfected()]
	cols := m.lay.Cols()
	firstP := cols - m.lay.NP
	for seg := 0; seg < m.lay.NT; seg++ {
		for col := firstP; col < cols; col++ {
			inf += x[seg*cols+col]
		}
	}
	if frac := inf / total; frac > m.peak {
		m.peak = frac
	}
}

func (m *PeakInfectedFraction) Value() float64 { return m.peak }
func (m *PeakInfectedFraction) Reset()         { m.peak = 0 }

// FinalDead reports the dead pool at the last observed time point.
type FinalDead struct {
	lay  model.Layout
	dead float64
}

func NewFinalDead(lay model.Layout) *FinalDead {
	return &FinalDead{lay: lay}
}

func (m *FinalDead) Name() string { return "final_dead" }

func (m *FinalDead) Observe(x sim.State, t float64) {
	d := x[m.lay.DeadUninfected()] + x[m.lay.DeadInfected()]
	if d < 0 {
		d = 0
	}
	m.dead = d
}

func (m *FinalDead) Value() float64 { return m.dead }
func (m *FinalDead) Reset()         { m.dead = 0 }

// MassDrift reports the relative change in the full population sum
// between the first and last observation. With zero growth and zero
// disintegration the model conserves mass, so drift measures solver
// error.
type MassDrift struct {
	initial float64
	last    float64
	seen    bool
}

func NewMassDrift() *MassDrift {
	return &MassDrift{}
}

func (m *MassDrift) Name() string { return "mass_drift" }

func (m *MassDrift) Observe(x sim.State, t float64) {
	total := x.Sum()
	if !m.seen {
		m.initial = total
		m.seen = true
	}
	m.last = total
}

func (m *MassDrift) Value() float64 {
	if !m.seen || m.initial == 0 {
		return 0
	}
	return math.Abs(m.last-m.initial) / math.Abs(m.initial)
}

func (m *MassDrift) Reset() {
	m.initial = 0
	m.last = 0
	m.seen = false
}

// ObserveAll runs every metric over a full trajectory and collects the
// final values by name.
func ObserveAll(traj *sim.Trajectory, ms ...sim.Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i, x := range traj.States {
		for _, m := range ms {
			m.Observe(x, traj.Times[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
