package model

import (
	"math"

	"github.com/san-kum/virosim/internal/sim"
)

// Infection is the single-cycle HIV culture model. Uninfected cells are
// exposed to decaying free virus, pass through three Erlang-chain
// eclipse phases (EE, ER, EI), produce virus, and die. Background
// culture death is an Erlang chain of NT segments applied to every live
// column. One evaluator covers both deathtype modes: exp is the NP=1
// case of the productive chain.
type Infection struct {
	p   Params
	lay Layout
}

func NewInfection(p Params) *Infection {
	return &Infection{p: p, lay: p.Layout()}
}

func (m *Infection) Dim() int { return m.lay.Len() }

func (m *Infection) Layout() Layout { return m.lay }

// Virus is the free virus concentration at time t. Before t=0 it ramps
// up as a narrow Gaussian instead of a discontinuous addition; after
// t=0 it decays exponentially, cut to a quarter at 24h if the one-day
// media dilution is configured.
func (m *Infection) Virus(t float64) float64 {
	p := &m.p
	switch {
	case t < 0:
		return p.V0 * math.Exp(-t*t/(2*p.Onset*p.Onset))
	case t < 24.0 || !p.OneDayDilution:
		return p.V0 * math.Exp(-p.C*t)
	default:
		return 0.25 * p.V0 * math.Exp(-p.C*t)
	}
}

// gate multiplies a progression rate by a Gaussian decay once t passes
// the drug action time. A hard stop would make the system non-smooth at
// that instant.
func gate(rate, t, action, onset float64) float64 {
	if t < action {
		return rate
	}
	d := t - action
	return rate * math.Exp(-d*d/(2*onset*onset))
}

// Derive evaluates the right-hand side. Transiently negative entries
// are solver extrapolation noise: they are clamped to zero in a copy,
// the caller's buffer is never touched.
func (m *Infection) Derive(x sim.State, t float64) sim.State {
	p := &m.p
	lay := m.lay

	deltaT := float64(p.NT) / p.TauT
	deltaEE := gate(float64(p.NEE)/p.TauEE, t, p.EfavTime, p.Onset)
	deltaER := gate(float64(p.NER)/p.TauER, t, p.RaltTime, p.Onset)
	deltaEI := float64(p.NEI) / p.TauEI
	deltaP := float64(p.NP) / p.TauP

	infect := 0.0
	if p.N > 0 {
		infect = p.Beta * m.Virus(t) / p.N
	}

	live := x.Clone()
	for i, v := range live {
		if v < 0 {
			live[i] = 0
		}
	}
	g := grid{lay: lay, x: live}

	cols := lay.Cols()
	colEE, colER, colEI, colP := lay.colEE(), lay.colER(), lay.colEI(), lay.colP()

	dx := make(sim.State, lay.Len())

	for i := 0; i < p.NT; i++ {
		base := i * cols

		// uninfected: infection loss, growth, segment exchange, and
		// failed infections returning from every eclipse stage
		dx[base] = -infect*g.at(i, 0) + p.S*g.at(i, 0) +
			deltaT*(g.at(i-1, 0)-g.at(i, 0)) +
			p.FEE*g.rowSum(i, colEE, colER) +
			p.FER*g.rowSum(i, colER, colEI) +
			p.FEI*g.rowSum(i, colEI, colP)

		// eclipse EE: first stage fed by infection, the rest chained
		for j := colEE; j < colER; j++ {
			in := deltaEE * g.at(i, j-1)
			if j == colEE {
				in = infect * g.at(i, 0)
			}
			dx[base+j] = in + deltaT*(g.at(i-1, j)-g.at(i, j)) -
				deltaEE*g.at(i, j) +
				(p.S-p.FEE)*g.at(i, j) - p.DEE*g.at(i, j)
		}

		// eclipse ER: first stage fed by the last EE stage
		for j := colER; j < colEI; j++ {
			in := deltaER * g.at(i, j-1)
			if j == colER {
				in = deltaEE * g.at(i, j-1)
			}
			dx[base+j] = in + deltaT*(g.at(i-1, j)-g.at(i, j)) -
				deltaER*g.at(i, j) +
				(p.S-p.FER)*g.at(i, j) - p.DER*g.at(i, j)
		}

		// eclipse EI: first stage fed by the last ER stage
		for j := colEI; j < colP; j++ {
			in := deltaEI * g.at(i, j-1)
			if j == colEI {
				in = deltaER * g.at(i, j-1)
			}
			dx[base+j] = in + deltaT*(g.at(i-1, j)-g.at(i, j)) -
				deltaEI*g.at(i, j) +
				(p.S-p.FEI)*g.at(i, j) - p.DEI*g.at(i, j)
		}

		// productive chain: no failure, ends only in death; the
		// progression out of the last stage is the Erlang death flow
		for j := colP; j < cols; j++ {
			in := deltaP * g.at(i, j-1)
			if j == colP {
				in = deltaEI * g.at(i, j-1)
			}
			dx[base+j] = in + deltaT*(g.at(i-1, j)-g.at(i, j)) -
				deltaP*g.at(i, j) +
				p.S*g.at(i, j) - p.DP*g.at(i, j)
		}
	}

	// cumulative dead pools
	deadU := 0.0
	deadI := 0.0
	for i := 0; i < p.NT; i++ {
		deadU += p.DEE*g.rowSum(i, colEE, colER) +
			p.DER*g.rowSum(i, colER, colEI) +
			p.DEI*g.rowSum(i, colEI, colP)
		deadI += p.DP * g.rowSum(i, colP, cols)
		deadI += deltaP * g.at(i, cols-1)
	}
	// cells leaving the last death-hazard segment die of the
	// background culture hazard
	last := p.NT - 1
	deadU += deltaT * g.rowSum(last, 0, colP)
	deadI += deltaT * g.rowSum(last, colP, cols)

	dx[lay.DeadUninfected()] = deadU - p.DD*live[lay.DeadUninfected()]
	dx[lay.DeadInfected()] = deadI - p.DD*live[lay.DeadInfected()]

	return dx
}
