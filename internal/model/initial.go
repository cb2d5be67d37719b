package model

import "github.com/san-kum/virosim/internal/sim"

// InitialState places the whole culture in the uninfected column of the
// first death-hazard segment; everything else starts empty.
func InitialState(p Params) sim.State {
	x := make(sim.State, p.Layout().Len())
	x[0] = p.N
	return x
}

// TimeGrid is the default output grid: Steps uniform points spanning
// [-tprior, tend], both ends included.
func TimeGrid(p Params) []float64 {
	if p.Steps < 2 {
		return []float64{-p.TPrior, p.TEnd}
	}
	ts := make([]float64, p.Steps)
	span := p.TEnd + p.TPrior
	for i := range ts {
		ts[i] = -p.TPrior + span*float64(i)/float64(p.Steps-1)
	}
	return ts
}
