package sim

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// System is the right-hand side of an ODE; any time dependence lives
// inside the implementation (forcing terms).
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

// Metric accumulates a scalar observation over a trajectory.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

// Trajectory is the integration output: one state per requested time.
// Steps counts internal integrator steps, not output points.
type Trajectory struct {
	Times  []float64
	States []State
	Steps  int
}
