package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/virosim/internal/model"
	"github.com/san-kum/virosim/internal/sim"
)

func testLayout() model.Layout {
	return model.Layout{NT: 2, NEE: 1, NER: 1, NEI: 1, NP: 2}
}

func stateWith(lay model.Layout, set func(x sim.State)) sim.State {
	x := make(sim.State, lay.Len())
	set(x)
	return x
}

func TestPeakInfectedFraction(t *testing.T) {
	lay := testLayout()
	m := NewPeakInfectedFraction(lay)

	// peak is in the middle of the trajectory, not at the end
	traj := &sim.Trajectory{
		Times: []float64{0, 1, 2},
		States: []sim.State{
			stateWith(lay, func(x sim.State) { x[lay.Index(0, 0)] = 100 }),
			stateWith(lay, func(x sim.State) {
				x[lay.Index(0, 0)] = 50
				x[lay.Index(0, 4)] = 50 // productive
			}),
			stateWith(lay, func(x sim.State) {
				x[lay.Index(0, 0)] = 90
				x[lay.Index(0, 4)] = 10
			}),
		},
	}

	out := ObserveAll(traj, m)
	if got := out["peak_infected_fraction"]; got != 0.5 {
		t.Errorf("expected peak 0.5, got %g", got)
	}
}

func TestPeakCountsDeadInfected(t *testing.T) {
	lay := testLayout()
	m := NewPeakInfectedFraction(lay)

	x := stateWith(lay, func(x sim.State) {
		x[lay.Index(0, 0)] = 75
		x[lay.DeadInfected()] = 25
	})
	m.Observe(x, 0)
	if m.Value() != 0.25 {
		t.Errorf("dead infected must count as infected: got %g", m.Value())
	}
}

func TestPeakIgnoresEmptyStates(t *testing.T) {
	lay := testLayout()
	m := NewPeakInfectedFraction(lay)
	m.Observe(make(sim.State, lay.Len()), 0)
	if m.Value() != 0 {
		t.Errorf("empty state should not move the peak, got %g", m.Value())
	}
}

func TestFinalDead(t *testing.T) {
	lay := testLayout()
	m := NewFinalDead(lay)

	traj := &sim.Trajectory{
		Times: []float64{0, 1},
		States: []sim.State{
			stateWith(lay, func(x sim.State) { x[lay.DeadUninfected()] = 5 }),
			stateWith(lay, func(x sim.State) {
				x[lay.DeadUninfected()] = 7
				x[lay.DeadInfected()] = 3
			}),
		},
	}

	out := ObserveAll(traj, m)
	if out["final_dead"] != 10.0 {
		t.Errorf("expected final dead 10, got %g", out["final_dead"])
	}
}

func TestMassDrift(t *testing.T) {
	lay := testLayout()
	m := NewMassDrift()

	traj := &sim.Trajectory{
		Times: []float64{0, 1},
		States: []sim.State{
			stateWith(lay, func(x sim.State) { x[0] = 100 }),
			stateWith(lay, func(x sim.State) { x[0] = 99 }),
		},
	}

	out := ObserveAll(traj, m)
	if math.Abs(out["mass_drift"]-0.01) > 1e-15 {
		t.Errorf("expected drift 0.01, got %g", out["mass_drift"])
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("reset metric should read 0, got %g", m.Value())
	}
}
