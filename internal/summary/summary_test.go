package summary

import (
	"errors"
	"testing"

	"github.com/san-kum/virosim/internal/model"
	"github.com/san-kum/virosim/internal/sim"
)

// A two-segment layout with one stage per eclipse phase and two
// productive stages keeps indices small enough to reason about by hand.
func smallLayout() model.Layout {
	return model.Layout{NT: 2, NEE: 1, NER: 1, NEI: 1, NP: 2}
}

func TestReduceAggregates(t *testing.T) {
	lay := smallLayout()
	x := make(sim.State, lay.Len())

	x[lay.Index(0, 0)] = 100.0 // uninfected
	x[lay.Index(0, 1)] = 10.0  // EE
	x[lay.Index(1, 4)] = 20.0  // productive, first stage
	x[lay.Index(1, 5)] = 5.0   // productive, second stage
	x[lay.DeadUninfected()] = 7.0
	x[lay.DeadInfected()] = 8.0

	traj := &sim.Trajectory{Times: []float64{0}, States: []sim.State{x}}
	rows, err := Reduce(lay, traj)
	if err != nil {
		t.Fatal(err)
	}

	row := rows[0]
	if row.Total != 150.0 {
		t.Errorf("total: expected 150, got %g", row.Total)
	}
	if row.Dead != 15.0 {
		t.Errorf("dead: expected 15, got %g", row.Dead)
	}
	// infected = live productive (25) + dead infected (8)
	if want := 33.0 / 150.0; row.FracInfected != want {
		t.Errorf("frac infected: expected %g, got %g", want, row.FracInfected)
	}
	if want := 8.0 / 33.0; row.DeadFracOfInfected != want {
		t.Errorf("dead frac of infected: expected %g, got %g", want, row.DeadFracOfInfected)
	}
}

func TestReduceZeroDenominators(t *testing.T) {
	lay := smallLayout()
	traj := &sim.Trajectory{
		Times:  []float64{0},
		States: []sim.State{make(sim.State, lay.Len())},
	}

	rows, err := Reduce(lay, traj)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].FracInfected != 0 || rows[0].DeadFracOfInfected != 0 {
		t.Errorf("empty state must give zero fractions, got %+v", rows[0])
	}
}

func TestReduceClipsNegatives(t *testing.T) {
	lay := smallLayout()
	x := make(sim.State, lay.Len())
	x[lay.DeadUninfected()] = -3.0
	x[lay.DeadInfected()] = -1.0

	traj := &sim.Trajectory{Times: []float64{0}, States: []sim.State{x}}
	rows, err := Reduce(lay, traj)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Dead != 0 {
		t.Errorf("negative dead pools must clip to zero, got %g", rows[0].Dead)
	}
	if rows[0].Total != 0 {
		t.Errorf("negative total must clip to zero, got %g", rows[0].Total)
	}
}

func TestReduceRejectsWrongLength(t *testing.T) {
	lay := smallLayout()
	traj := &sim.Trajectory{
		Times:  []float64{0},
		States: []sim.State{make(sim.State, lay.Len()-1)},
	}
	_, err := Reduce(lay, traj)
	if !errors.Is(err, model.ErrLayout) {
		t.Errorf("expected layout error, got %v", err)
	}
}
