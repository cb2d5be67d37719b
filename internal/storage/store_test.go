package storage

import (
	"strings"
	"testing"

	"github.com/san-kum/virosim/internal/model"
	"github.com/san-kum/virosim/internal/sim"
	"github.com/san-kum/virosim/internal/summary"
)

func sampleRun(t *testing.T) (model.Params, *sim.Trajectory, []summary.Row) {
	t.Helper()
	p := model.Default()
	lay := p.Layout()

	x0 := model.InitialState(p)
	x1 := x0.Clone()
	x1[lay.DeadUninfected()] = 42.0

	traj := &sim.Trajectory{
		Times:  []float64{-24, 0},
		States: []sim.State{x0, x1},
		Steps:  17,
	}
	rows, err := summary.Reduce(lay, traj)
	if err != nil {
		t.Fatal(err)
	}
	return p, traj, rows
}

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	p, traj, rows := sampleRun(t)
	metrics := map[string]float64{"final_dead": 42.0}

	runID, err := store.Save(p, traj, rows, metrics)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "exp_") {
		t.Errorf("run ID should carry the death type, got %q", runID)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != runID || meta.DeathType != "exp" {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.NT != 4 || meta.NP != 1 {
		t.Errorf("derived counts not persisted: %+v", meta)
	}
	if meta.Params["beta"] != "0.01" {
		t.Errorf("parameter snapshot missing beta, got %q", meta.Params["beta"])
	}
	if meta.Metrics["final_dead"] != 42.0 {
		t.Errorf("metrics not persisted: %+v", meta.Metrics)
	}
}

func TestLoadSummaryRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	p, traj, rows := sampleRun(t)
	runID, err := store.Save(p, traj, rows, nil)
	if err != nil {
		t.Fatal(err)
	}

	times, loaded, err := store.LoadSummary(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != len(traj.Times) {
		t.Fatalf("expected %d summary rows, got %d", len(traj.Times), len(times))
	}
	for i := range rows {
		if times[i] != traj.Times[i] || loaded[i] != rows[i] {
			t.Errorf("row %d changed in round trip: %+v vs %+v", i, rows[i], loaded[i])
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	p, traj, rows := sampleRun(t)
	first, err := store.Save(p, traj, rows, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Save(p, traj, rows, nil)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].Timestamp.After(runs[1].Timestamp) && runs[0].Timestamp != runs[1].Timestamp {
		t.Error("runs not ordered newest first")
	}
	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !ids[first] || !ids[second] {
		t.Errorf("listed IDs %v do not cover saved runs %s, %s", ids, first, second)
	}
}

func TestListEmptyBase(t *testing.T) {
	store := New(t.TempDir() + "/never-created")
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadUnknownRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("exp_deadbeef"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}
