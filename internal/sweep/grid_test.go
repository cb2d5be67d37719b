package sweep

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestMinimizeFindsBestPoint(t *testing.T) {
	g, err := New([]string{"a", "b"}, [][]float64{
		{-1, 0, 1, 2},
		{-2, 0, 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	// paraboloid with minimum at a=1, b=0
	eval := func(ctx context.Context, p map[string]float64) (map[string]float64, error) {
		v := (p["a"]-1)*(p["a"]-1) + p["b"]*p["b"]
		return map[string]float64{"loss": v}, nil
	}

	res, err := g.Minimize(context.Background(), eval, "loss")
	if err != nil {
		t.Fatal(err)
	}
	if res.Evaluated != 12 {
		t.Errorf("expected 12 evaluations, got %d", res.Evaluated)
	}
	if res.Params["a"] != 1 || res.Params["b"] != 0 {
		t.Errorf("expected minimum at a=1 b=0, got %v", res.Params)
	}
	if res.Value != 0 {
		t.Errorf("expected loss 0, got %g", res.Value)
	}
}

func TestMinimizePropagatesEvalError(t *testing.T) {
	g, err := New([]string{"a"}, [][]float64{{1, 2}})
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("diverged")
	eval := func(ctx context.Context, p map[string]float64) (map[string]float64, error) {
		return nil, boom
	}

	if _, err := g.Minimize(context.Background(), eval, "loss"); !errors.Is(err, boom) {
		t.Errorf("expected eval error to propagate, got %v", err)
	}
}

func TestMinimizeUnknownMetric(t *testing.T) {
	g, err := New([]string{"a"}, [][]float64{{1}})
	if err != nil {
		t.Fatal(err)
	}
	eval := func(ctx context.Context, p map[string]float64) (map[string]float64, error) {
		return map[string]float64{"other": 1}, nil
	}
	if _, err := g.Minimize(context.Background(), eval, "loss"); err == nil {
		t.Fatal("expected error for never-reported metric")
	}
}

func TestMinimizeHonorsCancel(t *testing.T) {
	g, err := New([]string{"a"}, [][]float64{Linspace(0, 1, 100)})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	eval := func(ctx context.Context, p map[string]float64) (map[string]float64, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return map[string]float64{"loss": p["a"]}, nil
	}

	_, err = g.Minimize(ctx, eval, "loss")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls > 4 {
		t.Errorf("sweep kept running after cancel: %d calls", calls)
	}
}

func TestNewRejectsMismatch(t *testing.T) {
	if _, err := New([]string{"a", "b"}, [][]float64{{1}}); err == nil {
		t.Error("expected error for name/range length mismatch")
	}
	if _, err := New([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestLinspace(t *testing.T) {
	vals := Linspace(0, 48, 13)
	if len(vals) != 13 || vals[0] != 0 || vals[12] != 48 {
		t.Fatalf("unexpected linspace: %v", vals)
	}
	for i := 1; i < len(vals); i++ {
		if math.Abs((vals[i]-vals[i-1])-4.0) > 1e-12 {
			t.Fatalf("uneven spacing at %d: %v", i, vals)
		}
	}
	if one := Linspace(5, 9, 1); len(one) != 1 || one[0] != 5 {
		t.Errorf("single-point linspace: %v", one)
	}
}
