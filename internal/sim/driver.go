package sim

import (
	"context"
	"fmt"
	"math"
)

// Driver advances a System over a requested time grid with an adaptive
// integrator, recording the state at exactly the grid points. It is
// synchronous and single-threaded; the only budget is numeric.
type Driver struct {
	integ     AdaptiveIntegrator
	Tol       float64
	MaxSteps  int
	MinDt     float64
	InitialDt float64
}

func NewDriver(integ AdaptiveIntegrator) *Driver {
	return &Driver{
		integ:     integ,
		Tol:       1e-6,
		MaxSteps:  100000,
		MinDt:     1e-10,
		InitialDt: 1e-3,
	}
}

// CheckGrid rejects time grids that are not strictly increasing.
func CheckGrid(times []float64) error {
	if len(times) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrTimeGrid, len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return fmt.Errorf("%w: times[%d]=%g after times[%d]=%g",
				ErrTimeGrid, i, times[i], i-1, times[i-1])
		}
	}
	return nil
}

// Evolve integrates sys from x0 at times[0], returning one state per
// grid point. On any failure the partial trajectory is discarded.
func (d *Driver) Evolve(ctx context.Context, sys System, times []float64, x0 State) (*Trajectory, error) {
	if err := CheckGrid(times); err != nil {
		return nil, err
	}
	if len(x0) != sys.Dim() {
		return nil, fmt.Errorf("%w: len=%d want %d", ErrDimensionMismatch, len(x0), sys.Dim())
	}
	if !x0.IsValid() {
		return nil, &RunError{Time: times[0], Wrapped: ErrInvalidState}
	}

	traj := &Trajectory{
		Times:  append([]float64(nil), times...),
		States: make([]State, 0, len(times)),
	}

	x := x0.Clone()
	t := times[0]
	dt := d.InitialDt
	steps := 0

	traj.States = append(traj.States, x.Clone())

	for k := 1; k < len(times); k++ {
		target := times[k]
		for t < target {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			if steps >= d.MaxSteps {
				return nil, &RunError{Time: t, Step: steps, Wrapped: ErrStepBudget}
			}

			h := dt
			clipped := false
			if t+h > target {
				h = target - t
				clipped = true
			}

			xNew, dtNext, err := d.integ.StepAdaptive(sys, x, t, h, d.Tol)
			if err != nil {
				return nil, &RunError{Time: t, Step: steps, Wrapped: err}
			}
			if !xNew.IsValid() {
				return nil, &RunError{Time: t, Step: steps, Wrapped: ErrInvalidState}
			}

			x = xNew
			t += h
			steps++

			if clipped {
				// a clipped step lands on the grid point; snap over
				// the last ulp so the loop cannot spin on it
				if target-t <= 1e-12*math.Max(1, math.Abs(target)) {
					t = target
				}
			} else {
				if dtNext < d.MinDt {
					return nil, &RunError{Time: t, Step: steps, Wrapped: ErrStepTooSmall}
				}
				dt = dtNext
			}
		}
		traj.States = append(traj.States, x.Clone())
	}

	traj.Steps = steps
	return traj, nil
}
