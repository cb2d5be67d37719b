package sim

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrInvalidState indicates the solver produced NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrStepBudget indicates the internal step budget was exhausted
	// before the requested end time was reached.
	ErrStepBudget = errors.New("sim: internal step budget exhausted")

	// ErrStepTooSmall indicates the adaptive timestep collapsed below
	// the minimum before the error estimate was satisfied.
	ErrStepTooSmall = errors.New("sim: adaptive timestep below minimum")

	// ErrTimeGrid indicates a time grid that is not strictly increasing.
	ErrTimeGrid = errors.New("sim: time grid must be strictly increasing")

	// ErrDimensionMismatch indicates an initial state whose length does
	// not match the system dimension.
	ErrDimensionMismatch = errors.New("sim: state length does not match system dimension")
)

// RunError wraps a run failure with the time at which it occurred.
type RunError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
