package model

import (
	"errors"
	"fmt"
	"math"
)

// Death distribution modes for the productive phase.
const (
	DeathExp   = "exp"
	DeathGamma = "gamma"
)

var (
	// ErrDeathType indicates an unrecognized deathtype mode.
	ErrDeathType = errors.New("model: deathtype must be \"exp\" or \"gamma\"")

	// ErrStagePair indicates a lifetime pair from which no stage count
	// can be derived.
	ErrStagePair = errors.New("model: lifetime mean and stddev must be positive")

	// ErrLayout indicates a state vector whose length does not match
	// the layout derived from the current stage counts.
	ErrLayout = errors.New("model: state length does not match layout")
)

// Params holds every model and integration parameter together with the
// stage counts derived from the lifetime pairs. It is a value type:
// build one with Default, modify it with Apply, and treat the result as
// immutable for the duration of a run.
type Params struct {
	// cell culture
	N      float64 // initial culture population (cells)
	TauT   float64 // uninfected lifespan, mean (h)
	SigmaT float64 // uninfected lifespan, stddev (h)
	S      float64 // exponential growth rate of T cells (1/h)
	DD     float64 // dead cell disintegration rate (1/h)

	// virus and attachment
	Beta           float64 // infection rate constant (1/[V]/h)
	V0             float64 // virus added at t=0 ([V])
	C              float64 // virus clearance rate (1/h)
	OneDayDilution bool    // media dilution at 24h cuts virus to 1/4

	// eclipse EE: fusion through reverse transcription
	TauEE    float64 // EE phase mean (h)
	SigmaEE  float64 // EE phase stddev (h)
	DEE      float64 // infection-induced death rate in EE (1/h)
	FEE      float64 // infection failure rate in EE (1/h)
	EfavTime float64 // efavirenz (RT inhibitor) action time (h)

	// eclipse ER: reverse transcription through integration
	TauER    float64
	SigmaER  float64
	DER      float64
	FER      float64
	RaltTime float64 // raltegravir (integrase inhibitor) action time (h)

	// eclipse EI: integration through viral production
	TauEI   float64
	SigmaEI float64
	DEI     float64
	FEI     float64

	// productive phase
	DeathType string  // exp or gamma
	TauP      float64 // productive phase mean (h)
	SigmaP    float64 // productive phase stddev (h)
	DP        float64 // additional death hazard while producing (1/h)

	// integration window
	TPrior float64 // culture time before infection (h)
	TEnd   float64 // end of integration (h)
	Steps  int     // output points on [-TPrior, TEnd]

	// Onset is the ramp width for virus addition and drug action (h).
	// A hard step at t=0 or at a drug time would be non-smooth and
	// destabilize the adaptive step control.
	Onset float64

	// derived stage counts (recomputed by Derive, never set directly)
	NT, NEE, NER, NEI, NP int
}

// Default returns the reference parameter set with stage counts derived.
func Default() Params {
	p := Params{
		N:      3e5,
		TauT:   6.0,
		SigmaT: 3.0,
		S:      0.0,
		DD:     1e-3,

		Beta:           1e-2,
		V0:             1e-3,
		C:              0.1,
		OneDayDilution: false,

		TauEE:    6.0,
		SigmaEE:  3.0,
		DEE:      1e-3,
		FEE:      1e-3,
		EfavTime: 1e6,

		TauER:    6.0,
		SigmaER:  3.0,
		DER:      1e-3,
		FER:      1e-3,
		RaltTime: 1e6,

		TauEI:   6.0,
		SigmaEI: 3.0,
		DEI:     1e-3,
		FEI:     1e-3,

		DeathType: DeathExp,
		TauP:      6.0,
		SigmaP:    3.0,
		DP:        1e-3,

		TPrior: 24.0,
		TEnd:   7 * 24.0,
		Steps:  1000,
		Onset:  0.1,
	}
	derived, err := p.Derive()
	if err != nil {
		panic(err) // defaults are known-valid
	}
	return derived
}

// erlangStages converts a (mean, stddev) lifetime pair into the stage
// count of the Erlang chain matching both moments, and the stddev the
// chain actually realizes. Re-applying it to its own output is a fixed
// point: (tau/sigma')^2 is exactly the integer n.
func erlangStages(tau, sigma float64) (int, float64, error) {
	if tau <= 0 || sigma <= 0 {
		return 0, 0, fmt.Errorf("%w: tau=%g sigma=%g", ErrStagePair, tau, sigma)
	}
	ratio := tau / sigma
	n := int(math.Round(ratio * ratio))
	if n < 1 {
		n = 1
	}
	return n, math.Sqrt(tau * tau / float64(n)), nil
}

// Derive recomputes the stage counts and adjusted stddevs from the
// lifetime pairs. It must be called after any parameter edit; Apply
// does so. The receiver is unchanged.
func (p Params) Derive() (Params, error) {
	var err error
	if p.NT, p.SigmaT, err = erlangStages(p.TauT, p.SigmaT); err != nil {
		return p, fmt.Errorf("tauT: %w", err)
	}
	if p.NEE, p.SigmaEE, err = erlangStages(p.TauEE, p.SigmaEE); err != nil {
		return p, fmt.Errorf("tauEE: %w", err)
	}
	if p.NER, p.SigmaER, err = erlangStages(p.TauER, p.SigmaER); err != nil {
		return p, fmt.Errorf("tauER: %w", err)
	}
	if p.NEI, p.SigmaEI, err = erlangStages(p.TauEI, p.SigmaEI); err != nil {
		return p, fmt.Errorf("tauEI: %w", err)
	}
	switch p.DeathType {
	case DeathExp:
		// pure exponential sojourn, no distribution shaping
		if p.TauP <= 0 {
			return p, fmt.Errorf("tauP: %w: tau=%g", ErrStagePair, p.TauP)
		}
		p.NP = 1
		p.SigmaP = p.TauP
	case DeathGamma:
		if p.NP, p.SigmaP, err = erlangStages(p.TauP, p.SigmaP); err != nil {
			return p, fmt.Errorf("tauP: %w", err)
		}
	default:
		return p, fmt.Errorf("%w: got %q", ErrDeathType, p.DeathType)
	}
	return p, nil
}

// Layout returns the state vector layout for the derived stage counts.
func (p Params) Layout() Layout {
	return Layout{NT: p.NT, NEE: p.NEE, NER: p.NER, NEI: p.NEI, NP: p.NP}
}

// MaxSteps is the internal step budget for a run. The exponential mode
// gets a generous allowance; the gamma mode keeps the default.
func (p Params) MaxSteps() int {
	if p.DeathType == DeathExp {
		return 500000
	}
	return 100000
}
