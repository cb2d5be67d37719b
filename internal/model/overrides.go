package model

import "fmt"

// Overrides is a partial update of Params: one optional field per
// recognized parameter. Nil fields leave the current value alone.
// Unknown names never reach this type; the CLI flag set and the strict
// yaml decoder reject them at the boundary.
type Overrides struct {
	N      *float64 `yaml:"N"`
	TauT   *float64 `yaml:"tauT"`
	SigmaT *float64 `yaml:"sigmaT"`
	S      *float64 `yaml:"s"`
	DD     *float64 `yaml:"dD"`

	Beta           *float64 `yaml:"beta"`
	V0             *float64 `yaml:"V0"`
	C              *float64 `yaml:"c"`
	OneDayDilution *bool    `yaml:"onedaydilution"`

	TauEE    *float64 `yaml:"tauEE"`
	SigmaEE  *float64 `yaml:"sigmaEE"`
	DEE      *float64 `yaml:"dEE"`
	FEE      *float64 `yaml:"fEE"`
	EfavTime *float64 `yaml:"efavTime"`

	TauER    *float64 `yaml:"tauER"`
	SigmaER  *float64 `yaml:"sigmaER"`
	DER      *float64 `yaml:"dER"`
	FER      *float64 `yaml:"fER"`
	RaltTime *float64 `yaml:"raltTime"`

	TauEI   *float64 `yaml:"tauEI"`
	SigmaEI *float64 `yaml:"sigmaEI"`
	DEI     *float64 `yaml:"dEI"`
	FEI     *float64 `yaml:"fEI"`

	DeathType *string  `yaml:"deathtype"`
	TauP      *float64 `yaml:"tauP"`
	SigmaP    *float64 `yaml:"sigmaP"`
	DP        *float64 `yaml:"dP"`

	TPrior *float64 `yaml:"tprior"`
	TEnd   *float64 `yaml:"tend"`
	Steps  *int     `yaml:"steps"`
}

// Set assigns one numeric parameter by its external name. Sweeps build
// their overrides this way; deathtype and onedaydilution are not
// numeric and cannot be swept.
func (o *Overrides) Set(name string, v float64) error {
	fields := map[string]**float64{
		"N": &o.N, "tauT": &o.TauT, "sigmaT": &o.SigmaT, "s": &o.S, "dD": &o.DD,
		"beta": &o.Beta, "V0": &o.V0, "c": &o.C,
		"tauEE": &o.TauEE, "sigmaEE": &o.SigmaEE, "dEE": &o.DEE, "fEE": &o.FEE, "efavTime": &o.EfavTime,
		"tauER": &o.TauER, "sigmaER": &o.SigmaER, "dER": &o.DER, "fER": &o.FER, "raltTime": &o.RaltTime,
		"tauEI": &o.TauEI, "sigmaEI": &o.SigmaEI, "dEI": &o.DEI, "fEI": &o.FEI,
		"tauP": &o.TauP, "sigmaP": &o.SigmaP, "dP": &o.DP,
		"tprior": &o.TPrior, "tend": &o.TEnd,
	}
	if name == "steps" {
		n := int(v)
		o.Steps = &n
		return nil
	}
	dst, ok := fields[name]
	if !ok {
		return fmt.Errorf("model: %q is not a sweepable parameter", name)
	}
	val := v
	*dst = &val
	return nil
}

// Apply returns a copy of p with the set fields replaced and the stage
// counts re-derived. The receiver is unchanged; an invalid override
// (bad deathtype, non-positive lifetime pair) is a configuration error
// and no run may proceed with it.
func (p Params) Apply(o Overrides) (Params, error) {
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}

	setF(&p.N, o.N)
	setF(&p.TauT, o.TauT)
	setF(&p.SigmaT, o.SigmaT)
	setF(&p.S, o.S)
	setF(&p.DD, o.DD)

	setF(&p.Beta, o.Beta)
	setF(&p.V0, o.V0)
	setF(&p.C, o.C)
	if o.OneDayDilution != nil {
		p.OneDayDilution = *o.OneDayDilution
	}

	setF(&p.TauEE, o.TauEE)
	setF(&p.SigmaEE, o.SigmaEE)
	setF(&p.DEE, o.DEE)
	setF(&p.FEE, o.FEE)
	setF(&p.EfavTime, o.EfavTime)

	setF(&p.TauER, o.TauER)
	setF(&p.SigmaER, o.SigmaER)
	setF(&p.DER, o.DER)
	setF(&p.FER, o.FER)
	setF(&p.RaltTime, o.RaltTime)

	setF(&p.TauEI, o.TauEI)
	setF(&p.SigmaEI, o.SigmaEI)
	setF(&p.DEI, o.DEI)
	setF(&p.FEI, o.FEI)

	if o.DeathType != nil {
		p.DeathType = *o.DeathType
	}
	setF(&p.TauP, o.TauP)
	setF(&p.SigmaP, o.SigmaP)
	setF(&p.DP, o.DP)

	setF(&p.TPrior, o.TPrior)
	setF(&p.TEnd, o.TEnd)
	if o.Steps != nil {
		p.Steps = *o.Steps
	}

	return p.Derive()
}
