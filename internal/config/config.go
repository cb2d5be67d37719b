// Package config reads and writes parameter files. Files hold partial
// overrides: anything not named keeps its default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/virosim/internal/model"
)

// Load reads a yaml parameter file. Unknown keys are rejected so a
// typo'd parameter name cannot silently fall back to its default.
func Load(path string) (model.Overrides, error) {
	var o model.Overrides

	data, err := os.ReadFile(path)
	if err != nil {
		return o, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return model.Overrides{}, fmt.Errorf("config %s: %w", path, err)
	}
	return o, nil
}

// Save writes the full parameter set as an overrides file, so a run can
// be reproduced or edited.
func Save(path string, p model.Params) error {
	data, err := yaml.Marshal(Snapshot(p))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Snapshot captures every current value of p as a fully-set Overrides.
func Snapshot(p model.Params) model.Overrides {
	f := func(v float64) *float64 { return &v }
	b := func(v bool) *bool { return &v }
	s := func(v string) *string { return &v }
	i := func(v int) *int { return &v }

	return model.Overrides{
		N:      f(p.N),
		TauT:   f(p.TauT),
		SigmaT: f(p.SigmaT),
		S:      f(p.S),
		DD:     f(p.DD),

		Beta:           f(p.Beta),
		V0:             f(p.V0),
		C:              f(p.C),
		OneDayDilution: b(p.OneDayDilution),

		TauEE:    f(p.TauEE),
		SigmaEE:  f(p.SigmaEE),
		DEE:      f(p.DEE),
		FEE:      f(p.FEE),
		EfavTime: f(p.EfavTime),

		TauER:    f(p.TauER),
		SigmaER:  f(p.SigmaER),
		DER:      f(p.DER),
		FER:      f(p.FER),
		RaltTime: f(p.RaltTime),

		TauEI:   f(p.TauEI),
		SigmaEI: f(p.SigmaEI),
		DEI:     f(p.DEI),
		FEI:     f(p.FEI),

		DeathType: s(p.DeathType),
		TauP:      f(p.TauP),
		SigmaP:    f(p.SigmaP),
		DP:        f(p.DP),

		TPrior: f(p.TPrior),
		TEnd:   f(p.TEnd),
		Steps:  i(p.Steps),
	}
}
