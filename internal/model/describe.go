package model

import (
	"fmt"
	"sort"
)

// ParamInfo is one public parameter: its external name, formatted
// current value, and help text.
type ParamInfo struct {
	Name  string
	Value string
	Desc  string
}

// Describe lists every public parameter sorted by name, for the report
// header and the params command.
func (p Params) Describe() []ParamInfo {
	f := func(v float64) string { return fmt.Sprintf("%g", v) }
	dilution := "0"
	if p.OneDayDilution {
		dilution = "1"
	}
	infos := []ParamInfo{
		{"N", f(p.N), "Initial culture population size (at t = -tprior) (cells)"},
		{"tauT", f(p.TauT), "Lifespan of uninfected, average (h)"},
		{"sigmaT", f(p.SigmaT), "Lifespan of uninfected, StdDev (h)"},
		{"s", f(p.S), "Exponential rate of growth of T cells (1/h)"},
		{"dD", f(p.DD), "Exponential rate of dead cell disintegration (1/h)"},
		{"beta", f(p.Beta), "Rate constant for infection (1/[V]/h)"},
		{"V0", f(p.V0), "Initial value of virus (virus added at t=0) ([V])"},
		{"c", f(p.C), "Virus decay (clearance) rate (1/h)"},
		{"onedaydilution", dilution, "Virus conc reduced at 24h by media dilution (0/1)"},
		{"tauEE", f(p.TauEE), "Eclipse phase EE (fusion through RT), average (h)"},
		{"sigmaEE", f(p.SigmaEE), "Eclipse phase EE (fusion through RT), StdDev (h)"},
		{"dEE", f(p.DEE), "Infection-induced death rate in the EE phase (1/h)"},
		{"fEE", f(p.FEE), "Infection failure rate within the EE phase (1/h)"},
		{"efavTime", f(p.EfavTime), "Time of efavirenz (reverse transcriptase) action (h)"},
		{"tauER", f(p.TauER), "Eclipse phase ER (RT through integration), average (h)"},
		{"sigmaER", f(p.SigmaER), "Eclipse phase ER (RT through integration), StdDev (h)"},
		{"dER", f(p.DER), "Infection-induced death rate in the ER phase (1/h)"},
		{"fER", f(p.FER), "Infection failure rate within the ER phase (1/h)"},
		{"raltTime", f(p.RaltTime), "Time of raltegravir (integrase) action (h)"},
		{"tauEI", f(p.TauEI), "Eclipse phase EI (integration through production), average (h)"},
		{"sigmaEI", f(p.SigmaEI), "Eclipse phase EI (integration through production), StdDev (h)"},
		{"dEI", f(p.DEI), "Infection-induced death rate in the EI phase (1/h)"},
		{"fEI", f(p.FEI), "Infection failure rate within the EI phase (1/h)"},
		{"deathtype", p.DeathType, "Type of infected cell death (exp or gamma)"},
		{"tauP", f(p.TauP), "Productive phase (viral production through death), average (h)"},
		{"sigmaP", f(p.SigmaP), "Productive phase (viral production through death), StdDev (h)"},
		{"dP", f(p.DP), "Additional death hazard in the productive phase (1/h)"},
		{"tprior", f(p.TPrior), "Culture isolation time prior to infection (h)"},
		{"tend", f(p.TEnd), "End time of numerical integration (h)"},
		{"steps", fmt.Sprintf("%d", p.Steps), "Number of output timesteps in [-tprior, tend]"},
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
