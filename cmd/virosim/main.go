package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/virosim/internal/config"
	"github.com/san-kum/virosim/internal/export"
	"github.com/san-kum/virosim/internal/integrators"
	"github.com/san-kum/virosim/internal/metrics"
	"github.com/san-kum/virosim/internal/model"
	"github.com/san-kum/virosim/internal/report"
	"github.com/san-kum/virosim/internal/sim"
	"github.com/san-kum/virosim/internal/storage"
	"github.com/san-kum/virosim/internal/summary"
	"github.com/san-kum/virosim/internal/sweep"
)

var (
	dataDir    string
	configFile string
	saveRun    bool
	writePath  string
	outPrefix  string

	// one flag per public model parameter
	flagN, flagTauT, flagSigmaT, flagS, flagDD float64
	flagBeta, flagV0, flagC                    float64
	flagDilution                               bool
	flagTauEE, flagSigmaEE, flagDEE, flagFEE   float64
	flagTauER, flagSigmaER, flagDER, flagFER   float64
	flagTauEI, flagSigmaEI, flagDEI, flagFEI   float64
	flagEfavTime, flagRaltTime                 float64
	flagDeathType                              string
	flagTauP, flagSigmaP, flagDP               float64
	flagTPrior, flagTEnd                       float64
	flagSteps                                  int

	sweepName, sweepMetric string
	sweepMin, sweepMax     float64
	sweepPoints            int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "virosim",
		Short: "single-cycle HIV infection culture simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".virosim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the model and print the report",
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "parameter file path (yaml)")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "persist the run to the data directory")

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "list parameters with defaults and descriptions",
		RunE:  listParams,
	}
	paramsCmd.Flags().StringVar(&writePath, "write", "", "write defaults to a yaml parameter file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render a stored run to PNG charts",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVar(&outPrefix, "out", "run", "output file prefix")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-sweep one parameter and report the minimizing value",
		RunE:  sweepParam,
	}
	sweepCmd.Flags().StringVar(&sweepName, "param", "efavTime", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "lower bound of the sweep range")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 48, "upper bound of the sweep range")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 13, "number of grid points")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "peak_infected_fraction", "metric to minimize")
	sweepCmd.Flags().StringVar(&configFile, "config", "", "parameter file path (yaml)")

	rootCmd.AddCommand(runCmd, paramsCmd, listCmd, plotCmd, chartCmd, exportCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addParamFlags(cmd *cobra.Command) {
	defaults := model.Default()
	fl := cmd.Flags()
	for _, info := range defaults.Describe() {
		switch info.Name {
		case "N":
			fl.Float64Var(&flagN, "N", defaults.N, info.Desc)
		case "tauT":
			fl.Float64Var(&flagTauT, "tauT", defaults.TauT, info.Desc)
		case "sigmaT":
			fl.Float64Var(&flagSigmaT, "sigmaT", defaults.SigmaT, info.Desc)
		case "s":
			fl.Float64Var(&flagS, "s", defaults.S, info.Desc)
		case "dD":
			fl.Float64Var(&flagDD, "dD", defaults.DD, info.Desc)
		case "beta":
			fl.Float64Var(&flagBeta, "beta", defaults.Beta, info.Desc)
		case "V0":
			fl.Float64Var(&flagV0, "V0", defaults.V0, info.Desc)
		case "c":
			fl.Float64Var(&flagC, "c", defaults.C, info.Desc)
		case "onedaydilution":
			fl.BoolVar(&flagDilution, "onedaydilution", defaults.OneDayDilution, info.Desc)
		case "tauEE":
			fl.Float64Var(&flagTauEE, "tauEE", defaults.TauEE, info.Desc)
		case "sigmaEE":
			fl.Float64Var(&flagSigmaEE, "sigmaEE", defaults.SigmaEE, info.Desc)
		case "dEE":
			fl.Float64Var(&flagDEE, "dEE", defaults.DEE, info.Desc)
		case "fEE":
			fl.Float64Var(&flagFEE, "fEE", defaults.FEE, info.Desc)
		case "efavTime":
			fl.Float64Var(&flagEfavTime, "efavTime", defaults.EfavTime, info.Desc)
		case "tauER":
			fl.Float64Var(&flagTauER, "tauER", defaults.TauER, info.Desc)
		case "sigmaER":
			fl.Float64Var(&flagSigmaER, "sigmaER", defaults.SigmaER, info.Desc)
		case "dER":
			fl.Float64Var(&flagDER, "dER", defaults.DER, info.Desc)
		case "fER":
			fl.Float64Var(&flagFER, "fER", defaults.FER, info.Desc)
		case "raltTime":
			fl.Float64Var(&flagRaltTime, "raltTime", defaults.RaltTime, info.Desc)
		case "tauEI":
			fl.Float64Var(&flagTauEI, "tauEI", defaults.TauEI, info.Desc)
		case "sigmaEI":
			fl.Float64Var(&flagSigmaEI, "sigmaEI", defaults.SigmaEI, info.Desc)
		case "dEI":
			fl.Float64Var(&flagDEI, "dEI", defaults.DEI, info.Desc)
		case "fEI":
			fl.Float64Var(&flagFEI, "fEI", defaults.FEI, info.Desc)
		case "deathtype":
			fl.StringVar(&flagDeathType, "deathtype", defaults.DeathType, info.Desc)
		case "tauP":
			fl.Float64Var(&flagTauP, "tauP", defaults.TauP, info.Desc)
		case "sigmaP":
			fl.Float64Var(&flagSigmaP, "sigmaP", defaults.SigmaP, info.Desc)
		case "dP":
			fl.Float64Var(&flagDP, "dP", defaults.DP, info.Desc)
		case "tprior":
			fl.Float64Var(&flagTPrior, "tprior", defaults.TPrior, info.Desc)
		case "tend":
			fl.Float64Var(&flagTEnd, "tend", defaults.TEnd, info.Desc)
		case "steps":
			fl.IntVar(&flagSteps, "steps", defaults.Steps, info.Desc)
		}
	}
}

// flagOverrides collects only the flags the user actually set.
func flagOverrides(cmd *cobra.Command) model.Overrides {
	var o model.Overrides
	fl := cmd.Flags()

	setF := func(name string, v *float64, dst **float64) {
		if fl.Changed(name) {
			*dst = v
		}
	}

	setF("N", &flagN, &o.N)
	setF("tauT", &flagTauT, &o.TauT)
	setF("sigmaT", &flagSigmaT, &o.SigmaT)
	setF("s", &flagS, &o.S)
	setF("dD", &flagDD, &o.DD)
	setF("beta", &flagBeta, &o.Beta)
	setF("V0", &flagV0, &o.V0)
	setF("c", &flagC, &o.C)
	if fl.Changed("onedaydilution") {
		o.OneDayDilution = &flagDilution
	}
	setF("tauEE", &flagTauEE, &o.TauEE)
	setF("sigmaEE", &flagSigmaEE, &o.SigmaEE)
	setF("dEE", &flagDEE, &o.DEE)
	setF("fEE", &flagFEE, &o.FEE)
	setF("efavTime", &flagEfavTime, &o.EfavTime)
	setF("tauER", &flagTauER, &o.TauER)
	setF("sigmaER", &flagSigmaER, &o.SigmaER)
	setF("dER", &flagDER, &o.DER)
	setF("fER", &flagFER, &o.FER)
	setF("raltTime", &flagRaltTime, &o.RaltTime)
	setF("tauEI", &flagTauEI, &o.TauEI)
	setF("sigmaEI", &flagSigmaEI, &o.SigmaEI)
	setF("dEI", &flagDEI, &o.DEI)
	setF("fEI", &flagFEI, &o.FEI)
	if fl.Changed("deathtype") {
		o.DeathType = &flagDeathType
	}
	setF("tauP", &flagTauP, &o.TauP)
	setF("sigmaP", &flagSigmaP, &o.SigmaP)
	setF("dP", &flagDP, &o.DP)
	setF("tprior", &flagTPrior, &o.TPrior)
	setF("tend", &flagTEnd, &o.TEnd)
	if fl.Changed("steps") {
		o.Steps = &flagSteps
	}

	return o
}

func buildParams(cmd *cobra.Command) (model.Params, error) {
	p := model.Default()

	if configFile != "" {
		o, err := config.Load(configFile)
		if err != nil {
			return p, fmt.Errorf("failed to load config: %w", err)
		}
		if p, err = p.Apply(o); err != nil {
			return p, err
		}
	}

	// CLI flags override the config file
	return p.Apply(flagOverrides(cmd))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	p, err := buildParams(cmd)
	if err != nil {
		return err
	}

	infection := model.NewInfection(p)
	driver := sim.NewDriver(integrators.NewRK45())
	driver.MaxSteps = p.MaxSteps()

	times := model.TimeGrid(p)
	x0 := model.InitialState(p)

	start := time.Now()
	traj, err := driver.Evolve(context.Background(), infection, times, x0)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	rows, err := summary.Reduce(p.Layout(), traj)
	if err != nil {
		return err
	}

	if err := report.Write(os.Stdout, p, traj.Times, rows); err != nil {
		return err
	}

	observed := metrics.ObserveAll(traj,
		metrics.NewPeakInfectedFraction(p.Layout()),
		metrics.NewFinalDead(p.Layout()),
		metrics.NewMassDrift(),
	)

	fmt.Fprintf(os.Stderr, "completed in %v (%d internal steps)\n", elapsed, traj.Steps)
	for name, val := range observed {
		fmt.Fprintf(os.Stderr, "  %s: %.6g\n", name, val)
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(p, traj, rows, observed)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "run id: %s\n", runID)
	}

	return nil
}

func listParams(cmd *cobra.Command, args []string) error {
	p := model.Default()

	if writePath != "" {
		if err := config.Save(writePath, p); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", writePath)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDEFAULT\tDESCRIPTION")
	for _, info := range p.Describe() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, info.Value, info.Desc)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nderived equation numbers: nT=%d nEE=%d nER=%d nEI=%d nP=%d\n",
		p.NT, p.NEE, p.NER, p.NEI, p.NP)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDEATHTYPE\tnT\tnEE\tnER\tnEI\tnP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.DeathType,
			run.NT, run.NEE, run.NER, run.NEI, run.NP,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, rows, err := st.LoadSummary(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	series := []struct {
		caption string
		pick    func(summary.Row) float64
	}{
		{"total cells", func(r summary.Row) float64 { return r.Total }},
		{"dead cells", func(r summary.Row) float64 { return r.Dead }},
		{"infected fraction", func(r summary.Row) float64 { return r.FracInfected }},
		{"dead fraction of infected", func(r summary.Row) float64 { return r.DeadFracOfInfected }},
	}

	fmt.Printf("run: %s  (t = %g .. %g h, %d points)\n\n",
		args[0], times[0], times[len(times)-1], len(times))

	for _, sr := range series {
		data := make([]float64, len(rows))
		for i, row := range rows {
			data[i] = sr.pick(row)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, rows, err := st.LoadSummary(args[0])
	if err != nil {
		return err
	}

	popPath := outPrefix + "_population.png"
	fracPath := outPrefix + "_fractions.png"

	if err := export.PopulationPNG(popPath, times, rows); err != nil {
		return err
	}
	if err := export.FractionPNG(fracPath, times, rows); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s\n", popPath, fracPath)
	return nil
}

func sweepParam(cmd *cobra.Command, args []string) error {
	base := model.Default()
	if configFile != "" {
		o, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if base, err = base.Apply(o); err != nil {
			return err
		}
	}

	grid, err := sweep.New(
		[]string{sweepName},
		[][]float64{sweep.Linspace(sweepMin, sweepMax, sweepPoints)},
	)
	if err != nil {
		return err
	}

	eval := func(ctx context.Context, point map[string]float64) (map[string]float64, error) {
		var o model.Overrides
		for name, v := range point {
			if err := o.Set(name, v); err != nil {
				return nil, err
			}
		}
		p, err := base.Apply(o)
		if err != nil {
			return nil, err
		}

		driver := sim.NewDriver(integrators.NewRK45())
		driver.MaxSteps = p.MaxSteps()
		traj, err := driver.Evolve(ctx, model.NewInfection(p), model.TimeGrid(p), model.InitialState(p))
		if err != nil {
			return nil, err
		}

		observed := metrics.ObserveAll(traj,
			metrics.NewPeakInfectedFraction(p.Layout()),
			metrics.NewFinalDead(p.Layout()),
			metrics.NewMassDrift(),
		)
		fmt.Fprintf(os.Stderr, "  %s=%g  %s=%.6g\n", sweepName, point[sweepName], sweepMetric, observed[sweepMetric])
		return observed, nil
	}

	res, err := grid.Minimize(context.Background(), eval, sweepMetric)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d points\n", res.Evaluated)
	fmt.Printf("best %s = %g  (%s = %.6g)\n", sweepName, res.Params[sweepName], sweepMetric, res.Value)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
