package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/analysis"
	"github.com/san-kum/etrack/internal/automation"
	"github.com/san-kum/etrack/internal/config"
	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/experiment"
	"github.com/san-kum/etrack/internal/optim"
	"github.com/san-kum/etrack/internal/physics"
	"github.com/san-kum/etrack/internal/report"
	"github.com/san-kum/etrack/internal/storage"
)

var (
	dataDir string
	verbose bool
	// Config file and preset
	configFile string
	preset     string
	// Solver overrides
	kind      string
	method    string
	cfl       float64
	tolerance float64
	rotations float64
	energyKeV float64
	// Particle and start overrides
	speed      float64
	kineticKeV float64
	tau        float64
	larmor     bool
	bfield     []float64
	// Run options
	planar  bool
	noSave  bool
	compare bool
	// Sweep options
	count    int
	thetaMin float64
	thetaMax float64
	workers  int
	// Analytic and export
	samples int
	outPath string
	// Parameter scan
	param    string
	paramMin float64
	paramMax float64
	steps    int
	// Convergence
	methods []string
	cfls    []float64
	target  float64
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("etrack: ")

	rootCmd := &cobra.Command{
		Use:          "etrack",
		Short:        "electron tracking in magnetic fields",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".etrack", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-run details")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "track one particle",
		Args:  cobra.NoArgs,
		RunE:  runTrack,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&planar, "planar", false, "solve the planar radiating equation")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&compare, "compare", false, "compare against the analytic solution")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "trace electrons over a range of launch angles",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&count, "count", 8, "number of angles")
	sweepCmd.Flags().Float64Var(&thetaMin, "theta-min", 0, "first angle [rad]")
	sweepCmd.Flags().Float64Var(&thetaMax, "theta-max", math.Pi/2, "last angle [rad]")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent traces (0 = GOMAXPROCS)")

	analyticCmd := &cobra.Command{
		Use:   "analytic",
		Short: "evaluate the closed-form solution in a uniform field",
		Args:  cobra.NoArgs,
		RunE:  runAnalytic,
	}
	addConfigFlags(analyticCmd)
	analyticCmd.Flags().IntVar(&samples, "samples", 1000, "number of samples")
	analyticCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the samples as JSON")

	omegaCmd := &cobra.Command{
		Use:   "omega [bz | bx by bz]",
		Short: "cyclotron frequency of an electron",
		Args:  cobra.RangeArgs(1, 3),
		RunE:  runOmega,
	}
	omegaCmd.Flags().Float64Var(&energyKeV, "kev", 0, "kinetic energy shift [keV]")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "gyro-frequency and decay analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets, models, methods and fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.List("presets", config.ListPresets()))
			fmt.Fprintln(out, report.List("models", reg.ListModels()))
			fmt.Fprintln(out, report.List("methods", reg.ListMethods()))
			fmt.Fprintln(out, report.List("fields", reg.ListFields()))
			return nil
		},
	}

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "measure analytic deviation against cfl per method",
		Args:  cobra.NoArgs,
		RunE:  runConverge,
	}
	addConfigFlags(convergeCmd)
	convergeCmd.Flags().StringSliceVar(&methods, "methods", []string{"boris", "rk4", "rk45"}, "methods to compare")
	convergeCmd.Flags().Float64SliceVar(&cfls, "cfls", []float64{0.2, 0.1, 0.05, 0.025}, "cfl values")
	convergeCmd.Flags().Float64Var(&target, "target", 1e-4, "acceptable relative velocity deviation")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "repeat a run over a range of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}
	addConfigFlags(scanCmd)
	scanCmd.Flags().StringVar(&param, "param", automation.ParamCFL, "parameter: cfl, rotations, speed, tau, bz or kev")
	scanCmd.Flags().Float64Var(&paramMin, "min", 1e-3, "first value")
	scanCmd.Flags().Float64Var(&paramMax, "max", 1e-1, "last value")
	scanCmd.Flags().IntVar(&steps, "steps", 5, "number of values")

	rootCmd.AddCommand(runCmd, sweepCmd, analyticCmd, omegaCmd, listCmd, analyzeCmd, exportJSONCmd, presetsCmd, convergeCmd, scenarioCmd, scanCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Print(err)
		stop()
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&kind, "kind", "lorentz", "equation of motion")
	cmd.Flags().StringVar(&method, "method", "boris", "integration method")
	cmd.Flags().Float64Var(&cfl, "cfl", 1e-3, "rotation angle per step [rad]")
	cmd.Flags().Float64Var(&tolerance, "tol", 1e-9, "rk45 error tolerance")
	cmd.Flags().Float64Var(&rotations, "rotations", 1, "gyro-orbits to follow")
	cmd.Flags().Float64Var(&energyKeV, "kev", 0, "energy shift of the mass [keV]")
	cmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "initial speed [m/s]")
	cmd.Flags().Float64Var(&kineticKeV, "kinetic", 0, "initial kinetic energy [keV], overrides --speed")
	cmd.Flags().Float64Var(&tau, "tau", 0, "radiation time constant [s]")
	cmd.Flags().BoolVar(&larmor, "larmor", false, "use the classical Larmor tau")
	cmd.Flags().Float64SliceVar(&bfield, "b", []float64{0, 0, 1}, "uniform or background field [T]")
}

// loadConfig layers defaults, the preset, the config file and explicitly set
// flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("kind") {
		cfg.Solver.Kind = kind
	}
	if flags.Changed("method") {
		cfg.Solver.Method = method
	}
	if flags.Changed("cfl") {
		cfg.Solver.CFL = cfl
	}
	if flags.Changed("tol") {
		cfg.Solver.Tolerance = tolerance
	}
	if flags.Changed("rotations") {
		cfg.Solver.Rotations = rotations
	}
	if flags.Changed("kev") {
		cfg.Solver.EnergyKeV = energyKeV
	}
	if flags.Changed("speed") {
		cfg.Init.Speed = speed
		cfg.Init.KineticKeV = 0
	}
	if flags.Changed("kinetic") {
		cfg.Init.KineticKeV = kineticKeV
	}
	if flags.Changed("tau") {
		cfg.Particle.Tau = tau
	}
	if flags.Changed("larmor") {
		cfg.Particle.LarmorTau = larmor
	}
	if flags.Changed("b") {
		cfg.Field.B = bfield
	}
	if f := flags.Lookup("count"); f != nil && f.Changed {
		cfg.Sweep.Count = count
	}
	if f := flags.Lookup("theta-min"); f != nil && f.Changed {
		cfg.Sweep.ThetaMin = thetaMin
	}
	if f := flags.Lookup("theta-max"); f != nil && f.Changed {
		cfg.Sweep.ThetaMax = thetaMax
	}
	if f := flags.Lookup("workers"); f != nil && f.Changed {
		cfg.Sweep.Workers = workers
	}

	return cfg, cfg.Validate()
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	if verbose {
		log.Printf("running %s/%s in a %s field, %g rotations at cfl %g",
			cfg.Solver.Kind, cfg.Solver.Method, cfg.Field.Type, cfg.Solver.Rotations, cfg.Solver.CFL)
	}
	start := time.Now()

	var tr *dynamo.Trajectory
	if planar {
		tr, err = exp.RunPlanar()
	} else {
		tr, err = exp.Run()
	}
	if err != nil {
		return err
	}

	if verbose {
		log.Printf("completed %d steps in %v", tr.Steps, time.Since(start))
	}

	var dev *analysis.Deviation
	if compare && !planar {
		ref, err := exp.Reference(tr)
		if err != nil {
			return err
		}
		d, err := analysis.CompareAnalytic(tr, ref)
		if err != nil {
			return err
		}
		dev = &d
	}

	title := cfg.Solver.Kind + " / " + cfg.Solver.Method
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, tr)
		if err != nil {
			return err
		}
		title = runID
		if verbose {
			log.Printf("stored run %s in %s", runID, dataDir)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Summary(title, tr, dev))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	if verbose {
		log.Printf("sweeping %d angles over [%g, %g]", cfg.Sweep.Count, cfg.Sweep.ThetaMin, cfg.Sweep.ThetaMax)
	}
	start := time.Now()

	angles, trs, err := exp.Sweep(cmd.Context())
	if err != nil {
		return err
	}

	if verbose {
		log.Printf("sweep finished in %v", time.Since(start))
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Sweep(angles, trs))
	return nil
}

func runAnalytic(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Field.Type != config.FieldUniform {
		return fmt.Errorf("analytic solutions need a uniform field, got %s", cfg.Field.Type)
	}
	if samples < 2 {
		return fmt.Errorf("need at least 2 samples, got %d", samples)
	}

	k := cfg.Kind()
	p := cfg.BuildParticle()
	if !k.Radiating() {
		p.Tau = 0
	}
	b := experiment.Vector(cfg.Field.B)
	v := cfg.InitialSpeed()

	omega := r3.Norm(physics.OmegaVec(b, p.Charge, p.Mass, cfg.Solver.EnergyKeV))
	if k.Relativistic() {
		omega = r3.Norm(physics.OmegaVec(b, p.Charge, p.Mass, 0)) / physics.GammaFromV(r3.Vec{Y: v})
	}
	if omega == 0 {
		return dynamo.ErrZeroField
	}
	tEnd := cfg.Solver.Rotations * 2 * math.Pi / omega
	times := floats.Span(make([]float64, samples), 0, tEnd)

	tr, err := physics.AnalyticSolution(times, b, r3.Vec{X: 1}, r3.Vec{Y: v}, p,
		physics.AnalyticOptions{Relativistic: k.Relativistic(), EnergyKeV: cfg.Solver.EnergyKeV})
	if err != nil {
		return err
	}
	tr.StepSize = times[1] - times[0]

	if outPath != "" {
		meta := storage.RunMetadata{Model: cfg.Solver.Kind, Method: "analytic", Field: cfg.Field.Type}
		if err := storage.ExportJSON(outPath, meta, tr); err != nil {
			return err
		}
		if verbose {
			log.Printf("wrote %d samples to %s", tr.Len(), outPath)
		}
	}

	tr.Observe(experiment.NewRegistry().DefaultMetrics(p)...)
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary("analytic "+cfg.Solver.Kind, tr, nil))
	return nil
}

func runOmega(cmd *cobra.Command, args []string) error {
	b := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("field component %q: %w", a, err)
		}
		b[i] = v
	}

	p := physics.Electron()
	omega, err := physics.CalculateOmega(b, p.Charge, p.Mass, energyKeV)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "omega [rad/s]: %.9g %.9g %.9g\n", omega.X, omega.Y, omega.Z)
	if n := r3.Norm(omega); n > 0 {
		fmt.Fprintf(out, "frequency [Hz]: %.9g\n", n/(2*math.Pi))
		fmt.Fprintf(out, "period [s]: %.9g\n", 2*math.Pi/n)
	}
	fmt.Fprintf(out, "larmor tau [s]: %.9g\n", physics.LarmorTau(p.Charge, p.Mass))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Runs(runs))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "gyro analysis: %s\n", args[0])

	omega, err := analysis.GyroFrequency(tr)
	if err != nil {
		fmt.Fprintf(out, "gyro frequency: %v\n", err)
	} else {
		fmt.Fprintf(out, "gyro frequency: %.6g rad/s\n", omega)
		fmt.Fprintf(out, "period: %.6g s\n", 2*math.Pi/math.Abs(omega))
	}

	b := experiment.Vector(cfg.Field.B)
	if r3.Norm(b) == 0 {
		b = r3.Vec{Z: 1}
	}
	if rate, err := analysis.DecayRate(tr, b); err == nil {
		fmt.Fprintf(out, "perpendicular decay rate: %.6g 1/s\n", rate)
	}

	vx := make([]float64, tr.Len())
	for i, v := range tr.Velocities {
		vx[i] = v.X
	}
	power := analysis.PowerSpectrum(vx)
	if verbose && len(power) > 0 {
		log.Printf("spectrum has %d bins, peak power %.3g", len(power), floats.Max(power))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.EncodeJSON(cmd.OutOrStdout(), *meta, tr)
	}
	if err := storage.ExportJSON(outPath, *meta, tr); err != nil {
		return err
	}
	if verbose {
		log.Printf("exported %s to %s", args[0], outPath)
	}
	return nil
}

func runConverge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	ctx := cmd.Context()
	points, err := optim.Convergence(ctx, cfg, reg, methods, cfls)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, report.Convergence(points, target))
	for _, m := range methods {
		if k, err := optim.Order(points, m); err == nil {
			fmt.Fprintf(out, "%s order: %.2f\n", m, k)
		}
	}

	best, err := optim.CheapestCFL(ctx, cfg, reg, methods, cfls, target)
	if err != nil {
		fmt.Fprintf(out, "cheapest: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "cheapest: %s at cfl %g (%d steps)\n", best.Method, best.CFL, best.Steps)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	if verbose {
		log.Printf("scenario %q: %d steps", sc.Name, len(sc.Steps))
	}

	results, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), st)
	out := cmd.OutOrStdout()
	for _, r := range results {
		title := fmt.Sprintf("step %d", r.Step)
		if r.RunID != "" {
			title += " (" + r.RunID + ")"
		}
		fmt.Fprintln(out, report.Summary(title, r.Trajectory, nil))
	}
	return err
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: param,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  steps,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%s=%-12.6g steps=%-8d ke_drift=%-12.3g radiated=%.3g\n",
			param, r.ParamValue, r.Steps, r.Metrics["kinetic_energy_drift"], r.Metrics["radiated_energy"])
	}
	return nil
}
