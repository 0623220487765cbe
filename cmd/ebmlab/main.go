package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/ebmlab/internal/config"
	"github.com/san-kum/ebmlab/internal/driver"
	"github.com/san-kum/ebmlab/internal/ebm"
	"github.com/san-kum/ebmlab/internal/metrics"
	"github.com/san-kum/ebmlab/internal/server"
	"github.com/san-kum/ebmlab/internal/storage"
	"github.com/san-kum/ebmlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	bands      int
	simTime    float64
	solarScale float64
	greenhouse float64
	frameRate  int
	sweepFloor float64
	sweepStep  float64
	addr       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ebmlab",
		Short: "interactive latitudinal energy-balance climate model",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the live TUI when no command is given.
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ebmlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "scenario preset")
	rootCmd.PersistentFlags().IntVar(&bands, "bands", 0, "latitude band count (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&solarScale, "solar", 0, "solar scale (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&greenhouse, "greenhouse", 0, "greenhouse setting (overrides config)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run to equilibrium and save the result",
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&simTime, "time", 500.0, "maximum simulated time")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal visualization",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solar hysteresis sweep (down then back up)",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepFloor, "floor", 0.85, "lowest solar scale")
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 0.025, "solar scale step")
	sweepCmd.Flags().Float64Var(&simTime, "time", 500.0, "maximum simulated time per setting")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run's time series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	profileCmd := &cobra.Command{
		Use:   "profile [run_id]",
		Short: "plot a saved run's final latitude profile",
		Args:  cobra.ExactArgs(1),
		RunE:  plotProfile,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSONStdout(args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's time series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("  %-12s solar=%.2f greenhouse=%+.2f\n", name, p.SolarScale, p.Greenhouse)
			}
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "push snapshots to websocket clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return server.New(addr, cfg).Serve()
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8089", "listen address")

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, plotCmd, profileCmd, listCmd,
		exportJSONCmd, exportCSVCmd, presetsCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// resolveConfig layers preset, config file, and explicit flags, in
// rising precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("bands") {
		cfg.Bands = bands
	}
	if cmd.Flags().Changed("solar") {
		cfg.SolarScale = solarScale
	}
	if cmd.Flags().Changed("greenhouse") {
		cfg.Greenhouse = greenhouse
	}
	return cfg, cfg.Validate()
}

func newLoop(cfg *config.Config) (*driver.Loop, error) {
	loop, err := driver.New(cfg.Bands, cfg.Physics, cfg.DriverConfig())
	if err != nil {
		return nil, err
	}
	if cfg.SolarScale != 1.0 {
		loop.SetSolarScale(cfg.SolarScale)
	}
	if cfg.Greenhouse != 0 {
		loop.SetGreenhouse(cfg.Greenhouse)
	}
	return loop, nil
}

// settleBatch integrates in coarse chunks until the net flux has stayed
// inside tol for several consecutive samples, or maxTime elapses. It
// returns the simulated time spent.
func settleBatch(e *ebm.Engine, tol, maxTime float64, sample func(*ebm.Engine)) float64 {
	const chunk = 0.5
	start := e.Time()
	inBand := 0
	for e.Time()-start < maxTime {
		e.Advance(chunk)
		if sample != nil {
			sample(e)
		}
		if math.Abs(e.GlobalMeanNetFlux()) < tol {
			inBand++
			if inBand >= 5 {
				break
			}
		} else {
			inBand = 0
		}
	}
	return e.Time() - start
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	loop, err := newLoop(cfg)
	if err != nil {
		return err
	}

	scenario := preset
	if scenario == "" {
		scenario = "custom"
	}

	ms := []metrics.Metric{metrics.NewIceEdge(), metrics.NewDrift(), metrics.NewNetFlux()}
	iceEdge := ms[0]

	series := make([]storage.Sample, 0, 1024)
	sample := func(e *ebm.Engine) {
		snap := loop.Snapshot()
		for _, m := range ms {
			m.Observe(snap)
		}
		series = append(series, storage.Sample{
			Time:     snap.Time,
			MeanTemp: snap.MeanTemp,
			NetFlux:  snap.NetFlux,
			IceEdge:  iceEdge.Value(),
		})
	}

	fmt.Printf("running %s scenario...\n", scenario)
	start := time.Now()
	elapsed := settleBatch(loop.Engine(), cfg.Equilibrium.FluxThreshold, simTime, sample)

	results := make(map[string]float64, len(ms))
	for _, m := range ms {
		results[m.Name()] = m.Value()
	}

	runID, err := st.Save(storage.RunMetadata{
		Scenario:   scenario,
		Bands:      cfg.Bands,
		Duration:   elapsed,
		SolarScale: cfg.SolarScale,
		Greenhouse: cfg.Greenhouse,
		Params:     cfg.Physics,
		Metrics:    results,
	}, series, loop.Snapshot())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (simulated %.1f)\n", time.Since(start).Round(time.Millisecond), elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("mean temperature: %.2f °C\n", loop.Engine().GlobalMeanTemp())
	fmt.Println("\nmetrics:")
	for name, val := range results {
		fmt.Printf("  %s: %.4f\n", name, val)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	loop, err := newLoop(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(loop, frameRate)
	_, err = tea.NewProgram(m).Run()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	loop, err := newLoop(cfg)
	if err != nil {
		return err
	}

	type point struct {
		direction string
		scale     float64
		meanTemp  float64
	}
	var points []point

	visit := func(direction string, scale float64) {
		loop.SetSolarScale(scale)
		settleBatch(loop.Engine(), cfg.Equilibrium.FluxThreshold, simTime, nil)
		points = append(points, point{direction, scale, loop.Engine().GlobalMeanTemp()})
	}

	// The same engine carries its temperature field between settings, so
	// the up branch remembers the frozen state: that memory is the
	// hysteresis being demonstrated.
	for scale := 1.0; scale >= sweepFloor-1e-9; scale -= sweepStep {
		visit("down", scale)
	}
	for scale := sweepFloor + sweepStep; scale <= 1.05+1e-9; scale += sweepStep {
		visit("up", scale)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIRECTION\tSOLAR\tMEAN TEMP")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.3f\t%.2f\n", p.direction, p.scale, p.meanTemp)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\nscenario: %s\nsamples: %d\n\n", meta.ID, meta.Scenario, len(series))

	temps := make([]float64, len(series))
	fluxes := make([]float64, len(series))
	for i, p := range series {
		temps[i] = p.MeanTemp
		fluxes[i] = p.NetFlux
	}

	fmt.Println(asciigraph.Plot(temps,
		asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption("global mean temperature (°C)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(fluxes,
		asciigraph.Height(10), asciigraph.Width(80),
		asciigraph.Caption("global mean net flux (W/m²)")))
	return nil
}

func plotProfile(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	cols, err := st.LoadProfile(args[0])
	if err != nil {
		return err
	}
	temps := cols["temp"]
	if len(temps) == 0 {
		return fmt.Errorf("no profile data")
	}

	fmt.Println(asciigraph.Plot(temps,
		asciigraph.Height(12), asciigraph.Width(80),
		asciigraph.Caption("final temperature by latitude (south → north)")))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tBANDS\tSOLAR\tGREENHOUSE\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%+.2f\t%.1f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bands,
			run.SolarScale,
			run.Greenhouse,
			run.Duration,
		)
	}
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	series, err := storage.New(dataDir).LoadSeries(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "mean_temp", "net_flux", "ice_edge"}); err != nil {
		return err
	}
	for _, p := range series {
		row := []string{
			strconv.FormatFloat(p.Time, 'f', 6, 64),
			strconv.FormatFloat(p.MeanTemp, 'f', 6, 64),
			strconv.FormatFloat(p.NetFlux, 'f', 6, 64),
			strconv.FormatFloat(p.IceEdge, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
