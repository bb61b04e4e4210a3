package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/san-kum/stochlab/internal/config"
	"github.com/san-kum/stochlab/internal/logging"
	"github.com/san-kum/stochlab/internal/stochastic"
	"github.com/san-kum/stochlab/internal/tui"
	"github.com/san-kum/stochlab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	verbose  bool
	logFile  string
	rate     float64
	dt       float64
	duration float64
	seed     int64
	fps      int
	theme    string
	// Config file
	configFile string
	// Preset name
	preset string
	// run output
	liveView bool
	realtime bool
	jsonOut  bool
	// svg output
	outFile string
	braille bool
	// sweeps
	rateMin   float64
	rateMax   float64
	numSteps  int
	numTrials int
	// history
	historyLimit int
)

// main registers the commands and opens the interactive lab when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "stochlab",
		Short:        "stochastic process lab: coin flips and spike trains",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLab(cmd, args, false)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "log file (the lab never logs to the terminal)")
	addLabFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live [mode]",
		Short: "open the interactive lab",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLab(cmd, args, len(args) > 0)
		},
	}
	addLabFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run [mode]",
		Short: "run a headless simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&liveView, "live", false, "stream frames while running")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace --live output to the wall clock")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "write the run as JSON to stdout instead of saving it")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [mode]",
		Short: "run headless and write the final frame as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeSVG,
	}
	addRunFlags(svgCmd)
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "frame.svg", "output file")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "export the rasterised terminal canvas instead of vectors")

	historyCmd := &cobra.Command{
		Use:   "history [mode]",
		Short: "summarise indexed runs against theory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showHistory,
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of recent runs to show")

	presetsCmd := &cobra.Command{
		Use:   "presets [mode]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [mode]",
		Short: "compare observed and expected rates across the rate range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&rateMin, "min", stochastic.MinRate, "lowest rate")
	sweepCmd.Flags().Float64Var(&rateMax, "max", stochastic.MaxRate, "highest rate")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 10, "number of rates")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [mode]",
		Short: "repeat a run with consecutive seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(mcCmd)
	mcCmd.Flags().IntVar(&numTrials, "trials", 50, "number of trials")

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, exportCmd, historyCmd, svgCmd, presetsCmd, scenarioCmd, sweepCmd, mcCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&rate, "rate", config.DefaultRate, "rate control in [0.01, 0.99]")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func addLabFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, themeUsage())
}

func addRunFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate for --live")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, themeUsage())
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order. A mode argument overrides the mode from any file.
// Flag defaults match config.DefaultConfig, so only changed flags apply.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	var modeArg *stochastic.Mode
	if len(args) > 0 {
		m, err := stochastic.ParseMode(args[0])
		if err != nil {
			return nil, err
		}
		modeArg = &m
		cfg.Mode = m
	}

	if preset != "" {
		p, err := config.GetPreset(cfg.Mode, preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets(cfg.Mode))
		}
		cfg = p
	}

	if configFile != "" {
		fileCfg, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}
	if modeArg != nil {
		cfg.Mode = *modeArg
	}

	flags := cmd.Flags()
	if flags.Changed("rate") {
		cfg.Rate = rate
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.Display.FPS = fps
	}
	if flags.Changed("theme") {
		cfg.Display.Theme = theme
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func themeUsage() string {
	return "colour theme (" + strings.Join(viz.ThemeNames(), ", ") + ")"
}

func newLogger() *slog.Logger {
	return logging.New(os.Stderr, verbose)
}

func runLab(cmd *cobra.Command, args []string, skipMenu bool) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	log := logging.Discard()
	if logFile != "" {
		l, closer, err := logging.OpenFile(logFile, verbose)
		if err != nil {
			return err
		}
		defer closer.Close()
		log = l
	}
	log.Info("lab start", "mode", cfg.Mode, "rate", cfg.Rate, "seed", cfg.Seed, "fps", cfg.Display.FPS)

	return tui.Run(tui.Options{
		Mode:     cfg.Mode,
		Rate:     cfg.Rate,
		Seed:     cfg.Seed,
		FPS:      cfg.Display.FPS,
		Theme:    cfg.Display.Theme,
		Refresh:  cfg.Display.Refresh,
		SkipMenu: skipMenu || configFile != "" || preset != "",
		Logger:   log,
	})
}

func listPresets(cmd *cobra.Command, args []string) error {
	modes := stochastic.Modes
	if len(args) > 0 {
		m, err := stochastic.ParseMode(args[0])
		if err != nil {
			return err
		}
		modes = []stochastic.Mode{m}
	}
	return printPresets(os.Stdout, modes)
}

func printPresets(w io.Writer, modes []stochastic.Mode) error {
	for _, m := range modes {
		fmt.Fprintf(w, "presets for %s:\n", m)
		for _, name := range config.ListPresets(m) {
			p, err := config.GetPreset(m, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %-10s rate=%.2f  time=%.0fs\n", name, p.Rate, p.Duration)
		}
	}
	return nil
}
