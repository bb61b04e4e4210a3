package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stochlab/internal/automation"
	"github.com/san-kum/stochlab/internal/stochastic"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}

	results, err := automation.RunScenario(cmd.Context(), sc, newLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODE\tRATE\tSTEPS\tEVENTS\tWINDOW")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%d\t%s\n", i+1, res.Mode, res.Rate, res.Steps, len(res.Events), res.Final)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	sweep := &automation.RateSweep{
		Mode:     cfg.Mode,
		RateMin:  rateMin,
		RateMax:  rateMax,
		NumSteps: numSteps,
		Duration: cfg.Duration,
		Dt:       cfg.Dt,
		Seed:     cfg.Seed,
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, newLogger())
	if err != nil {
		return err
	}

	unit := "p"
	if cfg.Mode == stochastic.Poisson {
		unit = "Hz"
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RATE\tEXPECTED (%s)\tOBSERVED (%s)\tERROR\tEVENTS\n", unit, unit)
	expected := make([]float64, len(results))
	observed := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%.2f\t%.4f\t%.4f\t%.4f\t%d\n", r.Rate, r.Expected, r.Observed, r.AbsError(), r.Events)
		expected[i] = r.Expected
		observed[i] = r.Observed
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(results) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.PlotMany([][]float64{expected, observed},
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.SeriesColors(asciigraph.Yellow, asciigraph.Green),
			asciigraph.SeriesLegends("expected", "observed"),
			asciigraph.Caption(fmt.Sprintf("%s sweep %.2f..%.2f", cfg.Mode, rateMin, rateMax)),
		))
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{
		Mode:      cfg.Mode,
		Rate:      cfg.Rate,
		NumTrials: numTrials,
		Duration:  cfg.Duration,
		Dt:        cfg.Dt,
		Seed:      cfg.Seed,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc, newLogger())
	if err != nil {
		return err
	}

	mean, sd := automation.MonteCarloStats(results)
	expected := automation.Expected(cfg.Mode, cfg.Rate)
	fmt.Printf("trials: %d  mode: %s  rate: %.2f\n", len(results), cfg.Mode, cfg.Rate)
	fmt.Printf("expected: %.4f\n", expected)
	fmt.Printf("observed: %.4f ± %.4f\n", mean, sd)

	if len(results) > 1 {
		estimates := make([]float64, len(results))
		for i, r := range results {
			estimates[i] = r.Observed
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(estimates,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("estimate per trial"),
		))
	}
	return nil
}
