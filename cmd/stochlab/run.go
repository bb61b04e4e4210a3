package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stochlab/internal/automation"
	"github.com/san-kum/stochlab/internal/config"
	"github.com/san-kum/stochlab/internal/export"
	"github.com/san-kum/stochlab/internal/session"
	"github.com/san-kum/stochlab/internal/stats"
	"github.com/san-kum/stochlab/internal/stochastic"
	"github.com/san-kum/stochlab/internal/storage"
	"github.com/san-kum/stochlab/internal/tui"
	"github.com/san-kum/stochlab/internal/viz"
	"github.com/spf13/cobra"
)

func newSession(cfg *config.Config) *session.Session {
	return session.New(session.Config{
		Mode:    cfg.Mode,
		Rate:    cfg.Rate,
		Seed:    cfg.Seed,
		Refresh: cfg.Display.Refresh,
		Logger:  newLogger(),
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return simulate(ctx, cfg, os.Stdout)
}

// simulate runs cfg headless and saves it. An interrupted run is still
// saved, with the duration it actually covered.
func simulate(ctx context.Context, cfg *config.Config, w io.Writer) error {
	log := newLogger()
	s := newSession(cfg)
	runCfg := session.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration}

	var onTick func(session.Tick) bool
	var live *tui.LiveRenderer
	if liveView {
		live = tui.NewLiveRenderer(w, s, cfg.Display.FPS, viz.GetTheme(cfg.Display.Theme), realtime)
		live.Start()
		onTick = live.OnTick
	}

	log.Info("running", "mode", cfg.Mode, "rate", cfg.Rate, "dt", cfg.Dt, "duration", cfg.Duration, "seed", cfg.Seed)
	start := time.Now()
	res, err := s.Run(ctx, runCfg, onTick)
	if live != nil {
		live.Stop()
	}
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}
	elapsed := time.Since(start)
	if interrupted {
		runCfg.Duration = float64(res.Steps) * runCfg.Dt
		log.Warn("run interrupted, keeping partial result", "steps", res.Steps, "events", len(res.Events))
		// saving must not see the cancellation
		ctx = context.WithoutCancel(ctx)
	}

	if jsonOut {
		return storage.ExportJSON(w, runCfg, res)
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Seed, runCfg, res)
	if err != nil {
		return err
	}
	if err := indexRun(ctx, st, cfg.DataDir, runID, res, cfg.Dt); err != nil {
		log.Warn("run saved but not indexed", "run", runID, "err", err)
	}

	if interrupted {
		fmt.Fprintf(w, "interrupted after %v (%.2fs simulated)\n", elapsed, runCfg.Duration)
	} else {
		fmt.Fprintf(w, "completed in %v\n", elapsed)
	}
	fmt.Fprintf(w, "run id: %s\n", runID)
	fmt.Fprintf(w, "steps: %d  events: %d\n", res.Steps, len(res.Events))
	fmt.Fprintf(w, "window: %s\n\n", res.Final)
	fmt.Fprintln(w, "metrics:")
	printMetrics(w, storage.Metrics(res))
	fmt.Fprintln(w)

	plotEvents(w, res.Mode, res.Rate, res.Events)
	return nil
}

func indexRun(ctx context.Context, st *storage.Store, dir, runID string, res *session.Result, dt float64) error {
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ix, err := storage.OpenIndex(filepath.Join(dir, storage.IndexFile))
	if err != nil {
		return err
	}
	defer ix.Close()
	return ix.Record(ctx, *meta, automation.Expected(res.Mode, res.Rate), automation.Observed(res, dt))
}

func printMetrics(w io.Writer, metrics map[string]float64) {
	for _, name := range sortedKeys(metrics) {
		fmt.Fprintf(w, "  %s: %.6f\n", name, metrics[name])
	}
}

// plotEvents draws the mode's comparison against theory: the running
// open fraction against p, or the ISI histogram against exp(-λt).
func plotEvents(w io.Writer, mode stochastic.Mode, rate float64, events []stochastic.Event) {
	if mode == stochastic.Poisson {
		plotISI(w, rate, events)
		return
	}
	plotConvergence(w, rate, events)
}

func plotConvergence(w io.Writer, rate float64, events []stochastic.Event) {
	if len(events) < 2 {
		fmt.Fprintln(w, "not enough flips to plot")
		return
	}
	running := make([]float64, len(events))
	target := make([]float64, len(events))
	open := 0
	for i, ev := range events {
		if ev.Outcome == stochastic.Open {
			open++
		}
		running[i] = float64(open) / float64(i+1)
		target[i] = stochastic.ClampRate(rate)
	}
	graph := asciigraph.PlotMany([][]float64{running, target},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow),
		asciigraph.SeriesLegends("p̂", "p"),
		asciigraph.Caption("running open fraction"),
	)
	fmt.Fprintln(w, graph)
}

func plotISI(w io.Writer, rate float64, events []stochastic.Event) {
	isis := stats.InterArrivals(events)
	if len(isis) < stats.MinISISamples {
		fmt.Fprintf(w, "only %d intervals, need %d for the ISI histogram\n", len(isis), stats.MinISISamples)
		return
	}
	lambda := stochastic.EffectiveRate(rate)
	hist := stats.BuildHistogram(isis, stats.DefaultBins, stats.DefaultMaxISI)
	graph := asciigraph.PlotMany([][]float64{hist.Normalized(), stats.TheoryCurve(lambda, stats.DefaultMaxISI, stats.DefaultBins)},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Magenta, asciigraph.Cyan),
		asciigraph.SeriesLegends("ISI histogram", fmt.Sprintf("exp(-%.1ft)", lambda)),
		asciigraph.Caption(fmt.Sprintf("inter-spike intervals over [0, %.1fs), %d of %d in range", stats.DefaultMaxISI, hist.Count(), len(isis))),
	)
	fmt.Fprintln(w, graph)
}

func writeSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	s := newSession(cfg)
	if _, err := s.Run(cmd.Context(), session.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration}, nil); err != nil {
		return err
	}

	th := viz.GetTheme(cfg.Display.Theme)
	var svg string
	if braille {
		canvas := viz.NewCanvas(100, 25)
		frame, _ := s.Frame(canvas)
		canvas.Draw(frame)
		svg = export.CanvasToSVG(canvas, th, 4)
	} else {
		frame, _ := s.Frame(viz.FixedSurface{W: 800, H: 400})
		svg = export.FrameToSVG(frame, th)
	}

	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s, rate %.2f, %s)\n", outFile, cfg.Mode, cfg.Rate, s.Stats())
	return nil
}
