package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/san-kum/stochlab/internal/stochastic"
	"github.com/san-kum/stochlab/internal/storage"
	"github.com/spf13/cobra"
)

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
	fmt.Fprintln(w, "ID\tMODE\tTIME\tRATE\tDURATION\tDT\tEVENTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2fs\t%.4fs\t%d\n",
			run.ID,
			run.Mode,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rate,
			run.Duration,
			run.Dt,
			run.Events,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mode: %s  rate: %.2f\n", meta.Mode, meta.Rate)
	fmt.Printf("events: %d\n\n", len(events))

	plotEvents(os.Stdout, meta.Mode, meta.Rate, events)
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

func showHistory(cmd *cobra.Command, args []string) error {
	var filter storage.RunFilter
	filter.Limit = historyLimit
	if len(args) > 0 {
		m, err := stochastic.ParseMode(args[0])
		if err != nil {
			return err
		}
		filter.Mode = &m
	}

	ix, err := storage.OpenIndex(filepath.Join(dataDir, storage.IndexFile))
	if err != nil {
		return err
	}
	defer ix.Close()

	ctx := cmd.Context()
	summaries, err := ix.Summaries(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no indexed runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tRUNS\tEVENTS\tMEAN |ERR|\tMAX |ERR|\tLAST")
	for _, sum := range summaries {
		if filter.Mode != nil && sum.Mode != *filter.Mode {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t%.4f\t%s\n",
			sum.Mode, sum.Runs, sum.Events, sum.MeanAbsErr, sum.MaxAbsErr,
			sum.LastUpdated.Local().Format("2006-01-02 15:04:05"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	runs, err := ix.Recent(ctx, filter)
	if err != nil {
		return err
	}
	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRATE\tDURATION\tEVENTS\tEXPECTED\tOBSERVED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%.2f\t%.2fs\t%d\t%.4f\t%.4f\n",
			run.ID, run.Rate, run.Duration, run.Events, run.Expected, run.Observed)
	}
	return w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
