package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/emitter"
	"github.com/san-kum/poolsim/internal/storage"
)

func openStore() *storage.Store {
	dir := dataDir
	if dir == "" {
		dir = config.DefaultDataDir
	}
	return storage.New(dir)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCAP\tPATTERN\tRATE\tOVERFLOW\tTICKS\tDROPPED\tPEAK")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Info.Capacity,
			run.Info.Emitter.Pattern,
			run.Info.Emitter.Rate,
			run.Info.Emitter.Overflow,
			run.Ticks,
			run.Dropped,
			run.PeakLive,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := openStore()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	if len(ticks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("capacity: %d  pattern: %s  rate: %.2f  overflow: %s\n",
		meta.Info.Capacity, meta.Info.Emitter.Pattern, meta.Info.Emitter.Rate, meta.Info.Emitter.Overflow)
	fmt.Printf("ticks: %d\n\n", len(ticks))

	series := []struct {
		caption string
		value   func(emitter.TickStats) float64
	}{
		{"live particles", func(ts emitter.TickStats) float64 { return float64(ts.Live) }},
		{"spawned per tick", func(ts emitter.TickStats) float64 { return float64(ts.Spawned) }},
		{"expired per tick", func(ts emitter.TickStats) float64 { return float64(ts.Expired) }},
		{"dropped per tick", func(ts emitter.TickStats) float64 { return float64(ts.Dropped) }},
		{"backlog", func(ts emitter.TickStats) float64 { return float64(ts.Backlog) }},
		{"sweep time (us)", func(ts emitter.TickStats) float64 { return float64(ts.SweepTime.Nanoseconds()) / 1e3 }},
	}

	for _, s := range series {
		data := make([]float64, len(ticks))
		nonzero := false
		for i, ts := range ticks {
			data[i] = s.value(ts)
			nonzero = nonzero || data[i] != 0
		}
		if !nonzero {
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return openStore().ExportJSON(os.Stdout, args[0])
}
