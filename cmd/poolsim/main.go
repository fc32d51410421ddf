package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	capacity    int
	rate        float64
	ticks       int
	overflow    string
	seed        int64
	metricsAddr string
	tickRate    time.Duration
	save        bool
	logLevel    string
	// live view
	frameRate int
	// snapshot
	outFile   string
	svgWidth  int
	svgHeight int
	fit       bool
	braille   bool
	// voices demo
	polyphony  int
	sampleRate float64
	noteEvery  int
	// ensemble
	runs int
	// bench
	sweeps int
)

// main registers the poolsim commands and runs the root command, exiting
// with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "poolsim",
		Short:        "fixed-capacity object pool lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config, .poolsim)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an emitter against a pool and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runPool,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks")
	runCmd.Flags().DurationVar(&tickRate, "tick-rate", 0, "minimum time between ticks (0 runs flat out)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /debug/particles on this address")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the pool in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "ticks per second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render live particles to SVG after a run",
		Args:  cobra.NoArgs,
		RunE:  snapshotRun,
	}
	addRunFlags(snapshotCmd)
	snapshotCmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks before the snapshot")
	snapshotCmd.Flags().StringVar(&outFile, "out", "snapshot.svg", "output file")
	snapshotCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	snapshotCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	snapshotCmd.Flags().BoolVar(&fit, "fit", false, "fit the view to the particles")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "render through the terminal canvas instead of exact positions")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "repeat a run over consecutive seeds in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks per run")
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of runs")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "play a note sequence through a fixed-polyphony synth",
		Args:  cobra.NoArgs,
		RunE:  runVoices,
	}
	voicesCmd.Flags().IntVar(&polyphony, "polyphony", 4, "number of voices")
	voicesCmd.Flags().Float64Var(&sampleRate, "sample-rate", 8000, "samples per second")
	voicesCmd.Flags().IntVar(&noteEvery, "every", 400, "samples between notes")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure sweep cost against capacity and live fraction",
		Args:  cobra.NoArgs,
		RunE:  benchSweep,
	}
	benchCmd.Flags().IntVar(&sweeps, "sweeps", 200, "sweeps per measurement")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, snapshotCmd, ensembleCmd, presetsCmd, voicesCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "pool capacity")
	cmd.Flags().Float64Var(&rate, "rate", 0, "spawns per tick")
	cmd.Flags().StringVar(&overflow, "overflow", "", "overflow policy (drop, queue)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
}
