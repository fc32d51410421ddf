package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/emitter"
	"github.com/san-kum/poolsim/internal/experiment"
	"github.com/san-kum/poolsim/internal/export"
	"github.com/san-kum/poolsim/internal/logging"
	"github.com/san-kum/poolsim/internal/metrics"
	"github.com/san-kum/poolsim/internal/storage"
	"github.com/san-kum/poolsim/internal/viz"
)

// resolveConfig layers preset, config file and explicitly set flags, in that
// order, and returns the config with a name for the run.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "custom"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if preset == "" {
			name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		}
	}

	flags := cmd.Flags()
	if flags.Changed("capacity") {
		cfg.Pool.Capacity = capacity
	}
	if flags.Changed("rate") {
		cfg.Emitter.Rate = rate
	}
	if flags.Changed("overflow") {
		cfg.Emitter.Overflow = emitter.Policy(overflow)
	}
	if flags.Changed("seed") {
		cfg.Emitter.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("tick-rate") {
		cfg.Run.TickRate.Duration = tickRate
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func runPool(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	reg := experiment.NewRegistry()
	exp := experiment.New(cfg, log.Named("emitter"))
	if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
		return err
	}
	em := exp.Emitter()

	collector := metrics.NewCollector("poolsim")
	em.AddObserver(collector)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var srv *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		mux.Handle("/debug/particles", em.SnapshotHandler())
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			log.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	var result *emitter.Result
	start := time.Now()
	g.Go(func() error {
		var runErr error
		result, runErr = exp.Run(gctx)
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("metrics server shutdown", zap.Error(err))
			}
		}
		return runErr
	})

	err = g.Wait()
	elapsed := time.Since(start)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) && ctx.Err() != nil && result != nil:
		log.Warn("run interrupted", zap.Int("ticks", result.Totals.Ticks))
	default:
		return err
	}

	printSummary(name, cfg, result, elapsed)

	if save {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		info := storage.RunInfo{Preset: name, Capacity: cfg.Pool.Capacity, Emitter: em.Config()}
		runID, err := st.Save(info, result)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		log.Info("run saved", zap.String("id", runID), zap.String("dir", cfg.DataDir))
		fmt.Printf("run id: %s\n", runID)
	}

	return nil
}

func printSummary(name string, cfg *config.Config, result *emitter.Result, elapsed time.Duration) {
	fmt.Printf("%s: %d ticks in %v\n\n", name, result.Totals.Ticks, elapsed)

	final := emitter.TickStats{Free: cfg.Pool.Capacity}
	if n := len(result.Ticks); n > 0 {
		final = result.Ticks[n-1]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	fmt.Fprintf(w, "capacity\t%d\n", cfg.Pool.Capacity)
	fmt.Fprintf(w, "pattern\t%s\n", cfg.Emitter.Pattern)
	fmt.Fprintf(w, "rate\t%.2f/tick\n", cfg.Emitter.Rate)
	fmt.Fprintf(w, "overflow\t%s\n", cfg.Emitter.Overflow)
	fmt.Fprintf(w, "spawned\t%d\n", result.Totals.Spawned)
	fmt.Fprintf(w, "expired\t%d\n", result.Totals.Expired)
	fmt.Fprintf(w, "dropped\t%d\n", result.Totals.Dropped)
	fmt.Fprintf(w, "peak live\t%d\n", result.Totals.PeakLive)
	fmt.Fprintf(w, "final live\t%d\n", final.Live)
	fmt.Fprintf(w, "backlog\t%d\n", final.Backlog)

	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "%s\t%.4f\n", n, result.Metrics[n])
	}
	w.Flush()

	if len(result.Ticks) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(liveSeries(result.Ticks),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.LowerBound(0),
			asciigraph.Caption("live particles per tick"),
		))
	}
}

func liveSeries(ticks []emitter.TickStats) []float64 {
	out := make([]float64, len(ticks))
	for i, ts := range ticks {
		out[i] = float64(ts.Live)
	}
	return out
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results, err := experiment.NewEnsemble(cfg, runs, log.Named("ensemble")).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d runs of %d ticks in %v (seeds %d-%d)\n\n",
		name, runs, cfg.Run.Ticks, time.Since(start), cfg.Emitter.Seed, cfg.Emitter.Seed+int64(runs-1))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tMIN\tMAX")
	for _, agg := range experiment.Summarize(results) {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\n", agg.Name, agg.Mean, agg.Min, agg.Max)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	if frameRate <= 0 {
		return fmt.Errorf("fps must be positive, got %d", frameRate)
	}
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// the view owns the terminal; log nothing
	exp := experiment.New(cfg, zap.NewNop())
	if err := exp.Setup(nil, nil); err != nil {
		return err
	}

	model := viz.NewModel(exp.Emitter(), name, viz.WithFrame(time.Second/time.Duration(frameRate)))
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	if svgWidth < 8 || svgHeight < 16 {
		return fmt.Errorf("image too small: %dx%d", svgWidth, svgHeight)
	}
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Run.TickRate.Duration = 0

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	exp := experiment.New(cfg, log.Named("emitter"))
	if err := exp.Setup(nil, nil); err != nil {
		return err
	}
	if _, err := exp.Run(cmd.Context()); err != nil {
		return err
	}

	points := exp.Emitter().Snapshot()
	view := viz.DefaultViewport()
	if fit {
		view = viz.FitViewport(points)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if braille {
		canvas := viz.NewCanvas(svgWidth/8, svgHeight/16)
		canvas.Plot(view, points)
		_, err = f.WriteString(export.CanvasToSVG(canvas, 4))
	} else {
		err = export.ParticlesToSVG(f, points, view, svgWidth, svgHeight)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}

	fmt.Printf("%s: %d live particles after %d ticks -> %s\n", name, len(points), cfg.Run.Ticks, outFile)
	return nil
}
