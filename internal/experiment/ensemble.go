package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/emitter"
)

// Ensemble repeats one config with consecutive seeds, each run on its own
// pool and goroutine.
type Ensemble struct {
	cfg  *config.Config
	runs int
	log  *zap.Logger
}

func NewEnsemble(cfg *config.Config, runs int, log *zap.Logger) *Ensemble {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ensemble{cfg: cfg, runs: runs, log: log}
}

// Run returns results in seed order. Pacing from the config is ignored.
func (e *Ensemble) Run(ctx context.Context) ([]*emitter.Result, error) {
	if e.runs <= 0 {
		return nil, fmt.Errorf("runs must be positive, got %d", e.runs)
	}

	results := make([]*emitter.Result, e.runs)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < e.runs; i++ {
		g.Go(func() error {
			cfg := *e.cfg
			cfg.Emitter.Seed = e.cfg.Emitter.Seed + int64(i)
			cfg.Run.TickRate.Duration = 0

			exp := New(&cfg, e.log.With(zap.Int("run", i)))
			reg := NewRegistry()
			if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
				return err
			}
			r, err := exp.Run(gctx)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type Aggregate struct {
	Name           string
	Mean, Min, Max float64
}

// Summarize aggregates every summary metric plus dropped and peak_live
// across results, sorted by name.
func Summarize(results []*emitter.Result) []Aggregate {
	values := make(map[string][]float64)
	for _, r := range results {
		for name, v := range r.Metrics {
			values[name] = append(values[name], v)
		}
		values["dropped"] = append(values["dropped"], float64(r.Totals.Dropped))
		values["peak_live"] = append(values["peak_live"], float64(r.Totals.PeakLive))
	}

	out := make([]Aggregate, 0, len(values))
	for name, vs := range values {
		agg := Aggregate{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
		sum := 0.0
		for _, v := range vs {
			sum += v
			agg.Min = math.Min(agg.Min, v)
			agg.Max = math.Max(agg.Max, v)
		}
		agg.Mean = sum / float64(len(vs))
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
