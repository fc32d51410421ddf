// Package experiment assembles a pool, an emitter and its metrics from a
// config and runs them.
package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/emitter"
	"github.com/san-kum/poolsim/internal/particle"
)

type Experiment struct {
	cfg     *config.Config
	emitter *emitter.Emitter
	log     *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, log: log}
}

func (e *Experiment) Setup(reg *Registry, metrics []emitter.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if reg == nil {
		reg = NewRegistry()
	}

	sp, err := particle.NewSharedPool(e.cfg.Pool.Capacity)
	if err != nil {
		return err
	}
	em, err := emitter.New(sp, e.cfg.Emitter, reg.Patterns(), e.log)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		em.AddMetric(m)
	}
	e.emitter = em
	return nil
}

// Run drives the emitter for cfg.Run.Ticks ticks at cfg.Run.TickRate.
func (e *Experiment) Run(ctx context.Context) (*emitter.Result, error) {
	if e.emitter == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.emitter.RunPaced(ctx, e.cfg.Run.Ticks, e.cfg.Run.TickRate.Duration)
}

// Emitter returns the underlying emitter for adding observers.
func (e *Experiment) Emitter() *emitter.Emitter {
	return e.emitter
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
