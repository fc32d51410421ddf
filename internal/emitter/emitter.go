// Package emitter drives a particle pool one tick at a time: sweep the pool,
// retry queued spawns, then emit new particles at a configured rate.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/san-kum/poolsim/internal/particle"
	"github.com/san-kum/poolsim/internal/pattern"
	"github.com/san-kum/poolsim/internal/pool"
)

// Policy decides what happens to a spawn request that finds the pool exhausted.
type Policy string

const (
	PolicyDrop  Policy = "drop"
	PolicyQueue Policy = "queue"
)

// MaxRate bounds spawns per tick.
const MaxRate = 1e6

type Config struct {
	Rate        float64 `yaml:"rate" toml:"rate"`
	Pattern     string  `yaml:"pattern" toml:"pattern"`
	LifetimeMin int     `yaml:"lifetime_min" toml:"lifetime_min"`
	LifetimeMax int     `yaml:"lifetime_max" toml:"lifetime_max"`
	Speed       float64 `yaml:"speed" toml:"speed"`
	Spread      float64 `yaml:"spread" toml:"spread"`
	Gravity     float64 `yaml:"gravity" toml:"gravity"`
	OriginX     float64 `yaml:"origin_x" toml:"origin_x"`
	OriginY     float64 `yaml:"origin_y" toml:"origin_y"`
	Overflow    Policy  `yaml:"overflow" toml:"overflow"`
	Backlog     int     `yaml:"backlog" toml:"backlog"`
	Seed        int64   `yaml:"seed" toml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Rate:        3,
		Pattern:     "fountain",
		LifetimeMin: 20,
		LifetimeMax: 40,
		Speed:       1.2,
		Spread:      0.8,
		Gravity:     -0.04,
		Overflow:    PolicyDrop,
		Backlog:     64,
		Seed:        1,
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.Rate) || c.Rate < 0 || c.Rate > MaxRate {
		return fmt.Errorf("rate must be in [0, %g], got %g", float64(MaxRate), c.Rate)
	}
	if c.LifetimeMin <= 0 {
		return fmt.Errorf("lifetime_min must be positive, got %d", c.LifetimeMin)
	}
	if c.LifetimeMax < c.LifetimeMin {
		return fmt.Errorf("lifetime_max %d below lifetime_min %d", c.LifetimeMax, c.LifetimeMin)
	}
	switch c.Overflow {
	case PolicyDrop:
	case PolicyQueue:
		if c.Backlog <= 0 {
			return fmt.Errorf("backlog must be positive for queue overflow, got %d", c.Backlog)
		}
	default:
		return fmt.Errorf("unknown overflow policy: %q", c.Overflow)
	}
	return nil
}

func (c Config) params() pattern.Params {
	return pattern.Params{
		OriginX:     c.OriginX,
		OriginY:     c.OriginY,
		Speed:       c.Speed,
		Spread:      c.Spread,
		Gravity:     c.Gravity,
		LifetimeMin: c.LifetimeMin,
		LifetimeMax: c.LifetimeMax,
	}
}

// TickStats describes one tick. Spawned counts particles that entered the
// pool this tick, including backlog retries.
type TickStats struct {
	Tick      int
	Live      int
	Free      int
	Spawned   int
	Expired   int
	Dropped   int
	Backlog   int
	SweepTime time.Duration
}

type Totals struct {
	Ticks    int
	Spawned  int
	Expired  int
	Dropped  int
	PeakLive int
}

type Result struct {
	Ticks   []TickStats
	Totals  Totals
	Metrics map[string]float64
}

func (r *Result) add(ts TickStats) {
	r.Ticks = append(r.Ticks, ts)
	r.Totals.Ticks++
	r.Totals.Spawned += ts.Spawned
	r.Totals.Expired += ts.Expired
	r.Totals.Dropped += ts.Dropped
	if ts.Live > r.Totals.PeakLive {
		r.Totals.PeakLive = ts.Live
	}
}

type Observer interface {
	OnTick(ts TickStats)
}

// Metric summarizes a run. Run resets every metric before the first tick and
// records Value under Name in Result.Metrics.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

type Emitter struct {
	pool      *particle.SharedPool
	cfg       Config
	spawn     pattern.Func
	params    pattern.Params
	rng       *rand.Rand
	backlog   *queue.Queue
	acc       float64
	tick      int
	observers []Observer
	metrics   []Metric
	handles   []pool.Handle
	log       *zap.Logger
}

func New(p *particle.SharedPool, cfg Config, patterns *pattern.Registry, log *zap.Logger) (*Emitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if patterns == nil {
		patterns = pattern.NewRegistry()
	}
	spawn, err := patterns.Get(cfg.Pattern)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Emitter{
		pool:      p,
		cfg:       cfg,
		spawn:     spawn,
		params:    cfg.params(),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		backlog:   queue.New(),
		observers: make([]Observer, 0),
		metrics:   make([]Metric, 0),
		handles:   make([]pool.Handle, 0, p.Cap()),
		log:       log,
	}, nil
}

func (e *Emitter) AddObserver(o Observer) { e.observers = append(e.observers, o) }
func (e *Emitter) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }

func (e *Emitter) Pool() *particle.SharedPool { return e.pool }
func (e *Emitter) Config() Config             { return e.cfg }
func (e *Emitter) Tick() int                  { return e.tick }

// SetRate changes the spawn rate from the next tick on. Rates outside
// [0, MaxRate] are clamped and NaN becomes 0.
func (e *Emitter) SetRate(rate float64) {
	switch {
	case math.IsNaN(rate) || rate < 0:
		rate = 0
	case rate > MaxRate:
		rate = MaxRate
	}
	e.cfg.Rate = rate
}

// Step runs one tick under a single pool lock and notifies observers.
func (e *Emitter) Step() TickStats {
	e.tick++
	ts := TickStats{Tick: e.tick}

	e.pool.Do(func(p *particle.Pool) {
		before := p.Stats().Expired
		start := time.Now()
		p.Sweep()
		ts.SweepTime = time.Since(start)
		ts.Expired = int(p.Stats().Expired - before)

		e.drainBacklog(p, &ts)

		e.acc += e.cfg.Rate
		n := int(e.acc)
		e.acc -= float64(n)
		e.emitN(p, n, &ts)

		ts.Live, ts.Free = p.Len(), p.Free()
	})
	ts.Backlog = e.backlog.Length()

	if ts.Dropped > 0 {
		e.log.Debug("pool exhausted",
			zap.Int("tick", ts.Tick),
			zap.Int("dropped", ts.Dropped),
			zap.Int("backlog", ts.Backlog))
	}
	for _, m := range e.metrics {
		m.OnTick(ts)
	}
	for _, obs := range e.observers {
		obs.OnTick(ts)
	}
	return ts
}

func (e *Emitter) drainBacklog(p *particle.Pool, ts *TickStats) {
	for e.backlog.Length() > 0 {
		s := e.backlog.Peek().(particle.Spawn)
		_, err := p.Acquire(s)
		if errors.Is(err, pool.ErrExhausted) {
			return
		}
		e.backlog.Remove()
		if err != nil {
			ts.Dropped++
			e.log.Warn("queued spawn rejected", zap.Error(err))
			continue
		}
		ts.Spawned++
	}
}

// emitN emits n particles. Once neither the pool nor the backlog has room the
// remainder is counted as dropped without generating it.
func (e *Emitter) emitN(p *particle.Pool, n int, ts *TickStats) {
	for i := 0; i < n; i++ {
		if p.Free() == 0 && !e.canQueue() {
			ts.Dropped += n - i
			return
		}
		e.emit(p, e.spawn(e.rng, e.params), ts)
	}
}

func (e *Emitter) canQueue() bool {
	return e.cfg.Overflow == PolicyQueue && e.backlog.Length() < e.cfg.Backlog
}

func (e *Emitter) emit(p *particle.Pool, s particle.Spawn, ts *TickStats) {
	_, err := p.Acquire(s)
	switch {
	case err == nil:
		ts.Spawned++
	case errors.Is(err, pool.ErrExhausted):
		if e.canQueue() {
			e.backlog.Add(s)
			return
		}
		ts.Dropped++
	default:
		ts.Dropped++
		e.log.Warn("spawn rejected", zap.Error(err))
	}
}

// Run steps the emitter ticks times, stopping early if ctx is canceled.
func (e *Emitter) Run(ctx context.Context, ticks int) (*Result, error) {
	return e.RunPaced(ctx, ticks, 0)
}

// RunPaced is Run with at least every between ticks; zero means no pacing.
func (e *Emitter) RunPaced(ctx context.Context, ticks int, every time.Duration) (*Result, error) {
	if ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", ticks)
	}

	result := &Result{
		Ticks:   make([]TickStats, 0, ticks),
		Metrics: make(map[string]float64),
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	var pace <-chan time.Time
	if every > 0 {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		pace = ticker.C
	}

	e.log.Info("run started",
		zap.Int("ticks", ticks),
		zap.Int("capacity", e.pool.Cap()),
		zap.Float64("rate", e.cfg.Rate),
		zap.String("pattern", e.cfg.Pattern),
		zap.String("overflow", string(e.cfg.Overflow)))

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			e.collect(result)
			return result, ctx.Err()
		default:
		}
		if pace != nil {
			select {
			case <-ctx.Done():
				e.collect(result)
				return result, ctx.Err()
			case <-pace:
			}
		}

		result.add(e.Step())
	}
	e.collect(result)

	e.log.Info("run finished",
		zap.Int("spawned", result.Totals.Spawned),
		zap.Int("expired", result.Totals.Expired),
		zap.Int("dropped", result.Totals.Dropped),
		zap.Int("peak_live", result.Totals.PeakLive))
	return result, nil
}

func (e *Emitter) collect(result *Result) {
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Burst emits n particles immediately with the configured overflow policy and
// returns how many entered the pool.
func (e *Emitter) Burst(n int) int {
	var ts TickStats
	e.pool.Do(func(p *particle.Pool) {
		e.emitN(p, n, &ts)
	})
	return ts.Spawned
}

// Clear releases every live particle and empties the backlog.
func (e *Emitter) Clear() int {
	released := 0
	e.pool.Do(func(p *particle.Pool) {
		e.handles = e.handles[:0]
		p.ForEachLive(func(h pool.Handle, _ particle.Particle) bool {
			e.handles = append(e.handles, h)
			return true
		})
		for _, h := range e.handles {
			if err := p.Release(h); err != nil {
				e.log.Error("release failed", zap.Stringer("handle", h), zap.Error(err))
				continue
			}
			released++
		}
	})
	for e.backlog.Length() > 0 {
		e.backlog.Remove()
	}
	return released
}
