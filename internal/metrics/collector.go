// Package metrics exports emitter ticks as Prometheus metrics.
//
// The collector is an emitter.Observer: attach it with AddObserver and serve
// Handler on /metrics. Gauges track the pool after each tick; counters
// accumulate spawns, expiries and drops.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/poolsim/internal/emitter"
)

type Collector struct {
	registry  *prometheus.Registry
	live      prometheus.Gauge
	free      prometheus.Gauge
	backlog   prometheus.Gauge
	ticks     prometheus.Counter
	spawned   prometheus.Counter
	expired   prometheus.Counter
	dropped   prometheus.Counter
	sweepTime prometheus.Histogram
}

// NewCollector registers its metrics on a private registry so several
// collectors can coexist in one process (and in tests).
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pool", Name: "live_slots",
			Help: "Live slots after the last tick.",
		}),
		free: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pool", Name: "free_slots",
			Help: "Free slots after the last tick.",
		}),
		backlog: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "emitter", Name: "backlog",
			Help: "Spawn requests waiting for a free slot.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "emitter", Name: "ticks_total",
			Help: "Ticks run.",
		}),
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "emitter", Name: "spawned_total",
			Help: "Objects acquired from the pool.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool", Name: "expired_total",
			Help: "Objects reclaimed by sweep.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "emitter", Name: "dropped_total",
			Help: "Spawn requests dropped on an exhausted pool.",
		}),
		sweepTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "pool", Name: "sweep_seconds",
			Help:    "Time spent in one sweep.",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
	}

	c.registry.MustRegister(c.live, c.free, c.backlog, c.ticks, c.spawned, c.expired, c.dropped, c.sweepTime)
	return c
}

func (c *Collector) OnTick(ts emitter.TickStats) {
	c.live.Set(float64(ts.Live))
	c.free.Set(float64(ts.Free))
	c.backlog.Set(float64(ts.Backlog))
	c.ticks.Inc()
	c.spawned.Add(float64(ts.Spawned))
	c.expired.Add(float64(ts.Expired))
	c.dropped.Add(float64(ts.Dropped))
	c.sweepTime.Observe(ts.SweepTime.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

var _ emitter.Observer = (*Collector)(nil)
