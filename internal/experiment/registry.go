package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/poolsim/internal/emitter"
	"github.com/san-kum/poolsim/internal/metrics"
	"github.com/san-kum/poolsim/internal/pattern"
)

// Registry names the spawn patterns and summary metrics a run can use.
type Registry struct {
	patterns *pattern.Registry
	metrics  map[string]func() emitter.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		patterns: pattern.NewRegistry(),
		metrics:  make(map[string]func() emitter.Metric),
	}

	r.metrics["saturation"] = func() emitter.Metric { return metrics.NewSaturation() }
	r.metrics["utilization"] = func() emitter.Metric { return metrics.NewUtilization() }
	r.metrics["drop_rate"] = func() emitter.Metric { return metrics.NewDropRate() }

	return r
}

func (r *Registry) Patterns() *pattern.Registry {
	return r.patterns
}

func (r *Registry) GetMetric(name string) (emitter.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []emitter.Metric {
	out := make([]emitter.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}
