package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/poolsim/internal/config"
)

func TestExperiment_RunClassicPreset(t *testing.T) {
	cfg := config.GetPreset("classic")
	require.NotNil(t, cfg)

	exp := New(cfg, nil)
	reg := NewRegistry()
	require.NoError(t, exp.Setup(reg, reg.DefaultMetrics()))

	result, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cfg.Run.Ticks, result.Totals.Ticks)
	assert.Len(t, result.Ticks, cfg.Run.Ticks)
	assert.Zero(t, result.Totals.Dropped)
	for _, name := range reg.ListMetrics() {
		assert.Contains(t, result.Metrics, name)
	}
	for _, ts := range result.Ticks {
		assert.Equal(t, cfg.Pool.Capacity, ts.Live+ts.Free, "tick %d", ts.Tick)
	}
}

func TestExperiment_RunBeforeSetup(t *testing.T) {
	exp := New(config.DefaultConfig(), nil)
	_, err := exp.Run(context.Background())
	assert.Error(t, err)
}

func TestExperiment_SetupRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pool.Capacity = 0

	err := New(cfg, nil).Setup(nil, nil)
	assert.ErrorContains(t, err, "pool.capacity")
}

func TestExperiment_SetupUnknownPattern(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Emitter.Pattern = "spiral"

	err := New(cfg, nil).Setup(nil, nil)
	assert.ErrorContains(t, err, "unknown pattern")
}

func TestRegistry_Metrics(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, []string{"drop_rate", "saturation", "utilization"}, reg.ListMetrics())

	m, err := reg.GetMetric("saturation")
	require.NoError(t, err)
	assert.Equal(t, "saturation", m.Name())

	_, err = reg.GetMetric("missing")
	assert.Error(t, err)

	a, b := reg.DefaultMetrics(), reg.DefaultMetrics()
	assert.NotSame(t, a[0], b[0], "each call builds fresh metrics")
}
