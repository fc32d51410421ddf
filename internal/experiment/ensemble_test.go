package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/poolsim/internal/config"
	"github.com/san-kum/poolsim/internal/emitter"
)

func TestEnsemble_Run(t *testing.T) {
	cfg := config.GetPreset("saturate")
	cfg.Run.Ticks = 50

	results, err := NewEnsemble(cfg, 4, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		require.NotNil(t, r, "run %d", i)
		assert.Equal(t, 50, r.Totals.Ticks)
		assert.LessOrEqual(t, r.Totals.PeakLive, cfg.Pool.Capacity)
	}
	assert.Equal(t, int64(1), cfg.Emitter.Seed, "base config must not be modified")
}

func TestEnsemble_Deterministic(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Run.Ticks = 40

	a, err := NewEnsemble(cfg, 2, nil).Run(context.Background())
	require.NoError(t, err)
	b, err := NewEnsemble(cfg, 2, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a[1].Totals, b[1].Totals)
}

func TestEnsemble_InvalidRuns(t *testing.T) {
	_, err := NewEnsemble(config.DefaultConfig(), 0, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestEnsemble_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEnsemble(config.DefaultConfig(), 3, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	results := []*emitter.Result{
		{Totals: emitter.Totals{Dropped: 2, PeakLive: 10}, Metrics: map[string]float64{"saturation": 0.5}},
		{Totals: emitter.Totals{Dropped: 6, PeakLive: 10}, Metrics: map[string]float64{"saturation": 0.1}},
	}

	aggs := Summarize(results)
	require.Len(t, aggs, 3)

	assert.Equal(t, Aggregate{Name: "dropped", Mean: 4, Min: 2, Max: 6}, aggs[0])
	assert.Equal(t, Aggregate{Name: "peak_live", Mean: 10, Min: 10, Max: 10}, aggs[1])
	assert.Equal(t, "saturation", aggs[2].Name)
	assert.InDelta(t, 0.3, aggs[2].Mean, 1e-9)
}
