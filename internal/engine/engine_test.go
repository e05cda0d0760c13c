package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iwvelando/deal-risk/internal/config"
	"github.com/iwvelando/deal-risk/internal/metrics"
	"github.com/iwvelando/deal-risk/internal/simulation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func loadTestConfig(t *testing.T) *config.Configuration {
	t.Helper()
	cfg, err := config.LoadConfiguration(filepath.Join("..", "..", "test", "test_config.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestEvaluateSimulation(t *testing.T) {
	cfg := loadTestConfig(t)
	success := metrics.SimulationsTotal.WithLabelValues("indie", metrics.StatusSuccess)
	before := testutil.ToFloat64(success)

	report, err := Evaluate(context.Background(), zap.NewNop(), cfg, false)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "indie", string(report.Genre.Key))
	assert.Equal(t, cfg.Simulation.Iterations, report.Metrics.Trials)
	assert.Equal(t, cfg.Simulation.Seed, report.Seed)
	assert.Nil(t, report.Optimization)
	assert.Len(t, report.Insights, 3)
	assert.Len(t, report.Histogram, cfg.Output.HistogramBins)
	assert.LessOrEqual(t, len(report.Scatter), cfg.Output.ScatterPoints)
	assert.Equal(t, before+1, testutil.ToFloat64(success))

	again, err := Evaluate(context.Background(), nil, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, report.Metrics, again.Metrics, "fixed seed should reproduce metrics")
}

func TestEvaluateOptimize(t *testing.T) {
	cfg := loadTestConfig(t)
	require.NotNil(t, cfg.Optimizer)

	report, err := Evaluate(context.Background(), zap.NewNop(), cfg, true)
	require.NoError(t, err)
	require.NotNil(t, report.Optimization)

	summary := report.Optimization
	assert.Equal(t, config.OptimizerFieldAdvance, summary.Field)
	assert.Equal(t, summary.Value, report.Inputs.Advance)
	assert.Equal(t, cfg.Deal.Advance, summary.Original)
	assert.InDelta(t, summary.Metric, report.Metrics.BreakEvenProbability, 1e-9)
}

func TestEvaluateErrors(t *testing.T) {
	t.Run("nil configuration", func(t *testing.T) {
		_, err := Evaluate(context.Background(), zap.NewNop(), nil, false)
		require.Error(t, err)
	})

	t.Run("optimize without directive", func(t *testing.T) {
		cfg := loadTestConfig(t)
		cfg.Optimizer = nil
		_, err := Evaluate(context.Background(), zap.NewNop(), cfg, true)
		assert.True(t, errors.Is(err, ErrNoOptimizer))
	})

	t.Run("zero investment", func(t *testing.T) {
		cfg := loadTestConfig(t)
		cfg.Deal.Advance, cfg.Deal.Marketing, cfg.Deal.ContentBudget = 0, 0, 0
		failure := metrics.SimulationsTotal.WithLabelValues("indie", metrics.StatusFailure)
		before := testutil.ToFloat64(failure)

		_, err := Evaluate(context.Background(), zap.NewNop(), cfg, false)
		assert.True(t, errors.Is(err, simulation.ErrZeroInvestment))
		assert.Equal(t, before+1, testutil.ToFloat64(failure))
	})
}
