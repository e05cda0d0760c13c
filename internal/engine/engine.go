// Package engine runs a configured deal through the simulator, the optimizer
// and the analyzer, producing a presentation-ready report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/deal-risk/internal/analysis"
	"github.com/iwvelando/deal-risk/internal/config"
	"github.com/iwvelando/deal-risk/internal/metrics"
	"github.com/iwvelando/deal-risk/internal/optimizer"
	"github.com/iwvelando/deal-risk/internal/simulation"
	"github.com/iwvelando/deal-risk/pkg/genre"
	"github.com/iwvelando/deal-risk/pkg/optimization"
	"github.com/iwvelando/deal-risk/pkg/output"
	"go.uber.org/zap"
)

// ErrNoOptimizer is returned when optimization is requested without a directive.
var ErrNoOptimizer = errors.New("no optimizer directive configured")

// Evaluate simulates the configured deal and analyzes the outcome. When
// optimize is set, the optimizer directive runs first and the reported run
// uses the optimized deal terms with the same seed.
func Evaluate(ctx context.Context, logger *zap.Logger, cfg *config.Configuration, optimize bool) (*output.Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	inputs := cfg.DealInputs()
	opts := cfg.SimulationOptions()
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	var summary *optimization.Summary
	if optimize {
		if cfg.Optimizer == nil {
			return nil, ErrNoOptimizer
		}
		runner, err := optimizer.NewRunner(logger, inputs, cfg.Genre, opts, cfg.Optimizer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize optimizer: %w", err)
		}
		summary, err = runner.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("optimizer execution failed: %w", err)
		}
		inputs = optimizer.Apply(inputs, summary)
	}

	genreLabel := string(genre.Lookup(cfg.Genre).Key)
	result, err := simulation.NewRunner(logger, opts).Run(ctx, inputs, cfg.Genre)
	if err != nil {
		metrics.ObserveRun(genreLabel, 0, 0, err)
		return nil, err
	}
	metrics.ObserveRun(genreLabel, len(result.Ensemble), result.Duration, nil)

	riskMetrics, err := analysis.Analyze(result.Ensemble, result.TotalInvestment)
	if err != nil {
		return nil, err
	}

	report := output.NewReport(result, riskMetrics, cfg.Output.HistogramBins, cfg.Output.ScatterPoints)
	report.Optimization = summary

	logger.Info("deal evaluated",
		zap.String("op", "engine.Evaluate"),
		zap.String("runId", result.RunID),
		zap.String("genre", genreLabel),
		zap.Int("trials", riskMetrics.Trials),
		zap.Float64("breakEvenProbability", riskMetrics.BreakEvenProbability),
		zap.Float64("var95", riskMetrics.VaR95),
		zap.Duration("duration", result.Duration),
	)

	return &report, nil
}
