// Package optimizer searches for the largest deal term that keeps a run's
// risk metrics within a configured bound.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/deal-risk/internal/analysis"
	"github.com/iwvelando/deal-risk/internal/config"
	"github.com/iwvelando/deal-risk/internal/metrics"
	"github.com/iwvelando/deal-risk/internal/simulation"
	"github.com/iwvelando/deal-risk/pkg/format"
	"github.com/iwvelando/deal-risk/pkg/mathutil"
	"github.com/iwvelando/deal-risk/pkg/optimization"
	"go.uber.org/zap"
)

// Runner evaluates one optimizer directive against a deal.
type Runner struct {
	logger    *zap.Logger
	inputs    simulation.DealInputs
	genre     string
	opts      simulation.Options
	directive config.OptimizerConfig
}

type evaluation struct {
	value  float64
	metric float64
}

// NewRunner constructs a Runner. The directive is normalized and validated;
// the caller's copy is not modified.
func NewRunner(logger *zap.Logger, inputs simulation.DealInputs, genreKey string, opts simulation.Options, directive *config.OptimizerConfig) (*Runner, error) {
	if directive == nil {
		return nil, fmt.Errorf("optimizer configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := *directive
	if err := d.Validate(); err != nil {
		return nil, err
	}
	probe := inputs
	setField(&probe, d.Field, *d.Min)
	if err := probe.Validate(); err != nil {
		if errors.Is(err, simulation.ErrZeroInvestment) {
			return nil, fmt.Errorf("optimizer minimum %s for %s leaves no investment: %w", format.Currency(*d.Min), d.Field, err)
		}
		return nil, err
	}

	// Every evaluation replays the same draws.
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	return &Runner{logger: logger, inputs: inputs, genre: genreKey, opts: opts, directive: d}, nil
}

// Run executes the search.
func (r *Runner) Run(ctx context.Context) (*optimization.Summary, error) {
	d := r.directive
	original := fieldValue(r.inputs, d.Field)

	summary := &optimization.Summary{
		Field:           d.Field,
		Kind:            d.Kind,
		Target:          d.Target,
		Original:        original,
		OriginalDisplay: format.Currency(original),
	}

	lower, err := r.evaluate(ctx, *d.Min)
	if err != nil {
		return nil, err
	}
	if !r.feasible(lower) {
		summary.Value = lower.value
		summary.Metric = lower.metric
		summary.Notes = append(summary.Notes, fmt.Sprintf("unable to satisfy %s even at minimum %s",
			r.describeTarget(), format.Currency(*d.Min)))
		r.finish(summary)
		return summary, nil
	}

	upper, err := r.evaluate(ctx, *d.Max)
	if err != nil {
		return nil, err
	}
	if r.feasible(upper) {
		summary.Value = upper.value
		summary.Metric = upper.metric
		summary.Converged = true
		summary.Notes = append(summary.Notes, fmt.Sprintf("%s holds across the full range; maximum %s selected",
			r.describeTarget(), format.Currency(*d.Max)))
		r.finish(summary)
		return summary, nil
	}

	best := lower
	lo, hi := lower.value, upper.value
	iterations := 0
	for iterations < d.MaxIterations && !mathutil.WithinTolerance(lo, hi, d.Tolerance) {
		iterations++
		mid := mathutil.Clamp(mathutil.Round(lo+(hi-lo)/2), lo, hi)
		eval, err := r.evaluate(ctx, mid)
		if err != nil {
			return nil, err
		}
		if r.feasible(eval) {
			lo = mid
			best = eval
		} else {
			hi = mid
		}
	}

	summary.Value = best.value
	summary.Metric = best.metric
	summary.Iterations = iterations
	summary.Converged = mathutil.WithinTolerance(lo, hi, d.Tolerance)
	if !summary.Converged {
		summary.Notes = append(summary.Notes, fmt.Sprintf("search stopped after %d iterations with a gap of %s",
			iterations, format.Currency(hi-lo)))
	}
	r.finish(summary)
	return summary, nil
}

func (r *Runner) finish(summary *optimization.Summary) {
	summary.ValueDisplay = format.Currency(summary.Value)
	r.logger.Info("optimizer adjusted deal field",
		zap.String("op", "optimizer.Run"),
		zap.String("field", summary.Field),
		zap.String("kind", summary.Kind),
		zap.Float64("target", summary.Target),
		zap.Float64("original", summary.Original),
		zap.Float64("optimized", summary.Value),
		zap.Float64("metric", summary.Metric),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
}

func (r *Runner) evaluate(ctx context.Context, value float64) (evaluation, error) {
	inputs := r.inputs
	setField(&inputs, r.directive.Field, value)

	runner := simulation.NewRunner(r.logger, r.opts)
	result, err := runner.Run(ctx, inputs, r.genre)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer evaluation at %s failed: %w", format.Currency(value), err)
	}
	metrics.OptimizerEvaluationsTotal.WithLabelValues(r.directive.Field, r.directive.Kind).Inc()

	m, err := analysis.Analyze(result.Ensemble, result.TotalInvestment)
	if err != nil {
		return evaluation{}, err
	}

	eval := evaluation{value: value}
	switch r.directive.Kind {
	case config.OptimizerKindVaRFloor:
		eval.metric = m.VaR95
	default:
		eval.metric = m.BreakEvenProbability
	}

	r.logger.Debug("optimizer evaluated candidate",
		zap.String("op", "optimizer.evaluate"),
		zap.String("runId", result.RunID),
		zap.Float64("value", value),
		zap.Float64("metric", eval.metric),
	)
	return eval, nil
}

func (r *Runner) feasible(e evaluation) bool {
	switch r.directive.Kind {
	case config.OptimizerKindVaRFloor:
		return e.metric >= -r.directive.Target
	default:
		return e.metric >= r.directive.Target
	}
}

func (r *Runner) describeTarget() string {
	switch r.directive.Kind {
	case config.OptimizerKindVaRFloor:
		return fmt.Sprintf("5th percentile loss of at most %s", format.Currency(r.directive.Target))
	default:
		return fmt.Sprintf("break-even probability of at least %.1f%%", r.directive.Target)
	}
}

func fieldValue(inputs simulation.DealInputs, field string) float64 {
	switch field {
	case config.OptimizerFieldContentBudget:
		return inputs.ContentBudget
	default:
		return inputs.Advance
	}
}

func setField(inputs *simulation.DealInputs, field string, value float64) {
	switch field {
	case config.OptimizerFieldContentBudget:
		inputs.ContentBudget = value
	default:
		inputs.Advance = value
	}
}

// Apply returns inputs with the summary's optimized value written to its field.
func Apply(inputs simulation.DealInputs, summary *optimization.Summary) simulation.DealInputs {
	if summary == nil {
		return inputs
	}
	setField(&inputs, summary.Field, summary.Value)
	return inputs
}
