// Package metrics provides Prometheus metrics for simulation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// SimulationsTotal tracks completed and failed runs
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealrisk_simulations_total",
			Help: "Total number of Monte Carlo runs",
		},
		[]string{"genre", "status"},
	)

	// TrialsTotal tracks simulated trials across all runs
	TrialsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealrisk_trials_total",
			Help: "Total number of simulated trials",
		},
	)

	// SimulationDuration tracks wall time per run
	SimulationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealrisk_simulation_duration_seconds",
			Help:    "Monte Carlo run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"genre"},
	)

	// OptimizerEvaluationsTotal tracks runs made on behalf of the optimizer
	OptimizerEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealrisk_optimizer_evaluations_total",
			Help: "Total number of optimizer candidate evaluations",
		},
		[]string{"field", "kind"},
	)

	// RateLimitedTotal tracks requests rejected by the API rate limiter
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealrisk_rate_limited_total",
			Help: "Total number of API requests rejected by rate limiting",
		},
	)
)

// ObserveRun records the outcome of one simulation run.
func ObserveRun(genre string, trials int, duration time.Duration, err error) {
	if err != nil {
		SimulationsTotal.WithLabelValues(genre, StatusFailure).Inc()
		return
	}
	SimulationsTotal.WithLabelValues(genre, StatusSuccess).Inc()
	TrialsTotal.Add(float64(trials))
	SimulationDuration.WithLabelValues(genre).Observe(duration.Seconds())
}
