// Package analysis turns a Monte Carlo ensemble into percentile-based risk
// metrics.
package analysis

import (
	"errors"
	"math"
	"sort"

	"github.com/iwvelando/deal-risk/internal/simulation"
	"github.com/iwvelando/deal-risk/pkg/constants"
)

// ErrEmptyEnsemble is returned when there are no outcomes to analyze.
var ErrEmptyEnsemble = errors.New("cannot analyze an empty ensemble")

// RiskMetrics summarizes one ensemble.
type RiskMetrics struct {
	Trials               int      `json:"trials"`
	TotalInvestment      float64  `json:"totalInvestment"`
	MedianRevenue        float64  `json:"medianRevenue"`
	MedianROI            float64  `json:"medianRoi"`
	BreakEvenProbability float64  `json:"breakEvenProbability"` // percent
	VaR95                float64  `json:"var95"`                // 5th percentile profit
	MeanProfit           float64  `json:"meanProfit"`
	ProfitStdDev         float64  `json:"profitStdDev"`
	P95Profit            float64  `json:"p95Profit"`
	ViralRate            float64  `json:"viralRate"` // percent
	Insights             Insights `json:"insights"`
}

// Insights are the tail values used for narrative text.
type Insights struct {
	P99Profit       float64 `json:"p99Profit"`
	MinLossWorst5   float64 `json:"minLossWorst5"`
	LossProbability float64 `json:"lossProbability"` // percent
}

// Analyze computes RiskMetrics from ensemble. The ensemble is not modified;
// a copy is sorted by profit.
func Analyze(ensemble simulation.Ensemble, totalInvestment float64) (RiskMetrics, error) {
	n := len(ensemble)
	if n == 0 {
		return RiskMetrics{}, ErrEmptyEnsemble
	}

	sorted := SortByProfit(ensemble)

	profitable := 0
	viral := 0
	sum := 0.0
	for _, o := range sorted {
		if o.Profit > 0 {
			profitable++
		}
		if o.Viral {
			viral++
		}
		sum += o.Profit
	}
	mean := sum / float64(n)
	variance := 0.0
	for _, o := range sorted {
		variance += (o.Profit - mean) * (o.Profit - mean)
	}
	variance /= float64(n)

	median := Percentile(sorted, constants.MedianFraction)
	var95 := Percentile(sorted, constants.VaRFraction).Profit
	breakEven := float64(profitable) / float64(n) * constants.PercentageMultiplier

	return RiskMetrics{
		Trials:               n,
		TotalInvestment:      totalInvestment,
		MedianRevenue:        median.Revenue,
		MedianROI:            median.ROI,
		BreakEvenProbability: breakEven,
		VaR95:                var95,
		MeanProfit:           mean,
		ProfitStdDev:         math.Sqrt(variance),
		P95Profit:            Percentile(sorted, constants.UpsideFraction).Profit,
		ViralRate:            float64(viral) / float64(n) * constants.PercentageMultiplier,
		Insights: Insights{
			P99Profit:       Percentile(sorted, constants.TailUpperFraction).Profit,
			MinLossWorst5:   math.Abs(var95),
			LossProbability: constants.PercentageMultiplier - breakEven,
		},
	}, nil
}

// SortByProfit returns a copy of ensemble ordered by ascending profit.
func SortByProfit(ensemble simulation.Ensemble) simulation.Ensemble {
	sorted := make(simulation.Ensemble, len(ensemble))
	copy(sorted, ensemble)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Profit < sorted[j].Profit
	})
	return sorted
}

// Percentile returns the outcome at floor(n*f) of a profit-sorted ensemble,
// clamped to the valid index range. It does not interpolate. sorted must be
// non-empty.
func Percentile(sorted simulation.Ensemble, f float64) simulation.TrialOutcome {
	idx := int(math.Floor(float64(len(sorted)) * f))
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
