// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iwvelando/deal-risk/internal/analysis"
	"github.com/iwvelando/deal-risk/internal/simulation"
	"github.com/iwvelando/deal-risk/pkg/chart"
	"github.com/iwvelando/deal-risk/pkg/constants"
	"github.com/iwvelando/deal-risk/pkg/format"
	"github.com/iwvelando/deal-risk/pkg/genre"
	"github.com/iwvelando/deal-risk/pkg/optimization"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report is everything a presentation layer needs about one run.
type Report struct {
	RunID        string                `json:"runId"`
	Genre        genre.Profile         `json:"genre"`
	Inputs       simulation.DealInputs `json:"inputs"`
	Seed         uint64                `json:"seed,omitempty"`
	Duration     time.Duration         `json:"duration"`
	Metrics      analysis.RiskMetrics  `json:"metrics"`
	Insights     []string              `json:"insights"`
	Histogram    []chart.Bin           `json:"histogram,omitempty"`
	Scatter      []chart.Point         `json:"scatter,omitempty"`
	Optimization *optimization.Summary `json:"optimization,omitempty"`
}

// NewReport assembles a Report from a completed run and its metrics.
func NewReport(result *simulation.Result, metrics analysis.RiskMetrics, histogramBins, scatterPoints int) Report {
	return Report{
		RunID:     result.RunID,
		Genre:     result.Profile,
		Inputs:    result.Inputs,
		Seed:      result.Seed,
		Duration:  result.Duration,
		Metrics:   metrics,
		Insights:  Insights(metrics),
		Histogram: chart.Histogram(result.Ensemble, histogramBins),
		Scatter:   chart.Scatter(result.Ensemble, scatterPoints),
	}
}

// Insights renders the narrative summary lines for m.
func Insights(m analysis.RiskMetrics) []string {
	return []string{
		fmt.Sprintf("There is a %s chance of losing money on this deal.", format.Percent(m.Insights.LossProbability)),
		fmt.Sprintf("In the worst 5%% of outcomes, you lose at least %s.", format.Currency(m.Insights.MinLossWorst5)),
		fmt.Sprintf("In the best 1%% of outcomes, profit reaches %s.", format.Currency(m.Insights.P99Profit)),
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, report Report) error {
	p := message.NewPrinter(language.English)
	m := report.Metrics

	lines := []struct {
		label string
		value string
	}{
		{"Genre", string(report.Genre.Key)},
		{"Trials", format.Count(float64(m.Trials))},
		{"Total investment", format.Currency(m.TotalInvestment)},
		{"Median revenue", format.Currency(m.MedianRevenue)},
		{"Median ROI", format.Percent(m.MedianROI)},
		{"Break-even probability", format.Percent(m.BreakEvenProbability)},
		{"VaR 95%", format.Currency(m.VaR95)},
		{"Mean profit", format.Currency(m.MeanProfit)},
		{"Profit std dev", format.Currency(m.ProfitStdDev)},
		{"95th percentile profit", format.Currency(m.P95Profit)},
		{"99th percentile profit", format.Currency(m.Insights.P99Profit)},
		{"Viral rate", format.Percent(m.ViralRate)},
	}

	if _, err := p.Fprintf(w, "--- Risk profile for run %s ---\n", report.RunID); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := p.Fprintf(w, "%-24s| %s\n", line.label, line.value); err != nil {
			return err
		}
	}

	if len(report.Insights) > 0 {
		if _, err := fmt.Fprintf(w, "\nInsights:\n"); err != nil {
			return err
		}
		for _, insight := range report.Insights {
			if _, err := fmt.Fprintf(w, "  - %s\n", insight); err != nil {
				return err
			}
		}
	}

	if s := report.Optimization; s != nil {
		if _, err := fmt.Fprintf(w, "\nOptimization (%s, %s target %.2f):\n", s.Field, s.Kind, s.Target); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s -> %s (metric %.2f, %d iterations, converged %t)\n",
			displayOr(s.OriginalDisplay, s.Original), displayOr(s.ValueDisplay, s.Value),
			s.Metric, s.Iterations, s.Converged); err != nil {
			return err
		}
		for _, note := range s.Notes {
			if _, err := fmt.Fprintf(w, "  note: %s\n", note); err != nil {
				return err
			}
		}
	}
	return nil
}

// CsvFormat outputs the metrics as metric,value rows.
func CsvFormat(w io.Writer, report Report) error {
	m := report.Metrics
	rows := [][]string{
		{"metric", "value"},
		{"run_id", report.RunID},
		{"genre", string(report.Genre.Key)},
		{"trials", strconv.Itoa(m.Trials)},
		{"total_investment", csvFloat(m.TotalInvestment)},
		{"median_revenue", csvFloat(m.MedianRevenue)},
		{"median_roi", csvFloat(m.MedianROI)},
		{"break_even_probability", csvFloat(m.BreakEvenProbability)},
		{"var_95", csvFloat(m.VaR95)},
		{"mean_profit", csvFloat(m.MeanProfit)},
		{"profit_std_dev", csvFloat(m.ProfitStdDev)},
		{"p95_profit", csvFloat(m.P95Profit)},
		{"p99_profit", csvFloat(m.Insights.P99Profit)},
		{"min_loss_worst_5", csvFloat(m.Insights.MinLossWorst5)},
		{"loss_probability", csvFloat(m.Insights.LossProbability)},
		{"viral_rate", csvFloat(m.ViralRate)},
	}
	if s := report.Optimization; s != nil {
		rows = append(rows,
			[]string{"optimized_field", s.Field},
			[]string{"optimized_value", csvFloat(s.Value)},
			[]string{"optimized_metric", csvFloat(s.Metric)},
			[]string{"optimizer_converged", strconv.FormatBool(s.Converged)},
		)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv output: %w", err)
	}
	return nil
}

// JSONFormat outputs the full report as indented JSON.
func JSONFormat(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode json output: %w", err)
	}
	return nil
}

// Write dispatches to the formatter named by outputFormat.
func Write(w io.Writer, outputFormat string, report Report) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, report)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

func csvFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func displayOr(display string, value float64) string {
	if display != "" {
		return display
	}
	return format.Currency(value)
}
