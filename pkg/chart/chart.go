// Package chart shapes an outcome ensemble into histogram and scatter series
// for presentation layers.
package chart

import (
	"math"

	"github.com/iwvelando/deal-risk/internal/simulation"
	"github.com/iwvelando/deal-risk/pkg/constants"
)

// Bin is one equal-width profit histogram bucket. Lower is inclusive; Upper is
// exclusive except for the last bin.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Point is one (streams, roi) pair.
type Point struct {
	Streams float64 `json:"streams"`
	ROI     float64 `json:"roi"`
}

// Histogram bins profits into bins equal-width buckets spanning the observed
// range. bins <= 0 uses the default. An ensemble whose profits are all equal
// yields a single bin.
func Histogram(ensemble simulation.Ensemble, bins int) []Bin {
	if len(ensemble) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = constants.DefaultHistogramBins
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, o := range ensemble {
		lo = math.Min(lo, o.Profit)
		hi = math.Max(hi, o.Profit)
	}
	if hi == lo {
		return []Bin{{Lower: lo, Upper: hi, Count: len(ensemble)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, o := range ensemble {
		idx := int((o.Profit - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// Scatter samples at most maxPoints evenly strided (streams, roi) pairs.
// maxPoints <= 0 uses the default.
func Scatter(ensemble simulation.Ensemble, maxPoints int) []Point {
	if len(ensemble) == 0 {
		return nil
	}
	if maxPoints <= 0 {
		maxPoints = constants.DefaultScatterPoints
	}

	step := 1
	if len(ensemble) > maxPoints {
		step = int(math.Ceil(float64(len(ensemble)) / float64(maxPoints)))
	}

	out := make([]Point, 0, len(ensemble)/step+1)
	for i := 0; i < len(ensemble); i += step {
		out = append(out, Point{Streams: ensemble[i].Streams, ROI: ensemble[i].ROI})
	}
	return out
}
