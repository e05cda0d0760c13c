// Package testutil provides common utility functions for testing.
package testutil

import "math"

// SequenceSource replays a fixed list of uniform samples, wrapping around when
// exhausted. It satisfies randvar.Source.
type SequenceSource struct {
	Values []float64
	pos    int
}

// NewSequenceSource returns a SequenceSource over values.
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{Values: values}
}

// Float64 returns the next value in the sequence, or 0.5 when empty.
func (s *SequenceSource) Float64() float64 {
	if len(s.Values) == 0 {
		return 0.5
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}

// Draws returns how many samples have been consumed.
func (s *SequenceSource) Draws() int {
	return s.pos
}

// MeanAndStdDev returns the arithmetic mean and population standard deviation
// of values. Both are zero for an empty slice.
func MeanAndStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

