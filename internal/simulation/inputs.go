// Package simulation generates Monte Carlo outcome ensembles for an artist
// investment deal.
package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/deal-risk/pkg/validation"
)

var (
	// ErrInvalidIterations is returned when a run requests no trials.
	ErrInvalidIterations = errors.New("iterations must be positive")

	// ErrZeroInvestment is returned when advance, marketing and content
	// budget sum to zero, leaving ROI undefined.
	ErrZeroInvestment = errors.New("total investment must be positive")

	// ErrNonFiniteInput is returned when an input or the investment total is
	// infinite or NaN.
	ErrNonFiniteInput = errors.New("deal inputs must be finite")
)

// DealInputs is the caller-supplied parameter record for a run.
type DealInputs struct {
	SocialFollowers float64 `json:"socialFollowers" yaml:"socialFollowers" validate:"gte=0"`
	PrevStreams     float64 `json:"prevStreams" yaml:"prevStreams" validate:"gte=0"`
	Advance         float64 `json:"advance" yaml:"advance" validate:"gte=0"`
	Marketing       float64 `json:"marketing" yaml:"marketing" validate:"gte=0"`
	ContentBudget   float64 `json:"contentBudget" yaml:"contentBudget" validate:"gte=0"`
	Iterations      int     `json:"iterations" yaml:"iterations"`
}

// TotalInvestment is the sum of all money put into the deal.
func (d DealInputs) TotalInvestment() float64 {
	return d.Advance + d.Marketing + d.ContentBudget
}

// Validate rejects inputs the simulator cannot run.
func (d DealInputs) Validate() error {
	if d.Iterations <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidIterations, d.Iterations)
	}
	if err := validation.Struct(d); err != nil {
		return err
	}
	for _, v := range []float64{d.SocialFollowers, d.PrevStreams, d.TotalInvestment()} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return ErrNonFiniteInput
		}
	}
	if d.TotalInvestment() <= 0 {
		return ErrZeroInvestment
	}
	return nil
}
