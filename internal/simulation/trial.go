package simulation

import (
	"math"

	"github.com/iwvelando/deal-risk/pkg/constants"
	"github.com/iwvelando/deal-risk/pkg/genre"
	"github.com/iwvelando/deal-risk/pkg/randvar"
)

// TrialOutcome is one Monte Carlo sample.
type TrialOutcome struct {
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
	ROI     float64 `json:"roi"` // percent
	Streams float64 `json:"streams"`
	Viral   bool    `json:"viral"`
}

// Ensemble is the set of outcomes from one run.
type Ensemble []TrialOutcome

// BaseConversion returns streams per follower, falling back to a fixed rate
// for artists without a follower base.
func BaseConversion(inputs DealInputs) float64 {
	if inputs.SocialFollowers > 0 {
		return inputs.PrevStreams / inputs.SocialFollowers
	}
	return constants.FallbackStreamsPerFollower
}

// SimulateOne draws a single outcome. totalInvestment must be positive; it is
// passed in so the per-run constant is computed once.
func SimulateOne(g *randvar.Generator, inputs DealInputs, profile genre.Profile, totalInvestment float64) TrialOutcome {
	baseConversion := BaseConversion(inputs)

	marketingReach := inputs.Marketing * g.Normal(profile.MarketingEfficiency, constants.MarketingEfficiencyStdDev)
	organicReach := inputs.SocialFollowers * g.Normal(constants.OrganicReachMean, constants.OrganicReachStdDev)
	totalReach := math.Max(0, organicReach+marketingReach)

	performance := g.LogNormal(profile.MultiplierMean, profile.MultiplierSigma)

	viral := g.Bernoulli(profile.ViralProbability)
	viralMultiplier := 1.0
	if viral {
		// Not clamped; draws below 1 are kept.
		viralMultiplier = g.Normal(constants.ViralMultiplierMean, constants.ViralMultiplierStdDev)
	}

	streams := math.Max(0, totalReach*baseConversion*performance*viralMultiplier)
	streamRevenue := streams * constants.RevenuePerStream

	ancillaryPct := math.Max(0, g.Normal(constants.AncillaryMean, constants.AncillaryStdDev))
	revenue := streamRevenue + streamRevenue*ancillaryPct

	profit := revenue - totalInvestment
	return TrialOutcome{
		Revenue: revenue,
		Profit:  profit,
		ROI:     profit / totalInvestment * constants.PercentageMultiplier,
		Streams: streams,
		Viral:   viral,
	}
}
