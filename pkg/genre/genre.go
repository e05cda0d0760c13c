// Package genre holds the per-genre stochastic parameters used by the trial
// simulator.
package genre

import "strings"

// Key identifies a genre profile.
type Key string

// Supported genre keys.
const (
	Pop    Key = "pop"
	HipHop Key = "hiphop"
	Rock   Key = "rock"
	Indie  Key = "indie"
	Custom Key = "custom"
)

// Profile holds the stochastic parameters for one genre.
type Profile struct {
	Key                 Key     `json:"key"`
	MultiplierMean      float64 `json:"multiplierMean"`      // log-normal location
	MultiplierSigma     float64 `json:"multiplierSigma"`     // log-normal scale
	MarketingEfficiency float64 `json:"marketingEfficiency"` // reach per currency unit of marketing
	ViralProbability    float64 `json:"viralProbability"`
}

var profiles = map[Key]Profile{
	Pop:    {Key: Pop, MultiplierMean: 0.0, MultiplierSigma: 0.8, MarketingEfficiency: 15, ViralProbability: 0.02},
	HipHop: {Key: HipHop, MultiplierMean: 0.2, MultiplierSigma: 0.6, MarketingEfficiency: 18, ViralProbability: 0.015},
	Rock:   {Key: Rock, MultiplierMean: -0.1, MultiplierSigma: 0.3, MarketingEfficiency: 8, ViralProbability: 0.005},
	Indie:  {Key: Indie, MultiplierMean: 0.1, MultiplierSigma: 0.4, MarketingEfficiency: 12, ViralProbability: 0.01},
	Custom: {Key: Custom, MultiplierMean: 0.0, MultiplierSigma: 0.6, MarketingEfficiency: 15, ViralProbability: 0.01},
}

var ordered = []Key{Pop, HipHop, Rock, Indie, Custom}

// Normalize trims and lower-cases a user-supplied genre selector.
func Normalize(value string) Key {
	return Key(strings.ToLower(strings.TrimSpace(value)))
}

// Lookup returns the profile for value. Unknown or empty selectors resolve to
// the custom profile.
func Lookup(value string) Profile {
	if p, ok := profiles[Normalize(value)]; ok {
		return p
	}
	return profiles[Custom]
}

// Known reports whether value names a profile in the table.
func Known(value string) bool {
	_, ok := profiles[Normalize(value)]
	return ok
}

// Keys returns all genre keys in display order.
func Keys() []Key {
	return append([]Key(nil), ordered...)
}

// All returns every profile in display order.
func All() []Profile {
	out := make([]Profile, 0, len(ordered))
	for _, k := range ordered {
		out = append(out, profiles[k])
	}
	return out
}
