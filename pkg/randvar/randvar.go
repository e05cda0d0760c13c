// Package randvar produces normally and log-normally distributed samples from
// an injectable uniform source.
package randvar

import (
	"math"
	"math/rand/v2"
	"time"
)

// Source yields uniform samples in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a PCG-backed source. A zero seed selects a seed derived
// from the current time.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator draws variates from a single Source. A Generator is not safe for
// concurrent use; give each goroutine its own.
type Generator struct {
	src Source
}

// New wraps src. A nil src falls back to a time-seeded source.
func New(src Source) *Generator {
	if src == nil {
		src = NewSource(0)
	}
	return &Generator{src: src}
}

// NewSeeded is shorthand for New(NewSource(seed)).
func NewSeeded(seed uint64) *Generator {
	return New(NewSource(seed))
}

// Uniform returns the next raw sample from the underlying source.
func (g *Generator) Uniform() float64 {
	return g.src.Float64()
}

// openUniform draws from (0, 1), resampling exact zeros so ln(u) is finite.
func (g *Generator) openUniform() float64 {
	for {
		if u := g.Uniform(); u != 0 {
			return u
		}
	}
}

// Normal returns one sample from N(mean, stdDev^2) using the Box-Muller
// transform. The paired second variate is discarded.
func (g *Generator) Normal(mean, stdDev float64) float64 {
	u := g.openUniform()
	v := g.openUniform()
	z := math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
	return z*stdDev + mean
}

// LogNormal returns exp(Normal(mu, sigma)).
func (g *Generator) LogNormal(mu, sigma float64) float64 {
	return math.Exp(g.Normal(mu, sigma))
}

// Bernoulli reports success with probability p.
func (g *Generator) Bernoulli(p float64) bool {
	return g.Uniform() < p
}
