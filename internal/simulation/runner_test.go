package simulation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/deal-risk/pkg/genre"
	"github.com/iwvelando/deal-risk/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunLength(t *testing.T) {
	runner := NewRunner(zap.NewNop(), Options{Seed: 1})
	for _, k := range []int{1, 2, 17, 1000} {
		inputs := indieDeal()
		inputs.Iterations = k

		result, err := runner.Run(context.Background(), inputs, "indie")
		require.NoError(t, err)
		assert.Len(t, result.Ensemble, k)
		assert.NotEmpty(t, result.RunID)
		assert.Equal(t, 80000.0, result.TotalInvestment)
	}
}

func TestRunParallelLength(t *testing.T) {
	for _, workers := range []int{2, 3, 8, 64} {
		runner := NewRunner(nil, Options{Seed: 5, Workers: workers})
		inputs := indieDeal()
		inputs.Iterations = 1001

		result, err := runner.Run(context.Background(), inputs, "pop")
		require.NoError(t, err)
		require.Len(t, result.Ensemble, 1001)
		for i, out := range result.Ensemble {
			require.False(t, out.Revenue == 0 && out.Streams == 0 && out.Profit == 0, "trial %d left unfilled", i)
		}
	}
}

func TestRunReproducible(t *testing.T) {
	inputs := indieDeal()
	inputs.Iterations = 500

	for _, workers := range []int{1, 4} {
		a, err := NewRunner(nil, Options{Seed: 77, Workers: workers}).Run(context.Background(), inputs, "hiphop")
		require.NoError(t, err)
		b, err := NewRunner(nil, Options{Seed: 77, Workers: workers}).Run(context.Background(), inputs, "hiphop")
		require.NoError(t, err)

		assert.Equal(t, a.Ensemble, b.Ensemble)
		assert.Equal(t, uint64(77), a.Seed)
		assert.NotEqual(t, a.RunID, b.RunID)
	}
}

func TestRunRejectsInvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DealInputs)
		target error
	}{
		{"Zero iterations", func(d *DealInputs) { d.Iterations = 0 }, ErrInvalidIterations},
		{"Negative iterations", func(d *DealInputs) { d.Iterations = -3 }, ErrInvalidIterations},
		{"Zero investment", func(d *DealInputs) { d.Advance, d.Marketing, d.ContentBudget = 0, 0, 0 }, ErrZeroInvestment},
		{"Infinite total", func(d *DealInputs) { d.Advance, d.Marketing = 1e308, 1e308 }, ErrNonFiniteInput},
		{"NaN followers", func(d *DealInputs) { d.SocialFollowers = math.NaN() }, ErrNonFiniteInput},
		{"Negative advance", func(d *DealInputs) { d.Advance = -1 }, nil},
		{"Negative followers", func(d *DealInputs) { d.SocialFollowers = -10 }, nil},
	}

	runner := NewRunner(nil, Options{Seed: 1})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := indieDeal()
			tt.mutate(&inputs)

			result, err := runner.Run(context.Background(), inputs, "indie")
			require.Error(t, err)
			assert.Nil(t, result)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target), "expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, Options{Seed: 1, Workers: 2}).Run(ctx, indieDeal(), "indie")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunGenreFallback(t *testing.T) {
	inputs := indieDeal()
	inputs.Iterations = 10
	runner := NewRunner(nil, Options{Seed: 3})

	for _, key := range []string{"", "polka"} {
		result, err := runner.Run(context.Background(), inputs, key)
		require.NoError(t, err)
		assert.Equal(t, genre.Custom, result.Profile.Key)
	}
}

func TestRunWithSourceDeterministic(t *testing.T) {
	inputs := indieDeal()
	inputs.Iterations = 3
	src := drawSequence(meanDraw, meanDraw, meanDraw, []float64{0.9}, meanDraw)

	result, err := NewRunner(nil, Options{}).RunWithSource(context.Background(), src, inputs, "indie")
	require.NoError(t, err)
	require.Len(t, result.Ensemble, 3)
	for _, out := range result.Ensemble[1:] {
		assert.InEpsilon(t, result.Ensemble[0].Profit, out.Profit, 1e-12)
	}
	assert.Equal(t, 27, src.Draws())
}

func TestRunZeroFollowersProceeds(t *testing.T) {
	inputs := indieDeal()
	inputs.SocialFollowers = 0
	inputs.Iterations = 2000

	result, err := NewRunner(nil, Options{Seed: 11}).Run(context.Background(), inputs, "indie")
	require.NoError(t, err)
	for _, out := range result.Ensemble {
		require.False(t, math.IsNaN(out.Profit) || math.IsInf(out.Profit, 0))
		require.GreaterOrEqual(t, out.Streams, 0.0)
	}
}

func profits(e Ensemble) []float64 {
	out := make([]float64, len(e))
	for i, o := range e {
		out[i] = o.Profit
	}
	return out
}

func TestGenreSensitivity(t *testing.T) {
	inputs := indieDeal()
	inputs.Iterations = 20000
	runner := NewRunner(nil, Options{Seed: 123, Workers: 4})

	rock, err := runner.Run(context.Background(), inputs, "rock")
	require.NoError(t, err)
	pop, err := runner.Run(context.Background(), inputs, "pop")
	require.NoError(t, err)

	_, rockStd := testutil.MeanAndStdDev(profits(rock.Ensemble))
	_, popStd := testutil.MeanAndStdDev(profits(pop.Ensemble))
	assert.Less(t, rockStd*2, popStd, "rock stddev %.2f should be well below pop stddev %.2f", rockStd, popStd)
}

func TestViralRarity(t *testing.T) {
	const k = 50000
	inputs := indieDeal()
	inputs.Iterations = k
	p := genre.Lookup("pop").ViralProbability
	expected := float64(k) * p
	tolerance := 5 * math.Sqrt(float64(k)*p*(1-p))

	for seed := uint64(1); seed <= 5; seed++ {
		result, err := NewRunner(nil, Options{Seed: seed, Workers: 2}).Run(context.Background(), inputs, "pop")
		require.NoError(t, err)

		viral := 0
		for _, out := range result.Ensemble {
			if out.Viral {
				viral++
			}
		}
		assert.InDelta(t, expected, float64(viral), tolerance, "seed %d", seed)
	}
}
