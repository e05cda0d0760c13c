package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/deal-risk/pkg/constants"
	"github.com/iwvelando/deal-risk/pkg/genre"
	"github.com/iwvelando/deal-risk/pkg/randvar"
	"go.uber.org/zap"
)

// seedStride spaces per-worker seeds apart.
const seedStride = 0x9e3779b97f4a7c15

// cancelCheckInterval is how many trials a worker runs between context checks.
const cancelCheckInterval = 1024

// Options tunes a Runner.
type Options struct {
	// Workers is the number of goroutines sharing the trials. Values below 1
	// run on the calling goroutine.
	Workers int
	// Seed fixes the random sequence. Zero seeds from the clock.
	Seed uint64
}

// Runner repeats the trial simulator to build an Ensemble.
type Runner struct {
	logger  *zap.Logger
	workers int
	seed    uint64
}

// Result is a completed run.
type Result struct {
	RunID           string
	Inputs          DealInputs
	Profile         genre.Profile
	TotalInvestment float64
	Seed            uint64
	Ensemble        Ensemble
	Duration        time.Duration
}

// NewRunner constructs a Runner.
func NewRunner(logger *zap.Logger, opts Options) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = constants.DefaultWorkers
	}
	if workers > constants.MaxWorkers {
		workers = constants.MaxWorkers
	}
	return &Runner{logger: logger, workers: workers, seed: opts.Seed}
}

// Run simulates inputs.Iterations trials for the selected genre. An empty or
// unknown genre selects the custom profile. With a fixed seed and worker count
// the ensemble is reproducible.
func (r *Runner) Run(ctx context.Context, inputs DealInputs, genreKey string) (*Result, error) {
	if err := inputs.Validate(); err != nil {
		return nil, err
	}

	seed := r.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	workers := r.workers
	if workers > inputs.Iterations {
		workers = inputs.Iterations
	}

	generators := make([]*randvar.Generator, workers)
	for w := range generators {
		generators[w] = randvar.NewSeeded(seed + uint64(w)*seedStride)
	}

	result, err := r.run(ctx, inputs, genreKey, generators)
	if err != nil {
		return nil, err
	}
	result.Seed = seed
	return result, nil
}

// RunWithSource runs every trial on the calling goroutine, drawing from src.
func (r *Runner) RunWithSource(ctx context.Context, src randvar.Source, inputs DealInputs, genreKey string) (*Result, error) {
	if err := inputs.Validate(); err != nil {
		return nil, err
	}
	return r.run(ctx, inputs, genreKey, []*randvar.Generator{randvar.New(src)})
}

func (r *Runner) run(ctx context.Context, inputs DealInputs, genreKey string, generators []*randvar.Generator) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	profile := genre.Lookup(genreKey)
	totalInvestment := inputs.TotalInvestment()
	n := inputs.Iterations

	r.logger.Debug("starting simulation",
		zap.String("op", "simulation.Run"),
		zap.String("runId", runID),
		zap.String("genre", string(profile.Key)),
		zap.Int("iterations", n),
		zap.Int("workers", len(generators)),
	)

	ensemble := make(Ensemble, n)
	chunk := (n + len(generators) - 1) / len(generators)
	errs := make([]error, len(generators))

	var wg sync.WaitGroup
	for w, g := range generators {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w int, g *randvar.Generator, part Ensemble) {
			defer wg.Done()
			for i := range part {
				if i%cancelCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						errs[w] = err
						return
					}
				}
				part[i] = SimulateOne(g, inputs, profile, totalInvestment)
			}
		}(w, g, ensemble[lo:hi])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			r.logger.Warn("simulation aborted",
				zap.String("op", "simulation.Run"),
				zap.String("runId", runID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("simulation %s aborted: %w", runID, err)
		}
	}

	elapsed := time.Since(start)
	r.logger.Debug("simulation finished",
		zap.String("op", "simulation.Run"),
		zap.String("runId", runID),
		zap.Duration("duration", elapsed),
	)

	return &Result{
		RunID:           runID,
		Inputs:          inputs,
		Profile:         profile,
		TotalInvestment: totalInvestment,
		Ensemble:        ensemble,
		Duration:        elapsed,
	}, nil
}
