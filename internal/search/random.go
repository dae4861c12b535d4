package search

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/copyleftdev/FJORD/internal/optimization"
)

// RandomSearch implements uniform random sampling over the parameter
// space. It is the baseline driver: no structure is assumed beyond the
// parameter kinds, so it works for continuous, integer and categorical
// spaces alike.
type RandomSearch struct {
	// Configuration
	config optimization.SearchConfig

	// Pool of evaluators for parallel candidate evaluation
	pool *EvaluatorPool

	// Random number generator
	rng *rand.Rand

	// Best solution found
	bestSolution *optimization.Solution

	// History of evaluations
	history []optimization.Evaluation

	// For cancellation
	cancel context.CancelFunc
}

// NewRandomSearch creates a new random sampling driver
func NewRandomSearch(config optimization.SearchConfig) (*RandomSearch, error) {
	config = searchDefaults(config)

	// Initialize random number generator
	rng := rand.New(rand.NewSource(config.RandomSeed))
	if config.RandomSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &RandomSearch{
		config:  config,
		rng:     rng,
		history: make([]optimization.Evaluation, 0, config.MaxIterations),
	}, nil
}

// WithPool attaches an evaluator pool. A pool is required when
// Workers is greater than one, because the shared objective and
// feasibility callables are not safe for concurrent use.
func (rs *RandomSearch) WithPool(pool *EvaluatorPool) *RandomSearch {
	rs.pool = pool
	return rs
}

// Optimize runs the random search process
func (rs *RandomSearch) Optimize(ctx context.Context, config optimization.SearchConfig) (*optimization.Result, error) {
	// Update config if provided
	if config.Objective != nil {
		rs.config = searchDefaults(config)
	}
	if err := validateConfig(rs.config); err != nil {
		return nil, err
	}

	// Create a cancellable context
	ctx, rs.cancel = context.WithCancel(ctx)
	defer rs.cancel()

	// Draw all candidates up front so a given seed produces the same
	// sequence regardless of the worker count
	candidates := make([]optimization.Assignment, rs.config.MaxIterations)
	for i := range candidates {
		candidates[i] = rs.sampleAssignment()
	}

	values := make([]float64, len(candidates))
	errs := make([]error, len(candidates))

	if rs.config.Workers > 1 {
		if rs.pool == nil {
			return nil, optimization.NewError("parallel evaluation requires an evaluator pool").
				WithComponent("search").WithOperation("optimize")
		}
		rs.evaluateParallel(ctx, candidates, values, errs)
	} else {
		rs.evaluateSerial(ctx, candidates, values, errs)
	}

	if err := ctx.Err(); err != nil {
		// When context is cancelled, return nil result with the context error
		return nil, err
	}

	// Fold outcomes in candidate order so ties resolve to the earliest
	// evaluation
	for i, candidate := range candidates {
		if errs[i] != nil {
			return nil, fmt.Errorf("error evaluating objective function: %v", errs[i])
		}

		rs.updateBestSolution(candidate, values[i])

		// Record evaluation
		eval := optimization.Evaluation{
			Iteration: i,
			Solution: &optimization.Solution{
				Assignment: candidate,
				Value:      values[i],
			},
		}
		rs.history = append(rs.history, eval)
	}

	return &optimization.Result{
		BestSolution: rs.bestSolution,
		History:      rs.history,
		Iterations:   len(rs.history),
		Converged:    false,
	}, nil
}

// evaluateSerial evaluates candidates one at a time with the shared
// callables from the config
func (rs *RandomSearch) evaluateSerial(ctx context.Context, candidates []optimization.Assignment, values []float64, errs []error) {
	for i, candidate := range candidates {
		select {
		case <-ctx.Done():
			return
		default:
			// Continue with evaluation
		}

		values[i], errs[i] = screen(rs.config.Objective, rs.config.Constraints, candidate)
		if errs[i] != nil {
			return
		}
	}
}

// evaluateParallel fans candidates out to Workers goroutines, each
// drawing its own evaluator from the pool
func (rs *RandomSearch) evaluateParallel(ctx context.Context, candidates []optimization.Assignment, values []float64, errs []error) {
	sem := make(chan struct{}, rs.config.Workers)
	var wg sync.WaitGroup

	for i := range candidates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			ev := rs.pool.Get()
			defer rs.pool.Put(ev)

			values[i], errs[i] = screenEvaluator(ev, candidates[i])
		}(i)
	}

	wg.Wait()
}

// GetBestSolution returns the best solution found so far
func (rs *RandomSearch) GetBestSolution() *optimization.Solution {
	return rs.bestSolution
}

// GetHistory returns the history of evaluations
func (rs *RandomSearch) GetHistory() []optimization.Evaluation {
	return rs.history
}

// Stop stops the search process
func (rs *RandomSearch) Stop() {
	if rs.cancel != nil {
		rs.cancel()
	}
}

// updateBestSolution updates the best solution if the new solution is better
func (rs *RandomSearch) updateBestSolution(candidate optimization.Assignment, value float64) {
	if rs.bestSolution == nil || value < rs.bestSolution.Value {
		rs.bestSolution = &optimization.Solution{
			Assignment: candidate.Clone(),
			Value:      value,
		}
	}
}

// sampleAssignment draws one candidate uniformly from the space
func (rs *RandomSearch) sampleAssignment() optimization.Assignment {
	space := rs.config.Space
	candidate := make(optimization.Assignment, space.Len())
	for _, name := range space.Names() {
		p, _ := space.Get(name)
		candidate[name] = sampleParameter(p, rs.rng)
	}
	return candidate
}

// sampleParameter draws one value uniformly from a parameter. Integer
// scalars are sampled on the unit-stepped grid anchored at the lower
// bound.
func sampleParameter(p optimization.Parameter, rng *rand.Rand) float64 {
	switch p := p.(type) {
	case optimization.Scalar:
		if p.Integer {
			steps := int(p.Upper-p.Lower) + 1
			return p.Lower + float64(rng.Intn(steps))
		}
		return p.Lower + rng.Float64()*(p.Upper-p.Lower)
	case optimization.Choice:
		return p.Options[rng.Intn(len(p.Options))]
	}
	return 0
}
