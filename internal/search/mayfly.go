package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/copyleftdev/FJORD/internal/optimization"
)

// MayflySearch drives the external mayfly swarm optimizer. The swarm
// flies through the unit cube and each position is decoded into the
// parameter space before evaluation, which lets one continuous swarm
// cover integer and categorical parameters as well.
type MayflySearch struct {
	// Configuration
	config optimization.SearchConfig

	// Random number generator
	rng *rand.Rand

	// Best solution found
	bestSolution *optimization.Solution

	// History of evaluations
	history []optimization.Evaluation

	// For cancellation
	cancel context.CancelFunc
}

// NewMayflySearch creates a new mayfly swarm driver
func NewMayflySearch(config optimization.SearchConfig) (*MayflySearch, error) {
	config = searchDefaults(config)

	// Initialize random number generator
	rng := rand.New(rand.NewSource(config.RandomSeed))
	if config.RandomSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &MayflySearch{
		config:  config,
		rng:     rng,
		history: make([]optimization.Evaluation, 0, config.MaxIterations),
	}, nil
}

// Optimize runs the mayfly swarm process
func (ms *MayflySearch) Optimize(ctx context.Context, config optimization.SearchConfig) (*optimization.Result, error) {
	// Update config if provided
	if config.Objective != nil {
		ms.config = searchDefaults(config)
	}
	if err := validateConfig(ms.config); err != nil {
		return nil, err
	}

	space := ms.config.Space
	names := space.Names()

	// Create a cancellable context
	ctx, ms.cancel = context.WithCancel(ctx)
	defer ms.cancel()

	var evalErr error

	// Configure the external mayfly library; the swarm itself moves in
	// [0,1]^n and positions are decoded per evaluation
	mcfg := mayfly.NewDefaultConfig()
	mcfg.ObjectiveFunc = func(x []float64) float64 {
		if evalErr != nil || ctx.Err() != nil {
			return math.Inf(1)
		}

		candidate := decodeAssignment(space, names, x)
		value, err := screen(ms.config.Objective, ms.config.Constraints, candidate)
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}

		ms.updateBestSolution(candidate, value)

		// Record evaluation
		eval := optimization.Evaluation{
			Iteration: len(ms.history),
			Solution: &optimization.Solution{
				Assignment: candidate,
				Value:      value,
			},
		}
		ms.history = append(ms.history, eval)

		return value
	}
	mcfg.ProblemSize = len(names)
	mcfg.MaxIterations = ms.config.MaxIterations
	mcfg.LowerBound = 0
	mcfg.UpperBound = 1

	// Set random seed for reproducibility
	mcfg.Rand = ms.rng

	result, err := mayfly.Optimize(mcfg)

	if evalErr != nil {
		return nil, fmt.Errorf("error evaluating objective function: %v", evalErr)
	}
	if cerr := ctx.Err(); cerr != nil {
		// When context is cancelled, return nil result with the context error
		return nil, cerr
	}
	if err != nil {
		return nil, optimization.WrapError(err, "mayfly optimization failed").WithComponent("search").WithOperation("optimize")
	}

	// The library reports its own global best; fold it in case the
	// final swarm position was never routed through the objective hook
	ms.updateBestSolution(decodeAssignment(space, names, result.GlobalBest.Position), result.GlobalBest.Cost)

	return &optimization.Result{
		BestSolution: ms.bestSolution,
		History:      ms.history,
		Iterations:   len(ms.history),
		Converged:    true,
	}, nil
}

// GetBestSolution returns the best solution found so far
func (ms *MayflySearch) GetBestSolution() *optimization.Solution {
	return ms.bestSolution
}

// GetHistory returns the history of evaluations
func (ms *MayflySearch) GetHistory() []optimization.Evaluation {
	return ms.history
}

// Stop stops the search process
func (ms *MayflySearch) Stop() {
	if ms.cancel != nil {
		ms.cancel()
	}
}

// updateBestSolution updates the best solution if the new solution is better
func (ms *MayflySearch) updateBestSolution(candidate optimization.Assignment, value float64) {
	if ms.bestSolution == nil || value < ms.bestSolution.Value {
		ms.bestSolution = &optimization.Solution{
			Assignment: candidate.Clone(),
			Value:      value,
		}
	}
}

// decodeAssignment maps a unit-cube position onto the space. Scalars
// scale affinely, integer scalars round onto the unit-stepped grid, and
// choices split the unit interval into equal buckets.
func decodeAssignment(space *optimization.Space, names []string, x []float64) optimization.Assignment {
	candidate := make(optimization.Assignment, len(names))
	for i, name := range names {
		p, _ := space.Get(name)
		t := clamp01(x[i])

		switch p := p.(type) {
		case optimization.Scalar:
			if p.Integer {
				candidate[name] = math.Min(p.Lower+math.Round(t*(p.Upper-p.Lower)), p.Upper)
			} else {
				candidate[name] = p.Lower + t*(p.Upper-p.Lower)
			}
		case optimization.Choice:
			idx := int(t * float64(len(p.Options)))
			if idx >= len(p.Options) {
				idx = len(p.Options) - 1
			}
			candidate[name] = p.Options[idx]
		}
	}
	return candidate
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
