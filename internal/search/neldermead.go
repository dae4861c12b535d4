package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/copyleftdev/FJORD/internal/optimization"
)

// NelderMeadSearch runs restarted Nelder-Mead simplex descent. It only
// accepts spaces made of continuous scalars; integer and categorical
// parameters have no gradient-free simplex geometry to exploit and are
// rejected up front.
type NelderMeadSearch struct {
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

// NewNelderMeadSearch creates a new restarted Nelder-Mead driver
func NewNelderMeadSearch(config optimization.SearchConfig) (*NelderMeadSearch, error) {
	config = searchDefaults(config)

	// Initialize random number generator
	rng := rand.New(rand.NewSource(config.RandomSeed))
	if config.RandomSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &NelderMeadSearch{
		config:  config,
		rng:     rng,
		history: make([]optimization.Evaluation, 0, config.MaxIterations),
	}, nil
}

// Optimize runs the restarted Nelder-Mead process
func (ns *NelderMeadSearch) Optimize(ctx context.Context, config optimization.SearchConfig) (*optimization.Result, error) {
	// Update config if provided
	if config.Objective != nil {
		ns.config = searchDefaults(config)
	}
	if err := validateConfig(ns.config); err != nil {
		return nil, err
	}

	names := ns.config.Space.Names()
	bounds, err := continuousBounds(ns.config.Space, names)
	if err != nil {
		return nil, err
	}
	nDims := len(names)

	// Create a cancellable context
	ctx, ns.cancel = context.WithCancel(ctx)
	defer ns.cancel()

	var evalErr error

	// Create a problem with the objective function
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// Ensure x is within bounds
			for i := range x {
				x[i] = math.Max(bounds[i][0], math.Min(x[i], bounds[i][1]))
			}

			if evalErr != nil || ctx.Err() != nil {
				return math.Inf(1)
			}

			candidate := make(optimization.Assignment, nDims)
			for i, name := range names {
				candidate[name] = x[i]
			}

			value, err := screen(ns.config.Objective, ns.config.Constraints, candidate)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}

			ns.updateBestSolution(candidate, value)

			// Record evaluation
			eval := optimization.Evaluation{
				Iteration: len(ns.history),
				Solution: &optimization.Solution{
					Assignment: candidate,
					Value:      value,
				},
			}
			ns.history = append(ns.history, eval)

			return value
		},
	}

	// Create settings for the optimizer
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-6,
			Relative:   1e-6,
			Iterations: ns.config.MaxIterations,
		},
	}

	// Starting points (random points within bounds)
	nStarts := 5 + int(5*math.Sqrt(float64(nDims)))
	starts := make([][]float64, nStarts)
	for i := 0; i < nStarts; i++ {
		starts[i] = make([]float64, nDims)
		for j := 0; j < nDims; j++ {
			min, max := bounds[j][0], bounds[j][1]
			starts[i][j] = min + ns.rng.Float64()*(max-min)
		}
	}

	// Try each starting point
	converged := false
	for _, start := range starts {
		select {
		case <-ctx.Done():
			// When context is cancelled, return nil result with the context error
			return nil, ctx.Err()
		default:
			// Continue with optimization
		}

		// Use Nelder-Mead method which is derivative-free
		method := &optimize.NelderMead{
			Reflection:  1.0, // Standard reflection coefficient
			Expansion:   2.0, // Standard expansion coefficient
			Contraction: 0.5, // Standard contraction coefficient
			Shrink:      0.5, // Standard shrink coefficient
			SimplexSize: 0.2, // Size of auto-constructed initial simplex
		}

		// Run optimization
		result, err := optimize.Minimize(problem, start, settings, method)

		if evalErr != nil {
			return nil, fmt.Errorf("error evaluating objective function: %v", evalErr)
		}
		if err == nil && result != nil {
			converged = true
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ns.bestSolution == nil {
		return nil, optimization.NewError("no starting point produced an evaluation").
			WithComponent("search").WithOperation("optimize")
	}

	return &optimization.Result{
		BestSolution: ns.bestSolution,
		History:      ns.history,
		Iterations:   len(ns.history),
		Converged:    converged,
	}, nil
}

// GetBestSolution returns the best solution found so far
func (ns *NelderMeadSearch) GetBestSolution() *optimization.Solution {
	return ns.bestSolution
}

// GetHistory returns the history of evaluations
func (ns *NelderMeadSearch) GetHistory() []optimization.Evaluation {
	return ns.history
}

// Stop stops the search process
func (ns *NelderMeadSearch) Stop() {
	if ns.cancel != nil {
		ns.cancel()
	}
}

// updateBestSolution updates the best solution if the new solution is better
func (ns *NelderMeadSearch) updateBestSolution(candidate optimization.Assignment, value float64) {
	if ns.bestSolution == nil || value < ns.bestSolution.Value {
		ns.bestSolution = &optimization.Solution{
			Assignment: candidate.Clone(),
			Value:      value,
		}
	}
}

// continuousBounds extracts scalar bounds in name order, rejecting any
// parameter a simplex cannot move through
func continuousBounds(space *optimization.Space, names []string) ([][2]float64, error) {
	bounds := make([][2]float64, len(names))
	for i, name := range names {
		p, _ := space.Get(name)
		s, ok := p.(optimization.Scalar)
		if !ok || s.Integer {
			return nil, optimization.NewErrorf("parameter %q is not continuous", name).
				WithComponent("search").WithOperation("optimize")
		}
		bounds[i] = [2]float64{s.Lower, s.Upper}
	}
	return bounds, nil
}
