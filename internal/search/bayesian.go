package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/copyleftdev/FJORD/internal/optimization"
	"github.com/copyleftdev/FJORD/internal/optimization/acquisition"
	"github.com/copyleftdev/FJORD/internal/optimization/bayesian"
	"github.com/copyleftdev/FJORD/internal/optimization/kernels"
)

// BayesianSearch runs Gaussian-process guided search: a space-filling
// initial design, then one proposal per iteration wherever expected
// improvement peaks. Like Nelder-Mead it only accepts spaces of
// continuous scalars. Proposals depend on all previous observations,
// so evaluation is sequential and Workers is ignored.
type BayesianSearch struct {
	// Configuration
	config optimization.SearchConfig

	// Surrogate model and its acquisition scorer
	gp  *bayesian.GP
	acq *acquisition.ExpectedImprovement

	// Random number generator
	rng *rand.Rand

	// Best solution found
	bestSolution *optimization.Solution

	// History of evaluations
	history []optimization.Evaluation

	// For cancellation
	cancel context.CancelFunc
}

// NewBayesianSearch creates a new Gaussian-process driver
func NewBayesianSearch(config optimization.SearchConfig) (*BayesianSearch, error) {
	config = searchDefaults(config)

	// Initialize random number generator
	rng := rand.New(rand.NewSource(config.RandomSeed))
	if config.RandomSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &BayesianSearch{
		config:  config,
		gp:      bayesian.NewGP(kernels.NewMatern52(1.0, 1.0), 1e-6),
		acq:     acquisition.NewExpectedImprovement(math.Inf(1), 0.01),
		rng:     rng,
		history: make([]optimization.Evaluation, 0, config.MaxIterations),
	}, nil
}

// WithSurrogateLogger forwards a logger to the surrogate for fit
// diagnostics. The driver itself does not log.
func (bs *BayesianSearch) WithSurrogateLogger(logger *zap.Logger) *BayesianSearch {
	bs.gp.WithLogger(logger)
	return bs
}

// Optimize runs the Bayesian search process
func (bs *BayesianSearch) Optimize(ctx context.Context, config optimization.SearchConfig) (*optimization.Result, error) {
	// Update config if provided
	if config.Objective != nil {
		bs.config = searchDefaults(config)
	}
	if err := validateConfig(bs.config); err != nil {
		return nil, err
	}

	names := bs.config.Space.Names()
	bounds, err := continuousBounds(bs.config.Space, names)
	if err != nil {
		return nil, err
	}
	nDims := len(names)

	// Create a cancellable context
	ctx, bs.cancel = context.WithCancel(ctx)
	defer bs.cancel()

	// Space-filling initial design
	for _, x := range bs.latinHypercube(initialDesignSize(bs.config.MaxIterations, nDims), bounds) {
		if err := bs.observe(ctx, names, x); err != nil {
			return nil, err
		}
	}

	// Surrogate-guided proposals for the rest of the budget
	for len(bs.history) < bs.config.MaxIterations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			// Continue with optimization
		}

		X, y := bs.trainingData(names, nDims)
		if err := bs.gp.Fit(X, y); err != nil {
			return nil, optimization.WrapError(err, "fitting surrogate").
				WithComponent("search").WithOperation("optimize")
		}

		bs.acq.UpdateBest(bs.bestSolution.Value)
		if err := bs.observe(ctx, names, bs.proposeNext(names, bounds)); err != nil {
			return nil, err
		}
	}

	return &optimization.Result{
		BestSolution: bs.bestSolution,
		History:      bs.history,
		Iterations:   len(bs.history),
		Converged:    false,
	}, nil
}

// GetBestSolution returns the best solution found so far
func (bs *BayesianSearch) GetBestSolution() *optimization.Solution {
	return bs.bestSolution
}

// GetHistory returns the history of evaluations
func (bs *BayesianSearch) GetHistory() []optimization.Evaluation {
	return bs.history
}

// Stop stops the search process
func (bs *BayesianSearch) Stop() {
	if bs.cancel != nil {
		bs.cancel()
	}
}

// observe evaluates one candidate and folds it into the history
func (bs *BayesianSearch) observe(ctx context.Context, names []string, x []float64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Continue with evaluation
	}

	candidate := make(optimization.Assignment, len(names))
	for i, name := range names {
		candidate[name] = x[i]
	}

	value, err := screen(bs.config.Objective, bs.config.Constraints, candidate)
	if err != nil {
		return fmt.Errorf("error evaluating objective function: %v", err)
	}

	bs.updateBestSolution(candidate, value)

	// Record evaluation
	bs.history = append(bs.history, optimization.Evaluation{
		Iteration: len(bs.history),
		Solution: &optimization.Solution{
			Assignment: candidate,
			Value:      value,
		},
	})
	return nil
}

// updateBestSolution updates the best solution if the new solution is better
func (bs *BayesianSearch) updateBestSolution(candidate optimization.Assignment, value float64) {
	if bs.bestSolution == nil || value < bs.bestSolution.Value {
		bs.bestSolution = &optimization.Solution{
			Assignment: candidate.Clone(),
			Value:      value,
		}
	}
}

// trainingData vectorizes the history in name order for the surrogate
func (bs *BayesianSearch) trainingData(names []string, nDims int) (*mat.Dense, *mat.VecDense) {
	n := len(bs.history)
	X := mat.NewDense(n, nDims, nil)
	y := mat.NewVecDense(n, nil)

	for i, eval := range bs.history {
		for j, name := range names {
			X.Set(i, j, eval.Solution.Assignment[name])
		}
		y.SetVec(i, eval.Solution.Value)
	}
	return X, y
}

// latinHypercube draws n points stratified per dimension, so small
// initial designs still spread across the space
func (bs *BayesianSearch) latinHypercube(n int, bounds [][2]float64) [][]float64 {
	samples := make([][]float64, n)
	for i := range samples {
		samples[i] = make([]float64, len(bounds))
	}

	for d := range bounds {
		perm := bs.rng.Perm(n)
		for i := 0; i < n; i++ {
			u := (float64(perm[i]) + bs.rng.Float64()) / float64(n)
			samples[i][d] = bounds[d][0] + u*(bounds[d][1]-bounds[d][0])
		}
	}
	return samples
}

// proposeNext maximizes expected improvement over the surrogate with
// multistart Nelder-Mead from the incumbent and random points
func (bs *BayesianSearch) proposeNext(names []string, bounds [][2]float64) []float64 {
	nDims := len(bounds)

	// Score is negative EI so the minimizer can run on it
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			pt := clampToBounds(x, bounds)
			mu, variance, err := bs.gp.Predict(mat.NewDense(1, nDims, pt))
			if err != nil {
				return math.Inf(1)
			}
			return -bs.acq.Compute(mu.AtVec(0), math.Sqrt(variance.AtVec(0)))
		},
	}

	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-6,
			Relative:   1e-6,
			Iterations: 100,
		},
	}

	nStarts := 5 + int(5*math.Sqrt(float64(nDims)))
	starts := make([][]float64, 0, nStarts)
	if bs.bestSolution != nil {
		incumbent := make([]float64, nDims)
		for i, name := range names {
			incumbent[i] = bs.bestSolution.Assignment[name]
		}
		starts = append(starts, incumbent)
	}
	for len(starts) < nStarts {
		starts = append(starts, bs.randomPoint(bounds))
	}

	// Random fallback keeps the search moving when every start fails
	// or lands on a flat acquisition surface
	bestX := bs.randomPoint(bounds)
	bestVal := math.Inf(1)

	for _, start := range starts {
		method := &optimize.NelderMead{
			Reflection:  1.0, // Standard reflection coefficient
			Expansion:   2.0, // Standard expansion coefficient
			Contraction: 0.5, // Standard contraction coefficient
			Shrink:      0.5, // Standard shrink coefficient
			SimplexSize: 0.2, // Size of auto-constructed initial simplex
		}

		result, err := optimize.Minimize(problem, start, settings, method)
		if err != nil || result == nil {
			continue
		}
		if result.F < bestVal {
			bestVal = result.F
			bestX = clampToBounds(result.X, bounds)
		}
	}
	return bestX
}

// randomPoint draws one point uniformly from the bounded box
func (bs *BayesianSearch) randomPoint(bounds [][2]float64) []float64 {
	x := make([]float64, len(bounds))
	for i := range bounds {
		x[i] = bounds[i][0] + bs.rng.Float64()*(bounds[i][1]-bounds[i][0])
	}
	return x
}

// clampToBounds copies x with every coordinate pulled into its bounds
func clampToBounds(x []float64, bounds [][2]float64) []float64 {
	pt := make([]float64, len(x))
	for i := range x {
		pt[i] = math.Min(math.Max(x[i], bounds[i][0]), bounds[i][1])
	}
	return pt
}

// initialDesignSize balances the space-filling design against the
// surrogate-guided phase within the evaluation budget
func initialDesignSize(budget, nDims int) int {
	n := 5 + 2*nDims
	if n > budget/2 {
		n = budget / 2
	}
	if n < 2 {
		n = 2
	}
	if n > budget {
		n = budget
	}
	return n
}
