package optimization

import (
	"context"
)

// Searcher defines the interface for derivative-free search drivers
type Searcher interface {
	// Optimize runs the search process
	Optimize(ctx context.Context, config SearchConfig) (*Result, error)

	// GetBestSolution returns the best solution found so far
	GetBestSolution() *Solution

	// GetHistory returns the history of evaluations
	GetHistory() []Evaluation

	// Stop gracefully stops the search process
	Stop()
}

// SearchConfig contains configuration for a search run
type SearchConfig struct {
	// Objective function to minimize, keyed by canonical parameter names
	Objective ObjectiveFunc

	// Constraints are feasibility predicates; candidates failing any of
	// them are penalized
	Constraints []FeasibilityFunc

	// Space describes the parameters to search over
	Space *Space

	// Maximum number of iterations
	MaxIterations int

	// Random seed for reproducibility
	RandomSeed int64

	// Workers is the number of parallel evaluation goroutines for
	// drivers that evaluate in batches
	Workers int
}

// ObjectiveFunc is a minimization-oriented objective over an assignment
type ObjectiveFunc func(Assignment) (float64, error)

// FeasibilityFunc reports whether an assignment satisfies a constraint
type FeasibilityFunc func(Assignment) (bool, error)

// Solution represents a candidate in the search space
type Solution struct {
	Assignment Assignment
	Value      float64
}

// Evaluation represents a single evaluation of the objective function
type Evaluation struct {
	Iteration int
	Solution  *Solution
	Error     error
}

// Result contains the outcome of a search run
type Result struct {
	BestSolution *Solution
	History      []Evaluation
	Iterations   int
	Converged    bool
}
