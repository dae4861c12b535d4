// Package search implements derivative-free drivers over parameter
// spaces. Every driver minimizes a black-box objective and screens
// candidates through feasibility predicates before the objective runs,
// so constrained and unconstrained problems share one code path.
package search

import (
	"github.com/copyleftdev/FJORD/internal/optimization"
)

// InfeasiblePenalty is the objective value assigned to candidates that
// violate a feasibility predicate
const InfeasiblePenalty = 1e9

// Driver names accepted by NewSearcher
const (
	DriverRandom     = "random"
	DriverMayfly     = "mayfly"
	DriverNelderMead = "neldermead"
	DriverBayesian   = "bayesian"
)

// NewSearcher creates the named search driver
func NewSearcher(driver string, config optimization.SearchConfig) (optimization.Searcher, error) {
	switch driver {
	case DriverRandom:
		return NewRandomSearch(config)
	case DriverMayfly:
		return NewMayflySearch(config)
	case DriverNelderMead:
		return NewNelderMeadSearch(config)
	case DriverBayesian:
		return NewBayesianSearch(config)
	}
	return nil, optimization.NewErrorf("unknown search driver %q", driver).WithComponent("search")
}

// Drivers returns the known driver names
func Drivers() []string {
	return []string{DriverBayesian, DriverMayfly, DriverNelderMead, DriverRandom}
}

// searchDefaults fills in the defaults shared by all drivers
func searchDefaults(config optimization.SearchConfig) optimization.SearchConfig {
	if config.MaxIterations < 1 {
		config.MaxIterations = 100 // Default value
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return config
}

// validateConfig checks the parts of the config every driver needs
func validateConfig(config optimization.SearchConfig) error {
	if config.Space == nil || config.Space.Len() == 0 {
		return optimization.NewError("search space is empty").WithComponent("search").WithOperation("optimize")
	}
	if config.Objective == nil {
		return optimization.NewError("objective function is required").WithComponent("search").WithOperation("optimize")
	}
	return nil
}

// screen evaluates a candidate, applying feasibility predicates before
// the objective. Infeasible candidates cost InfeasiblePenalty and the
// objective is not called for them.
func screen(objective optimization.ObjectiveFunc, constraints []optimization.FeasibilityFunc, candidate optimization.Assignment) (float64, error) {
	for _, holds := range constraints {
		ok, err := holds(candidate)
		if err != nil {
			return 0, err
		}
		if !ok {
			return InfeasiblePenalty, nil
		}
	}
	return objective(candidate)
}
