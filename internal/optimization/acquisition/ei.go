// Package acquisition scores candidate points for the Gaussian process
// surrogate. Scores are computed from the posterior mean and standard
// deviation at a point; the search driver evaluates wherever the score
// is highest.
package acquisition

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// ExpectedImprovement scores a point by how much it is expected to
// improve on the best observed objective value. Objectives are always
// minimized, so improvement is measured below the incumbent.
type ExpectedImprovement struct {
	// Best observed value so far
	bestObserved float64
	// Exploration margin: larger xi favors uncertain regions over
	// small certain gains
	xi float64
}

// NewExpectedImprovement creates an ExpectedImprovement scorer. Seed
// bestObserved with +Inf before any observations exist.
func NewExpectedImprovement(bestObserved, xi float64) *ExpectedImprovement {
	return &ExpectedImprovement{
		bestObserved: bestObserved,
		xi:           xi,
	}
}

// Compute returns the expected improvement at a point with posterior
// mean mu and standard deviation sigma. The result is non-negative;
// zero means the point cannot be expected to beat the incumbent.
func (ei *ExpectedImprovement) Compute(mu, sigma float64) float64 {
	improvement := ei.bestObserved - mu - ei.xi
	if improvement <= 0 {
		return 0.0
	}

	// A near-zero sigma means the model is certain; the improvement
	// itself is the expectation
	if sigma <= 1e-10 {
		return improvement
	}

	// EI = improvement * Phi(z) + sigma * phi(z) for z = improvement/sigma
	z := improvement / sigma
	stdNormal := distuv.UnitNormal
	return improvement*stdNormal.CDF(z) + sigma*stdNormal.Prob(z)
}

// UpdateBest updates the best observed value
func (ei *ExpectedImprovement) UpdateBest(best float64) {
	ei.bestObserved = best
}

// BestObserved returns the best observed value
func (ei *ExpectedImprovement) BestObserved() float64 {
	return ei.bestObserved
}
