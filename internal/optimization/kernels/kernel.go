// Package kernels provides stationary covariance functions for the
// Gaussian process surrogate. All kernels operate on points expressed
// in the vectorized parameter order of the search space.
package kernels

import (
	"fmt"
	"math"
)

// Kernel is a covariance function between two points
type Kernel interface {
	// Eval computes the kernel value between two points x1 and x2
	Eval(x1, x2 []float64) float64

	// Hyperparameters returns the current hyperparameters
	Hyperparameters() []float64

	// SetHyperparameters sets the kernel's hyperparameters
	SetHyperparameters(params []float64) error
}

// stationary carries the hyperparameters shared by all stationary
// kernels: a length scale and a signal variance
type stationary struct {
	lengthScale float64
	signalVar   float64
}

func newStationary(lengthScale, signalVar float64) stationary {
	if lengthScale <= 0 {
		panic(fmt.Sprintf("lengthScale must be positive, got %v", lengthScale))
	}
	if signalVar <= 0 {
		panic(fmt.Sprintf("signalVar must be positive, got %v", signalVar))
	}
	return stationary{lengthScale: lengthScale, signalVar: signalVar}
}

// Hyperparameters returns the length scale and signal variance
func (s *stationary) Hyperparameters() []float64 {
	return []float64{s.lengthScale, s.signalVar}
}

// SetHyperparameters sets the length scale and signal variance
func (s *stationary) SetHyperparameters(params []float64) error {
	if len(params) != 2 {
		return fmt.Errorf("expected 2 hyperparameters, got %d", len(params))
	}
	if params[0] <= 0 || params[1] <= 0 {
		return fmt.Errorf("hyperparameters must be positive, got %v", params)
	}
	s.lengthScale = params[0]
	s.signalVar = params[1]
	return nil
}

// sqDist returns the squared Euclidean distance between x1 and x2
func sqDist(x1, x2 []float64) float64 {
	sum := 0.0
	for i := range x1 {
		diff := x1[i] - x2[i]
		sum += diff * diff
	}
	return sum
}

// RBF is the squared exponential kernel. It produces very smooth
// sample paths; larger length scales give smoother functions.
type RBF struct {
	stationary
}

// NewRBF creates an RBF kernel. It panics when either parameter is
// not positive.
func NewRBF(lengthScale, signalVar float64) *RBF {
	return &RBF{newStationary(lengthScale, signalVar)}
}

// Eval computes the RBF kernel value between x1 and x2
func (k *RBF) Eval(x1, x2 []float64) float64 {
	r2 := sqDist(x1, x2) / (2.0 * k.lengthScale * k.lengthScale)
	return k.signalVar * math.Exp(-r2)
}

// Matern52 is the Matérn kernel with smoothness 5/2. It is the usual
// default for Bayesian optimization: twice differentiable but less
// aggressively smooth than RBF.
type Matern52 struct {
	stationary
}

// NewMatern52 creates a Matérn 5/2 kernel. It panics when either
// parameter is not positive.
func NewMatern52(lengthScale, signalVar float64) *Matern52 {
	return &Matern52{newStationary(lengthScale, signalVar)}
}

// Eval computes the Matérn 5/2 kernel value between x1 and x2
func (k *Matern52) Eval(x1, x2 []float64) float64 {
	r := math.Sqrt(sqDist(x1, x2)) / k.lengthScale
	poly := 1.0 + math.Sqrt(5)*r + (5.0/3.0)*r*r
	return k.signalVar * poly * math.Exp(-math.Sqrt(5)*r)
}
