// Package bayesian implements the Gaussian process surrogate behind
// the bayesian search driver. The surrogate is fitted to all evaluated
// candidates and queried for posterior mean and variance wherever the
// acquisition function needs a score.
package bayesian

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/FJORD/internal/optimization"
	"github.com/copyleftdev/FJORD/internal/optimization/kernels"
)

// maxJitterAttempts caps the diagonal jitter escalation before the
// fit falls back to a pseudo-inverse solve
const maxJitterAttempts = 8

// GP is a Gaussian process regression model over vectorized
// candidates. Fit before Predict; refit whenever observations are
// added.
type GP struct {
	kernel   kernels.Kernel
	noiseVar float64
	logger   *zap.Logger

	// Training data, one row per observation
	x *mat.Dense
	y *mat.VecDense

	// alpha solves (K + noise I) alpha = y; chol is the factorization
	// it was solved with, nil when the fit fell back to SVD
	alpha *mat.VecDense
	chol  *mat.Cholesky
}

// NewGP creates an unfitted Gaussian process with the given kernel.
// noiseVar is added to the kernel diagonal for numerical stability and
// models observation noise.
func NewGP(kernel kernels.Kernel, noiseVar float64) *GP {
	return &GP{
		kernel:   kernel,
		noiseVar: noiseVar,
		logger:   zap.NewNop(),
	}
}

// WithLogger attaches a logger for fit diagnostics
func (gp *GP) WithLogger(logger *zap.Logger) *GP {
	if logger != nil {
		gp.logger = logger
	}
	return gp
}

// Fit fits the model to training inputs X and targets y
func (gp *GP) Fit(X *mat.Dense, y *mat.VecDense) error {
	if X == nil || y == nil {
		return optimization.NewError("training data must not be nil").
			WithComponent("gaussian_process").WithOperation("fit")
	}

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return optimization.NewError("training matrix must not be empty").
			WithComponent("gaussian_process").WithOperation("fit")
	}
	if nSamples != y.Len() {
		return optimization.NewErrorf("dimension mismatch: %d samples but %d targets", nSamples, y.Len()).
			WithComponent("gaussian_process").WithOperation("fit")
	}

	gp.logger.Debug("fitting surrogate",
		zap.Int("samples", nSamples),
		zap.Int("features", nFeatures),
		zap.Float64("noise_var", gp.noiseVar),
	)

	gp.x = mat.DenseCopyOf(X)
	gp.y = mat.VecDenseCopyOf(y)

	return gp.factorize(gp.kernelMatrix(gp.x, nSamples), nSamples)
}

// kernelMatrix computes the symmetric covariance matrix of the
// training points
func (gp *GP) kernelMatrix(X *mat.Dense, n int) *mat.SymDense {
	K := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		xi := X.RawRowView(i)
		K.SetSym(i, i, gp.kernel.Eval(xi, xi))
		for j := i + 1; j < n; j++ {
			K.SetSym(i, j, gp.kernel.Eval(xi, X.RawRowView(j)))
		}
	}
	return K
}

// factorize solves (K + (noise+jitter) I) alpha = y by Cholesky,
// escalating the jitter while the matrix is not numerically positive
// definite
func (gp *GP) factorize(K *mat.SymDense, n int) error {
	jitter := 0.0
	for attempt := 0; attempt < maxJitterAttempts; attempt++ {
		Kj := mat.NewSymDense(n, nil)
		Kj.CopySym(K)
		for i := 0; i < n; i++ {
			Kj.SetSym(i, i, Kj.At(i, i)+gp.noiseVar+jitter)
		}

		var chol mat.Cholesky
		if !chol.Factorize(Kj) {
			gp.logger.Debug("cholesky factorization failed, raising jitter",
				zap.Int("attempt", attempt+1),
				zap.Float64("jitter", jitter),
			)
			jitter = nextJitter(jitter)
			continue
		}

		alpha := mat.NewVecDense(n, nil)
		if err := chol.SolveVecTo(alpha, gp.y); err != nil {
			jitter = nextJitter(jitter)
			continue
		}

		gp.chol = &chol
		gp.alpha = alpha

		gp.logger.Debug("surrogate fitted",
			zap.Int("samples", n),
			zap.Float64("jitter", jitter),
		)
		return nil
	}

	return gp.fitWithSVD(K, n)
}

func nextJitter(jitter float64) float64 {
	if jitter == 0 {
		return 1e-10
	}
	return jitter * 10
}

// fitWithSVD solves the system through a thresholded pseudo-inverse
// when the kernel matrix resists Cholesky factorization even with
// jitter. The factor is discarded, so predictive variance collapses
// to zero until the next successful fit.
func (gp *GP) fitWithSVD(K *mat.SymDense, n int) error {
	var svd mat.SVD
	if !svd.Factorize(K, mat.SVDFull) {
		return optimization.NewError("svd factorization failed").
			WithComponent("gaussian_process").WithOperation("fit")
	}

	s := svd.Values(nil)
	cond := math.Inf(1)
	if min := s[len(s)-1]; min > 0 {
		cond = s[0] / min
	}
	gp.logger.Info("using svd fallback",
		zap.Float64("condition_number", cond),
		zap.Float64("max_singular_value", s[0]),
	)

	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)

	var uty mat.VecDense
	uty.MulVec(U.T(), gp.y)

	// Invert only the singular values that carry signal
	threshold := float64(n) * s[0] * 1e-15
	rank := 0
	scaled := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if s[i] > threshold {
			scaled.SetVec(i, uty.AtVec(i)/s[i])
			rank++
		}
	}
	if rank == 0 {
		return optimization.NewError("kernel matrix is effectively rank zero").
			WithComponent("gaussian_process").WithOperation("fit")
	}

	alpha := mat.NewVecDense(n, nil)
	alpha.MulVec(&V, scaled)

	gp.alpha = alpha
	gp.chol = nil
	return nil
}

// Predict returns the posterior mean and variance at the query points,
// one row per point
func (gp *GP) Predict(X *mat.Dense) (*mat.VecDense, *mat.VecDense, error) {
	if X == nil {
		return nil, nil, optimization.NewError("query matrix must not be nil").
			WithComponent("gaussian_process").WithOperation("predict")
	}
	if gp.x == nil || gp.alpha == nil {
		return nil, nil, optimization.NewError("model is not fitted").
			WithComponent("gaussian_process").WithOperation("predict")
	}

	nTest, nFeatures := X.Dims()
	nTrain, trainFeatures := gp.x.Dims()
	if nFeatures != trainFeatures {
		return nil, nil, optimization.NewErrorf("query has %d features, training data has %d", nFeatures, trainFeatures).
			WithComponent("gaussian_process").WithOperation("predict")
	}

	// Cross-covariance between query and training points
	kss := make([]float64, nTest)
	kstar := mat.NewDense(nTest, nTrain, nil)
	for i := 0; i < nTest; i++ {
		xi := X.RawRowView(i)
		kss[i] = gp.kernel.Eval(xi, xi) + gp.noiseVar
		for j := 0; j < nTrain; j++ {
			kstar.Set(i, j, gp.kernel.Eval(xi, gp.x.RawRowView(j)))
		}
	}

	mean := mat.NewVecDense(nTest, nil)
	mean.MulVec(kstar, gp.alpha)

	// Posterior variance needs the Cholesky factor; after an SVD
	// fallback it stays zero and the acquisition treats predictions
	// as certain
	variance := mat.NewVecDense(nTest, nil)
	if gp.chol != nil {
		v := mat.NewDense(nTrain, nTest, nil)
		if err := gp.chol.SolveTo(v, kstar.T()); err != nil {
			return nil, nil, optimization.WrapError(err, "solving for predictive variance").
				WithComponent("gaussian_process").WithOperation("predict")
		}
		for i := 0; i < nTest; i++ {
			var sum float64
			for j := 0; j < nTrain; j++ {
				sum += v.At(j, i) * v.At(j, i)
			}
			variance.SetVec(i, math.Max(0, kss[i]-sum))
		}
	}

	return mean, variance, nil
}
