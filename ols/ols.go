// Package ols implements ordinary least squares estimation on a finished
// design matrix, with classical and robust covariance estimators.
package ols

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyDesign       = errors.New("design matrix has no rows or columns")
	ErrDimensionMismatch = errors.New("design matrix and response have different row counts")
	ErrUnknownCovType    = errors.New("unknown covariance type")
	ErrHACMaxLags        = errors.New("HAC covariance requires a non-negative maxlags")
)

const (
	// pinvRcond is the relative singular value cutoff of Pinv.
	pinvRcond = 1e-15
	// maxCond bounds the condition number accepted from the Cholesky path.
	maxCond = 1e15
	eps     = 2.220446049250313e-16
)

// Covariance estimator names accepted by FitOptions.CovType.
const (
	CovNonRobust = "nonrobust"
	CovHC0       = "HC0"
	CovHC1       = "HC1"
	CovHC2       = "HC2"
	CovHC3       = "HC3"
	CovHAC       = "HAC"
)

// HAC kernels.
const (
	KernelBartlett = "bartlett"
	KernelUniform  = "uniform"
)

// FitOptions selects the covariance estimator.
type FitOptions struct {
	// CovType is one of nonrobust, HC0, HC1, HC2, HC3 or HAC. Empty means nonrobust.
	CovType string
	// HACMaxLags is the number of autocovariance lags used by HAC.
	HACMaxLags int
	// HACKernel is bartlett (default) or uniform.
	HACKernel string
	// HACCorrection applies the nobs/(nobs-k) small sample correction to HAC.
	HACCorrection bool
	// UseT selects Student's t instead of the normal distribution for inference.
	UseT bool
}

// Normalize fills defaults and validates the option set.
func (o FitOptions) Normalize() (FitOptions, error) {
	if o.CovType == "" {
		o.CovType = CovNonRobust
	}
	switch strings.ToUpper(o.CovType) {
	case "NONROBUST":
		o.CovType = CovNonRobust
	case CovHC0, CovHC1, CovHC2, CovHC3:
		o.CovType = strings.ToUpper(o.CovType)
	case CovHAC:
		o.CovType = CovHAC
		if o.HACMaxLags < 0 {
			return o, fmt.Errorf("maxlags=%d: %w", o.HACMaxLags, ErrHACMaxLags)
		}
		switch strings.ToLower(o.HACKernel) {
		case "", KernelBartlett:
			o.HACKernel = KernelBartlett
		case KernelUniform:
			o.HACKernel = KernelUniform
		default:
			return o, fmt.Errorf("HAC kernel %q: %w", o.HACKernel, ErrUnknownCovType)
		}
	default:
		return o, fmt.Errorf("%q: %w", o.CovType, ErrUnknownCovType)
	}
	return o, nil
}

// Result holds a fitted least squares regression.
type Result struct {
	// Params are the estimated coefficients, one per design column.
	Params *mat.VecDense
	// Cov is the parameter covariance for the requested estimator.
	Cov *mat.SymDense
	// NormalizedCov is (X'X)^-1, or its pseudo-inverse when X'X is singular.
	NormalizedCov *mat.SymDense
	Resid         *mat.VecDense
	Fitted        *mat.VecDense
	// RSS is the residual sum of squares.
	RSS float64
	// Scale is RSS/(nobs-k), the classical residual variance.
	Scale float64
	NObs  int
	K     int
	Rank  int
	Opts  FitOptions
}

// DFResid returns nobs - k.
func (r *Result) DFResid() int { return r.NObs - r.K }

// Estimator computes coefficients and covariance from a finished design.
type Estimator interface {
	Estimate(x mat.Matrix, y mat.Vector, opts FitOptions) (*Result, error)
}

// OLS is the default Estimator.
type OLS struct{}

var _ Estimator = OLS{}

// Estimate computes the OLS coefficients for y on x.
// x: nobs x k design matrix
// y: response of length nobs
// opts: covariance estimator selection
// Returns: the fitted Result
func (OLS) Estimate(x mat.Matrix, y mat.Vector, opts FitOptions) (*Result, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	n, k := x.Dims()
	if n == 0 || k == 0 {
		return nil, ErrEmptyDesign
	}
	if y.Len() != n {
		return nil, fmt.Errorf("x has %d rows, y has %d: %w", n, y.Len(), ErrDimensionMismatch)
	}

	// 1. (X'X)^-1, falling back to the SVD pseudo-inverse when singular
	var xtx mat.SymDense
	xtx.SymOuterK(1, mat.DenseCopyOf(x.T()))

	xtxInv, rank, err := invertSym(&xtx)
	if err != nil {
		return nil, err
	}

	// 2. beta = (X'X)^-1 X'y
	var xty mat.VecDense
	xty.MulVec(x.T(), y)
	beta := mat.NewVecDense(k, nil)
	beta.MulVec(xtxInv, &xty)

	// 3. Residuals and scale
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(x, beta)
	resid := mat.NewVecDense(n, nil)
	resid.SubVec(y, fitted)
	rss := mat.Dot(resid, resid)

	df := float64(n - k)
	if df <= 0 {
		df = float64(n)
	}

	res := &Result{
		Params:        beta,
		NormalizedCov: xtxInv,
		Resid:         resid,
		Fitted:        fitted,
		RSS:           rss,
		Scale:         rss / df,
		NObs:          n,
		K:             k,
		Rank:          rank,
		Opts:          opts,
	}

	// 4. Covariance
	cov, err := covariance(x, res)
	if err != nil {
		return nil, err
	}
	res.Cov = cov

	return res, nil
}

// invertSym inverts a symmetric positive semi-definite matrix, using the
// pseudo-inverse when it is numerically singular.
func invertSym(a *mat.SymDense) (*mat.SymDense, int, error) {
	k := a.SymmetricDim()

	var chol mat.Cholesky
	if chol.Factorize(a) && chol.Cond() < maxCond {
		var inv mat.SymDense
		if err := chol.InverseTo(&inv); err == nil {
			return &inv, k, nil
		}
	}

	pinv, rank, err := pinvRank(a, pinvRcond)
	if err != nil {
		return nil, 0, err
	}
	return symmetrize(pinv), rank, nil
}

// symmetrize returns (a + a')/2 as a SymDense.
func symmetrize(a *mat.Dense) *mat.SymDense {
	r, _ := a.Dims()
	out := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			out.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return out
}

// Pinv returns the Moore-Penrose pseudo-inverse of a.
func Pinv(a mat.Matrix) (*mat.Dense, error) {
	p, _, err := pinvRank(a, pinvRcond)
	return p, err
}

// pinvRank drops singular values below rcond times the largest one.
func pinvRank(a mat.Matrix, rcond float64) (*mat.Dense, int, error) {
	r, c := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, 0, fmt.Errorf("SVD factorization failed")
	}
	s := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := 0.0
	if len(s) > 0 {
		cutoff = rcond * floats.Max(s)
	}

	// V * diag(1/s) * U'
	out := mat.NewDense(c, r, nil)
	rank := 0
	for i, sv := range s {
		if sv <= cutoff || sv == 0 {
			continue
		}
		rank++
		vi := v.ColView(i)
		ui := u.ColView(i)
		var outer mat.Dense
		outer.Outer(1/sv, vi, ui)
		out.Add(out, &outer)
	}
	return out, rank, nil
}

// LeastSquares returns the minimum-norm coefficients of y on x using the SVD.
func LeastSquares(x mat.Matrix, y mat.Vector) (*mat.VecDense, error) {
	n, k := x.Dims()
	if y.Len() != n {
		return nil, fmt.Errorf("x has %d rows, y has %d: %w", n, y.Len(), ErrDimensionMismatch)
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	s := svd.Values(nil)
	cutoff := 0.0
	if len(s) > 0 {
		cutoff = eps * floats.Max(s) * float64(max(n, k))
	}
	rank := 0
	for _, sv := range s {
		if sv > cutoff {
			rank++
		}
	}

	beta := mat.NewVecDense(k, nil)
	if rank == 0 {
		return beta, nil
	}

	yMat := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		yMat.Set(i, 0, y.AtVec(i))
	}
	var b mat.Dense
	svd.SolveTo(&b, yMat, rank)
	for i := 0; i < k; i++ {
		beta.SetVec(i, b.At(i, 0))
	}
	return beta, nil
}

// RSS returns the residual sum of squares of y regressed on x. A nil x
// (no regressors) gives the sum of squares of y.
func RSS(x mat.Matrix, y mat.Vector) (float64, error) {
	n := y.Len()
	resid := mat.NewVecDense(n, nil)
	resid.CopyVec(y)

	if x != nil {
		if _, k := x.Dims(); k > 0 {
			beta, err := LeastSquares(x, y)
			if err != nil {
				return 0, err
			}
			var fitted mat.VecDense
			fitted.MulVec(x, beta)
			resid.SubVec(resid, &fitted)
		}
	}
	return mat.Dot(resid, resid), nil
}

// Residualize returns a - P a where P projects onto the columns of basis,
// given basisPinv = Pinv(basis).
func Residualize(basis, basisPinv *mat.Dense, a mat.Matrix) *mat.Dense {
	var coef mat.Dense
	coef.Mul(basisPinv, a)
	var proj mat.Dense
	proj.Mul(basis, &coef)
	var out mat.Dense
	out.Sub(a, &proj)
	return &out
}
