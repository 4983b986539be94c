package ols

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// covariance dispatches on res.Opts.CovType.
func covariance(x mat.Matrix, res *Result) (*mat.SymDense, error) {
	switch res.Opts.CovType {
	case CovNonRobust:
		cov := mat.NewSymDense(res.K, nil)
		cov.ScaleSym(res.Scale, res.NormalizedCov)
		return cov, nil
	case CovHC0, CovHC1, CovHC2, CovHC3:
		return heteroskedasticCov(x, res), nil
	case CovHAC:
		return hacCov(x, res), nil
	}
	return nil, fmt.Errorf("%q: %w", res.Opts.CovType, ErrUnknownCovType)
}

// sandwich returns bread * meat * bread for symmetric bread and meat.
func sandwich(bread, meat mat.Symmetric) *mat.SymDense {
	var tmp, full mat.Dense
	tmp.Mul(bread, meat)
	full.Mul(&tmp, bread)
	return symmetrize(&full)
}

// heteroskedasticCov computes White's estimator and its HC1-HC3 variants.
func heteroskedasticCov(x mat.Matrix, res *Result) *mat.SymDense {
	n, k := res.NObs, res.K

	// leverage h_ii = x_i' (X'X)^-1 x_i, only needed for HC2/HC3
	var lev []float64
	if res.Opts.CovType == CovHC2 || res.Opts.CovType == CovHC3 {
		lev = make([]float64, n)
		row := mat.NewVecDense(k, nil)
		var tmp mat.VecDense
		for i := 0; i < n; i++ {
			for j := 0; j < k; j++ {
				row.SetVec(j, x.At(i, j))
			}
			tmp.MulVec(res.NormalizedCov, row)
			lev[i] = mat.Dot(row, &tmp)
		}
	}

	meat := mat.NewSymDense(k, nil)
	row := mat.NewVecDense(k, nil)
	for i := 0; i < n; i++ {
		e := res.Resid.AtVec(i)
		w := e * e
		switch res.Opts.CovType {
		case CovHC2:
			w /= 1 - lev[i]
		case CovHC3:
			w /= (1 - lev[i]) * (1 - lev[i])
		}
		for j := 0; j < k; j++ {
			row.SetVec(j, x.At(i, j))
		}
		meat.SymRankOne(meat, w, row)
	}

	cov := sandwich(res.NormalizedCov, meat)
	if res.Opts.CovType == CovHC1 && n > k {
		cov.ScaleSym(float64(n)/float64(n-k), cov)
	}
	return cov
}

// hacCov computes the Newey-West style autocorrelation robust covariance.
func hacCov(x mat.Matrix, res *Result) *mat.SymDense {
	n, k := res.NObs, res.K
	maxLags := res.Opts.HACMaxLags

	// scores s_t = x_t * e_t
	scores := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		e := res.Resid.AtVec(i)
		for j := 0; j < k; j++ {
			scores.Set(i, j, x.At(i, j)*e)
		}
	}

	var s0 mat.Dense
	s0.Mul(scores.T(), scores)
	meat := mat.DenseCopyOf(&s0)

	for lag := 1; lag <= maxLags && lag < n; lag++ {
		w := 1.0
		if res.Opts.HACKernel == KernelBartlett {
			w = 1 - float64(lag)/float64(maxLags+1)
		}
		lead := scores.Slice(lag, n, 0, k)
		lagged := scores.Slice(0, n-lag, 0, k)

		var gamma mat.Dense
		gamma.Mul(lead.T(), lagged)
		var both mat.Dense
		both.Add(&gamma, gamma.T())
		both.Scale(w, &both)
		meat.Add(meat, &both)
	}

	cov := sandwich(res.NormalizedCov, symmetrize(meat))
	if res.Opts.HACCorrection && n > k {
		cov.ScaleSym(float64(n)/float64(n-k), cov)
	}
	return cov
}
