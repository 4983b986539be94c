package ardl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/AKSoo/statsmodels/deterministic"
	"github.com/AKSoo/statsmodels/ols"
)

func fitSimulated(t *testing.T, opts FitOptions) *Results {
	t.Helper()
	y, x := simulate(2000, 11, 1, 0.5, 2)
	m, err := New(Data{Endog: y, Exog: x, ExogNames: []string{"x"}}, ModelSpec{
		Lags:  UpTo(1),
		Order: Uniform(UpTo(0)),
		Trend: deterministic.TrendConst,
	})
	require.NoError(t, err)
	res, err := m.Fit(opts)
	require.NoError(t, err)
	return res
}

func TestFitRecoversCoefficients(t *testing.T) {
	res := fitSimulated(t, FitOptions{})
	assert.Equal(t, []string{"const", "y.L1", "x.L0"}, res.ParamNames())

	p := res.Params()
	assert.InDelta(t, 1.0, p[0], 0.15)
	assert.InDelta(t, 0.5, p[1], 0.05)
	assert.InDelta(t, 2.0, p[2], 0.1)
	assert.InDelta(t, 1.0, res.Sigma2(), 0.1)

	assert.Equal(t, 1999, res.NObs())
	assert.Equal(t, 3, res.DFModel())
	assert.Equal(t, 1996, res.DFResid())
	assert.Len(t, res.Resid(), 1999)
	assert.Len(t, res.FittedValues(), 1999)
}

func TestFitInformationCriteria(t *testing.T) {
	res := fitSimulated(t, FitOptions{})
	n := float64(res.NObs())
	s2 := floats.Dot(res.Resid(), res.Resid()) / n

	assert.InDelta(t, s2, res.Sigma2(), 1e-12)
	assert.InDelta(t, -n/2*(math.Log(2*math.Pi)+math.Log(s2)+1), res.LLF(), 1e-8)
	assert.InDelta(t, math.Log(s2)+2*4/n, res.AIC(), 1e-12)
	assert.InDelta(t, math.Log(s2)+math.Log(n)*4/n, res.BIC(), 1e-12)
	assert.InDelta(t, math.Log(s2)+2*math.Log(math.Log(n))*4/n, res.HQIC(), 1e-12)
}

func TestFitCovarianceScale(t *testing.T) {
	ml := fitSimulated(t, FitOptions{})
	tdist := fitSimulated(t, FitOptions{UseT: true})

	n, k := float64(ml.NObs()), float64(ml.DFModel())
	for i := 0; i < 3; i++ {
		assert.InDelta(t, tdist.Cov().At(i, i)*(n-k)/n, ml.Cov().At(i, i), 1e-12)
	}

	robust := fitSimulated(t, FitOptions{CovType: "hc0"})
	assert.Equal(t, ols.CovHC0, robust.CovType())
	assert.Equal(t, ml.Params(), robust.Params())

	_, err := ml.Model().Fit(FitOptions{CovType: "HC9"})
	assert.ErrorIs(t, err, ols.ErrUnknownCovType)
}

func TestFitInference(t *testing.T) {
	for _, useT := range []bool{false, true} {
		res := fitSimulated(t, FitOptions{UseT: useT})
		ci, err := res.ConfInt(0.05)
		require.NoError(t, err)
		for i, p := range res.Params() {
			assert.Less(t, ci[i][0], p)
			assert.Greater(t, ci[i][1], p)
			assert.GreaterOrEqual(t, res.PValues()[i], 0.0)
			assert.LessOrEqual(t, res.PValues()[i], 1.0)
		}
		// the slope on x is far from zero
		assert.Less(t, res.PValues()[2], 1e-6)
		assert.Greater(t, res.TValues()[2], 10.0)
	}

	_, err := fitSimulated(t, FitOptions{}).ConfInt(1.5)
	assert.Error(t, err)
}

func TestPValuesMatchConfInt(t *testing.T) {
	// x has no effect, so its p-value is moderate and the interval at
	// alpha = p has an endpoint at zero
	y, x := simulate(200, 5, 1, 0.5, 0)
	m, err := New(Data{Endog: y, Exog: x}, ModelSpec{
		Lags:  UpTo(1),
		Order: Uniform(UpTo(0)),
		Trend: deterministic.TrendConst,
	})
	require.NoError(t, err)

	for _, useT := range []bool{false, true} {
		res, err := m.Fit(FitOptions{UseT: useT})
		require.NoError(t, err)
		p := res.PValues()[2]
		require.Greater(t, p, 1e-6)

		ci, err := res.ConfInt(p)
		require.NoError(t, err)
		edge := ci[2][0]
		if res.Params()[2] < 0 {
			edge = ci[2][1]
		}
		assert.InDelta(t, 0, edge, 1e-8)
	}
}

func TestFitNoRegressors(t *testing.T) {
	y := []float64{1, -1, 2, -2}
	m, err := New(Data{Endog: y}, ModelSpec{})
	require.NoError(t, err)

	res, err := m.Fit(FitOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Params())
	assert.Nil(t, res.Cov())
	assert.InDelta(t, 2.5, res.Sigma2(), 1e-12)
	assert.Equal(t, y, res.Resid())
	assert.Contains(t, res.Summary(), "ARDL(0)")
}

func TestSummary(t *testing.T) {
	s := fitSimulated(t, FitOptions{}).Summary()
	assert.Contains(t, s, "ARDL(1,0) results for y")
	assert.Contains(t, s, "y.L1")
	assert.Contains(t, s, "x.L0")
	assert.Contains(t, s, "P>|z|")
}

type countingEstimator struct {
	calls int
}

func (c *countingEstimator) Estimate(x mat.Matrix, y mat.Vector, opts ols.FitOptions) (*ols.Result, error) {
	c.calls++
	return ols.OLS{}.Estimate(x, y, opts)
}

func TestWithEstimator(t *testing.T) {
	y, _ := simulate(50, 12, 0, 0.4, 0)
	est := &countingEstimator{}
	m, err := New(Data{Endog: y}, ModelSpec{Lags: UpTo(1)}, WithEstimator(est))
	require.NoError(t, err)

	_, err = m.Fit(FitOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, est.calls)
}
