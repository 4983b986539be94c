package ardl

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/AKSoo/statsmodels/ols"
)

// FitOptions selects the covariance estimator and reference distribution.
type FitOptions = ols.FitOptions

// Results is a fitted ARDL model.
type Results struct {
	model  *Model
	opts   FitOptions
	params []float64
	cov    *mat.SymDense
	resid  []float64
	fitted []float64
	nobs   int
	k      int
}

// Fit estimates the model by least squares.
func (m *Model) Fit(opts FitOptions) (*Results, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	n, k := m.design.Rows, m.design.Cols()
	res := &Results{model: m, opts: opts, nobs: n, k: k}

	if k == 0 {
		res.params = []float64{}
		res.resid = append([]float64(nil), m.y.RawVector().Data...)
		res.fitted = make([]float64, n)
		return res, nil
	}

	fit, err := m.est.Estimate(m.design.X, m.y, opts)
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}

	cov := mat.NewSymDense(k, nil)
	cov.CopySym(fit.Cov)
	if opts.CovType == ols.CovNonRobust && !opts.UseT {
		// ML scale RSS/nobs instead of RSS/(nobs-k)
		cov.ScaleSym(float64(n-k)/float64(n), cov)
	}

	res.params = vecData(fit.Params)
	res.cov = cov
	res.resid = vecData(fit.Resid)
	res.fitted = vecData(fit.Fitted)

	m.log.Debug("fitted ARDL model",
		zap.String("cov_type", opts.CovType),
		zap.Int("nobs", n),
		zap.Int("k", k),
		zap.Int("rank", fit.Rank),
	)
	return res, nil
}

func vecData(v mat.Vector) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// Model returns the model that produced the results.
func (r *Results) Model() *Model { return r.model }

// Params returns the estimated coefficients in design column order.
func (r *Results) Params() []float64 { return append([]float64(nil), r.params...) }

// ParamNames returns the design column names.
func (r *Results) ParamNames() []string { return append([]string(nil), r.model.design.Names...) }

// Cov returns the parameter covariance; nil when the model has no regressors.
func (r *Results) Cov() *mat.SymDense {
	if r.cov == nil {
		return nil
	}
	return mat.NewSymDense(r.k, append([]float64(nil), r.cov.RawSymmetric().Data...))
}

// BSE returns the standard errors of the parameters.
func (r *Results) BSE() []float64 {
	out := make([]float64, r.k)
	for i := range out {
		out[i] = math.Sqrt(r.cov.At(i, i))
	}
	return out
}

// TValues returns params / bse.
func (r *Results) TValues() []float64 {
	out := r.BSE()
	for i := range out {
		out[i] = r.params[i] / out[i]
	}
	return out
}

// refDist is the reference distribution of the t statistics.
type refDist interface {
	Quantile(p float64) float64
	Survival(x float64) float64
}

func (r *Results) dist() refDist {
	if r.opts.UseT {
		return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(r.nobs - r.k)}
	}
	return distuv.UnitNormal
}

// PValues returns two-sided p-values from the normal or Student's t distribution.
func (r *Results) PValues() []float64 {
	d := r.dist()
	tv := r.TValues()
	out := make([]float64, len(tv))
	for i, t := range tv {
		out[i] = 2 * d.Survival(math.Abs(t))
	}
	return out
}

// ConfInt returns the 1-alpha confidence interval of each parameter.
func (r *Results) ConfInt(alpha float64) ([][2]float64, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("alpha must be in (0, 1), got %g", alpha)
	}
	return r.confInt(alpha), nil
}

// confInt assumes 0 < alpha < 1.
func (r *Results) confInt(alpha float64) [][2]float64 {
	q := r.dist().Quantile(1 - alpha/2)
	bse := r.BSE()
	out := make([][2]float64, r.k)
	for i, p := range r.params {
		out[i] = [2]float64{p - q*bse[i], p + q*bse[i]}
	}
	return out
}

// Resid returns the residuals over the estimation sample.
func (r *Results) Resid() []float64 { return append([]float64(nil), r.resid...) }

// FittedValues returns the fitted values over the estimation sample.
func (r *Results) FittedValues() []float64 { return append([]float64(nil), r.fitted...) }

// Sigma2 returns the maximum likelihood residual variance RSS/nobs.
func (r *Results) Sigma2() float64 {
	return floats.Dot(r.resid, r.resid) / float64(r.nobs)
}

// LLF returns the Gaussian log-likelihood.
func (r *Results) LLF() float64 {
	n := float64(r.nobs)
	return -n / 2 * (math.Log(2*math.Pi) + math.Log(r.Sigma2()) + 1)
}

// AIC returns the Akaike information criterion.
func (r *Results) AIC() float64 { return aic(r.Sigma2(), r.nobs, r.k) }

// BIC returns the Bayesian information criterion.
func (r *Results) BIC() float64 { return bic(r.Sigma2(), r.nobs, r.k) }

// HQIC returns the Hannan-Quinn information criterion.
func (r *Results) HQIC() float64 { return hqic(r.Sigma2(), r.nobs, r.k) }

func aic(sigma2 float64, nobs, df int) float64 {
	return math.Log(sigma2) + 2*float64(1+df)/float64(nobs)
}

func bic(sigma2 float64, nobs, df int) float64 {
	n := float64(nobs)
	return math.Log(sigma2) + math.Log(n)*float64(1+df)/n
}

func hqic(sigma2 float64, nobs, df int) float64 {
	n := float64(nobs)
	return math.Log(sigma2) + 2*math.Log(math.Log(n))*float64(1+df)/n
}

// NObs returns the number of observations used in estimation.
func (r *Results) NObs() int { return r.nobs }

// DFModel returns the number of regressors.
func (r *Results) DFModel() int { return r.k }

// DFResid returns nobs - k.
func (r *Results) DFResid() int { return r.nobs - r.k }

// CovType returns the covariance estimator used.
func (r *Results) CovType() string { return r.opts.CovType }

// ARDLOrder returns the maximum autoregressive lag and the maximum lag of
// each included exog variable.
func (r *Results) ARDLOrder() (int, []int) { return r.model.ARDLOrder() }

// Summary renders the coefficient table and fit statistics.
func (r *Results) Summary() string {
	var b strings.Builder

	p, q := r.ARDLOrder()
	order := []string{fmt.Sprint(p)}
	for _, v := range q {
		order = append(order, fmt.Sprint(v))
	}
	fmt.Fprintf(&b, "ARDL(%s) results for %s\n", strings.Join(order, ","), r.model.endogName)
	fmt.Fprintf(&b, "No. Observations: %d   Df Model: %d   Covariance: %s\n", r.nobs, r.k, r.opts.CovType)
	fmt.Fprintf(&b, "Log Likelihood: %.3f   S.D. of innovations: %.3f\n", r.LLF(), math.Sqrt(r.Sigma2()))
	fmt.Fprintf(&b, "AIC: %.3f   BIC: %.3f   HQIC: %.3f\n", r.AIC(), r.BIC(), r.HQIC())

	if r.k == 0 {
		return b.String()
	}

	stat := "z"
	if r.opts.UseT {
		stat = "t"
	}
	ci := r.confInt(0.05)
	bse, tv, pv := r.BSE(), r.TValues(), r.PValues()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "coef", "std err", stat, "P>|"+stat+"|", "[0.025", "0.975]")
	for i, name := range r.model.design.Names {
		t.Row(name,
			fmt.Sprintf("%.4f", r.params[i]),
			fmt.Sprintf("%.4f", bse[i]),
			fmt.Sprintf("%.3f", tv[i]),
			fmt.Sprintf("%.3f", pv[i]),
			fmt.Sprintf("%.3f", ci[i][0]),
			fmt.Sprintf("%.3f", ci[i][1]),
		)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}
