package ardl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PredictOptions supplies replacement and out-of-sample data for prediction.
type PredictOptions struct {
	// Exog replaces the in-sample exog and must match its shape.
	Exog *mat.Dense
	// ExogOOS holds exog values following the sample.
	ExogOOS *mat.Dense
	// Fixed replaces the in-sample fixed regressors and must match their shape.
	Fixed *mat.Dense
	// FixedOOS holds fixed regressor values following the sample.
	FixedOOS *mat.Dense
	// Dynamic substitutes earlier predictions for the endog lags from
	// DynamicStart onward. DynamicStart is an offset from start.
	Dynamic      bool
	DynamicStart int
}

// Predict returns in-sample predictions and out-of-sample forecasts for
// observations start..end inclusive, using the fitted parameters.
func (r *Results) Predict(start, end int, opts PredictOptions) ([]float64, error) {
	return r.model.Predict(r.params, start, end, opts)
}

// Forecast returns steps out-of-sample forecasts following the sample.
// exog and fixed hold the out-of-sample values and may be nil when the model
// does not need them.
func (r *Results) Forecast(steps int, exog, fixed *mat.Dense) ([]float64, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be positive, got %d: %w", steps, ErrInvalidPrediction)
	}
	nobs := len(r.model.endog)
	return r.Predict(nobs, nobs+steps-1, PredictOptions{ExogOOS: exog, FixedOOS: fixed})
}

// Prediction holds predicted means and their variances.
type Prediction struct {
	Mean []float64
	Var  []float64
}

// ConfInt returns normal 1-alpha prediction intervals.
func (p *Prediction) ConfInt(alpha float64) ([][2]float64, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("alpha must be in (0, 1), got %g", alpha)
	}
	q := distuv.UnitNormal.Quantile(1 - alpha/2)
	out := make([][2]float64, len(p.Mean))
	for i, m := range p.Mean {
		se := math.Sqrt(p.Var[i])
		out[i] = [2]float64{m - q*se, m + q*se}
	}
	return out, nil
}

// GetPrediction returns predictions with variances. In-sample variances are
// sigma2; out-of-sample variances accumulate the squared MA(inf) weights of
// the autoregressive polynomial.
func (r *Results) GetPrediction(start, end int, opts PredictOptions) (*Prediction, error) {
	mean, err := r.Predict(start, end, opts)
	if err != nil {
		return nil, err
	}
	s2 := r.Sigma2()
	v := make([]float64, len(mean))
	for i, m := range mean {
		if math.IsNaN(m) {
			v[i] = math.NaN()
			continue
		}
		v[i] = s2
	}

	if oos := end - (len(r.model.endog) - 1); oos > 0 {
		psi := r.maWeights(oos)
		floats.Mul(psi, psi)
		floats.CumSum(psi, psi)
		for j := 0; j < oos; j++ {
			v[len(v)-oos+j] = s2 * psi[j]
		}
	}
	return &Prediction{Mean: mean, Var: v}, nil
}

// maWeights returns psi_0..psi_{n-1} of 1/phi(L), with psi_0 = 1.
func (r *Results) maWeights(n int) []float64 {
	offset := len(r.model.detNames)
	phi := make([]float64, r.model.maxLag+1)
	for i, lag := range r.model.arLags {
		phi[lag] = r.params[offset+i]
	}

	psi := make([]float64, n)
	psi[0] = 1
	for j := 1; j < n; j++ {
		for i := 1; i <= min(j, len(phi)-1); i++ {
			psi[j] += phi[i] * psi[j-i]
		}
	}
	return psi
}

// oneStepBound is the number of out-of-sample steps that need no future exog
// or fixed values. math.MaxInt means unbounded.
func (m *Model) oneStepBound() int {
	if m.fixed != nil || !m.causal {
		return 0
	}
	bound := math.MaxInt
	if len(m.arLags) > 0 {
		bound = minOf(m.arLags)
	}
	for _, v := range m.exogLags {
		bound = min(bound, minOf(v.Lags))
	}
	return bound
}

// Predict computes predictions for observations start..end inclusive with
// the given parameters. Observations before the hold back are NaN.
// params: one coefficient per design column
// start: first observation, at most nobs
// end: last observation; values past nobs-1 are out-of-sample forecasts
// opts: replacement and out-of-sample data and the dynamic start
// Returns: end-start+1 predictions
func (m *Model) Predict(params []float64, start, end int, opts PredictOptions) ([]float64, error) {
	k := m.design.Cols()
	if len(params) != k {
		return nil, fmt.Errorf("%d params for %d regressors: %w", len(params), k, ErrShapeMismatch)
	}
	nobs := len(m.endog)
	if start < 0 || start > nobs {
		return nil, fmt.Errorf("start %d outside 0..%d: %w", start, nobs, ErrInvalidPrediction)
	}
	if end < start {
		return nil, fmt.Errorf("end %d is before start %d: %w", end, start, ErrInvalidPrediction)
	}
	if opts.Dynamic && opts.DynamicStart < 0 {
		return nil, fmt.Errorf("dynamic prediction cannot begin before start: %w", ErrInvalidPrediction)
	}
	if err := m.checkPredictData(opts); err != nil {
		return nil, err
	}

	endIn := min(end, nobs-1)
	numOOS := max(end-(nobs-1), 0)
	rows := end - start + 1
	inRows := max(endIn+1-start, 0)

	// 1. Out-of-sample data requirements
	if bound := m.oneStepBound(); numOOS > bound {
		if len(m.exogLags) > 0 {
			if opts.ExogOOS == nil {
				return nil, fmt.Errorf("exog_oos must be provided when out-of-sample observations "+
					"require exog values not in the sample: %w", ErrExogOOSRequired)
			}
			if r, _ := opts.ExogOOS.Dims(); numOOS-bound > r {
				return nil, fmt.Errorf("exog_oos must have at least %d observations to produce %d forecasts: %w",
					numOOS-bound, numOOS, ErrExogOOSRequired)
			}
		}
		if m.fixed != nil {
			if opts.FixedOOS == nil {
				return nil, fmt.Errorf("fixed_oos must be provided when predicting out-of-sample: %w", ErrFixedOOSRequired)
			}
			if r, _ := opts.FixedOOS.Dims(); r < numOOS {
				return nil, fmt.Errorf("fixed_oos must have at least %d observations to produce %d forecasts: %w",
					numOOS, numOOS, ErrFixedOOSRequired)
			}
		}
	}

	if k == 0 {
		out := make([]float64, rows)
		for i := range out {
			if start+i < m.holdBack {
				out[i] = math.NaN()
			}
		}
		return out, nil
	}

	// 2. Regressors for every requested row
	var x *mat.Dense
	if numOOS == 0 && opts.Exog == nil && opts.Fixed == nil {
		x = m.designRows(start, rows)
	} else {
		var err error
		if x, err = m.forecastingX(start, rows, numOOS, opts); err != nil {
			return nil, err
		}
	}

	// 3. Static region, then the recursive walk
	dynStart := inRows
	if opts.Dynamic {
		dynStart = opts.DynamicStart
		if start < m.holdBack {
			dynStart = max(dynStart, m.holdBack-start)
		}
		dynStart = min(dynStart, inRows)
	}

	beta := mat.NewVecDense(k, append([]float64(nil), params...))
	fcasts := make([]float64, rows)
	for i := 0; i < dynStart; i++ {
		fcasts[i] = mat.Dot(x.RowView(i), beta)
	}

	offset := len(m.detNames)
	for i := dynStart; i < rows; i++ {
		for j, lag := range m.arLags {
			loc := i - lag
			var val float64
			if loc >= dynStart {
				val = fcasts[loc]
			} else {
				val = m.endog[start+loc]
			}
			x.Set(i, offset+j, val)
		}
		fcasts[i] = mat.Dot(x.RowView(i), beta)
	}
	return fcasts, nil
}

func (m *Model) checkPredictData(opts PredictOptions) error {
	nobs := len(m.endog)
	check := func(name string, arr, orig *mat.Dense, exact bool, sentinel error) error {
		if arr == nil {
			return nil
		}
		if orig == nil {
			return fmt.Errorf("%s given but the model has none: %w", name, ErrShapeMismatch)
		}
		r, c := arr.Dims()
		_, oc := orig.Dims()
		if c != oc {
			return fmt.Errorf("%s must have %d columns, got %d: %w", name, oc, c, sentinel)
		}
		if exact && r != nobs {
			return fmt.Errorf("%s must have %d rows, got %d: %w", name, nobs, r, sentinel)
		}
		return nil
	}
	if err := check("exog", opts.Exog, m.exog, true, ErrShapeMismatch); err != nil {
		return err
	}
	if err := check("exog_oos", opts.ExogOOS, m.exog, false, ErrShapeMismatch); err != nil {
		return err
	}
	if err := check("fixed", opts.Fixed, m.fixed, true, ErrInvalidFixed); err != nil {
		return err
	}
	return check("fixed_oos", opts.FixedOOS, m.fixed, false, ErrInvalidFixed)
}

// designRows reads in-sample rows from the assembled design, padding rows
// before the hold back with NaN.
func (m *Model) designRows(start, rows int) *mat.Dense {
	k := m.design.Cols()
	x := mat.NewDense(rows, k, nil)
	for i := 0; i < rows; i++ {
		t := start + i
		if t < m.holdBack {
			x.SetRow(i, nanRow(k))
			continue
		}
		x.SetRow(i, m.design.X.RawRowView(t-m.holdBack))
	}
	return x
}

// forecastingX rebuilds the design over the sample extended by numOOS
// observations and returns rows start..start+rows-1.
func (m *Model) forecastingX(start, rows, numOOS int, opts PredictOptions) (*mat.Dense, error) {
	nobs := len(m.endog)
	total := nobs + numOOS

	endog := make([]float64, total)
	copy(endog, m.endog)
	for i := nobs; i < total; i++ {
		endog[i] = math.NaN()
	}

	exog := m.exog
	if opts.Exog != nil {
		exog = opts.Exog
	}
	fixed := m.fixed
	if opts.Fixed != nil {
		fixed = opts.Fixed
	}
	det := m.det.InSample()
	if numOOS > 0 {
		exog = extend(exog, opts.ExogOOS, numOOS)
		fixed = extend(fixed, opts.FixedOOS, numOOS)
		det = extend(det, m.det.OutOfSample(numOOS), numOOS)
	}

	full, err := m.assemble(sources{endog: endog, exog: exog, fixed: fixed, det: det})
	if err != nil {
		return nil, err
	}

	k := full.width()
	x := mat.NewDense(rows, k, nil)
	for i := 0; i < rows; i++ {
		t := start + i
		for j, col := range full.cols {
			if t < m.holdBack {
				x.Set(i, j, math.NaN())
				continue
			}
			x.Set(i, j, col[t])
		}
	}
	return x, nil
}

// extend stacks the first n rows of oos below a, padding with NaN when oos is
// nil or short. A nil a stays nil.
func extend(a, oos *mat.Dense, n int) *mat.Dense {
	if a == nil {
		return nil
	}
	r, c := a.Dims()
	out := mat.NewDense(r+n, c, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(a)

	avail := 0
	if oos != nil {
		avail, _ = oos.Dims()
	}
	for i := 0; i < n; i++ {
		if i < avail {
			out.SetRow(r+i, oos.RawRowView(i))
			continue
		}
		out.SetRow(r+i, nanRow(c))
	}
	return out
}

func nanRow(k int) []float64 {
	row := make([]float64, k)
	for j := range row {
		row[j] = math.NaN()
	}
	return row
}
