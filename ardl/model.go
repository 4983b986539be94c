package ardl

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/AKSoo/statsmodels/deterministic"
	"github.com/AKSoo/statsmodels/ols"
)

// MissingPolicy controls how NaN values in endog and exog are treated.
type MissingPolicy int

const (
	// MissingNone performs no checks.
	MissingNone MissingPolicy = iota
	// MissingDrop removes observations with NaN in endog or exog.
	MissingDrop
	// MissingRaise rejects data containing NaN.
	MissingRaise
)

// ParseMissing converts none, drop or raise into a MissingPolicy.
func ParseMissing(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return MissingNone, nil
	case "drop":
		return MissingDrop, nil
	case "raise":
		return MissingRaise, nil
	}
	return MissingNone, fmt.Errorf("unknown missing policy %q (expected none, drop or raise)", s)
}

func (p MissingPolicy) String() string {
	switch p {
	case MissingDrop:
		return "drop"
	case MissingRaise:
		return "raise"
	}
	return "none"
}

// Data holds the series a model is built from. Exog and Fixed are optional
// and, when set, have one row per endog observation.
type Data struct {
	Endog []float64
	// EndogName defaults to "y".
	EndogName string
	Exog      *mat.Dense
	// ExogNames label the exog columns; unlabeled columns are named x<index>.
	ExogNames []string
	// Fixed regressors enter the design without lags.
	Fixed *mat.Dense
	// FixedNames default to z.<index>.
	FixedNames []string
}

// ModelSpec describes the lag structure and deterministic terms of a model.
type ModelSpec struct {
	// Lags is the autoregressive order. Lag 0 is never included.
	Lags  LagSpec
	Order Order
	Trend deterministic.Trend
	// Causal excludes the contemporaneous exog values.
	Causal   bool
	Seasonal bool
	Period   int
	// Deterministic replaces the terms built from Trend and Seasonal.
	Deterministic deterministic.Process
	// HoldBack is the number of leading observations excluded from
	// estimation. Values <= 0 select the maximum lag.
	HoldBack int
	Missing  MissingPolicy
}

type options struct {
	logger    *zap.Logger
	estimator ols.Estimator
}

// Option configures model construction and order selection.
type Option func(*options)

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEstimator replaces the least squares estimator used by Fit.
func WithEstimator(e ols.Estimator) Option {
	return func(o *options) {
		if e != nil {
			o.estimator = e
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), estimator: ols.OLS{}}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Model is an ARDL model with a validated lag structure and an assembled
// design matrix. It is immutable after New returns.
type Model struct {
	spec ModelSpec
	log  *zap.Logger
	est  ols.Estimator

	endog      []float64
	endogName  string
	exog       *mat.Dense
	exogNames  []string
	fixed      *mat.Dense
	fixedNames []string

	det      deterministic.Process
	detNames []string

	arLags   []int
	exogLags []VarLags
	causal   bool
	maxLag   int
	holdBack int

	design   *DesignMatrix
	y        *mat.VecDense
	warnings []string
}

// New validates the lag orders and assembles the design matrix.
// data: the endog series with optional exog and fixed regressors
// spec: lag orders, deterministic terms and hold back
// Returns: the model or an error wrapping one of the package sentinels
func New(data Data, spec ModelSpec, opts ...Option) (*Model, error) {
	o := newOptions(opts)
	m := &Model{
		spec: spec,
		log:  o.logger,
		est:  o.estimator,
	}

	// 1. Data shapes, names and the missing value policy
	if err := m.setData(data); err != nil {
		return nil, err
	}
	nobs := len(m.endog)

	// 2. Lag orders
	ar, err := arLags(spec.Lags)
	if err != nil {
		return nil, err
	}
	m.arLags = ar

	exogLags, warning, err := formatOrder(m.exogNames, spec.Order, spec.Causal)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		m.warn(warning, zap.Strings("missing", missingFromOrder(m.exogNames, spec.Order)))
	}
	m.exogLags = exogLags

	m.causal = true
	for _, v := range exogLags {
		if minOf(v.Lags) == 0 {
			m.causal = false
		}
	}

	// 3. Deterministic terms
	if err := m.setDeterministic(nobs); err != nil {
		return nil, err
	}

	// 4. Hold back
	m.maxLag = maxOf(ar)
	for _, v := range exogLags {
		m.maxLag = max(m.maxLag, maxOf(v.Lags))
	}
	m.holdBack = m.maxLag
	if spec.HoldBack > 0 {
		if spec.HoldBack < m.maxLag {
			return nil, fmt.Errorf("hold_back %d < maxlag %d: %w", spec.HoldBack, m.maxLag, ErrHoldBack)
		}
		m.holdBack = spec.HoldBack
	}
	if m.holdBack >= nobs {
		return nil, fmt.Errorf("hold_back %d leaves no observations out of %d: %w", m.holdBack, nobs, ErrInsufficientDOF)
	}

	// 5. Design matrix
	full, err := m.assemble(m.sources())
	if err != nil {
		return nil, err
	}
	rows := nobs - m.holdBack
	if full.width() > rows {
		return nil, fmt.Errorf("%d regressors but only %d observations after hold_back: %w",
			full.width(), rows, ErrInsufficientDOF)
	}
	m.design = &DesignMatrix{Names: full.names, X: full.dense(m.holdBack), Rows: rows}
	m.y = mat.NewVecDense(rows, append([]float64(nil), m.endog[m.holdBack:]...))

	m.log.Debug("assembled ARDL design",
		zap.Int("nobs", nobs),
		zap.Int("hold_back", m.holdBack),
		zap.Int("rows", rows),
		zap.Strings("columns", full.names),
	)
	return m, nil
}

func (m *Model) warn(msg string, fields ...zap.Field) {
	m.warnings = append(m.warnings, msg)
	m.log.Warn(msg, fields...)
}

func missingFromOrder(names []string, order Order) []string {
	var out []string
	for i, n := range names {
		if _, ok := order.byName[n]; ok {
			continue
		}
		if _, ok := order.byIndex[i]; ok {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (m *Model) setData(data Data) error {
	nobs := len(data.Endog)
	if nobs == 0 {
		return fmt.Errorf("endog is empty: %w", ErrShapeMismatch)
	}
	m.endogName = data.EndogName
	if m.endogName == "" {
		m.endogName = "y"
	}

	endog := append([]float64(nil), data.Endog...)
	var exog, fixed *mat.Dense
	if data.Exog != nil {
		r, c := data.Exog.Dims()
		if r != nobs {
			return fmt.Errorf("exog has %d rows, endog has %d: %w", r, nobs, ErrShapeMismatch)
		}
		if len(data.ExogNames) != 0 && len(data.ExogNames) != c {
			return fmt.Errorf("%d exog names for %d columns: %w", len(data.ExogNames), c, ErrShapeMismatch)
		}
		exog = mat.DenseCopyOf(data.Exog)
		m.exogNames = make([]string, c)
		for j := range m.exogNames {
			m.exogNames[j] = columnName(data.ExogNames, j)
		}
	}
	if data.Fixed != nil {
		_, c := data.Fixed.Dims()
		if len(data.FixedNames) != 0 && len(data.FixedNames) != c {
			return fmt.Errorf("%d fixed names for %d columns: %w", len(data.FixedNames), c, ErrInvalidFixed)
		}
		fixed = mat.DenseCopyOf(data.Fixed)
		m.fixedNames = make([]string, c)
		for j := range m.fixedNames {
			if j < len(data.FixedNames) && data.FixedNames[j] != "" {
				m.fixedNames[j] = data.FixedNames[j]
			} else {
				m.fixedNames[j] = fmt.Sprintf("z.%d", j)
			}
		}
	}

	switch m.spec.Missing {
	case MissingRaise:
		if bad := rowsWithNaN(endog, exog); len(bad) > 0 {
			return fmt.Errorf("%d observations contain NaN: %w", len(bad), ErrMissingValues)
		}
	case MissingDrop:
		if bad := rowsWithNaN(endog, exog); len(bad) > 0 {
			if fixed != nil {
				if r, _ := fixed.Dims(); r != nobs {
					return fmt.Errorf("fixed has %d rows, endog has %d: %w", r, nobs, ErrInvalidFixed)
				}
			}
			endog, exog, fixed = dropRows(bad, endog, exog, fixed)
			if len(endog) == 0 {
				return fmt.Errorf("every observation contains NaN: %w", ErrMissingValues)
			}
		}
	}

	if err := checkFixed(fixed, len(endog)); err != nil {
		return err
	}
	m.endog, m.exog, m.fixed = endog, exog, fixed
	return nil
}

func rowsWithNaN(endog []float64, exog *mat.Dense) map[int]bool {
	bad := make(map[int]bool)
	for i, v := range endog {
		if math.IsNaN(v) {
			bad[i] = true
		}
	}
	if exog != nil {
		r, c := exog.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if math.IsNaN(exog.At(i, j)) {
					bad[i] = true
				}
			}
		}
	}
	return bad
}

func dropRows(bad map[int]bool, endog []float64, exog, fixed *mat.Dense) ([]float64, *mat.Dense, *mat.Dense) {
	keep := make([]int, 0, len(endog)-len(bad))
	for i := range endog {
		if !bad[i] {
			keep = append(keep, i)
		}
	}
	out := make([]float64, len(keep))
	for k, i := range keep {
		out[k] = endog[i]
	}
	return out, keepRows(exog, keep), keepRows(fixed, keep)
}

func keepRows(a *mat.Dense, keep []int) *mat.Dense {
	if a == nil || len(keep) == 0 {
		return nil
	}
	_, c := a.Dims()
	out := mat.NewDense(len(keep), c, nil)
	for k, i := range keep {
		out.SetRow(k, a.RawRowView(i))
	}
	return out
}

func (m *Model) setDeterministic(nobs int) error {
	if m.spec.Deterministic != nil {
		if m.spec.Trend != deterministic.TrendNone || m.spec.Seasonal {
			m.warn("deterministic process supplied; trend and seasonal settings are ignored",
				zap.Stringer("trend", m.spec.Trend), zap.Bool("seasonal", m.spec.Seasonal))
		}
		m.det = m.spec.Deterministic
		if in := m.det.InSample(); in != nil {
			r, c := in.Dims()
			if r != nobs || c != len(m.det.Names()) {
				return fmt.Errorf("deterministic terms are %dx%d, want %dx%d: %w",
					r, c, nobs, len(m.det.Names()), ErrShapeMismatch)
			}
		}
	} else {
		p, err := deterministic.New(nobs, deterministic.Options{
			Trend:    m.spec.Trend,
			Seasonal: m.spec.Seasonal,
			Period:   m.spec.Period,
		})
		if err != nil {
			return fmt.Errorf("deterministic terms: %w", err)
		}
		m.det = p
	}
	m.detNames = m.det.Names()
	return nil
}

func (m *Model) sources() sources {
	return sources{endog: m.endog, exog: m.exog, fixed: m.fixed, det: m.det.InSample()}
}

// ARLags returns the included autoregressive lags.
func (m *Model) ARLags() []int { return append([]int(nil), m.arLags...) }

// ExogLags returns the lags of every included exog variable in data order.
func (m *Model) ExogLags() []VarLags {
	out := make([]VarLags, len(m.exogLags))
	for i, v := range m.exogLags {
		out[i] = VarLags{Name: v.Name, Column: v.Column, Lags: append([]int(nil), v.Lags...)}
	}
	return out
}

// HoldBack returns the number of leading observations excluded from estimation.
func (m *Model) HoldBack() int { return m.holdBack }

// MaxLag returns the largest lag across the endog and exog blocks.
func (m *Model) MaxLag() int { return m.maxLag }

// Causal reports whether every included exog variable starts at lag 1 or later.
func (m *Model) Causal() bool { return m.causal }

// NObs returns the number of observations used in estimation.
func (m *Model) NObs() int { return m.design.Rows }

// Design returns a copy of the trimmed design matrix.
func (m *Model) Design() DesignMatrix {
	d := DesignMatrix{Names: append([]string(nil), m.design.Names...), Rows: m.design.Rows}
	if m.design.X != nil {
		d.X = mat.DenseCopyOf(m.design.X)
	}
	return d
}

// Endog returns the full endog series after missing value handling.
func (m *Model) Endog() []float64 { return append([]float64(nil), m.endog...) }

// Warnings returns the non-fatal warnings raised by New.
func (m *Model) Warnings() []string { return append([]string(nil), m.warnings...) }

// ARDLOrder returns the maximum autoregressive lag and the maximum lag of
// each included exog variable.
func (m *Model) ARDLOrder() (int, []int) {
	q := make([]int, len(m.exogLags))
	for i, v := range m.exogLags {
		q[i] = maxOf(v.Lags)
	}
	return maxOf(m.arLags), q
}

// Spec returns the ModelSpec the model was built from.
func (m *Model) Spec() ModelSpec { return m.spec }
