package ardl

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/AKSoo/statsmodels/ols"
)

// Criterion is an information criterion used to rank candidate models.
type Criterion int

const (
	// CriterionBIC is the default.
	CriterionBIC Criterion = iota
	CriterionAIC
	CriterionHQIC
)

// ParseCriterion converts aic, bic or hqic into a Criterion.
func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bic":
		return CriterionBIC, nil
	case "aic":
		return CriterionAIC, nil
	case "hqic":
		return CriterionHQIC, nil
	}
	return CriterionBIC, fmt.Errorf("unknown information criterion %q (expected aic, bic or hqic)", s)
}

func (c Criterion) String() string {
	switch c {
	case CriterionAIC:
		return "aic"
	case CriterionHQIC:
		return "hqic"
	}
	return "bic"
}

// SelectSpec configures an order search.
type SelectSpec struct {
	// Model supplies the deterministic terms, causality, hold back and missing
	// policy. Its Lags and Order are replaced by MaxLag and MaxOrder.
	Model ModelSpec
	// MaxLag is the largest autoregressive lag considered.
	MaxLag int
	// MaxOrder bounds the exog lags considered, per variable or uniformly.
	MaxOrder Order
	IC       Criterion
	// Global searches every subset of the lag columns instead of nested
	// prefixes.
	Global bool
	// MaxCandidates limits the number of candidates. Zero means no limit.
	MaxCandidates int
	// FallbackToNested switches an oversized global search to nested mode
	// instead of failing with ErrSearchTooLarge.
	FallbackToNested bool
	// Workers bounds the number of concurrently scored candidates.
	// Zero uses GOMAXPROCS.
	Workers int
}

// ExogKey is the lag set chosen for one exog variable; nil Lags means the
// variable is excluded.
type ExogKey struct {
	Name string
	Lags []int
}

// SelectionKey identifies one candidate lag structure.
type SelectionKey struct {
	AR   []int
	Exog []ExogKey
}

func (k SelectionKey) String() string {
	parts := []string{"ar=" + keyLags(k.AR)}
	for _, e := range k.Exog {
		parts = append(parts, e.Name+"="+keyLags(e.Lags))
	}
	return strings.Join(parts, " ")
}

func keyLags(lags []int) string {
	if len(lags) == 0 {
		return "none"
	}
	return formatLags(lags)
}

// Candidate is one scored lag structure.
type Candidate struct {
	Key  SelectionKey
	AIC  float64
	BIC  float64
	HQIC float64

	columns []int
}

// Value returns the candidate's value of c.
func (c Candidate) Value(ic Criterion) float64 {
	switch ic {
	case CriterionAIC:
		return c.AIC
	case CriterionHQIC:
		return c.HQIC
	}
	return c.BIC
}

// SelectionResult holds the refitted best model and every scored candidate.
type SelectionResult struct {
	// Model is rebuilt with the selected lags and the search's hold back.
	Model *Model
	// Candidates are in enumeration order.
	Candidates []Candidate
	IC         Criterion
	// Global reports the search mode actually used.
	Global bool

	best int
}

// Best returns the selected candidate.
func (s *SelectionResult) Best() Candidate { return s.Candidates[s.best] }

// Ranked returns the candidates sorted by ic ascending. Ties keep
// enumeration order.
func (s *SelectionResult) Ranked(ic Criterion) []Candidate {
	out := append([]Candidate(nil), s.Candidates...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value(ic) < out[j].Value(ic) })
	return out
}

// Lookup returns the candidate with the given key.
func (s *SelectionResult) Lookup(key SelectionKey) (Candidate, bool) {
	want := key.String()
	for _, c := range s.Candidates {
		if c.Key.String() == want {
			return c, true
		}
	}
	return Candidate{}, false
}

// search is the read-only state shared by every candidate evaluation.
type search struct {
	base  *Model
	y     *mat.VecDense
	cols  [][]float64
	keyOf []keyRef
	// alwaysDF counts the deterministic and fixed regressors.
	alwaysDF int
	exogVars []VarLags
}

// keyRef locates a selectable column: block -1 is the endog block.
type keyRef struct {
	block int
	lag   int
}

func (sel SelectSpec) baseSpec() ModelSpec {
	spec := sel.Model
	spec.Lags = UpTo(sel.MaxLag)
	spec.Order = sel.MaxOrder
	return spec
}

func (sel SelectSpec) generator(s *search, log *zap.Logger) (candidateGenerator, bool, error) {
	if !sel.Global {
		return s.nested(), false, nil
	}
	g := newGlobalGenerator(len(s.cols))
	if sel.MaxCandidates > 0 && g.Count() > sel.MaxCandidates {
		if !sel.FallbackToNested {
			return nil, false, fmt.Errorf("global search has %d candidate columns (limit %d candidates): %w",
				len(s.cols), sel.MaxCandidates, ErrSearchTooLarge)
		}
		log.Warn("global order search too large, falling back to nested search",
			zap.Int("columns", len(s.cols)), zap.Int("max_candidates", sel.MaxCandidates))
		return s.nested(), false, nil
	}
	return g, true, nil
}

func (s *search) nested() *nestedGenerator {
	widths := []int{len(s.base.arLags)}
	for _, v := range s.exogVars {
		widths = append(widths, len(v.Lags))
	}
	return newNestedGenerator(widths)
}

// CandidateCount returns the number of candidates SelectOrder would score.
func CandidateCount(data Data, sel SelectSpec, opts ...Option) (int, error) {
	base, err := New(data, sel.baseSpec(), opts...)
	if err != nil {
		return 0, err
	}
	s, err := newSearch(base)
	if err != nil {
		return 0, err
	}
	g, _, err := sel.generator(s, zap.NewNop())
	if err != nil {
		return 0, err
	}
	if sel.MaxCandidates > 0 && g.Count() > sel.MaxCandidates {
		return g.Count(), fmt.Errorf("%d candidates (limit %d): %w", g.Count(), sel.MaxCandidates, ErrSearchTooLarge)
	}
	return g.Count(), nil
}

// SelectOrder searches autoregressive lags up to MaxLag and exog lags up to
// MaxOrder for the structure minimizing the chosen information criterion,
// then refits that structure.
// data: the endog series with optional exog and fixed regressors
// sel: search bounds, mode and criterion
// Returns: the selected model and every scored candidate
func SelectOrder(data Data, sel SelectSpec, opts ...Option) (*SelectionResult, error) {
	o := newOptions(opts)

	// 1. Base model with every lag column the search may use
	base, err := New(data, sel.baseSpec(), opts...)
	if err != nil {
		return nil, fmt.Errorf("base model: %w", err)
	}
	s, err := newSearch(base)
	if err != nil {
		return nil, err
	}

	gen, global, err := sel.generator(s, o.logger)
	if err != nil {
		return nil, err
	}
	if sel.MaxCandidates > 0 && gen.Count() > sel.MaxCandidates {
		return nil, fmt.Errorf("%d candidates (limit %d): %w", gen.Count(), sel.MaxCandidates, ErrSearchTooLarge)
	}
	o.logger.Debug("scoring ARDL order candidates",
		zap.Bool("global", global), zap.Int("candidates", gen.Count()))

	// 2. Score candidates concurrently; each goroutine owns one slot
	workers := sel.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	cands := make([]Candidate, 0, gen.Count())
	for gen.Next() {
		cols := gen.Columns()
		cands = append(cands, Candidate{Key: s.key(cols), columns: cols})
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range cands {
		c := &cands[i]
		g.Go(func() error {
			return s.score(c)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 3. Lowest criterion wins, first encountered on ties
	best := 0
	for i, c := range cands {
		if c.Value(sel.IC) < cands[best].Value(sel.IC) {
			best = i
		}
	}
	o.logger.Debug("selected ARDL order",
		zap.Stringer("key", cands[best].Key), zap.Stringer("ic", sel.IC),
		zap.Float64("value", cands[best].Value(sel.IC)))

	// 4. Refit the winner with the base hold back
	spec := sel.Model
	spec.HoldBack = base.holdBack
	spec.Lags, spec.Order = cands[best].Key.spec(len(base.exogNames), s.exogVars)
	model, err := New(data, spec, opts...)
	if err != nil {
		return nil, fmt.Errorf("refit selected model: %w", err)
	}

	return &SelectionResult{
		Model:      model,
		Candidates: cands,
		IC:         sel.IC,
		Global:     global,
		best:       best,
	}, nil
}

// spec converts the key back into lag specs. Every exog column is keyed so
// that the rebuilt model raises no missing-key warning.
func (k SelectionKey) spec(nexog int, vars []VarLags) (LagSpec, Order) {
	ar := Lags(k.AR...)
	if nexog == 0 {
		return ar, Order{}
	}
	m := make(map[int]LagSpec, nexog)
	for i := 0; i < nexog; i++ {
		m[i] = Excluded()
	}
	for i, e := range k.Exog {
		if len(e.Lags) > 0 {
			m[vars[i].Column] = Lags(e.Lags...)
		}
	}
	return ar, ByColumn(m)
}

// newSearch projects the always-included regressors out of the response and
// of every selectable lag column.
func newSearch(base *Model) (*search, error) {
	always, endog, exog, err := base.blocks()
	if err != nil {
		return nil, err
	}

	s := &search{base: base, alwaysDF: always.width(), exogVars: base.exogLags}
	for j, lag := range base.arLags {
		s.cols = append(s.cols, endog.cols[j])
		s.keyOf = append(s.keyOf, keyRef{block: -1, lag: lag})
	}
	for b, blk := range exog {
		for j, lag := range base.exogLags[b].Lags {
			s.cols = append(s.cols, blk.cols[j])
			s.keyOf = append(s.keyOf, keyRef{block: b, lag: lag})
		}
	}

	n := base.design.Rows
	y := mat.NewVecDense(n, append([]float64(nil), base.y.RawVector().Data...))
	if always.width() == 0 {
		s.y = y
		return s, nil
	}

	a := always.dense(0)
	pinv, err := ols.Pinv(a)
	if err != nil {
		return nil, fmt.Errorf("project deterministic and fixed terms: %w", err)
	}
	ry := ols.Residualize(a, pinv, y)
	s.y = mat.NewVecDense(n, nil)
	s.y.CopyVec(ry.ColView(0))

	if len(s.cols) > 0 {
		sel := block{cols: s.cols}.dense(0)
		rs := ols.Residualize(a, pinv, sel)
		for j := range s.cols {
			s.cols[j] = mat.Col(nil, j, rs)
		}
	}
	return s, nil
}

// key maps a column subset to its lag structure.
func (s *search) key(cols []int) SelectionKey {
	k := SelectionKey{Exog: make([]ExogKey, len(s.exogVars))}
	for i, v := range s.exogVars {
		k.Exog[i].Name = v.Name
	}
	for _, c := range cols {
		ref := s.keyOf[c]
		if ref.block < 0 {
			k.AR = append(k.AR, ref.lag)
			continue
		}
		k.Exog[ref.block].Lags = append(k.Exog[ref.block].Lags, ref.lag)
	}
	return k
}

// score fills the criteria of c from the residual sum of squares of the
// projected response on the projected candidate columns.
func (s *search) score(c *Candidate) error {
	var x mat.Matrix
	if len(c.columns) > 0 {
		n := s.y.Len()
		d := mat.NewDense(n, len(c.columns), nil)
		for j, col := range c.columns {
			d.SetCol(j, s.cols[col])
		}
		x = d
	}
	rss, err := ols.RSS(x, s.y)
	if err != nil {
		return fmt.Errorf("candidate %s: %w", c.Key, err)
	}

	nobs := s.y.Len()
	df := s.alwaysDF + len(c.columns)
	c.AIC = aic(rss, nobs, df)
	c.BIC = bic(rss, nobs, df)
	c.HQIC = hqic(rss, nobs, df)
	return nil
}
