package ardl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AKSoo/statsmodels/deterministic"
)

func collect(g candidateGenerator) [][]int {
	var out [][]int
	for g.Next() {
		out = append(out, g.Columns())
	}
	return out
}

func TestNestedGenerator(t *testing.T) {
	g := newNestedGenerator([]int{2, 1})
	assert.Equal(t, 6, g.Count())

	want := [][]int{nil, {2}, {0}, {0, 2}, {0, 1}, {0, 1, 2}}
	assert.Equal(t, want, collect(g))

	g.Reset()
	assert.Equal(t, want, collect(g))

	empty := newNestedGenerator([]int{0})
	assert.Equal(t, 1, empty.Count())
	assert.Equal(t, [][]int{nil}, collect(empty))
}

func TestGlobalGenerator(t *testing.T) {
	g := newGlobalGenerator(3)
	assert.Equal(t, 8, g.Count())

	want := [][]int{nil, {0}, {1}, {2}, {0, 1}, {0, 2}, {1, 2}, {0, 1, 2}}
	assert.Equal(t, want, collect(g))

	g.Reset()
	assert.Len(t, collect(g), 8)

	assert.Equal(t, [][]int{nil}, collect(newGlobalGenerator(0)))
	assert.Equal(t, math.MaxInt, globalCount(80))
}

func selectionData() Data {
	y, x := simulate(2000, 31, 1, 0.5, 2)
	return Data{Endog: y, Exog: x, ExogNames: []string{"x"}}
}

func selectSpec(global bool) SelectSpec {
	return SelectSpec{
		Model:    ModelSpec{Trend: deterministic.TrendConst},
		MaxLag:   2,
		MaxOrder: Uniform(UpTo(1)),
		IC:       CriterionBIC,
		Global:   global,
		Workers:  3,
	}
}

func TestSelectOrderFindsTrueStructure(t *testing.T) {
	data := selectionData()
	want := SelectionKey{AR: []int{1}, Exog: []ExogKey{{Name: "x", Lags: []int{0}}}}

	for _, global := range []bool{false, true} {
		sel, err := SelectOrder(data, selectSpec(global))
		require.NoError(t, err, "global=%t", global)

		assert.Equal(t, global, sel.Global)
		assert.Equal(t, want.String(), sel.Best().Key.String())
		assert.Equal(t, []int{1}, sel.Model.ARLags())
		assert.Equal(t, []VarLags{{Name: "x", Column: 0, Lags: []int{0}}}, sel.Model.ExogLags())
		assert.Equal(t, 2, sel.Model.HoldBack())
		assert.Equal(t, []string{"const", "y.L1", "x.L0"}, sel.Model.Design().Names)
		assert.Empty(t, sel.Model.Warnings())

		if global {
			assert.Len(t, sel.Candidates, 16)
		} else {
			assert.Len(t, sel.Candidates, 9)
		}
	}
}

func TestSelectionCriteriaMatchRefit(t *testing.T) {
	data := selectionData()
	sel, err := SelectOrder(data, selectSpec(false))
	require.NoError(t, err)

	res, err := sel.Model.Fit(FitOptions{})
	require.NoError(t, err)

	// candidates score sigma2 = RSS, results use RSS/nobs
	best := sel.Best()
	logN := math.Log(float64(res.NObs()))
	assert.InDelta(t, res.BIC()+logN, best.BIC, 1e-8)
	assert.InDelta(t, res.AIC()+logN, best.AIC, 1e-8)
	assert.InDelta(t, res.HQIC()+logN, best.HQIC, 1e-8)
}

func TestSelectionResultAccessors(t *testing.T) {
	sel, err := SelectOrder(selectionData(), selectSpec(true))
	require.NoError(t, err)

	ranked := sel.Ranked(CriterionAIC)
	require.Len(t, ranked, len(sel.Candidates))
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].AIC, ranked[i].AIC)
	}

	c, ok := sel.Lookup(SelectionKey{AR: []int{2}, Exog: []ExogKey{{Name: "x", Lags: []int{1}}}})
	require.True(t, ok)
	assert.Equal(t, "ar=[2] x=[1]", c.Key.String())
	assert.Greater(t, c.BIC, sel.Best().BIC)

	empty, ok := sel.Lookup(SelectionKey{Exog: []ExogKey{{Name: "x"}}})
	require.True(t, ok)
	assert.Equal(t, "ar=none x=none", empty.Key.String())

	_, ok = sel.Lookup(SelectionKey{AR: []int{3}})
	assert.False(t, ok)
}

func TestCandidateCount(t *testing.T) {
	data := selectionData()

	n, err := CandidateCount(data, selectSpec(false))
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	n, err = CandidateCount(data, selectSpec(true))
	require.NoError(t, err)
	assert.Equal(t, 16, n)
}

func TestSearchLimit(t *testing.T) {
	data := selectionData()
	spec := selectSpec(true)
	spec.MaxCandidates = 10

	_, err := SelectOrder(data, spec)
	assert.ErrorIs(t, err, ErrSearchTooLarge)

	_, err = CandidateCount(data, spec)
	assert.ErrorIs(t, err, ErrSearchTooLarge)

	spec.FallbackToNested = true
	core, logs := observer.New(zap.WarnLevel)
	sel, err := SelectOrder(data, spec, WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.False(t, sel.Global)
	assert.Len(t, sel.Candidates, 9)
	assert.Equal(t, 1, logs.FilterMessageSnippet("falling back").Len())
}

func TestSelectOrderCausal(t *testing.T) {
	y, x := simulate(800, 32, 0, 0.4, 0)
	// make y depend on the lagged exog value
	for i := 1; i < len(y); i++ {
		y[i] += 1.5 * x.At(i-1, 0)
	}
	spec := SelectSpec{
		Model:    ModelSpec{Causal: true},
		MaxLag:   1,
		MaxOrder: Uniform(UpTo(2)),
	}
	sel, err := SelectOrder(Data{Endog: y, Exog: x}, spec)
	require.NoError(t, err)
	assert.Len(t, sel.Candidates, 6)
	assert.Contains(t, sel.Best().Key.Exog[0].Lags, 1)
	assert.True(t, sel.Model.Causal())
	assert.Equal(t, 2, sel.Model.HoldBack())
}

func TestParseCriterion(t *testing.T) {
	for in, want := range map[string]Criterion{"AIC": CriterionAIC, "bic": CriterionBIC, "hqic": CriterionHQIC, "": CriterionBIC} {
		got, err := ParseCriterion(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCriterion("aicc")
	assert.Error(t, err)
}
