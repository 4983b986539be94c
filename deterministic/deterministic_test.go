package deterministic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrend(t *testing.T) {
	tests := []struct {
		in   string
		want Trend
	}{
		{"n", TrendNone},
		{"c", TrendConst},
		{"t", TrendTime},
		{"CT", TrendConstTime},
		{"ctt", TrendConstTimeSquared},
	}
	for _, tc := range tests {
		got, err := ParseTrend(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}

	_, err := ParseTrend("cttt")
	assert.ErrorIs(t, err, ErrInvalidTrend)
}

func mustParse(t *testing.T, s string) Trend {
	t.Helper()
	tr, err := ParseTrend(s)
	require.NoError(t, err)
	return tr
}

func TestTrendColumns(t *testing.T) {
	p, err := New(5, Options{Trend: TrendConstTimeSquared})
	require.NoError(t, err)
	assert.Equal(t, []string{"const", "trend", "trend_squared"}, p.Names())

	in := p.InSample()
	r, c := in.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 3, c)
	for i := 0; i < 5; i++ {
		ti := float64(i + 1)
		assert.Equal(t, 1.0, in.At(i, 0))
		assert.Equal(t, ti, in.At(i, 1))
		assert.Equal(t, ti*ti, in.At(i, 2))
	}

	oos := p.OutOfSample(2)
	assert.Equal(t, 6.0, oos.At(0, 1))
	assert.Equal(t, 49.0, oos.At(1, 2))
}

func TestSeasonalDummies(t *testing.T) {
	p, err := New(8, Options{Trend: TrendConst, Seasonal: true, Period: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"const", "s(2,4)", "s(3,4)", "s(4,4)"}, p.Names())

	in := p.InSample()
	// observation 0 is season 1 and is absorbed by the constant
	assert.Equal(t, []float64{1, 0, 0, 0}, rowOf(in.RawRowView(0)))
	assert.Equal(t, []float64{1, 1, 0, 0}, rowOf(in.RawRowView(1)))
	assert.Equal(t, []float64{1, 0, 0, 1}, rowOf(in.RawRowView(7)))

	oos := p.OutOfSample(1) // observation 8, season 1
	assert.Equal(t, []float64{1, 0, 0, 0}, rowOf(oos.RawRowView(0)))

	noConst, err := New(4, Options{Trend: TrendNone, Seasonal: true, Period: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"s(1,2)", "s(2,2)"}, noConst.Names())
	assert.Equal(t, 1.0, noConst.InSample().At(2, 0))
}

func rowOf(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func TestEmptyProcess(t *testing.T) {
	p, err := New(10, Options{Trend: TrendNone})
	require.NoError(t, err)
	assert.Empty(t, p.Names())
	assert.Nil(t, p.InSample())
	assert.Nil(t, p.OutOfSample(3))
}

func TestNewValidation(t *testing.T) {
	_, err := New(10, Options{Trend: TrendConst, Seasonal: true, Period: 1})
	assert.Error(t, err)

	_, err = New(10, Options{Trend: Trend(9)})
	assert.ErrorIs(t, err, ErrInvalidTrend)
}
