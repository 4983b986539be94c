package ardl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpToExpansion(t *testing.T) {
	for _, causal := range []bool{true, false} {
		for k := -1; k <= 4; k++ {
			lags, err := UpTo(k).Expand(causal)
			first := firstLag(causal)
			if k < first {
				assert.ErrorIs(t, err, ErrInvalidOrder, "k=%d causal=%t", k, causal)
				continue
			}
			require.NoError(t, err)
			var want []int
			for l := first; l <= k; l++ {
				want = append(want, l)
			}
			assert.Equal(t, want, lags, "k=%d causal=%t", k, causal)
		}
	}
}

func TestExplicitLags(t *testing.T) {
	tests := []struct {
		name   string
		lags   []int
		causal bool
		ok     bool
	}{
		{"order preserved", []int{3, 1}, true, true},
		{"contemporaneous allowed", []int{0, 2}, false, true},
		{"contemporaneous when causal", []int{0, 2}, true, false},
		{"negative", []int{-1}, false, false},
		{"duplicate", []int{1, 1}, false, false},
		{"empty", nil, true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Lags(tc.lags...).Expand(tc.causal)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidOrder)
				return
			}
			require.NoError(t, err)
			if len(tc.lags) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.lags, got)
		})
	}
}

func TestExcludedIsZeroValue(t *testing.T) {
	var s LagSpec
	assert.Equal(t, LagsExcluded, s.Kind())
	lags, err := s.Expand(true)
	require.NoError(t, err)
	assert.Nil(t, lags)
	assert.Equal(t, "excluded", s.String())
}

func TestFormatOrderUniform(t *testing.T) {
	vars, warning, err := formatOrder([]string{"a", "b"}, Uniform(UpTo(2)), false)
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, vars, 2)
	assert.Equal(t, VarLags{Name: "b", Column: 1, Lags: []int{0, 1, 2}}, vars[1])

	vars, _, err = formatOrder([]string{"a", "b"}, Order{}, false)
	require.NoError(t, err)
	assert.Empty(t, vars)

	_, _, err = formatOrder([]string{"a"}, Uniform(UpTo(0)), true)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestFormatOrderMapping(t *testing.T) {
	names := []string{"a", "b", "c"}

	vars, warning, err := formatOrder(names, PerVariable(map[string]LagSpec{
		"a": UpTo(1),
		"c": Lags(2),
	}), true)
	require.NoError(t, err)
	assert.Contains(t, warning, "b")
	require.Len(t, vars, 2)
	assert.Equal(t, "a", vars[0].Name)
	assert.Equal(t, []int{1}, vars[0].Lags)
	assert.Equal(t, 2, vars[1].Column)
	assert.Equal(t, []int{2}, vars[1].Lags)

	vars, warning, err = formatOrder(names, ByColumn(map[int]LagSpec{
		0: Excluded(),
		1: Lags(0, 3),
		2: Excluded(),
	}), false)
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, vars, 1)
	assert.Equal(t, VarLags{Name: "b", Column: 1, Lags: []int{0, 3}}, vars[0])
}

func TestFormatOrderUnknownKeys(t *testing.T) {
	_, _, err := formatOrder([]string{"a"}, PerVariable(map[string]LagSpec{
		"a": UpTo(1),
		"z": UpTo(1),
		"d": UpTo(1),
	}), false)
	require.ErrorIs(t, err, ErrUnknownOrderKeys)
	assert.Contains(t, err.Error(), "d, z")

	_, _, err = formatOrder([]string{"a"}, ByColumn(map[int]LagSpec{3: UpTo(1)}), false)
	assert.ErrorIs(t, err, ErrUnknownOrderKeys)

	_, _, err = formatOrder(nil, PerVariable(map[string]LagSpec{"a": UpTo(1)}), false)
	assert.ErrorIs(t, err, ErrUnknownOrderKeys)
}

func TestFormatOrderInvalidValue(t *testing.T) {
	_, _, err := formatOrder([]string{"a", "b"}, PerVariable(map[string]LagSpec{
		"a": UpTo(1),
		"b": Lags(2, 2),
	}), false)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestARLags(t *testing.T) {
	lags, err := arLags(UpTo(0))
	require.NoError(t, err)
	assert.Empty(t, lags)

	lags, err = arLags(UpTo(3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, lags)

	lags, err = arLags(Lags(4, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1}, lags)

	_, err = arLags(Lags(0))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = arLags(UpTo(-1))
	assert.ErrorIs(t, err, ErrInvalidOrder)
}
