package ardl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLagMatrix(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5}

	m, names, err := LagMatrix(src, "y", []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"y.L2", "y.L0"}, names)

	r, c := m.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 2, c)
	assert.True(t, math.IsNaN(m.At(0, 0)))
	assert.True(t, math.IsNaN(m.At(1, 0)))
	assert.Equal(t, []float64{1, 2, 3}, mat.Col(nil, 0, m)[2:])
	assert.Equal(t, src, mat.Col(nil, 1, m))
}

func TestLagMatrixEmpty(t *testing.T) {
	m, names, err := LagMatrix([]float64{1, 2}, "y", nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Empty(t, names)
}

func TestLagMatrixRejectsNegativeLag(t *testing.T) {
	_, _, err := LagMatrix([]float64{1, 2}, "y", []int{-1})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "income", columnName([]string{"income", ""}, 0))
	assert.Equal(t, "x1", columnName([]string{"income", ""}, 1))
	assert.Equal(t, "x3", columnName(nil, 3))
}

func TestBlockDense(t *testing.T) {
	b := block{names: []string{"a", "b"}, cols: [][]float64{{1, 2, 3}, {4, 5, 6}}}
	d := b.dense(1)
	assert.Equal(t, []float64{2, 5}, d.RawRowView(0))
	assert.Equal(t, []float64{3, 6}, d.RawRowView(1))

	assert.Nil(t, block{}.dense(0))
	assert.Nil(t, b.dense(3))
}
