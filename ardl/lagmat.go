package ardl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// block is a named group of full-length columns. Columns are stored
// column-major so that blocks without columns need no special casing.
type block struct {
	names []string
	cols  [][]float64
}

func (b block) width() int { return len(b.cols) }

// lagColumn returns src shifted down by lag rows; the first lag rows are NaN.
func lagColumn(src []float64, lag int) []float64 {
	out := make([]float64, len(src))
	for i := range out {
		if i < lag {
			out[i] = math.NaN()
			continue
		}
		out[i] = src[i-lag]
	}
	return out
}

// lagMatrix builds lags 0..maxLag of src and keeps the requested ones, in the
// requested order, naming each "<base>.L<lag>".
func lagMatrix(src []float64, base string, maxLag int, lags []int) (block, error) {
	all := make([][]float64, maxLag+1)
	for l := 0; l <= maxLag; l++ {
		all[l] = lagColumn(src, l)
	}

	b := block{
		names: make([]string, 0, len(lags)),
		cols:  make([][]float64, 0, len(lags)),
	}
	for _, l := range lags {
		if l < 0 || l > maxLag {
			return block{}, fmt.Errorf("lag %d outside 0..%d: %w", l, maxLag, ErrInvalidOrder)
		}
		b.names = append(b.names, lagName(base, l))
		b.cols = append(b.cols, all[l])
	}
	return b, nil
}

func lagName(base string, lag int) string {
	return fmt.Sprintf("%s.L%d", base, lag)
}

// LagMatrix returns the requested lags of src as an nobs x len(lags) matrix
// together with the column names. Rows before the lag are NaN. It returns a
// nil matrix when lags is empty.
func LagMatrix(src []float64, base string, lags []int) (*mat.Dense, []string, error) {
	maxLag := 0
	for _, l := range lags {
		maxLag = max(maxLag, l)
	}
	b, err := lagMatrix(src, base, maxLag, lags)
	if err != nil {
		return nil, nil, err
	}
	return b.dense(0), b.names, nil
}

// column returns column j of m as a slice.
func column(m mat.Matrix, j int) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = m.At(i, j)
	}
	return out
}

// columnName falls back to the positional x<index> when no label is given.
func columnName(names []string, j int) string {
	if j < len(names) && names[j] != "" {
		return names[j]
	}
	return fmt.Sprintf("x%d", j)
}

// matrixBlock wraps the columns of m as a block; m may be nil.
func matrixBlock(m *mat.Dense, names []string) block {
	if m == nil {
		return block{}
	}
	_, c := m.Dims()
	b := block{names: make([]string, c), cols: make([][]float64, c)}
	for j := 0; j < c; j++ {
		b.names[j] = names[j]
		b.cols[j] = column(m, j)
	}
	return b
}

// dense returns rows from.. of the block as a matrix, or nil when the block
// has no columns or no rows remain.
func (b block) dense(from int) *mat.Dense {
	if b.width() == 0 {
		return nil
	}
	n := len(b.cols[0]) - from
	if n <= 0 {
		return nil
	}
	out := mat.NewDense(n, b.width(), nil)
	for j, col := range b.cols {
		for i := 0; i < n; i++ {
			out.Set(i, j, col[from+i])
		}
	}
	return out
}
