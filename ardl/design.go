package ardl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DesignMatrix is the trimmed regressor matrix of a model. Columns appear in
// the order deterministic, endog lags, exog lags (one block per variable in
// data order), fixed.
type DesignMatrix struct {
	Names []string
	// X is Rows x len(Names); nil when the model has no regressors.
	X    *mat.Dense
	Rows int
}

// Cols returns the number of regressors.
func (d *DesignMatrix) Cols() int { return len(d.Names) }

// sources holds the full-length inputs of the assembler. Every non-nil
// matrix has len(endog) rows.
type sources struct {
	endog []float64
	exog  *mat.Dense
	fixed *mat.Dense
	det   *mat.Dense
}

// assemble concatenates the deterministic, endog lag, exog lag and fixed
// blocks over the full length of src.endog. Lag rows without history are NaN.
func (m *Model) assemble(src sources) (block, error) {
	var out block
	add := func(b block) {
		out.names = append(out.names, b.names...)
		out.cols = append(out.cols, b.cols...)
	}

	add(matrixBlock(src.det, m.detNames))

	if len(m.arLags) > 0 {
		b, err := lagMatrix(src.endog, m.endogName, maxOf(m.arLags), m.arLags)
		if err != nil {
			return block{}, err
		}
		add(b)
	}

	for _, v := range m.exogLags {
		b, err := lagMatrix(column(src.exog, v.Column), v.Name, maxOf(v.Lags), v.Lags)
		if err != nil {
			return block{}, err
		}
		add(b)
	}

	add(matrixBlock(src.fixed, m.fixedNames))
	return out, nil
}

// blocks returns the trimmed always-included (deterministic and fixed)
// regressors, the trimmed endog lag block and one trimmed block per included
// exog variable. Order selection scores candidates against these.
func (m *Model) blocks() (always block, endog block, exog []block, err error) {
	src := m.sources()

	det := matrixBlock(src.det, m.detNames)
	fixed := matrixBlock(src.fixed, m.fixedNames)
	always = block{
		names: append(append([]string{}, det.names...), fixed.names...),
		cols:  append(append([][]float64{}, det.cols...), fixed.cols...),
	}

	if len(m.arLags) > 0 {
		endog, err = lagMatrix(src.endog, m.endogName, maxOf(m.arLags), m.arLags)
		if err != nil {
			return block{}, block{}, nil, err
		}
	}
	for _, v := range m.exogLags {
		b, err := lagMatrix(column(src.exog, v.Column), v.Name, maxOf(v.Lags), v.Lags)
		if err != nil {
			return block{}, block{}, nil, err
		}
		exog = append(exog, b.trim(m.holdBack))
	}
	return always.trim(m.holdBack), endog.trim(m.holdBack), exog, nil
}

// trim drops the first n rows of every column.
func (b block) trim(n int) block {
	out := block{names: b.names, cols: make([][]float64, len(b.cols))}
	for j, c := range b.cols {
		out.cols[j] = c[n:]
	}
	return out
}

// checkFixed validates the fixed regressors against the sample length.
func checkFixed(fixed *mat.Dense, nobs int) error {
	if fixed == nil {
		return nil
	}
	r, c := fixed.Dims()
	if r != nobs {
		return fmt.Errorf("fixed has %d rows, endog has %d: %w", r, nobs, ErrInvalidFixed)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := fixed.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("fixed must be all finite: %w", ErrInvalidFixed)
			}
		}
	}
	return nil
}

func maxOf(xs []int) int {
	m := 0
	for _, x := range xs {
		m = max(m, x)
	}
	return m
}

func minOf(xs []int) int {
	m := math.MaxInt
	for _, x := range xs {
		m = min(m, x)
	}
	return m
}
