// Package timeseries loads labeled numeric columns from CSV files and writes
// model output back to CSV.
package timeseries

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrUnknownColumn = errors.New("unknown column")

// TimeSeries is a set of equally long labeled columns.
type TimeSeries struct {
	// Y holds one variable per column.
	Y *mat.Dense
	// Time is the time index, one entry per row of Y.
	Time []float64
	// VarNames label the columns of Y.
	VarNames []string
}

// Len returns the number of observations.
func (ts *TimeSeries) Len() int {
	if ts.Y == nil {
		return 0
	}
	r, _ := ts.Y.Dims()
	return r
}

func (ts *TimeSeries) index(name string) (int, error) {
	for j, n := range ts.VarNames {
		if n == name {
			return j, nil
		}
	}
	return 0, fmt.Errorf("%q (have %v): %w", name, ts.VarNames, ErrUnknownColumn)
}

// Column returns a copy of the named column.
func (ts *TimeSeries) Column(name string) ([]float64, error) {
	j, err := ts.index(name)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, j, ts.Y), nil
}

// Columns returns the named columns as a matrix, in the order given. It
// returns nil when names is empty.
func (ts *TimeSeries) Columns(names []string) (*mat.Dense, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := mat.NewDense(ts.Len(), len(names), nil)
	for k, name := range names {
		j, err := ts.index(name)
		if err != nil {
			return nil, err
		}
		out.SetCol(k, mat.Col(nil, j, ts.Y))
	}
	return out, nil
}
