package timeseries

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `year,y,x
2001,1.5,2
2002,2.5,NA
2003,3.5,4

2004,4.5,
`

func TestReadCSV(t *testing.T) {
	ts, err := ReadCSV(strings.NewReader(sample), "year")
	require.NoError(t, err)

	assert.Equal(t, 4, ts.Len())
	assert.Equal(t, []string{"y", "x"}, ts.VarNames)
	assert.Equal(t, []float64{2001, 2002, 2003, 2004}, ts.Time)

	y, err := ts.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5, 3.5, 4.5}, y)

	x, err := ts.Column("x")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(x[1]))
	assert.True(t, math.IsNaN(x[3]))

	_, err = ts.Column("z")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestReadCSVDefaultIndex(t *testing.T) {
	ts, err := ReadCSV(strings.NewReader("a,b\n1,2\n3,4\n"), "")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, ts.Time)

	m, err := ts.Columns([]string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, m.RawRowView(0))

	none, err := ts.Columns(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1\n"), "")
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("a,b\n1,oops\n"), "")
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("a,b\n"), "")
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("a,b\n1,2\n"), "date")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"step", "mean"}, [][]float64{{1, 2}, {0.5, math.NaN()}})
	require.NoError(t, err)
	assert.Equal(t, "step,mean\n1,0.5\n2,NaN\n", buf.String())

	err = WriteCSV(&buf, []string{"a"}, [][]float64{{1}, {2}})
	assert.Error(t, err)
	err = WriteCSV(&buf, []string{"a", "b"}, [][]float64{{1}, {2, 3}})
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, SaveCSV(path, []string{"y", "x"}, [][]float64{{1, 2, 3}, {4, 5, 6}}))

	ts, err := LoadCSV(path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, ts.Len())
	x, err := ts.Column("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, x)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}

func TestSaveRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, SaveRecords(path, []string{"key", "bic"}, [][]string{{"ar=[1]", "0.5"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key,bic\nar=[1],0.5\n", string(raw))
}
