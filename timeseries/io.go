package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LoadCSV reads a CSV file with a header row into a TimeSeries. When
// timeCol names a header column, that column becomes the time index and is
// not part of Y; otherwise the index is 0,1,2,...
func LoadCSV(path, timeCol string) (*TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ts, err := ReadCSV(f, timeCol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// ReadCSV parses CSV data as described by LoadCSV. Empty fields and NA are
// read as NaN.
func ReadCSV(src io.Reader, timeCol string) (*TimeSeries, error) {
	// 1. Make CSV reader
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true

	// 2. Read header row
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header")
	}
	K := len(header)

	timeIdx := -1
	var names []string
	for j, h := range header {
		h = strings.TrimSpace(h)
		if timeCol != "" && h == timeCol {
			timeIdx = j
			continue
		}
		names = append(names, h)
	}
	if timeCol != "" && timeIdx < 0 {
		return nil, fmt.Errorf("time column %q: %w", timeCol, ErrUnknownColumn)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no data columns")
	}

	var (
		data  []float64
		times []float64
		row   int
	)

	// 3. Read each data row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+2, err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if len(record) != K {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", row+2, K, len(record))
		}

		t := float64(row)
		for j, s := range record {
			v, err := parseValue(s)
			if err != nil {
				return nil, fmt.Errorf("parse float at row %d col %d (%q): %w", row+2, j+1, s, err)
			}
			if j == timeIdx {
				t = v
				continue
			}
			data = append(data, v)
		}
		times = append(times, t)
		row++
	}

	if row == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	// 4. Build TimeSeries
	return &TimeSeries{
		Y:        mat.NewDense(row, len(names), data),
		Time:     times,
		VarNames: names,
	}, nil
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "NA", "NAN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteCSV writes equally long columns under header.
func WriteCSV(dst io.Writer, header []string, cols [][]float64) error {
	if len(header) != len(cols) {
		return fmt.Errorf("%d header names for %d columns", len(header), len(cols))
	}
	rows := 0
	for j, c := range cols {
		if j == 0 {
			rows = len(c)
		} else if len(c) != rows {
			return fmt.Errorf("column %s has %d rows, want %d", header[j], len(c), rows)
		}
	}

	writer := csv.NewWriter(dst)
	if err := writer.Write(header); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for i := 0; i < rows; i++ {
		for j, c := range cols {
			record[j] = strconv.FormatFloat(c[i], 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes columns to a new file at path.
func SaveCSV(path string, header []string, cols [][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, header, cols); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteRecords writes a header and string records, for tables mixing labels
// and numbers.
func WriteRecords(dst io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(dst)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return writer.Error()
}

// SaveRecords writes string records to a new file at path.
func SaveRecords(path string, header []string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRecords(file, header, records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
