package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ReadCSV parses a Matrix from CSV data. The first record is the header of
// series names; every following record is one time step, oldest first.
func ReadCSV(r io.Reader) (*Matrix, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("series: csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("series: csv: read header: %w", err)
	}

	cols := make([][]float64, len(header))
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("series: csv: read row %d: %w", row+1, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("series: csv: row %d has %d fields, want %d", row+1, len(record), len(header))
		}
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("series: csv: row %d column %q: %w", row+1, header[i], err)
			}
			cols[i] = append(cols[i], v)
		}
		row++
	}

	return New(header, cols)
}

// LoadCSV reads a Matrix from a CSV file.
func LoadCSV(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes the Matrix as CSV: a header of series names followed by
// one record per time step.
func (m *Matrix) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(m.names); err != nil {
		return err
	}

	record := make([]string, m.NumSeries())
	for t := 0; t < m.rows; t++ {
		for i := range m.cols {
			record[i] = strconv.FormatFloat(m.cols[i][t], 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the Matrix to a CSV file.
func (m *Matrix) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.WriteCSV(f)
}
