package series

import (
	"fmt"
	"math"
)

// Matrix is an ordered collection of equal-length numeric series sharing a
// common time index. Columns are named by variable identity and rows are
// time-ordered with no missing steps.
//
// A Matrix is read-only after construction: accessors return copies, and
// derived matrices are built from copies of the underlying data.
type Matrix struct {
	names []string
	cols  [][]float64
	rows  int
}

// New creates a Matrix from column names and column-major data.
// All columns must have the same non-zero length, names must be unique and
// non-empty, and every value must be finite.
func New(names []string, cols [][]float64) (*Matrix, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("series: at least one column required")
	}
	if len(names) != len(cols) {
		return nil, fmt.Errorf("series: %d names for %d columns", len(names), len(cols))
	}

	rows := len(cols[0])
	if rows == 0 {
		return nil, fmt.Errorf("series: column %q is empty", names[0])
	}

	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("series: column %d has an empty name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("series: duplicate column name %q", name)
		}
		seen[name] = true

		if len(cols[i]) != rows {
			return nil, fmt.Errorf("series: column %q has %d rows, want %d", name, len(cols[i]), rows)
		}
		for t, v := range cols[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("series: column %q row %d is not finite", name, t)
			}
		}
	}

	m := &Matrix{
		names: append([]string(nil), names...),
		cols:  make([][]float64, len(cols)),
		rows:  rows,
	}
	for i := range cols {
		m.cols[i] = append([]float64(nil), cols[i]...)
	}
	return m, nil
}

// Rows returns the number of observations per series.
func (m *Matrix) Rows() int { return m.rows }

// NumSeries returns the number of series (columns).
func (m *Matrix) NumSeries() int { return len(m.cols) }

// Names returns a copy of the column names in order.
func (m *Matrix) Names() []string {
	return append([]string(nil), m.names...)
}

// Name returns the name of column i.
func (m *Matrix) Name(i int) string { return m.names[i] }

// Column returns a copy of column i.
func (m *Matrix) Column(i int) []float64 {
	return append([]float64(nil), m.cols[i]...)
}

// At returns the value at time row t in column i.
func (m *Matrix) At(t, i int) float64 { return m.cols[i][t] }

// AppendRows returns a new Matrix with ext's rows appended beneath m's as a
// time-ordered extension. Both matrices must have identical column names in
// identical order.
func (m *Matrix) AppendRows(ext *Matrix) (*Matrix, error) {
	if ext.NumSeries() != m.NumSeries() {
		return nil, fmt.Errorf("series: append: %d columns onto %d", ext.NumSeries(), m.NumSeries())
	}
	for i, name := range m.names {
		if ext.names[i] != name {
			return nil, fmt.Errorf("series: append: column %d is %q, want %q", i, ext.names[i], name)
		}
	}

	cols := make([][]float64, len(m.cols))
	for i := range m.cols {
		col := make([]float64, 0, m.rows+ext.rows)
		col = append(col, m.cols[i]...)
		col = append(col, ext.cols[i]...)
		cols[i] = col
	}
	return New(m.names, cols)
}
