// Package lagmat builds the lagged feature frame used by the multivariate
// ensemble stage: the forecast-extended series matrix expanded into one
// column per (source series, lag offset) pair.
package lagmat

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/rspadim/NNS/pkg/series"
)

// Frame is a named feature matrix. Column j of Data is described by
// Names[j]. Frames are created once and treated as read-only.
type Frame struct {
	Names []string
	Data  *mat.Dense
}

// Rows returns the number of rows in the frame.
func (f *Frame) Rows() int {
	r, _ := f.Data.Dims()
	return r
}

// Cols returns the number of columns in the frame.
func (f *Frame) Cols() int {
	_, c := f.Data.Dims()
	return c
}

// Column returns a copy of column j.
func (f *Frame) Column(j int) []float64 {
	r, _ := f.Data.Dims()
	out := make([]float64, r)
	mat.Col(out, j, f.Data)
	return out
}

// LagName labels the lag-k copy of a series column.
func LagName(name string, k int) string {
	return fmt.Sprintf("%s_lag%d", name, k)
}

// Build appends the per-series forecasts beneath the historical matrix and
// expands every column into tau+1 lagged copies. Lag-0 columns hold the
// extended series unshifted; the lag-k column at row t holds the series
// value k periods earlier. The first tau rows, where lags are undefined, are
// dropped.
//
// It returns the frame and the indices of the zero-lag columns, ordered as
// the input series. Build is a pure function: identical inputs produce an
// identical frame.
func Build(hist, forecasts *series.Matrix, tau int) (*Frame, []int, error) {
	if tau < 0 {
		return nil, nil, fmt.Errorf("lagmat: negative lag depth %d", tau)
	}

	ext, err := hist.AppendRows(forecasts)
	if err != nil {
		return nil, nil, fmt.Errorf("lagmat: extend history with forecasts: %w", err)
	}

	rows := ext.Rows() - tau
	if rows < 1 {
		return nil, nil, fmt.Errorf("lagmat: lag depth %d leaves no rows from %d observations", tau, ext.Rows())
	}

	k := ext.NumSeries()
	cols := k * (tau + 1)

	names := make([]string, 0, cols)
	data := mat.NewDense(rows, cols, nil)
	zeroLag := make([]int, 0, k)

	for i := 0; i < k; i++ {
		for lag := 0; lag <= tau; lag++ {
			j := i*(tau+1) + lag
			names = append(names, LagName(ext.Name(i), lag))
			if lag == 0 {
				zeroLag = append(zeroLag, j)
			}
			for t := 0; t < rows; t++ {
				data.Set(t, j, ext.At(t+tau-lag, i))
			}
		}
	}

	return &Frame{Names: names, Data: data}, zeroLag, nil
}
