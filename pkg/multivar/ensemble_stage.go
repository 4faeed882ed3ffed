package multivar

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/rspadim/NNS/pkg/lagmat"
	"github.com/rspadim/NNS/pkg/series"
)

// ensembleStage refines every series' forecast against the lagged feature
// frame. Targets are processed strictly one after another: each target's
// zero-lag column becomes the response, every other column a candidate
// predictor. The last h frame rows carry the forecast-extended values and
// become the prediction rows.
func (p *Pipeline) ensembleStage(frame *lagmat.Frame, zeroLag []int, names []string, opts Options) (*series.Matrix, error) {
	h := opts.Horizon
	trainRows := frame.Rows() - h
	if trainRows < 1 {
		return nil, fmt.Errorf("multivar: %d frame rows leave no training rows for horizon %d", frame.Rows(), h)
	}

	cols := make([][]float64, len(zeroLag))
	for t, target := range zeroLag {
		if opts.Status {
			k, n := t+1, len(zeroLag)
			p.report(func() { p.reporter.Target(k, n) })
		}
		p.logger.Debug("refining ensemble target", "series", names[t], "target", t+1, "of", len(zeroLag))

		forecast, err := p.refineTarget(frame, target, trainRows, opts)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", names[t], err)
		}
		cols[t] = forecast
	}

	return series.New(names, cols)
}

// refineTarget selects predictors for one zero-lag column and stacks a
// regression ensemble over them.
func (p *Pipeline) refineTarget(frame *lagmat.Frame, target, trainRows int, opts Options) ([]float64, error) {
	predNames, trainX, testX := splitPredictors(frame, target, trainRows)
	y := frame.Column(target)[:trainRows]

	sel, err := p.selector.Select(predNames, trainX, y, testX, opts.Objective, opts.Trials, opts.Iterations, opts.OuterWorkers)
	if err != nil {
		return nil, fmt.Errorf("select features: %w", err)
	}

	keep := indicesOf(predNames, sel.Names)
	if len(keep) == 0 {
		return nil, fmt.Errorf("no predictors retained")
	}

	res, err := p.stacker.Fit(pickColumns(trainX, keep), y, pickColumns(testX, keep), opts.Objective)
	if err != nil {
		return nil, fmt.Errorf("stack regression: %w", err)
	}

	return res.Stack, nil
}

// splitPredictors copies every frame column except target into training and
// prediction matrices, split at trainRows.
func splitPredictors(frame *lagmat.Frame, target, trainRows int) ([]string, *mat.Dense, *mat.Dense) {
	rows := frame.Rows()
	testRows := rows - trainRows
	p := frame.Cols() - 1

	names := make([]string, 0, p)
	trainX := mat.NewDense(trainRows, p, nil)
	testX := mat.NewDense(testRows, p, nil)

	out := 0
	for j := 0; j < frame.Cols(); j++ {
		if j == target {
			continue
		}
		names = append(names, frame.Names[j])
		for t := 0; t < trainRows; t++ {
			trainX.Set(t, out, frame.Data.At(t, j))
		}
		for t := 0; t < testRows; t++ {
			testX.Set(t, out, frame.Data.At(trainRows+t, j))
		}
		out++
	}

	return names, trainX, testX
}

// indicesOf maps the retained names back to their column positions,
// preserving the original predictor order.
func indicesOf(names, retained []string) []int {
	want := make(map[string]bool, len(retained))
	for _, n := range retained {
		want[n] = true
	}

	idx := make([]int, 0, len(retained))
	for j, n := range names {
		if want[n] {
			idx = append(idx, j)
		}
	}
	return idx
}

// pickColumns copies the given columns of x into a new matrix.
func pickColumns(x *mat.Dense, idx []int) *mat.Dense {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, len(idx), nil)
	for o, j := range idx {
		for t := 0; t < rows; t++ {
			out.Set(t, o, x.At(t, j))
		}
	}
	return out
}
