package ensemble

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rspadim/NNS/pkg/objective"
)

// StackResult exposes the blended forecast of the stacked regression
// ensemble along with each base learner's cross-validation score and stack
// weight, parallel to Learners.
type StackResult struct {
	Stack    []float64
	Learners []string
	CVScores []float64
	Weights  []float64
}

// Stacker fits a cross-validated stacked regression ensemble.
//
// Each base learner (ridge and two k-NN variants) is scored by k-fold
// cross-validation on the training rows using the caller's objective;
// contiguous folds keep the procedure deterministic. Stack weights derive
// from the CV scores (better score, larger weight), every learner is refit
// on the full training set, and the stack forecast is the weighted blend of
// the learners' test-row predictions.
type Stacker struct {
	// Folds is the cross-validation fold count; default 5, capped at the
	// number of training rows.
	Folds int
}

// NewStacker creates a Stacker with default settings.
func NewStacker() *Stacker {
	return &Stacker{Folds: 5}
}

func (s *Stacker) learners() []learner {
	return []learner{
		newRidge(1.0),
		newKNN(3),
		newKNN(5),
	}
}

// Fit cross-validates the base learners on (x, y), refits them on all
// training rows and returns the blended prediction for testX.
func (s *Stacker) Fit(x *mat.Dense, y []float64, testX *mat.Dense, obj objective.Objective) (*StackResult, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, fmt.Errorf("ensemble: stack: %d rows for %d responses", rows, len(y))
	}
	if rows < 4 {
		return nil, fmt.Errorf("ensemble: stack: need at least 4 training rows, got %d", rows)
	}
	testRows, testCols := testX.Dims()
	if testCols != cols {
		return nil, fmt.Errorf("ensemble: stack: test predictors have %d columns, want %d", testCols, cols)
	}

	folds := s.Folds
	if folds < 2 {
		folds = 2
	}
	if folds > rows {
		folds = rows
	}

	models := s.learners()
	scores := make([]float64, len(models))
	names := make([]string, len(models))

	for li, model := range models {
		names[li] = model.name()
		oof := make([]float64, rows)

		for f := 0; f < folds; f++ {
			lo := f * rows / folds
			hi := (f + 1) * rows / folds

			trainX, trainY := dropRows(x, y, lo, hi)
			if err := model.fit(trainX, trainY); err != nil {
				return nil, fmt.Errorf("ensemble: stack: %s fold %d: %w", model.name(), f, err)
			}

			foldPred := model.predict(denseRows(x, lo, hi))
			copy(oof[lo:hi], foldPred)
		}

		scores[li] = obj.Fn(oof, y)
	}

	weights := stackWeights(scores, obj.Direction)

	// Refit on all training rows and blend test predictions.
	stack := make([]float64, testRows)
	for li, model := range models {
		if err := model.fit(x, y); err != nil {
			return nil, fmt.Errorf("ensemble: stack: %s refit: %w", model.name(), err)
		}
		pred := model.predict(testX)
		for i := range stack {
			stack[i] += weights[li] * pred[i]
		}
	}

	return &StackResult{
		Stack:    stack,
		Learners: names,
		CVScores: scores,
		Weights:  weights,
	}, nil
}

// stackWeights converts CV scores to normalized blend weights: better score,
// larger weight. NaN scores get zero weight; if nothing scored, weights are
// uniform.
func stackWeights(scores []float64, dir objective.Direction) []float64 {
	weights := make([]float64, len(scores))

	const eps = 1e-9
	switch dir {
	case objective.Maximize:
		worst := math.Inf(1)
		for _, v := range scores {
			if !math.IsNaN(v) && v < worst {
				worst = v
			}
		}
		for i, v := range scores {
			if !math.IsNaN(v) {
				weights[i] = v - worst + eps
			}
		}
	default:
		for i, v := range scores {
			if !math.IsNaN(v) && v >= 0 {
				weights[i] = 1 / (v + eps)
			}
		}
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		for i := range weights {
			weights[i] = 1 / float64(len(weights))
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// dropRows copies x and y without rows [lo, hi).
func dropRows(x *mat.Dense, y []float64, lo, hi int) (*mat.Dense, []float64) {
	rows, cols := x.Dims()
	kept := rows - (hi - lo)

	outX := mat.NewDense(kept, cols, nil)
	outY := make([]float64, 0, kept)

	r := 0
	for t := 0; t < rows; t++ {
		if t >= lo && t < hi {
			continue
		}
		for j := 0; j < cols; j++ {
			outX.Set(r, j, x.At(t, j))
		}
		outY = append(outY, y[t])
		r++
	}
	return outX, outY
}
