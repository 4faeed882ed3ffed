package ensemble

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/rspadim/NNS/pkg/objective"
)

// Selection is the outcome of feature-importance screening: the retained
// predictor names with their importance weights, strongest first within the
// original column order.
type Selection struct {
	Names   []string
	Weights []float64
}

// Selector ranks candidate predictors and discards low-value ones before the
// stacking stage.
//
// Screening is two-phase and fully deterministic. First, the training rows
// are split into contiguous folds (one per trial) and each feature is scored
// by its mean absolute correlation with the response across folds; features
// below the mean score are dropped. Second, up to the configured number of
// iterations, a ridge model is fitted on the survivors, the subset is scored
// on a held-out tail of the training rows with the caller's objective, and
// features whose standardized coefficient magnitude falls below the mean are
// pruned. The subset from the best-scoring iteration wins.
type Selector struct{}

// NewSelector creates a feature-importance selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Select screens predictors against the response. testX is accepted so the
// collaborator contract carries everything a selector implementation might
// score against; this implementation screens on training data only. workers
// is part of the contract as well; the screen is cheap and runs serially.
func (s *Selector) Select(names []string, x *mat.Dense, y []float64, testX *mat.Dense, obj objective.Objective, trials, iterations, workers int) (Selection, error) {
	rows, cols := x.Dims()
	if cols == 0 {
		return Selection{}, fmt.Errorf("ensemble: select: no candidate predictors")
	}
	if len(names) != cols {
		return Selection{}, fmt.Errorf("ensemble: select: %d names for %d columns", len(names), cols)
	}
	if rows != len(y) {
		return Selection{}, fmt.Errorf("ensemble: select: %d rows for %d responses", rows, len(y))
	}
	if rows < 4 {
		return Selection{}, fmt.Errorf("ensemble: select: need at least 4 training rows, got %d", rows)
	}
	if trials < 1 {
		trials = 1
	}
	if iterations < 1 {
		iterations = 1
	}

	// Phase 1: correlation screen across contiguous folds.
	scores := correlationScores(x, y, trials)
	kept := aboveMean(scores)

	// Phase 2: iterative ridge pruning scored on a held-out tail.
	holdout := rows / 4
	if holdout < 1 {
		holdout = 1
	}
	split := rows - holdout

	best := kept
	bestScore := obj.Worst()
	bestWeights := subsetValues(scores, kept)

	for iter := 0; iter < iterations && len(kept) > 0; iter++ {
		sub := subsetColumns(x, kept)
		trainX := denseRows(sub, 0, split)
		holdX := denseRows(sub, split, rows)

		model := newRidge(1.0)
		if err := model.fit(trainX, y[:split]); err != nil {
			return Selection{}, fmt.Errorf("ensemble: select: iteration %d: %w", iter, err)
		}

		score := obj.Fn(model.predict(holdX), y[split:])
		coefs := model.coefficients()
		if bestScore == obj.Worst() || obj.Better(score, bestScore) {
			bestScore = score
			best = append([]int(nil), kept...)
			bestWeights = absolute(coefs)
		}

		next := pruneByCoefficient(kept, coefs)
		if len(next) == len(kept) || len(next) == 0 {
			break
		}
		kept = next
	}

	sel := Selection{
		Names:   make([]string, len(best)),
		Weights: make([]float64, len(best)),
	}
	for i, j := range best {
		sel.Names[i] = names[j]
		sel.Weights[i] = bestWeights[i]
	}
	return sel, nil
}

// correlationScores averages each feature's absolute Pearson correlation
// with the response over contiguous folds.
func correlationScores(x *mat.Dense, y []float64, folds int) []float64 {
	rows, cols := x.Dims()
	if folds > rows/2 {
		folds = rows / 2
	}
	if folds < 1 {
		folds = 1
	}

	scores := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)

		total := 0.0
		for f := 0; f < folds; f++ {
			lo := f * rows / folds
			hi := (f + 1) * rows / folds
			c := stat.Correlation(col[lo:hi], y[lo:hi], nil)
			if !math.IsNaN(c) {
				total += math.Abs(c)
			}
		}
		scores[j] = total / float64(folds)
	}
	return scores
}

// aboveMean returns the indices scoring at or above the mean, keeping at
// least the single best index.
func aboveMean(scores []float64) []int {
	mean := stat.Mean(scores, nil)

	var kept []int
	bestIdx, bestVal := 0, math.Inf(-1)
	for j, v := range scores {
		if v >= mean {
			kept = append(kept, j)
		}
		if v > bestVal {
			bestIdx, bestVal = j, v
		}
	}
	if len(kept) == 0 {
		kept = []int{bestIdx}
	}
	return kept
}

// pruneByCoefficient keeps the indices whose |coefficient| is at or above
// the mean magnitude, at least one.
func pruneByCoefficient(kept []int, coefs []float64) []int {
	mags := absolute(coefs)
	mean := stat.Mean(mags, nil)

	var next []int
	bestPos, bestVal := 0, math.Inf(-1)
	for pos, j := range kept {
		if mags[pos] >= mean {
			next = append(next, j)
		}
		if mags[pos] > bestVal {
			bestPos, bestVal = pos, mags[pos]
		}
	}
	if len(next) == 0 {
		next = []int{kept[bestPos]}
	}
	return next
}

func absolute(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}

func subsetValues(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// subsetColumns copies the selected columns into a new dense matrix.
func subsetColumns(x *mat.Dense, idx []int) *mat.Dense {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, len(idx), nil)
	for i, j := range idx {
		for t := 0; t < rows; t++ {
			out.Set(t, i, x.At(t, j))
		}
	}
	return out
}

// denseRows copies rows [lo, hi) into a new dense matrix.
func denseRows(x *mat.Dense, lo, hi int) *mat.Dense {
	_, cols := x.Dims()
	out := mat.NewDense(hi-lo, cols, nil)
	for t := lo; t < hi; t++ {
		for j := 0; j < cols; j++ {
			out.Set(t-lo, j, x.At(t, j))
		}
	}
	return out
}
