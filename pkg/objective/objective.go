// Package objective defines the scalar loss used to score predicted-vs-actual
// pairs throughout the pipeline, together with the optimization direction.
//
// The same objective value is threaded through every collaborator call
// (hyperparameter optimization, feature selection, stacking) so all stages
// optimize the same criterion.
package objective

import "math"

// Func scores a forecast against observed values. Both slices have the same
// length; smaller or larger is better depending on the Direction it is
// paired with.
type Func func(predicted, actual []float64) float64

// Direction states whether the objective function is to be minimized or
// maximized.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// String returns "minimize" or "maximize".
func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Objective bundles a loss function with its optimization direction.
type Objective struct {
	Fn        Func
	Direction Direction
}

// Default returns the standard objective: sum of squared errors, minimized.
func Default() Objective {
	return Objective{Fn: SSE, Direction: Minimize}
}

// Better reports whether score a beats score b under the objective's
// direction. NaN never beats anything.
func (o Objective) Better(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	if o.Direction == Maximize {
		return a > b
	}
	return a < b
}

// Worst returns the starting score that any finite evaluation beats.
func (o Objective) Worst() float64 {
	if o.Direction == Maximize {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// SSE is the sum of squared errors.
func SSE(predicted, actual []float64) float64 {
	sum := 0.0
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return sum
}

// MAE is the mean absolute error.
func MAE(predicted, actual []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	sum := 0.0
	for i := range predicted {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(len(predicted))
}

// MAPE is the mean absolute percentage error. Zero actuals are skipped; if
// every actual is zero the result is NaN.
func MAPE(predicted, actual []float64) float64 {
	sum := 0.0
	n := 0
	for i := range predicted {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((predicted[i] - actual[i]) / actual[i])
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
