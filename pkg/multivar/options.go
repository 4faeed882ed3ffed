package multivar

import (
	"runtime"

	"github.com/rspadim/NNS/pkg/objective"
)

// Options controls a single Forecast call.
type Options struct {
	// Horizon is the number of future steps to forecast. Required, positive.
	Horizon int

	// Tau is the lag depth of the multivariate feature frame and the
	// modulo constraint on seasonal period detection. Zero disables both.
	Tau int

	// Objective scores candidate models in every stage. The zero value
	// falls back to sum of squared errors, minimized.
	Objective objective.Objective

	// Status enables progress notifications through the pipeline's
	// Reporter.
	Status bool

	// OuterWorkers bounds the per-series fan-out pool. Zero or negative
	// selects half the logical CPUs, at least one.
	OuterWorkers int

	// InnerWorkers bounds each series' hyperparameter search pool. Zero or
	// negative selects half the logical CPUs minus one, at least one.
	InnerWorkers int

	// Trials is the fold count of the feature-importance screen.
	Trials int

	// Iterations is the pruning round count of the feature-importance
	// refinement.
	Iterations int
}

func (o Options) withDefaults() Options {
	if o.Objective.Fn == nil {
		o.Objective = objective.Default()
	}
	if o.OuterWorkers <= 0 {
		o.OuterWorkers = max(1, runtime.NumCPU()/2)
	}
	if o.InnerWorkers <= 0 {
		o.InnerWorkers = max(1, runtime.NumCPU()/2-1)
	}
	if o.Trials <= 0 {
		o.Trials = 4
	}
	if o.Iterations <= 0 {
		o.Iterations = 3
	}
	return o
}
