package arma

import (
	"fmt"
	"sync"

	"github.com/rspadim/NNS/pkg/objective"
)

// maxPeriodSubset caps how many of the strongest candidate periods are
// combined in one configuration during the grid search.
const maxPeriodSubset = 4

// Optimizer searches hyperparameters for the seasonal-lag forecaster.
//
// The search space is the cross product of prefix subsets of the candidate
// periods (strongest first), the projection methods, and the weight schemes.
// Each configuration is scored by forecasting the validation window from the
// training window and evaluating the objective on predicted-vs-actual pairs.
// Configurations are evaluated on a bounded worker pool that is created and
// fully torn down inside Optimize.
type Optimizer struct {
	forecaster *Forecaster
}

// NewOptimizer creates a new grid-search optimizer.
func NewOptimizer() *Optimizer {
	return &Optimizer{forecaster: NewForecaster()}
}

// config is one cell of the search grid.
type config struct {
	periods []int
	scheme  WeightScheme
	method  Method
}

// result carries a scored configuration back from a pool worker.
type result struct {
	cfg       config
	weights   []float64
	predicted []float64
	score     float64
	err       error
}

// Optimize selects periods, weights, method and a bias shift for values.
// The series is split at trainLen: configurations forecast len(values)-trainLen
// steps from values[:trainLen] and are scored against values[trainLen:].
// workers bounds the pool used to evaluate configurations.
func (o *Optimizer) Optimize(values []float64, candidates []int, trainLen int, obj objective.Objective, workers int) (Params, error) {
	n := len(values)
	if trainLen < 2 || trainLen >= n {
		return Params{}, fmt.Errorf("arma: training window %d invalid for series of length %d", trainLen, n)
	}
	if workers < 1 {
		workers = 1
	}

	train := values[:trainLen]
	actual := values[trainLen:]
	horizon := len(actual)

	// Periods longer than the training window cannot form a subseries.
	usable := make([]int, 0, len(candidates))
	for _, p := range candidates {
		if p >= 1 && p <= trainLen {
			usable = append(usable, p)
		}
	}
	if len(usable) == 0 {
		usable = []int{1}
	}

	grid := buildGrid(usable)
	if workers > len(grid) {
		workers = len(grid)
	}

	jobs := make(chan config)
	results := make(chan result, len(grid))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for cfg := range jobs {
				results <- o.evaluate(cfg, train, actual, horizon, obj)
			}
		}()
	}

	for _, cfg := range grid {
		jobs <- cfg
	}
	close(jobs)
	wg.Wait()
	close(results)

	best := result{score: obj.Worst()}
	var firstErr error
	scored := false
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		if !scored || obj.Better(r.score, best.score) {
			best = r
			scored = true
		}
	}
	if !scored {
		return Params{}, fmt.Errorf("arma: no configuration could be evaluated: %w", firstErr)
	}

	// Bias shift: mean residual of the winning configuration on the
	// validation window.
	shift := 0.0
	for i := range actual {
		shift += actual[i] - best.predicted[i]
	}
	shift /= float64(len(actual))

	return Params{
		Periods:   best.cfg.periods,
		Weights:   best.weights,
		Method:    best.cfg.method,
		BiasShift: shift,
	}, nil
}

// evaluate scores one grid cell.
func (o *Optimizer) evaluate(cfg config, train, actual []float64, horizon int, obj objective.Objective) result {
	weights, err := ComputeWeights(cfg.periods, cfg.scheme)
	if err != nil {
		return result{cfg: cfg, err: err}
	}

	predicted, err := o.forecaster.Forecast(train, horizon, cfg.periods, weights, cfg.method, 1)
	if err != nil {
		return result{cfg: cfg, err: err}
	}

	return result{
		cfg:       cfg,
		weights:   weights,
		predicted: predicted,
		score:     obj.Fn(predicted, actual),
	}
}

// buildGrid enumerates prefix subsets of the candidate periods crossed with
// every method and weight scheme. The enumeration order is deterministic.
func buildGrid(candidates []int) []config {
	maxSubset := len(candidates)
	if maxSubset > maxPeriodSubset {
		maxSubset = maxPeriodSubset
	}

	methods := []Method{MethodMean, MethodLin, MethodBoth}
	schemes := []WeightScheme{WeightEqual, WeightInversePeriod}

	var grid []config
	for size := 1; size <= maxSubset; size++ {
		periods := append([]int(nil), candidates[:size]...)
		for _, method := range methods {
			for _, scheme := range schemes {
				grid = append(grid, config{periods: periods, scheme: scheme, method: method})
			}
		}
	}
	return grid
}
