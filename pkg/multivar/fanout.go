package multivar

import (
	"fmt"
	"sync"

	"github.com/rspadim/NNS/pkg/series"
)

type columnResult struct {
	idx      int
	forecast []float64
	err      error
}

// fanOut runs the univariate stage: every series is detected, optimized and
// forecast independently on a bounded worker pool. Results are reassembled
// in input column order; on failure the pool is fully drained before the
// lowest-index error is returned.
func (p *Pipeline) fanOut(m *series.Matrix, trainLen int, opts Options) (*series.Matrix, error) {
	k := m.NumSeries()

	jobs := make(chan int)
	results := make(chan columnResult, k)

	var wg sync.WaitGroup
	for w := 0; w < opts.OuterWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fc, err := p.forecastColumn(m.Column(i), trainLen, opts)
				results <- columnResult{idx: i, forecast: fc, err: err}
			}
		}()
	}

	for i := 0; i < k; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	cols := make([][]float64, k)
	errs := make([]error, k)
	for res := range results {
		cols[res.idx] = res.forecast
		errs[res.idx] = res.err
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", m.Name(i), err)
		}
	}

	return series.New(m.Names(), cols)
}

// forecastColumn runs the full univariate chain for one series: seasonal
// period detection, hyperparameter optimization on the first trainLen
// observations, an h-step forecast, and the optimizer's bias correction.
func (p *Pipeline) forecastColumn(values []float64, trainLen int, opts Options) ([]float64, error) {
	candidates := p.detector.Detect(values, opts.Tau)

	params, err := p.optimizer.Optimize(values, candidates, trainLen, opts.Objective, opts.InnerWorkers)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	fc, err := p.forecaster.Forecast(values, opts.Horizon, params.Periods, params.Weights, params.Method, opts.InnerWorkers)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	for i := range fc {
		fc[i] += params.BiasShift
	}
	return fc, nil
}
