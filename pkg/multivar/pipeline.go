package multivar

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/rspadim/NNS/pkg/arma"
	"github.com/rspadim/NNS/pkg/ensemble"
	"github.com/rspadim/NNS/pkg/lagmat"
	"github.com/rspadim/NNS/pkg/objective"
	"github.com/rspadim/NNS/pkg/seasonality"
	"github.com/rspadim/NNS/pkg/series"
)

// SeasonalityDetector finds candidate periodicities of a single series,
// restricted to multiples of modulo when it is positive.
type SeasonalityDetector interface {
	Detect(values []float64, modulo int) []int
}

// Optimizer chooses autoregressive hyperparameters for one series. The
// series is split at trainLen; the remainder is the optimizer's validation
// window. workers bounds the optimizer's private worker pool, which must be
// fully torn down before Optimize returns.
type Optimizer interface {
	Optimize(values []float64, candidates []int, trainLen int, obj objective.Objective, workers int) (arma.Params, error)
}

// UnivariateForecaster produces an h-step forecast of one series from
// optimized hyperparameters.
type UnivariateForecaster interface {
	Forecast(values []float64, h int, periods []int, weights []float64, method arma.Method, workers int) ([]float64, error)
}

// FeatureSelector screens candidate predictors for one target, returning
// the retained predictor names.
type FeatureSelector interface {
	Select(names []string, x *mat.Dense, y []float64, testX *mat.Dense, obj objective.Objective, trials, iterations, workers int) (ensemble.Selection, error)
}

// Stacker fits a cross-validated stacked regression over the selected
// predictors and exposes the blended test-row forecast.
type Stacker interface {
	Fit(x *mat.Dense, y []float64, testX *mat.Dense, obj objective.Objective) (*ensemble.StackResult, error)
}

// Pipeline orchestrates the joint forecast: per-series univariate forecasts
// in parallel, lagged feature construction, a sequential per-target ensemble
// refinement, and the final blend.
type Pipeline struct {
	detector   SeasonalityDetector
	optimizer  Optimizer
	forecaster UnivariateForecaster
	selector   FeatureSelector
	stacker    Stacker
	reporter   Reporter
	logger     *slog.Logger
}

// New creates a Pipeline with explicit collaborators. A nil reporter
// disables progress notifications; a nil logger falls back to slog.Default.
func New(
	detector SeasonalityDetector,
	optimizer Optimizer,
	forecaster UnivariateForecaster,
	selector FeatureSelector,
	stacker Stacker,
	reporter Reporter,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &Pipeline{
		detector:   detector,
		optimizer:  optimizer,
		forecaster: forecaster,
		selector:   selector,
		stacker:    stacker,
		reporter:   reporter,
		logger:     logger,
	}
}

// Default creates a Pipeline wired to the default collaborators.
func Default(reporter Reporter, logger *slog.Logger) *Pipeline {
	return New(
		seasonality.NewDetector(),
		arma.NewOptimizer(),
		arma.NewForecaster(),
		ensemble.NewSelector(),
		ensemble.NewStacker(),
		reporter,
		logger,
	)
}

// Forecast produces the h-step joint forecast of m. The result has h rows
// and m's columns in m's order. The input matrix is never mutated; any
// collaborator failure aborts the whole call.
func (p *Pipeline) Forecast(m *series.Matrix, opts Options) (*series.Matrix, error) {
	opts = opts.withDefaults()

	trainLen, err := validate(m, opts)
	if err != nil {
		return nil, err
	}

	if opts.Status {
		p.report(func() { p.reporter.Stage("univariate forecasts") })
	}
	p.logger.Debug("starting univariate fan-out",
		"series", m.NumSeries(),
		"horizon", opts.Horizon,
		"outer_workers", opts.OuterWorkers,
	)

	uni, err := p.fanOut(m, trainLen, opts)
	if err != nil {
		return nil, fmt.Errorf("univariate stage: %w", err)
	}

	frame, zeroLag, err := lagmat.Build(m, uni, opts.Tau)
	if err != nil {
		return nil, fmt.Errorf("lag matrix: %w", err)
	}
	p.logger.Debug("built lagged feature frame",
		"rows", frame.Rows(),
		"columns", frame.Cols(),
		"lag_depth", opts.Tau,
	)

	if opts.Status {
		p.report(func() { p.reporter.Stage("multivariate ensemble") })
	}
	multi, err := p.ensembleStage(frame, zeroLag, m.Names(), opts)
	if err != nil {
		return nil, fmt.Errorf("multivariate stage: %w", err)
	}

	return combine(uni, multi)
}

// validate fails fast on input-shape errors before any stage starts.
func validate(m *series.Matrix, opts Options) (trainLen int, err error) {
	if m == nil {
		return 0, fmt.Errorf("multivar: nil series matrix")
	}
	if opts.Horizon <= 0 {
		return 0, fmt.Errorf("multivar: horizon %d is not positive", opts.Horizon)
	}
	if opts.Tau < 0 {
		return 0, fmt.Errorf("multivar: negative lag depth %d", opts.Tau)
	}
	if opts.Horizon >= m.Rows() {
		return 0, fmt.Errorf("multivar: horizon %d requires more than %d observations", opts.Horizon, m.Rows())
	}
	if m.NumSeries() == 1 && opts.Tau == 0 {
		return 0, fmt.Errorf("multivar: a single series needs a positive lag depth to form predictors")
	}

	trainLen = m.Rows() - 2*opts.Horizon
	if trainLen < 2 {
		return 0, fmt.Errorf("multivar: %d observations leave no training window for horizon %d (need > %d)",
			m.Rows(), opts.Horizon, 2*opts.Horizon+1)
	}

	// The ensemble stage trains on the observed rows remaining after the
	// first tau are dropped by lag construction.
	if m.Rows()-opts.Tau < 4 {
		return 0, fmt.Errorf("multivar: lag depth %d leaves %d training rows, need at least 4",
			opts.Tau, m.Rows()-opts.Tau)
	}

	return trainLen, nil
}

// combine averages the univariate and ensemble forecast matrices column by
// column, restoring the original series names.
func combine(uni, multi *series.Matrix) (*series.Matrix, error) {
	if uni.Rows() != multi.Rows() || uni.NumSeries() != multi.NumSeries() {
		return nil, fmt.Errorf("multivar: combine: %dx%d univariate vs %dx%d ensemble",
			uni.Rows(), uni.NumSeries(), multi.Rows(), multi.NumSeries())
	}

	cols := make([][]float64, uni.NumSeries())
	for i := 0; i < uni.NumSeries(); i++ {
		col := make([]float64, uni.Rows())
		for t := 0; t < uni.Rows(); t++ {
			col[t] = (uni.At(t, i) + multi.At(t, i)) / 2
		}
		cols[i] = col
	}
	return series.New(uni.Names(), cols)
}

// report runs a status notification, swallowing any panic so reporting can
// never fail the pipeline.
func (p *Pipeline) report(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("status reporter panicked", "panic", r)
		}
	}()
	fn()
}
