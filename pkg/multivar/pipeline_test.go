package multivar

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/rspadim/NNS/pkg/arma"
	"github.com/rspadim/NNS/pkg/ensemble"
	"github.com/rspadim/NNS/pkg/objective"
	"github.com/rspadim/NNS/pkg/series"
)

// syntheticPanel builds three deterministic series with trend and a yearly
// cycle, long enough for the default collaborators to optimize against.
func syntheticPanel(t *testing.T, rows int) *series.Matrix {
	t.Helper()

	x := make([]float64, rows)
	y := make([]float64, rows)
	z := make([]float64, rows)
	for i := 0; i < rows; i++ {
		ti := float64(i)
		x[i] = 100 + 0.5*ti + 10*math.Sin(2*math.Pi*ti/12)
		y[i] = 50 + 0.3*ti + 5*math.Cos(2*math.Pi*ti/12)
		z[i] = 20 + 0.1*ti
	}

	m, err := series.New([]string{"x", "y", "z"}, [][]float64{x, y, z})
	if err != nil {
		t.Fatalf("series.New() error = %v", err)
	}
	return m
}

func TestPipeline_Forecast_ShapeAndFiniteness(t *testing.T) {
	m := syntheticPanel(t, 100)
	p := Default(nil, nil)

	out, err := p.Forecast(m, Options{Horizon: 12, Tau: 4})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	if out.Rows() != 12 || out.NumSeries() != 3 {
		t.Fatalf("forecast shape %dx%d, want 12x3", out.Rows(), out.NumSeries())
	}
	for i, name := range out.Names() {
		if want := m.Name(i); name != want {
			t.Errorf("Names()[%d] = %q, want %q", i, name, want)
		}
	}
	for i := 0; i < out.NumSeries(); i++ {
		for step := 0; step < out.Rows(); step++ {
			v := out.At(step, i)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("forecast[%d][%s] = %v", step, out.Name(i), v)
			}
		}
	}
}

func TestPipeline_Forecast_InputUnchanged(t *testing.T) {
	m := syntheticPanel(t, 80)
	before := make([][]float64, m.NumSeries())
	for i := range before {
		before[i] = m.Column(i)
	}

	if _, err := Default(nil, nil).Forecast(m, Options{Horizon: 6, Tau: 2}); err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	for i := range before {
		after := m.Column(i)
		for step := range after {
			if after[step] != before[i][step] {
				t.Fatalf("input series %s mutated at row %d", m.Name(i), step)
			}
		}
	}
}

func TestPipeline_Forecast_FailsFastOnShape(t *testing.T) {
	m := syntheticPanel(t, 100)
	detector := &countingDetector{}
	p := New(detector, arma.NewOptimizer(), arma.NewForecaster(), ensemble.NewSelector(), ensemble.NewStacker(), nil, nil)

	cases := []struct {
		name string
		opts Options
	}{
		{"zero horizon", Options{Horizon: 0, Tau: 2}},
		{"negative horizon", Options{Horizon: -3, Tau: 2}},
		{"negative lag depth", Options{Horizon: 5, Tau: -1}},
		{"horizon eats the history", Options{Horizon: 60, Tau: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.Forecast(m, tc.opts); err == nil {
				t.Fatal("Forecast() error = nil, want input-shape error")
			}
		})
	}

	if detector.calls != 0 {
		t.Errorf("detector ran %d times before validation failed", detector.calls)
	}

	if _, err := p.Forecast(nil, Options{Horizon: 5}); err == nil {
		t.Error("Forecast(nil) error = nil")
	}
}

func TestPipeline_Forecast_CollaboratorFailureAborts(t *testing.T) {
	m := syntheticPanel(t, 80)

	p := New(
		&countingDetector{},
		arma.NewOptimizer(),
		arma.NewForecaster(),
		ensemble.NewSelector(),
		failingStacker{},
		nil, nil,
	)

	_, err := p.Forecast(m, Options{Horizon: 6, Tau: 2})
	if err == nil {
		t.Fatal("Forecast() error = nil, want stacker failure")
	}
	if !errors.Is(err, errStackerDown) {
		t.Errorf("error %v does not wrap the stacker failure", err)
	}
	if !strings.Contains(err.Error(), "multivariate stage") {
		t.Errorf("error %v does not name the failing stage", err)
	}
}

func TestPipeline_Forecast_StatusDoesNotChangeResults(t *testing.T) {
	m := syntheticPanel(t, 90)
	opts := Options{Horizon: 8, Tau: 3}

	quiet, err := Default(nil, nil).Forecast(m, opts)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	rep := &recordingReporter{}
	optsOn := opts
	optsOn.Status = true
	loud, err := Default(rep, nil).Forecast(m, optsOn)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	if rep.stages == 0 || rep.targets != m.NumSeries() {
		t.Errorf("reporter saw %d stages and %d targets, want >0 and %d", rep.stages, rep.targets, m.NumSeries())
	}

	for i := 0; i < quiet.NumSeries(); i++ {
		for step := 0; step < quiet.Rows(); step++ {
			if quiet.At(step, i) != loud.At(step, i) {
				t.Fatalf("status flag changed forecast[%d][%s]: %v vs %v",
					step, quiet.Name(i), quiet.At(step, i), loud.At(step, i))
			}
		}
	}
}

func TestPipeline_Forecast_DeterministicAcrossWorkerCounts(t *testing.T) {
	m := syntheticPanel(t, 90)

	a, err := Default(nil, nil).Forecast(m, Options{Horizon: 8, Tau: 3, OuterWorkers: 1, InnerWorkers: 1})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	b, err := Default(nil, nil).Forecast(m, Options{Horizon: 8, Tau: 3, OuterWorkers: 8, InnerWorkers: 4})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	for i := 0; i < a.NumSeries(); i++ {
		for step := 0; step < a.Rows(); step++ {
			if a.At(step, i) != b.At(step, i) {
				t.Fatalf("worker count changed forecast[%d][%s]: %v vs %v",
					step, a.Name(i), a.At(step, i), b.At(step, i))
			}
		}
	}
}

func TestPipeline_Forecast_ColumnPermutationEquivariant(t *testing.T) {
	m := syntheticPanel(t, 90)
	opts := Options{Horizon: 8, Tau: 3}

	direct, err := Default(nil, nil).Forecast(m, opts)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	// Reversed column order: z, y, x.
	perm := []int{2, 1, 0}
	names := make([]string, len(perm))
	cols := make([][]float64, len(perm))
	for out, in := range perm {
		names[out] = m.Name(in)
		cols[out] = m.Column(in)
	}
	shuffled, err := series.New(names, cols)
	if err != nil {
		t.Fatalf("series.New() error = %v", err)
	}

	permuted, err := Default(nil, nil).Forecast(shuffled, opts)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	// Summation order inside the learners differs under permutation, so the
	// comparison allows rounding noise.
	for out, in := range perm {
		for step := 0; step < direct.Rows(); step++ {
			want := direct.At(step, in)
			got := permuted.At(step, out)
			if math.Abs(got-want) > 1e-6*math.Max(1, math.Abs(want)) {
				t.Fatalf("permuted forecast[%d][%s] = %v, want %v", step, names[out], got, want)
			}
		}
	}
}

func TestPipeline_Forecast_StubCollaboratorsBlendEvenly(t *testing.T) {
	m := syntheticPanel(t, 40)

	p := New(
		stubDetector{},
		stubOptimizer{},
		stubForecaster{value: 10},
		stubSelector{},
		stubStacker{value: 20},
		nil, nil,
	)

	out, err := p.Forecast(m, Options{Horizon: 4, Tau: 1})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	for i := 0; i < out.NumSeries(); i++ {
		for step := 0; step < out.Rows(); step++ {
			if got := out.At(step, i); got != 15 {
				t.Fatalf("blend[%d][%s] = %v, want 15", step, out.Name(i), got)
			}
		}
	}
}

func TestPipeline_Forecast_PanickingReporterIsContained(t *testing.T) {
	m := syntheticPanel(t, 60)

	out, err := Default(panickingReporter{}, nil).Forecast(m, Options{Horizon: 5, Tau: 2, Status: true})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if out.Rows() != 5 {
		t.Fatalf("forecast rows = %d, want 5", out.Rows())
	}
}

// Test doubles.

type countingDetector struct{ calls int }

func (d *countingDetector) Detect(values []float64, modulo int) []int {
	d.calls++
	return []int{1}
}

var errStackerDown = errors.New("stacker down")

type failingStacker struct{}

func (failingStacker) Fit(x *mat.Dense, y []float64, testX *mat.Dense, obj objective.Objective) (*ensemble.StackResult, error) {
	return nil, errStackerDown
}

type recordingReporter struct {
	stages  int
	targets int
}

func (r *recordingReporter) Stage(string) { r.stages++ }

func (r *recordingReporter) Target(int, int) { r.targets++ }

type panickingReporter struct{}

func (panickingReporter) Stage(string) { panic("stage") }

func (panickingReporter) Target(int, int) { panic("target") }

type stubDetector struct{}

func (stubDetector) Detect([]float64, int) []int { return []int{1} }

type stubOptimizer struct{}

func (stubOptimizer) Optimize([]float64, []int, int, objective.Objective, int) (arma.Params, error) {
	return arma.Params{Periods: []int{1}, Weights: []float64{1}, Method: arma.MethodMean}, nil
}

type stubForecaster struct{ value float64 }

func (f stubForecaster) Forecast(values []float64, h int, periods []int, weights []float64, method arma.Method, workers int) ([]float64, error) {
	out := make([]float64, h)
	for i := range out {
		out[i] = f.value
	}
	return out, nil
}

type stubSelector struct{}

func (stubSelector) Select(names []string, x *mat.Dense, y []float64, testX *mat.Dense, obj objective.Objective, trials, iterations, workers int) (ensemble.Selection, error) {
	return ensemble.Selection{Names: names, Weights: make([]float64, len(names))}, nil
}

type stubStacker struct{ value float64 }

func (s stubStacker) Fit(x *mat.Dense, y []float64, testX *mat.Dense, obj objective.Objective) (*ensemble.StackResult, error) {
	rows, _ := testX.Dims()
	stack := make([]float64, rows)
	for i := range stack {
		stack[i] = s.value
	}
	return &ensemble.StackResult{Stack: stack}, nil
}
