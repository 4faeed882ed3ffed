package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/rspadim/NNS/pkg/objective"
)

// linearProblem builds y = 2*x0 - x1 + 5 with deterministic predictors.
func linearProblem(rows int) (*mat.Dense, []float64) {
	x := mat.NewDense(rows, 2, nil)
	y := make([]float64, rows)
	for t := 0; t < rows; t++ {
		x0 := float64(t)
		x1 := math.Sin(float64(t) * 0.9)
		x.Set(t, 0, x0)
		x.Set(t, 1, x1)
		y[t] = 2*x0 - x1 + 5
	}
	return x, y
}

func TestStacker_Fit_LinearData(t *testing.T) {
	x, y := linearProblem(60)

	testX := mat.NewDense(3, 2, nil)
	want := make([]float64, 3)
	for i := 0; i < 3; i++ {
		x0 := float64(20 + i) // inside the training range, k-NN friendly
		x1 := math.Sin(float64(20+i) * 0.9)
		testX.Set(i, 0, x0)
		testX.Set(i, 1, x1)
		want[i] = 2*x0 - x1 + 5
	}

	res, err := NewStacker().Fit(x, y, testX, objective.Default())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if len(res.Stack) != 3 {
		t.Fatalf("len(Stack) = %d, want 3", len(res.Stack))
	}
	for i, v := range res.Stack {
		if math.IsNaN(v) {
			t.Fatalf("Stack[%d] is NaN", i)
		}
		// The blend includes k-NN smoothing, so allow a loose tolerance.
		if math.Abs(v-want[i]) > 6 {
			t.Errorf("Stack[%d] = %f, want ~%f", i, v, want[i])
		}
	}

	if len(res.Weights) != len(res.Learners) || len(res.CVScores) != len(res.Learners) {
		t.Errorf("weights/scores not parallel to learners: %d/%d/%d",
			len(res.Weights), len(res.CVScores), len(res.Learners))
	}

	sum := 0.0
	for _, w := range res.Weights {
		if w < 0 {
			t.Errorf("negative stack weight %f", w)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("stack weights sum to %f, want 1", sum)
	}
}

func TestStacker_Fit_Deterministic(t *testing.T) {
	x, y := linearProblem(40)
	testX := mat.NewDense(2, 2, nil)
	testX.Set(0, 0, 10)
	testX.Set(1, 0, 11)

	a, err := NewStacker().Fit(x, y, testX, objective.Default())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	b, err := NewStacker().Fit(x, y, testX, objective.Default())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for i := range a.Stack {
		if a.Stack[i] != b.Stack[i] {
			t.Errorf("Stack[%d] = %v vs %v", i, a.Stack[i], b.Stack[i])
		}
	}
}

func TestStacker_Fit_Errors(t *testing.T) {
	x, y := linearProblem(10)
	s := NewStacker()

	if _, err := s.Fit(x, y[:5], mat.NewDense(1, 2, nil), objective.Default()); err == nil {
		t.Error("expected error for row/response mismatch")
	}
	if _, err := s.Fit(x, y, mat.NewDense(1, 3, nil), objective.Default()); err == nil {
		t.Error("expected error for test column mismatch")
	}

	tinyX, tinyY := linearProblem(3)
	if _, err := s.Fit(tinyX, tinyY, mat.NewDense(1, 2, nil), objective.Default()); err == nil {
		t.Error("expected error for too few training rows")
	}
}

func TestStackWeights_FavorBetterScores(t *testing.T) {
	// Minimizing: the learner with the smallest loss gets the largest weight.
	w := stackWeights([]float64{1, 10, math.NaN()}, objective.Minimize)
	if !(w[0] > w[1]) {
		t.Errorf("weights = %v, want w[0] > w[1]", w)
	}
	if w[2] != 0 {
		t.Errorf("NaN score weight = %f, want 0", w[2])
	}

	// Maximizing: the largest score wins.
	w = stackWeights([]float64{0.2, 0.9}, objective.Maximize)
	if !(w[1] > w[0]) {
		t.Errorf("weights = %v, want w[1] > w[0]", w)
	}
}
