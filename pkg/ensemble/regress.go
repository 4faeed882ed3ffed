package ensemble

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// learner is a base regressor used inside the ensembles. Implementations
// must be deterministic: fitting the same data twice yields the same model.
type learner interface {
	name() string
	fit(x *mat.Dense, y []float64) error
	predict(x *mat.Dense) []float64
}

// scaler standardizes feature columns to zero mean and unit variance.
// Constant columns are left centered only.
type scaler struct {
	means []float64
	stds  []float64
}

func fitScaler(x *mat.Dense) *scaler {
	rows, cols := x.Dims()
	s := &scaler{
		means: make([]float64, cols),
		stds:  make([]float64, cols),
	}
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.means[j] = mean
		s.stds[j] = std
	}
	return s
}

func (s *scaler) transform(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	z := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			z.Set(i, j, (x.At(i, j)-s.means[j])/s.stds[j])
		}
	}
	return z
}

// ridge is L2-regularized linear regression on standardized features.
// The penalized normal equations (Z'Z + lambda*I) beta = Z'y are solved by
// Cholesky; lambda > 0 keeps the system positive definite.
type ridge struct {
	lambda float64

	scale *scaler
	yMean float64
	beta  *mat.VecDense
}

func newRidge(lambda float64) *ridge {
	return &ridge{lambda: lambda}
}

func (r *ridge) name() string { return fmt.Sprintf("ridge(%g)", r.lambda) }

func (r *ridge) fit(x *mat.Dense, y []float64) error {
	rows, cols := x.Dims()
	if rows != len(y) {
		return fmt.Errorf("ensemble: ridge: %d rows for %d responses", rows, len(y))
	}
	if rows < 2 {
		return fmt.Errorf("ensemble: ridge: need at least 2 rows, got %d", rows)
	}

	r.scale = fitScaler(x)
	z := r.scale.transform(x)

	r.yMean = stat.Mean(y, nil)
	yc := mat.NewVecDense(rows, nil)
	for i, v := range y {
		yc.SetVec(i, v-r.yMean)
	}

	var ztz mat.Dense
	ztz.Mul(z.T(), z)
	sym := mat.NewSymDense(cols, nil)
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			v := ztz.At(i, j)
			if i == j {
				v += r.lambda
			}
			sym.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return fmt.Errorf("ensemble: ridge: penalized normal equations not positive definite")
	}

	zty := mat.NewVecDense(cols, nil)
	zty.MulVec(z.T(), yc)

	beta := mat.NewVecDense(cols, nil)
	if err := chol.SolveVecTo(beta, zty); err != nil {
		return fmt.Errorf("ensemble: ridge: solve: %w", err)
	}

	r.beta = beta
	return nil
}

func (r *ridge) predict(x *mat.Dense) []float64 {
	rows, _ := x.Dims()
	z := r.scale.transform(x)

	out := make([]float64, rows)
	pred := mat.NewVecDense(rows, nil)
	pred.MulVec(z, r.beta)
	for i := range out {
		out[i] = pred.AtVec(i) + r.yMean
	}
	return out
}

// coefficients returns the fitted standardized coefficients.
func (r *ridge) coefficients() []float64 {
	out := make([]float64, r.beta.Len())
	for i := range out {
		out[i] = r.beta.AtVec(i)
	}
	return out
}

// knn is an inverse-distance-weighted k-nearest-neighbor regressor over
// standardized features. Ties are broken by row index so predictions are
// reproducible.
type knn struct {
	k int

	scale *scaler
	train *mat.Dense
	y     []float64
}

func newKNN(k int) *knn {
	return &knn{k: k}
}

func (m *knn) name() string { return fmt.Sprintf("knn(%d)", m.k) }

func (m *knn) fit(x *mat.Dense, y []float64) error {
	rows, _ := x.Dims()
	if rows != len(y) {
		return fmt.Errorf("ensemble: knn: %d rows for %d responses", rows, len(y))
	}
	if rows < 1 {
		return fmt.Errorf("ensemble: knn: empty training set")
	}

	m.scale = fitScaler(x)
	m.train = m.scale.transform(x)
	m.y = append([]float64(nil), y...)
	return nil
}

func (m *knn) predict(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	z := m.scale.transform(x)
	trainRows, _ := m.train.Dims()

	k := m.k
	if k > trainRows {
		k = trainRows
	}

	type neighbor struct {
		dist float64
		idx  int
	}

	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		neighbors := make([]neighbor, trainRows)
		for t := 0; t < trainRows; t++ {
			d := 0.0
			for j := 0; j < cols; j++ {
				diff := z.At(i, j) - m.train.At(t, j)
				d += diff * diff
			}
			neighbors[t] = neighbor{dist: d, idx: t}
		}
		sort.Slice(neighbors, func(a, b int) bool {
			if neighbors[a].dist != neighbors[b].dist {
				return neighbors[a].dist < neighbors[b].dist
			}
			return neighbors[a].idx < neighbors[b].idx
		})

		num, den := 0.0, 0.0
		for _, nb := range neighbors[:k] {
			w := 1 / (math.Sqrt(nb.dist) + 1e-9)
			num += w * m.y[nb.idx]
			den += w
		}
		out[i] = num / den
	}
	return out
}
