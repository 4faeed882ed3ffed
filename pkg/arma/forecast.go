package arma

import "fmt"

// Forecaster produces h-step-ahead forecasts of a single series from
// seasonal-lag subseries. For each future step the series is split into one
// subseries per period (the values at the same phase of that period); each
// subseries is projected one step forward by the chosen method and the
// projections are blended by the period weights. Forecast steps are produced
// recursively, each step appended before the next is computed.
type Forecaster struct{}

// NewForecaster creates a new seasonal-lag forecaster.
func NewForecaster() *Forecaster {
	return &Forecaster{}
}

// Forecast produces an h-length forecast of values using the given periods,
// weights and method. workers is part of the collaborator contract; this
// implementation computes each step serially because steps depend on each
// other.
func (f *Forecaster) Forecast(values []float64, h int, periods []int, weights []float64, method Method, workers int) ([]float64, error) {
	if h <= 0 {
		return nil, fmt.Errorf("arma: horizon %d is not positive", h)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("arma: empty series")
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("arma: no periods")
	}
	if len(weights) != len(periods) {
		return nil, fmt.Errorf("arma: %d weights for %d periods", len(weights), len(periods))
	}
	for _, p := range periods {
		if p < 1 || p > len(values) {
			return nil, fmt.Errorf("arma: period %d out of range for series of length %d", p, len(values))
		}
	}

	n := len(values)
	extended := make([]float64, n, n+h)
	copy(extended, values)

	for step := 0; step < h; step++ {
		target := n + step

		estimate := 0.0
		for i, p := range periods {
			sub := phaseSubseries(extended, target, p)
			estimate += weights[i] * project(sub, method)
		}

		extended = append(extended, estimate)
	}

	return extended[n:], nil
}

// phaseSubseries collects the values at indices congruent to target modulo
// period, oldest first, up to (excluding) target.
func phaseSubseries(extended []float64, target, period int) []float64 {
	first := target % period
	sub := make([]float64, 0, target/period+1)
	for i := first; i < target; i += period {
		sub = append(sub, extended[i])
	}
	return sub
}

// project estimates the next value of a subseries.
func project(sub []float64, method Method) float64 {
	switch method {
	case MethodMean:
		return mean(sub)
	case MethodLin:
		return linearNext(sub)
	default: // MethodBoth
		return (mean(sub) + linearNext(sub)) / 2
	}
}

func mean(sub []float64) float64 {
	sum := 0.0
	for _, v := range sub {
		sum += v
	}
	return sum / float64(len(sub))
}

// linearNext fits y = a + b*i by least squares over the subseries and
// evaluates the line at the next index. A single observation extends flat.
func linearNext(sub []float64) float64 {
	n := len(sub)
	if n == 1 {
		return sub[0]
	}

	// Index mean is (n-1)/2; closed-form simple regression.
	xMean := float64(n-1) / 2
	yMean := mean(sub)

	num, den := 0.0, 0.0
	for i, v := range sub {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}

	slope := num / den
	intercept := yMean - slope*xMean
	return intercept + slope*float64(n)
}
