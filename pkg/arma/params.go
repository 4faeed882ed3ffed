package arma

import "fmt"

// Method selects how each seasonal-lag subseries is projected forward.
type Method string

const (
	// MethodMean continues each subseries with its mean.
	MethodMean Method = "mean"
	// MethodLin fits a line to each subseries and extrapolates it.
	MethodLin Method = "lin"
	// MethodBoth averages the mean and linear projections.
	MethodBoth Method = "both"
)

// WeightScheme selects how the per-period estimates are blended.
type WeightScheme string

const (
	// WeightEqual gives every period the same weight.
	WeightEqual WeightScheme = "equal"
	// WeightInversePeriod favors shorter periods, weight 1/p normalized.
	WeightInversePeriod WeightScheme = "inverse-period"
)

// Params holds the hyperparameters chosen by the optimizer for one series.
type Params struct {
	Periods   []int
	Weights   []float64
	Method    Method
	BiasShift float64
}

// ComputeWeights returns normalized blending weights for periods under the
// given scheme.
func ComputeWeights(periods []int, scheme WeightScheme) ([]float64, error) {
	if len(periods) == 0 {
		return nil, fmt.Errorf("arma: no periods to weight")
	}

	weights := make([]float64, len(periods))
	sum := 0.0
	for i, p := range periods {
		if p < 1 {
			return nil, fmt.Errorf("arma: period %d is not positive", p)
		}
		switch scheme {
		case WeightInversePeriod:
			weights[i] = 1 / float64(p)
		case WeightEqual:
			weights[i] = 1
		default:
			return nil, fmt.Errorf("arma: unknown weight scheme %q", scheme)
		}
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights, nil
}
