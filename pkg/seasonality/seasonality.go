// Package seasonality detects candidate periodicities in a single series.
//
// Detection is autocorrelation-based: a period is a candidate when its
// autocorrelation exceeds the usual significance band 2/sqrt(n). When a
// modulo depth is supplied, candidates are restricted to multiples of it so
// the periods line up with the lag structure of the multivariate stage.
package seasonality

import (
	"math"
	"sort"
)

// Detector finds candidate periodicities of a series.
type Detector struct {
	// MaxPeriod caps the largest period considered. Zero means half the
	// series length.
	MaxPeriod int
}

// NewDetector returns a Detector with default settings.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the detected periodicities of values, strongest first.
// modulo restricts candidates to its multiples when positive. The result is
// never empty: period 1 (no seasonality) is the fallback.
func (d *Detector) Detect(values []float64, modulo int) []int {
	n := len(values)
	maxPeriod := d.MaxPeriod
	if maxPeriod <= 0 || maxPeriod > n/2 {
		maxPeriod = n / 2
	}
	if maxPeriod < 2 {
		return []int{1}
	}

	acf := acf(values, maxPeriod)
	if acf == nil {
		return []int{1}
	}

	threshold := 2.0 / math.Sqrt(float64(n))

	type candidate struct {
		period   int
		strength float64
	}
	var found []candidate
	for p := 2; p <= maxPeriod; p++ {
		if modulo > 0 && p%modulo != 0 {
			continue
		}
		if acf[p] > threshold {
			found = append(found, candidate{period: p, strength: acf[p]})
		}
	}

	if len(found) == 0 {
		return []int{1}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].strength > found[j].strength
	})

	periods := make([]int, len(found))
	for i, c := range found {
		periods[i] = c.period
	}
	return periods
}

// acf computes the autocorrelation function for lags 0..maxLag.
// Returns nil when the series has no variance.
func acf(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		return nil
	}

	out := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		out[k] = sum / variance
	}
	return out
}
