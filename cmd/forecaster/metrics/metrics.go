// Package metrics exposes Prometheus instrumentation for the forecaster
// service: run timings per stage, forecast age and error counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the forecaster's Prometheus collectors. All collectors carry
// the dataset as a constant label and register on the default registry.
type Metrics struct {
	CollectSeconds     prometheus.Histogram
	ForecastSeconds    prometheus.Histogram
	ForecastAgeSeconds prometheus.Gauge
	RunsTotal          prometheus.Counter
	ErrorsTotal        *prometheus.CounterVec
}

// New creates and registers the forecaster metrics for a dataset.
func New(dataset string) *Metrics {
	labels := prometheus.Labels{"dataset": dataset}

	return &Metrics{
		CollectSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:        "nns_forecaster_collect_seconds",
			Help:        "Time spent loading history from the source",
			ConstLabels: labels,
		}),
		ForecastSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:        "nns_forecaster_run_seconds",
			Help:        "Time spent computing the joint forecast",
			ConstLabels: labels,
		}),
		ForecastAgeSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "nns_forecast_age_seconds",
			Help:        "Age of the latest forecast snapshot in seconds",
			ConstLabels: labels,
		}),
		RunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "nns_forecaster_runs_total",
			Help:        "Total number of completed forecast runs",
			ConstLabels: labels,
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "nns_forecaster_errors_total",
			Help:        "Total number of errors by component and reason",
			ConstLabels: labels,
		}, []string{"component", "reason"}),
	}
}

// RecordCollect observes a history load duration in seconds.
func (m *Metrics) RecordCollect(seconds float64) {
	m.CollectSeconds.Observe(seconds)
}

// RecordForecast observes a forecast run duration in seconds and counts the
// run.
func (m *Metrics) RecordForecast(seconds float64) {
	m.ForecastSeconds.Observe(seconds)
	m.RunsTotal.Inc()
}

// SetForecastAge sets the age of the current snapshot in seconds.
func (m *Metrics) SetForecastAge(seconds float64) {
	m.ForecastAgeSeconds.Set(seconds)
}

// RecordError counts an error by component and reason.
func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}
