// Package main implements the forecaster service. It loads multi-series
// history, computes the joint forecast, stores snapshots and optionally
// serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rspadim/NNS/cmd/forecaster/metrics"
	"github.com/rspadim/NNS/pkg/adapters"
	"github.com/rspadim/NNS/pkg/multivar"
	"github.com/rspadim/NNS/pkg/series"
	"github.com/rspadim/NNS/pkg/storage"
)

// Runner orchestrates one forecast cycle: collect history, forecast, store
// the snapshot and optionally export it to CSV.
type Runner struct {
	dataset   string
	source    adapters.Source
	pipeline  *multivar.Pipeline
	store     storage.Store
	met       *metrics.Metrics
	opts      multivar.Options
	objective string
	outputCSV string
	logger    *slog.Logger

	lastSuccess time.Time
}

// NewRunner creates a Runner. objective is the configured objective name,
// recorded in every snapshot.
func NewRunner(
	dataset string,
	source adapters.Source,
	pipeline *multivar.Pipeline,
	store storage.Store,
	met *metrics.Metrics,
	opts multivar.Options,
	objective string,
	outputCSV string,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		dataset:   dataset,
		source:    source,
		pipeline:  pipeline,
		store:     store,
		met:       met,
		opts:      opts,
		objective: objective,
		outputCSV: outputCSV,
		logger:    logger,
	}
}

// Run refreshes the forecast at regular intervals. Blocks until the context
// is canceled.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	r.logger.Info("starting forecast loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := r.Tick(ctx); err != nil {
		r.logger.Error("forecast tick failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("forecast loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil {
				r.logger.Error("forecast tick failed", "error", err)
			}
		}
	}
}

// Tick performs one forecast cycle.
func (r *Runner) Tick(ctx context.Context) error {
	start := time.Now()
	r.logger.Debug("starting forecast tick")

	if !r.lastSuccess.IsZero() {
		r.met.SetForecastAge(time.Since(r.lastSuccess).Seconds())
	}

	hist, collectDuration, err := r.collect(ctx)
	if err != nil {
		r.met.RecordError("source", "collect_failed")
		return fmt.Errorf("collect: %w", err)
	}

	forecast, forecastDuration, err := r.forecast(hist)
	if err != nil {
		r.met.RecordError("pipeline", "forecast_failed")
		return fmt.Errorf("forecast: %w", err)
	}

	if err := r.storeSnapshot(forecast); err != nil {
		r.met.RecordError("store", "put_failed")
		return fmt.Errorf("store: %w", err)
	}

	if r.outputCSV != "" {
		if err := forecast.SaveCSV(r.outputCSV); err != nil {
			r.met.RecordError("export", "write_failed")
			return fmt.Errorf("export: %w", err)
		}
		r.logger.Debug("exported forecast", "path", r.outputCSV)
	}

	r.lastSuccess = time.Now()
	r.met.SetForecastAge(0)

	r.logger.Info("forecast tick complete",
		"dataset", r.dataset,
		"series", forecast.NumSeries(),
		"horizon", forecast.Rows(),
		"collect_ms", collectDuration.Milliseconds(),
		"forecast_ms", forecastDuration.Milliseconds(),
		"total_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// collect loads the historical matrix from the source.
func (r *Runner) collect(ctx context.Context) (*series.Matrix, time.Duration, error) {
	start := time.Now()

	hist, err := r.source.Collect(ctx)
	if err != nil {
		return nil, 0, err
	}

	duration := time.Since(start)
	r.met.RecordCollect(duration.Seconds())
	r.logger.Debug("collected history",
		"source", r.source.Name(),
		"rows", hist.Rows(),
		"series", hist.NumSeries(),
		"duration_ms", duration.Milliseconds(),
	)

	return hist, duration, nil
}

// forecast runs the joint pipeline over the history.
func (r *Runner) forecast(hist *series.Matrix) (*series.Matrix, time.Duration, error) {
	start := time.Now()

	forecast, err := r.pipeline.Forecast(hist, r.opts)
	if err != nil {
		return nil, 0, err
	}

	duration := time.Since(start)
	r.met.RecordForecast(duration.Seconds())
	r.logger.Debug("computed forecast",
		"series", forecast.NumSeries(),
		"horizon", forecast.Rows(),
		"duration_ms", duration.Milliseconds(),
	)

	return forecast, duration, nil
}

// storeSnapshot persists the forecast as the dataset's latest snapshot.
func (r *Runner) storeSnapshot(forecast *series.Matrix) error {
	values := make([][]float64, forecast.Rows())
	for t := range values {
		row := make([]float64, forecast.NumSeries())
		for i := range row {
			row[i] = forecast.At(t, i)
		}
		values[t] = row
	}

	snapshot := storage.Snapshot{
		Dataset:     r.dataset,
		GeneratedAt: time.Now(),
		Horizon:     forecast.Rows(),
		LagDepth:    r.opts.Tau,
		Objective:   r.objective,
		Names:       forecast.Names(),
		Values:      values,
	}

	if err := r.store.Put(snapshot); err != nil {
		return err
	}

	r.logger.Debug("stored snapshot", "dataset", r.dataset)
	return nil
}
