// Package router configures the forecaster's HTTP routes.
//
// Routes:
//   - GET /forecast/latest?dataset=<name> - latest forecast snapshot
//   - GET /healthz - health check (returns 200 OK)
//   - GET /metrics - Prometheus metrics
//
// The /forecast/latest endpoint returns the snapshot as JSON: the forecast
// values per series plus metadata (generated timestamp, horizon, lag depth,
// objective). Snapshots older than the stale threshold include an
// X-Forecast-Stale header.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rspadim/NNS/pkg/httpx"
	"github.com/rspadim/NNS/pkg/storage"
)

// SetupRoutes configures HTTP endpoints for the forecaster.
func SetupRoutes(store storage.Store, staleAfter time.Duration, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/healthz", httpx.HealthHandler())
	mux.HandleFunc("/forecast/latest", handleGetSnapshot(store, staleAfter, logger))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// handleGetSnapshot returns a handler for GET /forecast/latest?dataset=<name>.
func handleGetSnapshot(store storage.Store, staleAfter time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dataset := r.URL.Query().Get("dataset")
		if dataset == "" {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "dataset parameter required")
			return
		}

		snapshot, found, err := store.GetLatest(dataset)
		if err != nil {
			logger.Error("failed to get snapshot", "dataset", dataset, "error", err)
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !found {
			httpx.WriteErrorMessage(w, http.StatusNotFound, fmt.Sprintf("snapshot not found for dataset %q", dataset))
			return
		}

		if time.Since(snapshot.GeneratedAt) > staleAfter {
			w.Header().Set("X-Forecast-Stale", "true")
		}

		resp := map[string]any{
			"dataset":     snapshot.Dataset,
			"generatedAt": snapshot.GeneratedAt.Format(time.RFC3339),
			"horizon":     snapshot.Horizon,
			"lagDepth":    snapshot.LagDepth,
			"objective":   snapshot.Objective,
			"names":       snapshot.Names,
			"values":      snapshot.Values,
		}

		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
