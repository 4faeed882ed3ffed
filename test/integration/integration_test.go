package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rspadim/NNS/cmd/forecaster/router"
	"github.com/rspadim/NNS/pkg/adapters"
	"github.com/rspadim/NNS/pkg/client"
	"github.com/rspadim/NNS/pkg/multivar"
	"github.com/rspadim/NNS/pkg/series"
	"github.com/rspadim/NNS/pkg/storage"
)

// writeHistoryCSV builds a three-series history fixture with trend and a
// yearly cycle.
func writeHistoryCSV(t *testing.T, rows int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("demand,price,stock\n")
	for i := 0; i < rows; i++ {
		ti := float64(i)
		fmt.Fprintf(&b, "%g,%g,%g\n",
			100+0.5*ti+10*math.Sin(2*math.Pi*ti/12),
			50+0.3*ti+5*math.Cos(2*math.Pi*ti/12),
			20+0.1*ti,
		)
	}

	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// TestForecastServiceE2E drives the full chain in process: CSV source,
// forecast pipeline, snapshot store, HTTP router and client.
func TestForecastServiceE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	const (
		horizon  = 12
		lagDepth = 4
		dataset  = "market"
	)

	// 1. Load the history.
	src := &adapters.CSVSource{Path: writeHistoryCSV(t, 120)}
	hist, err := src.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if hist.Rows() != 120 || hist.NumSeries() != 3 {
		t.Fatalf("history shape %dx%d, want 120x3", hist.Rows(), hist.NumSeries())
	}

	// 2. Run the joint forecast.
	forecast, err := multivar.Default(nil, logger).Forecast(hist, multivar.Options{
		Horizon: horizon,
		Tau:     lagDepth,
	})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if forecast.Rows() != horizon || forecast.NumSeries() != 3 {
		t.Fatalf("forecast shape %dx%d, want %dx3", forecast.Rows(), forecast.NumSeries(), horizon)
	}

	// 3. Store the snapshot.
	store := storage.NewMemoryStore()
	if err := store.Put(toSnapshot(dataset, forecast, lagDepth)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// 4. Serve it and fetch through the client.
	mux := router.SetupRoutes(store, time.Hour, logger)
	server := httptest.NewServer(mux)
	defer server.Close()

	result, err := client.NewForecasterClient(server.URL).GetSnapshot(ctx, dataset)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	if result.Stale {
		t.Error("fresh snapshot reported stale")
	}

	snap := result.Snapshot
	if snap.Dataset != dataset || snap.Horizon != horizon || snap.LagDepth != lagDepth {
		t.Errorf("snapshot metadata = %+v", snap)
	}
	for i, name := range snap.Names {
		if want := hist.Name(i); name != want {
			t.Errorf("Names[%d] = %q, want %q", i, name, want)
		}
	}
	for step, row := range snap.Values {
		for i, v := range row {
			if want := forecast.At(step, i); v != want {
				t.Errorf("Values[%d][%d] = %v, want %v", step, i, v, want)
			}
		}
	}

	// 5. An unknown dataset is an error.
	if _, err := client.NewForecasterClient(server.URL).GetSnapshot(ctx, "unknown"); err == nil {
		t.Error("GetSnapshot(unknown) error = nil, want not-found error")
	}
}

// TestForecastServiceE2E_StaleSnapshot verifies the stale header round trip.
func TestForecastServiceE2E_StaleSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore()

	old := storage.Snapshot{
		Dataset:     "market",
		GeneratedAt: time.Now().Add(-time.Hour),
		Horizon:     1,
		Objective:   "sse",
		Names:       []string{"demand"},
		Values:      [][]float64{{42}},
	}
	if err := store.Put(old); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	server := httptest.NewServer(router.SetupRoutes(store, time.Minute, logger))
	defer server.Close()

	result, err := client.NewForecasterClient(server.URL).GetSnapshot(context.Background(), "market")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if !result.Stale {
		t.Error("hour-old snapshot not reported stale")
	}
}

func toSnapshot(dataset string, forecast *series.Matrix, lagDepth int) storage.Snapshot {
	values := make([][]float64, forecast.Rows())
	for t := range values {
		row := make([]float64, forecast.NumSeries())
		for i := range row {
			row[i] = forecast.At(t, i)
		}
		values[t] = row
	}

	return storage.Snapshot{
		Dataset:     dataset,
		GeneratedAt: time.Now(),
		Horizon:     forecast.Rows(),
		LagDepth:    lagDepth,
		Objective:   "sse",
		Names:       forecast.Names(),
		Values:      values,
	}
}
