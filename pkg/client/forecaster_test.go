package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rspadim/NNS/pkg/storage"
)

func TestNewForecasterClient(t *testing.T) {
	c := NewForecasterClient("http://localhost:8081")
	if c.baseURL != "http://localhost:8081" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.httpClient.Timeout)
	}

	custom := NewForecasterClientWithTimeout("http://localhost:8081", 10*time.Second)
	if custom.httpClient.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", custom.httpClient.Timeout)
	}
}

func TestForecasterClient_GetSnapshot_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast/latest" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("dataset") != "macro" {
			t.Errorf("unexpected dataset: %s", r.URL.Query().Get("dataset"))
		}

		resp := SnapshotResponse{
			Dataset:     "macro",
			GeneratedAt: time.Now(),
			Horizon:     3,
			LagDepth:    4,
			Objective:   "sse",
			Names:       []string{"x", "y"},
			Values:      [][]float64{{1, 2}, {3, 4}, {5, 6}},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer server.Close()

	result, err := NewForecasterClient(server.URL).GetSnapshot(context.Background(), "macro")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}

	if result.Stale {
		t.Error("Stale = true, want false")
	}

	snap := result.Snapshot
	if snap.Dataset != "macro" || snap.Horizon != 3 || snap.LagDepth != 4 {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(snap.Names) != 2 || len(snap.Values) != 3 {
		t.Errorf("snapshot shape: %d names, %d rows", len(snap.Names), len(snap.Values))
	}
	if snap.Values[2][1] != 6 {
		t.Errorf("Values[2][1] = %v, want 6", snap.Values[2][1])
	}
}

func TestForecasterClient_GetSnapshot_Stale(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Forecast-Stale", "true")
		w.Header().Set("Content-Type", "application/json")

		resp := SnapshotResponse{
			Dataset:     "macro",
			GeneratedAt: time.Now().Add(-5 * time.Minute),
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer server.Close()

	result, err := NewForecasterClient(server.URL).GetSnapshot(context.Background(), "macro")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if !result.Stale {
		t.Error("Stale = false, want true")
	}
}

func TestForecasterClient_GetSnapshot_Errors(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "snapshot not found"})
	}))
	defer notFound.Close()

	if _, err := NewForecasterClient(notFound.URL).GetSnapshot(context.Background(), "macro"); err == nil {
		t.Error("GetSnapshot() error = nil, want not-found error")
	}

	if _, err := NewForecasterClient(notFound.URL).GetSnapshot(context.Background(), ""); err == nil {
		t.Error("GetSnapshot() with empty dataset: error = nil")
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	if _, err := NewForecasterClient(broken.URL).GetSnapshot(context.Background(), "macro"); err == nil {
		t.Error("GetSnapshot() error = nil, want status error")
	}
}

func TestIsStale(t *testing.T) {
	fresh := storage.Snapshot{GeneratedAt: time.Now().Add(-30 * time.Second)}
	if IsStale(fresh, time.Minute) {
		t.Error("IsStale() = true for a fresh snapshot")
	}

	old := storage.Snapshot{GeneratedAt: time.Now().Add(-5 * time.Minute)}
	if !IsStale(old, time.Minute) {
		t.Error("IsStale() = false for an old snapshot")
	}
}
