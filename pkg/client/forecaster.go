// Package client provides an HTTP client for fetching forecast snapshots
// from the forecaster service.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rspadim/NNS/pkg/storage"
)

// ForecasterClient fetches forecast snapshots over HTTP. It is safe for
// concurrent use by multiple goroutines.
type ForecasterClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewForecasterClient creates a client for the forecaster service. The
// baseURL should include the scheme and host (e.g. "http://localhost:8081").
// HTTP requests time out after 5 seconds.
func NewForecasterClient(baseURL string) *ForecasterClient {
	return NewForecasterClientWithTimeout(baseURL, 5*time.Second)
}

// NewForecasterClientWithTimeout creates a client with a custom timeout.
func NewForecasterClientWithTimeout(baseURL string, timeout time.Duration) *ForecasterClient {
	return &ForecasterClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SnapshotResponse is the JSON body of GET /forecast/latest.
type SnapshotResponse struct {
	Dataset     string      `json:"dataset"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Horizon     int         `json:"horizon"`
	LagDepth    int         `json:"lagDepth"`
	Objective   string      `json:"objective"`
	Names       []string    `json:"names"`
	Values      [][]float64 `json:"values"`
}

// SnapshotResult carries the snapshot and the server's staleness verdict.
type SnapshotResult struct {
	Snapshot storage.Snapshot
	Stale    bool // true if the X-Forecast-Stale header was present
}

// GetSnapshot fetches the latest forecast snapshot of a dataset, reporting
// whether the server marked it stale. The context can cancel the request or
// set a deadline. A missing dataset is an error.
func (c *ForecasterClient) GetSnapshot(ctx context.Context, dataset string) (*SnapshotResult, error) {
	if dataset == "" {
		return nil, fmt.Errorf("dataset cannot be empty")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/forecast/latest"
	query := u.Query()
	query.Set("dataset", dataset)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("snapshot not found for dataset %q", dataset)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	stale := resp.Header.Get("X-Forecast-Stale") == "true"

	var body SnapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &SnapshotResult{
		Snapshot: storage.Snapshot{
			Dataset:     body.Dataset,
			GeneratedAt: body.GeneratedAt,
			Horizon:     body.Horizon,
			LagDepth:    body.LagDepth,
			Objective:   body.Objective,
			Names:       body.Names,
			Values:      body.Values,
		},
		Stale: stale,
	}, nil
}

// IsStale reports whether a snapshot is older than staleAfter, judged by
// its GeneratedAt timestamp.
func IsStale(snapshot storage.Snapshot, staleAfter time.Duration) bool {
	return time.Since(snapshot.GeneratedAt) > staleAfter
}
