// Package storage holds completed forecast snapshots for the HTTP API.
package storage

import "time"

// Snapshot is one completed joint forecast of a dataset. Values has Horizon
// rows and one column per entry of Names, in Names order.
type Snapshot struct {
	Dataset     string
	GeneratedAt time.Time
	Horizon     int
	LagDepth    int
	Objective   string
	Names       []string
	Values      [][]float64
}

// Store persists the latest snapshot per dataset.
type Store interface {
	Put(Snapshot) error
	GetLatest(dataset string) (Snapshot, bool, error)
}
