// Package adapters provides data sources that load multi-series history
// from external systems and normalize it into a series.Matrix.
//
// Each source implements the Source interface and can be plugged into the
// forecaster service. Sources only pull and shape raw data; all modeling
// happens in the upper layers.
package adapters

import (
	"context"

	"github.com/rspadim/NNS/pkg/series"
)

// Source loads the historical series matrix a forecast run starts from.
//
// Collect is synchronous and must respect context cancellation and
// deadlines. It must handle transient errors gracefully and never panic.
type Source interface {
	Collect(ctx context.Context) (*series.Matrix, error)

	// Name returns a short, unique identifier for the source.
	// Example: "csv", "prometheus".
	Name() string
}
