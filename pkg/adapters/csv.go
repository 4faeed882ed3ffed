package adapters

import (
	"context"
	"errors"

	"github.com/rspadim/NNS/pkg/series"
)

// CSVSource loads the series matrix from a local CSV file with a header row
// of series names.
type CSVSource struct {
	Path string
}

func (c *CSVSource) Name() string { return "csv" }

// Collect reads the whole file. The context is checked once up front; file
// reads are local and fast.
func (c *CSVSource) Collect(ctx context.Context) (*series.Matrix, error) {
	if c.Path == "" {
		return nil, errors.New("csv source: Path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return series.LoadCSV(c.Path)
}
