// Package source provides history source initialization for the forecaster.
//
// It acts as a factory for adapters.Source implementations based on the
// service configuration:
//
//   - csv: reads the whole history from a local CSV file (default).
//     Suitable for one-shot runs and offline analysis.
//
//   - prometheus: pulls the history window from the Prometheus HTTP API,
//     one matrix column per returned series. Suitable for serve mode.
//
// The factory fails fast: an unknown source name exits immediately so the
// forecaster never runs with a broken data configuration.
package source

import (
	"log/slog"
	"os"

	"github.com/rspadim/NNS/cmd/forecaster/config"
	"github.com/rspadim/NNS/pkg/adapters"
)

// New creates the history source selected by cfg.Source. Exits with status
// 1 on an unknown source name.
func New(cfg *config.Config, logger *slog.Logger) adapters.Source {
	switch cfg.Source {
	case "csv":
		logger.Info("using csv source", "path", cfg.InputCSV)
		return &adapters.CSVSource{Path: cfg.InputCSV}

	case "prometheus":
		logger.Info("using prometheus source",
			"url", cfg.PromURL,
			"query", cfg.PromQuery,
			"window", cfg.Window,
		)
		return &adapters.PrometheusSource{
			ServerURL: cfg.PromURL,
			Query:     cfg.PromQuery,
			Step:      cfg.Step,
			Window:    cfg.Window,
		}

	default:
		logger.Error("invalid source type", "source", cfg.Source)
		os.Exit(1)
	}

	return nil
}
