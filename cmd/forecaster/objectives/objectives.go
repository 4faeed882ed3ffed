// Package objectives selects the scoring objective from the service config.
package objectives

import (
	"log/slog"
	"os"

	"github.com/rspadim/NNS/cmd/forecaster/config"
	"github.com/rspadim/NNS/pkg/objective"
)

// New resolves cfg.Objective to a scoring objective. Exits with status 1 on
// an unknown name.
func New(cfg *config.Config, logger *slog.Logger) objective.Objective {
	switch cfg.Objective {
	case "sse":
		return objective.Objective{Fn: objective.SSE, Direction: objective.Minimize}

	case "mae":
		return objective.Objective{Fn: objective.MAE, Direction: objective.Minimize}

	case "mape":
		return objective.Objective{Fn: objective.MAPE, Direction: objective.Minimize}

	default:
		logger.Error("invalid objective", "objective", cfg.Objective)
		os.Exit(1)
	}

	return objective.Objective{}
}
