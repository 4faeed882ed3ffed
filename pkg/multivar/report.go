package multivar

import "log/slog"

// Reporter receives best-effort progress notifications while a forecast
// runs. Implementations must be safe for calls from the pipeline goroutine;
// panics are swallowed so a reporter can never fail a forecast.
type Reporter interface {
	// Stage announces that a pipeline stage is starting.
	Stage(name string)

	// Target announces that ensemble target k of n is being refined.
	Target(k, n int)
}

// NopReporter discards all notifications.
type NopReporter struct{}

func (NopReporter) Stage(string) {}

func (NopReporter) Target(int, int) {}

// LogReporter writes progress notifications to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a Reporter backed by logger, or slog.Default when
// logger is nil.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Stage(name string) {
	r.logger.Info("forecast stage", "stage", name)
}

func (r *LogReporter) Target(k, n int) {
	r.logger.Info("refining ensemble target", "target", k, "of", n)
}
