// Package config implements the forecaster service config.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config holds all forecaster configuration.
type Config struct {
	Listen    string
	Dataset   string
	Source    string
	InputCSV  string
	OutputCSV string

	PromURL   string
	PromQuery string
	Step      time.Duration
	Window    time.Duration

	Horizon      int
	LagDepth     int
	Objective    string
	Status       bool
	OuterWorkers int
	InnerWorkers int

	Serve    bool
	Interval time.Duration

	LogFormat string
	LogLevel  string
}

// ParseFlags parses command-line flags and environment variables into a
// Config. Environment variables are fallbacks when flags are not provided.
// Exits with status 1 if required settings are missing.
func ParseFlags() *Config {
	cfg := &Config{}

	// Server
	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8081"), "HTTP listen address")

	// Dataset and source
	flag.StringVar(&cfg.Dataset, "dataset", getEnv("DATASET", ""), "Dataset name (required)")
	flag.StringVar(&cfg.Source, "source", getEnv("SOURCE", "csv"), "History source: csv or prometheus")
	flag.StringVar(&cfg.InputCSV, "input", getEnv("INPUT_CSV", ""), "Input CSV path (required for csv source)")
	flag.StringVar(&cfg.OutputCSV, "output", getEnv("OUTPUT_CSV", ""), "Output CSV path for the forecast (optional)")

	// Prometheus source
	flag.StringVar(&cfg.PromURL, "prom-url", getEnv("PROM_URL", "http://localhost:9090"), "Prometheus URL")
	flag.StringVar(&cfg.PromQuery, "prom-query", getEnv("PROM_QUERY", ""), "Prometheus query (required for prometheus source)")
	flag.DurationVar(&cfg.Step, "step", getEnvDuration("STEP", 1*time.Minute), "Prometheus grid resolution")
	flag.DurationVar(&cfg.Window, "window", getEnvDuration("WINDOW", 6*time.Hour), "Historical window to query")

	// Forecast parameters
	flag.IntVar(&cfg.Horizon, "horizon", getEnvInt("HORIZON", 12), "Forecast steps (required, positive)")
	flag.IntVar(&cfg.LagDepth, "lag-depth", getEnvInt("LAG_DEPTH", 1), "Lag depth of the multivariate stage")
	flag.StringVar(&cfg.Objective, "objective", getEnv("OBJECTIVE", "sse"), "Model scoring objective: sse, mae or mape")
	flag.BoolVar(&cfg.Status, "status", getEnvBool("STATUS", false), "Print progress while forecasting")
	flag.IntVar(&cfg.OuterWorkers, "outer-workers", getEnvInt("OUTER_WORKERS", 0), "Per-series worker pool size (0 = auto)")
	flag.IntVar(&cfg.InnerWorkers, "inner-workers", getEnvInt("INNER_WORKERS", 0), "Hyperparameter search pool size (0 = auto)")

	// Serve mode
	flag.BoolVar(&cfg.Serve, "serve", getEnvBool("SERVE", false), "Keep running, refresh the forecast and serve it over HTTP")
	flag.DurationVar(&cfg.Interval, "interval", getEnvDuration("INTERVAL", 10*time.Minute), "Forecast refresh interval in serve mode")

	// Logging
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.Parse()

	if cfg.Dataset == "" {
		fmt.Fprintln(os.Stderr, "Error: --dataset is required")
		os.Exit(1)
	}
	if cfg.Horizon <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --horizon must be positive")
		os.Exit(1)
	}
	if cfg.Source == "csv" && cfg.InputCSV == "" {
		fmt.Fprintln(os.Stderr, "Error: --input is required for the csv source")
		os.Exit(1)
	}
	if cfg.Source == "prometheus" && cfg.PromQuery == "" {
		fmt.Fprintln(os.Stderr, "Error: --prom-query is required for the prometheus source")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
