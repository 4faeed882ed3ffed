// Package config provides configuration parsing for forecastctl.
//
// It handles both command-line flags and environment variables, with flags
// taking precedence. Sources in order of precedence:
//  1. Command-line flags
//  2. Environment variables
//  3. Default values
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

type Config struct {
	ForecasterURL string
	Dataset       string
	Watch         bool
	Interval      time.Duration
	Timeout       time.Duration
}

func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ForecasterURL, "forecaster-url", getEnv("FORECASTER_URL", "http://localhost:8081"), "Forecaster HTTP endpoint")
	flag.StringVar(&cfg.Dataset, "dataset", getEnv("DATASET", ""), "Dataset name (required)")
	flag.BoolVar(&cfg.Watch, "watch", false, "Keep refreshing the snapshot")
	flag.DurationVar(&cfg.Interval, "interval", getEnvDuration("INTERVAL", 30*time.Second), "Refresh interval in watch mode")
	flag.DurationVar(&cfg.Timeout, "timeout", getEnvDuration("TIMEOUT", 5*time.Second), "Request timeout")

	flag.Parse()

	if cfg.Dataset == "" {
		fmt.Fprintln(os.Stderr, "Error: -dataset is required")
		flag.Usage()
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
