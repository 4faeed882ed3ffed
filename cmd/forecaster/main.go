package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rspadim/NNS/cmd/forecaster/config"
	"github.com/rspadim/NNS/cmd/forecaster/logger"
	"github.com/rspadim/NNS/cmd/forecaster/metrics"
	"github.com/rspadim/NNS/cmd/forecaster/objectives"
	"github.com/rspadim/NNS/cmd/forecaster/router"
	"github.com/rspadim/NNS/cmd/forecaster/source"
	"github.com/rspadim/NNS/cmd/forecaster/status"
	"github.com/rspadim/NNS/pkg/httpx"
	"github.com/rspadim/NNS/pkg/multivar"
	"github.com/rspadim/NNS/pkg/storage"
)

func main() {
	cfg := config.ParseFlags()

	log := logger.New(cfg)
	slog.SetDefault(log)

	log.Info("starting forecaster",
		"dataset", cfg.Dataset,
		"source", cfg.Source,
		"horizon", cfg.Horizon,
		"lag_depth", cfg.LagDepth,
		"objective", cfg.Objective,
	)

	met := metrics.New(cfg.Dataset)
	src := source.New(cfg, log)
	store := storage.NewMemoryStore()
	obj := objectives.New(cfg, log)

	var reporter multivar.Reporter
	if cfg.Status {
		reporter = status.New()
	}
	pipeline := multivar.Default(reporter, log)

	opts := multivar.Options{
		Horizon:      cfg.Horizon,
		Tau:          cfg.LagDepth,
		Objective:    obj,
		Status:       cfg.Status,
		OuterWorkers: cfg.OuterWorkers,
		InnerWorkers: cfg.InnerWorkers,
	}

	runner := NewRunner(cfg.Dataset, src, pipeline, store, met, opts, cfg.Objective, cfg.OutputCSV, log)

	if !cfg.Serve {
		if err := runner.Tick(context.Background()); err != nil {
			log.Error("forecast failed", "error", err)
			os.Exit(1)
		}
		return
	}

	staleAfter := 2 * cfg.Interval // a snapshot is stale once it misses a refresh
	mux := router.SetupRoutes(store, staleAfter, log)
	handler := httpx.RecoveryMiddleware(log)(httpx.LoggingMiddleware(log)(mux))
	httpServer := httpx.NewServer(cfg.Listen, handler, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := runner.Run(ctx, cfg.Interval); err != nil && err != context.Canceled {
			log.Error("forecast loop failed", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	}

	log.Info("shutting down")
	cancel()

	if err := httpServer.Stop(10 * time.Second); err != nil {
		log.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("shutdown complete")
}
