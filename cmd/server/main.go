package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/regdiff/internal/analyze"
	"github.com/dgallion1/regdiff/internal/api"
	"github.com/dgallion1/regdiff/internal/cache"
	"github.com/dgallion1/regdiff/internal/config"
	"github.com/dgallion1/regdiff/internal/metrics"
	"github.com/dgallion1/regdiff/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to load .env", "error", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheusRecorder(reg)

	// Text analysis is optional; without it the compare endpoints still work.
	var analyzer *analyze.Analyzer
	backend, err := analyze.NewBackend(cfg.Analysis())
	switch {
	case errors.Is(err, analyze.ErrDisabled):
		log.Info("text analysis disabled")
	case err != nil:
		log.Error("failed to create analysis backend", "error", err)
		os.Exit(1)
	default:
		analyzer = analyze.NewAnalyzer(backend, cfg.Analysis(), analyze.NewCallStats(time.Hour), rec, log)
		log.Info("text analysis enabled", "provider", cfg.AnalysisProvider, "model", analyzer.Model())
	}

	store := cache.New(cfg.CacheTTL, cfg.CacheMaxEntries)
	comparator := pipeline.NewComparator(store, analyzer, rec, log, cfg.SnippetChars)

	jobs := pipeline.NewJobStore(cfg.JobTTL)
	orch := pipeline.NewOrchestrator(comparator, jobs, cfg.WorkerCount, cfg.MaxQueueSize, rec, log)
	orch.Start(ctx)

	sweeper, err := pipeline.NewSweeper(store, jobs, cfg.CacheSweepInterval, log)
	if err != nil {
		log.Error("failed to create sweeper", "error", err)
		os.Exit(1)
	}
	sweeper.Start()

	srv := api.NewServer(comparator, orch, metrics.HTTPHandler(reg), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // synchronous analysis can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting regdiff", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}

	orch.Stop()
	if err := sweeper.Stop(); err != nil {
		log.Warn("sweeper shutdown", "error", err)
	}
	if c, ok := backend.(interface{ Close() }); ok {
		c.Close()
	}
}
