package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MahlumInnovationsLLC/masterscheduler/adapter/cli"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/app"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/recordsync"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/outbox"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/config"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.ParseLogLevel(cfg.LogLevel)
	if cfg.LogFormat != "" {
		logCfg.Format = observability.ParseLogFormat(cfg.LogFormat)
	}
	logCfg.ServiceVersion = cli.Version
	logCfg.Component = "worker"
	logger = observability.NewLogger(logCfg)

	logger.Info("starting masterscheduler worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.StartEvents(ctx); err != nil {
		logger.Error("failed to start event delivery", "error", err)
		os.Exit(1)
	}

	syncWorker := container.NewSyncWorker()
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		if err := syncWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("sync worker stopped", "error", err)
		}
	}()

	processor := container.OutboxProcessor
	go every(ctx, cfg.OutboxCleanupInterval, func() {
		deleted, err := processor.PurgePublished(ctx, cfg.OutboxRetention())
		if err != nil {
			logger.Error("outbox cleanup failed", "error", err)
			return
		}
		if deleted > 0 {
			logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", cfg.OutboxRetentionDays)
		}
	})

	go every(ctx, cfg.OutboxStatsInterval, func() {
		stats := processor.GetStats()
		logger.Info("outbox stats",
			"running", stats.IsRunning,
			"published", stats.PublishedCount,
			"failed", stats.FailedCount,
			"dead", stats.DeadCount,
			"lag_seconds", stats.LagSeconds,
			"oldest_message_at", stats.OldestMessageAt,
			"last_processed_at", stats.LastProcessedAt,
			"last_error_at", stats.LastErrorAt,
			"last_error", stats.LastError,
		)
	})

	if cfg.WorkerHealthAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/healthz", healthzHandler(processor, syncWorker))
		mux.Handle("/readyz", container.Health.ReadinessHandler())
		mux.Handle("/metrics", container.Metrics.Handler())

		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down worker")

	syncWorker.Stop()
	<-syncDone
	processor.Stop()
	logger.Info("worker stopped")

	fmt.Println("Goodbye!")
}

// every calls fn on each tick of interval until ctx is done.
// A non-positive interval disables the loop.
func every(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

type syncHealth struct {
	Running    bool       `json:"running"`
	Cycles     int        `json:"cycles"`
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
	Synced     int        `json:"synced"`
	Failures   int        `json:"failures"`
}

type workerHealth struct {
	Status string       `json:"status"`
	Outbox outbox.Stats `json:"outbox"`
	Sync   syncHealth   `json:"sync"`
}

func healthzHandler(processor *outbox.Processor, syncWorker *recordsync.Worker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := workerHealth{
			Status: "ok",
			Outbox: processor.GetStats(),
			Sync: syncHealth{
				Running: syncWorker.IsRunning(),
				Cycles:  syncWorker.Cycles(),
			},
		}
		if report, at := syncWorker.LastReport(); report != nil {
			resp.Sync.LastSyncAt = &at
			resp.Sync.Synced = report.Synced
			resp.Sync.Failures = len(report.Failures)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}
