package recordsync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSyncInterval is the default interval between sync cycles.
const DefaultSyncInterval = 5 * time.Minute

// Runner performs one full sync. Syncer implements it.
type Runner interface {
	SyncAll(ctx context.Context) (*Report, error)
}

// WorkerConfig configures the sync worker.
type WorkerConfig struct {
	Interval time.Duration
	// RunOnStart runs a cycle before the first tick.
	RunOnStart bool
}

// Worker runs a full sync on a fixed interval.
type Worker struct {
	runner  Runner
	config  WorkerConfig
	logger  *slog.Logger
	running atomic.Bool
	stopCh  chan struct{}
	stop    sync.Once

	mu     sync.RWMutex
	last   *Report
	lastAt time.Time
	cycles int
}

// NewWorker creates a sync worker.
func NewWorker(runner Runner, config WorkerConfig, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultSyncInterval
	}
	return &Worker{
		runner: runner,
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called.
func (w *Worker) Run(ctx context.Context) error {
	if w.runner == nil {
		w.logger.Warn("sync runner not configured, worker will not start")
		return nil
	}

	w.running.Store(true)
	defer w.running.Store(false)
	w.logger.Info("sync worker started", "interval", w.config.Interval, "run_on_start", w.config.RunOnStart)

	if w.config.RunOnStart {
		w.runCycle(ctx)
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sync worker stopped (context cancelled)")
			return ctx.Err()
		case <-w.stopCh:
			w.logger.Info("sync worker stopped (stop signal)")
			return nil
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// Stop signals the worker to stop. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stop.Do(func() { close(w.stopCh) })
}

// IsRunning reports whether Run is active.
func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

// LastReport returns the report of the most recent cycle and when it ended.
// The report is nil until a cycle has produced one.
func (w *Worker) LastReport() (*Report, time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last, w.lastAt
}

// Cycles returns the number of completed cycles.
func (w *Worker) Cycles() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cycles
}

func (w *Worker) runCycle(ctx context.Context) {
	w.logger.Debug("starting sync cycle")

	report, err := w.runner.SyncAll(ctx)

	w.mu.Lock()
	w.cycles++
	w.lastAt = time.Now()
	if report != nil {
		w.last = report
	}
	w.mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("sync cycle failed", "error", err)
		return
	}
	if report == nil {
		return
	}
	if report.Failed() {
		w.logger.Warn("sync cycle finished with failures",
			"synced", report.Synced,
			"failures", len(report.Failures),
		)
		return
	}
	w.logger.Debug("sync cycle completed", "synced", report.Synced, "schedules", report.Schedules)
}
