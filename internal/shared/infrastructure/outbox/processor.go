package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/convert"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/eventbus"
	"github.com/MahlumInnovationsLLC/masterscheduler/pkg/observability"
)

// Delivery outcomes, also used as the metric result label.
const (
	outcomePublished = observability.ResultSuccess
	outcomeRetry     = observability.ResultError
	outcomeDead      = "dead"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxRetries is the number of attempts before a message is
	// dead-lettered. Zero dead-letters on the first failure.
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the default configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     time.Second,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Stats describes what the processor has delivered since it was created.
type Stats struct {
	IsRunning       bool              `json:"running"`
	PublishedCount  uint64            `json:"published"`
	FailedCount     uint64            `json:"failed"`
	DeadCount       uint64            `json:"dead"`
	PublishedByKey  map[string]uint64 `json:"publishedByKey,omitempty"`
	LagSeconds      float64           `json:"lagSeconds"`
	LastError       string            `json:"lastError,omitempty"`
	LastErrorAt     *time.Time        `json:"lastErrorAt,omitempty"`
	LastProcessedAt *time.Time        `json:"lastProcessedAt,omitempty"`
	OldestMessageAt *time.Time        `json:"oldestMessageAt,omitempty"`
}

// Processor drains sync events from the outbox into a publisher. A message
// that fails is retried with exponential backoff until MaxRetries, then
// dead-lettered.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   *observability.Metrics
	now       func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		now:       time.Now,
		stopChan:  make(chan struct{}),
		stats:     Stats{PublishedByKey: map[string]uint64{}},
	}
}

// WithMetrics records publish outcomes and the pending backlog on m.
func (p *Processor) WithMetrics(m *observability.Metrics) *Processor {
	p.metrics = m
	return p
}

// WithClock replaces the clock used for retry scheduling and lag.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	if now != nil {
		p.now = now
	}
	return p
}

// Start begins polling in a goroutine. Starting a running processor is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})

	p.wg.Add(1)
	go p.loop(ctx, p.stopChan)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"max_retries", p.config.MaxRetries,
	)
	return nil
}

// Stop waits for the polling loop to exit. Stopping an idle processor is a no-op.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether the polling loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) loop(ctx context.Context, stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if err := p.drain(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessOnce delivers a single batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	return p.drain(ctx)
}

func (p *Processor) drain(ctx context.Context) error {
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.observeError(err)
		return err
	}
	p.observeBatch(messages)

	for _, msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.deliver(ctx, msg)
	}

	if p.metrics != nil {
		if pending, err := p.repo.CountPending(ctx); err == nil {
			p.metrics.SetOutboxPending(pending)
		}
	}
	return nil
}

func (p *Processor) deliver(ctx context.Context, msg *Message) {
	err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
	if err == nil {
		if markErr := p.repo.MarkPublished(ctx, msg.ID); markErr != nil {
			p.logger.Error("failed to mark message as published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", markErr,
			)
			return
		}
		p.observe(outcomePublished, msg.RoutingKey, nil)
		return
	}

	correlationID := correlationOf(msg)
	p.logger.Warn("failed to publish sync event",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"aggregate_id", msg.AggregateID,
		"attempt", msg.RetryCount+1,
		"correlation_id", correlationID,
		"error", err,
	)

	if p.exhausted(msg) {
		p.observe(outcomeDead, msg.RoutingKey, err)
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.observe(outcomeRetry, msg.RoutingKey, err)
	nextRetryAt := p.now().Add(p.backoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), nextRetryAt); markErr != nil {
		p.logger.Error("failed to schedule message retry", "id", msg.ID, "error", markErr)
	}
}

func (p *Processor) exhausted(msg *Message) bool {
	return p.config.MaxRetries <= 0 || msg.RetryCount+1 >= p.config.MaxRetries
}

// backoff doubles from RetryBackoffBase per attempt, capped at RetryBackoffMax.
func (p *Processor) backoff(attempt int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	ceiling := p.config.RetryBackoffMax
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	if attempt < 1 {
		attempt = 1
	}

	d := base * time.Duration(convert.ShiftClamped(attempt-1, 30))
	if d <= 0 || d > ceiling {
		return ceiling
	}
	return d
}

func correlationOf(msg *Message) string {
	if len(msg.Metadata) == 0 {
		return ""
	}
	var metadata domain.EventMetadata
	if err := json.Unmarshal(msg.Metadata, &metadata); err != nil {
		return ""
	}
	return metadata.CorrelationID.String()
}

// PurgePublished deletes published messages older than retention.
func (p *Processor) PurgePublished(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := p.repo.DeleteOld(ctx, retention)
	if err != nil {
		p.observeError(err)
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("purged published outbox messages", "deleted", deleted, "retention", retention)
	}
	return deleted, nil
}

// GetStats returns a copy of the current statistics.
func (p *Processor) GetStats() Stats {
	running := p.IsRunning()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	stats := p.stats
	stats.IsRunning = running
	stats.PublishedByKey = make(map[string]uint64, len(p.stats.PublishedByKey))
	for k, v := range p.stats.PublishedByKey {
		stats.PublishedByKey[k] = v
	}
	return stats
}

func (p *Processor) observe(outcome, routingKey string, err error) {
	p.metrics.RecordOutboxMessage(outcome)

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	switch outcome {
	case outcomePublished:
		p.stats.PublishedCount++
		p.stats.PublishedByKey[routingKey]++
	case outcomeRetry:
		p.stats.FailedCount++
	case outcomeDead:
		p.stats.DeadCount++
	}
	if err != nil {
		p.setLastError(err)
	}
}

func (p *Processor) observeError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.setLastError(err)
}

// setLastError requires statsMu.
func (p *Processor) setLastError(err error) {
	now := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) observeBatch(messages []*Message) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	now := p.now()
	p.stats.LastProcessedAt = &now
	if len(messages) == 0 {
		p.stats.LagSeconds = 0
		p.stats.OldestMessageAt = nil
		return
	}

	oldest := messages[0].CreatedAt
	for _, msg := range messages[1:] {
		if msg.CreatedAt.Before(oldest) {
			oldest = msg.CreatedAt
		}
	}
	p.stats.OldestMessageAt = &oldest
	p.stats.LagSeconds = now.Sub(oldest).Seconds()
}
