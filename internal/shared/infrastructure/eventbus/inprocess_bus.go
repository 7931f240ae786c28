package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// BusStats counts what the in-process bus has delivered.
type BusStats struct {
	Delivered uint64 `json:"delivered"`
	Undecoded uint64 `json:"undecoded"`
	Failed    uint64 `json:"failed"`
}

// InProcessEventBus delivers sync events to local consumers when no broker
// is configured. It is a Publisher, so the outbox drains into it directly.
// Delivery is synchronous and serialized.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger

	mu    sync.Mutex
	stats BusStats
}

// NewInProcessEventBus creates a bus with an empty registry.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer binds consumer to its declared patterns.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes payload and hands it to the matching consumers. It never
// fails: a payload that does not decode, or a consumer error, is counted and
// logged so the outbox is not held back by a local reader.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	event, err := DecodeConsumedEvent(routingKey, payload)
	if err != nil {
		b.stats.Undecoded++
		b.logger.Error("failed to decode event payload", "routing_key", routingKey, "error", err)
		return nil
	}

	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.stats.Failed++
		b.logger.Error("event dispatch failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil
	}

	b.stats.Delivered++
	b.logger.Debug("event dispatched",
		"routing_key", event.RoutingKey,
		"aggregate_id", event.AggregateID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// PublishDomainEvent marshals event and publishes it under its routing key.
func (b *InProcessEventBus) PublishDomainEvent(ctx context.Context, event domain.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.Publish(ctx, event.RoutingKey(), payload)
}

// Stats returns the delivery counters.
func (b *InProcessEventBus) Stats() BusStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Registry returns the bus's consumer registry.
func (b *InProcessEventBus) Registry() *ConsumerRegistry {
	return b.registry
}

// Close implements Publisher. There is nothing to release.
func (b *InProcessEventBus) Close() error {
	return nil
}
