package eventbus

import (
	"context"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/resilience"
)

// BreakerPublisher guards a Publisher with a circuit breaker so a down
// broker fails publishes fast and the outbox keeps the messages for retry.
type BreakerPublisher struct {
	next    Publisher
	breaker *resilience.Breaker[struct{}]
}

// NewBreakerPublisher wraps next.
func NewBreakerPublisher(next Publisher, breaker *resilience.Breaker[struct{}]) *BreakerPublisher {
	return &BreakerPublisher{next: next, breaker: breaker}
}

// Publish forwards to the wrapped publisher through the breaker.
func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, routingKey, payload)
	})
	return err
}

// Close closes the wrapped publisher.
func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
