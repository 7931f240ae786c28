package eventbus_test

import (
	"context"
	"sync"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/eventbus"
)

type mockConsumer struct {
	eventTypes []string
	err        error

	mu     sync.Mutex
	events []*eventbus.ConsumedEvent
}

func (m *mockConsumer) EventTypes() []string { return m.eventTypes }

func (m *mockConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockConsumer) received() []*eventbus.ConsumedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventbus.ConsumedEvent(nil), m.events...)
}
