package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/eventbus"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/resilience"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestBreakerPublisher_FailsFastWhenOpen(t *testing.T) {
	next := new(mockPublisher)
	brokerDown := errors.New("connection refused")
	next.On("Publish", mock.Anything, "project.synced", mock.Anything).Return(brokerDown).Times(2)

	cfg := resilience.DefaultBreakerConfig()
	cfg.FailureThreshold = 2
	publisher := eventbus.NewBreakerPublisher(next, resilience.NewBreaker[struct{}]("rabbitmq", cfg, nil, nil))

	ctx := context.Background()
	assert.ErrorIs(t, publisher.Publish(ctx, "project.synced", []byte(`{}`)), brokerDown)
	assert.ErrorIs(t, publisher.Publish(ctx, "project.synced", []byte(`{}`)), brokerDown)
	assert.ErrorIs(t, publisher.Publish(ctx, "project.synced", []byte(`{}`)), resilience.ErrCircuitOpen)

	next.AssertNumberOfCalls(t, "Publish", 2)
}

func TestBreakerPublisher_Close(t *testing.T) {
	next := new(mockPublisher)
	next.On("Close").Return(nil)

	publisher := eventbus.NewBreakerPublisher(next, nil)

	assert.NoError(t, publisher.Close())
	next.AssertExpectations(t)
}

func TestNoopPublisher(t *testing.T) {
	publisher := eventbus.NewNoopPublisher(nil)

	assert.NoError(t, publisher.Publish(context.Background(), "project.synced", []byte(`{}`)))
	assert.NoError(t, publisher.Close())
}
