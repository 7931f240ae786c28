package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/eventbus"
)

type projectSynced struct {
	domain.BaseEvent
	ProjectNumber string `json:"projectNumber"`
}

func newProjectSynced(id string) projectSynced {
	return projectSynced{
		BaseEvent:     domain.NewBaseEvent(id, "Project", "project.synced"),
		ProjectNumber: "MI-" + id,
	}
}

func TestInProcessEventBus_PublishDomainEvent(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	consumer := &mockConsumer{eventTypes: []string{"project.synced"}}
	bus.RegisterConsumer(consumer)

	event := newProjectSynced("42")
	require.NoError(t, bus.PublishDomainEvent(context.Background(), event))

	got := consumer.received()
	require.Len(t, got, 1)
	assert.Equal(t, event.EventID(), got[0].EventID)
	assert.Equal(t, "42", got[0].AggregateID)
	assert.Equal(t, "Project", got[0].AggregateType)

	var body projectSynced
	require.NoError(t, json.Unmarshal(got[0].Payload, &body))
	assert.Equal(t, "MI-42", body.ProjectNumber)
}

func TestInProcessEventBus_RoutingKeyFallback(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	consumer := &mockConsumer{eventTypes: []string{"schedules.synced"}}
	bus.RegisterConsumer(consumer)

	err := bus.Publish(context.Background(), "schedules.synced", []byte(`{"aggregate_id":"all"}`))
	require.NoError(t, err)

	got := consumer.received()
	require.Len(t, got, 1)
	assert.Equal(t, "schedules.synced", got[0].RoutingKey)
}

func TestInProcessEventBus_MultipleConsumers(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	first := &mockConsumer{eventTypes: []string{"project.synced"}}
	second := &mockConsumer{eventTypes: []string{"project.synced", "schedules.synced"}}
	bus.RegisterConsumer(first)
	bus.RegisterConsumer(second)

	require.NoError(t, bus.PublishDomainEvent(context.Background(), newProjectSynced("1")))

	assert.Len(t, first.received(), 1)
	assert.Len(t, second.received(), 1)
	assert.Equal(t, 3, bus.Registry().ConsumerCount())
}

func TestInProcessEventBus_ConsumerErrorIsNotReturned(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	consumer := &mockConsumer{eventTypes: []string{"project.synced"}, err: errors.New("tracker down")}
	bus.RegisterConsumer(consumer)

	require.NoError(t, bus.PublishDomainEvent(context.Background(), newProjectSynced("1")))
	assert.Len(t, consumer.received(), 1)
	assert.Equal(t, eventbus.BusStats{Failed: 1}, bus.Stats())
}

func TestInProcessEventBus_InvalidPayload(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	consumer := &mockConsumer{eventTypes: []string{"project.synced"}}
	bus.RegisterConsumer(consumer)

	require.NoError(t, bus.Publish(context.Background(), "project.synced", []byte("not json")))
	assert.Empty(t, consumer.received())
	assert.Equal(t, eventbus.BusStats{Undecoded: 1}, bus.Stats())
}

func TestInProcessEventBus_NoConsumers(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)

	require.NoError(t, bus.PublishDomainEvent(context.Background(), newProjectSynced("1")))
	require.NoError(t, bus.Close())
}

func TestInProcessEventBus_CountsDeliveries(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	bus.RegisterConsumer(&mockConsumer{eventTypes: []string{"*.synced"}})

	require.NoError(t, bus.PublishDomainEvent(context.Background(), newProjectSynced("1")))
	require.NoError(t, bus.PublishDomainEvent(context.Background(), newProjectSynced("2")))

	assert.Equal(t, uint64(2), bus.Stats().Delivered)
}
