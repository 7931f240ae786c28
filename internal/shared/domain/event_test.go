package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewBaseEvent("42", "Project", "project.synced")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "42", event.AggregateID())
	assert.Equal(t, "Project", event.AggregateType())
	assert.Equal(t, "project.synced", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := NewBaseEvent("1", "Project", "project.synced")
	meta := EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New()}

	event.SetMetadata(meta)

	assert.Equal(t, meta, event.Metadata())
}

func TestBaseEvent_JSONEnvelope(t *testing.T) {
	type projectEvent struct {
		BaseEvent
		Name string `json:"name"`
	}
	event := projectEvent{BaseEvent: NewBaseEvent("7", "Project", "project.synced"), Name: "Bus 7"}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "7", decoded["aggregate_id"])
	assert.Equal(t, "project.synced", decoded["routing_key"])
	assert.Equal(t, "Bus 7", decoded["name"])
	assert.NotEmpty(t, decoded["event_id"])
}
