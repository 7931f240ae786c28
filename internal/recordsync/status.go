package recordsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mfgDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/infrastructure/eventbus"
)

// Status is what the tracker has observed from sync events.
type Status struct {
	ProjectsSynced    int        `json:"projectsSynced"`
	LastProjectID     int64      `json:"lastProjectId,omitempty"`
	LastProjectAt     *time.Time `json:"lastProjectSyncedAt,omitempty"`
	ScheduleCount     int        `json:"scheduleCount"`
	LastSchedulesAt   *time.Time `json:"lastSchedulesSyncedAt,omitempty"`
	LastCorrelationID string     `json:"lastCorrelationId,omitempty"`
}

// StatusTracker consumes sync events and keeps a running status.
type StatusTracker struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusTracker creates an empty tracker.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{}
}

// EventTypes implements eventbus.EventConsumer.
func (t *StatusTracker) EventTypes() []string {
	return []string{domain.RoutingKeyProjectSynced, mfgDomain.RoutingKeySchedulesSynced}
}

// Handle implements eventbus.EventConsumer.
func (t *StatusTracker) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	occurred := event.OccurredAt.UTC()

	switch event.RoutingKey {
	case domain.RoutingKeyProjectSynced:
		var payload struct {
			ProjectID int64 `json:"projectId"`
		}
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode %s: %w", event.RoutingKey, err)
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		t.status.ProjectsSynced++
		t.status.LastProjectID = payload.ProjectID
		t.status.LastProjectAt = &occurred
	case mfgDomain.RoutingKeySchedulesSynced:
		var payload struct {
			ScheduleCount int `json:"scheduleCount"`
		}
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode %s: %w", event.RoutingKey, err)
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		t.status.ScheduleCount = payload.ScheduleCount
		t.status.LastSchedulesAt = &occurred
	default:
		return nil
	}

	t.status.LastCorrelationID = event.Metadata.CorrelationID.String()
	return nil
}

// Snapshot returns a copy of the current status.
func (t *StatusTracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

var _ eventbus.EventConsumer = (*StatusTracker)(nil)
