package domain

import (
	"sort"

	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

const (
	// AggregateType is the aggregate type of schedule events.
	AggregateType = "ManufacturingSchedule"

	// AggregateID identifies the single schedule set.
	AggregateID = "manufacturing-schedules"

	// RoutingKeySchedulesSynced is published after the schedules are mirrored.
	RoutingKeySchedulesSynced = "schedules.synced"
)

// SchedulesSynced is raised when the schedule set has been replaced.
type SchedulesSynced struct {
	sharedDomain.BaseEvent
	ScheduleCount int     `json:"scheduleCount"`
	BayIDs        []int64 `json:"bayIds"`
}

// NewSchedulesSynced creates a SchedulesSynced event for schedules.
func NewSchedulesSynced(schedules []Schedule) *SchedulesSynced {
	bays := make(map[int64]struct{})
	for _, s := range schedules {
		bays[s.BayID] = struct{}{}
	}
	bayIDs := make([]int64, 0, len(bays))
	for id := range bays {
		bayIDs = append(bayIDs, id)
	}
	sort.Slice(bayIDs, func(i, j int) bool { return bayIDs[i] < bayIDs[j] })

	return &SchedulesSynced{
		BaseEvent:     sharedDomain.NewBaseEvent(AggregateID, AggregateType, RoutingKeySchedulesSynced),
		ScheduleCount: len(schedules),
		BayIDs:        bayIDs,
	}
}
