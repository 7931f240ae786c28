package domain

import "context"

// ScheduleFilter narrows a schedule listing. Zero values match all.
type ScheduleFilter struct {
	BayID     int64
	ProjectID int64
}

// ScheduleRepository persists mirrored manufacturing schedules.
type ScheduleRepository interface {
	// ReplaceAll swaps the whole mirrored schedule set.
	ReplaceAll(ctx context.Context, schedules []Schedule) error
	List(ctx context.Context, filter ScheduleFilter) ([]Schedule, error)
}
