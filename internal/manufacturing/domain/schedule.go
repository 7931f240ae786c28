// Package domain holds manufacturing-bay schedules mirrored from upstream.
package domain

import (
	"time"

	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// Schedule places a project in a manufacturing bay for a date range.
type Schedule struct {
	ID        int64
	ProjectID int64
	BayID     int64
	BayName   string
	StartDate sharedDomain.DateValue
	EndDate   sharedDomain.DateValue
	Status    string
}

// Span returns the schedule's start and end when both are known dates.
func (s Schedule) Span() (start, end time.Time, ok bool) {
	start, okStart := s.StartDate.Time()
	end, okEnd := s.EndDate.Time()
	if !okStart || !okEnd {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// ActiveAt reports whether at falls inside the schedule's span, inclusive.
func (s Schedule) ActiveAt(at time.Time) bool {
	start, end, ok := s.Span()
	if !ok {
		return false
	}
	return !at.Before(start) && !at.After(end)
}

// ProjectIDs returns the distinct project IDs in schedules, in first-seen order.
func ProjectIDs(schedules []Schedule) []int64 {
	seen := make(map[int64]struct{}, len(schedules))
	ids := make([]int64, 0, len(schedules))
	for _, s := range schedules {
		if _, ok := seen[s.ProjectID]; ok {
			continue
		}
		seen[s.ProjectID] = struct{}{}
		ids = append(ids, s.ProjectID)
	}
	return ids
}
