package queries

import (
	"context"
	"fmt"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	projectQueries "github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/application/queries"
	projectDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// ScheduleAllocationDTO is a bay schedule with its project's allocations.
// Project fields are empty when the project is not in the mirror.
type ScheduleAllocationDTO struct {
	ScheduleID    int64                          `json:"scheduleId"`
	BayID         int64                          `json:"bayId"`
	BayName       string                         `json:"bayName"`
	StartDate     sharedDomain.DateValue         `json:"startDate"`
	EndDate       sharedDomain.DateValue         `json:"endDate"`
	Status        string                         `json:"status"`
	ProjectID     int64                          `json:"projectId"`
	ProjectNumber string                         `json:"projectNumber,omitempty"`
	ProjectName   string                         `json:"projectName,omitempty"`
	Allocations   *projectQueries.AllocationView `json:"allocations,omitempty"`
}

// ListScheduleAllocationsQuery filters the schedule view by bay. Zero means
// every bay.
type ListScheduleAllocationsQuery struct {
	BayID int64
}

// ListScheduleAllocationsHandler handles the ListScheduleAllocationsQuery.
type ListScheduleAllocationsHandler struct {
	scheduleRepo domain.ScheduleRepository
	projectRepo  projectDomain.ProjectRepository
}

// NewListScheduleAllocationsHandler creates a new ListScheduleAllocationsHandler.
func NewListScheduleAllocationsHandler(
	scheduleRepo domain.ScheduleRepository,
	projectRepo projectDomain.ProjectRepository,
) *ListScheduleAllocationsHandler {
	return &ListScheduleAllocationsHandler{
		scheduleRepo: scheduleRepo,
		projectRepo:  projectRepo,
	}
}

// Handle executes the ListScheduleAllocationsQuery.
func (h *ListScheduleAllocationsHandler) Handle(ctx context.Context, query ListScheduleAllocationsQuery) ([]ScheduleAllocationDTO, error) {
	schedules, err := h.scheduleRepo.List(ctx, domain.ScheduleFilter{BayID: query.BayID})
	if err != nil {
		return nil, err
	}

	projects, err := h.projectRepo.ListByIDs(ctx, domain.ProjectIDs(schedules))
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled projects: %w", err)
	}

	result := make([]ScheduleAllocationDTO, 0, len(schedules))
	for _, s := range schedules {
		dto := ScheduleAllocationDTO{
			ScheduleID: s.ID,
			BayID:      s.BayID,
			BayName:    s.BayName,
			StartDate:  s.StartDate,
			EndDate:    s.EndDate,
			Status:     s.Status,
			ProjectID:  s.ProjectID,
		}
		if project, ok := projects[s.ProjectID]; ok {
			view := projectQueries.NewAllocationView(project.Allocations, project.Visibility)
			dto.ProjectNumber = project.ProjectNumber
			dto.ProjectName = project.Name
			dto.Allocations = &view
		}
		result = append(result, dto)
	}

	return result, nil
}
