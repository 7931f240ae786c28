package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

// GetProjectMetricsQuery contains the parameters for computing one project's
// metrics. A zero Now means the current time.
type GetProjectMetricsQuery struct {
	ProjectID int64
	Now       time.Time
}

// GetProjectMetricsHandler handles the GetProjectMetricsQuery.
type GetProjectMetricsHandler struct {
	projectRepo   domain.ProjectRepository
	taskRepo      domain.TaskRepository
	milestoneRepo domain.MilestoneRepository
	billingRepo   domain.BillingMilestoneRepository
}

// NewGetProjectMetricsHandler creates a new GetProjectMetricsHandler.
func NewGetProjectMetricsHandler(
	projectRepo domain.ProjectRepository,
	taskRepo domain.TaskRepository,
	milestoneRepo domain.MilestoneRepository,
	billingRepo domain.BillingMilestoneRepository,
) *GetProjectMetricsHandler {
	return &GetProjectMetricsHandler{
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		milestoneRepo: milestoneRepo,
		billingRepo:   billingRepo,
	}
}

// Handle executes the GetProjectMetricsQuery.
func (h *GetProjectMetricsHandler) Handle(ctx context.Context, query GetProjectMetricsQuery) (*ProjectMetricsDTO, error) {
	if query.ProjectID <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidProjectID, query.ProjectID)
	}
	now := query.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	project, err := h.projectRepo.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}

	tasks, err := h.taskRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	milestones, err := h.milestoneRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}

	billing, err := h.billingRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load billing milestones: %w", err)
	}

	completedMilestones := 0
	for _, m := range milestones {
		if m.IsCompleted {
			completedMilestones++
		}
	}

	return &ProjectMetricsDTO{
		ProjectID:               project.ID,
		ProjectNumber:           project.ProjectNumber,
		Name:                    project.Name,
		Status:                  project.Status,
		PercentComplete:         project.PercentComplete,
		StartDate:               project.StartDate,
		EstimatedCompletionDate: project.EstimatedCompletionDate,
		ShipDate:                project.ShipDate,
		Progress:                domain.CalculateProgress(tasks),
		Health:                  domain.ScoreHealth(*project, tasks, billing, now),
		Allocations:             NewAllocationView(project.Allocations, project.Visibility),
		TaskCount:               len(tasks),
		CompletedTaskCount:      domain.CountCompleted(tasks),
		MilestoneCount:          len(milestones),
		CompletedMilestoneCount: completedMilestones,
		Billing:                 toBillingTotalsDTO(domain.SumBilling(billing)),
		SyncedAt:                project.SyncedAt,
		ComputedAt:              now,
	}, nil
}
