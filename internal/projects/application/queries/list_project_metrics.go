package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

// ListProjectMetricsQuery contains the parameters for listing project metrics.
type ListProjectMetricsQuery struct {
	Status string
	Now    time.Time
}

// ListProjectMetricsHandler handles the ListProjectMetricsQuery.
type ListProjectMetricsHandler struct {
	projectRepo domain.ProjectRepository
	taskRepo    domain.TaskRepository
	billingRepo domain.BillingMilestoneRepository
}

// NewListProjectMetricsHandler creates a new ListProjectMetricsHandler.
func NewListProjectMetricsHandler(
	projectRepo domain.ProjectRepository,
	taskRepo domain.TaskRepository,
	billingRepo domain.BillingMilestoneRepository,
) *ListProjectMetricsHandler {
	return &ListProjectMetricsHandler{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		billingRepo: billingRepo,
	}
}

// Handle executes the ListProjectMetricsQuery.
func (h *ListProjectMetricsHandler) Handle(ctx context.Context, query ListProjectMetricsQuery) ([]ProjectSummaryDTO, error) {
	now := query.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	projects, err := h.projectRepo.List(ctx, domain.ProjectFilter{Status: query.Status})
	if err != nil {
		return nil, err
	}

	summaries := make([]ProjectSummaryDTO, 0, len(projects))
	for _, project := range projects {
		tasks, err := h.taskRepo.ListByProject(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load tasks for project %d: %w", project.ID, err)
		}
		billing, err := h.billingRepo.ListByProject(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load billing milestones for project %d: %w", project.ID, err)
		}

		health := domain.ScoreHealth(*project, tasks, billing, now)
		summaries = append(summaries, ProjectSummaryDTO{
			ProjectID:     project.ID,
			ProjectNumber: project.ProjectNumber,
			Name:          project.Name,
			Status:        project.Status,
			Progress:      domain.CalculateProgress(tasks),
			Health:        health.Overall,
			Band:          health.Band,
			TaskCount:     len(tasks),
			ShipDate:      project.ShipDate,
		})
	}

	return summaries, nil
}
