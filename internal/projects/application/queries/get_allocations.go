package queries

import (
	"context"
	"fmt"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
)

// GetAllocationsQuery asks for a project's allocations with optional
// visibility overrides applied on top of the project's show-phase flags.
// Show wins over Hide for a department named in both.
type GetAllocationsQuery struct {
	ProjectID int64
	Hide      []domain.Department
	Show      []domain.Department
}

// GetAllocationsHandler handles the GetAllocationsQuery.
type GetAllocationsHandler struct {
	projectRepo domain.ProjectRepository
}

// NewGetAllocationsHandler creates a new GetAllocationsHandler.
func NewGetAllocationsHandler(projectRepo domain.ProjectRepository) *GetAllocationsHandler {
	return &GetAllocationsHandler{projectRepo: projectRepo}
}

// Handle executes the GetAllocationsQuery.
func (h *GetAllocationsHandler) Handle(ctx context.Context, query GetAllocationsQuery) (*AllocationView, error) {
	if query.ProjectID <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidProjectID, query.ProjectID)
	}

	project, err := h.projectRepo.FindByID(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}

	visibility := project.Visibility.Hide(query.Hide...).Show(query.Show...)
	view := NewAllocationView(project.Allocations, visibility)
	return &view, nil
}

// RedistributeAllocationsQuery carries raw allocations and visibility flags.
type RedistributeAllocationsQuery struct {
	Raw        domain.Allocations
	Visibility domain.Visibility
}

// RedistributeAllocationsHandler computes an AllocationView without any
// stored records.
type RedistributeAllocationsHandler struct{}

// NewRedistributeAllocationsHandler creates a new RedistributeAllocationsHandler.
func NewRedistributeAllocationsHandler() *RedistributeAllocationsHandler {
	return &RedistributeAllocationsHandler{}
}

// Handle executes the RedistributeAllocationsQuery.
func (h *RedistributeAllocationsHandler) Handle(_ context.Context, query RedistributeAllocationsQuery) AllocationView {
	return NewAllocationView(query.Raw, query.Visibility)
}
