package domain

import "context"

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	// Status matches case-insensitively; empty matches all.
	Status string
}

// ProjectRepository persists mirrored projects.
type ProjectRepository interface {
	Upsert(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	ListByIDs(ctx context.Context, ids []int64) (map[int64]*Project, error)
}

// TaskRepository persists mirrored tasks.
type TaskRepository interface {
	ReplaceForProject(ctx context.Context, projectID int64, tasks []Task) error
	ListByProject(ctx context.Context, projectID int64) ([]Task, error)
}

// MilestoneRepository persists mirrored milestones.
type MilestoneRepository interface {
	ReplaceForProject(ctx context.Context, projectID int64, milestones []Milestone) error
	ListByProject(ctx context.Context, projectID int64) ([]Milestone, error)
}

// BillingMilestoneRepository persists mirrored billing milestones.
type BillingMilestoneRepository interface {
	ReplaceForProject(ctx context.Context, projectID int64, milestones []BillingMilestone) error
	ListByProject(ctx context.Context, projectID int64) ([]BillingMilestone, error)
}
