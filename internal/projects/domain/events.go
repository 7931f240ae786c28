package domain

import (
	"strconv"

	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

const (
	// AggregateType is the aggregate type of project events.
	AggregateType = "Project"

	// RoutingKeyProjectSynced is published after a project is mirrored.
	RoutingKeyProjectSynced = "project.synced"
)

// ProjectSynced is raised when a project and its child records have been
// replaced in the mirror.
type ProjectSynced struct {
	sharedDomain.BaseEvent
	ProjectID             int64  `json:"projectId"`
	ProjectNumber         string `json:"projectNumber"`
	Name                  string `json:"name"`
	Status                string `json:"status"`
	TaskCount             int    `json:"taskCount"`
	MilestoneCount        int    `json:"milestoneCount"`
	BillingMilestoneCount int    `json:"billingMilestoneCount"`
}

// NewProjectSynced creates a ProjectSynced event.
func NewProjectSynced(project *Project, tasks, milestones, billing int) *ProjectSynced {
	return &ProjectSynced{
		BaseEvent:             sharedDomain.NewBaseEvent(strconv.FormatInt(project.ID, 10), AggregateType, RoutingKeyProjectSynced),
		ProjectID:             project.ID,
		ProjectNumber:         project.ProjectNumber,
		Name:                  project.Name,
		Status:                project.Status,
		TaskCount:             tasks,
		MilestoneCount:        milestones,
		BillingMilestoneCount: billing,
	}
}
