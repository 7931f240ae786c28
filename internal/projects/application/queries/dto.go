package queries

import (
	"time"

	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// ProjectMetricsDTO is the full set of derived metrics for one project.
type ProjectMetricsDTO struct {
	ProjectID               int64                  `json:"projectId"`
	ProjectNumber           string                 `json:"projectNumber"`
	Name                    string                 `json:"name"`
	Status                  string                 `json:"status"`
	PercentComplete         float64                `json:"percentComplete"`
	StartDate               sharedDomain.DateValue `json:"startDate"`
	EstimatedCompletionDate sharedDomain.DateValue `json:"estimatedCompletionDate"`
	ShipDate                sharedDomain.DateValue `json:"shipDate"`
	Progress                int                    `json:"progress"`
	Health                  domain.HealthScore     `json:"health"`
	Allocations             AllocationView         `json:"allocations"`
	TaskCount               int                    `json:"taskCount"`
	CompletedTaskCount      int                    `json:"completedTaskCount"`
	MilestoneCount          int                    `json:"milestoneCount"`
	CompletedMilestoneCount int                    `json:"completedMilestoneCount"`
	Billing                 BillingTotalsDTO       `json:"billing"`
	SyncedAt                time.Time              `json:"syncedAt"`
	ComputedAt              time.Time              `json:"computedAt"`
}

// ProjectSummaryDTO is one row of the project metrics listing.
type ProjectSummaryDTO struct {
	ProjectID     int64                  `json:"projectId"`
	ProjectNumber string                 `json:"projectNumber"`
	Name          string                 `json:"name"`
	Status        string                 `json:"status"`
	Progress      int                    `json:"progress"`
	Health        int                    `json:"health"`
	Band          domain.HealthBand      `json:"band"`
	TaskCount     int                    `json:"taskCount"`
	ShipDate      sharedDomain.DateValue `json:"shipDate"`
}

// BillingTotalsDTO summarizes billing milestones.
type BillingTotalsDTO struct {
	Count       int     `json:"count"`
	PaidCount   int     `json:"paidCount"`
	TotalAmount float64 `json:"totalAmount"`
	PaidAmount  float64 `json:"paidAmount"`
}

// AllocationView is the department allocation state shown for a project:
// the raw percentages, the shown departments and the rescaled result.
type AllocationView struct {
	Raw           domain.Allocations `json:"raw"`
	Visibility    domain.Visibility  `json:"visibility"`
	Redistributed domain.Allocations `json:"redistributed"`
	Hidden        []string           `json:"hidden"`
}

// NewAllocationView redistributes raw under visibility.
func NewAllocationView(raw domain.Allocations, visibility domain.Visibility) AllocationView {
	hidden := make([]string, 0)
	for _, d := range visibility.Hidden() {
		hidden = append(hidden, d.String())
	}
	return AllocationView{
		Raw:           raw,
		Visibility:    visibility,
		Redistributed: domain.Redistribute(raw, visibility),
		Hidden:        hidden,
	}
}

func toBillingTotalsDTO(totals domain.BillingTotals) BillingTotalsDTO {
	return BillingTotalsDTO{
		Count:       totals.Count,
		PaidCount:   totals.PaidCount,
		TotalAmount: totals.TotalAmount,
		PaidAmount:  totals.PaidAmount,
	}
}
