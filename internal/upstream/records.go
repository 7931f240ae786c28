package upstream

import (
	mfgDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/manufacturing/domain"
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// projectRecord is the upstream JSON shape of a project. Show flags are
// pointers because an absent flag means shown.
type projectRecord struct {
	ID                      int64                  `json:"id"`
	ProjectNumber           string                 `json:"projectNumber"`
	Name                    string                 `json:"name"`
	Status                  string                 `json:"status"`
	PercentComplete         sharedDomain.Number    `json:"percentComplete"`
	StartDate               sharedDomain.DateValue `json:"startDate"`
	EstimatedCompletionDate sharedDomain.DateValue `json:"estimatedCompletionDate"`
	ShipDate                sharedDomain.DateValue `json:"shipDate"`
	FabricationPercent      sharedDomain.Number    `json:"fabricationPercent"`
	PaintPercent            sharedDomain.Number    `json:"paintPercent"`
	AssemblyPercent         sharedDomain.Number    `json:"assemblyPercent"`
	ITPercent               sharedDomain.Number    `json:"itPercent"`
	NTCTestingPercent       sharedDomain.Number    `json:"ntcTestingPercent"`
	QCPercent               sharedDomain.Number    `json:"qcPercent"`
	ShowFabPhase            *bool                  `json:"showFabPhase"`
	ShowPaintPhase          *bool                  `json:"showPaintPhase"`
	ShowProductionPhase     *bool                  `json:"showProductionPhase"`
	ShowITPhase             *bool                  `json:"showItPhase"`
	ShowNTCPhase            *bool                  `json:"showNtcPhase"`
	ShowQCPhase             *bool                  `json:"showQcPhase"`
}

func (r projectRecord) toDomain() *domain.Project {
	var allocations domain.Allocations
	allocations.Set(domain.Fabrication, r.FabricationPercent.Float64())
	allocations.Set(domain.Paint, r.PaintPercent.Float64())
	allocations.Set(domain.Assembly, r.AssemblyPercent.Float64())
	allocations.Set(domain.IT, r.ITPercent.Float64())
	allocations.Set(domain.NTCTesting, r.NTCTestingPercent.Float64())
	allocations.Set(domain.QC, r.QCPercent.Float64())

	flags := map[domain.Department]*bool{
		domain.Fabrication: r.ShowFabPhase,
		domain.Paint:       r.ShowPaintPhase,
		domain.Assembly:    r.ShowProductionPhase,
		domain.IT:          r.ShowITPhase,
		domain.NTCTesting:  r.ShowNTCPhase,
		domain.QC:          r.ShowQCPhase,
	}
	visibility := domain.AllVisible()
	for d, shown := range flags {
		if shown != nil && !*shown {
			visibility = visibility.Hide(d)
		}
	}

	return &domain.Project{
		ID:                      r.ID,
		ProjectNumber:           r.ProjectNumber,
		Name:                    r.Name,
		Status:                  r.Status,
		PercentComplete:         r.PercentComplete.Float64(),
		StartDate:               r.StartDate,
		EstimatedCompletionDate: r.EstimatedCompletionDate,
		ShipDate:                r.ShipDate,
		Allocations:             allocations,
		Visibility:              visibility,
	}
}

type taskRecord struct {
	ID          int64                  `json:"id"`
	ProjectID   int64                  `json:"projectId"`
	MilestoneID *int64                 `json:"milestoneId"`
	Name        string                 `json:"name"`
	IsCompleted bool                   `json:"isCompleted"`
	DueDate     sharedDomain.DateValue `json:"dueDate"`
}

func (r taskRecord) toDomain(projectID int64) domain.Task {
	return domain.Task{
		ID:          r.ID,
		ProjectID:   orDefault(r.ProjectID, projectID),
		MilestoneID: r.MilestoneID,
		Name:        r.Name,
		IsCompleted: r.IsCompleted,
		DueDate:     r.DueDate,
	}
}

type milestoneRecord struct {
	ID          int64                  `json:"id"`
	ProjectID   int64                  `json:"projectId"`
	Name        string                 `json:"name"`
	DueDate     sharedDomain.DateValue `json:"dueDate"`
	IsCompleted bool                   `json:"isCompleted"`
}

func (r milestoneRecord) toDomain(projectID int64) domain.Milestone {
	return domain.Milestone{
		ID:          r.ID,
		ProjectID:   orDefault(r.ProjectID, projectID),
		Name:        r.Name,
		DueDate:     r.DueDate,
		IsCompleted: r.IsCompleted,
	}
}

type billingMilestoneRecord struct {
	ID                int64                  `json:"id"`
	ProjectID         int64                  `json:"projectId"`
	Name              string                 `json:"name"`
	Status            string                 `json:"status"`
	Amount            sharedDomain.Number    `json:"amount"`
	TargetInvoiceDate sharedDomain.DateValue `json:"targetInvoiceDate"`
}

func (r billingMilestoneRecord) toDomain(projectID int64) domain.BillingMilestone {
	return domain.BillingMilestone{
		ID:                r.ID,
		ProjectID:         orDefault(r.ProjectID, projectID),
		Name:              r.Name,
		Status:            r.Status,
		Amount:            r.Amount,
		TargetInvoiceDate: r.TargetInvoiceDate,
	}
}

type scheduleRecord struct {
	ID        int64                  `json:"id"`
	ProjectID int64                  `json:"projectId"`
	BayID     int64                  `json:"bayId"`
	BayName   string                 `json:"bayName"`
	StartDate sharedDomain.DateValue `json:"startDate"`
	EndDate   sharedDomain.DateValue `json:"endDate"`
	Status    string                 `json:"status"`
}

func (r scheduleRecord) toDomain() mfgDomain.Schedule {
	return mfgDomain.Schedule{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		BayID:     r.BayID,
		BayName:   r.BayName,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Status:    r.Status,
	}
}

func orDefault(v, fallback int64) int64 {
	if v == 0 {
		return fallback
	}
	return v
}
