// Package domain holds the mirrored project records and the pure derived
// metrics computed from them: progress, health and department allocation.
package domain

import (
	"time"

	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// Project is a project record mirrored from upstream.
type Project struct {
	ID                      int64
	ProjectNumber           string
	Name                    string
	Status                  string
	PercentComplete         float64
	StartDate               sharedDomain.DateValue
	EstimatedCompletionDate sharedDomain.DateValue
	ShipDate                sharedDomain.DateValue
	Allocations             Allocations
	Visibility              Visibility
	SyncedAt                time.Time
}

// RedistributedAllocations applies the project's own show-phase flags.
func (p *Project) RedistributedAllocations() Allocations {
	return Redistribute(p.Allocations, p.Visibility)
}
