package domain

import sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"

// Milestone is a schedule milestone mirrored from upstream.
type Milestone struct {
	ID          int64
	ProjectID   int64
	Name        string
	DueDate     sharedDomain.DateValue
	IsCompleted bool
}
