package domain

import (
	"strings"

	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// BillingStatusPaid is the status upstream gives a paid billing milestone.
const BillingStatusPaid = "paid"

// BillingMilestone is an invoice milestone mirrored from upstream.
type BillingMilestone struct {
	ID                int64
	ProjectID         int64
	Name              string
	Status            string
	Amount            sharedDomain.Number
	TargetInvoiceDate sharedDomain.DateValue
}

// IsPaid matches the paid status case-insensitively.
func (m BillingMilestone) IsPaid() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), BillingStatusPaid)
}

// BillingTotals summarizes a project's billing milestones.
type BillingTotals struct {
	Count       int
	PaidCount   int
	TotalAmount float64
	PaidAmount  float64
}

// SumBilling totals the amounts and paid counts of milestones.
func SumBilling(milestones []BillingMilestone) BillingTotals {
	var totals BillingTotals
	for _, m := range milestones {
		totals.Count++
		totals.TotalAmount += m.Amount.Float64()
		if m.IsPaid() {
			totals.PaidCount++
			totals.PaidAmount += m.Amount.Float64()
		}
	}
	return totals
}
