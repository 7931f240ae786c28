package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillingMilestone_IsPaid(t *testing.T) {
	assert.True(t, BillingMilestone{Status: "paid"}.IsPaid())
	assert.True(t, BillingMilestone{Status: "Paid"}.IsPaid())
	assert.False(t, BillingMilestone{Status: "invoiced"}.IsPaid())
	assert.False(t, BillingMilestone{}.IsPaid())
}

func TestSumBilling(t *testing.T) {
	totals := SumBilling([]BillingMilestone{
		{Status: "paid", Amount: 1250.5},
		{Status: "pending", Amount: 749.5},
		{Status: "PAID", Amount: 500},
	})

	assert.Equal(t, 3, totals.Count)
	assert.Equal(t, 2, totals.PaidCount)
	assert.Equal(t, 2500.0, totals.TotalAmount)
	assert.Equal(t, 1750.5, totals.PaidAmount)

	assert.Equal(t, BillingTotals{}, SumBilling(nil))
}
