package cli

import (
	"github.com/MahlumInnovationsLLC/masterscheduler/internal/projects/domain"
	sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"
)

// FormatDate renders a date cell for terminal output.
func FormatDate(d sharedDomain.DateValue) string {
	if t, ok := d.Time(); ok {
		return t.Format("2006-01-02")
	}
	if s := d.String(); s != "" {
		return s
	}
	return "-"
}

// BandIcon returns the marker shown next to a health band.
func BandIcon(band domain.HealthBand) string {
	switch band {
	case domain.BandExcellent:
		return "🟢"
	case domain.BandGood:
		return "🟡"
	case domain.BandAtRisk:
		return "🟠"
	default:
		return "🔴"
	}
}
