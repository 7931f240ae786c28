package domain

import (
	"math"
	"time"
)

// Weights of the health score components.
const (
	TaskWeight     = 0.4
	BillingWeight  = 0.3
	TimelineWeight = 0.3
)

// HealthBand is a coarse label for a health score.
type HealthBand string

const (
	BandExcellent HealthBand = "excellent"
	BandGood      HealthBand = "good"
	BandAtRisk    HealthBand = "at_risk"
	BandCritical  HealthBand = "critical"
)

// BandFor returns the band an overall score falls in.
func BandFor(score int) HealthBand {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 70:
		return BandGood
	case score >= 50:
		return BandAtRisk
	default:
		return BandCritical
	}
}

// Trend is the change in health since an earlier reading. No history is
// kept, so Computed is always false and Delta is zero; callers must not
// present it as a real comparison.
type Trend struct {
	Computed bool `json:"computed"`
	Delta    int  `json:"delta"`
}

// HealthScore is the result of ScoreHealth.
type HealthScore struct {
	Overall          int        `json:"overall"`
	Band             HealthBand `json:"band"`
	TaskScore        float64    `json:"taskScore"`
	BillingScore     float64    `json:"billingScore"`
	ExpectedProgress float64    `json:"expectedProgress"`
	TimelineScore    float64    `json:"timelineScore"`
	Trend            Trend      `json:"trend"`
}

// ScoreHealth blends task completion, billing completion and timeline
// adherence into a 0-100 score as of now.
func ScoreHealth(project Project, tasks []Task, billing []BillingMilestone, now time.Time) HealthScore {
	taskScore := ratio(CountCompleted(tasks), len(tasks))

	totals := SumBilling(billing)
	billingScore := ratio(totals.PaidCount, totals.Count)

	expected := ExpectedProgress(project, now)
	timelineScore := 100 - math.Abs(clampPercent(project.PercentComplete)-expected)

	overall := TaskWeight*taskScore + BillingWeight*billingScore + TimelineWeight*timelineScore
	score := clampPercentInt(int(math.Round(overall)))

	return HealthScore{
		Overall:          score,
		Band:             BandFor(score),
		TaskScore:        taskScore,
		BillingScore:     billingScore,
		ExpectedProgress: expected,
		TimelineScore:    timelineScore,
		Trend:            Trend{},
	}
}

// ExpectedProgress is how far along the project should be at now, clamped
// to [0,100]. A zero-length timeline, or one whose start or estimated
// completion date is not a known date, expects 100.
func ExpectedProgress(project Project, now time.Time) float64 {
	start, okStart := project.StartDate.Time()
	end, okEnd := project.EstimatedCompletionDate.Time()
	if !okStart || !okEnd {
		return 100
	}

	duration := end.Sub(start)
	if duration == 0 {
		return 100
	}
	return clampPercent(100 * float64(now.Sub(start)) / float64(duration))
}
