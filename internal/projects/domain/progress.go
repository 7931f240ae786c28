package domain

import "math"

// CalculateProgress returns the rounded percentage of completed tasks, or 0
// for no tasks.
func CalculateProgress(tasks []Task) int {
	return percentOf(CountCompleted(tasks), len(tasks))
}

func percentOf(part, total int) int {
	if total <= 0 {
		return 0
	}
	return clampPercentInt(int(math.Round(ratio(part, total))))
}

// ratio returns 100*part/total, or 0 for an empty total.
func ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func clampPercentInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
