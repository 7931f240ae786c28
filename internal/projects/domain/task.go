package domain

import sharedDomain "github.com/MahlumInnovationsLLC/masterscheduler/internal/shared/domain"

// Task is a task record mirrored from upstream. MilestoneID is nil for tasks
// attached directly to the project.
type Task struct {
	ID          int64
	ProjectID   int64
	MilestoneID *int64
	Name        string
	IsCompleted bool
	DueDate     sharedDomain.DateValue
}

// CountCompleted returns the number of completed tasks.
func CountCompleted(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.IsCompleted {
			n++
		}
	}
	return n
}
