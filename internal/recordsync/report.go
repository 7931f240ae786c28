package recordsync

import "time"

// Failure scopes.
const (
	ScopeProject   = "project"
	ScopeSchedules = "schedules"
)

// Failure is one step of a sync that did not complete.
type Failure struct {
	Scope     string `json:"scope"`
	ProjectID int64  `json:"projectId,omitempty"`
	Err       error  `json:"-"`
	Message   string `json:"error"`
}

// Report summarizes a sync run.
type Report struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Synced     int       `json:"synced"`
	Schedules  int       `json:"schedules"`
	Failures   []Failure `json:"failures"`
}

func newReport(startedAt time.Time) *Report {
	return &Report{StartedAt: startedAt, Failures: []Failure{}}
}

func (r *Report) addFailure(scope string, projectID int64, err error) {
	r.Failures = append(r.Failures, Failure{
		Scope:     scope,
		ProjectID: projectID,
		Err:       err,
		Message:   err.Error(),
	})
}

// Failed returns true if any step failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}
