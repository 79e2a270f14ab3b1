package model

import "time"

// JobStatus is the observable state of a fire-and-forget scrape run.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ScrapeJob is the task handle for one pipeline run. The trigger surface
// acknowledges immediately and exposes this record for status polling; the
// run itself reports progress through logging.
type ScrapeJob struct {
	ID         string         `json:"id"`
	Status     JobStatus      `json:"status"`
	Counts     map[string]int `json:"counts,omitempty"` // new leads per source
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// TotalNew sums the per-source new-lead counts.
func (j *ScrapeJob) TotalNew() int {
	total := 0
	for _, n := range j.Counts {
		total += n
	}
	return total
}
