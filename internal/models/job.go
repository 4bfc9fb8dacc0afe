package models

import "time"

// JobStatus is the lifecycle state of an async scrape job. Transitions are
// forward-only: pending -> running -> completed | failed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is one async scrape request tracked in the ephemeral registry.
type Job struct {
	ID             string     `json:"id"`
	Status         JobStatus  `json:"status"`
	TargetUsername string     `json:"target_username"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ErrorKind      string     `json:"error_kind,omitempty"`
	Error          string     `json:"error,omitempty"`
	Result         *JobResult `json:"result,omitempty"`
}

// JobResult summarizes a completed job without embedding the full scrape
// payload; clients fetch persisted data through the user endpoints.
type JobResult struct {
	ProfileUniqueID string `json:"profile_unique_id"`
	VideosScraped   int    `json:"videos_scraped"`
	DegradedMatch   bool   `json:"degraded_match"`
}

// IsTerminal reports whether the job has reached a final status.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Clone returns a deep copy so readers never share mutable state with the
// background flow that owns the job.
func (j *Job) Clone() *Job {
	c := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return &c
}
