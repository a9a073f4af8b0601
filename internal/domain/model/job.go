package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether s is a sink state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobSnapshot is the read-only view of a job handed to pollers.
// The registry copies it under its lock; mutating a snapshot has no
// effect on the job.
type JobSnapshot struct {
	JobID     string
	Status    JobStatus
	Progress  string
	Error     string
	Result    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasResult reports whether a completed artifact is attached.
func (s JobSnapshot) HasResult() bool {
	return s.Status == JobStatusCompleted && s.Result != ""
}

// JobParams carries everything the runner needs to drive one job.
type JobParams struct {
	JobID        string
	AudioPath    string
	Language     string
	Diarize      bool
	StudentLevel string
	StudentGoal  string
}
