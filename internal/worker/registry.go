package worker

import (
	"sync"
	"time"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
)

// Registry is the in-memory job table, the single source of truth for
// status polling. All mutation goes through one coarse mutex; updates are
// infrequent text-field writes, so contention is a non-issue. Entries live
// for the process lifetime; restart loses them.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*jobEntry
}

type jobEntry struct {
	status    model.JobStatus
	progress  string
	errMsg    string
	result    string
	createdAt time.Time
	updatedAt time.Time
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*jobEntry)}
}

// Create inserts a fresh pending entry. The job identifier must be unique;
// a collision is a programmer/ID-generation error and is rejected.
func (r *Registry) Create(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobID]; ok {
		return domain.ErrDuplicateJob
	}
	now := time.Now()
	r.jobs[jobID] = &jobEntry{
		status:    model.JobStatusPending,
		progress:  "queued",
		createdAt: now,
		updatedAt: now,
	}
	return nil
}

// Get returns a snapshot copy. The lock is held only for the copy, never
// across I/O.
func (r *Registry) Get(jobID string) (model.JobSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[jobID]
	if !ok {
		return model.JobSnapshot{}, domain.ErrNotFound
	}
	return e.snapshot(jobID), nil
}

// SetStatus moves a live job to the given non-terminal status. Only the
// owning runner calls this.
func (r *Registry) SetStatus(jobID string, status model.JobStatus, progress string) error {
	if status.Terminal() {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.status.Terminal() {
		return domain.ErrJobFinalized
	}
	e.status = status
	e.progress = progress
	e.updatedAt = time.Now()
	return nil
}

// SetProgress updates the human-readable phase marker, latest-wins.
func (r *Registry) SetProgress(jobID, progress string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.status.Terminal() {
		return domain.ErrJobFinalized
	}
	e.progress = progress
	e.updatedAt = time.Now()
	return nil
}

// Finalize transitions to a terminal state exactly once. A second call is
// a double-completion bug and fails loudly with ErrJobFinalized.
func (r *Registry) Finalize(jobID string, result string, jobErr error) (model.JobSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[jobID]
	if !ok {
		return model.JobSnapshot{}, domain.ErrNotFound
	}
	if e.status.Terminal() {
		return model.JobSnapshot{}, domain.ErrJobFinalized
	}
	if jobErr != nil {
		e.status = model.JobStatusFailed
		e.errMsg = jobErr.Error()
		e.result = ""
	} else {
		e.status = model.JobStatusCompleted
		e.progress = "processing complete"
		e.result = result
	}
	e.updatedAt = time.Now()
	return e.snapshot(jobID), nil
}

// CountByStatus tallies live entries for the admin stats endpoint.
func (r *Registry) CountByStatus() map[model.JobStatus]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[model.JobStatus]int, 4)
	for _, e := range r.jobs {
		out[e.status]++
	}
	return out
}

func (e *jobEntry) snapshot(jobID string) model.JobSnapshot {
	return model.JobSnapshot{
		JobID:     jobID,
		Status:    e.status,
		Progress:  e.progress,
		Error:     e.errMsg,
		Result:    e.result,
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}
