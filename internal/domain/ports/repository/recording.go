package repository

import (
	"context"

	"class-tutor-service/internal/domain/model"
)

// RecordingRepository persists recording metadata and, once a job
// completes, its combined study guide. UpdateCombinedMarkdown is the
// durable result write; each job performs it exactly once.
type RecordingRepository interface {
	Insert(ctx context.Context, rec *model.Recording) error
	FindByJobID(ctx context.Context, jobID string) (*model.Recording, error)
	FindByID(ctx context.Context, id string) (*model.Recording, error)
	// List returns recordings newest-first without the artifact body.
	List(ctx context.Context, offset, limit int) ([]*model.Recording, error)
	Count(ctx context.Context) (int, error)
	UpdateCombinedMarkdown(ctx context.Context, jobID, combinedMD string) error
}
