package adapter

import (
	"context"

	"class-tutor-service/internal/domain/model"
)

// Notifier is told when a job reaches a terminal state. Failures are the
// notifier's problem; the runner logs and moves on.
type Notifier interface {
	JobFinished(ctx context.Context, snap model.JobSnapshot) error
}
