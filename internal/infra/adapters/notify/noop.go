package notify

import (
	"context"

	"class-tutor-service/internal/domain/model"
	"class-tutor-service/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) JobFinished(ctx context.Context, snap model.JobSnapshot) error { return nil }
