package ai

import (
	"context"
	"fmt"

	"class-tutor-service/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter echoes a canned reply. Handy for dev mode and wiring tests
// when no provider key is configured.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter { return &NoopAIAdapter{} }

func (n *NoopAIAdapter) Generate(ctx context.Context, model, systemPrompt, userPrompt string) (string, adapter.Usage, error) {
	return fmt.Sprintf("[noop:%s] %d prompt bytes", model, len(systemPrompt)+len(userPrompt)), adapter.Usage{}, nil
}
