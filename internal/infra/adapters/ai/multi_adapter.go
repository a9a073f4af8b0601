// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"fmt"
	"strings"

	"class-tutor-service/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*MultiAIAdapter)(nil)

// MultiAIAdapter routes each generation call to the provider configured
// for its model. The pipeline configures one (model, provider) pair per
// stage; the wiring feeds that mapping in here.
type MultiAIAdapter struct {
	defaultProvider string
	byProvider      map[string]adapter.AIServiceAdapter
	modelToProvider map[string]string
}

func NewMultiAIAdapter(
	defaultProvider string,
	byProvider map[string]adapter.AIServiceAdapter,
	modelToProvider map[string]string,
) *MultiAIAdapter {
	norm := make(map[string]string, len(modelToProvider))
	for m, p := range modelToProvider {
		norm[strings.ToLower(m)] = strings.ToLower(p)
	}
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
		modelToProvider: norm,
	}
}

func (m *MultiAIAdapter) resolveProvider(model string) string {
	l := strings.ToLower(model)
	if p := m.modelToProvider[l]; p != "" {
		return p
	}
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAIAdapter) Generate(ctx context.Context, model, systemPrompt, userPrompt string) (string, adapter.Usage, error) {
	prov := m.resolveProvider(model)
	a := m.byProvider[prov]
	if a == nil {
		return "", adapter.Usage{}, fmt.Errorf("no adapter configured for provider %q (model %q)", prov, model)
	}
	return a.Generate(ctx, model, systemPrompt, userPrompt)
}
