package adapter

import "context"

// Usage for a single generation call, as reported by the provider.
// Zero when the provider gives no usage metadata.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AIServiceAdapter is the port for LLM text generation. One call per
// pipeline stage; blocking, single attempt, no retry. The returned text is
// trusted verbatim.
type AIServiceAdapter interface {
	// Generate sends a system+user prompt pair to the given model and
	// returns the raw completion text.
	Generate(ctx context.Context, model, systemPrompt, userPrompt string) (string, Usage, error)
}
