package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/ports/adapter"
	"class-tutor-service/internal/infra/metrics"
)

// Executor runs the fixed five-stage generation graph over one transcript.
// Each job gets its own Run invocation; the executor itself holds no
// per-job state and is safe to share.
type Executor struct {
	ai     adapter.AIServiceAdapter
	stages map[Stage]StageConfig
	log    *zerolog.Logger
}

func NewExecutor(ai adapter.AIServiceAdapter, stages map[Stage]StageConfig, log *zerolog.Logger) (*Executor, error) {
	for _, st := range stageOrder {
		cfg, ok := stages[st]
		if !ok || cfg.Model == "" {
			return nil, fmt.Errorf("%w: no model configured for stage %s", domain.ErrInvalidArgument, st)
		}
	}
	return &Executor{ai: ai, stages: stages, log: log}, nil
}

type stageResult struct {
	stage Stage
	text  string
	err   error
}

// Run executes the graph, launching every eligible stage concurrently as
// its dependencies complete. It fails fast on the first stage error;
// in-flight siblings are abandoned via context cancellation. Partial
// outputs are discarded on failure.
func (e *Executor) Run(ctx context.Context, in Input) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so abandoned goroutines never block on send.
	results := make(chan stageResult, len(stageOrder))
	outputs := make(map[Stage]string, len(stageOrder))
	launched := make(map[Stage]bool, len(stageOrder))

	launchEligible := func() {
		for _, st := range stageOrder {
			if launched[st] || !depsSatisfied(st, outputs) {
				continue
			}
			launched[st] = true
			// Prompt is formatted here, on the scheduling goroutine, so the
			// stage goroutine never reads the shared outputs map.
			prompt := buildPrompt(st, in, outputs)
			go func(st Stage, prompt stagePrompt) {
				text, err := e.runStage(ctx, st, prompt)
				results <- stageResult{stage: st, text: text, err: err}
			}(st, prompt)
		}
	}

	launchEligible()
	for len(outputs) < len(stageOrder) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-results:
			if r.err != nil {
				return nil, r.err
			}
			outputs[r.stage] = r.text
			launchEligible()
		}
	}

	return &Result{Outputs: outputs, CombinedMarkdown: combine(outputs)}, nil
}

func depsSatisfied(st Stage, outputs map[Stage]string) bool {
	for _, dep := range stageDeps[st] {
		if _, ok := outputs[dep]; !ok {
			return false
		}
	}
	return true
}

func (e *Executor) runStage(ctx context.Context, st Stage, prompt stagePrompt) (string, error) {
	cfg := e.stages[st]
	start := time.Now()
	text, usage, err := e.ai.Generate(ctx, cfg.Model, prompt.system, prompt.user)
	latencyMs := int(time.Since(start) / time.Millisecond)

	tokensIn := usage.PromptTokens
	if tokensIn == 0 {
		tokensIn = estimateTokens(cfg.Model, prompt.system+prompt.user)
	}
	metrics.ObserveStage(string(st), cfg.Provider, cfg.Model, tokensIn, usage.CompletionTokens, latencyMs, err == nil)

	if err != nil {
		e.log.Error().Err(err).Str("stage", string(st)).Str("model", cfg.Model).Msg("stage call failed")
		return "", fmt.Errorf("%w: stage %s (%s/%s): %v", domain.ErrGeneration, st, cfg.Provider, cfg.Model, err)
	}
	e.log.Debug().Str("stage", string(st)).Str("model", cfg.Model).Int("latency_ms", latencyMs).Msg("stage complete")
	return text, nil
}

// estimateTokens is a best-effort prompt size estimate for metrics when the
// provider reports no usage. Non-OpenAI models fall back to cl100k_base,
// then to a rough bytes/4 guess.
func estimateTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return len(text) / 4
		}
	}
	return len(enc.Encode(text, nil, nil))
}
