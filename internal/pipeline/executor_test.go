package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/ports/adapter"
)

// scriptedAI returns a fixed reply (or error) per model and records the
// order in which models were called.
type scriptedAI struct {
	mu      sync.Mutex
	calls   []string
	replies map[string]string
	errs    map[string]error

	// optional per-model rendezvous: Generate signals started and then
	// blocks until gate is closed.
	started map[string]chan struct{}
	gate    map[string]chan struct{}
}

func (f *scriptedAI) Generate(ctx context.Context, model, system, user string) (string, adapter.Usage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, model)
	f.mu.Unlock()

	if ch, ok := f.started[model]; ok {
		close(ch)
	}
	if gate, ok := f.gate[model]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", adapter.Usage{}, ctx.Err()
		}
	}
	if err := f.errs[model]; err != nil {
		return "", adapter.Usage{}, err
	}
	return f.replies[model], adapter.Usage{PromptTokens: 10, CompletionTokens: 5}, nil
}

func (f *scriptedAI) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func testStages() map[Stage]StageConfig {
	return map[Stage]StageConfig{
		StageNotes:          {Model: "m-notes", Provider: "noop"},
		StageMisconceptions: {Model: "m-misc", Provider: "noop"},
		StagePractice:       {Model: "m-practice", Provider: "noop"},
		StageResources:      {Model: "m-resources", Provider: "noop"},
		StageActions:        {Model: "m-actions", Provider: "noop"},
	}
}

func testReplies() map[string]string {
	return map[string]string{
		"m-notes":     "NOTES_OUT",
		"m-misc":      "MISC_OUT",
		"m-practice":  "PRACTICE_OUT",
		"m-resources": "RESOURCES_OUT",
		"m-actions":   "ACTIONS_OUT",
	}
}

func newTestExecutor(t *testing.T, ai adapter.AIServiceAdapter) *Executor {
	t.Helper()
	log := zerolog.Nop()
	ex, err := NewExecutor(ai, testStages(), &log)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	return ex
}

func TestRunProducesAllSectionsInOrder(t *testing.T) {
	ai := &scriptedAI{replies: testReplies()}
	ex := newTestExecutor(t, ai)

	res, err := ex.Run(context.Background(), Input{
		Transcript:   "Photosynthesis converts light to chemical energy",
		StudentLevel: "college",
		StudentGoal:  "exam",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Outputs) != 5 {
		t.Fatalf("want 5 stage outputs, got %d", len(res.Outputs))
	}

	want := []string{"NOTES_OUT", "MISC_OUT", "PRACTICE_OUT", "RESOURCES_OUT", "ACTIONS_OUT"}
	last := -1
	for _, tok := range want {
		idx := strings.Index(res.CombinedMarkdown, tok)
		if idx < 0 {
			t.Fatalf("combined markdown missing %q", tok)
		}
		if idx < last {
			t.Fatalf("%q appears out of order in combined markdown", tok)
		}
		last = idx
	}
}

func TestDependencyOrdering(t *testing.T) {
	ai := &scriptedAI{replies: testReplies()}
	ex := newTestExecutor(t, ai)

	if _, err := ex.Run(context.Background(), Input{Transcript: "t"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	pos := map[string]int{}
	for i, m := range ai.callOrder() {
		pos[m] = i
	}
	if pos["m-notes"] != 0 {
		t.Fatalf("notes must be called first, order=%v", ai.callOrder())
	}
	mustAfter := map[string][]string{
		"m-misc":      {"m-notes"},
		"m-resources": {"m-notes"},
		"m-practice":  {"m-notes", "m-misc"},
		"m-actions":   {"m-notes", "m-misc"},
	}
	for m, deps := range mustAfter {
		for _, dep := range deps {
			if pos[m] < pos[dep] {
				t.Errorf("%s called before its dependency %s, order=%v", m, dep, ai.callOrder())
			}
		}
	}
}

// Once notes completes, misconceptions and resources must both be in flight
// at the same time. Each blocks until the other has started; a serialized
// executor would deadlock here.
func TestFanOutRunsSiblingsConcurrently(t *testing.T) {
	ai := &scriptedAI{
		replies: testReplies(),
		started: map[string]chan struct{}{
			"m-misc":      make(chan struct{}),
			"m-resources": make(chan struct{}),
		},
	}
	ai.gate = map[string]chan struct{}{
		"m-misc":      ai.started["m-resources"],
		"m-resources": ai.started["m-misc"],
	}
	ex := newTestExecutor(t, ai)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := ex.Run(ctx, Input{Transcript: "t"}); err != nil {
		t.Fatalf("fan-out stages did not run concurrently: %v", err)
	}
}

func TestNotesFailureSkipsAllDownstreamStages(t *testing.T) {
	ai := &scriptedAI{
		replies: testReplies(),
		errs:    map[string]error{"m-notes": errors.New("boom")},
	}
	ex := newTestExecutor(t, ai)

	_, err := ex.Run(context.Background(), Input{Transcript: "t"})
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("want ErrGeneration, got %v", err)
	}
	if got := ai.callOrder(); len(got) != 1 {
		t.Fatalf("downstream stages must not be called after notes failed, calls=%v", got)
	}
}

func TestSingleStageFailureFailsRun(t *testing.T) {
	ai := &scriptedAI{
		replies: testReplies(),
		errs:    map[string]error{"m-resources": errors.New("provider 500")},
	}
	ex := newTestExecutor(t, ai)

	res, err := ex.Run(context.Background(), Input{Transcript: "t"})
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("want ErrGeneration, got %v", err)
	}
	if res != nil {
		t.Fatalf("partial outputs must be discarded on failure")
	}
}
