package worker

import (
	"context"
	"sync"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
	"class-tutor-service/internal/domain/ports/adapter"
	"class-tutor-service/internal/pipeline"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string, opts adapter.TranscribeOptions) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeExecutor struct {
	result *pipeline.Result
	err    error
	calls  int
	panics bool
}

func (f *fakeExecutor) Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error) {
	f.calls++
	if f.panics {
		panic("executor blew up")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// memRecordingRepo is a small in-memory repository used by unit tests.
type memRecordingRepo struct {
	mu        sync.Mutex
	byJobID   map[string]*model.Recording
	updateErr error
}

func newMemRecordingRepo() *memRecordingRepo {
	return &memRecordingRepo{byJobID: make(map[string]*model.Recording)}
}

func (m *memRecordingRepo) Insert(ctx context.Context, rec *model.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byJobID[rec.JobID]; ok {
		return domain.ErrDuplicateJob
	}
	cp := *rec
	m.byJobID[rec.JobID] = &cp
	return nil
}

func (m *memRecordingRepo) FindByJobID(ctx context.Context, jobID string) (*model.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byJobID[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memRecordingRepo) FindByID(ctx context.Context, id string) (*model.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.byJobID {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRecordingRepo) List(ctx context.Context, offset, limit int) ([]*model.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Recording, 0, len(m.byJobID))
	for _, rec := range m.byJobID {
		cp := *rec
		cp.CombinedMarkdown = ""
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRecordingRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byJobID), nil
}

func (m *memRecordingRepo) UpdateCombinedMarkdown(ctx context.Context, jobID, combinedMD string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	rec, ok := m.byJobID[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.CombinedMarkdown = combinedMD
	return nil
}

type fakeCache struct {
	mu     sync.Mutex
	stored map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{stored: map[string]string{}} }

func (f *fakeCache) Store(ctx context.Context, jobID, combinedMD string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[jobID] = combinedMD
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	snaps []model.JobSnapshot
}

func (f *fakeNotifier) JobFinished(ctx context.Context, snap model.JobSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps = append(f.snaps, snap)
	return nil
}
