package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
)

// memRecordingRepo is a small in-memory repository used by unit tests.
type memRecordingRepo struct {
	mu        sync.Mutex
	byJobID   map[string]*model.Recording
	insertErr error
}

func newMemRecordingRepo() *memRecordingRepo {
	return &memRecordingRepo{byJobID: make(map[string]*model.Recording)}
}

func (m *memRecordingRepo) Insert(ctx context.Context, rec *model.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.byJobID[rec.JobID]; ok {
		return domain.ErrDuplicateJob
	}
	if rec.ID == "" {
		rec.ID = "rec-" + rec.JobID
	}
	rec.CreatedAt = time.Now()
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
	all := make([]*model.Recording, 0, len(m.byJobID))
	for _, rec := range m.byJobID {
		cp := *rec
		cp.CombinedMarkdown = ""
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memRecordingRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byJobID), nil
}

func (m *memRecordingRepo) UpdateCombinedMarkdown(ctx context.Context, jobID, combinedMD string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byJobID[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	rec.CombinedMarkdown = combinedMD
	return nil
}

// fakeRunner stands in for the real job runner; tests script the terminal
// state it should drive the registry to.
type fakeRunner struct {
	mu     sync.Mutex
	params []model.JobParams
	done   chan model.JobParams

	finalize func(params model.JobParams)
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{done: make(chan model.JobParams, 8)}
}

func (f *fakeRunner) Run(ctx context.Context, params model.JobParams) {
	f.mu.Lock()
	f.params = append(f.params, params)
	f.mu.Unlock()
	if f.finalize != nil {
		f.finalize(params)
	}
	f.done <- params
}

func (f *fakeRunner) wait(timeout time.Duration) (model.JobParams, bool) {
	select {
	case p := <-f.done:
		return p, true
	case <-time.After(timeout):
		return model.JobParams{}, false
	}
}

type fakeGuideReader struct {
	guides map[string]string
}

func (f *fakeGuideReader) Get(ctx context.Context, jobID string) (string, error) {
	if md, ok := f.guides[jobID]; ok {
		return md, nil
	}
	return "", domain.ErrNotFound
}
