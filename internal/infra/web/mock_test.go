package web

import (
	"context"
	"io"
	"sync"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
	"class-tutor-service/internal/usecase"
)

// fakeRecordingUC scripts use case behavior for handler tests.
type fakeRecordingUC struct {
	mu sync.Mutex

	submitRec *model.Recording
	submitErr error
	submitted []usecase.SubmitInput

	snapshots  map[string]model.JobSnapshot
	results    map[string]usecase.ResultView
	resultErrs map[string]error
	recordings map[string]*model.Recording
	stats      usecase.StatsView
}

func newFakeUC() *fakeRecordingUC {
	return &fakeRecordingUC{
		snapshots:  make(map[string]model.JobSnapshot),
		results:    make(map[string]usecase.ResultView),
		resultErrs: make(map[string]error),
		recordings: make(map[string]*model.Recording),
	}
}

func (f *fakeRecordingUC) Submit(ctx context.Context, in usecase.SubmitInput) (*model.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Audio != nil {
		io.Copy(io.Discard, in.Audio)
	}
	f.submitted = append(f.submitted, in)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitRec, nil
}

func (f *fakeRecordingUC) Status(ctx context.Context, jobID string) (model.JobSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[jobID]
	if !ok {
		return model.JobSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func (f *fakeRecordingUC) Result(ctx context.Context, jobID string) (usecase.ResultView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.resultErrs[jobID]; ok {
		return usecase.ResultView{}, err
	}
	view, ok := f.results[jobID]
	if !ok {
		return usecase.ResultView{}, domain.ErrNotFound
	}
	return view, nil
}

func (f *fakeRecordingUC) ResultMarkdown(ctx context.Context, jobID string) (string, error) {
	view, err := f.Result(ctx, jobID)
	if err != nil {
		return "", err
	}
	if view.Status == model.JobStatusFailed {
		return "", domain.ErrGeneration
	}
	return view.Markdown, nil
}

func (f *fakeRecordingUC) List(ctx context.Context, offset, limit int) ([]*model.Recording, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Recording, 0, len(f.recordings))
	for _, rec := range f.recordings {
		cp := *rec
		cp.CombinedMarkdown = ""
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeRecordingUC) Get(ctx context.Context, id string) (*model.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recordings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (f *fakeRecordingUC) Stats(ctx context.Context) (usecase.StatsView, error) {
	return f.stats, nil
}
