package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
	"class-tutor-service/internal/domain/ports/repository"
	"class-tutor-service/internal/infra/metrics"
	"class-tutor-service/internal/worker"
)

// Compile-time check
var _ RecordingUseCase = (*recordingUC)(nil)

// JobRunner is what the use case hands to the pool for each accepted job.
type JobRunner interface {
	Run(ctx context.Context, params model.JobParams)
}

// GuideReader serves completed guides for jobs the in-memory registry no
// longer knows about, before falling back to Postgres.
type GuideReader interface {
	Get(ctx context.Context, jobID string) (string, error)
}

type SubmitInput struct {
	Date      string
	ClassName string
	Section   string
	Subject   string

	Filename string
	Audio    io.Reader
}

// ResultView is the terminal outcome of a job: exactly one of Markdown or
// FailureError is meaningful, keyed by Status.
type ResultView struct {
	JobID        string
	Status       model.JobStatus
	Markdown     string
	FailureError string
}

type StatsView struct {
	Jobs       map[model.JobStatus]int
	Recordings int
}

type RecordingUseCase interface {
	Submit(ctx context.Context, in SubmitInput) (*model.Recording, error)
	Status(ctx context.Context, jobID string) (model.JobSnapshot, error)
	Result(ctx context.Context, jobID string) (ResultView, error)
	ResultMarkdown(ctx context.Context, jobID string) (string, error)
	List(ctx context.Context, offset, limit int) ([]*model.Recording, int, error)
	Get(ctx context.Context, id string) (*model.Recording, error)
	Stats(ctx context.Context) (StatsView, error)
}

type recordingUC struct {
	registry *worker.Registry
	pool     *worker.Pool
	runner   JobRunner
	repo     repository.RecordingRepository
	cache    GuideReader

	uploadsDir   string
	language     string
	diarize      bool
	studentLevel string
	studentGoal  string

	log *zerolog.Logger
}

type Options struct {
	UploadsDir   string
	Language     string
	Diarize      bool
	StudentLevel string
	StudentGoal  string
}

func NewRecordingUseCase(
	registry *worker.Registry,
	pool *worker.Pool,
	runner JobRunner,
	repo repository.RecordingRepository,
	cache GuideReader,
	opts Options,
	log *zerolog.Logger,
) *recordingUC {
	return &recordingUC{
		registry:     registry,
		pool:         pool,
		runner:       runner,
		repo:         repo,
		cache:        cache,
		uploadsDir:   opts.UploadsDir,
		language:     opts.Language,
		diarize:      opts.Diarize,
		studentLevel: opts.StudentLevel,
		studentGoal:  opts.StudentGoal,
		log:          log,
	}
}

// Submit accepts an upload, registers a pending job and hands it to the
// pool. The job ID is returned to the caller before any slow work starts;
// everything after admission happens on a worker goroutine.
func (u *recordingUC) Submit(ctx context.Context, in SubmitInput) (*model.Recording, error) {
	if strings.TrimSpace(in.ClassName) == "" || strings.TrimSpace(in.Subject) == "" {
		return nil, fmt.Errorf("%w: class_name and subject are required", domain.ErrInvalidArgument)
	}
	if in.Audio == nil {
		return nil, fmt.Errorf("%w: audio file is required", domain.ErrInvalidArgument)
	}

	jobID := ulid.Make().String()

	audioPath, err := u.saveUpload(jobID, in.Filename, in.Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: save upload: %v", domain.ErrStorage, err)
	}

	rec := &model.Recording{
		Date:          in.Date,
		ClassName:     in.ClassName,
		Section:       in.Section,
		Subject:       in.Subject,
		AudioFilename: filepath.Base(audioPath),
		JobID:         jobID,
	}
	if err := u.repo.Insert(ctx, rec); err != nil {
		os.Remove(audioPath)
		return nil, err
	}

	if err := u.registry.Create(jobID); err != nil {
		return nil, err
	}

	params := model.JobParams{
		JobID:        jobID,
		AudioPath:    audioPath,
		Language:     u.language,
		Diarize:      u.diarize,
		StudentLevel: u.studentLevel,
		StudentGoal:  u.studentGoal,
	}
	if err := u.pool.Submit(func(taskCtx context.Context) {
		u.runner.Run(taskCtx, params)
	}); err != nil {
		metrics.JobRejected()
		// The job never ran, so the admission failure is its terminal state.
		if _, ferr := u.registry.Finalize(jobID, "", err); ferr != nil {
			u.log.Error().Err(ferr).Str("job_id", jobID).Msg("finalize rejected job")
		}
		return nil, fmt.Errorf("submit job %s: %w", jobID, err)
	}

	u.log.Info().Str("job_id", jobID).Str("subject", in.Subject).Msg("job accepted")
	return rec, nil
}

func (u *recordingUC) saveUpload(jobID, filename string, audio io.Reader) (string, error) {
	if err := os.MkdirAll(u.uploadsDir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(u.uploadsDir, jobID+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (u *recordingUC) Status(ctx context.Context, jobID string) (model.JobSnapshot, error) {
	snap, err := u.registry.Get(jobID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return model.JobSnapshot{}, err
	}
	// Jobs drop out of the registry on restart; a persisted artifact still
	// answers for them.
	md, lerr := u.lookupPersisted(ctx, jobID)
	if lerr != nil {
		return model.JobSnapshot{}, err
	}
	return model.JobSnapshot{JobID: jobID, Status: model.JobStatusCompleted, Result: md}, nil
}

func (u *recordingUC) Result(ctx context.Context, jobID string) (ResultView, error) {
	snap, err := u.Status(ctx, jobID)
	if err != nil {
		return ResultView{}, err
	}
	switch snap.Status {
	case model.JobStatusCompleted:
		return ResultView{JobID: jobID, Status: snap.Status, Markdown: snap.Result}, nil
	case model.JobStatusFailed:
		return ResultView{JobID: jobID, Status: snap.Status, FailureError: snap.Error}, nil
	default:
		return ResultView{}, fmt.Errorf("%w: job %s is %s", domain.ErrResultNotReady, jobID, snap.Status)
	}
}

func (u *recordingUC) ResultMarkdown(ctx context.Context, jobID string) (string, error) {
	view, err := u.Result(ctx, jobID)
	if err != nil {
		return "", err
	}
	if view.Status == model.JobStatusFailed {
		return "", fmt.Errorf("%w: job %s failed: %s", domain.ErrGeneration, jobID, view.FailureError)
	}
	return view.Markdown, nil
}

// lookupPersisted resolves a completed guide cache-first, then from Postgres.
func (u *recordingUC) lookupPersisted(ctx context.Context, jobID string) (string, error) {
	if u.cache != nil {
		if md, err := u.cache.Get(ctx, jobID); err == nil && md != "" {
			return md, nil
		}
	}
	rec, err := u.repo.FindByJobID(ctx, jobID)
	if err != nil {
		return "", err
	}
	if rec.CombinedMarkdown == "" {
		return "", domain.ErrNotFound
	}
	return rec.CombinedMarkdown, nil
}

func (u *recordingUC) List(ctx context.Context, offset, limit int) ([]*model.Recording, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	recs, err := u.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (u *recordingUC) Get(ctx context.Context, id string) (*model.Recording, error) {
	return u.repo.FindByID(ctx, id)
}

func (u *recordingUC) Stats(ctx context.Context) (StatsView, error) {
	total, err := u.repo.Count(ctx)
	if err != nil {
		return StatsView{}, err
	}
	return StatsView{
		Jobs:       u.registry.CountByStatus(),
		Recordings: total,
	}, nil
}
