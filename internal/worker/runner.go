package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
	"class-tutor-service/internal/domain/ports/adapter"
	"class-tutor-service/internal/domain/ports/repository"
	"class-tutor-service/internal/infra/metrics"
	"class-tutor-service/internal/pipeline"
)

// PipelineExecutor is what the runner needs from the generation pipeline.
type PipelineExecutor interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
}

// GuideCache is the optional read-through cache fill for completed guides.
type GuideCache interface {
	Store(ctx context.Context, jobID, combinedMD string) error
}

// Runner drives exactly one job from pending to a terminal state. It is
// the only writer for its job's registry entry; pollers are read-only.
type Runner struct {
	registry    *Registry
	transcriber adapter.TranscriptionAdapter
	executor    PipelineExecutor
	repo        repository.RecordingRepository
	cache       GuideCache
	notifier    adapter.Notifier
	jobTimeout  time.Duration
	log         *zerolog.Logger
}

func NewRunner(
	registry *Registry,
	transcriber adapter.TranscriptionAdapter,
	executor PipelineExecutor,
	repo repository.RecordingRepository,
	cache GuideCache,
	notifier adapter.Notifier,
	jobTimeout time.Duration,
	log *zerolog.Logger,
) *Runner {
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Minute
	}
	return &Runner{
		registry:    registry,
		transcriber: transcriber,
		executor:    executor,
		repo:        repo,
		cache:       cache,
		notifier:    notifier,
		jobTimeout:  jobTimeout,
		log:         log,
	}
}

// Run executes one job to completion. Every error, including a panic, is
// trapped here and converted into a failed finalize; a job can never take
// the process or a sibling job down with it.
func (r *Runner) Run(ctx context.Context, params model.JobParams) {
	log := r.log.With().Str("job_id", params.JobID).Logger()
	start := time.Now()
	metrics.JobStarted()
	defer metrics.JobFinished()

	combined, err := r.handleJob(ctx, params, &log)

	finalStatus := model.JobStatusCompleted
	if err != nil {
		finalStatus = model.JobStatusFailed
		log.Error().Err(err).Msg("job failed")
	}
	metrics.IncJob(string(finalStatus))

	snap, ferr := r.registry.Finalize(params.JobID, combined, err)
	if ferr != nil {
		log.Error().Err(ferr).Msg("finalize rejected")
		return
	}

	if err == nil && r.cache != nil {
		// Best effort; the durable copy is already in the repository.
		if cerr := r.cache.Store(context.Background(), params.JobID, combined); cerr != nil {
			metrics.IncCache("error")
			log.Warn().Err(cerr).Msg("guide cache fill failed")
		} else {
			metrics.IncCache("fill")
		}
	}
	if r.notifier != nil {
		if nerr := r.notifier.JobFinished(context.Background(), snap); nerr != nil {
			log.Warn().Err(nerr).Msg("job-finished notification failed")
		}
	}

	log.Info().
		Str("status", string(finalStatus)).
		Dur("duration", time.Since(start)).
		Msg("job finished")
}

func (r *Runner) handleJob(ctx context.Context, params model.JobParams, log *zerolog.Logger) (combined string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			combined = ""
			err = fmt.Errorf("panic in job runner: %v", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	defer cancel()

	if err := r.registry.SetStatus(params.JobID, model.JobStatusProcessing, "starting transcription"); err != nil {
		return "", err
	}

	_ = r.registry.SetProgress(params.JobID, "transcribing audio")
	tStart := time.Now()
	transcript, err := r.transcriber.Transcribe(ctx, params.AudioPath, adapter.TranscribeOptions{
		Language: params.Language,
		Diarize:  params.Diarize,
	})
	metrics.ObserveTranscription(int(time.Since(tStart)/time.Millisecond), err == nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	log.Debug().Int("transcript_len", len(transcript)).Msg("transcription done")

	_ = r.registry.SetProgress(params.JobID, "generating study materials")
	res, err := r.executor.Run(ctx, pipeline.Input{
		Transcript:   transcript,
		StudentLevel: params.StudentLevel,
		StudentGoal:  params.StudentGoal,
	})
	if err != nil {
		return "", err
	}

	_ = r.registry.SetProgress(params.JobID, "saving results")
	if err := r.repo.UpdateCombinedMarkdown(ctx, params.JobID, res.CombinedMarkdown); err != nil {
		// The artifact was computed but not durably recorded; the caller
		// must resubmit. No partial-credit state.
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return res.CombinedMarkdown, nil
}
