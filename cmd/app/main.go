// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"class-tutor-service/internal/config"
	"class-tutor-service/internal/domain/ports/adapter"
	aiAdapters "class-tutor-service/internal/infra/adapters/ai"
	"class-tutor-service/internal/infra/adapters/notify"
	"class-tutor-service/internal/infra/adapters/transcription"
	pg "class-tutor-service/internal/infra/db/postgres"
	"class-tutor-service/internal/infra/logging"
	"class-tutor-service/internal/infra/metrics"
	red "class-tutor-service/internal/infra/redis"
	"class-tutor-service/internal/infra/web"
	"class-tutor-service/internal/pipeline"
	"class-tutor-service/internal/usecase"
	"class-tutor-service/internal/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, *devMode)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	recordingRepo := pg.NewRecordingRepo(pool)

	// ---- Redis (optional) ----
	var (
		guideCache  *red.GuideCache
		rateLimiter *red.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		guideCache = red.NewGuideCache(redisClient, cfg.Redis.TTL)
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; guide cache and rate limiting disabled")
	}

	// ---- AI adapters ----
	byProvider := map[string]adapter.AIServiceAdapter{}
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		byProvider["openai"] = oa
	}
	if cfg.AI.GeminiKey != "" {
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.MaxOutTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		byProvider["gemini"] = ga
	}
	if len(byProvider) == 0 {
		if !*devMode {
			logger.Fatal().Msg("no AI provider configured: set ai.openai_key or ai.gemini_key")
		}
		logger.Warn().Msg("no AI provider configured; using noop adapter")
		byProvider["noop"] = aiAdapters.NewNoopAIAdapter()
	}

	stages := map[pipeline.Stage]pipeline.StageConfig{
		pipeline.StageNotes:          {Model: cfg.Pipeline.Notes.Model, Provider: cfg.Pipeline.Notes.Provider},
		pipeline.StageMisconceptions: {Model: cfg.Pipeline.Misconceptions.Model, Provider: cfg.Pipeline.Misconceptions.Provider},
		pipeline.StagePractice:       {Model: cfg.Pipeline.Practice.Model, Provider: cfg.Pipeline.Practice.Provider},
		pipeline.StageResources:      {Model: cfg.Pipeline.Resources.Model, Provider: cfg.Pipeline.Resources.Provider},
		pipeline.StageActions:        {Model: cfg.Pipeline.Actions.Model, Provider: cfg.Pipeline.Actions.Provider},
	}
	modelToProvider := make(map[string]string, len(stages))
	for _, sc := range stages {
		modelToProvider[strings.ToLower(sc.Model)] = strings.ToLower(sc.Provider)
	}
	defaultProvider := "openai"
	if _, ok := byProvider["openai"]; !ok {
		for p := range byProvider {
			defaultProvider = p
			break
		}
	}
	ai := aiAdapters.NewMultiAIAdapter(defaultProvider, byProvider, modelToProvider)

	executor, err := pipeline.NewExecutor(ai, stages, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline executor")
	}

	// ---- Transcription ----
	conv := transcription.NewFFmpegConverter(cfg.Transcription.FFmpegPath)
	transcriber, err := transcription.NewDeepgramAdapter(
		cfg.Transcription.DeepgramKey,
		cfg.Transcription.BaseURL,
		cfg.Transcription.Model,
		conv,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("deepgram adapter")
	}

	// ---- Notifier ----
	var notifier adapter.Notifier = notify.NewNoopNotifier()
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != 0 {
		tn, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
		notifier = tn
	}

	// ---- Workers ----
	registry := worker.NewRegistry()
	wpool := worker.NewPool(cfg.Worker.Workers, cfg.Worker.QueueSize, logger)
	wpool.Start(ctx)

	var cacheStore worker.GuideCache
	if guideCache != nil {
		cacheStore = guideCache
	}
	runner := worker.NewRunner(registry, transcriber, executor, recordingRepo, cacheStore, notifier, cfg.Pipeline.JobTimeout, logger)

	// ---- Use case + HTTP ----
	var cacheReader usecase.GuideReader
	if guideCache != nil {
		cacheReader = guideCache
	}
	uc := usecase.NewRecordingUseCase(registry, wpool, runner, recordingRepo, cacheReader, usecase.Options{
		UploadsDir:   cfg.Server.UploadsDir,
		Language:     cfg.Transcription.Language,
		Diarize:      cfg.Transcription.Diarize,
		StudentLevel: cfg.Pipeline.StudentLevel,
		StudentGoal:  cfg.Pipeline.StudentGoal,
	}, logger)

	var limiter web.RateLimiter
	if rateLimiter != nil {
		limiter = rateLimiter
	}
	srv := web.NewServer(uc, limiter, cfg, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	wpool.Stop()
}
