package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"class-tutor-service/internal/config"
	"class-tutor-service/internal/usecase"
)

// RateLimiter is the admission throttle for uploads.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	uc      usecase.RecordingUseCase
	auth    *AuthManager
	apiKey  string
	limiter RateLimiter

	maxUploadBytes int64
	rateLimitN     int
	rateWindow     time.Duration

	log *zerolog.Logger
}

func NewServer(uc usecase.RecordingUseCase, limiter RateLimiter, cfg *config.Config, logger *zerolog.Logger) *Server {
	return &Server{
		uc:             uc,
		auth:           NewAuthManager(cfg.Admin.SessionSecret, cfg.Admin.SecureCookie, cfg.Admin.SessionTTL),
		apiKey:         cfg.Admin.APIKey,
		limiter:        limiter,
		maxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		rateLimitN:     cfg.Server.RateLimit,
		rateWindow:     time.Duration(cfg.Server.RateWindowSec) * time.Second,
		log:            logger,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestID, s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.rateLimit).Post("/recordings", s.handleSubmit)
		r.Get("/recordings", s.handleListRecordings)
		r.Get("/recordings/{id}", s.handleGetRecording)

		r.Route("/jobs/{jobID}", func(r chi.Router) {
			r.Get("/", s.handleJobStatus)
			r.Get("/result", s.handleJobResult)
			r.Get("/result/markdown", s.handleJobResultMarkdown)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", s.handleAdminLogin)
		r.Post("/logout", s.handleAdminLogout)
		r.With(s.adminAuth).Get("/stats", s.handleAdminStats)
	})

	return r
}
