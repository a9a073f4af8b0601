package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
	"class-tutor-service/internal/usecase"
	"class-tutor-service/internal/worker"
)

type submitResponse struct {
	JobID       string `json:"job_id"`
	RecordingID string `json:"recording_id"`
	Status      string `json:"status"`
}

type jobStatusResponse struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Progress  string    `json:"progress,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type jobResultResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Markdown string `json:"markdown,omitempty"`
	Error    string `json:"error,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type recordingResponse struct {
	ID               string    `json:"id"`
	Date             string    `json:"date"`
	ClassName        string    `json:"class_name"`
	Section          string    `json:"section,omitempty"`
	Subject          string    `json:"subject"`
	AudioFilename    string    `json:"audio_filename"`
	JobID            string    `json:"job_id"`
	CombinedMarkdown string    `json:"combined_markdown,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toRecordingResponse(rec *model.Recording) recordingResponse {
	return recordingResponse{
		ID:            rec.ID,
		Date:          rec.Date,
		ClassName:     rec.ClassName,
		Section:       rec.Section,
		Subject:       rec.Subject,
		AudioFilename: rec.AudioFilename,
		JobID:         rec.JobID,
		CreatedAt:     rec.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		http.Error(w, "Invalid multipart form or file too large", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		http.Error(w, "audio_file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rec, err := s.uc.Submit(r.Context(), usecase.SubmitInput{
		Date:      r.FormValue("date"),
		ClassName: r.FormValue("class_name"),
		Section:   r.FormValue("section"),
		Subject:   r.FormValue("subject"),
		Filename:  header.Filename,
		Audio:     file,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, worker.ErrQueueFull):
			http.Error(w, "Server is busy, try again later", http.StatusServiceUnavailable)
		case errors.Is(err, domain.ErrDuplicateJob):
			http.Error(w, "Duplicate job", http.StatusConflict)
		default:
			s.log.Error().Err(err).Msg("submit recording")
			http.Error(w, "Failed to submit recording", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		JobID:       rec.JobID,
		RecordingID: rec.ID,
		Status:      "pending",
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	snap, err := s.uc.Status(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Failed to get job status", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, jobStatusResponse{
		JobID:     snap.JobID,
		Status:    string(snap.Status),
		Progress:  snap.Progress,
		Error:     snap.Error,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	})
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	view, err := s.uc.Result(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, domain.ErrResultNotReady):
			writeJSON(w, http.StatusAccepted, jobResultResponse{
				JobID:  jobID,
				Status: "processing",
				Detail: "result not ready",
			})
		default:
			http.Error(w, "Failed to get job result", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, jobResultResponse{
		JobID:    view.JobID,
		Status:   string(view.Status),
		Markdown: view.Markdown,
		Error:    view.FailureError,
	})
}

func (s *Server) handleJobResultMarkdown(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	md, err := s.uc.ResultMarkdown(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, domain.ErrResultNotReady), errors.Is(err, domain.ErrGeneration):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to get job result", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="study_guide_`+jobID+`.md"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(md))
}

func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, total, err := s.uc.List(r.Context(), offset, limit)
	if err != nil {
		http.Error(w, "Failed to list recordings", http.StatusInternalServerError)
		return
	}

	items := make([]recordingResponse, 0, len(recs))
	for _, rec := range recs {
		items = append(items, toRecordingResponse(rec))
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []recordingResponse `json:"data"`
		Total  int                 `json:"total"`
		Limit  int                 `json:"limit"`
		Offset int                 `json:"offset"`
	}{
		Data:   items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request) {
	rec, err := s.uc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Failed to get recording", http.StatusInternalServerError)
		return
	}
	out := toRecordingResponse(rec)
	out.CombinedMarkdown = rec.CombinedMarkdown
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" {
		s.log.Error().Msg("admin API key is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.APIKey != s.apiKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.uc.Stats(r.Context())
	if err != nil {
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	jobs := make(map[string]int, len(stats.Jobs))
	for status, n := range stats.Jobs {
		jobs[string(status)] = n
	}
	writeJSON(w, http.StatusOK, struct {
		Jobs       map[string]int `json:"jobs"`
		Recordings int            `json:"total_recordings"`
		Time       time.Time      `json:"server_time"`
	}{
		Jobs:       jobs,
		Recordings: stats.Recordings,
		Time:       time.Now().UTC(),
	})
}
