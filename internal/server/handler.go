// Package server exposes the resume pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsdesk/resume-service/internal/auth"
	"github.com/newsdesk/resume-service/internal/core/domain"
	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
	"github.com/newsdesk/resume-service/internal/platform/observability"
	"github.com/newsdesk/resume-service/internal/process/resume"
)

const (
	routeGenerateResume = "/api/generate-resume"

	defaultMaxBodyBytes = 10 << 20
)

// Pipeline runs one generate-resume request.
type Pipeline interface {
	Run(ctx context.Context, token string, req resume.Request) (*resume.Result, error)
}

// Response is the JSON body of every generate-resume answer.
type Response struct {
	Success bool              `json:"success"`
	Resume  string            `json:"resume"`
	Error   string            `json:"error,omitempty"`
	Logs    []domain.LogEntry `json:"logs"`
}

// Handler serves the generate-resume endpoint.
type Handler struct {
	pipeline     Pipeline
	maxBodyBytes int64
	logger       *zerolog.Logger
}

// New creates a Handler. maxBodyBytes <= 0 selects the default limit.
func New(pipeline Pipeline, maxBodyBytes int64, logger *zerolog.Logger) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	return &Handler{pipeline: pipeline, maxBodyBytes: maxBodyBytes, logger: logger}
}

// Routes returns the API mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+routeGenerateResume, h.handleGenerateResume)

	return mux
}

func (h *Handler) handleGenerateResume(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req resume.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, fmt.Errorf("%w: decoding body: %w", apperrors.ErrInvalidRequest, err))
		return
	}

	if err := req.Validate(); err != nil {
		h.reject(w, err)
		return
	}

	res, err := h.pipeline.Run(r.Context(), auth.BearerToken(r.Header.Get("Authorization")), req)

	logs := make([]domain.LogEntry, 0)
	if res != nil && res.Logs != nil {
		logs = res.Logs
	}

	if err != nil {
		h.logger.Error().Err(err).Int("articles", len(req.Content)).Msg("generate-resume failed")
		h.respond(w, http.StatusInternalServerError, Response{Error: resume.UserMessage(err), Logs: logs})

		return
	}

	h.logger.Info().
		Int("articles", len(req.Content)).
		Dur("duration", time.Since(started)).
		Msg("generate-resume completed")

	h.respond(w, http.StatusOK, Response{Success: true, Resume: res.Resume, Logs: logs})
}

func (h *Handler) reject(w http.ResponseWriter, err error) {
	h.logger.Warn().Err(err).Msg("rejected generate-resume request")
	h.respond(w, http.StatusBadRequest, Response{Error: resume.UserMessage(err), Logs: []domain.LogEntry{}})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body Response) {
	observability.HTTPRequests.WithLabelValues(routeGenerateResume, strconv.Itoa(status)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn().Err(err).Msg("failed to encode response")
	}
}
