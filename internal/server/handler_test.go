package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk/resume-service/internal/core/domain"
	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
	"github.com/newsdesk/resume-service/internal/process/resume"
)

type pipelineFunc func(ctx context.Context, token string, req resume.Request) (*resume.Result, error)

func (f pipelineFunc) Run(ctx context.Context, token string, req resume.Request) (*resume.Result, error) {
	return f(ctx, token, req)
}

const validBody = `{
	"manual": true,
	"content": [
		{"id": 1, "title": {"rendered": "Titular"}, "bodyHtml": "<p>Cuerpo</p>", "link": "https://example.com/1", "publishedAt": "2026-10-15 08:00:00"}
	],
	"selectedModel": {"model": "gpt-4o-mini", "provider": "openai"}
}`

func newTestHandler(p Pipeline, maxBody int64) http.Handler {
	logger := zerolog.Nop()
	return New(p, maxBody, &logger).Routes()
}

func doRequest(t *testing.T, h http.Handler, method, body, authHeader string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(method, routeGenerateResume, strings.NewReader(body))
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	if rec.Code != http.StatusMethodNotAllowed {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}

	return rec, resp
}

func TestGenerateResume_Success(t *testing.T) {
	var gotToken string

	var gotReq resume.Request

	h := newTestHandler(pipelineFunc(func(_ context.Context, token string, req resume.Request) (*resume.Result, error) {
		gotToken, gotReq = token, req

		return &resume.Result{
			Resume: "Resumen",
			Logs:   []domain.LogEntry{{Level: domain.LogLevelInfo, Message: "ok"}},
		}, nil
	}), 0)

	rec, resp := doRequest(t, h, http.MethodPost, validBody, "Bearer session-jwt")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, resp.Success)
	assert.Equal(t, "Resumen", resp.Resume)
	assert.Empty(t, resp.Error)
	assert.Len(t, resp.Logs, 1)

	assert.Equal(t, "session-jwt", gotToken)
	require.Len(t, gotReq.Content, 1)
	assert.Equal(t, domain.RichText("Titular"), gotReq.Content[0].Title)
	assert.Equal(t, "openai", gotReq.SelectedModel.Provider)
	assert.True(t, gotReq.Manual)
}

func TestGenerateResume_PipelineFailure(t *testing.T) {
	h := newTestHandler(pipelineFunc(func(context.Context, string, resume.Request) (*resume.Result, error) {
		return &resume.Result{Logs: []domain.LogEntry{{Level: domain.LogLevelError, Message: "failed"}}},
			&resume.PipelineError{Stage: resume.StageLoadingConfig, Err: apperrors.ErrAPIKeyNotFound}
	}), 0)

	rec, resp := doRequest(t, h, http.MethodPost, validBody, "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Resume)
	assert.Equal(t, "No se encontró la clave de API del proveedor seleccionado", resp.Error)
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, domain.LogLevelError, resp.Logs[0].Level)
}

func TestGenerateResume_BadRequests(t *testing.T) {
	h := newTestHandler(pipelineFunc(func(context.Context, string, resume.Request) (*resume.Result, error) {
		t.Fatal("pipeline must not run for an invalid request")
		return nil, nil
	}), 512)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{"},
		{name: "missing provider", body: `{"content":[{"link":"https://example.com/1"}],"selectedModel":{"model":"m"}}`},
		{name: "article without link", body: `{"content":[{"title":"x"}],"selectedModel":{"model":"m","provider":"openai"}}`},
		{name: "missing content", body: `{"selectedModel":{"model":"m","provider":"openai"}}`},
		{name: "too large", body: `{"content":[{"link":"https://example.com/` + strings.Repeat("a", 1024) + `"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, h, http.MethodPost, tt.body, "")

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, "Solicitud inválida", resp.Error)
			assert.Contains(t, rec.Body.String(), `"logs":[]`)
		})
	}
}

func TestGenerateResume_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(pipelineFunc(func(context.Context, string, resume.Request) (*resume.Result, error) {
		return nil, nil
	}), 0)

	rec, _ := doRequest(t, h, http.MethodGet, "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
