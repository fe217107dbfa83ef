package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
	"github.com/newsdesk/resume-service/internal/platform/config"
	"github.com/newsdesk/resume-service/internal/process/resume"
	"github.com/newsdesk/resume-service/internal/server"
)

const testArticles = `[
	{"id": 1, "title": {"rendered": "Sube el IPC"}, "bodyHtml": "<p>Los precios suben por tercer mes consecutivo según los datos publicados hoy por el instituto de estadística.</p>", "link": "https://diario.example/ipc", "publishedAt": "2026-10-15 08:30:00"},
	{"id": 2, "title": "Nuevo puente", "bodyHtml": "<p>El ayuntamiento inaugura el nuevo puente sobre el río tras dos años de obras y una inversión millonaria.</p>", "link": "https://diario.example/puente", "publishedAt": "2026-10-15 09:00:00"}
]`

func newTestApp() *App {
	logger := zerolog.Nop()

	return New(&config.Config{
		LLMMockEnabled: true,
		LLMMaxAttempts: 1,
		ResumeToolName: "generate-resume",
		DateLocation:   "UTC",
	}, nil, &logger)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRunOnce_MockProvider(t *testing.T) {
	var out bytes.Buffer

	err := newTestApp().RunOnce(context.Background(), RunOptions{
		InputPath: writeFile(t, "articles.json", testArticles),
		Provider:  "mock",
		Model:     "mock",
		Output:    &out,
	})
	require.NoError(t, err)

	var resp server.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Contains(t, resp.Resume, "https://diario.example/ipc")
	assert.Contains(t, resp.Resume, "https://diario.example/puente")
	assert.NotEmpty(t, resp.Logs)
}

func TestRunOnce_MissingKeyWritesError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	var out bytes.Buffer

	err := newTestApp().RunOnce(context.Background(), RunOptions{
		InputPath: writeFile(t, "articles.json", testArticles),
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Output:    &out,
	})
	require.ErrorIs(t, err, apperrors.ErrAPIKeyEmpty)

	var resp server.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestRunOnce_NoInput(t *testing.T) {
	err := newTestApp().RunOnce(context.Background(), RunOptions{Output: &bytes.Buffer{}})
	require.ErrorIs(t, err, errNoInput)
}

func decodeRequest(body string) (resume.Request, error) {
	var req resume.Request
	err := decodeInput([]byte(body), &req)

	return req, err
}

func TestDecodeInput(t *testing.T) {
	t.Run("article array", func(t *testing.T) {
		req, err := decodeRequest(testArticles)
		require.NoError(t, err)
		assert.Len(t, req.Content, 2)
	})

	t.Run("full request", func(t *testing.T) {
		req, err := decodeRequest(`{"content":` + testArticles + `,"selectedModel":{"provider":"anthropic","model":"claude"}}`)
		require.NoError(t, err)
		assert.Len(t, req.Content, 2)
		assert.Equal(t, "anthropic", req.SelectedModel.Provider)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := decodeRequest("{")
		require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	})
}

func TestFileToolConfigs(t *testing.T) {
	ctx := context.Background()

	cfg, err := FileToolConfigs{}.GetToolConfig(ctx, "org", "generate-resume")
	require.NoError(t, err)
	assert.Equal(t, DefaultToolConfig(), cfg)

	path := writeFile(t, "prompts.json", `{"prompts":[{"title":"Principal","content":"Resume"}],"temperature":0.2,"topP":0.9}`)

	cfg, err = FileToolConfigs{Path: path}.GetToolConfig(ctx, "org", "generate-resume")
	require.NoError(t, err)
	require.Len(t, cfg.Prompts, 1)
	assert.Equal(t, "Resume", cfg.Prompts[0].Content)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-6)
	assert.InDelta(t, 0.9, cfg.TopP, 1e-6)

	_, err = FileToolConfigs{Path: filepath.Join(t.TempDir(), "missing.json")}.GetToolConfig(ctx, "org", "generate-resume")
	require.ErrorIs(t, err, apperrors.ErrConfigNotFound)
}

func TestEnvAPIKeys(t *testing.T) {
	env := map[string]string{"OPENAI_API_KEY": " sk-test ", "GOOGLE_API_KEY": "  "}
	keys := EnvAPIKeys{lookup: func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}}

	ctx := context.Background()

	key, err := keys.GetAPIKey(ctx, "org", "OpenAI")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	_, err = keys.GetAPIKey(ctx, "org", "google")
	require.ErrorIs(t, err, apperrors.ErrAPIKeyEmpty)

	_, err = keys.GetAPIKey(ctx, "org", "anthropic")
	require.ErrorIs(t, err, apperrors.ErrAPIKeyNotFound)

	key, err = keys.GetAPIKey(ctx, "org", "mock")
	require.NoError(t, err)
	assert.Equal(t, mockAPIKey, key)
}
