package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/newsdesk/resume-service/internal/auth"
	"github.com/newsdesk/resume-service/internal/core/domain"
	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
	"github.com/newsdesk/resume-service/internal/core/llm"
	"github.com/newsdesk/resume-service/internal/ingest/wordpress"
	"github.com/newsdesk/resume-service/internal/process/resume"
	"github.com/newsdesk/resume-service/internal/server"
)

const (
	localUserID         = "local"
	localOrganizationID = "local"
	mockAPIKey          = "mock"
	apiKeyEnvSuffix     = "_API_KEY"
)

var errNoInput = errors.New("either an input file or a feed URL is required")

// DefaultToolConfig is used by the local run when no prompts file is given.
// It matches the default configuration seeded by the migrations.
func DefaultToolConfig() domain.ToolConfig {
	return domain.ToolConfig{
		Prompts: []domain.Prompt{
			{
				Title:   "Principal",
				Content: "Redacta un resumen informativo en español de las siguientes noticias, con un párrafo breve por noticia.",
			},
			{
				Title:   "Selección",
				Content: "Prioriza las noticias de mayor interés general y actualidad.",
			},
		},
		Temperature: 0.7,
		TopP:        1.0,
	}
}

// FileToolConfigs serves one tool configuration read from a JSON file.
type FileToolConfigs struct {
	Path string
}

// GetToolConfig implements resume.ConfigStore. The organization and tool are
// ignored; every lookup returns the file contents.
func (f FileToolConfigs) GetToolConfig(_ context.Context, _, _ string) (domain.ToolConfig, error) {
	if f.Path == "" {
		return DefaultToolConfig(), nil
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ToolConfig{}, fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, f.Path)
		}

		return domain.ToolConfig{}, fmt.Errorf("reading prompts file: %w", err)
	}

	var cfg domain.ToolConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.ToolConfig{}, fmt.Errorf("decoding prompts file: %w", err)
	}

	return cfg, nil
}

// EnvAPIKeys reads provider keys from <PROVIDER>_API_KEY variables,
// e.g. OPENAI_API_KEY. The mock provider needs no key.
type EnvAPIKeys struct {
	lookup func(string) (string, bool)
}

// GetAPIKey implements resume.CredentialStore.
func (e EnvAPIKeys) GetAPIKey(_ context.Context, _, provider string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	if name == string(llm.ProviderMock) {
		return mockAPIKey, nil
	}

	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	key, ok := lookup(strings.ToUpper(name) + apiKeyEnvSuffix)
	if !ok {
		return "", fmt.Errorf("%w: provider %s", apperrors.ErrAPIKeyNotFound, name)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: provider %s", apperrors.ErrAPIKeyEmpty, name)
	}

	return key, nil
}

// RunOptions controls a local run.
type RunOptions struct {
	InputPath      string
	FeedURL        string
	PromptsPath    string
	OrganizationID string
	Provider       string
	Model          string
	Output         io.Writer
}

// RunOnce runs the pipeline once without a database and writes the response
// body, in the API's JSON shape, to opts.Output.
func (a *App) RunOnce(ctx context.Context, opts RunOptions) error {
	req, err := a.loadRequest(ctx, opts)
	if err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return err
	}

	orgID := opts.OrganizationID
	if orgID == "" {
		orgID = localOrganizationID
	}

	orchestrator := resume.New(
		auth.StaticAuthenticator{Session: domain.Session{UserID: localUserID, OrganizationID: orgID}},
		FileToolConfigs{Path: opts.PromptsPath},
		EnvAPIKeys{},
		resume.RegistryCompletions{Registry: a.newRegistry(llm.NoopUsageRecorder())},
		a.pipelineOptions(),
		a.logger,
	)

	res, runErr := orchestrator.Run(ctx, "", req)

	out := server.Response{Logs: []domain.LogEntry{}}
	if res != nil && res.Logs != nil {
		out.Logs = res.Logs
	}

	if runErr != nil {
		out.Error = resume.UserMessage(runErr)
	} else {
		out.Success = true
		out.Resume = res.Resume
	}

	enc := json.NewEncoder(opts.Output)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	return runErr
}

// loadRequest builds the request from the input file or the feed. Provider
// and model flags override whatever the input file selects.
func (a *App) loadRequest(ctx context.Context, opts RunOptions) (resume.Request, error) {
	var req resume.Request

	switch {
	case opts.InputPath != "":
		data, err := os.ReadFile(opts.InputPath)
		if err != nil {
			return req, fmt.Errorf("reading input: %w", err)
		}

		if err := decodeInput(data, &req); err != nil {
			return req, err
		}
	case opts.FeedURL != "":
		articles, err := wordpress.NewLoader(a.cfg.FeedFetchTimeout, a.logger).Load(ctx, opts.FeedURL)
		if err != nil {
			return req, fmt.Errorf("loading feed: %w", err)
		}

		req.Content = articles
	default:
		return req, errNoInput
	}

	if opts.Provider != "" {
		req.SelectedModel.Provider = opts.Provider
	}

	if opts.Model != "" {
		req.SelectedModel.Model = opts.Model
	}

	return req, nil
}

// decodeInput accepts either a full request body or a bare article array.
func decodeInput(data []byte, req *resume.Request) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &req.Content); err != nil {
			return fmt.Errorf("%w: decoding articles: %w", apperrors.ErrInvalidRequest, err)
		}

		return nil
	}

	if err := json.Unmarshal(data, req); err != nil {
		return fmt.Errorf("%w: decoding request: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}
