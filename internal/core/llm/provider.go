package llm

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

// ProviderName identifies an LLM provider.
type ProviderName string

// Provider name constants.
const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGoogle    ProviderName = "google"
	ProviderMock      ProviderName = "mock"
)

// ParseProviderName maps a provider string, case-insensitively, to a known name.
func ParseProviderName(s string) (ProviderName, error) {
	name := ProviderName(strings.ToLower(strings.TrimSpace(s)))

	switch name {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderMock:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedProvider, s)
	}
}

// Usage reports token counts for one provider call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Completion is the raw result of a provider call.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// TextParams holds sampling options for free-text generation.
type TextParams struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// Provider is the capability set every LLM backend implements.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// CompleteJSON asks the model for a single JSON object.
	CompleteJSON(ctx context.Context, prompt, model string, maxTokens int) (Completion, error)

	// CompleteText asks the model for free text.
	CompleteText(ctx context.Context, prompt, model string, params TextParams) (Completion, error)
}

// Factory builds a provider bound to one organization's API key.
type Factory func(ctx context.Context, apiKey string) (Provider, error)
