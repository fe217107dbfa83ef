package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

type openaiProvider struct {
	client *openai.Client
}

// NewOpenAIFactory returns a factory for OpenAI chat completions. An empty
// baseURL uses the public API.
func NewOpenAIFactory(baseURL string) Factory {
	return func(_ context.Context, apiKey string) (Provider, error) {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}

		return &openaiProvider{client: openai.NewClientWithConfig(cfg)}, nil
	}
}

// Name returns the provider identifier.
func (p *openaiProvider) Name() ProviderName {
	return ProviderOpenAI
}

// CompleteJSON implements Provider interface using JSON object mode.
func (p *openaiProvider) CompleteJSON(ctx context.Context, prompt, model string, maxTokens int) (Completion, error) {
	return p.complete(ctx, openai.ChatCompletionRequest{
		Model:     resolveOpenAIModel(model),
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: jsonOnlyInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
}

// CompleteText implements Provider interface.
func (p *openaiProvider) CompleteText(ctx context.Context, prompt, model string, params TextParams) (Completion, error) {
	return p.complete(ctx, openai.ChatCompletionRequest{
		Model:       resolveOpenAIModel(model),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
}

func (p *openaiProvider) complete(ctx context.Context, req openai.ChatCompletionRequest) (Completion, error) {
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{Model: req.Model}, fmt.Errorf(errOpenAIChatCompletion, err)
	}

	out := Completion{
		Model: req.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}

	if len(resp.Choices) == 0 {
		return out, apperrors.ErrEmptyResponse
	}

	out.Text = resp.Choices[0].Message.Content

	return out, nil
}

func resolveOpenAIModel(model string) string {
	if model == "" {
		return defaultOpenAIModel
	}

	return model
}

// Ensure openaiProvider implements Provider interface.
var _ Provider = (*openaiProvider)(nil)
