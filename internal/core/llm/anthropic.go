package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicProvider implements the Provider interface for Anthropic Claude.
type anthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicFactory returns a factory for the Anthropic Messages API. An
// empty baseURL uses the public API.
func NewAnthropicFactory(baseURL string) Factory {
	return func(_ context.Context, apiKey string) (Provider, error) {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}

		return &anthropicProvider{client: anthropic.NewClient(opts...)}, nil
	}
}

// Name returns the provider identifier.
func (p *anthropicProvider) Name() ProviderName {
	return ProviderAnthropic
}

// CompleteJSON implements Provider interface. Claude has no JSON mode, so the
// system prompt carries the instruction and the caller extracts the object.
func (p *anthropicProvider) CompleteJSON(ctx context.Context, prompt, model string, maxTokens int) (Completion, error) {
	return p.complete(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(resolveAnthropicModel(model)),
		MaxTokens: int64(maxTokens),
		System:    []anthropic.TextBlockParam{{Text: jsonOnlyInstruction}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
}

// CompleteText implements Provider interface.
func (p *anthropicProvider) CompleteText(ctx context.Context, prompt, model string, params TextParams) (Completion, error) {
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(resolveAnthropicModel(model)),
		MaxTokens: int64(params.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(float64(params.Temperature))
	}

	if params.TopP > 0 {
		req.TopP = anthropic.Float(float64(params.TopP))
	}

	return p.complete(ctx, req)
}

func (p *anthropicProvider) complete(ctx context.Context, req anthropic.MessageNewParams) (Completion, error) {
	resp, err := p.client.Messages.New(ctx, req)
	if err != nil {
		return Completion{Model: string(req.Model)}, fmt.Errorf(errAnthropicMessages, err)
	}

	return Completion{
		Text:  extractTextFromResponse(resp),
		Model: string(req.Model),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// extractTextFromResponse extracts text content from Anthropic response.
func extractTextFromResponse(resp *anthropic.Message) string {
	var result strings.Builder

	for _, block := range resp.Content {
		if block.Type == contentTypeText {
			result.WriteString(block.Text)
		}
	}

	return result.String()
}

func resolveAnthropicModel(model string) string {
	if model == "" {
		return defaultAnthropicModel
	}

	return model
}

// Ensure anthropicProvider implements Provider interface.
var _ Provider = (*anthropicProvider)(nil)
