package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// googleProvider implements the Provider interface for Google Gemini.
type googleProvider struct {
	client *genai.Client
}

// NewGoogleFactory returns a factory for Gemini. Each provider owns a client
// that must be closed; Client.Close takes care of it.
func NewGoogleFactory() Factory {
	return func(ctx context.Context, apiKey string) (Provider, error) {
		client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("creating google genai client: %w", err)
		}

		return &googleProvider{client: client}, nil
	}
}

// Close closes the Google client.
func (p *googleProvider) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("closing google genai client: %w", err)
		}
	}

	return nil
}

// Name returns the provider identifier.
func (p *googleProvider) Name() ProviderName {
	return ProviderGoogle
}

// CompleteJSON implements Provider interface.
func (p *googleProvider) CompleteJSON(ctx context.Context, prompt, model string, maxTokens int) (Completion, error) {
	resolved := resolveGoogleModel(model)
	genModel := p.client.GenerativeModel(resolved)
	genModel.ResponseMIMEType = mimeTypeJSON
	genModel.SystemInstruction = genai.NewUserContent(genai.Text(jsonOnlyInstruction))

	if maxTokens > 0 {
		genModel.SetMaxOutputTokens(int32(maxTokens)) //nolint:gosec // bounded by config
	}

	return p.generate(ctx, genModel, resolved, prompt)
}

// CompleteText implements Provider interface.
func (p *googleProvider) CompleteText(ctx context.Context, prompt, model string, params TextParams) (Completion, error) {
	resolved := resolveGoogleModel(model)
	genModel := p.client.GenerativeModel(resolved)

	if params.Temperature > 0 {
		genModel.SetTemperature(params.Temperature)
	}

	if params.TopP > 0 {
		genModel.SetTopP(params.TopP)
	}

	if params.MaxTokens > 0 {
		genModel.SetMaxOutputTokens(int32(params.MaxTokens)) //nolint:gosec // bounded by config
	}

	return p.generate(ctx, genModel, resolved, prompt)
}

func (p *googleProvider) generate(ctx context.Context, genModel *genai.GenerativeModel, model, prompt string) (Completion, error) {
	// Google's protobuf API requires valid UTF-8, and article bodies may contain invalid bytes.
	resp, err := genModel.GenerateContent(ctx, genai.Text(strings.ToValidUTF8(prompt, "�")))
	if err != nil {
		return Completion{Model: model}, fmt.Errorf(errGoogleGenAICompletion, err)
	}

	out := Completion{
		Text:  strings.TrimSpace(extractGoogleResponseText(resp)),
		Model: model,
	}

	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	return out, nil
}

// extractGoogleResponseText extracts text content from Google Gemini response.
func extractGoogleResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var result strings.Builder

	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					result.WriteString(string(text))
				}
			}
		}
	}

	return result.String()
}

func resolveGoogleModel(model string) string {
	if model == "" {
		return defaultGoogleModel
	}

	return model
}

// Ensure googleProvider implements Provider interface.
var _ Provider = (*googleProvider)(nil)
