package resume

import (
	"context"
	"fmt"
	"strings"

	"github.com/newsdesk/resume-service/internal/core/domain"
	"github.com/newsdesk/resume-service/internal/core/llm"
)

// SummaryGenerator writes the final summary from the selected articles.
type SummaryGenerator struct {
	completion Completion
}

// NewSummaryGenerator creates a SummaryGenerator backed by completion.
func NewSummaryGenerator(completion Completion) *SummaryGenerator {
	return &SummaryGenerator{completion: completion}
}

// Summarize sends the principal prompt followed by every article block and
// returns the generated text as is.
func (g *SummaryGenerator) Summarize(ctx context.Context, principalPrompt string, articles []domain.SelectedArticle, params llm.TextParams) (string, error) {
	text, err := g.completion.GenerateText(ctx, buildSummaryPrompt(principalPrompt, articles), params)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}

	return text, nil
}

func buildSummaryPrompt(principalPrompt string, articles []domain.SelectedArticle) string {
	blocks := make([]string, 0, len(articles)+1)
	blocks = append(blocks, principalPrompt)

	for _, a := range articles {
		blocks = append(blocks, renderArticle(a.Title, a.Date, a.Link, a.Content))
	}

	return strings.Join(blocks, "\n\n")
}
