package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	mockModel        = "mock"
	mockReason       = "mock selection"
	mockTitlePrefix  = "Title: "
	mockLinkPrefix   = "Link: "
	mockSummaryTitle = "Resumen de prueba"
)

var mockBoundsRegex = regexp.MustCompile(`Selecciona entre (\d+) y (\d+)`)

// mockProvider answers deterministically from the prompt itself. It picks the
// first articles of the batch up to the requested maximum and lists titles as
// the summary.
type mockProvider struct{}

// NewMockFactory returns a factory for the mock provider.
func NewMockFactory() Factory {
	return func(context.Context, string) (Provider, error) {
		return &mockProvider{}, nil
	}
}

// Name returns the provider identifier.
func (p *mockProvider) Name() ProviderName {
	return ProviderMock
}

type mockSelection struct {
	Link   string `json:"link"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// CompleteJSON implements Provider interface.
func (p *mockProvider) CompleteJSON(_ context.Context, prompt, _ string, _ int) (Completion, error) {
	maxItems := 1
	if m := mockBoundsRegex.FindStringSubmatch(prompt); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
			maxItems = n
		}
	}

	selected := make([]mockSelection, 0, maxItems)

	for _, a := range parseMockArticles(prompt) {
		if len(selected) == maxItems {
			break
		}

		selected = append(selected, mockSelection{Link: a.link, Title: a.title, Reason: mockReason})
	}

	body, err := json.Marshal(map[string]any{"selected": selected})
	if err != nil {
		return Completion{}, fmt.Errorf("marshal mock selection: %w", err)
	}

	return Completion{Text: string(body), Model: mockModel}, nil
}

// CompleteText implements Provider interface.
func (p *mockProvider) CompleteText(_ context.Context, prompt, _ string, _ TextParams) (Completion, error) {
	var sb strings.Builder

	sb.WriteString(mockSummaryTitle)
	sb.WriteString(":\n")

	for _, a := range parseMockArticles(prompt) {
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", a.title, a.link))
	}

	return Completion{Text: sb.String(), Model: mockModel}, nil
}

type mockArticle struct {
	title string
	link  string
}

func parseMockArticles(prompt string) []mockArticle {
	var (
		out   []mockArticle
		title string
	)

	for _, line := range strings.Split(prompt, "\n") {
		switch {
		case strings.HasPrefix(line, mockTitlePrefix):
			title = strings.TrimPrefix(line, mockTitlePrefix)
		case strings.HasPrefix(line, mockLinkPrefix):
			link := strings.TrimPrefix(line, mockLinkPrefix)
			if title == "" {
				title = link
			}

			out = append(out, mockArticle{title: title, link: link})
			title = ""
		}
	}

	return out
}

// Ensure mockProvider implements Provider interface.
var _ Provider = (*mockProvider)(nil)
