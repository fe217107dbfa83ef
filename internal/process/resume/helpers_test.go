package resume

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/newsdesk/resume-service/internal/core/domain"
	"github.com/newsdesk/resume-service/internal/core/llm"
)

var (
	testLinkRegex   = regexp.MustCompile(`(?m)^Link: (.+)$`)
	testBoundsRegex = regexp.MustCompile(`Selecciona entre (\d+) y (\d+)`)
)

func testLink(i int) string {
	return fmt.Sprintf("https://example.com/news/%d", i)
}

func makeArticle(i int, body string) domain.Article {
	return domain.Article{
		ID:          int64(i),
		Title:       domain.RichText(fmt.Sprintf("<strong>Noticia %d</strong>", i)),
		BodyHTML:    domain.RichText(body),
		Link:        testLink(i),
		PublishedAt: domain.Timestamp{Time: time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)},
	}
}

// makeArticles builds n articles with substantive bodies, numbered from 1.
func makeArticles(n int) []domain.Article {
	out := make([]domain.Article, 0, n)
	for i := 1; i <= n; i++ {
		body := "<p>" + strings.Repeat(fmt.Sprintf("Contenido de la noticia %d. ", i), 6) + "</p>"
		out = append(out, makeArticle(i, body))
	}

	return out
}

func normalized(articles []domain.Article) []domain.NormalizedArticle {
	return NewNormalizer(time.UTC).NormalizeAll(articles)
}

func linksIn(prompt string) []string {
	var out []string
	for _, m := range testLinkRegex.FindAllStringSubmatch(prompt, -1) {
		out = append(out, m[1])
	}

	return out
}

func boundsIn(prompt string) (int, int) {
	m := testBoundsRegex.FindStringSubmatch(prompt)
	if m == nil {
		return 0, 0
	}

	lo, _ := strconv.Atoi(m[1])
	hi, _ := strconv.Atoi(m[2])

	return lo, hi
}

func selectionJSON(links []string) json.RawMessage {
	type item struct {
		Link   string `json:"link"`
		Title  string `json:"title"`
		Reason string `json:"reason"`
	}

	items := make([]item, 0, len(links))
	for _, l := range links {
		items = append(items, item{Link: l, Title: "titulo inventado", Reason: "relevante"})
	}

	raw, _ := json.Marshal(map[string]any{"selected": items})

	return raw
}

// mockCompletion is a testify mock of Completion.
type mockCompletion struct {
	mock.Mock
}

func (m *mockCompletion) GenerateStructured(_ context.Context, prompt, schema string) (json.RawMessage, error) {
	args := m.Called(prompt, schema)
	raw, _ := args.Get(0).(json.RawMessage)

	return raw, args.Error(1)
}

func (m *mockCompletion) GenerateText(_ context.Context, prompt string, params llm.TextParams) (string, error) {
	args := m.Called(prompt, params)

	return args.String(0), args.Error(1)
}

// pickFunc decides which offered links a selection call returns.
type pickFunc func(call int, offered []string, minRequired, maxRequired int) ([]string, error)

// scriptedCompletion answers selection calls through pick and records every prompt.
type scriptedCompletion struct {
	mu         sync.Mutex
	pick       pickFunc
	summary    string
	summaryErr error
	structured []string
	text       []string
	params     []llm.TextParams
}

func (s *scriptedCompletion) GenerateStructured(_ context.Context, prompt, _ string) (json.RawMessage, error) {
	s.mu.Lock()
	s.structured = append(s.structured, prompt)
	call := len(s.structured)
	s.mu.Unlock()

	lo, hi := boundsIn(prompt)

	chosen, err := s.pick(call, linksIn(prompt), lo, hi)
	if err != nil {
		return nil, err
	}

	return selectionJSON(chosen), nil
}

func (s *scriptedCompletion) GenerateText(_ context.Context, prompt string, params llm.TextParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = append(s.text, prompt)
	s.params = append(s.params, params)

	return s.summary, s.summaryErr
}

func (s *scriptedCompletion) structuredCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.structured...)
}

// firstN returns the first n offered links, n capped by the offer.
func firstN(offered []string, n int) []string {
	return offered[:min(n, len(offered))]
}

func newTestSelector(c Completion) (*stageSelector, *RunLog) {
	logger := zerolog.Nop()
	log := NewRunLog("test", &logger)

	return &stageSelector{selector: NewSelector(c), prompt: "Elige las noticias más relevantes", log: log}, log
}

func hasLogEntry(entries []domain.LogEntry, level, contains string) bool {
	for _, e := range entries {
		if e.Level == level && strings.Contains(e.Message, contains) {
			return true
		}
	}

	return false
}

func candidateLinks(c Candidates) []string {
	return c.Links()
}
