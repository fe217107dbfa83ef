package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// RichText is HTML-bearing text as delivered by the content source.
// It decodes from either a plain JSON string or a WordPress-style
// {"rendered": "..."} object.
type RichText string

// UnmarshalJSON implements json.Unmarshaler.
func (t *RichText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = RichText(s)
		return nil
	}

	var rendered struct {
		Rendered string `json:"rendered"`
	}

	if err := json.Unmarshal(data, &rendered); err != nil {
		return fmt.Errorf("decoding rich text: %w", err)
	}

	*t = RichText(rendered.Rendered)

	return nil
}

// String returns the raw text.
func (t RichText) String() string {
	return string(t)
}

// Timestamp is a publication time that accepts the loose formats
// WordPress emits (no zone, space separators) as well as RFC 3339.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}

	parsed, err := dateparse.ParseAny(s)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}

	ts.Time = parsed

	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}

	return json.Marshal(ts.Format(time.RFC3339))
}

// Article is one source document submitted for summarization.
// Link is the natural key: two articles with the same link are the same article.
type Article struct {
	ID          int64     `json:"id"`
	Title       RichText  `json:"title"`
	BodyHTML    RichText  `json:"bodyHtml"`
	Link        string    `json:"link" validate:"required"`
	PublishedAt Timestamp `json:"publishedAt"`
}

// NormalizedArticle is an Article with title and body reduced to plain text.
type NormalizedArticle struct {
	Article
	PlainTitle    string
	Text          string
	FormattedDate string
}

// SelectionCandidate is an article marked important by a selection call.
type SelectionCandidate struct {
	Link  string `json:"link"`
	Title string `json:"title"`
}

// SelectedArticle is a candidate rehydrated from the source article,
// ready to be rendered into the summary prompt.
type SelectedArticle struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// Log levels used in request logs.
const (
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// LogEntry is one line of the per-request log returned to the caller.
type LogEntry struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Prompt is a named prompt of a tool configuration.
type Prompt struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ToolConfig holds the prompts and sampling parameters of one tool.
type ToolConfig struct {
	Prompts     []Prompt
	Temperature float32
	TopP        float32
}
