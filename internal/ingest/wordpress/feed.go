// Package wordpress loads articles from a WordPress RSS or Atom feed.
package wordpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/newsdesk/resume-service/internal/core/domain"
)

const (
	defaultFetchTimeout = 30 * time.Second
	maxFeedBodySize     = 10 * 1024 * 1024 // 10MB
	maxFeedEntries      = 200
	headerUserAgent     = "User-Agent"
	userAgent           = "resume-service/1.0 (+feed loader)"
)

var errFeedHTTPStatus = errors.New("feed HTTP error")

// Loader fetches a feed and turns its entries into articles.
type Loader struct {
	httpClient *http.Client
	feedParser *gofeed.Parser
	logger     *zerolog.Logger
}

// NewLoader creates a Loader. timeout <= 0 selects the default.
func NewLoader(timeout time.Duration, logger *zerolog.Logger) *Loader {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		feedParser: gofeed.NewParser(),
		logger:     logger,
	}
}

// Load fetches feedURL and returns its entries as articles, in feed order.
func (l *Loader) Load(ctx context.Context, feedURL string) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(headerUserAgent, userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", errFeedHTTPStatus, resp.StatusCode)
	}

	feed, err := l.feedParser.Parse(io.LimitReader(resp.Body, maxFeedBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := ArticlesFromFeed(feed)

	l.logger.Info().
		Str("feed", feedURL).
		Int("entries", len(feed.Items)).
		Int("articles", len(articles)).
		Msg("feed loaded")

	return articles, nil
}

// ArticlesFromFeed converts feed entries to articles. The body is the full
// content when present and the description otherwise. Entries without a
// link are skipped.
func ArticlesFromFeed(feed *gofeed.Feed) []domain.Article {
	if feed == nil {
		return nil
	}

	articles := make([]domain.Article, 0, min(len(feed.Items), maxFeedEntries))

	for i, item := range feed.Items {
		if i >= maxFeedEntries {
			break
		}

		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		body := item.Content
		if strings.TrimSpace(body) == "" {
			body = item.Description
		}

		a := domain.Article{
			ID:       int64(i + 1),
			Title:    domain.RichText(item.Title),
			BodyHTML: domain.RichText(body),
			Link:     link,
		}

		switch {
		case item.PublishedParsed != nil:
			a.PublishedAt = domain.Timestamp{Time: *item.PublishedParsed}
		case item.UpdatedParsed != nil:
			a.PublishedAt = domain.Timestamp{Time: *item.UpdatedParsed}
		}

		articles = append(articles, a)
	}

	return articles
}
