package resume

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/newsdesk/resume-service/internal/core/domain"
	"github.com/newsdesk/resume-service/internal/process/dedup"
)

const articleBlockFormat = "Title: %s\nDate: %s\nLink: %s\nContent: %s"

// renderArticle renders one article block for a selection or summary prompt.
func renderArticle(title, date, link, content string) string {
	return fmt.Sprintf(articleBlockFormat, title, date, link, content)
}

// buildBatchText renders the substantive articles as blank-line separated
// blocks and returns the articles that made it into the text.
func buildBatchText(articles []domain.NormalizedArticle, minChars int) (string, []domain.NormalizedArticle) {
	blocks := make([]string, 0, len(articles))
	included := make([]domain.NormalizedArticle, 0, len(articles))

	for _, a := range articles {
		if !isSubstantive(a, minChars) {
			continue
		}

		blocks = append(blocks, renderArticle(a.PlainTitle, a.FormattedDate, a.Link, a.Text))
		included = append(included, a)
	}

	return strings.Join(blocks, "\n\n"), included
}

// Candidates is an ordered, link-unique candidate list. Stages never modify a
// list they receive; they return a new one.
type Candidates []domain.SelectionCandidate

func candidateLink(c domain.SelectionCandidate) string { return c.Link }

// Merge returns c followed by the entries of add whose link is new, and the
// number of entries of add dropped as duplicates. Drops are logged at debug
// level under phase.
func (c Candidates) Merge(add []domain.SelectionCandidate, phase string, log *RunLog) (Candidates, int) {
	var logger *zerolog.Logger
	if log != nil {
		logger = log.Logger()
	}

	return dedup.AppendUnique(c, add, candidateLink, phase, logger)
}

// Contains reports whether link is already a candidate.
func (c Candidates) Contains(link string) bool {
	for _, cand := range c {
		if cand.Link == link {
			return true
		}
	}

	return false
}

// Links returns the candidate links in order.
func (c Candidates) Links() []string {
	links := make([]string, 0, len(c))
	for _, cand := range c {
		links = append(links, cand.Link)
	}

	return links
}

// remaining returns the articles whose link is not a candidate yet, in order.
func remaining(articles []domain.NormalizedArticle, c Candidates) []domain.NormalizedArticle {
	taken := make(map[string]struct{}, len(c))
	for _, cand := range c {
		taken[cand.Link] = struct{}{}
	}

	out := make([]domain.NormalizedArticle, 0, len(articles))

	for _, a := range articles {
		if _, ok := taken[a.Link]; !ok {
			out = append(out, a)
		}
	}

	return out
}

// articleIndex maps links to articles of the working set.
type articleIndex map[string]domain.NormalizedArticle

func indexArticles(articles []domain.NormalizedArticle) articleIndex {
	idx := make(articleIndex, len(articles))
	for _, a := range articles {
		if _, ok := idx[a.Link]; !ok {
			idx[a.Link] = a
		}
	}

	return idx
}

// lookup returns the articles behind the candidates, skipping unknown links.
func (idx articleIndex) lookup(c Candidates) []domain.NormalizedArticle {
	out := make([]domain.NormalizedArticle, 0, len(c))

	for _, cand := range c {
		if a, ok := idx[cand.Link]; ok {
			out = append(out, a)
		}
	}

	return out
}

// rehydrate builds the final articles from the source collection. Only the
// link of a candidate is trusted.
func (idx articleIndex) rehydrate(c Candidates) []domain.SelectedArticle {
	out := make([]domain.SelectedArticle, 0, len(c))

	for _, a := range idx.lookup(c) {
		out = append(out, selectedFrom(a))
	}

	return out
}

func selectedFrom(a domain.NormalizedArticle) domain.SelectedArticle {
	return domain.SelectedArticle{
		Link:    a.Link,
		Title:   a.PlainTitle,
		Content: a.Text,
		Date:    a.FormattedDate,
	}
}
