// Package filters implements article title filtering.
//
// A title is normalized (tags stripped, lower-cased, diacritics removed) and
// the article is excluded when the normalized title contains any keyword of
// the exclusion vocabulary. Matching is by substring, not whole word, so
// "desayuno" also catches "desayunos".
package filters

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/newsdesk/resume-service/internal/core/domain"
	"github.com/newsdesk/resume-service/internal/platform/htmlutils"
)

// DefaultExcludedKeywords is the noise vocabulary used when none is configured.
// Entries are stored already normalized.
var DefaultExcludedKeywords = []string{
	"desayune",
	"desayuno",
	"horoscopo",
	"loteria",
	"crucigrama",
	"sudoku",
}

// Filterer excludes articles whose titles match the exclusion vocabulary.
type Filterer struct {
	keywords []string
}

// New creates a Filterer. An empty keyword list selects DefaultExcludedKeywords.
func New(keywords []string) *Filterer {
	if len(keywords) == 0 {
		keywords = DefaultExcludedKeywords
	}

	normalized := make([]string, 0, len(keywords))

	for _, kw := range keywords {
		if kw = Normalize(kw); kw != "" {
			normalized = append(normalized, kw)
		}
	}

	return &Filterer{keywords: normalized}
}

// Normalize lower-cases s and strips combining marks after NFD decomposition.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	return strings.TrimSpace(cases.Lower(language.Spanish).String(stripped))
}

// FilterReason reports whether the title is excluded and which keyword matched.
func (f *Filterer) FilterReason(title string) (bool, string) {
	normalized := Normalize(htmlutils.PlainText(title))

	for _, kw := range f.keywords {
		if strings.Contains(normalized, kw) {
			return true, kw
		}
	}

	return false, ""
}

// IsFiltered returns true if the title should be excluded.
func (f *Filterer) IsFiltered(title string) bool {
	filtered, _ := f.FilterReason(title)
	return filtered
}

// Filter returns the articles that pass, in input order. The input is not modified.
func (f *Filterer) Filter(articles []domain.Article) []domain.Article {
	kept := make([]domain.Article, 0, len(articles))

	for _, a := range articles {
		if !f.IsFiltered(a.Title.String()) {
			kept = append(kept, a)
		}
	}

	return kept
}
