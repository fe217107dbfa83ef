package resume

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/newsdesk/resume-service/internal/core/domain"
	"github.com/newsdesk/resume-service/internal/platform/htmlutils"
)

var (
	spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	spanishMonths   = [...]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	}
)

// Normalizer turns articles into their plain-text view.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a Normalizer that formats dates in loc (UTC when nil).
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}

	return &Normalizer{loc: loc}
}

// Normalize strips markup from title and body and formats the publication date.
// It never fails; malformed markup degrades to best-effort text.
func (n *Normalizer) Normalize(a domain.Article) domain.NormalizedArticle {
	return domain.NormalizedArticle{
		Article:       a,
		PlainTitle:    htmlutils.PlainText(a.Title.String()),
		Text:          htmlutils.PlainText(a.BodyHTML.String()),
		FormattedDate: FormatLongDate(a.PublishedAt.Time, n.loc),
	}
}

// NormalizeAll normalizes every article, keeping order.
func (n *Normalizer) NormalizeAll(articles []domain.Article) []domain.NormalizedArticle {
	out := make([]domain.NormalizedArticle, 0, len(articles))
	for _, a := range articles {
		out = append(out, n.Normalize(a))
	}

	return out
}

// FormatLongDate renders t as a Spanish long date-time, e.g.
// "jueves, 15 de octubre de 2026, 14:05". A zero time renders as "".
func FormatLongDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}

	t = t.In(loc)

	return fmt.Sprintf("%s, %d de %s de %d, %02d:%02d",
		spanishWeekdays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// isSubstantive reports whether a normalized body reaches minChars characters.
func isSubstantive(a domain.NormalizedArticle, minChars int) bool {
	return utf8.RuneCountInString(a.Text) >= minChars
}
