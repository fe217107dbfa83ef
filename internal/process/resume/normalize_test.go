package resume

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newsdesk/resume-service/internal/core/domain"
)

func TestFormatLongDate(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)

	tests := []struct {
		name string
		in   time.Time
		loc  *time.Location
		want string
	}{
		{
			name: "converted to location",
			in:   time.Date(2026, 10, 15, 12, 5, 0, 0, time.UTC),
			loc:  madrid,
			want: "jueves, 15 de octubre de 2026, 14:05",
		},
		{
			name: "day boundary in location",
			in:   time.Date(2026, 1, 3, 23, 30, 0, 0, time.UTC),
			loc:  madrid,
			want: "domingo, 4 de enero de 2026, 01:30",
		},
		{
			name: "utc",
			in:   time.Date(2026, 8, 5, 9, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: "miércoles, 5 de agosto de 2026, 09:00",
		},
		{name: "zero time", in: time.Time{}, loc: madrid, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLongDate(tt.in, tt.loc))
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	a := domain.Article{
		ID:          7,
		Title:       "<h2>Subida del  <em>IPC</em></h2>",
		BodyHTML:    "<p>Los precios\r\nsuben.</p>\n\n<p>  La <a href=\"x\">inflación</a> sigue.</p>",
		Link:        "https://example.com/ipc",
		PublishedAt: domain.Timestamp{Time: time.Date(2026, 10, 15, 12, 5, 0, 0, time.UTC)},
	}

	got := NewNormalizer(nil).Normalize(a)

	assert.Equal(t, "Subida del IPC", got.PlainTitle)
	assert.Equal(t, "Los precios suben. La inflación sigue.", got.Text)
	assert.Equal(t, "jueves, 15 de octubre de 2026, 12:05", got.FormattedDate)
	assert.Equal(t, a, got.Article, "the source article is kept untouched")
}

func TestNormalizer_MalformedMarkupNeverFails(t *testing.T) {
	got := NewNormalizer(time.UTC).Normalize(domain.Article{
		Title:    "<b>Sin cerrar",
		BodyHTML: "texto <i sin cierre y <p>más",
		Link:     "https://example.com/x",
	})

	assert.Equal(t, "Sin cerrar", got.PlainTitle)
	assert.NotContains(t, got.Text, "<p>")
	assert.Empty(t, got.FormattedDate)
}

func TestIsSubstantive_CountsCharacters(t *testing.T) {
	// 50 two-byte runes are 100 bytes but only 50 characters.
	a := domain.NormalizedArticle{Text: strings.Repeat("ñ", 50)}

	assert.False(t, isSubstantive(a, substantiveChars))
	assert.True(t, isSubstantive(a, relaxedSubstantiveChars))
}
