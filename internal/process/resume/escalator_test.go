package resume

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk/resume-service/internal/core/domain"
)

func candidatesFor(ids ...int) Candidates {
	out := make(Candidates, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.SelectionCandidate{Link: testLink(id), Title: "Noticia"})
	}

	return out
}

func TestEscalate_TwoRoundsReachFloor(t *testing.T) {
	articles := normalized(makeArticles(30))
	current := candidatesFor(1, 2)
	snapshot := append(Candidates(nil), current...)

	c := &scriptedCompletion{pick: func(call int, offered []string, lo, hi int) ([]string, error) {
		assert.NotContains(t, offered, testLink(1))
		assert.NotContains(t, offered, testLink(2))
		assert.Equal(t, 1, lo)
		assert.Equal(t, 3, hi)

		switch call {
		case 1:
			assert.Len(t, offered, backfillCap)
			assert.Equal(t, testLink(3), offered[0])

			return []string{testLink(3), testLink(1), testLink(4)}, nil
		default:
			assert.Len(t, offered, 26)
			assert.NotContains(t, offered, testLink(3))
			assert.NotContains(t, offered, testLink(4))

			return []string{testLink(5), testLink(3)}, nil
		}
	}}

	sel, log := newTestSelector(c)
	got := (&Escalator{sel: sel, log: log}).Escalate(context.Background(), current, articles)

	assert.Equal(t, []string{testLink(1), testLink(2), testLink(3), testLink(4), testLink(5)}, candidateLinks(got))
	assert.Equal(t, snapshot, current, "the input candidates are never modified")
	assert.Len(t, c.structuredCalls(), 2)
}

func TestEscalate_FirstRoundEnough(t *testing.T) {
	articles := normalized(makeArticles(12))

	c := &scriptedCompletion{pick: func(_ int, offered []string, _, hi int) ([]string, error) {
		assert.Equal(t, 4, hi)
		return firstN(offered, hi), nil
	}}

	sel, log := newTestSelector(c)
	got := (&Escalator{sel: sel, log: log}).Escalate(context.Background(), candidatesFor(12), articles)

	assert.Equal(t, []string{testLink(12), testLink(1), testLink(2), testLink(3), testLink(4)}, candidateLinks(got))
	assert.Len(t, c.structuredCalls(), 1)
}

func TestEscalate_EmergencyRoundUsesRelaxedThreshold(t *testing.T) {
	source := makeArticles(3)
	for i := 4; i <= 8; i++ {
		source = append(source, makeArticle(i, "<p>"+strings.Repeat("x", 60)+"</p>"))
	}

	c := &scriptedCompletion{pick: func(_ int, offered []string, _, hi int) ([]string, error) {
		assert.Equal(t, []string{testLink(4), testLink(5), testLink(6), testLink(7), testLink(8)}, offered)
		assert.Equal(t, 2+emergencyExtraMargin, hi)

		return firstN(offered, 2), nil
	}}

	sel, log := newTestSelector(c)
	got := (&Escalator{sel: sel, log: log}).Escalate(context.Background(), candidatesFor(1, 2, 3), normalized(source))

	assert.Equal(t, []string{testLink(1), testLink(2), testLink(3), testLink(4), testLink(5)}, candidateLinks(got))
	assert.Len(t, c.structuredCalls(), 1, "the backfill round has nothing substantive to offer")
	assert.True(t, hasLogEntry(log.Entries(), domain.LogLevelWarn, "Lote sin noticias"))
}

func TestEscalate_FloorMissIsTolerated(t *testing.T) {
	articles := normalized(makeArticles(9))

	c := &scriptedCompletion{pick: func(int, []string, int, int) ([]string, error) {
		return nil, errors.New("provider down")
	}}

	sel, log := newTestSelector(c)
	got := (&Escalator{sel: sel, log: log}).Escalate(context.Background(), candidatesFor(1), articles)

	assert.Equal(t, []string{testLink(1)}, candidateLinks(got))
	assert.Len(t, c.structuredCalls(), 2)
	assert.True(t, hasLogEntry(log.Entries(), domain.LogLevelWarn, "Falló la ronda de respaldo"))
	assert.True(t, hasLogEntry(log.Entries(), domain.LogLevelWarn, "No se alcanzó el mínimo"))
}

func TestEscalate_NoDuplicatesAndPrefixPreserved(t *testing.T) {
	articles := normalized(makeArticles(25))
	current := candidatesFor(7, 3)

	c := &scriptedCompletion{pick: func(_ int, offered []string, _, hi int) ([]string, error) {
		// Echo the same link twice to make sure it only lands once.
		return []string{offered[0], offered[0]}, nil
	}}

	sel, log := newTestSelector(c)
	got := (&Escalator{sel: sel, log: log}).Escalate(context.Background(), current, articles)

	links := candidateLinks(got)
	require.GreaterOrEqual(t, len(links), len(current))
	assert.Equal(t, current.Links(), links[:len(current)])

	sorted := slices.Clone(links)
	slices.Sort(sorted)
	assert.Len(t, slices.Compact(sorted), len(links), "links must be unique")
}

func TestEscalate_AlreadyAtFloor(t *testing.T) {
	c := &scriptedCompletion{pick: func(int, []string, int, int) ([]string, error) {
		t.Fatal("no round expected")
		return nil, nil
	}}

	sel, log := newTestSelector(c)
	current := candidatesFor(1, 2, 3, 4, 5)

	got := (&Escalator{sel: sel, log: log}).Escalate(context.Background(), current, normalized(makeArticles(10)))
	assert.Equal(t, current, got)
}
