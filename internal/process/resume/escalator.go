package resume

import (
	"context"

	"github.com/newsdesk/resume-service/internal/core/domain"
	"github.com/newsdesk/resume-service/internal/platform/observability"
)

// Escalator tops the candidate set up to the floor with at most two extra
// selection rounds over articles not selected yet.
type Escalator struct {
	sel *stageSelector
	log *RunLog
}

// Escalate runs the backfill round and, if still short, the emergency round.
// Candidates are only ever appended; a shortfall after both rounds is logged
// and tolerated. Round errors are logged and count as zero new candidates.
func (e *Escalator) Escalate(ctx context.Context, current Candidates, articles []domain.NormalizedArticle) Candidates {
	if len(current) >= articleFloor {
		return current
	}

	// Round 1: first backfillCap remaining articles, strict substantive filter.
	pool := remaining(articles, current)
	if len(pool) > backfillCap {
		pool = pool[:backfillCap]
	}

	needed := articleFloor - len(current)
	current = e.round(ctx, phaseBackfill, current, pool, substantiveChars, max(needed, backfillMinMargin))

	if len(current) >= articleFloor {
		return current
	}

	// Round 2: every remaining article, relaxed substantive filter.
	pool = remaining(articles, current)
	needed = articleFloor - len(current)
	current = e.round(ctx, phaseEmergency, current, pool, relaxedSubstantiveChars, needed+emergencyExtraMargin)

	if len(current) < articleFloor {
		observability.ResumeFloorMisses.Inc()
		e.log.Warn("No se alcanzó el mínimo de noticias tras las rondas de respaldo", map[string]any{
			logKeyCount: len(current),
			"floor":     articleFloor,
		})
	}

	return current
}

func (e *Escalator) round(ctx context.Context, phase string, current Candidates, pool []domain.NormalizedArticle, minChars, maxRequired int) Candidates {
	observability.ResumeEscalationRounds.WithLabelValues(phase).Inc()

	if len(pool) == 0 {
		e.log.Info("No quedan noticias para la ronda de respaldo", map[string]any{logKeyPhase: phase})
		return current
	}

	e.log.Info("Ronda de respaldo iniciada", map[string]any{
		logKeyPhase:   phase,
		logKeyCount:   len(current),
		"offered":     len(pool),
		"maxRequired": maxRequired,
	})

	got, err := e.sel.pick(ctx, phase, pool, minChars, 1, maxRequired)
	if err != nil {
		e.log.Warn("Falló la ronda de respaldo", map[string]any{
			logKeyPhase: phase,
			logKeyError: err.Error(),
		})

		return current
	}

	merged, dropped := current.Merge(got, phase, e.log)

	e.log.Info("Ronda de respaldo completada", map[string]any{
		logKeyPhase:      phase,
		"added":          len(merged) - len(current),
		logKeyDuplicates: dropped,
		logKeyCount:      len(merged),
	})

	return merged
}
