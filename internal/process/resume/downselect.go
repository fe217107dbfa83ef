package resume

import (
	"context"

	"github.com/newsdesk/resume-service/internal/platform/observability"
)

// Downselector trims an oversized candidate pool to targetCount.
type Downselector struct {
	sel *stageSelector
	log *RunLog
}

// Downselect returns candidates unchanged when there are at most targetCount.
// Otherwise one more selection call picks targetCount of them; when that call
// fails or under-delivers, the first targetCount candidates are used instead.
func (d *Downselector) Downselect(ctx context.Context, candidates Candidates, idx articleIndex) Candidates {
	if len(candidates) <= targetCount {
		return candidates
	}

	got, err := d.sel.pick(ctx, phaseDownselect, idx.lookup(candidates), substantiveChars,
		min(len(candidates), targetCount), targetCount)

	if err != nil || len(got) < targetCount {
		observability.ResumeDownselectFallbacks.Inc()

		data := map[string]any{
			"candidates": len(candidates),
			"returned":   len(got),
			"target":     targetCount,
		}
		if err != nil {
			data[logKeyError] = err.Error()
		}

		d.log.Error("La selección final no devolvió suficientes noticias, se usan las primeras", data)

		return append(Candidates(nil), candidates[:targetCount]...)
	}

	d.log.Info("Selección final completada", map[string]any{logKeyCount: len(got)})

	return got
}
