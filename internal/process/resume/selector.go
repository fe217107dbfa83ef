package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/newsdesk/resume-service/internal/core/domain"
	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
	"github.com/newsdesk/resume-service/internal/core/llm"
	"github.com/newsdesk/resume-service/internal/platform/observability"
	"github.com/newsdesk/resume-service/internal/process/dedup"
)

const selectionPromptTemplate = `%s

Selecciona entre %d y %d noticias de la siguiente lista según su importancia.
Responde con un objeto JSON con la forma {"selected": [{"link": "...", "title": "...", "reason": "..."}]}.
Copia el enlace (Link) de cada noticia exactamente como aparece en la lista.

Noticias:

%s`

// Completion is the capability set a pipeline run needs from an LLM provider.
type Completion interface {
	GenerateStructured(ctx context.Context, prompt, schema string) (json.RawMessage, error)
	GenerateText(ctx context.Context, prompt string, params llm.TextParams) (string, error)
}

// SelectionRequest is one importance selection call.
type SelectionRequest struct {
	BatchText       string
	SelectionPrompt string
	MinRequired     int
	MaxRequired     int
}

// Selector picks the most important articles of a batch.
type Selector struct {
	completion Completion
}

// NewSelector creates a Selector backed by completion.
func NewSelector(completion Completion) *Selector {
	return &Selector{completion: completion}
}

// Select runs one structured selection call. The response is checked against
// SelectionSchema even when the completion already enforces it. Any failure is
// ErrSelectionFailed except ErrUnsupportedProvider, which passes through.
// The reason field is discarded.
func (s *Selector) Select(ctx context.Context, req SelectionRequest) ([]domain.SelectionCandidate, error) {
	minRequired := max(1, req.MinRequired)
	maxRequired := max(minRequired, req.MaxRequired)
	schema := SelectionSchema(minRequired, maxRequired)
	prompt := fmt.Sprintf(selectionPromptTemplate, req.SelectionPrompt, minRequired, maxRequired, req.BatchText)

	raw, err := s.completion.GenerateStructured(ctx, prompt, schema)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnsupportedProvider) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", apperrors.ErrSelectionFailed, err)
	}

	if err := llm.ValidateJSON(schema, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSelectionFailed, err)
	}

	var resp selectionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding selection: %w", apperrors.ErrSelectionFailed, err)
	}

	out := make([]domain.SelectionCandidate, 0, len(resp.Selected))
	for _, item := range resp.Selected {
		out = append(out, domain.SelectionCandidate{Link: item.Link, Title: item.Title})
	}

	return out, nil
}

// stageSelector runs selection calls for the pipeline stages and keeps the
// results inside the offered batch.
type stageSelector struct {
	selector *Selector
	prompt   string
	log      *RunLog
}

// pick offers the substantive articles of offered to the selector. An empty
// batch skips the call and yields no candidates. Returned candidates are
// limited to offered links, carry the source title and are link-unique.
func (s *stageSelector) pick(ctx context.Context, phase string, offered []domain.NormalizedArticle, minChars, minRequired, maxRequired int) (Candidates, error) {
	text, included := buildBatchText(offered, minChars)
	if len(included) == 0 {
		s.log.Warn("Lote sin noticias con contenido suficiente, se omite la selección", map[string]any{
			logKeyPhase: phase,
			"offered":   len(offered),
			"minChars":  minChars,
		})

		return nil, nil
	}

	selected, err := s.selector.Select(ctx, SelectionRequest{
		BatchText:       text,
		SelectionPrompt: s.prompt,
		MinRequired:     min(minRequired, len(included)),
		MaxRequired:     maxRequired,
	})
	if err != nil {
		observability.ResumeSelectionCalls.WithLabelValues(phase, statusError).Inc()
		return nil, err
	}

	observability.ResumeSelectionCalls.WithLabelValues(phase, statusSuccess).Inc()

	idx := indexArticles(included)
	accepted := make([]domain.SelectionCandidate, 0, len(selected))

	for _, c := range selected {
		a, ok := idx[c.Link]
		if !ok {
			s.log.Warn("Enlace desconocido descartado de la selección", map[string]any{
				logKeyPhase: phase,
				"link":      c.Link,
			})

			continue
		}

		accepted = append(accepted, domain.SelectionCandidate{Link: a.Link, Title: a.PlainTitle})
	}

	unique, dropped := dedup.AppendUnique(nil, accepted, candidateLink, phase, s.log.Logger())
	if dropped > 0 {
		s.log.Warn("Enlaces repetidos descartados de la selección", map[string]any{
			logKeyPhase:      phase,
			logKeyDuplicates: dropped,
		})
	}

	return Candidates(unique), nil
}
