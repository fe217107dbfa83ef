package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/newsdesk/resume-service/internal/core/domain"
	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
	"github.com/newsdesk/resume-service/internal/core/llm"
	"github.com/newsdesk/resume-service/internal/platform/observability"
	"github.com/newsdesk/resume-service/internal/process/dedup"
	"github.com/newsdesk/resume-service/internal/process/filters"
)

// Stage is a state of the pipeline state machine.
type Stage string

// Pipeline stages, in order.
const (
	StageAuthenticating Stage = "authenticating"
	StageLoadingConfig  Stage = "loading_config"
	StageFiltering      Stage = "filtering"
	StageBranching      Stage = "branching"
	StageEscalating     Stage = "escalating"
	StageDownselecting  Stage = "downselecting"
	StageSummarizing    Stage = "summarizing"
	StageCompleted      Stage = "completed"
)

// PipelineError is returned when a run ends in the failed state.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("resume pipeline failed while %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Authenticator resolves the caller's session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Session, error)
}

// ConfigStore loads a tool configuration, falling back to the default one.
type ConfigStore interface {
	GetToolConfig(ctx context.Context, organizationID, tool string) (domain.ToolConfig, error)
}

// CredentialStore loads an organization's provider key.
type CredentialStore interface {
	GetAPIKey(ctx context.Context, organizationID, provider string) (string, error)
}

// CompletionFactory builds a request-scoped completion for a provider.
type CompletionFactory interface {
	NewCompletion(ctx context.Context, provider, model, apiKey, organizationID string) (Completion, error)
}

// RegistryCompletions adapts an llm.Registry to CompletionFactory.
type RegistryCompletions struct {
	Registry *llm.Registry
}

// NewCompletion implements CompletionFactory.
func (r RegistryCompletions) NewCompletion(ctx context.Context, provider, model, apiKey, organizationID string) (Completion, error) {
	client, err := r.Registry.Client(ctx, provider, model, apiKey, organizationID)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// Options tunes an Orchestrator.
type Options struct {
	ToolName         string
	Timeout          time.Duration
	Location         *time.Location
	ExcludedKeywords []string
}

// Orchestrator runs the generate-resume pipeline end to end.
type Orchestrator struct {
	auth        Authenticator
	configs     ConfigStore
	credentials CredentialStore
	completions CompletionFactory
	filter      *filters.Filterer
	normalizer  *Normalizer
	opts        Options
	logger      *zerolog.Logger
}

// New creates an Orchestrator.
func New(auth Authenticator, configs ConfigStore, credentials CredentialStore, completions CompletionFactory, opts Options, logger *zerolog.Logger) *Orchestrator {
	if opts.ToolName == "" {
		opts.ToolName = "generate-resume"
	}

	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	return &Orchestrator{
		auth:        auth,
		configs:     configs,
		credentials: credentials,
		completions: completions,
		filter:      filters.New(opts.ExcludedKeywords),
		normalizer:  NewNormalizer(opts.Location),
		opts:        opts,
		logger:      logger,
	}
}

// run is the state of one pipeline invocation. It is never shared.
type run struct {
	log          *RunLog
	stage        Stage
	stageStarted time.Time
	strategy     Strategy
	planned      bool
	started      time.Time
}

// Run executes the pipeline. The returned Result is never nil and always
// carries the log entries produced so far; on failure the error is a
// *PipelineError.
func (o *Orchestrator) Run(ctx context.Context, token string, req Request) (*Result, error) {
	r := &run{
		log:     NewRunLog(uuid.NewString(), o.logger),
		started: time.Now(),
	}

	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)

		defer cancel()
	}

	r.log.Info("Iniciando la generación del resumen", map[string]any{
		"articles": len(req.Content),
		"provider": req.SelectedModel.Provider,
		"model":    req.SelectedModel.Model,
		"manual":   req.Manual,
	})

	resume, err := o.execute(ctx, r, token, req)
	if err != nil {
		return o.fail(r, err)
	}

	r.enter(StageCompleted)
	observability.ResumeRuns.WithLabelValues(r.strategyLabel(), statusSuccess).Inc()
	r.log.Info("Resumen generado correctamente", map[string]any{
		"durationMs": time.Since(r.started).Milliseconds(),
	})

	resume.Logs = r.log.Entries()

	return resume, nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run, token string, req Request) (*Result, error) {
	r.enter(StageAuthenticating)

	session, err := o.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	r.log.SetOrganization(session.OrganizationID)
	r.enter(StageLoadingConfig)

	principal, selection, toolCfg, err := o.loadPrompts(ctx, session.OrganizationID)
	if err != nil {
		return nil, err
	}

	apiKey, err := o.credentials.GetAPIKey(ctx, session.OrganizationID, req.SelectedModel.Provider)
	if err != nil {
		return nil, err
	}

	completion, err := o.completions.NewCompletion(ctx, req.SelectedModel.Provider, req.SelectedModel.Model, apiKey, session.OrganizationID)
	if err != nil {
		return nil, err
	}

	if closer, ok := completion.(io.Closer); ok {
		defer func() {
			if cerr := closer.Close(); cerr != nil {
				o.logger.Warn().Err(cerr).Msg("failed to close completion client")
			}
		}()
	}

	o.checkDateRange(r.log, req.StartDate, req.EndDate)

	r.enter(StageFiltering)

	articles := o.prepare(r.log, req.Content)

	r.enter(StageBranching)

	selected, err := o.selectArticles(ctx, r, completion, selection, articles)
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		r.log.Warn("No quedan noticias seleccionadas, se genera el resumen sin noticias", map[string]any{
			"received": len(req.Content),
			"eligible": len(articles),
		})
	}

	observability.ResumeSelectedArticles.Observe(float64(len(selected)))
	r.enter(StageSummarizing)

	text, err := NewSummaryGenerator(completion).Summarize(ctx, principal, selected, llm.TextParams{
		Temperature: toolCfg.Temperature,
		TopP:        toolCfg.TopP,
	})
	if err != nil {
		return nil, err
	}

	return &Result{Resume: text, Strategy: r.strategy, Selected: selected}, nil
}

// loadPrompts fetches the tool config and extracts the two required prompts.
func (o *Orchestrator) loadPrompts(ctx context.Context, organizationID string) (principal, selection string, cfg domain.ToolConfig, err error) {
	cfg, err = o.configs.GetToolConfig(ctx, organizationID, o.opts.ToolName)
	if err != nil {
		return "", "", cfg, err
	}

	principal, okPrincipal := findPrompt(cfg.Prompts, PromptPrincipal)
	selection, okSelection := findPrompt(cfg.Prompts, PromptSelection)

	if !okPrincipal || !okSelection {
		return "", "", cfg, fmt.Errorf("%w: need %q and %q", apperrors.ErrMissingPrompts, PromptPrincipal, PromptSelection)
	}

	return principal, selection, cfg, nil
}

// findPrompt matches titles ignoring case and accents, so "Seleccion" finds "Selección".
func findPrompt(prompts []domain.Prompt, title string) (string, bool) {
	want := filters.Normalize(title)

	for _, p := range prompts {
		if filters.Normalize(p.Title) == want && p.Content != "" {
			return p.Content, true
		}
	}

	return "", false
}

// prepare filters, de-duplicates by link and normalizes the input articles.
func (o *Orchestrator) prepare(log *RunLog, content []domain.Article) []domain.NormalizedArticle {
	kept := o.filter.Filter(content)
	unique, duplicates := dedup.AppendUnique(nil, kept, func(a domain.Article) string { return a.Link }, sourceInput, log.Logger())

	log.Info("Noticias filtradas", map[string]any{
		"received":       len(content),
		"excluded":       len(content) - len(kept),
		logKeyDuplicates: duplicates,
		logKeyCount:      len(unique),
	})

	observability.ResumeInputArticles.Observe(float64(len(unique)))

	return o.normalizer.NormalizeAll(unique)
}

// selectArticles runs the planned strategy, escalation and downselection and
// returns the rehydrated final set.
func (o *Orchestrator) selectArticles(ctx context.Context, r *run, completion Completion, selectionPrompt string, articles []domain.NormalizedArticle) ([]domain.SelectedArticle, error) {
	plan := PlanFor(len(articles))
	r.strategy = plan.Strategy
	r.planned = true

	r.log.Info("Estrategia seleccionada", map[string]any{
		"strategy":  plan.Strategy.String(),
		logKeyCount: plan.ArticleCount,
		"batchSize": plan.BatchSize,
		"batches":   plan.Batches,
		"perBatch":  plan.PerBatch,
	})

	if plan.Strategy == StrategyDirectPass {
		out := make([]domain.SelectedArticle, 0, len(articles))
		for _, a := range articles {
			out = append(out, selectedFrom(a))
		}

		return out, nil
	}

	sel := &stageSelector{selector: NewSelector(completion), prompt: selectionPrompt, log: r.log}

	var candidates Candidates

	if plan.Strategy == StrategySingleBatch {
		got, err := sel.pick(ctx, phaseSingle, articles, substantiveChars, 1, plan.PerBatch)
		if err != nil {
			return nil, err
		}

		candidates = got
	} else {
		candidates = o.fanOut(ctx, r.log, sel, articles, plan)
	}

	r.log.Info("Selección inicial completada", map[string]any{logKeyCount: len(candidates)})

	if len(candidates) < articleFloor {
		r.enter(StageEscalating)
		candidates = (&Escalator{sel: sel, log: r.log}).Escalate(ctx, candidates, articles)
	}

	idx := indexArticles(articles)

	if len(candidates) > targetCount {
		r.enter(StageDownselecting)
		candidates = (&Downselector{sel: sel, log: r.log}).Downselect(ctx, candidates, idx)
	}

	return idx.rehydrate(candidates), nil
}

// fanOut runs one selection per batch concurrently and waits for all of them.
// A failed batch contributes no candidates and does not cancel its siblings.
// Results are merged in batch order.
func (o *Orchestrator) fanOut(ctx context.Context, log *RunLog, sel *stageSelector, articles []domain.NormalizedArticle, plan Plan) Candidates {
	batches := Chunk(articles, plan.BatchSize)
	results := make([]Candidates, len(batches))

	var g errgroup.Group

	for i, batch := range batches {
		g.Go(func() error {
			got, err := sel.pick(ctx, phaseMulti, batch, substantiveChars, 1, plan.PerBatch)
			if err != nil {
				log.Warn("Falló la selección de un lote, se continúa sin sus noticias", map[string]any{
					logKeyBatch: i + 1,
					logKeyError: err.Error(),
				})

				return nil
			}

			results[i] = got

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // batch goroutines never return errors

	var (
		merged     Candidates
		duplicates int
	)

	for _, got := range results {
		var dropped int
		merged, dropped = merged.Merge(got, phaseMulti, log)
		duplicates += dropped
	}

	if duplicates > 0 {
		log.Warn("Candidatos repetidos entre lotes descartados", map[string]any{
			logKeyPhase:      phaseMulti,
			logKeyDuplicates: duplicates,
		})
	}

	return merged
}

// checkDateRange logs the advisory date range. It never fails the run.
func (o *Orchestrator) checkDateRange(log *RunLog, startDate, endDate string) {
	if startDate == "" || endDate == "" {
		return
	}

	start, errStart := dateparse.ParseAny(startDate)
	end, errEnd := dateparse.ParseAny(endDate)

	if errStart != nil || errEnd != nil {
		log.Warn("No se pudo interpretar el rango de fechas", map[string]any{
			"startDate": startDate,
			"endDate":   endDate,
		})

		return
	}

	days := end.Sub(start).Hours() / hoursPerDay

	log.Info("Rango de fechas solicitado", map[string]any{
		"startDate": start.Format(time.RFC3339),
		"endDate":   end.Format(time.RFC3339),
		"days":      days,
	})

	if days > maxAdvisoryRangeDays {
		log.Warn("El rango de fechas supera el máximo recomendado", map[string]any{
			"days":    days,
			"maxDays": maxAdvisoryRangeDays,
		})
	}
}

func (o *Orchestrator) fail(r *run, err error) (*Result, error) {
	errData := map[string]any{
		logKeyStage: string(r.stage),
		logKeyError: err.Error(),
	}

	if errors.Is(err, context.DeadlineExceeded) {
		errData["timeout"] = true
	}

	r.log.Error("La generación del resumen ha fallado", errData)
	observability.ResumeRuns.WithLabelValues(r.strategyLabel(), statusFailed).Inc()

	return &Result{Logs: r.log.Entries(), Strategy: r.strategy}, &PipelineError{Stage: r.stage, Err: err}
}

func (r *run) enter(stage Stage) {
	if r.stage != "" {
		observability.ResumeStageDuration.WithLabelValues(string(r.stage)).Observe(time.Since(r.stageStarted).Seconds())
	}

	r.stage = stage
	r.stageStarted = time.Now()
}

func (r *run) strategyLabel() string {
	if !r.planned {
		return "none"
	}

	return r.strategy.String()
}
