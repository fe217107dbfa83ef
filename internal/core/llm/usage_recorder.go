package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsdesk/resume-service/internal/platform/observability"
)

// UsageStore persists per-organization token usage.
type UsageStore interface {
	IncrementLLMUsage(ctx context.Context, organizationID, provider, model, task string, promptTokens, completionTokens int) error
}

// UsageRecorder records token usage for LLM requests.
// This interface allows for dependency injection and easier testing.
type UsageRecorder interface {
	RecordTokenUsage(organizationID, provider, model, task string, usage Usage, success bool)
}

type usageRecorder struct {
	usageStore   UsageStore
	writeTimeout time.Duration
	logger       *zerolog.Logger
}

// NewUsageRecorder creates a recorder that updates metrics and, when store is
// non-nil, persists successful calls in the background.
func NewUsageRecorder(store UsageStore, writeTimeout time.Duration, logger *zerolog.Logger) UsageRecorder {
	if writeTimeout <= 0 {
		writeTimeout = usageStorageTimeout
	}

	return &usageRecorder{
		usageStore:   store,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// RecordTokenUsage records token usage metrics for an LLM request.
func (r *usageRecorder) RecordTokenUsage(organizationID, provider, model, task string, usage Usage, success bool) {
	recordTokenMetrics(provider, model, task, usage, success)
	r.persistUsageToDatabase(organizationID, provider, model, task, usage, success)
}

func recordTokenMetrics(provider, model, task string, usage Usage, success bool) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}

	observability.LLMRequests.WithLabelValues(provider, model, task, status).Inc()

	if usage.PromptTokens > 0 {
		observability.LLMTokensPrompt.WithLabelValues(provider, model, task).Add(float64(usage.PromptTokens))
	}

	if usage.CompletionTokens > 0 {
		observability.LLMTokensCompletion.WithLabelValues(provider, model, task).Add(float64(usage.CompletionTokens))
	}
}

// persistUsageToDatabase stores usage asynchronously. Storage is best-effort
// and never fails the LLM request.
func (r *usageRecorder) persistUsageToDatabase(organizationID, provider, model, task string, usage Usage, success bool) {
	if r.usageStore == nil || !success || organizationID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()

		err := r.usageStore.IncrementLLMUsage(ctx, organizationID, provider, model, task, usage.PromptTokens, usage.CompletionTokens)
		if err != nil && r.logger != nil {
			r.logger.Warn().Err(err).
				Str(logKeyOrg, organizationID).
				Str(logKeyProvider, provider).
				Msg("failed to persist LLM usage")
		}
	}()
}

// noopUsageRecorder is a no-op implementation for testing or when usage tracking is disabled.
type noopUsageRecorder struct{}

// NoopUsageRecorder returns a no-op implementation of UsageRecorder.
func NoopUsageRecorder() UsageRecorder {
	return &noopUsageRecorder{}
}

// RecordTokenUsage does nothing (no-op implementation).
func (r *noopUsageRecorder) RecordTokenUsage(_, _, _, _ string, _ Usage, _ bool) {
	// No-op
}
