package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
	"github.com/newsdesk/resume-service/internal/platform/observability"
)

// Client wraps one provider with the retry budget, circuit breaker, rate
// limiter, per-call timeout and usage accounting. It is request-scoped.
type Client struct {
	provider       Provider
	name           ProviderName
	model          string
	organizationID string
	breaker        *CircuitBreaker
	limiter        *rate.Limiter
	cfg            RegistryConfig
	usage          UsageRecorder
	logger         *zerolog.Logger
}

// ProviderName returns the resolved provider.
func (c *Client) ProviderName() ProviderName {
	return c.name
}

// GenerateStructured returns a JSON document that validates against schema.
// Malformed or non-conforming responses are retried within the attempt budget.
func (c *Client) GenerateStructured(ctx context.Context, prompt, schema string) (json.RawMessage, error) {
	var out json.RawMessage

	err := c.call(ctx, TaskSelect, func(callCtx context.Context) (Completion, error) {
		completion, err := c.provider.CompleteJSON(callCtx, prompt, c.model, c.cfg.MaxTokens)
		if err != nil {
			return completion, err
		}

		doc := extractJSON(completion.Text)
		if doc == "" {
			return completion, apperrors.ErrEmptyResponse
		}

		if err := ValidateJSON(schema, []byte(doc)); err != nil {
			return completion, formatError{err}
		}

		out = json.RawMessage(doc)

		return completion, nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// GenerateText returns the model's free-text answer.
func (c *Client) GenerateText(ctx context.Context, prompt string, params TextParams) (string, error) {
	if params.MaxTokens <= 0 {
		params.MaxTokens = c.cfg.MaxTokens
	}

	var out string

	err := c.call(ctx, TaskSummarize, func(callCtx context.Context) (Completion, error) {
		completion, err := c.provider.CompleteText(callCtx, prompt, c.model, params)
		if err != nil {
			return completion, err
		}

		if strings.TrimSpace(completion.Text) == "" {
			return completion, apperrors.ErrEmptyResponse
		}

		out = completion.Text

		return completion, nil
	})
	if err != nil {
		return "", err
	}

	return out, nil
}

// Close releases provider resources when the provider holds any.
func (c *Client) Close() error {
	if closer, ok := c.provider.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing %s provider: %w", c.name, err)
		}
	}

	return nil
}

// formatError marks a response that arrived but could not be used. It is retried
// but does not count against the provider's circuit.
type formatError struct {
	err error
}

func (e formatError) Error() string { return e.err.Error() }
func (e formatError) Unwrap() error { return e.err }

func (c *Client) call(ctx context.Context, task string, fn func(ctx context.Context) (Completion, error)) error {
	provider := string(c.name)

	return withRetry(ctx, c.cfg.Retry, func(attempt int) error {
		if err := c.breaker.CheckCircuit(); err != nil {
			return err
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf(errRateLimiter, err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()

		start := time.Now()
		completion, err := fn(callCtx)
		model := completion.Model

		if model == "" {
			model = c.model
		}

		observability.LLMRequestLatency.WithLabelValues(provider, model, task).Observe(time.Since(start).Seconds())
		c.usage.RecordTokenUsage(c.organizationID, provider, model, task, completion.Usage, err == nil) //nolint:contextcheck // fire-and-forget

		if err == nil {
			c.breaker.RecordSuccess()
			return nil
		}

		var formatErr formatError
		if !errors.As(err, &formatErr) && !errors.Is(err, apperrors.ErrEmptyResponse) {
			if c.breaker.RecordFailure() {
				observability.LLMCircuitBreakerOpens.WithLabelValues(provider).Inc()
			}
		}

		c.logger.Warn().
			Err(err).
			Str(logKeyProvider, provider).
			Str(logKeyModel, model).
			Str(logKeyTask, task).
			Str(logKeyOrg, c.organizationID).
			Int(logKeyAttempt, attempt).
			Msg("LLM call failed")

		return err
	}, func(_ int, _ error) {
		observability.LLMRetries.WithLabelValues(provider, task).Inc()
	})
}
