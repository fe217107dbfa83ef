package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("openai/org", CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Minute}, nil)
	cb.now = func() time.Time { return now }

	assert.NoError(t, cb.CheckCircuit())
	assert.False(t, cb.RecordFailure())
	assert.True(t, cb.RecordFailure(), "second failure opens the circuit")
	assert.ErrorIs(t, cb.CheckCircuit(), apperrors.ErrCircuitBreakerOpen)

	now = now.Add(2 * time.Minute)
	assert.False(t, cb.IsOpen())

	cb.RecordSuccess()
	assert.False(t, cb.RecordFailure())

	cb.Reset()
	assert.NoError(t, cb.CheckCircuit())
}

func TestWithRetry(t *testing.T) {
	transient := errors.New("transient")

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{name: "first try", errs: []error{nil}, wantCalls: 1},
		{name: "recovers", errs: []error{transient, transient, nil}, wantCalls: 3},
		{name: "exhausted", errs: []error{transient, transient, transient, transient, transient}, wantCalls: 5, wantErr: transient},
		{name: "unsupported is permanent", errs: []error{apperrors.ErrUnsupportedProvider}, wantCalls: 1, wantErr: apperrors.ErrUnsupportedProvider},
		{name: "open circuit is permanent", errs: []error{apperrors.ErrCircuitBreakerOpen}, wantCalls: 1, wantErr: apperrors.ErrCircuitBreakerOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			retries := 0

			err := withRetry(context.Background(), RetryConfig{MaxAttempts: 5}, func(int) error {
				e := tt.errs[calls]
				calls++

				return e
			}, func(int, error) { retries++ })

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantCalls-1, retries)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWithRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := withRetry(ctx, RetryConfig{MaxAttempts: 5}, func(int) error {
		calls++
		cancel()

		return context.Canceled
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
