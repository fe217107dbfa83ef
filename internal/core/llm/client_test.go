package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

const testSchema = `{
	"type": "object",
	"required": ["selected"],
	"properties": {
		"selected": {"type": "array", "minItems": 1, "maxItems": 2}
	}
}`

type mockLLM struct {
	mock.Mock
	closed bool
}

func (m *mockLLM) Name() ProviderName { return "fake" }

func (m *mockLLM) CompleteJSON(_ context.Context, prompt, model string, _ int) (Completion, error) {
	args := m.Called(prompt, model)

	return args.Get(0).(Completion), args.Error(1)
}

func (m *mockLLM) CompleteText(_ context.Context, prompt, model string, params TextParams) (Completion, error) {
	args := m.Called(prompt, model, params)

	return args.Get(0).(Completion), args.Error(1)
}

func (m *mockLLM) Close() error {
	m.closed = true
	return nil
}

func newTestClient(p Provider, attempts int) *Client {
	logger := zerolog.Nop()

	return &Client{
		provider: p,
		name:     "fake",
		model:    "fake-model",
		breaker:  NewCircuitBreaker("fake/org", CircuitBreakerConfig{Threshold: 3}, &logger),
		cfg: RegistryConfig{
			Retry:       RetryConfig{MaxAttempts: attempts},
			CallTimeout: defaultCallTimeout,
			MaxTokens:   defaultMaxTokens,
		},
		usage:  NoopUsageRecorder(),
		logger: &logger,
	}
}

func TestClient_GenerateStructured_RetriesFormatFailures(t *testing.T) {
	p := &mockLLM{}
	p.On("CompleteJSON", "prompt", "fake-model").Return(Completion{Text: "not json"}, nil).Once()
	p.On("CompleteJSON", "prompt", "fake-model").Return(Completion{Text: `{"selected":[]}`}, nil).Once()
	p.On("CompleteJSON", "prompt", "fake-model").Return(Completion{Text: "```json\n{\"selected\":[1]}\n```"}, nil).Once()

	c := newTestClient(p, 5)

	out, err := c.GenerateStructured(context.Background(), "prompt", testSchema)

	require.NoError(t, err)
	assert.JSONEq(t, `{"selected":[1]}`, string(out))
	p.AssertNumberOfCalls(t, "CompleteJSON", 3)
	assert.False(t, c.breaker.IsOpen(), "format failures must not trip the circuit")
}

func TestClient_GenerateStructured_ExhaustsBudget(t *testing.T) {
	p := &mockLLM{}
	p.On("CompleteJSON", "prompt", "fake-model").Return(Completion{Text: `{"selected":[1,2,3]}`}, nil)

	c := newTestClient(p, 5)

	_, err := c.GenerateStructured(context.Background(), "prompt", testSchema)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSchemaValidation)
	p.AssertNumberOfCalls(t, "CompleteJSON", 5)
}

func TestClient_CircuitOpensAndFailsFast(t *testing.T) {
	p := &mockLLM{}
	p.On("CompleteJSON", "prompt", "fake-model").Return(Completion{}, errors.New("503"))

	c := newTestClient(p, 5)

	_, err := c.GenerateStructured(context.Background(), "prompt", testSchema)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCircuitBreakerOpen)
	p.AssertNumberOfCalls(t, "CompleteJSON", 3)
	assert.True(t, c.breaker.IsOpen())
}

func TestClient_GenerateText(t *testing.T) {
	params := TextParams{Temperature: 0.7, TopP: 0.9}
	sent := params
	sent.MaxTokens = defaultMaxTokens

	p := &mockLLM{}
	p.On("CompleteText", "prompt", "fake-model", sent).Return(Completion{}, errors.New("timeout")).Once()
	p.On("CompleteText", "prompt", "fake-model", sent).Return(Completion{Text: "resumen"}, nil).Once()

	c := newTestClient(p, 5)

	out, err := c.GenerateText(context.Background(), "prompt", params)

	require.NoError(t, err)
	assert.Equal(t, "resumen", out)
	p.AssertExpectations(t)
}

func TestClient_GenerateText_EmptyIsError(t *testing.T) {
	p := &mockLLM{}
	p.On("CompleteText", "prompt", "fake-model", mock.Anything).Return(Completion{Text: "  "}, nil)

	c := newTestClient(p, 2)

	_, err := c.GenerateText(context.Background(), "prompt", TextParams{})

	assert.ErrorIs(t, err, apperrors.ErrEmptyResponse)
	p.AssertNumberOfCalls(t, "CompleteText", 2)
}

func TestClient_Close(t *testing.T) {
	p := &mockLLM{}
	c := newTestClient(p, 1)

	require.NoError(t, c.Close())
	assert.True(t, p.closed)
}
