package llm

import "time"

// Task labels used for metrics and usage accounting.
const (
	TaskSelect    = "select"
	TaskSummarize = "summarize"
)

// Status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Default models, used when the request names none.
const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-haiku-4-5"
	defaultGoogleModel    = "gemini-2.5-flash"
)

// Error message templates
const (
	errRateLimiter           = "rate limiter: %w"
	errOpenAIChatCompletion  = "openai chat completion: %w"
	errAnthropicMessages     = "anthropic messages: %w"
	errGoogleGenAICompletion = "google genai completion: %w"
)

// Log key strings
const (
	logKeyProvider = "provider"
	logKeyModel    = "model"
	logKeyTask     = "task"
	logKeyAttempt  = "attempt"
	logKeyOrg      = "organization_id"
)

const (
	rateLimiterBurst      = 5
	defaultMaxTokens      = 4096
	defaultCallTimeout    = 90 * time.Second
	defaultMaxAttempts    = 5
	defaultInitialDelay   = 500 * time.Millisecond
	delayMultiplier       = 2
	maxRetryDelay         = 10 * time.Second
	defaultCircuitLimit   = 5
	defaultCircuitTimeout = time.Minute
	usageStorageTimeout   = 5 * time.Second
	contentTypeText       = "text"
	mimeTypeJSON          = "application/json"
	jsonOnlyInstruction   = "Responde únicamente con un objeto JSON válido, sin texto adicional."
)
