package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
	"github.com/newsdesk/resume-service/internal/platform/config"
)

// RegistryConfig holds the call policy shared by every client the registry builds.
type RegistryConfig struct {
	Retry        RetryConfig
	Circuit      CircuitBreakerConfig
	CallTimeout  time.Duration
	RateLimitRPS float64
	MaxTokens    int
}

// RegistryConfigFrom maps environment settings to a RegistryConfig.
func RegistryConfigFrom(cfg *config.Config) RegistryConfig {
	return RegistryConfig{
		Retry: RetryConfig{
			MaxAttempts:  cfg.LLMMaxAttempts,
			InitialDelay: cfg.LLMRetryInitialDelay,
		},
		Circuit: CircuitBreakerConfig{
			Threshold:  cfg.LLMCircuitThreshold,
			ResetAfter: cfg.LLMCircuitTimeout,
		},
		CallTimeout:  cfg.LLMCallTimeout,
		RateLimitRPS: cfg.LLMRateLimitRPS,
		MaxTokens:    cfg.LLMMaxTokens,
	}
}

// Registry maps provider names to factories and owns the per-provider call
// guards (circuit breakers and rate limiters) that outlive a single request.
type Registry struct {
	mu              sync.Mutex
	factories       map[ProviderName]Factory
	circuitBreakers map[string]*CircuitBreaker
	rateLimiters    map[ProviderName]*rate.Limiter
	cfg             RegistryConfig
	usage           UsageRecorder
	logger          *zerolog.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(cfg RegistryConfig, usage UsageRecorder, logger *zerolog.Logger) *Registry {
	if usage == nil {
		usage = NoopUsageRecorder()
	}

	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	return &Registry{
		factories:       make(map[ProviderName]Factory),
		circuitBreakers: make(map[string]*CircuitBreaker),
		rateLimiters:    make(map[ProviderName]*rate.Limiter),
		cfg:             cfg,
		usage:           usage,
		logger:          logger,
	}
}

// RegisterDefaults registers the OpenAI, Anthropic and Google factories, plus
// the mock provider when enabled.
func RegisterDefaults(r *Registry, mockEnabled bool) {
	r.Register(ProviderOpenAI, NewOpenAIFactory(""))
	r.Register(ProviderAnthropic, NewAnthropicFactory(""))
	r.Register(ProviderGoogle, NewGoogleFactory())

	if mockEnabled {
		r.Register(ProviderMock, NewMockFactory())
	}

	names := r.Providers()
	enabled := make([]string, 0, len(names))

	for _, name := range names {
		enabled = append(enabled, string(name))
	}

	r.logger.Info().Strs("providers", enabled).Msg("LLM providers ready")
}

// Register adds a provider factory to the registry.
func (r *Registry) Register(name ProviderName, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory

	rps := r.cfg.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}

	r.rateLimiters[name] = rate.NewLimiter(rate.Limit(rps), rateLimiterBurst)

	r.logger.Info().Str(logKeyProvider, string(name)).Msg("registered LLM provider")
}

// Providers returns the registered provider names in sorted order.
func (r *Registry) Providers() []ProviderName {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]ProviderName, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// Provider resolves a provider string. Unknown or unregistered names fail with
// ErrUnsupportedProvider here and nowhere else.
func (r *Registry) Provider(name string) (ProviderName, Factory, error) {
	parsed, err := ParseProviderName(name)
	if err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	factory, ok := r.factories[parsed]
	r.mu.Unlock()

	if !ok {
		return "", nil, fmt.Errorf("%w: %q is not enabled", apperrors.ErrUnsupportedProvider, name)
	}

	return parsed, factory, nil
}

// Client builds a request-scoped client for one organization's credentials.
func (r *Registry) Client(ctx context.Context, providerName, model, apiKey, organizationID string) (*Client, error) {
	name, factory, err := r.Provider(providerName)
	if err != nil {
		return nil, err
	}

	provider, err := factory(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", name, err)
	}

	return &Client{
		provider:       provider,
		name:           name,
		model:          model,
		organizationID: organizationID,
		breaker:        r.circuitBreaker(name, organizationID),
		limiter:        r.rateLimiter(name),
		cfg:            r.cfg,
		usage:          r.usage,
		logger:         r.logger,
	}, nil
}

// circuitBreaker returns the breaker for a provider and organization, creating it on first use.
// Keying by organization keeps one tenant's bad key from blocking the others.
func (r *Registry) circuitBreaker(name ProviderName, organizationID string) *CircuitBreaker {
	key := string(name) + "/" + organizationID

	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.circuitBreakers[key]
	if !ok {
		cb = NewCircuitBreaker(key, r.cfg.Circuit, r.logger)
		r.circuitBreakers[key] = cb
	}

	return cb
}

func (r *Registry) rateLimiter(name ProviderName) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rateLimiters[name]
}
