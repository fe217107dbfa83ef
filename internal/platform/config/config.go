package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Required settings that may arrive under an alias.
var (
	ErrMissingPostgresDSN = errors.New("POSTGRES_DSN (or DATABASE_URL) is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET (or SUPABASE_JWT_SECRET) is required")
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	JWTSecret   string `env:"JWT_SECRET"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// LLM providers
	LLMRateLimitRPS       float64       `env:"LLM_RATE_LIMIT_RPS" envDefault:"2"`
	LLMMaxAttempts        int           `env:"LLM_MAX_ATTEMPTS" envDefault:"5"`
	LLMRetryInitialDelay  time.Duration `env:"LLM_RETRY_INITIAL_DELAY" envDefault:"500ms"`
	LLMCallTimeout        time.Duration `env:"LLM_CALL_TIMEOUT" envDefault:"90s"`
	LLMCircuitThreshold   int           `env:"LLM_CIRCUIT_THRESHOLD" envDefault:"5"`
	LLMCircuitTimeout     time.Duration `env:"LLM_CIRCUIT_TIMEOUT" envDefault:"1m"`
	LLMMaxTokens          int           `env:"LLM_MAX_TOKENS" envDefault:"4096"`
	LLMMockEnabled        bool          `env:"LLM_MOCK_ENABLED" envDefault:"false"`
	LLMUsageWriteTimeout  time.Duration `env:"LLM_USAGE_WRITE_TIMEOUT" envDefault:"5s"`
	ResumeToolName        string        `env:"RESUME_TOOL_NAME" envDefault:"generate-resume"`
	PipelineTimeout       time.Duration `env:"PIPELINE_TIMEOUT" envDefault:"5m"`
	DateLocation          string        `env:"DATE_LOCATION" envDefault:"Europe/Madrid"`
	FeedFetchTimeout      time.Duration `env:"FEED_FETCH_TIMEOUT" envDefault:"30s"`
	MaxRequestBodyBytes   int64         `env:"MAX_REQUEST_BODY_BYTES" envDefault:"10485760"`
	ExcludedTitleKeywords []string      `env:"EXCLUDED_TITLE_KEYWORDS" envSeparator:","`
}

// Load reads the service configuration. The database DSN and the JWT secret
// are required.
func Load() (*Config, error) {
	cfg, err := LoadLocal()
	if err != nil {
		return nil, err
	}

	if cfg.PostgresDSN == "" {
		return nil, ErrMissingPostgresDSN
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

// LoadLocal reads the configuration without requiring the server-only
// settings. The CLI run mode uses it.
func LoadLocal() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyAliases(cfg)

	return cfg, nil
}

// Location returns the configured time zone for long date formatting,
// falling back to UTC when the name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DateLocation)
	if err != nil {
		return time.UTC
	}

	return loc
}

// applyAliases honours the variable names used by the dashboard deployment.
func applyAliases(cfg *Config) {
	if !hasEnv("JWT_SECRET") {
		setStringFromEnv("SUPABASE_JWT_SECRET", &cfg.JWTSecret)
	}

	if !hasEnv("POSTGRES_DSN") {
		setStringFromEnv("DATABASE_URL", &cfg.PostgresDSN)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}
