package db

import "time"

// Table names
const (
	tableOrganizationMembers = "organization_members"
	tableToolConfigs         = "tool_configs"
	tableAPIKeys             = "api_keys"
	tableLLMUsage            = "llm_usage"
)

// Sampling defaults applied when a tool config leaves them NULL.
const (
	DefaultTemperature float32 = 0.7
	DefaultTopP        float32 = 1.0
)

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection
	maxConnectionRetries = 10
)

// Database pool default constants
const (
	defaultMaxConns          int32         = 10
	defaultMinConns          int32         = 2
	defaultMaxConnIdleTime   time.Duration = 30 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute
)

const migrationLockID = 4242
