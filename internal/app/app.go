// Package app wires the resume service together.
//
// The App type exposes the operational modes of the binary:
//
//   - Serve: HTTP API for generate-resume plus health and metrics endpoints
//   - Run: one local pipeline run over a JSON file or a feed, printed as JSON
//   - Migrate: apply the database migrations and exit
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/newsdesk/resume-service/internal/auth"
	"github.com/newsdesk/resume-service/internal/core/llm"
	"github.com/newsdesk/resume-service/internal/platform/config"
	"github.com/newsdesk/resume-service/internal/platform/observability"
	"github.com/newsdesk/resume-service/internal/process/resume"
	"github.com/newsdesk/resume-service/internal/server"
	db "github.com/newsdesk/resume-service/internal/storage"
)

var errDatabaseRequired = errors.New("database connection required")

// App holds the configuration and shared dependencies of one process.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates an App. database may be nil for the local run mode.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// PoolOptions maps the environment settings to database pool options.
func PoolOptions(cfg *config.Config) db.PoolOptions {
	return db.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}
}

// Migrate applies the pending migrations.
func (a *App) Migrate(ctx context.Context) error {
	if a.database == nil {
		return errDatabaseRequired
	}

	if err := a.database.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	a.logger.Info().Msg("migrations applied")

	return nil
}

// RunServer serves the generate-resume API until ctx is cancelled.
func (a *App) RunServer(ctx context.Context) error {
	if a.database == nil {
		return errDatabaseRequired
	}

	usage := llm.NewUsageRecorder(a.database, a.cfg.LLMUsageWriteTimeout, a.logger)

	orchestrator := resume.New(
		auth.NewSessionAuthenticator(a.cfg.JWTSecret, a.database),
		a.database,
		a.database,
		resume.RegistryCompletions{Registry: a.newRegistry(usage)},
		a.pipelineOptions(),
		a.logger,
	)

	api := server.New(orchestrator, a.cfg.MaxRequestBodyBytes, a.logger)

	return observability.NewServerWithAPI(a.database, a.cfg.HTTPPort, api.Routes(), a.logger).Start(ctx)
}

func (a *App) newRegistry(usage llm.UsageRecorder) *llm.Registry {
	registry := llm.NewRegistry(llm.RegistryConfigFrom(a.cfg), usage, a.logger)
	llm.RegisterDefaults(registry, a.cfg.LLMMockEnabled)

	return registry
}

func (a *App) pipelineOptions() resume.Options {
	return resume.Options{
		ToolName:         a.cfg.ResumeToolName,
		Timeout:          a.cfg.PipelineTimeout,
		Location:         a.cfg.Location(),
		ExcludedKeywords: a.cfg.ExcludedTitleKeywords,
	}
}
