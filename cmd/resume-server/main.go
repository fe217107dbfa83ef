package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsdesk/resume-service/internal/app"
	"github.com/newsdesk/resume-service/internal/platform/config"
	db "github.com/newsdesk/resume-service/internal/storage"
)

type flags struct {
	mode     string
	input    string
	feed     string
	org      string
	prompts  string
	provider string
	model    string
}

func main() {
	var f flags

	flag.StringVar(&f.mode, "mode", "serve", "Service mode (serve, run, migrate)")
	flag.StringVar(&f.input, "input", "", "JSON file with a request body or an article array (run mode)")
	flag.StringVar(&f.feed, "feed", "", "WordPress feed URL to summarize (run mode)")
	flag.StringVar(&f.org, "org", "", "Organization ID for the local run")
	flag.StringVar(&f.prompts, "prompts", "", "JSON file with the tool prompts (run mode)")
	flag.StringVar(&f.provider, "provider", "", "LLM provider override (run mode)")
	flag.StringVar(&f.model, "model", "", "LLM model override (run mode)")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runMode(ctx, f); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Print("application stopped")
			return
		}

		log.Fatalf("application error: %v", err)
	}
}

func runMode(ctx context.Context, f flags) error {
	switch f.mode {
	case "serve", "migrate":
		return runWithDatabase(ctx, f.mode)
	case "run":
		cfg, err := config.LoadLocal()
		if err != nil {
			return err
		}

		logger := newLogger(cfg.AppEnv)

		return app.New(cfg, nil, &logger).RunOnce(ctx, app.RunOptions{
			InputPath:      f.input,
			FeedURL:        f.feed,
			PromptsPath:    f.prompts,
			OrganizationID: f.org,
			Provider:       f.provider,
			Model:          f.model,
			Output:         os.Stdout,
		})
	default:
		log.Fatalf("Usage: %s --mode=[serve|run|migrate]", os.Args[0])

		return nil
	}
}

func runWithDatabase(ctx context.Context, mode string) error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, app.PoolOptions(cfg), &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	application := app.New(cfg, database, &logger)

	if err := application.Migrate(ctx); err != nil {
		return err
	}

	if mode == "migrate" {
		return nil
	}

	return application.RunServer(ctx)
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
