// Package cli provides common process bootstrap shared by cmd/fintrack,
// cmd/fintrack-worker and cmd/fintrackctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/repository"
	"fintrack/internal/services"
)

// SetupLogger initializes structured logging at the given level and installs
// it as the default logger.
func SetupLogger(level, component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Component = component
	cfg.Handler = nil
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured store and optional AMQP client.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config, requireAMQP bool) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	bcfg.RequireAMQP = requireAMQP
	return backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
}

// NewTracker wires the ledger controller over the backend store, publishing
// ledger events when an AMQP client is available.
func NewTracker(ctx context.Context, logger *log.Logger, cfg *config.Config, res *backend.BackendResult) (*services.Tracker, error) {
	seed, err := services.LoadSeedCategories(cfg.SeedCategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("load seed categories: %w", err)
	}

	deps := services.TrackerDeps{
		Transactions: repository.Transactions(res.Store),
		Categories:   repository.Categories(res.Store),
		Logger:       logger,
		Seed:         seed,
	}
	if res.AMQP != nil {
		deps.Publisher = res.AMQP
	}
	return services.NewTracker(ctx, deps)
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// cleanup function runs once, after cancellation, bounded by timeout.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}
