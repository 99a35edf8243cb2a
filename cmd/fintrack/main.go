package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

	ctx := context.Background()
	res, err := cli.OpenBackend(ctx, logger, cfg, false)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	tracker, err := cli.NewTracker(ctx, logger, cfg, res)
	if err != nil {
		logger.Error("Failed to load ledger", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	opts := apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if res.AMQP != nil {
		opts.Broker = res.AMQP
	}
	srv, err := apphttp.NewServer(":"+cfg.Port, tracker, res.Store, opts)
	if err != nil {
		logger.Error("Failed to create server", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}
	srv.MaxHeaderBytes = 1 << 16

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		}
	})

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", res.AMQP != nil,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if !cfg.AMQPEnabled() && cfg.SnapshotInterval > 0 {
		// Without a broker there is no separate worker; refresh the
		// snapshot from here.
		snapshots := worker.NewSnapshotWorker(res.Store, cfg.ExportDir)
		g.Go(func() error {
			logger.Info("Periodic snapshots enabled",
				"path", snapshots.Path(), "interval", cfg.SnapshotInterval)
			if err := snapshots.RunPeriodic(gctx, cfg.SnapshotInterval); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		exitCode = 1
	} else {
		<-done
	}

	if err := res.Cleanup(); err != nil {
		logger.Error("Backend cleanup failed", log.FieldError, err)
		exitCode = 1
	}
	logger.Info("Server stopped")
	os.Exit(exitCode)
}
