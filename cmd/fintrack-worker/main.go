package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)

	logger.Info("Starting fintrack-worker", log.FieldOperation, log.OpStartup)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.DataBackend != backend.SQLiteBackend.String() {
		logger.Error("The worker reads the ledger from SQLite; set DATA_BACKEND=sqlite", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	res, err := cli.OpenBackend(context.Background(), logger, cfg, true)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err)
		os.Exit(1)
	}

	snapshots := worker.NewSnapshotWorker(res.Store, cfg.ExportDir)

	// Catch up on anything written while the worker was down.
	if err := snapshots.WriteSnapshot(context.Background()); err != nil {
		logger.Error("Startup snapshot failed", log.FieldError, err)
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return res.AMQP.ConsumeLedgerEvents(gctx, snapshots.HandleLedgerEvent)
	})
	if cfg.SnapshotInterval > 0 {
		g.Go(func() error {
			return snapshots.RunPeriodic(gctx, cfg.SnapshotInterval)
		})
	}

	exitCode := 0
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		exitCode = 1
	} else {
		<-done
	}

	rows, at := snapshots.Stats()
	logger.Info("Worker stopped", "last_snapshot_rows", rows, "last_snapshot_at", at, log.FieldOperation, log.OpShutdown)

	if err := res.Cleanup(); err != nil {
		logger.Error("Backend cleanup failed", log.FieldError, err)
		exitCode = 1
	}
	os.Exit(exitCode)
}
