package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/repository"
)

// SnapshotWorker keeps a CSV export of the ledger current on disk. It reads
// the ledger from the store on every event, so a lost event is repaired by
// the next one or by the periodic refresh.
type SnapshotWorker struct {
	transactions *repository.Collection[core.Transaction]
	categories   *repository.Collection[core.Category]
	path         string

	mu       sync.Mutex
	lastRows int
	lastAt   time.Time
}

func NewSnapshotWorker(store repository.Store, exportDir string) *SnapshotWorker {
	return &SnapshotWorker{
		transactions: repository.Transactions(store),
		categories:   repository.Categories(store),
		path:         filepath.Join(exportDir, export.Filename),
	}
}

// Path returns the snapshot file location.
func (w *SnapshotWorker) Path() string {
	return w.path
}

// HandleLedgerEvent rewrites the snapshot after a ledger change.
func (w *SnapshotWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"component", "worker",
		"kind", msg.Kind,
		"id", msg.ID,
		"timestamp", msg.Timestamp)

	if err := w.WriteSnapshot(ctx); err != nil {
		return fmt.Errorf("snapshot after %s: %w", msg.Kind, err)
	}
	return nil
}

// WriteSnapshot exports the full ledger to the snapshot file.
func (w *SnapshotWorker) WriteSnapshot(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	txs := w.transactions.Load(ctx)
	cats := w.categories.Load(ctx)

	if err := export.WriteFileAtomic(w.path, txs, cats); err != nil {
		return err
	}
	w.lastRows = len(txs)
	w.lastAt = time.Now()

	slog.InfoContext(ctx, "Snapshot written",
		"component", "worker",
		"path", w.path,
		"rows", len(txs))
	return nil
}

// RunPeriodic refreshes the snapshot every interval until ctx is done.
func (w *SnapshotWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.WriteSnapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic snapshot failed", "component", "worker", "error", err)
			}
		}
	}
}

// Stats reports the row count and time of the last snapshot.
func (w *SnapshotWorker) Stats() (rows int, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRows, w.lastAt
}
