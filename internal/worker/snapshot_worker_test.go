package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/storage/memory"
)

func TestHandleLedgerEventWritesSnapshot(t *testing.T) {
	store := memory.NewWithValues(map[string]string{
		"transactions": `[{"id":1,"type":"income","amount":100,"date":"2024-01-01","categoryId":1,"notes":"pay"}]`,
		"categories":   `[{"id":1,"name":"Salary","type":"income"}]`,
	})
	dir := t.TempDir()
	w := NewSnapshotWorker(store, dir)

	if err := w.HandleLedgerEvent(context.Background(), amqp.NewLedgerEvent("transaction.created", 1)); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "transactions.csv"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	want := "ID,Type,Amount,Date,Category,Notes\n1,income,100.00,2024-01-01,Salary,\"pay\"\n"
	if string(data) != want {
		t.Fatalf("unexpected snapshot:\n%s", data)
	}
	if rows, at := w.Stats(); rows != 1 || at.IsZero() {
		t.Fatalf("unexpected stats rows=%d at=%v", rows, at)
	}
}

func TestSnapshotFollowsStore(t *testing.T) {
	store := memory.New()
	dir := t.TempDir()
	w := NewSnapshotWorker(store, dir)

	if err := w.WriteSnapshot(context.Background()); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	_ = store.Write(context.Background(), "transactions",
		[]byte(`[{"id":9,"type":"expense","amount":5,"date":"2024-03-01","categoryId":3,"notes":""}]`))
	if err := w.HandleLedgerEvent(context.Background(), amqp.NewLedgerEvent("transaction.created", 9)); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	data, _ := os.ReadFile(w.Path())
	if !strings.Contains(string(data), "9,expense,5.00,2024-03-01,Unknown,\"\"") {
		t.Fatalf("snapshot did not follow store:\n%s", data)
	}
}

func TestRunPeriodicStopsOnCancel(t *testing.T) {
	w := NewSnapshotWorker(memory.New(), t.TempDir())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := w.RunPeriodic(ctx, 10*time.Millisecond); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if _, err := os.Stat(w.Path()); err != nil {
		t.Fatalf("periodic refresh should have written a snapshot: %v", err)
	}
}
