package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/repository"
	"fintrack/internal/services"
	"fintrack/internal/storage/memory"
)

// memoryOpener reopens the same in-memory store on every invocation, so
// state carries over between commands like it does with SQLite.
func memoryOpener(t *testing.T) (openFunc, *memory.Store) {
	t.Helper()
	store := memory.New()
	return func(ctx context.Context, _ string) (*ledger, error) {
		tracker, err := services.NewTracker(ctx, services.TrackerDeps{
			Transactions: repository.Transactions(store),
			Categories:   repository.Categories(store),
			Logger:       log.Discard(),
		})
		if err != nil {
			return nil, err
		}
		return &ledger{tracker: tracker, close: store.Close}, nil
	}, store
}

func run(t *testing.T, open openFunc, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandStructure(t *testing.T) {
	open, _ := memoryOpener(t)
	root := newRootCmd(open)

	for _, name := range []string{"add", "list", "delete", "categories", "summary", "export"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	add, _, _ := root.Find([]string{"add"})
	for _, flag := range []string{"type", "amount", "date", "category", "notes"} {
		if add.Flags().Lookup(flag) == nil {
			t.Errorf("add: missing --%s flag", flag)
		}
	}

	if root.PersistentFlags().Lookup("log-level") == nil {
		t.Error("missing --log-level flag")
	}
}

func TestAddAndList(t *testing.T) {
	open, _ := memoryOpener(t)

	out, err := run(t, open, "add", "--type", "income", "--amount", "100", "--date", "2024-01-01", "--category", "salary")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "#1") || !strings.Contains(out, "$100.00") {
		t.Errorf("add output = %q", out)
	}

	if _, err := run(t, open, "add", "-t", "expense", "-a", "30.5", "-d", "2024-01-02", "-c", "2", "-n", "January"); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	out, err = run(t, open, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Salary", "Rent", "January", "$100.00", "$30.50", "$69.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, open, "list", "--type", "expense")
	if err != nil {
		t.Fatalf("list --type: %v", err)
	}
	if strings.Contains(out, "Salary") {
		t.Errorf("filtered list still shows income:\n%s", out)
	}
	if !strings.Contains(out, "-$30.50") {
		t.Errorf("filtered balance missing:\n%s", out)
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad amount", []string{"--amount", "abc", "--category", "1"}},
		{"negative amount", []string{"--amount", "-5", "--category", "1"}},
		{"wrong category type", []string{"--type", "income", "--amount", "5", "--category", "Rent"}},
		{"unknown category", []string{"--amount", "5", "--category", "Travel"}},
		{"bad type", []string{"--type", "gift", "--amount", "5", "--category", "1"}},
		{"empty date", []string{"--amount", "5", "--category", "1", "--date", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, _ := memoryOpener(t)
			if _, err := run(t, open, append([]string{"add"}, tt.args...)...); err == nil {
				t.Fatal("expected error")
			}
			out, err := run(t, open, "list")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !strings.Contains(out, "No transactions found.") {
				t.Errorf("rejected add was stored:\n%s", out)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	open, _ := memoryOpener(t)
	if _, err := run(t, open, "add", "-a", "10", "-c", "1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := run(t, open, "delete", "1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "Deleted transaction") {
		t.Errorf("delete output = %q", out)
	}

	out, err = run(t, open, "delete", "1")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if !strings.Contains(out, "No transaction with id 1") {
		t.Errorf("second delete output = %q", out)
	}

	for _, bad := range []string{"0", "-3", "abc"} {
		if _, err := run(t, open, "delete", bad); err == nil {
			t.Errorf("delete %q: expected error", bad)
		}
	}
}

func TestCategories(t *testing.T) {
	open, _ := memoryOpener(t)

	out, err := run(t, open, "categories", "add", "Groceries", "--type", "expense")
	if err != nil {
		t.Fatalf("categories add: %v", err)
	}
	if !strings.Contains(out, "#3") {
		t.Errorf("expected id 3 after the seeded categories, got %q", out)
	}

	out, err = run(t, open, "categories", "list", "--type", "expense")
	if err != nil {
		t.Fatalf("categories list: %v", err)
	}
	if !strings.Contains(out, "Groceries") || !strings.Contains(out, "Rent") || strings.Contains(out, "Salary") {
		t.Errorf("expense categories = %q", out)
	}

	if _, err := run(t, open, "categories", "add", "  ", "--type", "expense"); err == nil {
		t.Error("blank name: expected error")
	}
	if _, err := run(t, open, "categories", "add", "Gift", "--type", "other"); err == nil {
		t.Error("bad type: expected error")
	}

	if _, err := run(t, open, "add", "-t", "expense", "-a", "4", "-c", "groceries"); err != nil {
		t.Errorf("add with new category by name: %v", err)
	}
}

func TestSummary(t *testing.T) {
	open, _ := memoryOpener(t)
	_, _ = run(t, open, "add", "-a", "75", "-c", "1")
	_, _ = run(t, open, "add", "-t", "expense", "-a", "25", "-c", "2")

	out, err := run(t, open, "summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"Income", "Expenses", "Balance", "75.0%", "25.0%", "$50.00", "2 of 2 transactions"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestExport(t *testing.T) {
	open, _ := memoryOpener(t)
	_, _ = run(t, open, "add", "-a", "12.5", "-d", "2024-03-01", "-c", "1", "-n", `said "hi"`)

	out, err := run(t, open, "export", "-o", "-")
	if err != nil {
		t.Fatalf("export to stdout: %v", err)
	}
	want := "ID,Type,Amount,Date,Category,Notes\n1,income,12.50,2024-03-01,Salary,\"said \"\"hi\"\"\"\n"
	if out != want {
		t.Errorf("csv = %q, want %q", out, want)
	}

	dir := t.TempDir()
	if _, err := run(t, open, "export", "--output", dir); err != nil {
		t.Fatalf("export to dir: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "transactions.csv"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != want {
		t.Errorf("file csv = %q", data)
	}
}

func TestResolveCategory(t *testing.T) {
	cats := []core.Category{{ID: 1, Name: "Salary", Type: core.Income}}
	tests := map[string]string{
		"salary":  "1",
		" 7 ":     "7",
		"Unknown": "Unknown",
		"":        "",
	}
	for in, want := range tests {
		if got := resolveCategory(in, cats); got != want {
			t.Errorf("resolveCategory(%q) = %q, want %q", in, got, want)
		}
	}
}
