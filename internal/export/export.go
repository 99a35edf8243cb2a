// Package export serializes transactions to CSV.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

const (
	Filename    = "transactions.csv"
	ContentType = "text/csv"
)

// Header is the first row of every export.
var Header = []string{"ID", "Type", "Amount", "Date", "Category", "Notes"}

// WriteCSV writes one row per transaction in input order. Category ids are
// resolved against cats, falling back to "Unknown". Notes are always quoted;
// the other fields are quoted only when they need to be.
func WriteCSV(w io.Writer, txs []core.Transaction, cats []core.Category) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range txs {
		fields := []string{
			strconv.FormatInt(tx.ID, 10),
			quoteIfNeeded(string(tx.Type)),
			tx.Amount.Decimal(),
			quoteIfNeeded(tx.Date),
			quoteIfNeeded(core.CategoryName(cats, tx.CategoryID)),
			quote(tx.Notes),
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("write row %d: %w", tx.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsAny(s, ",\"\r\n") || s[0] == ' ' || s[0] == '\t' {
		return quote(s)
	}
	return s
}

// WriteFileAtomic writes the export to path through a temporary file in the
// same directory, so readers never observe a partial file.
func WriteFileAtomic(path string, txs []core.Transaction, cats []core.Category) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, txs, cats); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}
