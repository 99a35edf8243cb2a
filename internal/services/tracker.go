package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

// Ledger event kinds published after a persisted mutation.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
	EventCategoryCreated    = "category.created"
)

// Collection is the load/save contract of a persisted collection. Fetch
// fails instead of falling back so a resync never replaces live state with
// a default.
type Collection[T any] interface {
	Load(ctx context.Context) []T
	Fetch(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
}

// Publisher announces ledger changes to other processes.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, kind string, id int64) error
}

// TrackerDeps are the collaborators of a Tracker. Publisher, Logger and
// Seed are optional.
type TrackerDeps struct {
	Transactions Collection[core.Transaction]
	Categories   Collection[core.Category]
	Publisher    Publisher
	Logger       *log.Logger
	Seed         []core.Category
}

// View is everything the page needs to render the ledger.
type View struct {
	Transactions []core.Transaction
	All          int
	Totals       core.Totals
	Filter       core.Filter
	Categories   []core.Category
}

// Tracker owns the transaction and category collections. Other processes
// (the terminal client, a second server) may write the same store, so every
// mutation first resyncs from it and ids are derived from what is stored.
type Tracker struct {
	mu sync.RWMutex

	txRepo   Collection[core.Transaction]
	catRepo  Collection[core.Category]
	pub      Publisher
	logger   *log.Logger
	slog     *log.StructuredLogger
	txs      []core.Transaction
	cats     []core.Category
	filter   core.Filter
	nextTxID int64
}

// NewTracker loads both collections and seeds the categories when none
// are stored yet.
func NewTracker(ctx context.Context, deps TrackerDeps) (*Tracker, error) {
	if deps.Transactions == nil || deps.Categories == nil {
		return nil, fmt.Errorf("tracker: transactions and categories collections are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger = logger.WithComponent(log.ComponentTracker)

	t := &Tracker{
		txRepo:  deps.Transactions,
		catRepo: deps.Categories,
		pub:     deps.Publisher,
		logger:  logger,
		slog:    log.NewStructuredLogger(logger),
		txs:     deps.Transactions.Load(ctx),
		cats:    deps.Categories.Load(ctx),
		filter:  core.AllFilter(),
	}
	t.nextTxID = core.MaxTransactionID(t.txs) + 1

	if len(t.cats) == 0 {
		seed := deps.Seed
		if len(seed) == 0 {
			seed = core.DefaultCategories()
		}
		t.cats = append([]core.Category(nil), seed...)
		if err := t.catRepo.Save(ctx, t.cats); err != nil {
			// The seed stays usable for this session.
			logger.ErrorContext(ctx, "Failed to persist seed categories",
				log.FieldError, err, log.FieldOperation, log.OpSeed)
		} else {
			logger.InfoContext(ctx, "Seeded categories",
				log.FieldCount, len(t.cats), log.FieldOperation, log.OpSeed)
		}
	}

	logger.DebugContext(ctx, "Tracker loaded",
		"transactions", len(t.txs), "categories", len(t.cats))
	return t, nil
}

// Reload picks up changes other processes wrote to the store.
func (t *Tracker) Reload(ctx context.Context) {
	t.mu.Lock()
	t.syncLocked(ctx)
	t.mu.Unlock()
}

// syncLocked replaces the cached collections with the stored ones. A
// collection that cannot be read keeps its cached copy, and an empty stored
// category list keeps the seed. The id counter never moves backwards.
func (t *Tracker) syncLocked(ctx context.Context) {
	if txs, err := t.txRepo.Fetch(ctx); err != nil {
		t.logger.WarnContext(ctx, "Keeping cached transactions", log.FieldError, err)
	} else {
		t.txs = txs
	}
	if cats, err := t.catRepo.Fetch(ctx); err != nil {
		t.logger.WarnContext(ctx, "Keeping cached categories", log.FieldError, err)
	} else if len(cats) > 0 {
		t.cats = cats
	}
	if next := core.MaxTransactionID(t.txs) + 1; next > t.nextTxID {
		t.nextTxID = next
	}
}

// AddTransaction assigns the next id, appends and persists. The in-memory
// collection is unchanged when persisting fails.
func (t *Tracker) AddTransaction(ctx context.Context, p core.NewTransaction) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t.mu.Lock()
	t.syncLocked(ctx)
	tx := p.WithID(t.nextTxID)
	next := make([]core.Transaction, len(t.txs), len(t.txs)+1)
	copy(next, t.txs)
	next = append(next, tx)
	if err := t.txRepo.Save(ctx, next); err != nil {
		t.mu.Unlock()
		t.slog.LogError(ctx, "Failed to save transaction", err, log.OpCreate, nil)
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	t.txs = next
	t.nextTxID++
	t.mu.Unlock()

	t.slog.LogTransactionCreated(ctx, tx.ID, string(tx.Type), tx.Amount.Cents, tx.Date, tx.CategoryID)
	t.publish(ctx, EventTransactionCreated, tx.ID)
	return tx, nil
}

// DeleteTransaction removes the transaction with id. Deleting an id that
// does not exist reports false and writes nothing.
func (t *Tracker) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	t.mu.Lock()
	t.syncLocked(ctx)
	idx := -1
	for i, tx := range t.txs {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		t.logger.DebugContext(ctx, "Delete of unknown transaction ignored", log.FieldTransactionID, id)
		return false, nil
	}

	next := make([]core.Transaction, 0, len(t.txs)-1)
	next = append(next, t.txs[:idx]...)
	next = append(next, t.txs[idx+1:]...)
	if err := t.txRepo.Save(ctx, next); err != nil {
		t.mu.Unlock()
		t.slog.LogError(ctx, "Failed to save after delete", err, log.OpDelete,
			log.NewFields().WithTransaction(id, "", 0, "", 0))
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	t.txs = next
	t.mu.Unlock()

	t.slog.LogTransactionDeleted(ctx, id)
	t.publish(ctx, EventTransactionDeleted, id)
	return true, nil
}

// AddCategory appends a category with id max+1 and persists the collection.
func (t *Tracker) AddCategory(ctx context.Context, name string, typ core.TxType) (core.Category, error) {
	t.mu.Lock()
	t.syncLocked(ctx)
	c := core.Category{ID: core.MaxCategoryID(t.cats) + 1, Name: strings.TrimSpace(name), Type: typ}
	if err := c.Validate(); err != nil {
		t.mu.Unlock()
		return core.Category{}, err
	}
	next := make([]core.Category, len(t.cats), len(t.cats)+1)
	copy(next, t.cats)
	next = append(next, c)
	if err := t.catRepo.Save(ctx, next); err != nil {
		t.mu.Unlock()
		t.slog.LogError(ctx, "Failed to save category", err, log.OpCreate, nil)
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	t.cats = next
	t.mu.Unlock()

	t.slog.LogCategoryCreated(ctx, c.ID, c.Name, string(c.Type))
	t.publish(ctx, EventCategoryCreated, c.ID)
	return c, nil
}

// SetFilter replaces the current filter. Filters are not persisted.
func (t *Tracker) SetFilter(f core.Filter) {
	if f.Type == "" {
		f.Type = core.AllTypes
	}
	t.mu.Lock()
	t.filter = f
	t.mu.Unlock()
}

func (t *Tracker) Filter() core.Filter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.filter
}

// View derives the filtered list and its totals from the current state.
func (t *Tracker) View() View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viewLocked(t.filter)
}

// ViewWith derives a view for f without changing the current filter.
func (t *Tracker) ViewWith(f core.Filter) View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viewLocked(f)
}

func (t *Tracker) viewLocked(f core.Filter) View {
	filtered := f.Apply(t.txs)
	return View{
		Transactions: filtered,
		All:          len(t.txs),
		Totals:       core.ComputeTotals(filtered),
		Filter:       f,
		Categories:   append([]core.Category(nil), t.cats...),
	}
}

// Transactions returns a copy of the full collection in insertion order.
func (t *Tracker) Transactions() []core.Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]core.Transaction(nil), t.txs...)
}

// Categories returns a copy of the category collection.
func (t *Tracker) Categories() []core.Category {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]core.Category(nil), t.cats...)
}

// ExportCSV writes every transaction, ignoring the current filter.
func (t *Tracker) ExportCSV(ctx context.Context, w io.Writer) error {
	txs, cats := t.Transactions(), t.Categories()
	if err := export.WriteCSV(w, txs, cats); err != nil {
		t.slog.LogError(ctx, "CSV export failed", err, log.OpExport, nil)
		return fmt.Errorf("export csv: %w", err)
	}
	t.logger.InfoContext(ctx, "Transactions exported",
		log.FieldCount, len(txs), log.FieldOperation, log.OpExport)
	return nil
}

func (t *Tracker) publish(ctx context.Context, kind string, id int64) {
	if t.pub == nil {
		return
	}
	if err := t.pub.PublishLedgerChanged(ctx, kind, id); err != nil {
		// The mutation is already persisted.
		t.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventKind, kind, "id", id, log.FieldError, err)
	}
}
