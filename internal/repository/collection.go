// Package repository mirrors an in-memory collection to one key of a
// persistent store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Store is the persistent key/value contract the collections are saved to.
type Store interface {
	Read(ctx context.Context, key string) (value []byte, found bool, err error)
	Write(ctx context.Context, key string, value []byte) error
}

// Collection loads and saves a JSON array of T under a single key.
type Collection[T any] struct {
	store    Store
	key      string
	fallback []T
}

func NewCollection[T any](store Store, key string, fallback []T) *Collection[T] {
	return &Collection[T]{
		store:    store,
		key:      key,
		fallback: append([]T(nil), fallback...),
	}
}

// Transactions returns the collection stored under the "transactions" key.
func Transactions(store Store) *Collection[core.Transaction] {
	return NewCollection[core.Transaction](store, storage.KeyTransactions, nil)
}

// Categories returns the collection stored under the "categories" key.
// A missing or unreadable value loads as an empty collection so the caller
// can decide whether to seed it.
func Categories(store Store) *Collection[core.Category] {
	return NewCollection[core.Category](store, storage.KeyCategories, nil)
}

// Key returns the storage key.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load returns the stored collection. Missing, unreadable or corrupt values
// yield a copy of the fallback instead of an error.
func (c *Collection[T]) Load(ctx context.Context) []T {
	raw, found, err := c.store.Read(ctx, c.key)
	if err != nil {
		slog.WarnContext(ctx, "Stored collection unreadable, using default",
			"key", c.key, "error", err)
		return c.defaultValue()
	}
	if !found {
		return c.defaultValue()
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.WarnContext(ctx, "Stored collection corrupt, using default",
			"key", c.key, "error", err, "bytes", len(raw))
		return c.defaultValue()
	}
	if items == nil {
		// "null" is not a collection
		return c.defaultValue()
	}
	return items
}

// Fetch is the strict form of Load used to resynchronize a live
// collection: a missing value still yields the fallback, but read failures
// and corrupt values are returned so the caller keeps what it has.
func (c *Collection[T]) Fetch(ctx context.Context) ([]T, error) {
	raw, found, err := c.store.Read(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.key, err)
	}
	if !found {
		return c.defaultValue(), nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	if items == nil {
		return c.defaultValue(), nil
	}
	return items, nil
}

// Save serializes items and replaces the stored value.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Write(ctx, c.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

func (c *Collection[T]) defaultValue() []T {
	return append([]T(nil), c.fallback...)
}
