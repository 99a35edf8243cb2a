package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// UnknownCategory is displayed for transactions whose category no longer resolves.
const UnknownCategory = "Unknown"

type (
	TxType string

	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Type TxType `json:"type"`
	}

	Transaction struct {
		ID         int64  `json:"id"`
		Type       TxType `json:"type"`
		Amount     Money  `json:"amount"`
		Date       string `json:"date"`
		CategoryID int64  `json:"categoryId"`
		Notes      string `json:"notes"`
	}

	// NewTransaction is a transaction payload before an id has been assigned.
	NewTransaction struct {
		Type       TxType
		Amount     Money
		Date       string
		CategoryID int64
		Notes      string
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyDate       = errors.New("empty date")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyName       = errors.New("empty category name")
	ErrInvalidID       = errors.New("invalid id")
	ErrTooLong         = errors.New("value too long")
)

// DefaultCategories returns the categories seeded into an empty collection.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "Salary", Type: Income},
		{ID: 2, Name: "Rent", Type: Expense},
	}
}

// ParseTxType accepts "income" or "expense", case-insensitively.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the capitalised display name.
func (t TxType) Label() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	}
	return string(t)
}

func (c Category) Validate() error {
	if c.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: category name (max 100 characters)", ErrTooLong)
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (n NewTransaction) Validate() error {
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	if err := n.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(n.Date) == "" {
		return ErrEmptyDate
	}
	if n.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	if len(n.Notes) > 1000 {
		return fmt.Errorf("%w: notes (max 1000 characters)", ErrTooLong)
	}
	return nil
}

// WithID turns the payload into a Transaction carrying the given id.
func (n NewTransaction) WithID(id int64) Transaction {
	return Transaction{
		ID:         id,
		Type:       n.Type,
		Amount:     n.Amount,
		Date:       n.Date,
		CategoryID: n.CategoryID,
		Notes:      n.Notes,
	}
}

func (t Transaction) Validate() error {
	if t.ID <= 0 {
		return ErrInvalidID
	}
	return NewTransaction{
		Type:       t.Type,
		Amount:     t.Amount,
		Date:       t.Date,
		CategoryID: t.CategoryID,
		Notes:      t.Notes,
	}.Validate()
}

// IsValidation reports whether err rejects the input rather than signalling
// a storage failure.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidType, ErrInvalidAmount, ErrEmptyDate, ErrInvalidCategory, ErrEmptyName, ErrInvalidID, ErrTooLong} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
