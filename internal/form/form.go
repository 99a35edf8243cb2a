// Package form holds the state and submission rules of the add-transaction form.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Field names, matching the HTML input names.
const (
	FieldType     = "type"
	FieldAmount   = "amount"
	FieldDate     = "date"
	FieldCategory = "categoryId"
	FieldNotes    = "notes"
)

var ErrRequired = errors.New("field is required")

// FieldError reports which field rejected the submission.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Form is the transaction form state. Amount, Date and CategoryID hold the
// raw text typed or selected by the user.
type Form struct {
	Type       core.TxType
	Amount     string
	Date       string
	CategoryID string
	Notes      string
}

func New() *Form {
	return &Form{Type: core.Income}
}

// Choices returns the categories offered for the form's current type.
func (f *Form) Choices(cats []core.Category) []core.Category {
	return core.CategoriesOfType(cats, f.Type)
}

// SetType switches the type and drops a category selection that is not
// offered for the new type.
func (f *Form) SetType(t core.TxType, cats []core.Category) {
	f.Type = t
	if f.CategoryID == "" {
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(f.CategoryID), 10, 64)
	if err != nil {
		f.CategoryID = ""
		return
	}
	for _, c := range f.Choices(cats) {
		if c.ID == id {
			return
		}
	}
	f.CategoryID = ""
}

// Submit validates the state against the known categories and returns the
// payload to hand to the controller. On success every field except Type is
// cleared; on failure the state is kept for correction.
func (f *Form) Submit(cats []core.Category) (core.NewTransaction, error) {
	if !f.Type.Valid() {
		return core.NewTransaction{}, &FieldError{Field: FieldType, Err: core.ErrInvalidType}
	}
	if strings.TrimSpace(f.Amount) == "" {
		return core.NewTransaction{}, &FieldError{Field: FieldAmount, Err: ErrRequired}
	}
	if strings.TrimSpace(f.Date) == "" {
		return core.NewTransaction{}, &FieldError{Field: FieldDate, Err: ErrRequired}
	}
	if strings.TrimSpace(f.CategoryID) == "" {
		return core.NewTransaction{}, &FieldError{Field: FieldCategory, Err: ErrRequired}
	}

	amount, err := core.ParseMoney(f.Amount)
	if err != nil {
		return core.NewTransaction{}, &FieldError{Field: FieldAmount, Err: err}
	}

	id, err := strconv.ParseInt(strings.TrimSpace(f.CategoryID), 10, 64)
	if err != nil {
		return core.NewTransaction{}, &FieldError{Field: FieldCategory, Err: core.ErrInvalidCategory}
	}
	offered := false
	for _, c := range f.Choices(cats) {
		if c.ID == id {
			offered = true
			break
		}
	}
	if !offered {
		return core.NewTransaction{}, &FieldError{Field: FieldCategory, Err: core.ErrInvalidCategory}
	}

	payload := core.NewTransaction{
		Type:       f.Type,
		Amount:     amount,
		Date:       strings.TrimSpace(f.Date),
		CategoryID: id,
		Notes:      f.Notes,
	}
	if err := payload.Validate(); err != nil {
		return core.NewTransaction{}, err
	}

	f.Reset()
	return payload, nil
}

// Reset clears every field except Type.
func (f *Form) Reset() {
	f.Amount = ""
	f.Date = ""
	f.CategoryID = ""
	f.Notes = ""
}
