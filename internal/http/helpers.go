package http

import (
	"errors"
	"html/template"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/form"
)

// templateFuncs are available to every page and partial template.
var templateFuncs = template.FuncMap{
	"dollars": func(m core.Money) string { return m.Dollars() },
	"categoryName": func(cats []core.Category, id int64) string {
		return core.CategoryName(cats, id)
	},
	"idstr": func(id int64) string { return strconv.FormatInt(id, 10) },
	"pct": func(p float64) string { return strconv.FormatFloat(p, 'f', 1, 64) + "%" },
}

// stripControl drops control characters other than tab, newline and
// carriage return.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// sanitizeInput cleans a single-line field.
func sanitizeInput(s string) string {
	return strings.TrimSpace(stripControl(s))
}

// parseID reads a positive transaction or category id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrInvalidID
	}
	return id, nil
}

// validationMessage turns a form or domain error into the text shown to the user.
func validationMessage(err error) string {
	var fe *form.FieldError
	field := ""
	if errors.As(err, &fe) {
		field = fe.Field
	}

	switch {
	case errors.Is(err, form.ErrRequired):
		return fieldLabel(field) + " is required"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a non-negative decimal number"
	case errors.Is(err, core.ErrInvalidCategory):
		return "Select a category of the chosen type"
	case errors.Is(err, core.ErrInvalidType):
		return "Type must be income or expense"
	case errors.Is(err, core.ErrEmptyDate):
		return "Date is required"
	case errors.Is(err, core.ErrEmptyName):
		return "Category name is required"
	case errors.Is(err, core.ErrInvalidID):
		return "Invalid id"
	}
	return "Invalid input: " + err.Error()
}

func fieldLabel(field string) string {
	switch field {
	case form.FieldAmount:
		return "Amount"
	case form.FieldDate:
		return "Date"
	case form.FieldCategory:
		return "Category"
	case form.FieldType:
		return "Type"
	}
	return "Field"
}
