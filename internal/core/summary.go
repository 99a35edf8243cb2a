package core

import (
	"strconv"
	"strings"
)

// AllTypes selects every transaction type in a Filter.
const AllTypes TypeFilter = "all"

// TypeFilter is "all" or one of the transaction types.
type TypeFilter string

// Filter is the current (type, category) selection of the transactions table.
// CategoryID zero means all categories.
type Filter struct {
	Type       TypeFilter
	CategoryID int64
}

// Totals are the aggregates shown next to the table and in the chart.
type Totals struct {
	Income  Money
	Expense Money
	Balance Money
}

// AllFilter passes every transaction.
func AllFilter() Filter {
	return Filter{Type: AllTypes}
}

// ParseFilter reads the raw select values. Empty, "all" or unparsable
// values fall back to "all".
func ParseFilter(typeStr, categoryStr string) Filter {
	f := AllFilter()
	if t, err := ParseTxType(typeStr); err == nil {
		f.Type = TypeFilter(t)
	}
	categoryStr = strings.TrimSpace(categoryStr)
	if categoryStr != "" && categoryStr != "all" {
		if id, err := strconv.ParseInt(categoryStr, 10, 64); err == nil && id > 0 {
			f.CategoryID = id
		}
	}
	return f
}

// TypeValue returns the select value for the type filter.
func (f Filter) TypeValue() string {
	if f.Type == "" {
		return string(AllTypes)
	}
	return string(f.Type)
}

// CategoryValue returns the select value for the category filter.
func (f Filter) CategoryValue() string {
	if f.CategoryID == 0 {
		return "all"
	}
	return strconv.FormatInt(f.CategoryID, 10)
}

// Apply keeps the transactions passing both the type and category predicates.
func (f Filter) Apply(txs []Transaction) []Transaction {
	return FilterByCategory(FilterByType(txs, f.Type), f.CategoryID)
}

// FilterByType keeps transactions of the given type; "all" (or empty) keeps everything.
func FilterByType(txs []Transaction, t TypeFilter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if t == "" || t == AllTypes || TxType(t) == tx.Type {
			out = append(out, tx)
		}
	}
	return out
}

// FilterByCategory keeps transactions of the given category; zero keeps everything.
func FilterByCategory(txs []Transaction, categoryID int64) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if categoryID == 0 || tx.CategoryID == categoryID {
			out = append(out, tx)
		}
	}
	return out
}

// SumByType sums the amounts of transactions of type t.
func SumByType(txs []Transaction, t TxType) Money {
	var total Money
	for _, tx := range txs {
		if tx.Type == t {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// ComputeTotals derives income, expense and balance for txs.
func ComputeTotals(txs []Transaction) Totals {
	in := SumByType(txs, Income)
	out := SumByType(txs, Expense)
	return Totals{Income: in, Expense: out, Balance: in.Sub(out)}
}

// LookupCategory finds a category by id.
func LookupCategory(cats []Category, id int64) (Category, bool) {
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryName resolves a category id to its name, or "Unknown" when dangling.
func CategoryName(cats []Category, id int64) string {
	if c, ok := LookupCategory(cats, id); ok {
		return c.Name
	}
	return UnknownCategory
}

// CategoriesOfType returns the categories whose type is t, in collection order.
func CategoriesOfType(cats []Category, t TxType) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// MaxTransactionID returns the largest id in txs, or 0.
func MaxTransactionID(txs []Transaction) int64 {
	var max int64
	for _, tx := range txs {
		if tx.ID > max {
			max = tx.ID
		}
	}
	return max
}

// MaxCategoryID returns the largest id in cats, or 0.
func MaxCategoryID(cats []Category) int64 {
	var max int64
	for _, c := range cats {
		if c.ID > max {
			max = c.ID
		}
	}
	return max
}
