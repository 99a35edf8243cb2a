package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func sampleTransactions() []Transaction {
	return []Transaction{
		{ID: 1, Type: Income, Amount: Money{Cents: 10000}, Date: "2024-01-01", CategoryID: 1},
		{ID: 2, Type: Expense, Amount: Money{Cents: 3000}, Date: "2024-01-02", CategoryID: 2},
		{ID: 3, Type: Expense, Amount: Money{Cents: 2000}, Date: "2024-01-03", CategoryID: 2},
		{ID: 4, Type: Income, Amount: Money{Cents: 550}, Date: "2024-01-04", CategoryID: 3},
		{ID: 5, Type: Expense, Amount: Money{Cents: 125}, Date: "2024-01-05", CategoryID: 3},
	}
}

func TestParseTxType(t *testing.T) {
	cases := []struct {
		in   string
		want TxType
		ok   bool
	}{
		{"income", Income, true},
		{"Expense", Expense, true},
		{" income ", Income, true},
		{"all", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTxType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tc.in, err)
		}
	}
}

func TestNewTransactionValidate(t *testing.T) {
	good := NewTransaction{Type: Income, Amount: Money{Cents: 0}, Date: "2024-01-01", CategoryID: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		n    NewTransaction
		want error
	}{
		{NewTransaction{Type: "other", Date: "d", CategoryID: 1}, ErrInvalidType},
		{NewTransaction{Type: Income, Amount: Money{Cents: -1}, Date: "d", CategoryID: 1}, ErrInvalidAmount},
		{NewTransaction{Type: Income, Date: "  ", CategoryID: 1}, ErrEmptyDate},
		{NewTransaction{Type: Income, Date: "d", CategoryID: 0}, ErrInvalidCategory},
	}
	for i, tc := range bads {
		if err := tc.n.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{ID: 1, Name: "Salary", Type: Income}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{ID: 1, Name: " ", Type: Income}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Category{ID: 0, Name: "x", Type: Income}).Validate(); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if err := (Category{ID: 1, Name: "x", Type: "all"}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestIsValidation(t *testing.T) {
	if err := (Category{ID: 1, Name: strings.Repeat("x", 101), Type: Income}).Validate(); !errors.Is(err, ErrTooLong) || !IsValidation(err) {
		t.Fatalf("expected ErrTooLong validation error, got %v", err)
	}
	if !IsValidation(fmt.Errorf("wrapped: %w", ErrInvalidAmount)) {
		t.Fatalf("wrapped sentinel should be a validation error")
	}
	if IsValidation(errors.New("disk full")) {
		t.Fatalf("storage failures are not validation errors")
	}
}

func TestFilterByTypeAndCategory(t *testing.T) {
	txs := sampleTransactions()

	if got := FilterByType(txs, AllTypes); len(got) != len(txs) {
		t.Fatalf("all types should pass everything, got %d", len(got))
	}
	if got := FilterByType(txs, TypeFilter(Expense)); len(got) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(got))
	}
	if got := FilterByCategory(txs, 0); len(got) != len(txs) {
		t.Fatalf("category 0 should pass everything, got %d", len(got))
	}
	got := FilterByCategory(txs, 3)
	if len(got) != 2 || got[0].ID != 4 || got[1].ID != 5 {
		t.Fatalf("unexpected category filter result: %+v", got)
	}
}

func TestFilterCommutativeAndIdempotent(t *testing.T) {
	txs := sampleTransactions()
	filters := []Filter{
		AllFilter(),
		{Type: TypeFilter(Income)},
		{Type: TypeFilter(Expense), CategoryID: 2},
		{Type: AllTypes, CategoryID: 3},
		{Type: TypeFilter(Income), CategoryID: 2},
	}
	for _, f := range filters {
		a := FilterByCategory(FilterByType(txs, f.Type), f.CategoryID)
		b := FilterByType(FilterByCategory(txs, f.CategoryID), f.Type)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("filter %+v not commutative: %v vs %v", f, a, b)
		}
		once := f.Apply(txs)
		twice := f.Apply(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("filter %+v not idempotent", f)
		}
		for _, tx := range once {
			found := false
			for _, orig := range txs {
				if orig == tx {
					found = true
				}
			}
			if !found {
				t.Fatalf("filtered view contains %+v not in source", tx)
			}
		}
	}
}

func TestParseFilter(t *testing.T) {
	cases := []struct {
		typ, cat string
		want     Filter
	}{
		{"", "", Filter{Type: AllTypes}},
		{"all", "all", Filter{Type: AllTypes}},
		{"expense", "2", Filter{Type: TypeFilter(Expense), CategoryID: 2}},
		{"bogus", "abc", Filter{Type: AllTypes}},
		{"income", "-4", Filter{Type: TypeFilter(Income)}},
	}
	for _, tc := range cases {
		if got := ParseFilter(tc.typ, tc.cat); got != tc.want {
			t.Fatalf("ParseFilter(%q, %q) = %+v, want %+v", tc.typ, tc.cat, got, tc.want)
		}
	}
	f := Filter{Type: TypeFilter(Expense), CategoryID: 7}
	if f.TypeValue() != "expense" || f.CategoryValue() != "7" {
		t.Fatalf("unexpected select values %q %q", f.TypeValue(), f.CategoryValue())
	}
	if AllFilter().CategoryValue() != "all" {
		t.Fatalf("expected all category value")
	}
}

func TestSumsAndBalance(t *testing.T) {
	txs := sampleTransactions()
	in := SumByType(txs, Income)
	out := SumByType(txs, Expense)

	var total int64
	for _, tx := range txs {
		total += tx.Amount.Cents
	}
	if in.Cents+out.Cents != total {
		t.Fatalf("income+expense = %d, want %d", in.Cents+out.Cents, total)
	}

	tot := ComputeTotals(txs)
	if tot.Income != in || tot.Expense != out || tot.Balance.Cents != in.Cents-out.Cents {
		t.Fatalf("unexpected totals %+v", tot)
	}

	empty := ComputeTotals(nil)
	if empty.Income.Cents != 0 || empty.Expense.Cents != 0 || empty.Balance.Cents != 0 {
		t.Fatalf("expected zero totals for empty input, got %+v", empty)
	}

	neg := ComputeTotals([]Transaction{{ID: 1, Type: Expense, Amount: Money{Cents: 500}}})
	if neg.Balance.Cents != -500 {
		t.Fatalf("expected negative balance, got %d", neg.Balance.Cents)
	}
}

func TestCategoryLookup(t *testing.T) {
	cats := DefaultCategories()
	if CategoryName(cats, 1) != "Salary" {
		t.Fatalf("expected Salary")
	}
	if CategoryName(cats, 99) != UnknownCategory {
		t.Fatalf("expected Unknown for dangling id")
	}
	if _, ok := LookupCategory(cats, 99); ok {
		t.Fatalf("lookup of missing id should fail")
	}
	inc := CategoriesOfType(cats, Income)
	if len(inc) != 1 || inc[0].Name != "Salary" {
		t.Fatalf("unexpected income categories %+v", inc)
	}
	if MaxCategoryID(cats) != 2 || MaxTransactionID(sampleTransactions()) != 5 {
		t.Fatalf("unexpected max ids")
	}
}
