package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{".5", 50, true},
		{"100", 10000, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{".", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		cents   int64
		decimal string
		dollars string
	}{
		{10000, "100.00", "$100.00"},
		{5, "0.05", "$0.05"},
		{0, "0.00", "$0.00"},
		{-550, "-5.50", "-$5.50"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		if m.Decimal() != tc.decimal || m.Dollars() != tc.dollars {
			t.Fatalf("%d formatted as %q/%q", tc.cents, m.Decimal(), m.Dollars())
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Transaction{ID: 7, Type: Expense, Amount: Money{Cents: 1250}, Date: "2024-02-01", CategoryID: 2, Notes: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":7,"type":"expense","amount":12.50,"date":"2024-02-01","categoryId":2,"notes":"x"}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	var tx Transaction
	if err := json.Unmarshal([]byte(`{"id":1,"type":"income","amount":100,"date":"d","categoryId":1,"notes":""}`), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tx.Amount.Cents != 10000 {
		t.Fatalf("expected 10000 cents, got %d", tx.Amount.Cents)
	}

	for _, raw := range []string{`1e2`, `"3.5"`} {
		var m Money
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("%s: unexpected error %v", raw, err)
		}
	}
	for _, raw := range []string{`-1`, `null`, `"abc"`, `true`} {
		var m Money
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			t.Fatalf("%s: expected error", raw)
		}
	}
}
