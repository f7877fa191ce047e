package core

import (
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionTypeValidate(t *testing.T) {
	if err := Income.Validate(); err != nil {
		t.Fatalf("income: %v", err)
	}
	if err := Expense.Validate(); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if err := TransactionType("transfer").Validate(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestUserValidate(t *testing.T) {
	good := User{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []User{
		{Username: "", Email: "a@b.c", FirstName: "A", LastName: "B"},
		{Username: "a", Email: "", FirstName: "A", LastName: "B"},
		{Username: "a", Email: "not-an-email", FirstName: "A", LastName: "B"},
		{Username: "a", Email: "@example.com", FirstName: "A", LastName: "B"},
		{Username: "a", Email: "a@b.c", FirstName: "", LastName: "B"},
		{Username: "a", Email: "a@b.c", FirstName: "A", LastName: ""},
		{Username: "this_username_is_far_too_long", Email: "a@b.c", FirstName: "A", LastName: "B"},
	}
	for i, u := range bads {
		if err := u.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	good := Transaction{
		Type:     Income,
		Amount:   Money{Cents: 100000},
		Category: "salary",
		Date:     date,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "transfer", Amount: Money{Cents: 1}, Category: "salary", Date: date},
		{Type: Income, Amount: Money{Cents: 0}, Category: "salary", Date: date},
		// expense category on an income transaction
		{Type: Income, Amount: Money{Cents: 1}, Category: "food", Date: date},
		{Type: Expense, Amount: Money{Cents: 1}, Category: "salary", Date: date},
		{Type: Expense, Amount: Money{Cents: 1}, Category: "nonsense", Date: date},
		{Type: Expense, Amount: Money{Cents: 1}, Category: "food", Date: time.Time{}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategories(t *testing.T) {
	if len(Categories(Income)) != 6 {
		t.Fatalf("expected 6 income categories, got %d", len(Categories(Income)))
	}
	if len(Categories(Expense)) != 10 {
		t.Fatalf("expected 10 expense categories, got %d", len(Categories(Expense)))
	}
	if Categories("other") != nil {
		t.Fatalf("expected nil category set for unknown type")
	}
	if !ValidCategory(Expense, "food") || ValidCategory(Income, "food") {
		t.Fatalf("category/type membership broken")
	}
	if got := CategoryLabel("food"); got != "Food & Dining" {
		t.Fatalf("expected label, got %q", got)
	}
	if got := CategoryLabel("legacy_slug"); got != "legacy_slug" {
		t.Fatalf("unknown slug should pass through, got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.January || d.Day() != 5 {
		t.Fatalf("unexpected date %v", d)
	}
	for _, in := range []string{"", "05/01/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(in); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
}

func TestTotalsBalance(t *testing.T) {
	tot := Totals{Income: Money{Cents: 100000}, Expense: Money{Cents: 20000}}
	if got := tot.Balance().Cents; got != 80000 {
		t.Fatalf("expected 80000, got %d", got)
	}
}
