package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Currencies accepted by the expense form.
var Currencies = []string{"USD", "EUR", "GBP", "INR"}

// ExpenseCategories accepted by the expense form.
var ExpenseCategories = []string{"FOOD", "TRANSPORTATION", "ACCOMMODATION", "ENTERTAINMENT", "SHOPPING", "OTHER"}

// Expense is a shared cost recorded against a trip.
type Expense struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ExpenseDate time.Time `json:"expense_date"`
	PaidBy      *User     `json:"paid_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Balances maps a participant's display name to what they are owed
// (positive) or owe (negative). Always computed by the server.
type Balances map[string]float64

// ExpenseInput is the new-expense form.
type ExpenseInput struct {
	Amount      float64
	Currency    string
	Description string
	Category    string
	ExpenseDate time.Time
}

// Normalize fills the form defaults: USD, FOOD and today's date.
func (in ExpenseInput) Normalize(now time.Time) ExpenseInput {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "USD"
	}
	in.Category = strings.ToUpper(strings.TrimSpace(in.Category))
	if in.Category == "" {
		in.Category = "FOOD"
	}
	if in.ExpenseDate.IsZero() {
		y, m, d := now.Date()
		in.ExpenseDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return in
}

// Validate requires a positive amount, a description, and a known currency
// and category.
func (in ExpenseInput) Validate() error {
	if in.Amount == 0 || strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: please fill in amount and description", ErrValidation)
	}
	if in.Amount < 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	if !slices.Contains(Currencies, in.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", ErrValidation, in.Currency)
	}
	if !slices.Contains(ExpenseCategories, in.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}
	return nil
}
