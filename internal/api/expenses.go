package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tripboard/tripboard/internal/domain"
)

// Expenses is the client for a trip's expense ledger.
type Expenses struct {
	c *Client
}

// List returns a trip's expenses.
func (e *Expenses) List(ctx context.Context, tripID int64) ([]domain.Expense, error) {
	var dtos []expenseDTO
	if err := e.c.Do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/expenses", tripID), nil, &dtos); err != nil {
		return nil, fmt.Errorf("api.Expenses.List: %w", err)
	}
	out := make([]domain.Expense, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Create records an expense paid by the current user.
func (e *Expenses) Create(ctx context.Context, tripID int64, in domain.ExpenseInput) (domain.Expense, error) {
	req := expenseRequest{
		Amount:      in.Amount,
		Currency:    in.Currency,
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		ExpenseDate: dateOf(in.ExpenseDate),
	}
	var dto expenseDTO
	if err := e.c.Do(ctx, http.MethodPost, fmt.Sprintf("/trips/%d/expenses", tripID), req, &dto); err != nil {
		return domain.Expense{}, fmt.Errorf("api.Expenses.Create: %w", err)
	}
	return dto.toDomain(), nil
}

// Balances returns the server-computed per-person balances.
func (e *Expenses) Balances(ctx context.Context, tripID int64) (domain.Balances, error) {
	balances := domain.Balances{}
	if err := e.c.Do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/expenses/balances", tripID), nil, &balances); err != nil {
		return nil, fmt.Errorf("api.Expenses.Balances: %w", err)
	}
	return balances, nil
}

// Total returns the server-computed total of a trip's expenses.
func (e *Expenses) Total(ctx context.Context, tripID int64) (float64, error) {
	var dto totalDTO
	if err := e.c.Do(ctx, http.MethodGet, fmt.Sprintf("/trips/%d/expenses/total", tripID), nil, &dto); err != nil {
		return 0, fmt.Errorf("api.Expenses.Total: %w", err)
	}
	return dto.Total.v, nil
}

// Delete removes an expense.
func (e *Expenses) Delete(ctx context.Context, expenseID int64) error {
	if err := e.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/expenses/%d", expenseID), nil, nil); err != nil {
		return fmt.Errorf("api.Expenses.Delete: %w", err)
	}
	return nil
}
