package budget

import (
	"context"

	"github.com/theirongolddev/dayburn/internal/model"
)

// Store is the durable record store beneath the Allocator.
type Store interface {
	// LoadPeriod returns the persisted period, or nil when none exists.
	LoadPeriod(ctx context.Context) (*model.Period, error)
	// SavePeriod replaces the persisted period wholesale.
	SavePeriod(ctx context.Context, p model.Period) error
	LoadExpenses(ctx context.Context) ([]model.Expense, error)
	InsertExpense(ctx context.Context, e model.Expense) error
	// UpdateRemainingBudget touches only the remaining-budget field.
	UpdateRemainingBudget(ctx context.Context, amount float64) error
	// ClearAll deletes every period and expense record.
	ClearAll(ctx context.Context) error
}
