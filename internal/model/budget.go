// Package model defines the budget period, expense, and projection types
// shared by the allocator, store, and presentation layers.
package model

import (
	"fmt"
	"time"
)

// PeriodState describes whether a budget has been set.
type PeriodState string

const (
	StateUninitialized PeriodState = "uninitialized"
	StateActive        PeriodState = "active"
)

// Earmark is surplus rolled into a single calendar day.
type Earmark struct {
	Date   time.Time `json:"date" yaml:"date"`
	Amount float64   `json:"amount" yaml:"amount"`
}

// IsZero reports whether no earmark is pending.
func (e Earmark) IsZero() bool {
	return e.Date.IsZero() || e.Amount == 0
}

// For returns the earmarked amount for date, or 0.
func (e Earmark) For(date time.Time) float64 {
	if e.IsZero() || !SameDay(e.Date, date) {
		return 0
	}
	return e.Amount
}

// Period is the single active budget.
type Period struct {
	TotalBudget      float64   `json:"total_budget" yaml:"total_budget"`
	StartDate        time.Time `json:"start_date" yaml:"start_date"`
	EndDate          time.Time `json:"end_date" yaml:"end_date"`
	AllocationPerDay float64   `json:"allocation_per_day" yaml:"allocation_per_day"`
	TotalRemaining   float64   `json:"total_remaining" yaml:"total_remaining"`

	// Savings holds surplus moved out of the spendable budget.
	Savings      float64   `json:"savings" yaml:"savings"`
	Earmark      Earmark   `json:"earmark" yaml:"earmark"`
	LastAdjusted time.Time `json:"last_adjusted,omitempty" yaml:"last_adjusted,omitempty"`

	// PriorExpenseID is the highest expense ID logged before this period
	// began. Only later expenses count against the budget.
	PriorExpenseID int64 `json:"prior_expense_id,omitempty" yaml:"prior_expense_id,omitempty"`
}

// InPeriod reports whether e was logged during p.
func (p Period) InPeriod(e Expense) bool {
	return e.ID > p.PriorExpenseID
}

// EmptyPeriod returns the zero-valued period anchored at today.
func EmptyPeriod(today time.Time) Period {
	d := Day(today)
	return Period{StartDate: d, EndDate: d}
}

// State derives the lifecycle state from the period values.
func (p Period) State() PeriodState {
	if p.TotalBudget > 0 {
		return StateActive
	}
	return StateUninitialized
}

// TotalDays is the inclusive length of the period.
func (p Period) TotalDays() int {
	return DaysBetween(p.StartDate, p.EndDate) + 1
}

// Expense is a single logged spend. Expenses are immutable once created.
type Expense struct {
	ID          int64     `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	Amount      float64   `json:"amount" yaml:"amount"`
	Category    string    `json:"category" yaml:"category"`
	Date        time.Time `json:"date" yaml:"date"`
}

// UnderflowOption selects what happens to an unspent daily allocation.
type UnderflowOption string

const (
	Reallocate UnderflowOption = "reallocate"
	NextDay    UnderflowOption = "next_day"
	Save       UnderflowOption = "save"
)

// UnderflowOptions lists the options in display order.
var UnderflowOptions = []UnderflowOption{Reallocate, NextDay, Save}

// ParseUnderflowOption validates a user-supplied option name.
func ParseUnderflowOption(s string) (UnderflowOption, error) {
	for _, o := range UnderflowOptions {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown underflow option %q (want reallocate, next_day or save)", s)
}

// UnderflowResult reports what an underflow adjustment did.
type UnderflowResult struct {
	Option        UnderflowOption `json:"option"`
	Applied       bool            `json:"applied"`
	Surplus       float64         `json:"surplus"`
	RemainingDays int             `json:"remaining_days"`
	Period        Period          `json:"period"`
}
