// Package budget implements the daily allocation engine: it owns the active
// budget period and the expense log, recomputes the per-day allocation on
// every mutation, and writes every change through to a Store.
package budget

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/dayburn/internal/model"
	"github.com/theirongolddev/dayburn/internal/report"

	"go.uber.org/zap"
)

// Allocator owns budget state and expense records. All methods are safe for
// concurrent use; each mutation holds the write lock across the in-memory
// update and the write-through that follows it.
type Allocator struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger

	mu       sync.RWMutex
	period   model.Period
	expenses []model.Expense
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger attaches a logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New builds an Allocator and loads its state from store. A store with no
// period yields an uninitialized budget, not an error.
func New(ctx context.Context, store Store, opts ...Option) (*Allocator, error) {
	a := &Allocator{
		store:  store,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload replaces the in-memory state with what the store holds.
func (a *Allocator) Reload(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.store.LoadPeriod(ctx)
	if err != nil {
		return &StorageError{Op: "load period", Err: err}
	}
	expenses, err := a.store.LoadExpenses(ctx)
	if err != nil {
		return &StorageError{Op: "load expenses", Err: err}
	}

	if p == nil {
		a.period = model.EmptyPeriod(a.today())
	} else {
		a.period = *p
	}
	a.expenses = expenses

	a.logger.Debug("loaded budget state",
		zap.String("op", "reload"),
		zap.String("state", string(a.period.State())),
		zap.Int("expenses", len(a.expenses)),
	)
	return nil
}

func (a *Allocator) today() time.Time {
	return model.Day(a.now())
}

// SetBudget starts a new period running from today through endDate,
// replacing any prior period. Logged expenses are kept.
func (a *Allocator) SetBudget(ctx context.Context, amount float64, endDate time.Time) (model.Period, error) {
	if err := validateAmount("amount", amount); err != nil {
		return model.Period{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	today := a.today()
	end := model.Day(endDate)
	if end.Before(today) {
		return model.Period{}, newValidationError("end date",
			fmt.Sprintf("%s is before today (%s)", end.Format(model.DateLayout), today.Format(model.DateLayout)))
	}

	p := model.Period{
		TotalBudget:    amount,
		StartDate:      today,
		EndDate:        end,
		TotalRemaining: amount,
		PriorExpenseID: a.nextIDLocked() - 1,
	}
	p.AllocationPerDay = perDay(amount, p.TotalDays())
	a.period = p

	a.logger.Info("budget set",
		zap.String("op", "set_budget"),
		zap.Float64("total_budget", amount),
		zap.String("end_date", end.Format(model.DateLayout)),
		zap.Float64("allocation_per_day", p.AllocationPerDay),
	)

	if err := a.store.SavePeriod(ctx, p); err != nil {
		return p, a.storageFailure("save period", err)
	}
	return p, nil
}

// AddExpense logs a spend dated today. The remaining budget drops by amount
// even when that drives it negative. When the expense overruns what was left
// of today's allocation, future days are shrunk to absorb the deficit.
func (a *Allocator) AddExpense(ctx context.Context, description string, amount float64, category string) (model.Expense, error) {
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	if description == "" {
		return model.Expense{}, newValidationError("description", "must not be empty")
	}
	if category == "" {
		return model.Expense{}, newValidationError("category", "must not be empty")
	}
	if err := validateAmount("amount", amount); err != nil {
		return model.Expense{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	today := a.today()
	remainingForToday := a.period.AllocationPerDay + a.period.Earmark.For(today) - a.spentOnLocked(today)

	e := model.Expense{
		ID:          a.nextIDLocked(),
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        today,
	}
	a.expenses = append(a.expenses, e)
	a.period.TotalRemaining -= amount

	overflow := amount > remainingForToday
	if overflow {
		a.overflowLocked(today)
	}

	if err := a.store.InsertExpense(ctx, e); err != nil {
		return e, a.storageFailure("insert expense", err)
	}
	if err := a.store.UpdateRemainingBudget(ctx, a.period.TotalRemaining); err != nil {
		return e, a.storageFailure("update remaining budget", err)
	}
	// Without a budget there is no period row to keep in step.
	if overflow && a.period.State() == model.StateActive {
		if err := a.store.SavePeriod(ctx, a.period); err != nil {
			return e, a.storageFailure("save period", err)
		}
	}
	return e, nil
}

// overflowLocked re-derives the allocation from the remaining budget spread
// over the days after today. A pending earmark is dropped since the even
// spread already covers every remaining unit of budget.
func (a *Allocator) overflowLocked(today time.Time) {
	days := a.remainingDaysLocked(today)
	if days > 0 && a.period.TotalRemaining > 0 {
		a.period.AllocationPerDay = a.period.TotalRemaining / float64(days)
	} else {
		a.period.AllocationPerDay = 0
	}
	a.period.Earmark = model.Earmark{}

	a.logger.Debug("allocation recalculated after overflow",
		zap.String("op", "overflow"),
		zap.Int("remaining_days", days),
		zap.Float64("total_remaining", a.period.TotalRemaining),
		zap.Float64("allocation_per_day", a.period.AllocationPerDay),
	)
}

// AdjustForUnderflow decides what happens to the part of today's allocation
// that was not spent. At most one adjustment applies per calendar day.
//
// Reallocate adds surplus/remainingDays to the allocation. Unlike the overflow
// path this is incremental, not a re-derivation from the remaining budget.
// NextDay earmarks the surplus for tomorrow only. Save moves it out of the
// spendable budget into savings.
func (a *Allocator) AdjustForUnderflow(ctx context.Context, opt model.UnderflowOption) (model.UnderflowResult, error) {
	if _, err := model.ParseUnderflowOption(string(opt)); err != nil {
		return model.UnderflowResult{}, newValidationError("option", err.Error())
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	today := a.today()
	if !a.period.LastAdjusted.IsZero() && model.SameDay(a.period.LastAdjusted, today) {
		return model.UnderflowResult{Option: opt, Period: a.period}, ErrAlreadyAdjusted
	}

	surplus := a.period.AllocationPerDay - a.spentOnLocked(today)
	days := a.remainingDaysLocked(today)
	res := model.UnderflowResult{Option: opt, RemainingDays: days, Period: a.period}
	if surplus <= 0 {
		return res, nil
	}
	res.Surplus = surplus

	switch opt {
	case model.Reallocate:
		if days <= 0 {
			return res, nil
		}
		a.period.AllocationPerDay += surplus / float64(days)
	case model.NextDay:
		if days <= 0 {
			return res, newValidationError("option", "the period ends today, there is no next day to roll into")
		}
		a.period.Earmark = model.Earmark{Date: today.AddDate(0, 0, 1), Amount: surplus}
	case model.Save:
		moved := math.Min(surplus, a.period.TotalRemaining)
		if moved <= 0 {
			return res, nil
		}
		res.Surplus = moved
		a.period.TotalRemaining -= moved
		a.period.Savings += moved
	}

	a.period.LastAdjusted = today
	res.Applied = true
	res.Period = a.period

	a.logger.Info("underflow adjustment applied",
		zap.String("op", "underflow"),
		zap.String("option", string(opt)),
		zap.Float64("surplus", res.Surplus),
		zap.Int("remaining_days", days),
		zap.Float64("allocation_per_day", a.period.AllocationPerDay),
	)

	if err := a.store.SavePeriod(ctx, a.period); err != nil {
		return res, a.storageFailure("save period", err)
	}
	return res, nil
}

// Reset deletes every persisted record and zeroes the in-memory state.
func (a *Allocator) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.period = model.EmptyPeriod(a.today())
	a.expenses = nil

	a.logger.Info("budget reset", zap.String("op", "reset"))

	if err := a.store.ClearAll(ctx); err != nil {
		return a.storageFailure("clear all", err)
	}
	return nil
}

// RemainingDailyAllocation returns what is left to spend on date, never
// less than zero.
func (a *Allocator) RemainingDailyAllocation(date time.Time) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.remainingOnLocked(date)
}

// RemainingToday is RemainingDailyAllocation for the current day.
func (a *Allocator) RemainingToday() float64 {
	return a.RemainingDailyAllocation(a.now())
}

// ExpensesByCategory sums expense amounts per category.
func (a *Allocator) ExpensesByCategory() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	totals := make(map[string]float64)
	for _, e := range a.expenses {
		totals[e.Category] += e.Amount
	}
	return totals
}

// CategoryTotals returns per-category spend, largest first.
func (a *Allocator) CategoryTotals() []model.CategoryTotal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return report.AggregateCategories(a.expenses)
}

// Summary returns a snapshot of the budget. TotalSpent covers the current
// period only; Expenses lists everything logged.
func (a *Allocator) Summary() model.Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	today := a.today()
	p := a.period

	s := model.Summary{
		State:           p.State(),
		TotalBudget:     p.TotalBudget,
		DailyAllocation: p.AllocationPerDay,
		RemainingToday:  a.remainingOnLocked(today),
		TotalRemaining:  p.TotalRemaining,
		Savings:         p.Savings,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		Earmark:         p.Earmark,
		Expenses:        a.expensesLocked(),
	}
	for _, e := range a.expenses {
		if p.InPeriod(e) {
			s.TotalSpent += e.Amount
		}
	}
	if s.State == model.StateActive {
		s.TotalDays = p.TotalDays()
		if left := model.DaysBetween(today, p.EndDate) + 1; left > 0 {
			s.DaysRemaining = left
		}
	}
	return s
}

// CurrentPeriod returns a copy of the active period.
func (a *Allocator) CurrentPeriod() model.Period {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.period
}

// Expenses returns a copy of all expenses in insertion order.
func (a *Allocator) Expenses() []model.Expense {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.expensesLocked()
}

// TotalBudget returns the amount the current period started with.
func (a *Allocator) TotalBudget() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.period.TotalBudget
}

// TotalRemainingBudget returns the unspent budget; negative means overspent.
func (a *Allocator) TotalRemainingBudget() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.period.TotalRemaining
}

// DailyAllocation returns the current per-day allocation.
func (a *Allocator) DailyAllocation() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.period.AllocationPerDay
}

func (a *Allocator) expensesLocked() []model.Expense {
	out := make([]model.Expense, len(a.expenses))
	copy(out, a.expenses)
	return out
}

func (a *Allocator) spentOnLocked(date time.Time) float64 {
	var spent float64
	for _, e := range a.expenses {
		if model.SameDay(e.Date, date) {
			spent += e.Amount
		}
	}
	return spent
}

func (a *Allocator) remainingOnLocked(date time.Time) float64 {
	left := a.period.AllocationPerDay + a.period.Earmark.For(date) - a.spentOnLocked(date)
	if left < 0 {
		return 0
	}
	return left
}

// remainingDaysLocked counts the days strictly after today through the end date.
func (a *Allocator) remainingDaysLocked(today time.Time) int {
	return model.DaysBetween(today.AddDate(0, 0, 1), a.period.EndDate) + 1
}

func (a *Allocator) nextIDLocked() int64 {
	var maxID int64
	for _, e := range a.expenses {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}

func (a *Allocator) storageFailure(op string, err error) error {
	a.logger.Warn("write-through failed, in-memory state kept",
		zap.String("op", op),
		zap.Error(err),
	)
	return &StorageError{Op: op, Err: err}
}

func perDay(amount float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return amount / float64(days)
}

func validateAmount(field string, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return newValidationError(field, "must be a finite number")
	}
	if amount <= 0 {
		return newValidationError(field, "must be greater than zero")
	}
	return nil
}
