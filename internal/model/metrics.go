package model

import "time"

// Summary is the typed budget projection handed to presentation layers.
type Summary struct {
	State           PeriodState `json:"state" yaml:"state"`
	TotalBudget     float64     `json:"total_budget" yaml:"total_budget"`
	DailyAllocation float64     `json:"daily_allocation" yaml:"daily_allocation"`
	RemainingToday  float64     `json:"remaining_today" yaml:"remaining_today"`
	TotalRemaining  float64     `json:"total_remaining" yaml:"total_remaining"`
	TotalSpent      float64     `json:"total_spent" yaml:"total_spent"`
	Savings         float64     `json:"savings" yaml:"savings"`
	StartDate       time.Time   `json:"start_date" yaml:"start_date"`
	EndDate         time.Time   `json:"end_date" yaml:"end_date"`
	TotalDays       int         `json:"total_days" yaml:"total_days"`
	DaysRemaining   int         `json:"days_remaining" yaml:"days_remaining"`
	Earmark         Earmark     `json:"earmark" yaml:"earmark"`
	Expenses        []Expense   `json:"expenses" yaml:"expenses"`
}

// RemainingShare is the fraction of the total budget still unspent, clamped to 0..1.
func (s Summary) RemainingShare() float64 {
	if s.TotalBudget <= 0 {
		return 0
	}
	pct := s.TotalRemaining / s.TotalBudget
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// CategoryTotal holds aggregated spend for one category.
type CategoryTotal struct {
	Category     string  `json:"category" yaml:"category"`
	Amount       float64 `json:"amount" yaml:"amount"`
	Count        int     `json:"count" yaml:"count"`
	SharePercent float64 `json:"share_percent" yaml:"share_percent"`
}

// DailyStats holds spend against allocation for a single calendar day.
type DailyStats struct {
	Date       time.Time `json:"date" yaml:"date"`
	Allocation float64   `json:"allocation" yaml:"allocation"`
	Spent      float64   `json:"spent" yaml:"spent"`
	Expenses   int       `json:"expenses" yaml:"expenses"`
}

// Remaining is the day's unspent allocation, never negative.
func (d DailyStats) Remaining() float64 {
	if d.Spent >= d.Allocation {
		return 0
	}
	return d.Allocation - d.Spent
}

// WeeklyAverage is the mean daily spend over the active days of one week.
type WeeklyAverage struct {
	WeekStart time.Time `json:"week_start" yaml:"week_start"`
	Average   float64   `json:"average" yaml:"average"`
}

// ReportStats holds the aggregate figures shown in reports.
type ReportStats struct {
	Timeframe            string          `json:"timeframe" yaml:"timeframe"`
	TotalSpent           float64         `json:"total_spent" yaml:"total_spent"`
	ExpenseCount         int             `json:"expense_count" yaml:"expense_count"`
	ActiveDays           int             `json:"active_days" yaml:"active_days"`
	AverageDaily         float64         `json:"average_daily" yaml:"average_daily"`
	Biggest              *Expense        `json:"biggest,omitempty" yaml:"biggest,omitempty"`
	MostFrequentCategory string          `json:"most_frequent_category" yaml:"most_frequent_category"`
	Trend                float64         `json:"trend" yaml:"trend"`
	Weekly               []WeeklyAverage `json:"weekly,omitempty" yaml:"weekly,omitempty"`
	From                 time.Time       `json:"from,omitempty" yaml:"from,omitempty"`
	To                   time.Time       `json:"to,omitempty" yaml:"to,omitempty"`
}
