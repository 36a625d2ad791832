package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/dayburn/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "budget.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadPeriod_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	p, err := s.LoadPeriod(context.Background())
	if err != nil {
		t.Fatalf("LoadPeriod: %v", err)
	}
	if p != nil {
		t.Fatalf("LoadPeriod = %+v, want nil", p)
	}
	if s.Backend() != "sqlite3" {
		t.Errorf("Backend = %q, want sqlite3", s.Backend())
	}
}

func TestSavePeriod_RoundTripAndReplace(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first := model.Period{
		TotalBudget:      700,
		StartDate:        date(2026, 3, 10),
		EndDate:          date(2026, 3, 16),
		AllocationPerDay: 100,
		TotalRemaining:   700,
	}
	if err := s.SavePeriod(ctx, first); err != nil {
		t.Fatalf("SavePeriod: %v", err)
	}

	second := model.Period{
		TotalBudget:      300,
		StartDate:        date(2026, 4, 1),
		EndDate:          date(2026, 4, 3),
		AllocationPerDay: 112.5,
		TotalRemaining:   240,
		Savings:          12.25,
		Earmark:          model.Earmark{Date: date(2026, 4, 2), Amount: 17.5},
		LastAdjusted:     date(2026, 4, 1),
		PriorExpenseID:   7,
	}
	if err := s.SavePeriod(ctx, second); err != nil {
		t.Fatalf("SavePeriod (replace): %v", err)
	}

	got, err := s.LoadPeriod(ctx)
	if err != nil {
		t.Fatalf("LoadPeriod: %v", err)
	}
	if got == nil || !reflect.DeepEqual(*got, second) {
		t.Fatalf("LoadPeriod = %+v, want %+v", got, second)
	}
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	_ = s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("Ping on a closed store should fail")
	}
}

func TestUpdateRemainingBudget(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// No row yet: nothing to update, no error.
	if err := s.UpdateRemainingBudget(ctx, 5); err != nil {
		t.Fatalf("UpdateRemainingBudget without period: %v", err)
	}
	if p, _ := s.LoadPeriod(ctx); p != nil {
		t.Fatalf("UpdateRemainingBudget created a period: %+v", p)
	}

	if err := s.SavePeriod(ctx, model.Period{TotalBudget: 100, StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 1), TotalRemaining: 100}); err != nil {
		t.Fatalf("SavePeriod: %v", err)
	}
	if err := s.UpdateRemainingBudget(ctx, -42.5); err != nil {
		t.Fatalf("UpdateRemainingBudget: %v", err)
	}
	p, err := s.LoadPeriod(ctx)
	if err != nil {
		t.Fatalf("LoadPeriod: %v", err)
	}
	if p.TotalRemaining != -42.5 {
		t.Fatalf("TotalRemaining = %.2f, want -42.50", p.TotalRemaining)
	}
}

func TestExpenses_InsertLoadClear(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := []model.Expense{
		{ID: 1, Description: "Matatu fare", Amount: 80, Category: "Transportation", Date: date(2026, 3, 10)},
		{ID: 2, Description: `Lunch, "special"`, Amount: 350.5, Category: "Food", Date: date(2026, 3, 10)},
		{ID: 3, Description: "Power tokens", Amount: 1000, Category: "Utilities", Date: date(2026, 3, 11)},
	}
	for _, e := range want {
		if err := s.InsertExpense(ctx, e); err != nil {
			t.Fatalf("InsertExpense(%d): %v", e.ID, err)
		}
	}
	if err := s.InsertExpense(ctx, want[0]); err == nil {
		t.Fatal("InsertExpense with duplicate ID succeeded, want error")
	}

	got, err := s.LoadExpenses(ctx)
	if err != nil {
		t.Fatalf("LoadExpenses: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadExpenses = %+v, want %+v", got, want)
	}
	if n, _ := s.expenseCount(ctx); n != 3 {
		t.Fatalf("expenseCount = %d, want 3", n)
	}

	if err := s.SavePeriod(ctx, model.Period{TotalBudget: 1, StartDate: date(2026, 3, 10), EndDate: date(2026, 3, 10)}); err != nil {
		t.Fatalf("SavePeriod: %v", err)
	}
	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if n, _ := s.expenseCount(ctx); n != 0 {
		t.Fatalf("expenseCount after ClearAll = %d, want 0", n)
	}
	if p, _ := s.LoadPeriod(ctx); p != nil {
		t.Fatalf("LoadPeriod after ClearAll = %+v, want nil", p)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "budget.db")

	s, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.InsertExpense(ctx, model.Expense{ID: 7, Description: "Book", Amount: 20, Category: "Other", Date: date(2026, 2, 2)}); err != nil {
		t.Fatalf("InsertExpense: %v", err)
	}
	_ = s.Close()

	// Migrations already applied must not fail the second open.
	s, err = Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	got, err := s.LoadExpenses(ctx)
	if err != nil {
		t.Fatalf("LoadExpenses: %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("LoadExpenses = %+v, want the one stored expense", got)
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn  string
		want dialect
	}{
		{"/tmp/budget.db", sqliteDialect},
		{"budget.db", sqliteDialect},
		{"postgres://u:p@localhost/db", postgresDialect},
		{"POSTGRESQL://localhost/db", postgresDialect},
	}
	for _, tt := range tests {
		if got := dialectFor(tt.dsn); got != tt.want {
			t.Errorf("dialectFor(%q) = %+v, want %+v", tt.dsn, got, tt.want)
		}
	}
}

func TestRebind(t *testing.T) {
	q := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	if got := sqliteDialect.rebind(q); got != q {
		t.Errorf("sqlite rebind = %q, want unchanged", got)
	}
	want := "UPDATE t SET a = $1, b = $2 WHERE id = $3"
	if got := postgresDialect.rebind(q); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}

func TestRedact(t *testing.T) {
	tests := []struct{ in, want string }{
		{"postgres://alice:s3cret@db:5432/budget", "postgres://alice:***@db:5432/budget"},
		{"postgres://alice@db/budget", "postgres://alice@db/budget"},
		{"/home/alice/budget.db", "/home/alice/budget.db"},
	}
	for _, tt := range tests {
		if got := Redact(tt.in); got != tt.want {
			t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
