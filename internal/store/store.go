// Package store persists the budget period and expense log in SQLite or
// PostgreSQL. The schema is managed by embedded goose migrations.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/dayburn/internal/model"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // register sqlite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its settings in package globals.
var migrateMu sync.Mutex

// Store is the SQL-backed record store used by the allocator.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

// Open connects to dsn, creating the SQLite file and its directory when
// needed, and migrates the schema to the latest version. An empty dsn
// opens DefaultPath.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dsn == "" {
		dsn = DefaultPath()
	}

	d := dialectFor(dsn)
	source := dsn
	if d == sqliteDialect {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		source = dsn + "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(d.name, source)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", d.goose, err)
	}
	if d == postgresDialect {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s db: %w", d.goose, err)
	}

	s := &Store{db: db, dialect: d, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("store opened",
		zap.String("op", "open"),
		zap.String("backend", d.goose),
		zap.String("dsn", Redact(dsn)),
	)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{s.logger.Sugar()})
	if err := goose.SetDialect(s.dialect.goose); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Backend names the SQL dialect in use.
func (s *Store) Backend() string {
	return s.dialect.goose
}

// LoadPeriod returns the stored period, or nil when no budget has been set.
func (s *Store) LoadPeriod(ctx context.Context) (*model.Period, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		total_budget, start_date, end_date, allocation_per_day, total_remaining,
		savings, earmark_date, earmark_amount, last_adjusted, prior_expense_id
		FROM budget_period WHERE id = 1`)

	var p model.Period
	var start, end, earmarkDate, lastAdjusted string
	err := row.Scan(&p.TotalBudget, &start, &end, &p.AllocationPerDay, &p.TotalRemaining,
		&p.Savings, &earmarkDate, &p.Earmark.Amount, &lastAdjusted, &p.PriorExpenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading budget period: %w", err)
	}

	if p.StartDate, err = parseDate(start); err != nil {
		return nil, fmt.Errorf("budget period start date: %w", err)
	}
	if p.EndDate, err = parseDate(end); err != nil {
		return nil, fmt.Errorf("budget period end date: %w", err)
	}
	if p.Earmark.Date, err = parseDate(earmarkDate); err != nil {
		return nil, fmt.Errorf("budget period earmark date: %w", err)
	}
	if p.LastAdjusted, err = parseDate(lastAdjusted); err != nil {
		return nil, fmt.Errorf("budget period last adjusted: %w", err)
	}
	return &p, nil
}

// SavePeriod replaces the stored period.
func (s *Store) SavePeriod(ctx context.Context, p model.Period) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(`INSERT INTO budget_period
		(id, total_budget, start_date, end_date, allocation_per_day, total_remaining,
		 savings, earmark_date, earmark_amount, last_adjusted, prior_expense_id)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			total_budget = excluded.total_budget,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			allocation_per_day = excluded.allocation_per_day,
			total_remaining = excluded.total_remaining,
			savings = excluded.savings,
			earmark_date = excluded.earmark_date,
			earmark_amount = excluded.earmark_amount,
			last_adjusted = excluded.last_adjusted,
			prior_expense_id = excluded.prior_expense_id`),
		p.TotalBudget, formatDate(p.StartDate), formatDate(p.EndDate), p.AllocationPerDay, p.TotalRemaining,
		p.Savings, formatDate(p.Earmark.Date), p.Earmark.Amount, formatDate(p.LastAdjusted), p.PriorExpenseID,
	)
	if err != nil {
		return fmt.Errorf("saving budget period: %w", err)
	}
	return nil
}

// UpdateRemainingBudget overwrites the stored remaining budget. It is a
// no-op when no period row exists.
func (s *Store) UpdateRemainingBudget(ctx context.Context, amount float64) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(
		"UPDATE budget_period SET total_remaining = ? WHERE id = 1"), amount)
	if err != nil {
		return fmt.Errorf("updating remaining budget: %w", err)
	}
	return nil
}

// LoadExpenses returns every expense in insertion order.
func (s *Store) LoadExpenses(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, description, amount, category, date FROM expenses ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("reading expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		var date string
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &date); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("expense %d date: %w", e.ID, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// InsertExpense stores a single expense.
func (s *Store) InsertExpense(ctx context.Context, e model.Expense) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(`INSERT INTO expenses
		(id, description, amount, category, date)
		VALUES (?, ?, ?, ?, ?)`),
		e.ID, e.Description, e.Amount, e.Category, formatDate(e.Date),
	)
	if err != nil {
		return fmt.Errorf("inserting expense %d: %w", e.ID, err)
	}
	return nil
}

// ClearAll deletes the period and every expense.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"expenses", "budget_period"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *Store) expenseCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses").Scan(&count)
	return count, err
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return model.ParseDate(s)
}

// gooseLogger routes migration output to zap at debug level.
type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.Debugf(strings.TrimSuffix(format, "\n"), v...)
}
