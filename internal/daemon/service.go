// Package daemon provides the long-running local budget service: a JSON
// HTTP API over one Allocator plus an event feed of every change.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/dayburn/internal/model"
	"github.com/theirongolddev/dayburn/internal/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Budget is the allocator surface the daemon serves.
type Budget interface {
	Summary() model.Summary
	Expenses() []model.Expense
	CategoryTotals() []model.CategoryTotal
	SetBudget(ctx context.Context, amount float64, endDate time.Time) (model.Period, error)
	AddExpense(ctx context.Context, description string, amount float64, category string) (model.Expense, error)
	AdjustForUnderflow(ctx context.Context, opt model.UnderflowOption) (model.UnderflowResult, error)
	Reset(ctx context.Context) error
	Reload(ctx context.Context) error
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	Backend      string
	Logger       *zap.Logger
	Now          func() time.Time

	// Ping checks the store behind the budget for /healthz. Optional.
	Ping func(ctx context.Context) error
}

// Snapshot is a compact budget state for status and event payloads.
type Snapshot struct {
	At              time.Time         `json:"at"`
	State           model.PeriodState `json:"state"`
	TotalBudget     float64           `json:"total_budget"`
	DailyAllocation float64           `json:"daily_allocation"`
	RemainingToday  float64           `json:"remaining_today"`
	TotalRemaining  float64           `json:"total_remaining"`
	TotalSpent      float64           `json:"total_spent"`
	Savings         float64           `json:"savings"`
	DaysRemaining   int               `json:"days_remaining"`
	Expenses        int               `json:"expenses"`
}

// Delta captures the change between two snapshots.
type Delta struct {
	Spent           float64 `json:"spent"`
	TotalRemaining  float64 `json:"total_remaining"`
	DailyAllocation float64 `json:"daily_allocation"`
	Expenses        int     `json:"expenses"`
}

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventBudgetSet     = "budget_set"
	EventExpenseAdded  = "expense_added"
	EventUnderflow     = "underflow_adjusted"
	EventReset         = "reset"
	EventReloaded      = "reloaded"
	EventDayRollover   = "day_rollover"
	EventStorageFailed = "storage_failed"
)

// Event is emitted whenever the budget changes.
type Event struct {
	ID        int64                  `json:"id"`
	UUID      string                 `json:"uuid"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Snapshot  Snapshot               `json:"snapshot"`
	Delta     Delta                  `json:"delta"`
	Expense   *model.Expense         `json:"expense,omitempty"`
	Underflow *model.UnderflowResult `json:"underflow,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastTickAt      time.Time `json:"last_tick_at"`
	TickIntervalSec int       `json:"tick_interval_sec"`
	TickCount       int64     `json:"tick_count"`
	Backend         string    `json:"backend,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	budget Budget
	logger *zap.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastTickAt  time.Time
	tickCount   int64
	lastError   string
	today       time.Time
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service serving b.
func New(cfg Config, b Budget) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8791"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		cfg:       cfg,
		budget:    b,
		logger:    logger,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
	s.today = model.Day(s.startedAt)
	s.snapshot = snapshotFromSummary(b.Summary(), s.startedAt)
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /v1/expenses", s.handleAddExpense)
	mux.HandleFunc("GET /v1/categories", s.handleCategories)
	mux.HandleFunc("GET /v1/report", s.handleReport)
	mux.HandleFunc("POST /v1/budget", s.handleSetBudget)
	mux.HandleFunc("POST /v1/adjust", s.handleAdjust)
	mux.HandleFunc("POST /v1/reset", s.handleReset)
	mux.HandleFunc("POST /v1/reload", s.handleReload)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return mux
}

// Run serves the HTTP API and watches for day rollover until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("daemon listening",
		zap.String("op", "daemon_run"),
		zap.String("addr", s.cfg.Addr),
		zap.String("backend", s.cfg.Backend),
	)
	s.publish(EventSnapshot, nil, nil, "")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.tick()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// tick refreshes the snapshot and announces a new calendar day, since the
// day's remaining allocation changes at midnight without any mutation.
func (s *Service) tick() {
	now := s.cfg.Now()
	today := model.Day(now)

	s.mu.Lock()
	rolled := !today.Equal(s.today)
	s.today = today
	s.lastTickAt = now
	s.tickCount++
	s.mu.Unlock()

	if rolled {
		s.logger.Info("day rollover", zap.String("op", "tick"), zap.String("date", today.Format(model.DateLayout)))
		s.publish(EventDayRollover, nil, nil, "")
		return
	}
	s.refresh()
}

func (s *Service) refresh() Snapshot {
	snap := snapshotFromSummary(s.budget.Summary(), s.cfg.Now())
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return snap
}

// publish refreshes the snapshot and appends an event carrying it.
func (s *Service) publish(typ string, e *model.Expense, u *model.UnderflowResult, errMsg string) Event {
	now := s.cfg.Now()
	snap := snapshotFromSummary(s.budget.Summary(), now)

	s.mu.Lock()
	prev := s.snapshot
	s.snapshot = snap
	if errMsg != "" {
		s.lastError = errMsg
	}
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		UUID:      uuid.NewString(),
		Type:      typ,
		Timestamp: now,
		Snapshot:  snap,
		Delta:     diffSnapshots(prev, snap),
		Expense:   e,
		Underflow: u,
		Error:     errMsg,
	}
	// IDs are assigned and appended under the same lock so the buffer and
	// every subscriber see events in ID order.
	s.appendEventLocked(ev)
	s.mu.Unlock()
	return ev
}

func snapshotFromSummary(sum model.Summary, at time.Time) Snapshot {
	return Snapshot{
		At:              at,
		State:           sum.State,
		TotalBudget:     sum.TotalBudget,
		DailyAllocation: sum.DailyAllocation,
		RemainingToday:  sum.RemainingToday,
		TotalRemaining:  sum.TotalRemaining,
		TotalSpent:      sum.TotalSpent,
		Savings:         sum.Savings,
		DaysRemaining:   sum.DaysRemaining,
		Expenses:        len(sum.Expenses),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Spent:           curr.TotalSpent - prev.TotalSpent,
		TotalRemaining:  curr.TotalRemaining - prev.TotalRemaining,
		DailyAllocation: curr.DailyAllocation - prev.DailyAllocation,
		Expenses:        curr.Expenses - prev.Expenses,
	}
}

// appendEventLocked adds ev to the ring buffer and fans it out. Sends never
// block; a full subscriber misses the event. Callers hold s.mu.
func (s *Service) appendEventLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastTickAt:      s.lastTickAt,
		TickIntervalSec: int(s.cfg.Interval.Seconds()),
		TickCount:       s.tickCount,
		Backend:         s.cfg.Backend,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// report is shared by the report handler and tests.
func (s *Service) report(tf report.Timeframe) report.Document {
	return report.Build(s.budget.Summary(), tf, s.cfg.Now())
}
