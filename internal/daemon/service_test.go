package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/dayburn/internal/budget"
	"github.com/theirongolddev/dayburn/internal/model"
	"github.com/theirongolddev/dayburn/internal/store"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func newTestService(t *testing.T, buffer int) (*Service, *testClock) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "budget.db"), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	clock := &testClock{t: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)}
	alloc, err := budget.New(ctx, st, budget.WithClock(clock.now))
	if err != nil {
		t.Fatalf("budget.New: %v", err)
	}

	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: buffer,
		Backend:      st.Backend(),
		Now:          clock.now,
		Ping:         st.Ping,
	}, alloc)
	return s, clock
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		TotalSpent:      40,
		TotalRemaining:  660,
		DailyAllocation: 100,
		Expenses:        1,
	}
	curr := Snapshot{
		TotalSpent:      190,
		TotalRemaining:  510,
		DailyAllocation: 85,
		Expenses:        2,
	}

	delta := diffSnapshots(prev, curr)
	if math.Abs(delta.Spent-150) > 1e-9 {
		t.Fatalf("Spent delta = %.2f, want 150", delta.Spent)
	}
	if math.Abs(delta.TotalRemaining+150) > 1e-9 {
		t.Fatalf("TotalRemaining delta = %.2f, want -150", delta.TotalRemaining)
	}
	if math.Abs(delta.DailyAllocation+15) > 1e-9 {
		t.Fatalf("DailyAllocation delta = %.2f, want -15", delta.DailyAllocation)
	}
	if delta.Expenses != 1 {
		t.Fatalf("Expenses delta = %d, want 1", delta.Expenses)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s, _ := newTestService(t, 2)

	s.mu.Lock()
	s.appendEventLocked(Event{ID: 1})
	s.appendEventLocked(Event{ID: 2})
	s.appendEventLocked(Event{ID: 3})
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestHandlers_StatusCodes(t *testing.T) {
	s, _ := newTestService(t, 50)
	h := s.Handler()

	steps := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/healthz", "", http.StatusOK},
		{"POST", "/v1/budget", `{"amount":700,"days":7}`, http.StatusCreated},
		{"POST", "/v1/budget", `{"amount":-5,"days":7}`, http.StatusBadRequest},
		{"POST", "/v1/budget", `{"amount":700}`, http.StatusBadRequest},
		{"POST", "/v1/budget", `{"amount":700,"days":3,"end_date":"2026-03-20"}`, http.StatusBadRequest},
		{"POST", "/v1/budget", `{"amount":700,"end_date":"2026-02-01"}`, http.StatusBadRequest},
		{"POST", "/v1/budget", `{"amount":700,"end_date":"2026-03-16"}`, http.StatusCreated},
		{"POST", "/v1/expenses", `{"description":"Lunch","amount":40,"category":"Food"}`, http.StatusCreated},
		{"POST", "/v1/expenses", `{"description":"","amount":40,"category":"Food"}`, http.StatusBadRequest},
		{"POST", "/v1/expenses", `{"description":"Tea","amount":5,"colour":"red"}`, http.StatusBadRequest},
		{"POST", "/v1/expenses", `not json`, http.StatusBadRequest},
		{"POST", "/v1/adjust", `{"option":"bogus"}`, http.StatusBadRequest},
		{"POST", "/v1/adjust", `{"option":"save"}`, http.StatusOK},
		{"POST", "/v1/adjust", `{"option":"save"}`, http.StatusConflict},
		{"GET", "/v1/summary", "", http.StatusOK},
		{"POST", "/v1/summary", "", http.StatusMethodNotAllowed},
		{"GET", "/v1/expenses?timeframe=week&category=food", "", http.StatusOK},
		{"GET", "/v1/expenses?timeframe=decade", "", http.StatusBadRequest},
		{"GET", "/v1/categories", "", http.StatusOK},
		{"GET", "/v1/report?timeframe=month", "", http.StatusOK},
		{"GET", "/v1/status", "", http.StatusOK},
		{"POST", "/v1/reload", "", http.StatusOK},
		{"POST", "/v1/reset", "", http.StatusNoContent},
		{"GET", "/v1/events", "", http.StatusOK},
	}
	for _, st := range steps {
		rec := do(t, h, st.method, st.path, st.body)
		if rec.Code != st.want {
			t.Fatalf("%s %s %s = %d, want %d (body %s)", st.method, st.path, st.body, rec.Code, st.want, rec.Body.String())
		}
	}
}

func TestHandlers_FundsFlowThroughAPI(t *testing.T) {
	s, _ := newTestService(t, 50)
	h := s.Handler()

	do(t, h, "POST", "/v1/budget", `{"amount":700,"days":7}`)
	do(t, h, "POST", "/v1/expenses", `{"description":"Lunch","amount":40,"category":"Food"}`)
	do(t, h, "POST", "/v1/expenses", `{"description":"Bus","amount":10}`)
	do(t, h, "POST", "/v1/adjust", `{"option":"save"}`)

	var sum model.Summary
	rec := do(t, h, "GET", "/v1/summary", "")
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.State != model.StateActive {
		t.Fatalf("State = %s, want %s", sum.State, model.StateActive)
	}
	if math.Abs(sum.Savings-50) > 1e-9 {
		t.Fatalf("Savings = %.2f, want 50", sum.Savings)
	}
	if got := sum.TotalRemaining + sum.Savings + sum.TotalSpent; math.Abs(got-700) > 1e-9 {
		t.Fatalf("remaining+savings+spent = %.2f, want 700", got)
	}

	var cats []model.CategoryTotal
	rec = do(t, h, "GET", "/v1/categories", "")
	if err := json.NewDecoder(rec.Body).Decode(&cats); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(cats) != 2 || cats[0].Category != "Food" || cats[1].Category != "Other" {
		t.Fatalf("categories = %+v, want Food then Other", cats)
	}

	var expenses []model.Expense
	rec = do(t, h, "GET", "/v1/expenses?category=FOOD", "")
	if err := json.NewDecoder(rec.Body).Decode(&expenses); err != nil {
		t.Fatalf("decode expenses: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Description != "Lunch" {
		t.Fatalf("expenses = %+v, want only Lunch", expenses)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	s, _ := newTestService(t, 50)
	h := s.Handler()

	do(t, h, "POST", "/v1/budget", `{"amount":700,"days":7}`)
	do(t, h, "POST", "/v1/expenses", `{"description":"Lunch","amount":150,"category":"Food"}`)
	do(t, h, "POST", "/v1/expenses", `{"description":"","amount":1,"category":"Food"}`)

	var events []Event
	rec := do(t, h, "GET", "/v1/events", "")
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events len = %d, want 2 (rejected requests publish nothing)", len(events))
	}
	if events[0].Type != EventBudgetSet || events[1].Type != EventExpenseAdded {
		t.Fatalf("event types = [%s, %s], want [%s, %s]", events[0].Type, events[1].Type, EventBudgetSet, EventExpenseAdded)
	}
	if events[0].UUID == "" || events[0].UUID == events[1].UUID {
		t.Fatalf("event UUIDs = [%q, %q], want distinct non-empty", events[0].UUID, events[1].UUID)
	}
	if events[1].ID != events[0].ID+1 {
		t.Fatalf("event IDs = [%d, %d], want consecutive", events[0].ID, events[1].ID)
	}

	added := events[1]
	if added.Expense == nil || added.Expense.Amount != 150 {
		t.Fatalf("expense payload = %+v, want amount 150", added.Expense)
	}
	if math.Abs(added.Delta.Spent-150) > 1e-9 {
		t.Fatalf("Spent delta = %.2f, want 150", added.Delta.Spent)
	}
	// Overflow on day one spreads 550 over the six days left.
	if math.Abs(added.Snapshot.DailyAllocation-550.0/6) > 1e-9 {
		t.Fatalf("DailyAllocation = %.4f, want %.4f", added.Snapshot.DailyAllocation, 550.0/6)
	}
}

func TestTick_DayRollover(t *testing.T) {
	s, clock := newTestService(t, 50)

	s.tick()
	if got := s.snapshotStatus(); got.TickCount != 1 || got.EventCount != 0 {
		t.Fatalf("after same-day tick: ticks=%d events=%d, want 1 and 0", got.TickCount, got.EventCount)
	}

	clock.t = clock.t.AddDate(0, 0, 1)
	s.tick()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 1 || s.events[0].Type != EventDayRollover {
		t.Fatalf("events = %+v, want one %s", s.events, EventDayRollover)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&budget.ValidationError{Field: "amount", Msg: "must be positive"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", budget.ErrAlreadyAdjusted), http.StatusConflict},
		{&budget.StorageError{Op: "insert expense", Err: errors.New("disk full")}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestStream_SendsSnapshotThenEvents(t *testing.T) {
	s, _ := newTestService(t, 50)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /v1/stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	r := bufio.NewReader(resp.Body)
	readEvent := func() string {
		t.Helper()
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	if got := readEvent(); got != EventSnapshot {
		t.Fatalf("first stream event = %q, want %q", got, EventSnapshot)
	}

	// Wait for the subscription before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for s.snapshotStatus().SubscriberCount == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	do(t, s.Handler(), "POST", "/v1/budget", `{"amount":300,"days":3}`)
	if got := readEvent(); got != EventBudgetSet {
		t.Fatalf("second stream event = %q, want %q", got, EventBudgetSet)
	}
}

func TestPublish_ConcurrentEventsStayOrdered(t *testing.T) {
	s, _ := newTestService(t, 500)
	ch := make(chan Event, 500)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s.publish(EventSnapshot, nil, nil, "")
			}
		}()
	}
	wg.Wait()
	close(ch)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()
	if len(events) != 200 {
		t.Fatalf("events len = %d, want 200", len(events))
	}
	for i, ev := range events {
		if ev.ID != int64(i+1) {
			t.Fatalf("events[%d].ID = %d, want %d", i, ev.ID, i+1)
		}
	}

	var last int64
	for ev := range ch {
		if ev.ID <= last {
			t.Fatalf("subscriber got ID %d after %d", ev.ID, last)
		}
		last = ev.ID
	}
	if last != 200 {
		t.Fatalf("last subscriber ID = %d, want 200", last)
	}
}

func TestHealth_ReportsStoreFailure(t *testing.T) {
	s, _ := newTestService(t, 10)
	if rec := do(t, s.Handler(), "GET", "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", rec.Code)
	}

	s.cfg.Ping = func(context.Context) error { return errors.New("database is closed") }
	rec := do(t, s.Handler(), "GET", "/healthz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz with failing store = %d, want 503", rec.Code)
	}
}
