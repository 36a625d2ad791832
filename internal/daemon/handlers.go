package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/dayburn/internal/budget"
	"github.com/theirongolddev/dayburn/internal/model"
	"github.com/theirongolddev/dayburn/internal/report"

	"go.uber.org/zap"
)

// SetBudgetRequest is the body of POST /v1/budget. Exactly one of EndDate
// or Days selects the period end.
type SetBudgetRequest struct {
	Amount  float64 `json:"amount"`
	EndDate string  `json:"end_date,omitempty"`
	Days    int     `json:"days,omitempty"`
}

// AddExpenseRequest is the body of POST /v1/expenses.
type AddExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// AdjustRequest is the body of POST /v1/adjust.
type AdjustRequest struct {
	Option string `json:"option"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const maxBodyBytes = 1 << 16

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.cfg.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.cfg.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", zap.String("op", "healthz"), zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable\n"))
			return
		}
	}
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.budget.Summary())
}

func (s *Service) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	tf, err := report.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	expenses := report.FilterByTimeframe(s.budget.Expenses(), tf, s.cfg.Now())
	expenses = report.FilterByCategory(expenses, r.URL.Query().Get("category"))
	expenses = report.NewestFirst(expenses)
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Service) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.budget.CategoryTotals())
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	tf, err := report.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.report(tf))
}

func (s *Service) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req SetBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var end time.Time
	switch {
	case req.EndDate != "" && req.Days != 0:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "set either end_date or days, not both"})
		return
	case req.EndDate != "":
		d, err := model.ParseDate(req.EndDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid end_date %q", req.EndDate)})
			return
		}
		end = d
	case req.Days > 0:
		end = model.Day(s.cfg.Now()).AddDate(0, 0, req.Days-1)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "end_date or a positive days is required"})
		return
	}

	p, err := s.budget.SetBudget(r.Context(), req.Amount, end)
	if err != nil {
		s.fail(w, "set_budget", err)
		return
	}
	s.publish(EventBudgetSet, nil, nil, "")
	writeJSON(w, http.StatusCreated, p)
}

func (s *Service) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req AddExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		req.Category = "Other"
	}

	e, err := s.budget.AddExpense(r.Context(), req.Description, req.Amount, req.Category)
	if err != nil {
		s.fail(w, "add_expense", err)
		return
	}
	s.publish(EventExpenseAdded, &e, nil, "")
	writeJSON(w, http.StatusCreated, e)
}

func (s *Service) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if !decodeBody(w, r, &req) {
		return
	}
	opt, err := model.ParseUnderflowOption(req.Option)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := s.budget.AdjustForUnderflow(r.Context(), opt)
	if err != nil {
		s.fail(w, "adjust", err)
		return
	}
	if res.Applied {
		s.publish(EventUnderflow, nil, &res, "")
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.Reset(r.Context()); err != nil {
		s.fail(w, "reset", err)
		return
	}
	s.publish(EventReset, nil, nil, "")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.Reload(r.Context()); err != nil {
		s.fail(w, "reload", err)
		return
	}
	s.publish(EventReloaded, nil, nil, "")
	writeJSON(w, http.StatusOK, s.budget.Summary())
}

// fail maps an allocator error to a status code. Storage failures still
// changed in-memory state, so they publish an event too.
func (s *Service) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("op", op), zap.Error(err))
	}
	if budget.IsStorageError(err) {
		s.publish(EventStorageFailed, nil, nil, err.Error())
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case budget.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, budget.ErrAlreadyAdjusted):
		return http.StatusConflict
	case budget.IsStorageError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Current state first.
	writeSSE(w, Event{
		Type:      EventSnapshot,
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
