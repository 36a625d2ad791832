// Package tui provides the interactive Bubble Tea dashboard for dayburn.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/dayburn/internal/budget"
	"github.com/theirongolddev/dayburn/internal/model"
	"github.com/theirongolddev/dayburn/internal/report"
	"github.com/theirongolddev/dayburn/internal/tui/components"
	"github.com/theirongolddev/dayburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Budget is the allocator surface the dashboard drives.
type Budget interface {
	Summary() model.Summary
	CategoryTotals() []model.CategoryTotal
	CurrentPeriod() model.Period
	SetBudget(ctx context.Context, amount float64, endDate time.Time) (model.Period, error)
	AddExpense(ctx context.Context, description string, amount float64, category string) (model.Expense, error)
	AdjustForUnderflow(ctx context.Context, opt model.UnderflowOption) (model.UnderflowResult, error)
	Reset(ctx context.Context) error
	Reload(ctx context.Context) error
}

// Options configures the dashboard.
type Options struct {
	Categories []string
	Timeframe  report.Timeframe
	Now        func() time.Time
}

// mutationMsg reports the outcome of a change made through the allocator.
type mutationMsg struct {
	op     string
	notice string
	err    error
}

type tickMsg time.Time

// App is the root Bubble Tea model.
type App struct {
	budget     Budget
	categories []string
	timeframe  report.Timeframe
	now        func() time.Time

	// Projections, refreshed after every change.
	summary  model.Summary
	totals   []model.CategoryTotal
	days     []model.DailyStats
	stats    model.ReportStats
	loadedAt time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int

	// Open form, if any. vals is shared with the form's bound fields.
	form     *huh.Form
	formKind formKind
	vals     *formValues

	busy      bool
	spinner   spinner.Model
	notice    string
	noticeErr bool
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 140
	minContentHeight = 5

	trendDays       = 14
	mutationTimeout = 10 * time.Second
	refreshInterval = time.Minute
)

// NewApp creates a new TUI app model over b.
func NewApp(b Budget, opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Timeframe == "" {
		opts.Timeframe = report.Month
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		budget:     b,
		categories: opts.Categories,
		timeframe:  opts.Timeframe,
		now:        opts.Now,
		spinner:    sp,
	}
	a.refresh()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh recomputes every projection from the allocator.
func (a *App) refresh() {
	now := a.now()
	today := model.Day(now)

	a.summary = a.budget.Summary()
	a.totals = a.budget.CategoryTotals()
	a.days = report.AggregateDays(a.summary.Expenses, a.budget.CurrentPeriod(), today.AddDate(0, 0, -(trendDays-1)), today)
	a.stats = report.Stats(a.summary.Expenses, a.timeframe, now)
	a.loadedAt = now

	if maxScroll := len(a.summary.Expenses) - 1; a.scroll > maxScroll {
		a.scroll = max(maxScroll, 0)
	}
}

// mutate runs fn against the allocator off the UI goroutine.
func (a App) mutate(op string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		notice, err := fn(ctx)
		return mutationMsg{op: op, notice: notice, err: err}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth()).WithHeight(max(a.height-4, minContentHeight))
		}
		return a, nil

	case mutationMsg:
		a.busy = false
		// Memory may have changed even when persisting failed.
		a.refresh()
		a.notice, a.noticeErr = noticeFor(msg)
		return a, nil

	case tickMsg:
		if !a.busy {
			a.refresh()
		}
		return a, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.form != nil {
		return a.updateForm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return a.updateKey(key)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	case "tab", "right", "l":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab", "left", "h":
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
		return a, nil
	case "j", "down":
		if a.scroll < len(a.summary.Expenses)-1 {
			a.scroll++
		}
		return a, nil
	case "k", "up":
		if a.scroll > 0 {
			a.scroll--
		}
		return a, nil
	case "t":
		a.timeframe = nextTimeframe(a.timeframe)
		a.refresh()
		return a, nil
	case "esc":
		a.notice = ""
		return a, nil
	}

	if a.busy {
		return a, nil
	}

	switch key {
	case "a":
		return a.openForm(formAddExpense)
	case "b":
		return a.openForm(formSetBudget)
	case "u":
		return a.openForm(formUnderflow)
	case "x":
		return a.openForm(formReset)
	case "r":
		a.busy = true
		a.notice = ""
		return a, a.mutate("reload", func(ctx context.Context) (string, error) {
			if err := a.budget.Reload(ctx); err != nil {
				return "", err
			}
			return "Reloaded from storage", nil
		})
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func nextTimeframe(tf report.Timeframe) report.Timeframe {
	for i, t := range report.Timeframes {
		if t == tf {
			return report.Timeframes[(i+1)%len(report.Timeframes)]
		}
	}
	return report.Timeframes[0]
}

// noticeFor turns a mutation outcome into a status bar message.
func noticeFor(msg mutationMsg) (string, bool) {
	switch {
	case msg.err == nil:
		return msg.notice, false
	case errors.Is(msg.err, budget.ErrAlreadyAdjusted):
		return "Today's surplus was already adjusted", true
	case budget.IsStorageError(msg.err):
		return fmt.Sprintf("Not saved: %v. Press r to reload from storage.", msg.err), true
	default:
		return fmt.Sprintf("%s failed: %v", msg.op, msg.err), true
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}
