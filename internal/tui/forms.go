package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

type formKind int

const (
	formNone formKind = iota
	formAddExpense
	formSetBudget
	formUnderflow
	formReset
)

// formValues backs the fields of whichever form is open.
type formValues struct {
	description string
	amount      string
	category    string
	until       string
	option      string
	confirm     bool
}

func validateAmount(s string) error {
	_, err := cli.ParseAmount(s)
	return err
}

func (a App) categoryOptions() []huh.Option[string] {
	cats := a.categories
	if len(cats) == 0 {
		cats = []string{"Other"}
	}
	opts := make([]huh.Option[string], 0, len(cats))
	for _, c := range cats {
		opts = append(opts, huh.NewOption(c, c))
	}
	return opts
}

func (a App) newForm(kind formKind, vals *formValues) *huh.Form {
	switch kind {
	case formAddExpense:
		if len(a.categories) > 0 {
			vals.category = a.categories[0]
		}
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Description").
				Value(&vals.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&vals.amount).
				Validate(validateAmount),
			huh.NewSelect[string]().
				Title("Category").
				Options(a.categoryOptions()...).
				Value(&vals.category),
		))

	case formSetBudget:
		today := model.Day(a.now())
		vals.until = today.AddDate(0, 0, 29).Format(model.DateLayout)
		return huh.NewForm(huh.NewGroup(
			huh.NewNote().
				Title("Set budget").
				Description("Starts today and replaces the current period. Logged expenses are kept."),
			huh.NewInput().
				Title("Total budget").
				Placeholder("0.00").
				Value(&vals.amount).
				Validate(validateAmount),
			huh.NewInput().
				Title("Last day (YYYY-MM-DD)").
				Value(&vals.until).
				Validate(func(s string) error {
					d, err := model.ParseDate(strings.TrimSpace(s))
					if err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					if d.Before(today) {
						return errors.New("must be today or later")
					}
					return nil
				}),
		))

	case formUnderflow:
		left := a.summary.DailyAllocation - spentOn(a.summary.Expenses, a.now())
		vals.option = string(model.Reallocate)
		return huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Unspent today: "+cli.FormatMoney(max(left, 0))).
				Options(
					huh.NewOption("Reallocate - spread over the remaining days", string(model.Reallocate)),
					huh.NewOption("Next day - add it to tomorrow only", string(model.NextDay)),
					huh.NewOption("Save - move it out of the budget", string(model.Save)),
				).
				Value(&vals.option),
		))

	case formReset:
		return huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Reset all data?").
				Description("The budget period and every logged expense are deleted.").
				Affirmative("Reset").
				Negative("Cancel").
				Value(&vals.confirm),
		))
	}
	return nil
}

func spentOn(expenses []model.Expense, day time.Time) float64 {
	var total float64
	for _, e := range expenses {
		if model.SameDay(e.Date, day) {
			total += e.Amount
		}
	}
	return total
}

func (a App) openForm(kind formKind) (tea.Model, tea.Cmd) {
	a.vals = &formValues{}
	a.formKind = kind
	a.form = a.newForm(kind, a.vals).WithTheme(huh.ThemeDracula()).WithShowHelp(true)
	if a.width > 0 {
		a.form = a.form.WithWidth(a.formWidth()).WithHeight(max(a.height-4, minContentHeight))
	}
	a.notice = ""
	return a, a.form.Init()
}

func (a App) formWidth() int {
	return max(min(a.width-8, 72), 20)
}

func (a App) closeForm() App {
	a.form = nil
	a.formKind = formNone
	a.vals = nil
	return a
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind, vals := a.formKind, *a.vals
		a = a.closeForm()
		submit := a.submit(kind, vals)
		if submit == nil {
			return a, nil
		}
		a.busy = true
		return a, tea.Batch(submit, a.spinner.Tick)
	case huh.StateAborted:
		return a.closeForm(), nil
	}
	return a, cmd
}

// submit turns completed form values into an allocator call.
func (a App) submit(kind formKind, vals formValues) tea.Cmd {
	b := a.budget
	switch kind {
	case formAddExpense:
		amount, err := cli.ParseAmount(vals.amount)
		if err != nil {
			return nil
		}
		return a.mutate("add expense", func(ctx context.Context) (string, error) {
			e, err := b.AddExpense(ctx, vals.description, amount, vals.category)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Logged %s for %s", cli.FormatMoney(e.Amount), e.Description), nil
		})

	case formSetBudget:
		amount, err := cli.ParseAmount(vals.amount)
		if err != nil {
			return nil
		}
		end, err := model.ParseDate(strings.TrimSpace(vals.until))
		if err != nil {
			return nil
		}
		return a.mutate("set budget", func(ctx context.Context) (string, error) {
			p, err := b.SetBudget(ctx, amount, end)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Budget set: %s/day for %s", cli.FormatMoney(p.AllocationPerDay), cli.FormatDays(p.TotalDays())), nil
		})

	case formUnderflow:
		opt, err := model.ParseUnderflowOption(vals.option)
		if err != nil {
			return nil
		}
		return a.mutate("adjust", func(ctx context.Context) (string, error) {
			res, err := b.AdjustForUnderflow(ctx, opt)
			if err != nil {
				return "", err
			}
			if !res.Applied {
				return "Nothing left over today", nil
			}
			return fmt.Sprintf("%s of unspent allocation applied (%s)", cli.FormatMoney(res.Surplus), res.Option), nil
		})

	case formReset:
		if !vals.confirm {
			return nil
		}
		return a.mutate("reset", func(ctx context.Context) (string, error) {
			if err := b.Reset(ctx); err != nil {
				return "", err
			}
			return "All budget data has been reset", nil
		})
	}
	return nil
}
