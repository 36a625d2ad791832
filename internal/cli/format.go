// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	currencyMu sync.RWMutex
	currency   = "Ksh."
)

// SetCurrency sets the symbol FormatMoney prefixes amounts with.
func SetCurrency(symbol string) {
	currencyMu.Lock()
	defer currencyMu.Unlock()
	currency = strings.TrimSpace(symbol)
}

// Currency returns the active currency symbol.
func Currency() string {
	currencyMu.RLock()
	defer currencyMu.RUnlock()
	return currency
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// FormatAmount formats a value with two decimals and thousands separators.
// e.g., 1234.5 -> "1,234.50"
func FormatAmount(v float64) string {
	v = roundCents(v)
	if v < 0 {
		return "-" + FormatAmount(-v)
	}
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return printer().Sprintf("%.2f", v)
}

// FormatMoney formats a value with the currency symbol.
// e.g., 1234.5 -> "Ksh. 1,234.50", -20 -> "-Ksh. 20.00"
func FormatMoney(v float64) string {
	sign := ""
	if roundCents(v) < 0 {
		sign = "-"
		v = -v
	}
	sym := Currency()
	if sym == "" {
		return sign + FormatAmount(v)
	}
	return sign + sym + " " + FormatAmount(v)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return printer().Sprintf("%d", n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats a signed money change, e.g. "+Ksh. 12.00".
func FormatDelta(delta float64) string {
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return FormatMoney(delta)
}

// FormatDate formats a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatDays pluralizes a day count.
func FormatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
