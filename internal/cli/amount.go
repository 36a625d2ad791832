package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered money amount exactly, then rounds it to
// cents. Thousands separators and a leading currency symbol are accepted.
// The amount must be positive.
func ParseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	if sym := Currency(); sym != "" {
		clean = strings.TrimSpace(strings.TrimPrefix(clean, sym))
	}
	clean = strings.ReplaceAll(clean, ",", "")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be greater than zero, got %s", d.String())
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}
