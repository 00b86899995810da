// Package calculator implements the invoice amount and total computations.
package calculator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Item carries the raw monetary fields of a submitted line item, as entered
// in the form.
type Item struct {
	Amount   string
	Duration string
	Rate     string
}

// ParseAmount parses a free-text monetary value. Unparseable input yields
// zero rather than an error, matching the form's behavior.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LineAmount computes duration times rate rounded to 2 decimal places.
// The second return is false when either field is absent or not numeric.
func LineAmount(duration, rate string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(duration))
	if err != nil {
		return decimal.Zero, false
	}
	r, err := decimal.NewFromString(strings.TrimSpace(rate))
	if err != nil {
		return decimal.Zero, false
	}
	return d.Mul(r).Round(2), true
}

// ItemAmount resolves the canonical amount of one item: duration times rate
// when both are numeric, otherwise the entered amount. The computed value
// overwrites any manually entered amount.
func ItemAmount(it Item) decimal.Decimal {
	if amount, ok := LineAmount(it.Duration, it.Rate); ok {
		return amount
	}
	return ParseAmount(it.Amount)
}

// Total sums the resolved amounts of all items. Order independent.
// Tax is always zero in this version, so the total equals the subtotal.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(ItemAmount(it))
	}
	return total
}
