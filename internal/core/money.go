// Package core provides the dashboard's domain types and money handling.
//
// Amounts are persisted as JSON numbers rounded to cents. All rounding and
// summation goes through shopspring/decimal so that binary float artifacts
// never leak into totals or percentages.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundCents rounds half away from zero to two fractional digits.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ValidateAmount rejects non-finite values and values that are zero once
// rounded to cents, returning the rounded amount otherwise.
func ValidateAmount(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return 0, ErrInvalidAmount
	}
	rounded := RoundCents(v)
	if rounded == 0 {
		return 0, ErrInvalidAmount
	}
	return rounded, nil
}

// ParseAmount converts a decimal string to a rounded amount.
//
// Both dot (12.34) and comma (12,34) separators are accepted, and a leading
// sign is allowed since refunds are recorded as negative sales.
//
// Examples:
//
//	ParseAmount("150.456") -> 150.46, nil
//	ParseAmount("-12,5")   -> -12.5, nil
//	ParseAmount("0")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Count(s, ",")+strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return ValidateAmount(d.InexactFloat64())
}

// SumAmounts totals the amounts of entries, rounded to cents.
func SumAmounts(entries []Entry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total.Round(2).InexactFloat64()
}

// AddAmount adds two amounts without float drift.
func AddAmount(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Percentage returns total/goal*100 rounded to two digits, or 0 when the
// goal is unset.
func Percentage(total, goal float64) float64 {
	if goal == 0 || math.IsNaN(goal) || math.IsInf(goal, 0) {
		return 0
	}
	return decimal.NewFromFloat(total).
		Div(decimal.NewFromFloat(goal)).
		Mul(hundred).
		Round(2).
		InexactFloat64()
}
