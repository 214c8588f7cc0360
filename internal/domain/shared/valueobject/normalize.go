package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds limits a normalized amount. Max is only enforced when HasMax is set,
// so the zero value means "non-negative, unbounded".
type Bounds struct {
	Min    Money
	Max    Money
	HasMax bool
}

// NonNegative returns bounds of [0, +inf)
func NonNegative() Bounds {
	return Bounds{}
}

// UpTo returns bounds of [0, max]
func UpTo(max Money) Bounds {
	return Bounds{Max: max, HasMax: true}
}

// Normalize parses a user-entered amount and bounds it.
// Both "," and "." are accepted as decimal separator; when both appear the
// last one is the decimal separator and the other is a thousands separator.
// Empty or non-numeric input yields zero (then Min). It never fails.
func Normalize(raw string, b Bounds) Money {
	d, ok := parseLocaleDecimal(raw)
	if !ok {
		d = decimal.Zero
	}
	m := NewMoneyFromDecimal(d)
	if m.LessThan(b.Min) {
		m = b.Min
	}
	if b.HasMax && m.GreaterThan(b.Max) {
		m = b.Max
	}
	return m
}

// MaxQuantity is the largest unit count a single cell can hold
const MaxQuantity int64 = 1_000_000

var maxQuantityDecimal = decimal.NewFromInt(MaxQuantity)

// NormalizeQuantity parses a user-entered unit count. Negative, empty,
// non-numeric and fractional input all yield zero; counts above MaxQuantity
// yield MaxQuantity.
func NormalizeQuantity(raw string) int64 {
	d, ok := parseLocaleDecimal(raw)
	if !ok || d.Sign() <= 0 {
		return 0
	}
	mag := magnitude(d)
	if mag <= 0 {
		return 0
	}
	if !d.IsInteger() {
		return 0
	}
	if mag > 19 || d.GreaterThan(maxQuantityDecimal) {
		return MaxQuantity
	}
	return d.IntPart()
}

// parseLocaleDecimal converts "1.234,56", "1234.56" or "12,5" to a decimal
func parseLocaleDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, false
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
