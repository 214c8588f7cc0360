package valueobject

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	ARS Currency = "ARS" // Argentine Peso (default)
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = ARS

// centsPerUnit is the conversion factor between major units and cents
const centsPerUnit = 100

// maxCents bounds every amount. Arithmetic saturates at ±maxCents instead of
// wrapping around.
const maxCents = math.MaxInt64

var maxCentsDecimal = decimal.NewFromInt(maxCents)

// Money is a value object representing a monetary amount in integer cents.
// All arithmetic happens on cents; decimals appear only when parsing user
// input, formatting for display and encoding for transmission.
type Money struct {
	cents int64
}

// Cents creates Money from an amount expressed in cents
func Cents(cents int64) Money {
	return Money{cents: cents}
}

// Units creates Money from a whole amount of major units
func Units(units int64) Money {
	return Money{cents: mulCents(units, centsPerUnit)}
}

// MaxAmount returns the largest representable amount
func MaxAmount() Money {
	return Money{cents: maxCents}
}

// NewMoneyFromDecimal creates Money from a decimal amount, rounding half-up to
// cents. Amounts beyond the representable range saturate.
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	c := amount.Shift(2)
	switch mag := magnitude(c); {
	case mag < 0:
		// |c| < 0.1 cents
		return Money{}
	case mag > 19:
		return saturated(c.Sign())
	}
	c = c.Round(0)
	if c.Abs().GreaterThan(maxCentsDecimal) {
		return saturated(c.Sign())
	}
	return Money{cents: c.IntPart()}
}

// magnitude returns n such that |d| < 10^n, without expanding the exponent.
// Zero has magnitude 0.
func magnitude(d decimal.Decimal) int {
	if d.IsZero() {
		return 0
	}
	return d.NumDigits() + int(d.Exponent())
}

func saturated(sign int) Money {
	if sign < 0 {
		return Money{cents: -maxCents}
	}
	return Money{cents: maxCents}
}

func addCents(a, b int64) int64 {
	s := a + b
	switch {
	case b > 0 && s < a:
		return maxCents
	case b < 0 && s > a:
		return -maxCents
	}
	return s
}

func subCents(a, b int64) int64 {
	s := a - b
	switch {
	case b < 0 && s < a:
		return maxCents
	case b > 0 && s > a:
		return -maxCents
	}
	return s
}

func mulCents(a, f int64) int64 {
	if a == 0 || f == 0 {
		return 0
	}
	p := a * f
	if p/f != a || (a == -1 && f == math.MinInt64) || (f == -1 && a == math.MinInt64) {
		if (a < 0) != (f < 0) {
			return -maxCents
		}
		return maxCents
	}
	return p
}

// NewMoneyFromFloat creates Money from a float64 value as decoded from JSON numbers
func NewMoneyFromFloat(amount float64) Money {
	return NewMoneyFromDecimal(decimal.NewFromFloat(amount))
}

// NewMoneyFromString creates Money from a canonical decimal string ("1234.56")
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoneyFromDecimal(d), nil
}

// Zero returns a zero amount
func Zero() Money {
	return Money{}
}

// Cents returns the amount in cents
func (m Money) Cents() int64 {
	return m.cents
}

// Decimal returns the amount as a decimal with two places
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.cents == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.cents > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.cents < 0
}

// Add returns the sum of both amounts, saturating on overflow
func (m Money) Add(other Money) Money {
	return Money{cents: addCents(m.cents, other.cents)}
}

// Subtract returns the difference of both amounts, saturating on overflow
func (m Money) Subtract(other Money) Money {
	return Money{cents: subCents(m.cents, other.cents)}
}

// MultiplyByInt returns the amount multiplied by an integer factor,
// saturating on overflow
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{cents: mulCents(m.cents, factor)}
}

// Min returns the smaller of both amounts
func (m Money) Min(other Money) Money {
	if other.cents < m.cents {
		return other
	}
	return m
}

// Max returns the larger of both amounts
func (m Money) Max(other Money) Money {
	if other.cents > m.cents {
		return other
	}
	return m
}

// Clamp bounds the amount to [lo, hi]
func (m Money) Clamp(lo, hi Money) Money {
	return m.Max(lo).Min(hi)
}

// FloorZero returns the amount, or zero when it is negative
func (m Money) FloorZero() Money {
	return m.Max(Zero())
}

// Equals returns true if both amounts are equal
func (m Money) Equals(other Money) bool {
	return m.cents == other.cents
}

// LessThan returns true if this amount is less than the other
func (m Money) LessThan(other Money) bool {
	return m.cents < other.cents
}

// GreaterThan returns true if this amount is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

// String returns the amount with two fixed decimal places
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float64 returns the amount as a float64 (may lose precision)
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// MarshalJSON encodes the amount as a bare JSON number ("1100", "600.5")
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings, since the
// back-office serializes NUMERIC columns either way
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.cents = 0
		return nil
	}
	raw := data
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			m.cents = 0
			return nil
		}
		raw = []byte(s)
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	*m = NewMoneyFromDecimal(d)
	return nil
}

// Sum adds up a list of amounts
func Sum(amounts ...Money) Money {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
