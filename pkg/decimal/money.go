package decimal

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Round rounds the money amount to cents
func (m Money) Round() Money {
	return Money{m.Decimal.Round(2)}
}

// Sub subtracts another Money amount
func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

// IsNegative checks if the amount is negative
func (m Money) IsNegative() bool {
	return m.Decimal.IsNegative()
}

// String returns the amount fixed to cents without grouping
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Format renders the amount as dollars and cents with thousands separators
func (m Money) Format() string {
	return sign(m, 2) + "$" + humanize.FormatFloat("#,###.##", m.Decimal.Abs().Round(2).InexactFloat64())
}

// FormatWhole renders the amount rounded to whole dollars with thousands separators
func (m Money) FormatWhole() string {
	return sign(m, 0) + "$" + humanize.FormatFloat("#,###.", m.Decimal.Abs().Round(0).InexactFloat64())
}

// Grouped renders the amount rounded to whole units with separators and no currency sign
func (m Money) Grouped() string {
	return sign(m, 0) + humanize.FormatFloat("#,###.", m.Decimal.Abs().Round(0).InexactFloat64())
}

// sign is "-" only when the amount is still negative at the printed precision.
func sign(m Money, places int32) string {
	if m.Decimal.Round(places).IsNegative() {
		return "-"
	}
	return ""
}
