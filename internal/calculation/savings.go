package calculation

import (
	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/shopspring/decimal"
)

// Savings tracks the household's running savings balance.
type Savings struct {
	balance decimal.Decimal
	growth  domain.Distribution
	sampler *Sampler
}

func NewSavings(initial decimal.Decimal, growth domain.Distribution, sampler *Sampler) *Savings {
	return &Savings{balance: initial, growth: growth, sampler: sampler}
}

func (s *Savings) Balance() decimal.Decimal { return s.balance }

// Grown returns the balance after one year of growth, rounded to cents. The
// balance itself is not changed; call Update with the year's ending net worth.
func (s *Savings) Grown() (decimal.Decimal, error) {
	rate, err := amount("savings_growth", s.sampler.SampleUpperBounded(s.growth.Mean, s.growth.StdDev))
	if err != nil {
		return decimal.Zero, err
	}
	return s.balance.Mul(decimal.NewFromInt(1).Add(rate)).Round(2), nil
}

func (s *Savings) Update(balance decimal.Decimal) { s.balance = balance }
