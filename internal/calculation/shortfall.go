package calculation

import "github.com/shopspring/decimal"

// MaxShortfallIterations caps shortfall resolution.
const MaxShortfallIterations = 10000

// shortfallTolerance is the leftover at which a shortfall counts as covered.
var shortfallTolerance = decimal.NewFromInt(-1)

// Resolution is the outcome of covering a shortfall with extra taxable income.
type Resolution struct {
	Income     decimal.Decimal
	FederalTax decimal.Decimal
	StateTax   decimal.Decimal
	Leftover   decimal.Decimal
	Iterations int
}

// Cashed is the extra income drawn on top of the original income.
func (r Resolution) Cashed(income decimal.Decimal) decimal.Decimal { return r.Income.Sub(income) }

// ShortfallResolver raises taxable income until after-tax income covers expense.
// Every unit cashed out of savings is taxed like income, so the raise is
// repeated until the remaining shortfall is within tolerance.
type ShortfallResolver struct {
	// MaxIterations overrides MaxShortfallIterations when positive.
	MaxIterations int
}

// Resolve returns the smallest iterated income whose leftover is at least -1.
// A non-negative leftover is returned unchanged.
func (r ShortfallResolver) Resolve(tax *Tax, income, expense decimal.Decimal) (Resolution, error) {
	limit := r.MaxIterations
	if limit <= 0 {
		limit = MaxShortfallIterations
	}

	res := Resolution{Income: income}
	for {
		federal, state, err := tax.Taxes(res.Income)
		if err != nil {
			return Resolution{}, err
		}
		res.FederalTax, res.StateTax = federal, state
		res.Leftover = res.Income.Sub(federal).Sub(state).Sub(expense)
		if res.Leftover.GreaterThanOrEqual(shortfallTolerance) {
			return res, nil
		}
		if res.Iterations >= limit {
			return Resolution{}, &NonConvergenceError{
				Income:     income.InexactFloat64(),
				Expense:    expense.InexactFloat64(),
				Leftover:   res.Leftover.InexactFloat64(),
				Iterations: res.Iterations,
			}
		}
		res.Income = res.Income.Sub(res.Leftover)
		res.Iterations++
	}
}
