package calculation

import (
	"fmt"
	"math"

	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Brackets and deductions are a fixed snapshot; nothing is indexed for inflation.
//
// 2. A bracket's rate applies to the whole amount, not just the part inside
//    the bracket. Bracket bounds are inclusive over whole dollars, so income
//    is truncated before lookup.
//
// 3. State tax (layer 2) is levied on gross income. Federal tax (layer 1) is
//    levied on income less the standard deduction and the state tax.

// TaxBracket is an inclusive whole-dollar band and its rate.
type TaxBracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

// Open ends of the lowest and highest bands.
var (
	bracketFloor   = decimal.NewFromInt(math.MinInt64)
	bracketCeiling = decimal.NewFromInt(math.MaxInt64)
)

var stateBrackets = []TaxBracket{
	{bracketFloor, decimal.NewFromInt(2760), decimal.Zero},
	{decimal.NewFromInt(2761), decimal.NewFromInt(5520), decimal.NewFromFloat(0.03)},
	{decimal.NewFromInt(5521), decimal.NewFromInt(8280), decimal.NewFromFloat(0.04)},
	{decimal.NewFromInt(8281), decimal.NewFromInt(11040), decimal.NewFromFloat(0.05)},
	{decimal.NewFromInt(11041), decimal.NewFromInt(13800), decimal.NewFromFloat(0.06)},
	{decimal.NewFromInt(13801), bracketCeiling, decimal.NewFromFloat(0.07)},
}

var federalBrackets = []TaxBracket{
	{bracketFloor, decimal.Zero, decimal.Zero},
	{decimal.NewFromInt(1), decimal.NewFromInt(8700), decimal.NewFromFloat(0.10)},
	{decimal.NewFromInt(8701), decimal.NewFromInt(35350), decimal.NewFromFloat(0.15)},
	{decimal.NewFromInt(35351), decimal.NewFromInt(85650), decimal.NewFromFloat(0.25)},
	{decimal.NewFromInt(85651), decimal.NewFromInt(178650), decimal.NewFromFloat(0.28)},
	{decimal.NewFromInt(178651), decimal.NewFromInt(388350), decimal.NewFromFloat(0.33)},
	{decimal.NewFromInt(388351), bracketCeiling, decimal.NewFromFloat(0.35)},
}

var standardDeductions = map[domain.FilingStatus]decimal.Decimal{
	domain.FilingSingle:            decimal.NewFromInt(5700),
	domain.FilingMarriedSeparately: decimal.NewFromInt(5700),
	domain.FilingMarriedJointly:    decimal.NewFromInt(11400),
	domain.FilingHeadOfHousehold:   decimal.NewFromInt(8400),
	domain.FilingQualifyingWidow:   decimal.NewFromInt(11400),
}

// Tax computes both tax layers for a filing status.
type Tax struct {
	Status    domain.FilingStatus
	Deduction decimal.Decimal
}

// NewTax returns the tax model for a filing status.
func NewTax(status domain.FilingStatus) (*Tax, error) {
	status = status.Canonical()
	deduction, ok := standardDeductions[status]
	if !ok {
		return nil, &ConfigurationError{Field: "filing_status", Value: string(status), Reason: "unknown filing status"}
	}
	return &Tax{Status: status, Deduction: deduction}, nil
}

// StandardDeduction returns the deduction for the filing status.
func (t *Tax) StandardDeduction() decimal.Decimal { return t.Deduction }

// StateTaxRate is the layer 2 rate for a gross income.
func StateTaxRate(income decimal.Decimal) (decimal.Decimal, error) {
	return bracketRate(stateBrackets, income, "state")
}

// FederalTaxRate is the layer 1 rate for a federal taxable income.
func FederalTaxRate(taxable decimal.Decimal) (decimal.Decimal, error) {
	return bracketRate(federalBrackets, taxable, "federal")
}

func bracketRate(brackets []TaxBracket, income decimal.Decimal, layer string) (decimal.Decimal, error) {
	whole := income.Truncate(0)
	for _, b := range brackets {
		if whole.GreaterThanOrEqual(b.Min) && whole.LessThanOrEqual(b.Max) {
			return b.Rate, nil
		}
	}
	return decimal.Zero, &ConfigurationError{Field: layer + "_income", Value: income.String(), Reason: "outside every tax bracket"}
}

// StateTax is rate(income) x income.
func (t *Tax) StateTax(income decimal.Decimal) (decimal.Decimal, error) {
	rate, err := StateTaxRate(income)
	if err != nil {
		return decimal.Zero, err
	}
	return income.Mul(rate), nil
}

// FederalTax is rate(x) x x where x is income less the deduction and the state tax.
func (t *Tax) FederalTax(income decimal.Decimal) (decimal.Decimal, error) {
	state, err := t.StateTax(income)
	if err != nil {
		return decimal.Zero, err
	}
	taxable := income.Sub(t.Deduction).Sub(state)
	rate, err := FederalTaxRate(taxable)
	if err != nil {
		return decimal.Zero, err
	}
	return taxable.Mul(rate), nil
}

// Taxes returns the federal and state tax on an income.
func (t *Tax) Taxes(income decimal.Decimal) (federal, state decimal.Decimal, err error) {
	if state, err = t.StateTax(income); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("state tax: %w", err)
	}
	if federal, err = t.FederalTax(income); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("federal tax: %w", err)
	}
	return federal, state, nil
}

// TaxableIncome is income less the standard deduction, floored at zero.
func (t *Tax) TaxableIncome(income decimal.Decimal) decimal.Decimal {
	return decimal.Max(income.Sub(t.Deduction), decimal.Zero)
}
