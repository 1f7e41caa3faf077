package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result table column names, in table order.
const (
	ColumnAge      = "Age"
	ColumnIncome   = "Income"
	ColumnTaxable  = "Taxable"
	ColumnFederal  = "Federal"
	ColumnState    = "State"
	ColumnExpense  = "Expense"
	ColumnLeftover = "Leftover"
	ColumnCashed   = "Cashed"
	ColumnNetWorth = "Net Worth"
)

// Columns lists every result column in table order.
var Columns = []string{
	ColumnAge, ColumnIncome, ColumnTaxable, ColumnFederal, ColumnState,
	ColumnExpense, ColumnLeftover, ColumnCashed, ColumnNetWorth,
}

// YearRecord is one simulated year of one run.
type YearRecord struct {
	Age           int             `json:"age"`
	Income        decimal.Decimal `json:"income"`
	TaxableIncome decimal.Decimal `json:"taxable_income"`
	FederalTax    decimal.Decimal `json:"federal_tax"` // layer 1, levied on income net of state tax
	StateTax      decimal.Decimal `json:"state_tax"`   // layer 2, levied on gross income
	Expense       decimal.Decimal `json:"expense"`
	Leftover      decimal.Decimal `json:"leftover"`
	CashedSavings decimal.Decimal `json:"cashed_savings"`
	NetWorth      decimal.Decimal `json:"net_worth"`
	Retired       bool            `json:"retired"`
}

// TotalTax is the sum of both tax layers.
func (yr YearRecord) TotalTax() decimal.Decimal {
	return yr.FederalTax.Add(yr.StateTax)
}

// Amount returns the named money column. Age and unknown names report false.
func (yr YearRecord) Amount(column string) (decimal.Decimal, bool) {
	switch column {
	case ColumnIncome:
		return yr.Income, true
	case ColumnTaxable:
		return yr.TaxableIncome, true
	case ColumnFederal:
		return yr.FederalTax, true
	case ColumnState:
		return yr.StateTax, true
	case ColumnExpense:
		return yr.Expense, true
	case ColumnLeftover:
		return yr.Leftover, true
	case ColumnCashed:
		return yr.CashedSavings, true
	case ColumnNetWorth:
		return yr.NetWorth, true
	default:
		return decimal.Zero, false
	}
}

// Value returns the named column as a float for charting. Unknown names report false.
func (yr YearRecord) Value(column string) (float64, bool) {
	if column == ColumnAge {
		return float64(yr.Age), true
	}
	d, ok := yr.Amount(column)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// RunResult is the output of a single Plan execution.
type RunResult struct {
	Index         int          `json:"index"`
	Seed          int64        `json:"seed"`
	Years         []YearRecord `json:"years"`
	Bankrupt      bool         `json:"bankrupt"`
	BankruptcyAge int          `json:"bankruptcy_age,omitempty"`
}

// FinalNetWorth is the net worth recorded in the last simulated year.
func (r RunResult) FinalNetWorth() decimal.Decimal {
	if len(r.Years) == 0 {
		return decimal.Zero
	}
	return r.Years[len(r.Years)-1].NetWorth
}

// PercentileRanges summarises a distribution of outcomes.
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// BatchResult aggregates every run of a batch.
type BatchResult struct {
	Parameters PlanningParameters `json:"parameters"`
	Runs       []RunResult        `json:"runs,omitempty"`

	RunCount              int     `json:"run_count"`
	BankruptCount         int     `json:"bankrupt_count"`
	BankruptcyProbability float64 `json:"bankruptcy_probability"`
	// AverageBankruptcyAge is nil when no run went bankrupt.
	AverageBankruptcyAge *float64 `json:"average_bankruptcy_age"`

	Averaged            []YearRecord     `json:"averaged"`
	TerminalNetWorth    decimal.Decimal  `json:"terminal_net_worth"`
	TerminalPercentiles PercentileRanges `json:"terminal_percentiles"`

	GeneratedAt time.Time     `json:"generated_at"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// Summary returns a copy without the individual runs.
func (b *BatchResult) Summary() *BatchResult {
	s := *b
	s.Runs = nil
	return &s
}
