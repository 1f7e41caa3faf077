package calculation

import (
	"math"
	"sort"

	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/shopspring/decimal"
)

// AverageSimulation averages every numeric column across runs, year by year.
// Runs cut short by a halt policy contribute only to the years they reached.
// Age is rounded to a whole year.
func AverageSimulation(runs []domain.RunResult) []domain.YearRecord {
	length := 0
	for _, r := range runs {
		length = max(length, len(r.Years))
	}

	averaged := make([]domain.YearRecord, length)
	for idx := range averaged {
		var sum domain.YearRecord
		var age float64
		count := 0
		for _, r := range runs {
			if idx >= len(r.Years) {
				continue
			}
			yr := r.Years[idx]
			if count == 0 {
				sum.Retired = yr.Retired
			}
			count++
			age += float64(yr.Age)
			sum.Income = sum.Income.Add(yr.Income)
			sum.TaxableIncome = sum.TaxableIncome.Add(yr.TaxableIncome)
			sum.FederalTax = sum.FederalTax.Add(yr.FederalTax)
			sum.StateTax = sum.StateTax.Add(yr.StateTax)
			sum.Expense = sum.Expense.Add(yr.Expense)
			sum.Leftover = sum.Leftover.Add(yr.Leftover)
			sum.CashedSavings = sum.CashedSavings.Add(yr.CashedSavings)
			sum.NetWorth = sum.NetWorth.Add(yr.NetWorth)
		}
		c := decimal.NewFromInt(int64(count))
		averaged[idx] = domain.YearRecord{
			Age:           int(math.Round(age / float64(count))),
			Income:        sum.Income.Div(c),
			TaxableIncome: sum.TaxableIncome.Div(c),
			FederalTax:    sum.FederalTax.Div(c),
			StateTax:      sum.StateTax.Div(c),
			Expense:       sum.Expense.Div(c),
			Leftover:      sum.Leftover.Div(c),
			CashedSavings: sum.CashedSavings.Div(c),
			NetWorth:      sum.NetWorth.Div(c),
			Retired:       sum.Retired,
		}
	}
	return averaged
}

// Aggregate computes the batch statistics over completed runs.
func Aggregate(params *domain.PlanningParameters, runs []domain.RunResult) *domain.BatchResult {
	batch := &domain.BatchResult{
		Parameters: *params,
		Runs:       runs,
		RunCount:   len(runs),
		Averaged:   AverageSimulation(runs),
	}

	totalAge := 0
	for _, r := range runs {
		if r.Bankrupt {
			batch.BankruptCount++
			totalAge += r.BankruptcyAge
		}
	}
	if batch.RunCount > 0 {
		batch.BankruptcyProbability = float64(batch.BankruptCount) / float64(batch.RunCount)
	}
	if batch.BankruptCount > 0 {
		avg := float64(totalAge) / float64(batch.BankruptCount)
		batch.AverageBankruptcyAge = &avg
	}
	if n := len(batch.Averaged); n > 0 {
		batch.TerminalNetWorth = batch.Averaged[n-1].NetWorth
	}
	batch.TerminalPercentiles = terminalPercentiles(runs)
	return batch
}

func terminalPercentiles(runs []domain.RunResult) domain.PercentileRanges {
	if len(runs) == 0 {
		return domain.PercentileRanges{}
	}
	finals := make([]decimal.Decimal, len(runs))
	for i, r := range runs {
		finals[i] = r.FinalNetWorth()
	}
	sort.Slice(finals, func(i, j int) bool { return finals[i].LessThan(finals[j]) })

	n := len(finals)
	return domain.PercentileRanges{
		P10: finals[n/10],
		P25: finals[n/4],
		P50: finals[n/2],
		P75: finals[3*n/4],
		P90: finals[9*n/10],
	}
}
