package calculation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/shopspring/decimal"
)

// PlanOptions controls a single run. Zero values fall back to the parameters'
// simulation settings.
type PlanOptions struct {
	Mode   domain.SimulationMode
	Policy domain.BankruptcyPolicy
	Logger Logger
	// CalendarYear is the calendar year of simulation year 0; 0 derives it
	// from the parameters or the clock.
	CalendarYear int
	Resolver     ShortfallResolver
}

// Plan is one run of the household forecast.
type Plan struct {
	params  *domain.PlanningParameters
	opts    PlanOptions
	income  *Income
	expense *Expense
	tax     *Tax
	savings *Savings
}

// NewPlan builds the models for one run. rng must not be shared with any other run.
func NewPlan(params *domain.PlanningParameters, rng *rand.Rand, opts PlanOptions) (*Plan, error) {
	if params.Primary.LifeExpectancy < params.Primary.Age {
		return nil, &ConfigurationError{Field: "primary.life_expectancy", Value: params.Primary.LifeExpectancy, Reason: "before current age"}
	}
	if opts.Mode == "" {
		opts.Mode = params.Simulation.Mode
	}
	if opts.Mode == "" {
		opts.Mode = domain.ModeSimple
	}
	if opts.Policy == "" {
		opts.Policy = params.Simulation.Bankruptcy
	}
	if opts.Policy == "" {
		opts.Policy = domain.BankruptcyContinue
	}
	if opts.Logger == nil {
		opts.Logger = NopLogger{}
	}
	if opts.CalendarYear == 0 {
		opts.CalendarYear = calendarYear(params.Simulation.StartYear)
	}
	switch opts.Mode {
	case domain.ModeSimple, domain.ModeTaxedSavings:
	default:
		return nil, &ConfigurationError{Field: "simulation.mode", Value: string(opts.Mode), Reason: "unknown mode"}
	}
	switch opts.Policy {
	case domain.BankruptcyContinue, domain.BankruptcyHalt:
	default:
		return nil, &ConfigurationError{Field: "simulation.bankruptcy", Value: string(opts.Policy), Reason: "unknown bankruptcy policy"}
	}

	tax, err := NewTax(params.FilingStatus)
	if err != nil {
		return nil, err
	}
	initial, err := amount("savings", params.Savings)
	if err != nil {
		return nil, err
	}
	sampler := NewSampler(rng)
	income, err := NewIncome(params, sampler)
	if err != nil {
		return nil, err
	}
	return &Plan{
		params:  params,
		opts:    opts,
		income:  income,
		expense: NewExpense(params, opts.CalendarYear, sampler),
		tax:     tax,
		savings: NewSavings(initial, params.SavingsGrowth, sampler),
	}, nil
}

// Run simulates every year from the current age to life expectancy.
// Draw order per year is income, expense, savings growth.
func (p *Plan) Run(ctx context.Context) (domain.RunResult, error) {
	age := p.params.Primary.Age
	yearsToWork := p.params.Primary.YearsToWork()
	horizon := p.params.HorizonYears()
	log := p.opts.Logger

	result := domain.RunResult{Years: make([]domain.YearRecord, 0, horizon)}
	for year := 0; year < horizon; year++ {
		if err := ctx.Err(); err != nil {
			return domain.RunResult{}, err
		}

		income, err := amount("income", p.income.Total(year))
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("year %d: %w", year, err)
		}
		expense, err := amount("expense", p.expense.Total(year))
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("year %d: %w", year, err)
		}
		federal, state, err := p.tax.Taxes(income)
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("year %d: %w", year, err)
		}
		leftover := income.Sub(federal).Sub(state).Sub(expense)

		rec := domain.YearRecord{
			Age:           age + year,
			Income:        income,
			TaxableIncome: p.tax.TaxableIncome(income),
			FederalTax:    federal,
			StateTax:      state,
			Expense:       expense,
			Leftover:      leftover,
			CashedSavings: decimal.Zero,
			Retired:       year >= yearsToWork,
		}

		grown, err := p.savings.Grown()
		if err != nil {
			return domain.RunResult{}, fmt.Errorf("year %d: %w", year, err)
		}
		var net decimal.Decimal
		switch p.opts.Mode {
		case domain.ModeTaxedSavings:
			res, err := p.opts.Resolver.Resolve(p.tax, income, expense)
			if err != nil {
				return domain.RunResult{}, fmt.Errorf("year %d: %w", year, err)
			}
			cashed := decimal.Zero
			if res.Iterations > 0 {
				cashed = res.Cashed(income)
			}
			if res.Leftover.IsPositive() {
				net = grown.Add(res.Leftover)
			} else {
				net = grown.Sub(cashed)
			}
			rec.Income = res.Income
			rec.TaxableIncome = p.tax.TaxableIncome(res.Income)
			rec.FederalTax = res.FederalTax
			rec.StateTax = res.StateTax
			rec.Leftover = res.Leftover
			rec.CashedSavings = cashed
		default:
			net = grown.Add(leftover)
		}
		p.savings.Update(net)
		rec.NetWorth = net
		result.Years = append(result.Years, rec)

		logYear(log, rec)

		if net.IsNegative() && !result.Bankrupt {
			result.Bankrupt = true
			result.BankruptcyAge = rec.Age
			log.Debugf("bankrupt at age %d", rec.Age)
			if p.opts.Policy == domain.BankruptcyHalt {
				break
			}
		}
	}
	return result, nil
}

// amount converts a drawn value to money. Draws stay in float64 and are
// converted once per year.
func amount(field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, &ConfigurationError{Field: field, Value: v, Reason: "not a finite amount"}
	}
	return decimal.NewFromFloat(v), nil
}
