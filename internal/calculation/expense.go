package calculation

import (
	"math"

	"github.com/rpgo/lifecastor/internal/domain"
)

// HealthCostOnsetAge is the age health costs begin, before any shift.
const HealthCostOnsetAge = 55

// Quartic fit of the annual health cost table for ages 55 to 90.
const (
	healthC4 = 0.0009242424242415721
	healthC3 = -0.2508585858583263
	healthC2 = 25.596590909061494
	healthC1 = -1155.608405481936
	healthC0 = 19507.78679650952
)

func healthCostCurve(x float64) float64 {
	return healthC4*math.Pow(x, 4) + healthC3*math.Pow(x, 3) + healthC2*math.Pow(x, 2) + healthC1*x + healthC0
}

// HealthCareCost is a member's health cost in a simulation year. It is zero
// before onset, at or after life expectancy, and when base is zero.
func HealthCareCost(year, age, shift int, base float64, yearsToLive int) float64 {
	if math.Abs(base) < degenerateSD {
		return 0
	}
	if year >= yearsToLive {
		return 0
	}
	if age+year < HealthCostOnsetAge+shift {
		return 0
	}
	return base / 100.0 * healthCostCurve(float64(age+year-shift))
}

// Expense is the household expense model. Normal and periodic costs are
// counted once per household, health cost once per member.
type Expense struct {
	mean float64
	sd   float64

	inflation       domain.Distribution
	firstTwo        float64
	afterRetirement float64
	afterLife       float64

	yearsToWork int
	yearsToLive int
	members     []domain.Member

	periodic     domain.PeriodicExpense
	calendarYear int

	sampler *Sampler
}

// NewExpense builds the expense model. calendarYear is the calendar year of simulation year 0.
func NewExpense(params *domain.PlanningParameters, calendarYear int, sampler *Sampler) *Expense {
	members := params.Members()
	yearsToLive := members[0].YearsToLive()
	for _, m := range members[1:] {
		yearsToLive = min(yearsToLive, m.YearsToLive())
	}
	return &Expense{
		mean:            params.Expense.Mean,
		sd:              params.Expense.StdDev,
		inflation:       params.Inflation,
		firstTwo:        params.FirstTwoYearFactor,
		afterRetirement: params.ExpenseAfterRetirement,
		afterLife:       params.ExpenseAfterLifeExpectancy,
		yearsToWork:     params.Primary.YearsToWork(),
		yearsToLive:     yearsToLive,
		members:         members,
		periodic:        params.PeriodicExpense,
		calendarYear:    calendarYear,
		sampler:         sampler,
	}
}

// Total returns the household expense for a simulation year.
func (e *Expense) Total(year int) float64 {
	total := e.NormalCost(year) + e.PeriodicExpense(year)
	for _, m := range e.members {
		total += HealthCareCost(year, m.Age, m.HealthCostShift, m.HealthCostBase, m.YearsToLive())
	}
	return total
}

// NormalCost inflates the running baseline and draws this year's living cost.
func (e *Expense) NormalCost(year int) float64 {
	inf := e.sampler.SampleLowerBounded(e.inflation.Mean, e.inflation.StdDev)
	e.mean *= 1.0 + inf

	mean, sd := e.mean, e.sd
	if year < 2 {
		mean *= e.firstTwo
		sd *= e.firstTwo
	} else {
		if year >= e.yearsToWork {
			mean *= e.afterRetirement
			sd *= e.afterRetirement
		}
		if year >= e.yearsToLive {
			mean *= e.afterLife
			sd *= e.afterLife
		}
	}
	return e.sampler.SampleLowerBounded(mean, sd)
}

// PeriodicExpense returns twelve monthly payments when the calendar year of
// the simulation year falls in (start, end].
func (e *Expense) PeriodicExpense(year int) float64 {
	if e.periodic.Monthly == 0 {
		return 0
	}
	cy := e.calendarYear + year
	if cy > e.periodic.StartYear && cy <= e.periodic.EndYear {
		return 12 * e.periodic.Monthly
	}
	return 0
}
