package calculation

import (
	"testing"
	"time"

	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHealthCareCost(t *testing.T) {
	tests := []struct {
		name        string
		year, age   int
		shift       int
		base        float64
		yearsToLive int
		expected    float64
	}{
		{name: "no base", year: 0, age: 60, base: 0, yearsToLive: 30, expected: 0},
		{name: "before onset", year: 0, age: 54, base: 100, yearsToLive: 30, expected: 0},
		{name: "shifted onset", year: 0, age: 57, shift: 3, base: 100, yearsToLive: 30, expected: 0},
		{name: "at life expectancy", year: 30, age: 60, base: 100, yearsToLive: 30, expected: 0},
		{name: "onset", year: 0, age: 55, base: 100, yearsToLive: 30, expected: 99.81060606054962},
		{name: "shifted curve", year: 2, age: 58, shift: 5, base: 100, yearsToLive: 30, expected: 99.81060606054962},
		{name: "age 70 half base", year: 10, age: 60, base: 50, yearsToLive: 30, expected: 92.529761904770565},
		{name: "age 90", year: 30, age: 60, base: 100, yearsToLive: 31, expected: 599.0530303030537},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HealthCareCost(tt.year, tt.age, tt.shift, tt.base, tt.yearsToLive)
			assert.InDelta(t, tt.expected, got, 1e-6)
		})
	}
}

func expenseParams() *domain.PlanningParameters {
	return &domain.PlanningParameters{
		Primary:                    domain.Member{Age: 60, AgeToRetire: 62, LifeExpectancy: 64},
		Expense:                    domain.Distribution{Mean: 50000},
		FirstTwoYearFactor:         1.5,
		ExpenseAfterRetirement:     0.8,
		ExpenseAfterLifeExpectancy: 0.5,
	}
}

func TestExpense_NormalCostFactors(t *testing.T) {
	e := NewExpense(expenseParams(), 2025, NewSampler(newTestRand(1)))

	assert.InDelta(t, 75000, e.NormalCost(0), 1e-9)
	assert.InDelta(t, 75000, e.NormalCost(1), 1e-9)
	assert.InDelta(t, 40000, e.NormalCost(2), 1e-9) // retired
	assert.InDelta(t, 40000, e.NormalCost(3), 1e-9)
	assert.InDelta(t, 20000, e.NormalCost(4), 1e-9) // at life expectancy
}

func TestExpense_InflationCompounds(t *testing.T) {
	params := expenseParams()
	params.FirstTwoYearFactor = 1
	params.ExpenseAfterRetirement = 1
	params.ExpenseAfterLifeExpectancy = 1
	params.Inflation = domain.Distribution{Mean: 0.02}
	e := NewExpense(params, 2025, NewSampler(newTestRand(1)))

	assert.InDelta(t, 51000, e.NormalCost(0), 1e-6)
	assert.InDelta(t, 52020, e.NormalCost(1), 1e-6)
	assert.InDelta(t, 53060.4, e.NormalCost(2), 1e-6)
}

func TestExpense_DrawsAreLowerBounded(t *testing.T) {
	params := expenseParams()
	params.Primary = domain.Member{Age: 30, AgeToRetire: 65, LifeExpectancy: 90}
	params.FirstTwoYearFactor = 1
	params.Expense = domain.Distribution{Mean: 40000, StdDev: 6000}
	e := NewExpense(params, 2025, NewSampler(newTestRand(3)))

	for year := 0; year < 20; year++ {
		assert.GreaterOrEqual(t, e.NormalCost(year), 40000-2*6000.0)
	}
}

func TestExpense_PeriodicWindow(t *testing.T) {
	tests := []struct {
		name     string
		periodic domain.PeriodicExpense
		year     int
		expected float64
	}{
		{name: "inside", periodic: domain.PeriodicExpense{Monthly: 100, StartYear: 2024, EndYear: 2026}, year: 0, expected: 1200},
		{name: "end inclusive", periodic: domain.PeriodicExpense{Monthly: 100, StartYear: 2024, EndYear: 2026}, year: 1, expected: 1200},
		{name: "after end", periodic: domain.PeriodicExpense{Monthly: 100, StartYear: 2024, EndYear: 2026}, year: 2, expected: 0},
		{name: "start exclusive", periodic: domain.PeriodicExpense{Monthly: 100, StartYear: 2025, EndYear: 2030}, year: 0, expected: 0},
		{name: "no amount", periodic: domain.PeriodicExpense{StartYear: 2000, EndYear: 2100}, year: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := expenseParams()
			params.PeriodicExpense = tt.periodic
			e := NewExpense(params, 2025, NewSampler(newTestRand(1)))
			assert.Equal(t, tt.expected, e.PeriodicExpense(tt.year))
		})
	}
}

func TestExpense_TotalCountsHealthPerMember(t *testing.T) {
	params := expenseParams()
	params.Primary.HealthCostBase = 100
	params.Secondary = &domain.Member{Age: 60, AgeToRetire: 60, LifeExpectancy: 70, HealthCostBase: 100}
	params.FirstTwoYearFactor = 1
	e := NewExpense(params, 2025, NewSampler(newTestRand(1)))

	health := HealthCareCost(0, 60, 0, 100, 4)
	assert.InDelta(t, 50000+2*health, e.Total(0), 1e-6)
}

func TestCalendarYear_UsesClockWhenUnset(t *testing.T) {
	pinClock(t, time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 2030, calendarYear(0))
	assert.Equal(t, 2027, calendarYear(2027))
}
