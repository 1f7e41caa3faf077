package calculation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// zeroVarianceParams is a single-earner household with every distribution pinned.
func zeroVarianceParams(expense float64) *domain.PlanningParameters {
	return &domain.PlanningParameters{
		FilingStatus: domain.FilingSingle,
		Primary: domain.Member{
			Age:            30,
			AgeToRetire:    65,
			LifeExpectancy: 85,
			Income:         60000,
		},
		Expense:                    domain.Distribution{Mean: expense},
		FirstTwoYearFactor:         1,
		ExpenseAfterRetirement:     1,
		ExpenseAfterLifeExpectancy: 1,
		Savings:                    10000,
		Simulation: domain.SimulationSettings{
			Runs:       1,
			Mode:       domain.ModeSimple,
			Bankruptcy: domain.BankruptcyContinue,
			StartYear:  2025,
		},
	}
}

// stochasticParams is a two-member household with non-trivial variance everywhere.
func stochasticParams() *domain.PlanningParameters {
	return &domain.PlanningParameters{
		FilingStatus: domain.FilingMarriedJointly,
		Primary: domain.Member{
			Age:             45,
			AgeToRetire:     67,
			LifeExpectancy:  90,
			Income:          95000,
			HealthCostBase:  100,
			HealthCostShift: 0,
		},
		Secondary: &domain.Member{
			Age:             43,
			AgeToRetire:     62,
			LifeExpectancy:  92,
			Income:          0,
			HealthCostBase:  80,
			HealthCostShift: 2,
		},
		SpousalBenefitFactor:       0.5,
		IncomeGrowth:               domain.Distribution{Mean: 0.03, StdDev: 0.02},
		Expense:                    domain.Distribution{Mean: 55000, StdDev: 5000},
		Inflation:                  domain.Distribution{Mean: 0.025, StdDev: 0.01},
		FirstTwoYearFactor:         1.1,
		ExpenseAfterRetirement:     0.8,
		ExpenseAfterLifeExpectancy: 0.7,
		Savings:                    250000,
		SavingsGrowth:              domain.Distribution{Mean: 0.05, StdDev: 0.1},
		PeriodicExpense:            domain.PeriodicExpense{Monthly: 1500, StartYear: 2024, EndYear: 2034},
		Simulation: domain.SimulationSettings{
			Runs:       40,
			SeedOffset: 7,
			Mode:       domain.ModeSimple,
			Bankruptcy: domain.BankruptcyContinue,
			StartYear:  2025,
		},
	}
}

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// pinClock fixes nowFunc for the duration of a test.
func pinClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := nowFunc
	SetNowFunc(func() time.Time { return at })
	t.Cleanup(func() { SetNowFunc(prev) })
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// assertAmount checks a money value for exact equality.
func assertAmount(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %v, got %s", expected, actual)
}
