package calculation

import (
	"context"
	"math"
	"testing"

	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPlan(t *testing.T, params *domain.PlanningParameters, seed int64, opts PlanOptions) domain.RunResult {
	t.Helper()
	plan, err := NewPlan(params, newTestRand(seed), opts)
	require.NoError(t, err)
	run, err := plan.Run(context.Background())
	require.NoError(t, err)
	return run
}

func TestPlan_RunLength(t *testing.T) {
	tests := []struct {
		name           string
		age, lifeExp   int
		expectedLength int
	}{
		{name: "thirty to eighty five", age: 30, lifeExp: 85, expectedLength: 56},
		{name: "single year", age: 85, lifeExp: 85, expectedLength: 1},
		{name: "retired", age: 70, lifeExp: 95, expectedLength: 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := stochasticParams()
			params.Primary.Age = tt.age
			params.Primary.LifeExpectancy = tt.lifeExp
			run := runPlan(t, params, 3, PlanOptions{})

			require.Len(t, run.Years, tt.expectedLength)
			for i, yr := range run.Years {
				assert.Equal(t, tt.age+i, yr.Age)
			}
		})
	}
}

func TestPlan_SameSeedIsReproducible(t *testing.T) {
	for _, mode := range []domain.SimulationMode{domain.ModeSimple, domain.ModeTaxedSavings} {
		t.Run(string(mode), func(t *testing.T) {
			first := runPlan(t, stochasticParams(), 11, PlanOptions{Mode: mode})
			second := runPlan(t, stochasticParams(), 11, PlanOptions{Mode: mode})
			assert.Equal(t, first, second)

			other := runPlan(t, stochasticParams(), 12, PlanOptions{Mode: mode})
			assert.NotEqual(t, first.Years, other.Years)
		})
	}
}

func TestPlan_ZeroVarianceArithmetic(t *testing.T) {
	// 60000 is taxed at whole-amount rates: 4200 state and 12525 federal,
	// which leaves 60000-16725-50000 = -6725 a year before retirement.
	run := runPlan(t, zeroVarianceParams(50000), 1, PlanOptions{})

	net := dec(10000)
	for _, yr := range run.Years[:35] {
		assertAmount(t, 60000, yr.Income)
		assertAmount(t, 54300, yr.TaxableIncome)
		assertAmount(t, 4200, yr.StateTax)
		assertAmount(t, 12525, yr.FederalTax)
		assertAmount(t, 50000, yr.Expense)
		assertAmount(t, -6725, yr.Leftover)
		net = net.Add(yr.Leftover)
		assert.True(t, net.Equal(yr.NetWorth), "net worth %s, expected %s", yr.NetWorth, net)
	}
}

func TestPlan_PositiveLeftoverNeverBankrupt(t *testing.T) {
	run := runPlan(t, zeroVarianceParams(30000), 1, PlanOptions{})

	require.Len(t, run.Years, 56)
	assert.False(t, run.Bankrupt)
	assert.Zero(t, run.BankruptcyAge)

	prev := dec(10000)
	for _, yr := range run.Years[:35] {
		assertAmount(t, 13275, yr.Leftover)
		assert.True(t, yr.NetWorth.GreaterThan(prev))
		prev = yr.NetWorth
	}
	for _, yr := range run.Years {
		assert.False(t, yr.NetWorth.IsNegative(), "age %d net worth %s", yr.Age, yr.NetWorth)
	}
}

func TestPlan_HighExpenseBankruptButContinues(t *testing.T) {
	run := runPlan(t, zeroVarianceParams(90000), 1, PlanOptions{})

	require.True(t, run.Bankrupt)
	assert.Contains(t, []int{30, 31}, run.BankruptcyAge)
	require.Len(t, run.Years, 56)
	assert.Equal(t, 85, run.Years[55].Age)
	assert.True(t, run.Years[55].NetWorth.LessThan(run.Years[0].NetWorth))
}

func TestPlan_HaltPolicyStopsAtBankruptcy(t *testing.T) {
	run := runPlan(t, zeroVarianceParams(90000), 1, PlanOptions{Policy: domain.BankruptcyHalt})

	require.True(t, run.Bankrupt)
	assert.Equal(t, 30, run.BankruptcyAge)
	require.Len(t, run.Years, 1)
	assert.True(t, run.Years[0].NetWorth.IsNegative())
}

func TestPlan_BankruptcyAgeIsFirstNegativeYear(t *testing.T) {
	params := stochasticParams()
	params.Expense.Mean = 140000
	run := runPlan(t, params, 4, PlanOptions{})

	require.True(t, run.Bankrupt)
	for _, yr := range run.Years {
		if yr.NetWorth.IsNegative() {
			assert.Equal(t, yr.Age, run.BankruptcyAge)
			break
		}
	}
}

func TestPlan_TaxedSavingsCashesOutShortfall(t *testing.T) {
	run := runPlan(t, zeroVarianceParams(90000), 1, PlanOptions{Mode: domain.ModeTaxedSavings})

	first := run.Years[0]
	assert.True(t, first.CashedSavings.IsPositive())
	assert.True(t, dec(60000).Add(first.CashedSavings).Equal(first.Income))
	assert.True(t, first.Leftover.GreaterThanOrEqual(dec(-1)))
	assert.True(t, dec(10000).Sub(first.CashedSavings).Equal(first.NetWorth))
	assert.True(t, run.Bankrupt)
	assert.Equal(t, 30, run.BankruptcyAge)
}

func TestPlan_ModesAgreeWithoutShortfall(t *testing.T) {
	simple := runPlan(t, zeroVarianceParams(30000), 1, PlanOptions{Mode: domain.ModeSimple})
	taxed := runPlan(t, zeroVarianceParams(30000), 1, PlanOptions{Mode: domain.ModeTaxedSavings})

	assert.Equal(t, simple.Years[:35], taxed.Years[:35])
	// the retired years run a deficit, which taxed mode covers with taxed withdrawals
	assert.True(t, taxed.Years[40].CashedSavings.IsPositive())
	assert.True(t, taxed.Years[55].NetWorth.LessThan(simple.Years[55].NetWorth))
}

func TestPlan_ExpenseColumnIdenticalAcrossModes(t *testing.T) {
	simple := runPlan(t, stochasticParams(), 21, PlanOptions{Mode: domain.ModeSimple})
	taxed := runPlan(t, stochasticParams(), 21, PlanOptions{Mode: domain.ModeTaxedSavings})

	require.Len(t, taxed.Years, len(simple.Years))
	for i := range simple.Years {
		assert.True(t, simple.Years[i].Expense.Equal(taxed.Years[i].Expense))
	}
}

func TestPlan_RetiredFlag(t *testing.T) {
	run := runPlan(t, zeroVarianceParams(30000), 1, PlanOptions{})

	assert.False(t, run.Years[34].Retired)
	assert.True(t, run.Years[35].Retired)
	assert.Equal(t, 65, run.Years[35].Age)
	assertAmount(t, 17016, run.Years[35].Income)
}

func TestNewPlan_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.PlanningParameters)
		opts   PlanOptions
	}{
		{name: "unknown filing status", mutate: func(p *domain.PlanningParameters) { p.FilingStatus = "joint-ish" }},
		{name: "life expectancy before age", mutate: func(p *domain.PlanningParameters) { p.Primary.LifeExpectancy = 20 }},
		{name: "negative retirement age", mutate: func(p *domain.PlanningParameters) { p.Primary.AgeToRetire = -65 }},
		{name: "unknown mode", mutate: func(p *domain.PlanningParameters) {}, opts: PlanOptions{Mode: "leveraged"}},
		{name: "unknown policy", mutate: func(p *domain.PlanningParameters) {}, opts: PlanOptions{Policy: "panic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := zeroVarianceParams(30000)
			tt.mutate(params)
			_, err := NewPlan(params, newTestRand(1), tt.opts)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestPlan_RunHonorsCancellation(t *testing.T) {
	plan, err := NewPlan(stochasticParams(), newTestRand(1), PlanOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = plan.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan_TaxedSavingsRecordsResolvedYear(t *testing.T) {
	run := runPlan(t, zeroVarianceParams(90000), 1, PlanOptions{Mode: domain.ModeTaxedSavings})

	tax, err := NewTax(domain.FilingSingle)
	require.NoError(t, err)
	res, err := ShortfallResolver{}.Resolve(tax, dec(60000), dec(90000))
	require.NoError(t, err)

	first := run.Years[0]
	assert.True(t, res.Income.Equal(first.Income))
	assert.True(t, res.FederalTax.Equal(first.FederalTax))
	assert.True(t, res.StateTax.Equal(first.StateTax))
	assert.True(t, res.Leftover.Equal(first.Leftover))
	assert.True(t, tax.TaxableIncome(res.Income).Equal(first.TaxableIncome))
	assertAmount(t, 90000, first.Expense)
}

func TestPlan_NonFiniteDrawIsConfigurationError(t *testing.T) {
	params := zeroVarianceParams(30000)
	params.SavingsGrowth.Mean = math.Inf(1)

	plan, err := NewPlan(params, newTestRand(1), PlanOptions{})
	require.NoError(t, err)
	_, err = plan.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfiguration)

	params = zeroVarianceParams(30000)
	params.Savings = math.NaN()
	_, err = NewPlan(params, newTestRand(1), PlanOptions{})
	assert.ErrorIs(t, err, ErrConfiguration)
}
