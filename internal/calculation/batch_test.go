package calculation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_Run(t *testing.T) {
	params := stochasticParams()
	sim := NewSimulator(nil)

	batch, err := sim.Run(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 40, batch.RunCount)
	require.Len(t, batch.Runs, 40)
	assert.Len(t, batch.Averaged, params.HorizonYears())
	assert.GreaterOrEqual(t, batch.BankruptcyProbability, 0.0)
	assert.LessOrEqual(t, batch.BankruptcyProbability, 1.0)

	for i, run := range batch.Runs {
		assert.Equal(t, i, run.Index)
		assert.Equal(t, int64(i)+7, run.Seed)
		assert.Len(t, run.Years, params.HorizonYears())
	}
}

func TestSimulator_RunIsReproducibleAcrossWorkerCounts(t *testing.T) {
	pinClock(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	sequential := &Simulator{Workers: 1}
	parallel := &Simulator{Workers: 8}

	a, err := sequential.Run(context.Background(), stochasticParams())
	require.NoError(t, err)
	b, err := parallel.Run(context.Background(), stochasticParams())
	require.NoError(t, err)

	assert.Equal(t, a.Runs, b.Runs)
	assert.Equal(t, a.Averaged, b.Averaged)
	assert.Equal(t, a.BankruptcyProbability, b.BankruptcyProbability)
	assert.Equal(t, a.TerminalPercentiles, b.TerminalPercentiles)
}

func TestSimulator_RunMatchesSingleSeededPlan(t *testing.T) {
	params := stochasticParams()
	batch, err := NewSimulator(nil).Run(context.Background(), params)
	require.NoError(t, err)

	run := runPlan(t, params, Seed(5, params.Simulation.SeedOffset), PlanOptions{})
	assert.Equal(t, run.Years, batch.Runs[5].Years)
}

func TestSimulator_BankruptcyProbabilityZeroIffNoNegativeNetWorth(t *testing.T) {
	tests := []struct {
		name    string
		expense float64
	}{
		{name: "comfortable", expense: 20000},
		{name: "strained", expense: 70000},
		{name: "underwater", expense: 150000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := stochasticParams()
			params.Expense.Mean = tt.expense
			batch, err := NewSimulator(nil).Run(context.Background(), params)
			require.NoError(t, err)

			anyNegative := false
			for _, run := range batch.Runs {
				for _, yr := range run.Years {
					if yr.NetWorth.IsNegative() {
						anyNegative = true
					}
				}
			}
			assert.Equal(t, !anyNegative, batch.BankruptcyProbability == 0)
			assert.Equal(t, !anyNegative, batch.AverageBankruptcyAge == nil)
		})
	}
}

func TestSimulator_HaltPolicy(t *testing.T) {
	params := zeroVarianceParams(90000)
	params.Simulation.Runs = 3
	params.Simulation.Bankruptcy = domain.BankruptcyHalt

	batch, err := NewSimulator(nil).Run(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 1.0, batch.BankruptcyProbability)
	require.NotNil(t, batch.AverageBankruptcyAge)
	assert.Equal(t, 30.0, *batch.AverageBankruptcyAge)
	assert.Len(t, batch.Averaged, 1)
}

func TestSimulator_RunRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.PlanningParameters)
	}{
		{name: "no runs", mutate: func(p *domain.PlanningParameters) { p.Simulation.Runs = 0 }},
		{name: "unknown filing status", mutate: func(p *domain.PlanningParameters) { p.FilingStatus = "unknown" }},
		{name: "non-finite income", mutate: func(p *domain.PlanningParameters) { p.Primary.Income = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := stochasticParams()
			tt.mutate(params)
			batch, err := NewSimulator(nil).Run(context.Background(), params)
			assert.Nil(t, batch)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestSimulator_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulator(nil).Run(ctx, stochasticParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulator_RunDoesNotMutateParameters(t *testing.T) {
	params := stochasticParams()
	params.Simulation.Mode = ""
	params.Chart = domain.ChartSettings{}

	_, err := NewSimulator(nil).Run(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, domain.SimulationMode(""), params.Simulation.Mode)
	assert.Empty(t, params.Chart.Primary)
}

func TestSimulator_WorkerPoolSizes(t *testing.T) {
	for _, workers := range []int{1, 3, 64} {
		params := zeroVarianceParams(30000)
		params.Simulation.Runs = 5
		params.Simulation.Workers = workers

		batch, err := NewSimulator(nil).Run(context.Background(), params)
		require.NoError(t, err, "workers %d", workers)
		require.Len(t, batch.Runs, 5)
		for i, run := range batch.Runs {
			assert.Equal(t, i, run.Index)
			assert.Len(t, run.Years, 56)
		}
	}
}
