package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/lifecastor/internal/config"
	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/rpgo/lifecastor/internal/store"
)

func writePlan(t *testing.T, expense float64) string {
	t.Helper()
	p := &domain.PlanningParameters{
		FilingStatus: domain.FilingSingle,
		Primary:      domain.Member{Age: 60, AgeToRetire: 62, LifeExpectancy: 64, Income: 50000},
		Expense:      domain.Distribution{Mean: expense},
		Simulation:   domain.SimulationSettings{Runs: 3, StartYear: 2025},
	}
	p.ApplyDefaults()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, config.NewInputParser().SaveParameters(p, path))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestForecast_Solvent(t *testing.T) {
	out, _, err := execute(t, writePlan(t, 10000), "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "Bankrupt probability: 0.0%")
	assert.NotContains(t, out, "Average bankrupt age")
	assert.Contains(t, out, "Average horizon wealth: $")
}

func TestForecast_BriefShowsBankruptRuns(t *testing.T) {
	out, _, err := execute(t, writePlan(t, 200000), "-b", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "BANKRUPT at age 60!")
	assert.Contains(t, out, "Bankrupt probability: 100.0%")
	assert.Contains(t, out, "Average bankrupt age: 60.0")
}

func TestForecast_OverridesAndQuiet(t *testing.T) {
	out, _, err := execute(t, writePlan(t, 10000), "-q", "--runs", "2", "-t", "--halt-on-bankruptcy", "--no-history")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, _, err = execute(t, writePlan(t, 10000), "--runs", "0", "--no-history")
	assert.ErrorContains(t, err, "simulation.runs")
}

func TestForecast_VerboseWinsOverBrief(t *testing.T) {
	out, _, err := execute(t, writePlan(t, 200000), "-b", "-v", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation 1")
	assert.Contains(t, out, "BANKRUPT at age 60!")
	// every year of the first run is listed, not only the bankruptcy year
	assert.Contains(t, out, "63")
	assert.Contains(t, out, " R ")
}

func TestForecast_ReportsAndCharts(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, writePlan(t, 10000), "--format", "csv", "-c", "-o", dir, "--no-history")
	require.NoError(t, err)

	csvFiles, err := filepath.Glob(filepath.Join(dir, "lifecastor_report_*.csv"))
	require.NoError(t, err)
	assert.Len(t, csvFiles, 1)
	assert.FileExists(t, filepath.Join(dir, "lifecastor_chart_cashflow.html"))
	assert.FileExists(t, filepath.Join(dir, "lifecastor_chart_networth.html"))

	_, _, err = execute(t, writePlan(t, 10000), "--format", "pdf", "--no-history")
	assert.ErrorContains(t, err, "unsupported report format")
}

func TestForecast_ConsoleFormat(t *testing.T) {
	out, _, err := execute(t, writePlan(t, 10000), "--format", "table", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "LIFECASTOR HOUSEHOLD FORECAST")
	assert.Contains(t, out, "Average across runs")
}

func TestForecast_MissingPlan(t *testing.T) {
	_, _, err := execute(t, filepath.Join(t.TempDir(), "absent.yaml"), "--no-history")
	assert.ErrorContains(t, err, "failed to load plan")
}

func TestHistoryRecordListAndDiff(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	_, _, err := execute(t, "history", "diff", "--history", db)
	assert.ErrorContains(t, err, "at least two")

	_, _, err = execute(t, writePlan(t, 10000), "--history", db)
	require.NoError(t, err)
	_, _, err = execute(t, writePlan(t, 200000), "--history", db)
	require.NoError(t, err)

	s, err := store.Open(db)
	require.NoError(t, err)
	ids, err := s.LatestIDs(0)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.Len(t, ids, 2)

	out, _, err := execute(t, "history", "--history", db)
	require.NoError(t, err)
	assert.Contains(t, out, ids[0])
	assert.Contains(t, out, ids[1])
	assert.Contains(t, out, "100.00%")

	out, _, err = execute(t, "history", "diff", "--history", db)
	require.NoError(t, err)
	assert.Contains(t, out, ids[1]+" -> "+ids[0])
	assert.Contains(t, out, "+100.00%")
	assert.Contains(t, out, "Average net worth by age")

	_, _, err = execute(t, "history", "diff", "only-one", "--history", db)
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.toml")

	out, _, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	params, err := config.NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.FilingMarriedJointly, params.FilingStatus)

	_, _, err = execute(t, "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "init", "--force", path)
	assert.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
