package output

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/rpgo/lifecastor/internal/domain"
)

// ConsoleFormatter renders the batch summary and averaged table for a terminal.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(batch *domain.BatchResult) ([]byte, error) {
	var buf bytes.Buffer
	p := batch.Parameters

	fmt.Fprintln(&buf, RenderTitle("LIFECASTOR HOUSEHOLD FORECAST"))
	fmt.Fprintln(&buf)

	rows := [][]string{
		{"Runs", strconv.Itoa(batch.RunCount)},
		{"Mode", string(p.Simulation.Mode)},
		{"Bankrupt runs", strconv.Itoa(batch.BankruptCount)},
		{"Bankrupt probability", FormatPercentage(batch.BankruptcyProbability)},
	}
	if batch.AverageBankruptcyAge != nil {
		rows = append(rows, []string{"Average bankrupt age", fmt.Sprintf("%.1f", *batch.AverageBankruptcyAge)})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Average horizon wealth", FormatWholeCurrency(batch.TerminalNetWorth)},
		[]string{"P10 horizon wealth", FormatWholeCurrency(batch.TerminalPercentiles.P10)},
		[]string{"P50 horizon wealth", FormatWholeCurrency(batch.TerminalPercentiles.P50)},
		[]string{"P90 horizon wealth", FormatWholeCurrency(batch.TerminalPercentiles.P90)},
	)
	fmt.Fprint(&buf, RenderTable(Table{Title: "Summary", Headers: []string{"Metric", "Value"}, Rows: rows}))
	fmt.Fprintln(&buf)

	columns := tableColumns(p.Simulation.Mode)
	t := Table{Title: "Average across runs", Headers: columns}
	for _, yr := range batch.Averaged {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cell(col, yr)
		}
		t.Rows = append(t.Rows, row)
	}
	fmt.Fprint(&buf, RenderTable(t))
	return buf.Bytes(), nil
}

// tableColumns drops the cashed-savings column outside taxed-savings mode.
func tableColumns(mode domain.SimulationMode) []string {
	if mode == domain.ModeTaxedSavings {
		return domain.Columns
	}
	cols := make([]string, 0, len(domain.Columns)-1)
	for _, c := range domain.Columns {
		if c != domain.ColumnCashed {
			cols = append(cols, c)
		}
	}
	return cols
}

// RenderRun renders one run for the console. Verbose output lists every year
// and marks retired years with an R; otherwise only the bankruptcy year is
// shown, and nothing at all for a run that stayed solvent.
func RenderRun(run domain.RunResult, mode domain.SimulationMode, verbose bool) string {
	if !verbose && !run.Bankrupt {
		return ""
	}

	columns := tableColumns(mode)
	headers := append([]string{""}, columns...)
	t := Table{Title: fmt.Sprintf("Simulation %d (seed %d)", run.Index+1, run.Seed), Headers: headers}
	for _, yr := range run.Years {
		if !verbose && yr.Age != run.BankruptcyAge {
			continue
		}
		marker := ""
		if yr.Retired {
			marker = "R"
		}
		row := []string{marker}
		for _, col := range columns {
			row = append(row, cell(col, yr))
		}
		t.Rows = append(t.Rows, row)
	}

	out := RenderTable(t)
	if run.Bankrupt {
		out += alertStyle.Render(fmt.Sprintf("      BANKRUPT at age %d!", run.BankruptcyAge)) + "\n"
	}
	return out
}

// RenderSummary renders the headline lines printed after a batch.
func RenderSummary(batch *domain.BatchResult) string {
	var buf bytes.Buffer
	for _, line := range SummaryLines(batch) {
		fmt.Fprintln(&buf, line)
	}
	fmt.Fprintln(&buf, mutedStyle.Render(fmt.Sprintf("%d runs in %s", batch.RunCount, batch.Elapsed)))
	return buf.String()
}
