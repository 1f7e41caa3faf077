package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rpgo/lifecastor/internal/output"
	"github.com/rpgo/lifecastor/internal/store"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded forecast batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, opts.history, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum batches to list (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "diff [a b]",
		Short: "Compare two batches (defaults to the latest two)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected zero or two batch ids, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryDiff(cmd, opts.history, args)
		},
	})
	return cmd
}

func runHistoryList(cmd *cobra.Command, path string, limit int) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	infos, err := db.ListBatches(limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "  No batches recorded yet.")
		return nil
	}

	t := output.Table{
		Title:   "Forecast history",
		Headers: []string{"ID", "Recorded", "Runs", "Mode", "Bankrupt", "Horizon wealth"},
	}
	for _, info := range infos {
		t.Rows = append(t.Rows, []string{
			info.ID,
			humanize.Time(info.CreatedAt),
			humanize.Comma(int64(info.RunCount)),
			string(info.Mode),
			output.FormatPercentage(info.BankruptcyProbability),
			output.FormatWholeCurrency(info.TerminalNetWorth),
		})
	}
	fmt.Fprint(out, output.RenderTable(t))
	return nil
}

func runHistoryDiff(cmd *cobra.Command, path string, args []string) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var a, b string
	if len(args) == 2 {
		a, b = args[0], args[1]
	} else {
		ids, err := db.LatestIDs(2)
		if err != nil {
			return err
		}
		if len(ids) < 2 {
			return errors.New("need at least two recorded batches to compare")
		}
		// Older first, so deltas read as "what changed since".
		a, b = ids[1], ids[0]
	}

	cmp, err := db.Compare(a, b)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderTable(output.Table{
		Title:   fmt.Sprintf("%s -> %s", cmp.A.ID, cmp.B.ID),
		Headers: []string{"Metric", "A", "B", "Change"},
		Rows: [][]string{
			{"Runs", strconv.Itoa(cmp.A.RunCount), strconv.Itoa(cmp.B.RunCount), ""},
			{"Bankrupt probability",
				output.FormatPercentage(cmp.A.BankruptcyProbability),
				output.FormatPercentage(cmp.B.BankruptcyProbability),
				signed(output.FormatPercentage(cmp.ProbabilityDelta), cmp.ProbabilityDelta > 0)},
			{"Horizon wealth",
				output.FormatWholeCurrency(cmp.A.TerminalNetWorth),
				output.FormatWholeCurrency(cmp.B.TerminalNetWorth),
				signed(output.FormatWholeCurrency(cmp.TerminalDelta), cmp.TerminalDelta.Round(0).IsPositive())},
		},
	}))

	if len(cmp.Years) == 0 {
		return nil
	}
	years := output.Table{Title: "Average net worth by age", Headers: []string{"Age", "A", "B", "Change"}}
	for _, y := range cmp.Years {
		years.Rows = append(years.Rows, []string{
			strconv.Itoa(y.Age),
			output.FormatAmount(y.NetWorthA),
			output.FormatAmount(y.NetWorthB),
			signed(output.FormatAmount(y.Delta), y.Delta.Round(0).IsPositive()),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, output.RenderTable(years))
	return nil
}

func signed(s string, positive bool) string {
	if positive {
		return "+" + s
	}
	return s
}
