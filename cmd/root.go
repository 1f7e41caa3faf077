// Package cmd implements the lifecastor CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rpgo/lifecastor/internal/calculation"
	"github.com/rpgo/lifecastor/internal/config"
	"github.com/rpgo/lifecastor/internal/domain"
	"github.com/rpgo/lifecastor/internal/logging"
	"github.com/rpgo/lifecastor/internal/output"
	"github.com/rpgo/lifecastor/internal/store"
)

// DefaultPlanFile is read when no plan file argument is given.
const DefaultPlanFile = "plan.yaml"

type rootOptions struct {
	brief      bool
	verbose    bool
	taxed      bool
	quiet      bool
	chart      bool
	format     string
	outputDir  string
	runs       int
	seedOffset int64
	halt       bool
	workers    int
	history    string
	noHistory  bool
	debug      bool
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with fresh flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "lifecastor [plan-file]",
		Short: "Monte Carlo household financial forecaster",
		Long: "Simulate a household's income, taxes, expenses and savings year by year\n" +
			"until life expectancy, and estimate the probability of going bankrupt.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd, args, opts)
		},
	}

	f := root.Flags()
	f.BoolVarP(&opts.brief, "brief", "b", false, "Print only bankrupt runs and their bankruptcy year (ignored with -v)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Print every run year by year (R marks retired years)")
	f.BoolVarP(&opts.taxed, "taxed-savings", "t", false, "Tax savings cashed out to cover a shortfall")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Print nothing to stdout")
	f.BoolVarP(&opts.chart, "chart", "c", false, "Write cash flow and net worth HTML charts")
	f.StringVar(&opts.format, "format", "", "Report format: console, csv, json or html")
	f.StringVarP(&opts.outputDir, "output-dir", "o", ".", "Directory for report and chart files")
	f.IntVar(&opts.runs, "runs", 0, "Override simulation.runs")
	f.Int64Var(&opts.seedOffset, "seed-offset", 0, "Override simulation.seed_offset")
	f.BoolVar(&opts.halt, "halt-on-bankruptcy", false, "Stop each run at its first bankrupt year")
	f.IntVar(&opts.workers, "workers", 0, "Concurrent runs (default from plan, else 10)")
	f.BoolVar(&opts.debug, "debug", false, "Log every simulated year")

	root.PersistentFlags().StringVar(&opts.history, "history", defaultHistoryPath(), "History database path")
	root.PersistentFlags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this batch")

	root.AddCommand(newHistoryCmd(opts), newServeCmd(), newInitCmd())
	return root
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lifecastor", "history.db")
	}
	return filepath.Join(home, ".lifecastor", "history.db")
}

func newLogger(cmd *cobra.Command, debug, quiet bool) zerolog.Logger {
	level := "info"
	switch {
	case debug:
		level = "debug"
	case quiet:
		level = "error"
	}
	return logging.NewConsole(cmd.ErrOrStderr(), level)
}

func runForecast(cmd *cobra.Command, args []string, opts *rootOptions) error {
	log := newLogger(cmd, opts.debug, opts.quiet)

	path := DefaultPlanFile
	if len(args) == 1 {
		path = args[0]
	}

	parser := config.NewInputParser()
	params, err := parser.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}
	if err := applyOverrides(cmd, opts, params); err != nil {
		return err
	}
	if err := parser.ValidateParameters(params); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	var formatter output.Formatter
	if opts.format != "" {
		if formatter, err = output.LookupFormatter(opts.format); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	log.Debug().Str("plan", path).Int("runs", params.Simulation.Runs).Str("mode", string(params.Simulation.Mode)).Msg("starting batch")
	sim := calculation.NewSimulator(logging.NewAdapter(log))
	batch, err := sim.Run(ctx, params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.quiet {
		out = io.Discard
	}

	if opts.verbose || opts.brief {
		for _, run := range batch.Runs {
			if s := output.RenderRun(run, batch.Parameters.Simulation.Mode, opts.verbose); s != "" {
				fmt.Fprintln(out, s)
			}
		}
	}

	if formatter != nil {
		if formatter.Name() == "console" {
			data, err := formatter.Format(batch)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
		} else {
			file, err := output.WriteFormatted(formatter, batch, opts.outputDir, output.Extension(formatter))
			if err != nil {
				return fmt.Errorf("failed to write %s report: %w", formatter.Name(), err)
			}
			log.Info().Str("file", file).Msg("report written")
		}
	}

	if opts.chart {
		files, err := output.WriteCharts(batch, opts.outputDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			log.Info().Str("file", f).Msg("chart written")
		}
	}

	fmt.Fprint(out, output.RenderSummary(batch))

	if !opts.noHistory {
		recordHistory(log, opts.history, batch)
	}
	return nil
}

// applyOverrides folds command-line overrides into the loaded plan.
func applyOverrides(cmd *cobra.Command, opts *rootOptions, p *domain.PlanningParameters) error {
	flags := cmd.Flags()
	if flags.Changed("runs") {
		p.Simulation.Runs = opts.runs
	}
	if flags.Changed("seed-offset") {
		p.Simulation.SeedOffset = opts.seedOffset
	}
	if flags.Changed("workers") {
		p.Simulation.Workers = opts.workers
	}
	if opts.taxed {
		p.Simulation.Mode = domain.ModeTaxedSavings
	}
	if opts.halt {
		p.Simulation.Bankruptcy = domain.BankruptcyHalt
	}
	return nil
}

// recordHistory stores the batch. A history failure never fails the forecast.
func recordHistory(log zerolog.Logger, path string, batch *domain.BatchResult) {
	db, err := store.Open(path)
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable")
		return
	}
	defer func() { _ = db.Close() }()

	id, err := db.SaveBatch(batch)
	if err != nil {
		log.Warn().Err(err).Msg("failed to record batch")
		return
	}
	log.Debug().Str("id", id).Msg("batch recorded")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
