package calculation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rpgo/lifecastor/internal/domain"
)

// DefaultWorkers bounds concurrent runs when none is configured.
const DefaultWorkers = 10

// Simulator runs a batch of independently seeded plans.
type Simulator struct {
	Workers int
	Logger  Logger
}

// NewSimulator creates a simulator with the default worker count.
func NewSimulator(logger Logger) *Simulator {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Simulator{Workers: DefaultWorkers, Logger: logger}
}

// Seed is the generator seed for run i of a batch.
func Seed(i int, offset int64) int64 {
	return int64(i) + offset
}

// Run executes params.Simulation.Runs plans and aggregates them. Run i is
// seeded with i + seed_offset. The first failing run cancels the others and
// its error is returned.
func (s *Simulator) Run(ctx context.Context, params *domain.PlanningParameters) (*domain.BatchResult, error) {
	p := *params
	p.ApplyDefaults()

	n := p.Simulation.Runs
	if n <= 0 {
		return nil, &ConfigurationError{Field: "simulation.runs", Value: n, Reason: "must be positive"}
	}
	if _, err := NewTax(p.FilingStatus); err != nil {
		return nil, err
	}

	logger := s.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	workers := s.Workers
	if p.Simulation.Workers > 0 {
		workers = p.Simulation.Workers
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	opts := PlanOptions{
		Mode:         p.Simulation.Mode,
		Policy:       p.Simulation.Bankruptcy,
		Logger:       logger,
		CalendarYear: calendarYear(p.Simulation.StartYear),
	}

	start := time.Now()
	logger.Infof("running %d simulations with %d workers (mode %s, bankruptcy %s)", n, workers, opts.Mode, opts.Policy)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]domain.RunResult, n)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	indexes := make(chan int)

	for w := 0; w < min(workers, n); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for simIndex := range indexes {
				if ctx.Err() != nil {
					continue
				}
				run, err := s.runOne(ctx, &p, simIndex, opts)
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				results[simIndex] = run
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		logger.Errorf("batch aborted: %v", firstErr)
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := Aggregate(&p, results)
	batch.GeneratedAt = nowFunc()
	batch.Elapsed = time.Since(start)
	logger.Infof("batch complete: %d/%d bankrupt in %s", batch.BankruptCount, batch.RunCount, batch.Elapsed)
	return batch, nil
}

func (s *Simulator) runOne(ctx context.Context, params *domain.PlanningParameters, i int, opts PlanOptions) (domain.RunResult, error) {
	seed := Seed(i, params.Simulation.SeedOffset)
	plan, err := NewPlan(params, rand.New(rand.NewSource(seed)), opts)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("run %d: %w", i, err)
	}
	run, err := plan.Run(ctx)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("run %d (seed %d): %w", i, seed, err)
	}
	run.Index = i
	run.Seed = seed
	return run, nil
}
