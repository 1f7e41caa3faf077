package calculation

import "github.com/rpgo/lifecastor/internal/domain"

// Logger receives progress from the simulator and per-year detail from each
// plan. Per-year lines are logged at debug level from worker goroutines, so
// implementations must be safe for concurrent use.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...any) {}
func (NopLogger) Infof(format string, args ...any)  {}
func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}

func logYear(log Logger, rec domain.YearRecord) {
	log.Debugf("age %d income %s federal %s state %s expense %s leftover %s cashed %s net %s",
		rec.Age, rec.Income.StringFixed(2), rec.FederalTax.StringFixed(2), rec.StateTax.StringFixed(2),
		rec.Expense.StringFixed(2), rec.Leftover.StringFixed(2), rec.CashedSavings.StringFixed(2), rec.NetWorth.StringFixed(2))
}
