package calculation

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks parameters the engine cannot simulate.
	ErrConfiguration = errors.New("configuration error")
	// ErrNonConvergence marks a shortfall that could not be covered within the iteration cap.
	ErrNonConvergence = errors.New("shortfall resolution did not converge")
)

// ConfigurationError reports an unusable parameter value.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NonConvergenceError is returned when shortfall resolution exceeds its iteration cap.
type NonConvergenceError struct {
	Income     float64
	Expense    float64
	Leftover   float64
	Iterations int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("shortfall resolution did not converge after %d iterations (income %.2f, expense %.2f, leftover %.2f)",
		e.Iterations, e.Income, e.Expense, e.Leftover)
}

// Is matches ErrNonConvergence.
func (e *NonConvergenceError) Is(target error) bool { return target == ErrNonConvergence }
