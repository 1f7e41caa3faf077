package calculation

import "time"

// nowFunc returns the current time (override in tests for determinism).
var nowFunc = time.Now

// SetNowFunc overrides the time provider (use only in tests).
func SetNowFunc(f func() time.Time) { nowFunc = f }

// calendarYear anchors simulation year 0. A configured start year wins over the clock.
func calendarYear(startYear int) int {
	if startYear != 0 {
		return startYear
	}
	return nowFunc().Year()
}
