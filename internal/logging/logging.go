// Package logging configures zerolog for the CLI and server and adapts it to
// the calculation engine's Logger interface.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a structured logger writing JSON lines to w.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// NewConsole returns a human-readable logger for terminal use.
func NewConsole(w io.Writer, level string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(cw).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names give info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Adapter satisfies calculation.Logger on top of a zerolog.Logger.
type Adapter struct {
	Logger zerolog.Logger
}

// NewAdapter wraps l.
func NewAdapter(l zerolog.Logger) *Adapter {
	return &Adapter{Logger: l}
}

func (a *Adapter) Debugf(format string, args ...any) {
	a.Logger.Debug().Msgf(format, args...)
}

func (a *Adapter) Infof(format string, args ...any) {
	a.Logger.Info().Msgf(format, args...)
}

func (a *Adapter) Warnf(format string, args ...any) {
	a.Logger.Warn().Msgf(format, args...)
}

func (a *Adapter) Errorf(format string, args ...any) {
	a.Logger.Error().Msgf(format, args...)
}
