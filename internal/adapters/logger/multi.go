package logger

import (
	"errors"

	"github.com/mcdonaldj/bfm/internal/ports"
)

// MultiLogger sends every message to each of its loggers.
type MultiLogger struct {
	loggers []ports.Logger
}

// NewMulti combines loggers. Every logger sees every message even when an
// earlier one fails.
func NewMulti(loggers ...ports.Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards msg and joins the failures.
func (m *MultiLogger) Log(level ports.LogLevel, msg string) error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Log(level, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Compile-time checks that every logger implements ports.Logger.
var (
	_ ports.Logger = (*FileLogger)(nil)
	_ ports.Logger = (*ConsoleLogger)(nil)
	_ ports.Logger = (*NoopLogger)(nil)
	_ ports.Logger = (*MultiLogger)(nil)
)
