package logger

import "github.com/mcdonaldj/bfm/internal/ports"

// NoopLogger discards all messages. Used when no log directory is set.
type NoopLogger struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

// Log does nothing.
func (l *NoopLogger) Log(level ports.LogLevel, msg string) error { return nil }
