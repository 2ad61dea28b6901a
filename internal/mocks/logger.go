package mocks

import (
	"github.com/mcdonaldj/bfm/internal/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   ports.LogLevel
	Message string
}

// MockLogger implements ports.Logger for testing.
type MockLogger struct {
	// Entries records every call to Log
	Entries []LogEntry
	// Err is returned from Log when set
	Err error
}

// NewMockLogger creates a new mock logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// Log records the message.
func (m *MockLogger) Log(level ports.LogLevel, msg string) error {
	m.Entries = append(m.Entries, LogEntry{Level: level, Message: msg})
	return m.Err
}

// Messages returns the recorded messages in order.
func (m *MockLogger) Messages() []string {
	msgs := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		msgs[i] = e.Message
	}
	return msgs
}

// Compile-time check that MockLogger implements ports.Logger.
var _ ports.Logger = (*MockLogger)(nil)
