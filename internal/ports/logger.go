package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelInfo is for successful operations.
	LevelInfo LogLevel = iota
	// LevelError is for operations that failed.
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger records the outcome of each operation.
type Logger interface {
	// Log records msg at the given level. A failure to record is returned
	// to the caller but never retried.
	Log(level LogLevel, msg string) error
}
