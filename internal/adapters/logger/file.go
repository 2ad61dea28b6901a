// Package logger provides ports.Logger implementations.
package logger

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/mcdonaldj/bfm/internal/ports"
	"github.com/mcdonaldj/bfm/internal/rio"
)

// FileLogger appends one line per message to a log file, each with a single
// write call.
type FileLogger struct {
	io   *rio.IO
	path string
	mode uint32
}

// NewFile creates a logger appending to path. The file is created with mode
// when it does not exist.
func NewFile(io *rio.IO, path string, mode uint32) *FileLogger {
	return &FileLogger{io: io, path: path, mode: mode}
}

// Log appends "<level>: <msg>\n" to the log file.
func (l *FileLogger) Log(level ports.LogLevel, msg string) error {
	line := []byte(fmt.Sprintf("%s: %s\n", level, msg))
	_, err := l.io.Perform(rio.Request{
		Kind:  rio.Write,
		Path:  l.path,
		Buf:   line,
		Max:   len(line),
		Flags: unix.O_WRONLY | unix.O_APPEND | unix.O_CREAT,
		Mode:  l.mode,
	})
	return err
}
