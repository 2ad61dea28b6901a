package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/mcdonaldj/bfm/internal/ports"
)

// ConsoleLogger mirrors log messages to a terminal stream.
type ConsoleLogger struct {
	w        io.Writer
	info     *color.Color
	errColor *color.Color
}

// NewConsole creates a console logger writing to w. Color output is
// enabled only when colored is true.
func NewConsole(w io.Writer, colored bool) *ConsoleLogger {
	info := color.New(color.FgHiBlack)
	errColor := color.New(color.FgRed)
	if colored {
		info.EnableColor()
		errColor.EnableColor()
	} else {
		info.DisableColor()
		errColor.DisableColor()
	}
	return &ConsoleLogger{w: w, info: info, errColor: errColor}
}

// NewStderr creates a console logger on standard error, colored when it is a
// terminal.
func NewStderr() *ConsoleLogger {
	fd := os.Stderr.Fd()
	return NewConsole(os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// Log writes the message on its own line.
func (l *ConsoleLogger) Log(level ports.LogLevel, msg string) error {
	c := l.info
	if level == ports.LevelError {
		c = l.errColor
	}
	_, err := fmt.Fprintln(l.w, c.Sprintf("[%s] %s", level, msg))
	return err
}
