// Package dispatch runs parsed commands against the file operations in a
// fixed order.
package dispatch

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"golang.org/x/sys/unix"
)

var (
	// ErrMissingPath is returned when an operation lacks a required path.
	ErrMissingPath = errors.New("missing path")
	// ErrNoOperation is returned for a command that selects nothing.
	ErrNoOperation = errors.New("no operation selected")
)

// Command is one invocation's worth of requested operations. The zero value
// selects nothing; each non-empty path field selects its operation.
type Command struct {
	Create    string
	CreateDir bool

	RenameFrom string
	RenameTo   string

	Append        string
	AppendValue   string
	AppendNumbers bool

	Print  string
	Delete string
}

// IsZero reports whether the command selects no operation.
func (c Command) IsZero() bool {
	return c.Create == "" && c.RenameFrom == "" && c.RenameTo == "" &&
		c.Append == "" && c.Print == "" && c.Delete == ""
}

// Validate checks the command before any filesystem call is made.
func (c Command) Validate() error {
	if c.IsZero() {
		return ErrNoOperation
	}
	if c.CreateDir && c.Create == "" {
		return fmt.Errorf("create directory: %w", ErrMissingPath)
	}
	if (c.RenameFrom == "") != (c.RenameTo == "") {
		return fmt.Errorf("rename needs both names: %w", ErrMissingPath)
	}
	if c.AppendNumbers && c.Append == "" {
		return fmt.Errorf("append numbers: %w", ErrMissingPath)
	}
	if c.Append != "" && c.AppendNumbers {
		if _, err := c.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Start parses AppendValue as the first even number to append. Decimal,
// hex (0x) and octal (0) forms are accepted.
func (c Command) Start() (int, error) {
	n, err := strconv.ParseInt(c.AppendValue, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid start number %q: %w", c.AppendValue, err)
	}
	return int(n), nil
}

// Operations is the set of file operations a Dispatcher drives.
type Operations interface {
	IsDir(path string) (bool, error)
	CreateFile(path string) error
	CreateDirectory(path string) error
	Rename(oldPath, newPath string) error
	AppendText(path, text string) error
	AppendEvenNumbers(path string, start int) error
	PrintFirstNBytes(path string) error
	Remove(path string) error
}

// Dispatcher translates commands into operation calls.
type Dispatcher struct {
	ops Operations
}

// New creates a Dispatcher over ops.
func New(ops Operations) *Dispatcher {
	return &Dispatcher{ops: ops}
}

// Run performs the operations cmd selects in the order create, rename,
// append, print, delete. It stops at the first failure and returns it.
func (d *Dispatcher) Run(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if cmd.Create != "" {
		var err error
		if cmd.CreateDir {
			err = d.ops.CreateDirectory(cmd.Create)
		} else {
			err = d.ops.CreateFile(cmd.Create)
		}
		if err != nil {
			return err
		}
	}

	if cmd.RenameFrom != "" {
		if err := d.ops.Rename(cmd.RenameFrom, cmd.RenameTo); err != nil {
			return err
		}
	}

	if cmd.Append != "" {
		if err := d.appendTo(cmd); err != nil {
			return err
		}
	}

	if cmd.Print != "" {
		if err := d.regularFile(cmd.Print); err != nil {
			return err
		}
		if err := d.ops.PrintFirstNBytes(cmd.Print); err != nil {
			return err
		}
	}

	if cmd.Delete != "" {
		if err := d.ops.Remove(cmd.Delete); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) appendTo(cmd Command) error {
	if err := d.regularFile(cmd.Append); err != nil {
		return err
	}
	if cmd.AppendNumbers {
		start, err := cmd.Start()
		if err != nil {
			return err
		}
		return d.ops.AppendEvenNumbers(cmd.Append, start)
	}
	return d.ops.AppendText(cmd.Append, cmd.AppendValue)
}

// regularFile rejects directories for the content operations.
func (d *Dispatcher) regularFile(path string) error {
	isDir, err := d.ops.IsDir(path)
	if err != nil {
		return err
	}
	if isDir {
		return &fs.PathError{Op: "open", Path: path, Err: unix.EISDIR}
	}
	return nil
}

// RunAll runs each command in turn, stopping at the first failure. The
// index of the failing command is returned with the error, or len(cmds) on
// success.
func (d *Dispatcher) RunAll(cmds []Command) (int, error) {
	for i, cmd := range cmds {
		if err := d.Run(cmd); err != nil {
			return i, err
		}
	}
	return len(cmds), nil
}
