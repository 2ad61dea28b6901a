// Package errcode maps OS-level failures onto the small closed set of result
// codes that bfm reports, and turns them into descriptions and exit statuses.
package errcode

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// Code is the outcome of a filesystem mutation.
type Code int

const (
	OK Code = iota
	NotFound
	PermissionDenied
	AlreadyExists
	NotADirectory
	DirectoryNotEmpty
	WouldBlock // internal; retried, never surfaced
	Other
)

var descriptions = map[Code]string{
	OK:                "success",
	NotFound:          "no such file or directory",
	PermissionDenied:  "permission denied",
	AlreadyExists:     "file exists",
	NotADirectory:     "not a directory",
	DirectoryNotEmpty: "directory not empty",
	WouldBlock:        "resource temporarily unavailable",
	Other:             "unknown error",
}

// String returns the fixed description of the code. Codes outside the
// enumeration describe themselves as "unknown error".
func (c Code) String() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return descriptions[Other]
}

// FromErrno classifies an errno value.
func FromErrno(e syscall.Errno) Code {
	switch e {
	case 0:
		return OK
	case unix.ENOENT:
		return NotFound
	case unix.EACCES, unix.EPERM:
		return PermissionDenied
	case unix.EEXIST:
		return AlreadyExists
	case unix.ENOTDIR:
		return NotADirectory
	case unix.ENOTEMPTY:
		return DirectoryNotEmpty
	case unix.EAGAIN:
		return WouldBlock
	default:
		return Other
	}
}

// Of classifies err. A nil error is OK; errors that do not wrap an errno are
// Other.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return FromErrno(errno)
	}
	return Other
}

// Describe returns the human-readable text for err, using the platform's
// errno description when one is available.
func Describe(err error) string {
	if err == nil {
		return OK.String()
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if s := errno.Error(); s != "" {
			return s
		}
		return FromErrno(errno).String()
	}
	if s := err.Error(); s != "" {
		return s
	}
	return Other.String()
}

// ExitStatus converts err into a process exit status: 0 for success, the
// errno value for OS failures and 1 for everything else.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 && int(errno) < 256 {
		return int(errno)
	}
	return 1
}
