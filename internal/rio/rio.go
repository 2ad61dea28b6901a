// Package rio performs single read or write calls against non-blocking
// descriptors, retrying while the kernel reports that the call would block.
package rio

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"

	"github.com/mcdonaldj/bfm/internal/ports"
)

// Stdout is the path that names the process's standard output. It is never
// opened or closed.
const Stdout = "stdout"

// Kind selects the call Perform issues.
type Kind int

const (
	Read Kind = iota
	Write
)

func (k Kind) String() string {
	if k == Write {
		return "write"
	}
	return "read"
}

// Request describes one open-operate-close cycle.
type Request struct {
	Kind Kind
	Path string
	Buf  []byte
	// Max caps the number of bytes transferred. Values outside
	// [0, len(Buf)] use all of Buf.
	Max   int
	Flags int
	// Mode is applied only when Flags include O_CREAT.
	Mode uint32
}

// IO issues retrying read and write calls through a FileSystem.
type IO struct {
	fs ports.FileSystem
}

// New creates an IO backed by fsys.
func New(fsys ports.FileSystem) *IO {
	return &IO{fs: fsys}
}

// Perform opens req.Path, issues exactly one read or write of up to req.Max
// bytes and closes the descriptor again.
//
// While the call fails with EAGAIN it is reissued immediately. There is no
// backoff and no timeout: Perform returns only when the descriptor becomes
// ready or the call fails for another reason.
func (io *IO) Perform(req Request) (int, error) {
	buf := req.Buf
	if req.Max >= 0 && req.Max < len(buf) {
		buf = buf[:req.Max]
	}

	stdout := req.Path == Stdout
	fd := unix.Stdout
	if !stdout {
		var mode uint32
		if req.Flags&unix.O_CREAT != 0 {
			mode = req.Mode
		}
		var err error
		fd, err = io.fs.Open(req.Path, req.Flags|unix.O_NONBLOCK, mode)
		if err != nil {
			return 0, err
		}
	}

	call := io.fs.Read
	if req.Kind == Write {
		call = io.fs.Write
	}

	n, err := call(fd, buf)
	for errors.Is(err, unix.EAGAIN) {
		n, err = call(fd, buf)
	}
	if err != nil {
		if !stdout {
			// The close error is dropped; the call's failure is what matters.
			_ = io.fs.Close(fd)
		}
		return 0, &fs.PathError{Op: req.Kind.String(), Path: req.Path, Err: err}
	}

	if stdout {
		return n, nil
	}
	if err := io.fs.Close(fd); err != nil {
		return n, &fs.PathError{Op: "close", Path: req.Path, Err: err}
	}
	return n, nil
}
