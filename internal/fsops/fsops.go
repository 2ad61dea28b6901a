// Package fsops implements the file manager's operations and records the
// outcome of each one through a Logger.
package fsops

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/mcdonaldj/bfm/internal/errcode"
	"github.com/mcdonaldj/bfm/internal/ports"
	"github.com/mcdonaldj/bfm/internal/remove"
	"github.com/mcdonaldj/bfm/internal/rio"
)

// Even-number append bounds.
const (
	minEvenStart = 50
	maxEvenValue = 199
	maxEvenCount = 25
)

// Limits holds the sizes and modes the operations use.
type Limits struct {
	AppendLimit  int
	ReadBytes    int
	CreateMode   uint32
	DirentBuffer int
}

// DefaultLimits are the tool's historical limits.
func DefaultLimits() Limits {
	return Limits{
		AppendLimit:  50,
		ReadBytes:    50,
		CreateMode:   0o700,
		DirentBuffer: 1024,
	}
}

// Service provides file operations with injected dependencies.
type Service struct {
	fs      ports.FileSystem
	io      *rio.IO
	deleter *remove.Deleter
	log     ports.Logger
	limits  Limits
}

// NewService creates a new operations service.
func NewService(fsys ports.FileSystem, log ports.Logger, limits Limits) *Service {
	return &Service{
		fs:      fsys,
		io:      rio.New(fsys),
		deleter: remove.New(fsys, limits.DirentBuffer),
		log:     log,
		limits:  limits,
	}
}

// record logs the outcome of action on path and returns err. When the
// action succeeded but logging failed, the logging failure is returned.
func (s *Service) record(err error, action, path string) error {
	if err != nil {
		_ = s.log.Log(ports.LevelError, fmt.Sprintf("%s failed: %s: %s", action, path, errcode.Describe(err)))
		return err
	}
	if logErr := s.log.Log(ports.LevelInfo, fmt.Sprintf("%s: %s", action, path)); logErr != nil {
		return fmt.Errorf("logging %s: %w", action, logErr)
	}
	return nil
}

// IsDir reports whether path is a directory.
func (s *Service) IsDir(path string) (bool, error) {
	isDir, err := s.fs.IsDir(path)
	if err != nil {
		return false, s.record(err, "check path", path)
	}
	return isDir, nil
}

// CreateFile creates (or truncates) a regular file.
func (s *Service) CreateFile(path string) error {
	fd, err := s.fs.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, s.limits.CreateMode)
	if err == nil {
		if cerr := s.fs.Close(fd); cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}
	return s.record(err, "create file", path)
}

// CreateDirectory creates a single directory.
func (s *Service) CreateDirectory(path string) error {
	return s.record(s.fs.Mkdir(path, s.limits.CreateMode), "create directory", path)
}

// RenameFile gives the file a new name with link and unlink. If the unlink
// fails both names are left in place.
func (s *Service) RenameFile(oldPath, newPath string) error {
	err := s.fs.Link(oldPath, newPath)
	if err == nil {
		err = s.fs.Unlink(oldPath)
	}
	return s.record(err, "rename file", oldPath+" -> "+newPath)
}

// RenameDirectory renames a directory with rename(2).
func (s *Service) RenameDirectory(oldPath, newPath string) error {
	return s.record(s.fs.Rename(oldPath, newPath), "rename directory", oldPath+" -> "+newPath)
}

// Rename renames oldPath, choosing the file or directory variant.
func (s *Service) Rename(oldPath, newPath string) error {
	isDir, err := s.IsDir(oldPath)
	if err != nil {
		return err
	}
	if isDir {
		return s.RenameDirectory(oldPath, newPath)
	}
	return s.RenameFile(oldPath, newPath)
}

// AppendText appends at most AppendLimit bytes of text to the file.
func (s *Service) AppendText(path, text string) error {
	_, err := s.io.Perform(rio.Request{
		Kind:  rio.Write,
		Path:  path,
		Buf:   []byte(text),
		Max:   s.limits.AppendLimit,
		Flags: unix.O_WRONLY | unix.O_APPEND,
	})
	return s.record(err, "append text", path)
}

// EvenNumbers returns the 16-bit values AppendEvenNumbers writes for start.
// Starts below 50 produce nothing; odd starts are rounded up; the sequence
// holds at most 25 values and stops before exceeding 199.
func EvenNumbers(start int) []uint16 {
	if start < minEvenStart {
		return nil
	}
	if start%2 == 1 {
		start++
	}
	var nums []uint16
	for n := start; n <= maxEvenValue && len(nums) < maxEvenCount; n += 2 {
		nums = append(nums, uint16(n))
	}
	return nums
}

// AppendEvenNumbers appends the EvenNumbers sequence for start to the file
// as native-endian 16-bit integers. Nothing is written for starts below 50.
func (s *Service) AppendEvenNumbers(path string, start int) error {
	nums := EvenNumbers(start)
	if start < minEvenStart {
		return s.record(nil, fmt.Sprintf("append even numbers from %d (nothing to write)", start), path)
	}
	buf := make([]byte, 0, 2*len(nums))
	for _, n := range nums {
		buf = binary.NativeEndian.AppendUint16(buf, n)
	}
	_, err := s.io.Perform(rio.Request{
		Kind:  rio.Write,
		Path:  path,
		Buf:   buf,
		Max:   len(buf),
		Flags: unix.O_WRONLY | unix.O_APPEND,
	})
	return s.record(err, fmt.Sprintf("append even numbers from %d", start), path)
}

// PrintFirstNBytes reads up to ReadBytes bytes from the file and echoes what
// was read to standard output.
func (s *Service) PrintFirstNBytes(path string) error {
	buf := make([]byte, s.limits.ReadBytes)
	n, err := s.io.Perform(rio.Request{
		Kind:  rio.Read,
		Path:  path,
		Buf:   buf,
		Max:   len(buf),
		Flags: unix.O_RDONLY,
	})
	if err == nil {
		_, err = s.io.Perform(rio.Request{
			Kind: rio.Write,
			Path: rio.Stdout,
			Buf:  buf[:n],
			Max:  n,
		})
	}
	return s.record(err, "print first bytes", path)
}

// RemoveFile unlinks a file.
func (s *Service) RemoveFile(path string) error {
	return s.record(s.fs.Unlink(path), "delete file", path)
}

// RemoveDirectory deletes a directory and everything below it.
func (s *Service) RemoveDirectory(path string) error {
	return s.record(s.deleter.RemoveDirectory(path), "delete directory", path)
}

// Remove deletes path, recursing into directories.
func (s *Service) Remove(path string) error {
	isDir, err := s.IsDir(path)
	if err != nil {
		return err
	}
	if isDir {
		return s.RemoveDirectory(path)
	}
	return s.RemoveFile(path)
}
