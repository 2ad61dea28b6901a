//go:build linux

// Package unixfs provides a filesystem adapter issuing raw system calls
// through golang.org/x/sys/unix.
package unixfs

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"github.com/mcdonaldj/bfm/internal/ports"
)

// UnixFileSystem implements ports.FileSystem with direct system calls.
type UnixFileSystem struct{}

// New creates a new UnixFileSystem adapter.
func New() *UnixFileSystem {
	return &UnixFileSystem{}
}

func pathErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

func linkErr(op, oldpath, newpath string, err error) error {
	if err == nil {
		return nil
	}
	return &os.LinkError{Op: op, Old: oldpath, New: newpath, Err: err}
}

// Open opens path with the given flags. O_CLOEXEC is always added.
func (u *UnixFileSystem) Open(path string, flags int, mode uint32) (int, error) {
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, mode)
	if err != nil {
		return -1, pathErr("open", path, err)
	}
	return fd, nil
}

// Read performs a single read(2).
func (u *UnixFileSystem) Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

// Write performs a single write(2).
func (u *UnixFileSystem) Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

// Close closes fd.
func (u *UnixFileSystem) Close(fd int) error {
	return unix.Close(fd)
}

// OpenDir opens path read-only with O_DIRECTORY.
func (u *UnixFileSystem) OpenDir(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, pathErr("open", path, err)
	}
	return fd, nil
}

// Getdents reads raw linux_dirent64 records into buf.
func (u *UnixFileSystem) Getdents(fd int, buf []byte) (int, error) {
	return unix.Getdents(fd, buf)
}

// Mkdir creates a single directory.
func (u *UnixFileSystem) Mkdir(path string, mode uint32) error {
	return pathErr("mkdir", path, unix.Mkdir(path, mode))
}

// Rmdir removes an empty directory.
func (u *UnixFileSystem) Rmdir(path string) error {
	return pathErr("rmdir", path, unix.Rmdir(path))
}

// Unlink removes a non-directory name.
func (u *UnixFileSystem) Unlink(path string) error {
	return pathErr("unlink", path, unix.Unlink(path))
}

// Link creates a hard link.
func (u *UnixFileSystem) Link(oldpath, newpath string) error {
	return linkErr("link", oldpath, newpath, unix.Link(oldpath, newpath))
}

// Rename renames (moves) oldpath to newpath.
func (u *UnixFileSystem) Rename(oldpath, newpath string) error {
	return linkErr("rename", oldpath, newpath, unix.Rename(oldpath, newpath))
}

// IsDir lstats path and reports whether it is a directory.
func (u *UnixFileSystem) IsDir(path string) (bool, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return false, pathErr("lstat", path, err)
	}
	return st.Mode&unix.S_IFMT == unix.S_IFDIR, nil
}

// Compile-time check that UnixFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*UnixFileSystem)(nil)
