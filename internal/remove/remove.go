// Package remove deletes files and whole directory trees, reading each
// directory through raw getdents batches.
package remove

import (
	"errors"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/mcdonaldj/bfm/internal/dirent"
	"github.com/mcdonaldj/bfm/internal/ports"
)

// Deleter removes paths through a FileSystem.
type Deleter struct {
	fs      ports.FileSystem
	bufSize int
}

// New creates a Deleter that reads directories in batches of bufSize bytes.
func New(fsys ports.FileSystem, bufSize int) *Deleter {
	return &Deleter{fs: fsys, bufSize: bufSize}
}

// RemoveDirectory removes the directory at path together with everything
// below it.
//
// An empty directory is removed directly. When rmdir reports ENOTEMPTY the
// children are deleted first (directories recursively, post-order) and the
// removal is attempted once more. That second failure, if any, is returned
// as is. A failure while deleting a child aborts the whole operation and
// leaves the directory partially emptied.
func (d *Deleter) RemoveDirectory(path string) error {
	err := d.fs.Rmdir(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.ENOTEMPTY) {
		return err
	}
	if err := d.emptyChildren(path); err != nil {
		return err
	}
	return d.fs.Rmdir(path)
}

func (d *Deleter) emptyChildren(path string) error {
	dir, err := dirent.Open(d.fs, path, d.bufSize)
	if err != nil {
		return err
	}
	defer dir.Close()

	return dir.Each(func(e dirent.Entry) error {
		child := filepath.Join(path, e.Name)

		isDir := e.Type == dirent.TypeDirectory
		if e.Type == dirent.TypeUnknown {
			// The filesystem did not report a type; ask for it.
			var err error
			if isDir, err = d.fs.IsDir(child); err != nil {
				return err
			}
		}

		if isDir {
			return d.RemoveDirectory(child)
		}
		return d.fs.Unlink(child)
	})
}
