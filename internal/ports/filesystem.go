// Package ports defines interfaces (contracts) for external dependencies.
// These enable dependency injection and testability via mock implementations.
package ports

// FileSystem abstracts the raw POSIX calls bfm is built on.
// Production code uses the unixfs adapter; tests use MockFileSystem.
//
// Path-taking methods return *fs.PathError (or *os.LinkError for two-path
// calls) wrapping a syscall.Errno. Descriptor methods return the bare errno so
// callers can test for EAGAIN and wrap it themselves.
type FileSystem interface {
	// Open opens path with the given flags. mode is only consulted when
	// flags include O_CREAT.
	Open(path string, flags int, mode uint32) (fd int, err error)

	// Read performs a single read(2) on fd.
	Read(fd int, p []byte) (int, error)

	// Write performs a single write(2) on fd.
	Write(fd int, p []byte) (int, error)

	// Close closes fd.
	Close(fd int) error

	// OpenDir opens path for raw directory-entry reads.
	OpenDir(path string) (fd int, err error)

	// Getdents fills buf with raw linux_dirent64 records read from fd.
	// A return of 0 means the end of the directory was reached.
	Getdents(fd int, buf []byte) (int, error)

	// Mkdir creates a single directory.
	Mkdir(path string, mode uint32) error

	// Rmdir removes an empty directory.
	Rmdir(path string) error

	// Unlink removes a name that is not a directory.
	Unlink(path string) error

	// Link creates newpath as a hard link to oldpath.
	Link(oldpath, newpath string) error

	// Rename renames (moves) oldpath to newpath.
	Rename(oldpath, newpath string) error

	// IsDir reports whether path names a directory, without following a
	// trailing symlink.
	IsDir(path string) (bool, error)
}
