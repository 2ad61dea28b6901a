package dirent

import (
	"fmt"
	"io/fs"

	"github.com/mcdonaldj/bfm/internal/ports"
)

// DefaultBufferSize matches the batch size the tool has always used.
const DefaultBufferSize = 1024

// Dir is an open directory handle read in raw batches.
type Dir struct {
	fs   ports.FileSystem
	fd   int
	path string
	buf  []byte
}

// Open opens path for raw reading with a batch buffer of bufSize bytes.
// bufSize is raised to DefaultBufferSize when it is too small to hold a
// record.
func Open(fsys ports.FileSystem, path string, bufSize int) (*Dir, error) {
	if bufSize < RecordSize("x") {
		bufSize = DefaultBufferSize
	}
	fd, err := fsys.OpenDir(path)
	if err != nil {
		return nil, err
	}
	return &Dir{
		fs:   fsys,
		fd:   fd,
		path: path,
		buf:  make([]byte, bufSize),
	}, nil
}

// ReadBatch returns the next batch of raw records. An empty batch means the
// end of the directory. The returned slice is reused by the next call.
func (d *Dir) ReadBatch() ([]byte, error) {
	n, err := d.fs.Getdents(d.fd, d.buf)
	if err != nil {
		return nil, &fs.PathError{Op: "getdents", Path: d.path, Err: err}
	}
	if n < 0 {
		n = 0
	}
	return d.buf[:n], nil
}

// Each calls fn for every entry in the directory, in listing order,
// skipping "." and "..". It stops at the first error returned by fn.
func (d *Dir) Each(fn func(Entry) error) error {
	for {
		batch, err := d.ReadBatch()
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		s := NewScanner(batch)
		for s.Next() {
			e := s.Entry()
			if e.IsDot() {
				continue
			}
			if err := fn(e); err != nil {
				return err
			}
		}
		if err := s.Err(); err != nil {
			return fmt.Errorf("reading %s: %w", d.path, err)
		}
	}
}

// Close releases the directory handle.
func (d *Dir) Close() error {
	if err := d.fs.Close(d.fd); err != nil {
		return &fs.PathError{Op: "close", Path: d.path, Err: err}
	}
	return nil
}
