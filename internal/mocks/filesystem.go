// Package mocks provides mock implementations for testing.
package mocks

import (
	"bytes"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/mcdonaldj/bfm/internal/dirent"
	"github.com/mcdonaldj/bfm/internal/ports"
)

// MockFileSystem implements ports.FileSystem as an in-memory tree.
type MockFileSystem struct {
	// Files maps paths to file contents
	Files map[string][]byte
	// Dirs records the directories that exist
	Dirs map[string]bool
	// Types overrides the entry type Getdents reports for a path
	Types map[string]dirent.Type
	// Order overrides the names, including "." and "..", that Getdents
	// reports for a directory, in the order given
	Order map[string][]string
	// Errors maps "op path" keys (e.g. "rmdir /tmp/a") to injected errors
	Errors map[string]error
	// WouldBlock maps paths to the number of reads or writes that fail
	// with EAGAIN before one succeeds
	WouldBlock map[string]int
	// Attempts counts read and write calls per path
	Attempts map[string]int
	// Stdout collects writes to descriptor 1
	Stdout bytes.Buffer
	// Calls records mutating calls in order, keyed like Errors
	Calls []string
	// BeforeCall, when set, runs before every operation with its key
	BeforeCall func(call string)

	open   map[int]*openFile
	nextFD int
}

type openFile struct {
	path    string
	flags   int
	offset  int
	dir     bool
	listing []byte
	listed  bool
	blocks  int
}

// NewMockFileSystem creates a new mock filesystem containing only "/".
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:      make(map[string][]byte),
		Dirs:       map[string]bool{"/": true},
		Types:      make(map[string]dirent.Type),
		Order:      make(map[string][]string),
		Errors:     make(map[string]error),
		WouldBlock: make(map[string]int),
		Attempts:   make(map[string]int),
		open:       make(map[int]*openFile),
		nextFD:     3,
	}
}

// AddDir creates path and any missing parents.
func (m *MockFileSystem) AddDir(path string) {
	path = filepath.Clean(path)
	for p := path; p != "/" && p != "."; p = filepath.Dir(p) {
		m.Dirs[p] = true
	}
}

// AddFile creates a file with the given contents, adding parent directories.
func (m *MockFileSystem) AddFile(path string, content []byte) {
	path = filepath.Clean(path)
	m.AddDir(filepath.Dir(path))
	m.Files[path] = content
}

// Exists reports whether path is a file or directory.
func (m *MockFileSystem) Exists(path string) bool {
	path = filepath.Clean(path)
	_, isFile := m.Files[path]
	return isFile || m.Dirs[path]
}

// OpenCount returns the number of descriptors still open.
func (m *MockFileSystem) OpenCount() int {
	return len(m.open)
}

func (m *MockFileSystem) before(op, path string) error {
	key := op + " " + path
	if m.BeforeCall != nil {
		m.BeforeCall(key)
	}
	if err, ok := m.Errors[key]; ok {
		return err
	}
	return nil
}

func (m *MockFileSystem) record(op, path string) {
	m.Calls = append(m.Calls, op+" "+path)
}

func (m *MockFileSystem) dirExists(path string) bool {
	return path == "/" || path == "." || m.Dirs[path]
}

func (m *MockFileSystem) children(path string) []string {
	var names []string
	for p := range m.Files {
		if filepath.Dir(p) == path {
			names = append(names, filepath.Base(p))
		}
	}
	for p := range m.Dirs {
		if p != path && filepath.Dir(p) == path {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names
}

func pathErr(op, path string, errno unix.Errno) error {
	return &fs.PathError{Op: op, Path: path, Err: errno}
}

// Open opens path with the given flags.
func (m *MockFileSystem) Open(path string, flags int, mode uint32) (int, error) {
	path = filepath.Clean(path)
	if err := m.before("open", path); err != nil {
		return -1, err
	}
	if m.Dirs[path] {
		return -1, pathErr("open", path, unix.EISDIR)
	}
	if _, ok := m.Files[path]; ok {
		if flags&unix.O_CREAT != 0 && flags&unix.O_EXCL != 0 {
			return -1, pathErr("open", path, unix.EEXIST)
		}
		if flags&unix.O_TRUNC != 0 {
			m.Files[path] = []byte{}
		}
	} else {
		if flags&unix.O_CREAT == 0 {
			return -1, pathErr("open", path, unix.ENOENT)
		}
		if !m.dirExists(filepath.Dir(path)) {
			return -1, pathErr("open", path, unix.ENOENT)
		}
		m.Files[path] = []byte{}
		m.record("create", path)
	}

	fd := m.nextFD
	m.nextFD++
	m.open[fd] = &openFile{path: path, flags: flags, blocks: m.WouldBlock[path]}
	return fd, nil
}

// Read performs a single read on fd.
func (m *MockFileSystem) Read(fd int, p []byte) (int, error) {
	f, ok := m.open[fd]
	if !ok {
		return 0, unix.EBADF
	}
	m.Attempts[f.path]++
	if f.blocks > 0 {
		f.blocks--
		return 0, unix.EAGAIN
	}
	if f.dir {
		return 0, unix.EISDIR
	}
	if f.flags&unix.O_ACCMODE == unix.O_WRONLY {
		return 0, unix.EBADF
	}
	if err := m.before("read", f.path); err != nil {
		return 0, err
	}
	content := m.Files[f.path]
	if f.offset >= len(content) {
		return 0, nil
	}
	n := copy(p, content[f.offset:])
	f.offset += n
	return n, nil
}

// Write performs a single write on fd. Descriptor 1 writes to Stdout.
func (m *MockFileSystem) Write(fd int, p []byte) (int, error) {
	if fd == unix.Stdout {
		return m.Stdout.Write(p)
	}
	f, ok := m.open[fd]
	if !ok {
		return 0, unix.EBADF
	}
	m.Attempts[f.path]++
	if f.blocks > 0 {
		f.blocks--
		return 0, unix.EAGAIN
	}
	if f.flags&unix.O_ACCMODE == unix.O_RDONLY {
		return 0, unix.EBADF
	}
	if err := m.before("write", f.path); err != nil {
		return 0, err
	}
	content := m.Files[f.path]
	if f.flags&unix.O_APPEND != 0 {
		content = append(content, p...)
	} else {
		end := f.offset + len(p)
		if end > len(content) {
			content = append(content, make([]byte, end-len(content))...)
		}
		copy(content[f.offset:], p)
		f.offset = end
	}
	m.Files[f.path] = content
	m.record("write", f.path)
	return len(p), nil
}

// Close closes fd.
func (m *MockFileSystem) Close(fd int) error {
	f, ok := m.open[fd]
	if !ok {
		return unix.EBADF
	}
	delete(m.open, fd)
	return m.before("close", f.path)
}

// OpenDir opens path for raw directory reads.
func (m *MockFileSystem) OpenDir(path string) (int, error) {
	path = filepath.Clean(path)
	if err := m.before("opendir", path); err != nil {
		return -1, err
	}
	if !m.dirExists(path) {
		if _, ok := m.Files[path]; ok {
			return -1, pathErr("open", path, unix.ENOTDIR)
		}
		return -1, pathErr("open", path, unix.ENOENT)
	}
	fd := m.nextFD
	m.nextFD++
	m.open[fd] = &openFile{path: path, dir: true}
	return fd, nil
}

// Getdents returns whole linux_dirent64 records for the directory open on
// fd. The listing is captured on the first call, like a kernel cursor.
func (m *MockFileSystem) Getdents(fd int, buf []byte) (int, error) {
	f, ok := m.open[fd]
	if !ok {
		return 0, unix.EBADF
	}
	if !f.dir {
		return 0, unix.ENOTDIR
	}
	if err := m.before("getdents", f.path); err != nil {
		return 0, err
	}
	if !f.listed {
		f.listing = m.encodeListing(f.path)
		f.listed = true
	}

	rest := f.listing[f.offset:]
	n := 0
	for n < len(rest) {
		reclen := int(binary.NativeEndian.Uint16(rest[n+16:]))
		if n+reclen > len(buf) {
			break
		}
		n += reclen
	}
	if n == 0 && len(rest) > 0 {
		return 0, unix.EINVAL
	}
	copy(buf, rest[:n])
	f.offset += n
	return n, nil
}

func (m *MockFileSystem) encodeListing(path string) []byte {
	var buf []byte
	names, ok := m.Order[path]
	if !ok {
		names = append([]string{".", ".."}, m.children(path)...)
	}
	for i, name := range names {
		typ := dirent.TypeDirectory
		if name != "." && name != ".." {
			child := filepath.Join(path, name)
			if !m.Dirs[child] {
				typ = dirent.TypeFile
			}
			if t, ok := m.Types[child]; ok {
				typ = t
			}
		}
		buf = dirent.AppendRecord(buf, dirent.Entry{
			Inode:      uint64(i + 1),
			NextOffset: int64(i + 1),
			Type:       typ,
			Name:       name,
		})
	}
	return buf
}

// Mkdir creates a single directory.
func (m *MockFileSystem) Mkdir(path string, mode uint32) error {
	path = filepath.Clean(path)
	if err := m.before("mkdir", path); err != nil {
		return err
	}
	if m.Exists(path) {
		return pathErr("mkdir", path, unix.EEXIST)
	}
	if !m.dirExists(filepath.Dir(path)) {
		return pathErr("mkdir", path, unix.ENOENT)
	}
	m.Dirs[path] = true
	m.record("mkdir", path)
	return nil
}

// Rmdir removes an empty directory.
func (m *MockFileSystem) Rmdir(path string) error {
	path = filepath.Clean(path)
	if err := m.before("rmdir", path); err != nil {
		return err
	}
	if _, ok := m.Files[path]; ok {
		return pathErr("rmdir", path, unix.ENOTDIR)
	}
	if !m.Dirs[path] {
		return pathErr("rmdir", path, unix.ENOENT)
	}
	if len(m.children(path)) > 0 {
		return pathErr("rmdir", path, unix.ENOTEMPTY)
	}
	delete(m.Dirs, path)
	m.record("rmdir", path)
	return nil
}

// Unlink removes a file.
func (m *MockFileSystem) Unlink(path string) error {
	path = filepath.Clean(path)
	if err := m.before("unlink", path); err != nil {
		return err
	}
	if m.Dirs[path] {
		return pathErr("unlink", path, unix.EISDIR)
	}
	if _, ok := m.Files[path]; !ok {
		return pathErr("unlink", path, unix.ENOENT)
	}
	delete(m.Files, path)
	m.record("unlink", path)
	return nil
}

// Link creates newpath as another name for the file at oldpath.
func (m *MockFileSystem) Link(oldpath, newpath string) error {
	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	if err := m.before("link", oldpath); err != nil {
		return err
	}
	linkErr := func(errno unix.Errno) error {
		return &os.LinkError{Op: "link", Old: oldpath, New: newpath, Err: errno}
	}
	if m.Dirs[oldpath] {
		return linkErr(unix.EPERM)
	}
	content, ok := m.Files[oldpath]
	if !ok {
		return linkErr(unix.ENOENT)
	}
	if m.Exists(newpath) {
		return linkErr(unix.EEXIST)
	}
	if !m.dirExists(filepath.Dir(newpath)) {
		return linkErr(unix.ENOENT)
	}
	m.Files[newpath] = content
	m.record("link", oldpath)
	return nil
}

// Rename moves oldpath, and everything below it, to newpath.
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	if err := m.before("rename", oldpath); err != nil {
		return err
	}
	renameErr := func(errno unix.Errno) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errno}
	}
	if !m.Exists(oldpath) {
		return renameErr(unix.ENOENT)
	}
	if !m.dirExists(filepath.Dir(newpath)) {
		return renameErr(unix.ENOENT)
	}
	if m.Dirs[newpath] && len(m.children(newpath)) > 0 {
		return renameErr(unix.ENOTEMPTY)
	}

	move := func(p string) (string, bool) {
		if p == oldpath {
			return newpath, true
		}
		if strings.HasPrefix(p, oldpath+"/") {
			return newpath + strings.TrimPrefix(p, oldpath), true
		}
		return "", false
	}
	files := make(map[string][]byte, len(m.Files))
	for p, content := range m.Files {
		if np, ok := move(p); ok {
			p = np
		}
		files[p] = content
	}
	dirs := make(map[string]bool, len(m.Dirs))
	for p := range m.Dirs {
		if np, ok := move(p); ok {
			p = np
		}
		dirs[p] = true
	}
	m.Files, m.Dirs = files, dirs
	m.record("rename", oldpath)
	return nil
}

// IsDir reports whether path is a directory.
func (m *MockFileSystem) IsDir(path string) (bool, error) {
	path = filepath.Clean(path)
	if err := m.before("lstat", path); err != nil {
		return false, err
	}
	if m.dirExists(path) {
		return true, nil
	}
	if _, ok := m.Files[path]; ok {
		return false, nil
	}
	return false, pathErr("lstat", path, unix.ENOENT)
}

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
