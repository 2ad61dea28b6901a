// Package dirent reads directories as raw linux_dirent64 records, without
// going through os.ReadDir, and parses them into Entry values.
package dirent

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Record layout of struct linux_dirent64.
const (
	offIno    = 0
	offOff    = 8
	offReclen = 16
	offType   = 18
	offName   = 19

	// HeaderSize is the size of the fixed part of a record.
	HeaderSize = offName
)

// d_type values we distinguish.
const (
	dtUnknown = 0
	dtDir     = 4
	dtReg     = 8
)

// Type is the kind of an entry as reported by the directory listing.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeFile
	TypeDirectory
)

func (t Type) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Entry is one parsed directory record.
type Entry struct {
	Inode        uint64
	NextOffset   int64
	RecordLength uint16
	Type         Type
	Name         string
}

// IsDot reports whether the entry is "." or "..".
func (e Entry) IsDot() bool {
	return e.Name == "." || e.Name == ".."
}

var (
	ErrShortRecord  = errors.New("dirent: truncated record header")
	ErrRecordLength = errors.New("dirent: invalid record length")
	ErrEmptyName    = errors.New("dirent: empty entry name")
)

// Scanner walks the records of one batch returned by getdents64.
//
//	s := dirent.NewScanner(batch)
//	for s.Next() {
//		e := s.Entry()
//	}
//	if err := s.Err(); err != nil { ... }
type Scanner struct {
	buf   []byte
	pos   int
	entry Entry
	err   error
}

// NewScanner returns a Scanner over batch.
func NewScanner(batch []byte) *Scanner {
	return &Scanner{buf: batch}
}

// Next parses the next record. It returns false at the end of the batch or
// on a malformed record, in which case Err reports why.
func (s *Scanner) Next() bool {
	if s.err != nil || s.pos >= len(s.buf) {
		return false
	}
	rest := s.buf[s.pos:]
	if len(rest) < HeaderSize {
		s.err = fmt.Errorf("%w at offset %d", ErrShortRecord, s.pos)
		return false
	}
	reclen := int(binary.NativeEndian.Uint16(rest[offReclen:]))
	// The cursor must strictly advance and stay inside the batch.
	if reclen <= HeaderSize || reclen > len(rest) {
		s.err = fmt.Errorf("%w %d at offset %d", ErrRecordLength, reclen, s.pos)
		return false
	}
	name := rest[offName:reclen]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	if len(name) == 0 {
		s.err = fmt.Errorf("%w at offset %d", ErrEmptyName, s.pos)
		return false
	}

	s.entry = Entry{
		Inode:        binary.NativeEndian.Uint64(rest[offIno:]),
		NextOffset:   int64(binary.NativeEndian.Uint64(rest[offOff:])),
		RecordLength: uint16(reclen),
		Type:         decodeType(rest[offType]),
		Name:         string(name),
	}
	s.pos += reclen
	return true
}

// Entry returns the record parsed by the last successful call to Next.
func (s *Scanner) Entry() Entry {
	return s.entry
}

// Err returns the first parse error, if any.
func (s *Scanner) Err() error {
	return s.err
}

func decodeType(b byte) Type {
	switch b {
	case dtDir:
		return TypeDirectory
	case dtUnknown:
		return TypeUnknown
	default:
		// Symlinks, fifos, sockets and devices are all removed with unlink.
		return TypeFile
	}
}

func encodeType(t Type) byte {
	switch t {
	case TypeDirectory:
		return dtDir
	case TypeFile:
		return dtReg
	default:
		return dtUnknown
	}
}

// RecordSize is the aligned size of a record holding name.
func RecordSize(name string) int {
	n := HeaderSize + len(name) + 1
	return (n + 7) &^ 7
}

// AppendRecord encodes e as a linux_dirent64 record and appends it to buf.
// RecordLength is computed from the name and ignored on input.
func AppendRecord(buf []byte, e Entry) []byte {
	size := RecordSize(e.Name)
	rec := make([]byte, size)
	binary.NativeEndian.PutUint64(rec[offIno:], e.Inode)
	binary.NativeEndian.PutUint64(rec[offOff:], uint64(e.NextOffset))
	binary.NativeEndian.PutUint16(rec[offReclen:], uint16(size))
	rec[offType] = encodeType(e.Type)
	copy(rec[offName:], e.Name)
	return append(buf, rec...)
}
