package dirent_test

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/mcdonaldj/bfm/internal/dirent"
	"github.com/mcdonaldj/bfm/internal/mocks"
)

func encode(entries ...dirent.Entry) []byte {
	var buf []byte
	for _, e := range entries {
		buf = dirent.AppendRecord(buf, e)
	}
	return buf
}

func TestScannerParsesRecords(t *testing.T) {
	batch := encode(
		dirent.Entry{Inode: 10, NextOffset: 1, Type: dirent.TypeDirectory, Name: "."},
		dirent.Entry{Inode: 2, NextOffset: 2, Type: dirent.TypeDirectory, Name: ".."},
		dirent.Entry{Inode: 11, NextOffset: 3, Type: dirent.TypeFile, Name: "x.txt"},
		dirent.Entry{Inode: 12, NextOffset: 4, Type: dirent.TypeUnknown, Name: "a-much-longer-entry-name"},
	)

	s := dirent.NewScanner(batch)
	var got []dirent.Entry
	for s.Next() {
		got = append(got, s.Entry())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Scanner error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("parsed %d entries, expected 4", len(got))
	}

	x := got[2]
	if x.Name != "x.txt" || x.Inode != 11 || x.NextOffset != 3 || x.Type != dirent.TypeFile {
		t.Errorf("unexpected entry: %+v", x)
	}
	if int(x.RecordLength) != dirent.RecordSize("x.txt") {
		t.Errorf("RecordLength = %d, expected %d", x.RecordLength, dirent.RecordSize("x.txt"))
	}
	if got[3].Type != dirent.TypeUnknown {
		t.Errorf("Type = %v, expected unknown", got[3].Type)
	}
	if !got[0].IsDot() || !got[1].IsDot() || x.IsDot() {
		t.Error("IsDot misclassified entries")
	}

	total := 0
	for _, e := range got {
		total += int(e.RecordLength)
	}
	if total != len(batch) {
		t.Errorf("record lengths sum to %d, batch is %d bytes", total, len(batch))
	}
}

func TestScannerEmptyBatch(t *testing.T) {
	s := dirent.NewScanner(nil)
	if s.Next() {
		t.Error("Next on empty batch should return false")
	}
	if s.Err() != nil {
		t.Errorf("unexpected error: %v", s.Err())
	}
}

func TestScannerRejectsMalformedRecords(t *testing.T) {
	valid := encode(dirent.Entry{Inode: 1, Type: dirent.TypeFile, Name: "file"})

	zeroLen := append([]byte(nil), valid...)
	binary.NativeEndian.PutUint16(zeroLen[16:], 0)

	tooLong := append([]byte(nil), valid...)
	binary.NativeEndian.PutUint16(tooLong[16:], uint16(len(valid)+8))

	headerOnly := append([]byte(nil), valid...)
	binary.NativeEndian.PutUint16(headerOnly[16:], dirent.HeaderSize)

	emptyName := append([]byte(nil), valid...)
	for i := dirent.HeaderSize; i < len(emptyName); i++ {
		emptyName[i] = 0
	}

	tests := []struct {
		name     string
		batch    []byte
		expected error
	}{
		{"zero record length", zeroLen, dirent.ErrRecordLength},
		{"record past end of batch", tooLong, dirent.ErrRecordLength},
		{"record with no name bytes", headerOnly, dirent.ErrRecordLength},
		{"truncated header", valid[:10], dirent.ErrShortRecord},
		{"empty name", emptyName, dirent.ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := dirent.NewScanner(tt.batch)
			for s.Next() {
			}
			if !errors.Is(s.Err(), tt.expected) {
				t.Errorf("Err() = %v, expected %v", s.Err(), tt.expected)
			}
		})
	}
}

func TestScannerStopsAfterError(t *testing.T) {
	batch := encode(dirent.Entry{Inode: 1, Type: dirent.TypeFile, Name: "ok"})
	batch = append(batch, 1, 2, 3)

	s := dirent.NewScanner(batch)
	if !s.Next() {
		t.Fatal("first record should parse")
	}
	if s.Next() {
		t.Fatal("trailing garbage should not parse")
	}
	if s.Next() {
		t.Error("Next should keep returning false after an error")
	}
}

// list collects every entry Each yields for path.
func list(t *testing.T, fsys *mocks.MockFileSystem, path string, bufSize int) []dirent.Entry {
	t.Helper()
	d, err := dirent.Open(fsys, path, bufSize)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	var entries []dirent.Entry
	if err := d.Each(func(e dirent.Entry) error {
		entries = append(entries, e)
		return nil
	}); err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	return entries
}

func TestEachSkipsDotEntries(t *testing.T) {
	mockFS := mocks.NewMockFileSystem()
	mockFS.AddFile("/d/b.txt", nil)
	mockFS.AddFile("/d/a.txt", nil)
	mockFS.AddDir("/d/sub")

	entries := list(t, mockFS, "/d", 0)
	if len(entries) != 3 {
		t.Fatalf("Each returned %d entries, expected 3: %+v", len(entries), entries)
	}
	for _, e := range entries {
		if e.IsDot() {
			t.Errorf("Each returned dot entry %q", e.Name)
		}
	}
	if entries[2].Name != "sub" || entries[2].Type != dirent.TypeDirectory {
		t.Errorf("unexpected last entry: %+v", entries[2])
	}
	if mockFS.OpenCount() != 0 {
		t.Errorf("%d descriptors left open", mockFS.OpenCount())
	}
}

func TestEachSkipsDotEntriesAnywhere(t *testing.T) {
	for _, bufSize := range []int{0, 32} {
		t.Run(fmt.Sprintf("buffer %d", bufSize), func(t *testing.T) {
			mockFS := mocks.NewMockFileSystem()
			mockFS.AddFile("/d/a", nil)
			mockFS.AddFile("/d/b", nil)
			mockFS.Order["/d"] = []string{"a", ".", "b", ".."}

			var names []string
			for _, e := range list(t, mockFS, "/d", bufSize) {
				names = append(names, e.Name)
			}
			if len(names) != 2 || names[0] != "a" || names[1] != "b" {
				t.Errorf("Each returned %v, expected [a b]", names)
			}
		})
	}
}

func TestEachAcrossSmallBatches(t *testing.T) {
	mockFS := mocks.NewMockFileSystem()
	names := []string{"aa", "bb", "cc", "dd", "ee", "ff"}
	for _, n := range names {
		mockFS.AddFile("/d/"+n, nil)
	}

	// Room for exactly one record per batch.
	d, err := dirent.Open(mockFS, "/d", dirent.RecordSize("aa"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	var seen []string
	if err := d.Each(func(e dirent.Entry) error {
		seen = append(seen, e.Name)
		return nil
	}); err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	if len(seen) != len(names) {
		t.Fatalf("saw %v, expected %v", seen, names)
	}
	for i := range names {
		if seen[i] != names[i] {
			t.Errorf("entry %d = %q, expected %q", i, seen[i], names[i])
		}
	}
}

func TestEachStopsOnCallbackError(t *testing.T) {
	mockFS := mocks.NewMockFileSystem()
	mockFS.AddFile("/d/a", nil)
	mockFS.AddFile("/d/b", nil)

	d, err := dirent.Open(mockFS, "/d", 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	stop := errors.New("stop")
	calls := 0
	err = d.Each(func(e dirent.Entry) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Each = %v, expected %v", err, stop)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times, expected 1", calls)
	}
}

func TestOpenMissingDirectory(t *testing.T) {
	mockFS := mocks.NewMockFileSystem()
	if _, err := dirent.Open(mockFS, "/missing", 0); err == nil {
		t.Error("Open should fail for a missing directory")
	}
}
