//go:build linux

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newRealCLI runs against the real filesystem with a config file that does
// not exist, so defaults apply.
func newRealCLI(t *testing.T, args ...string) (*CLI, *bytes.Buffer, *int) {
	t.Helper()
	errOut := &bytes.Buffer{}
	code := 0
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	c := NewForTesting(&bytes.Buffer{}, errOut, append([]string{"bfm", "--config", cfgPath}, args...))
	c.Exit = func(status int) { code = status }
	return c, errOut, &code
}

func TestEndToEnd(t *testing.T) {
	root := t.TempDir()
	logDir := filepath.Join(root, "logs")
	if err := os.Mkdir(logDir, 0755); err != nil {
		t.Fatal(err)
	}
	work := filepath.Join(root, "work")
	file := filepath.Join(work, "notes.txt")
	renamed := filepath.Join(work, "renamed.txt")

	steps := [][]string{
		{"create", "--dir", work},
		{"create", file},
		{"append", file, "hello world"},
		{"rename", file, renamed},
		{"delete", work},
	}
	for _, step := range steps {
		c, errOut, code := newRealCLI(t, append([]string{"--log", logDir}, step...)...)
		c.Run()
		if *code != 0 {
			t.Fatalf("%v: exit %d: %s", step, *code, errOut.String())
		}
		if step[0] == "rename" {
			data, err := os.ReadFile(renamed)
			if err != nil || string(data) != "hello world" {
				t.Fatalf("renamed file = %q, %v", data, err)
			}
		}
	}

	if _, err := os.Lstat(work); !os.IsNotExist(err) {
		t.Errorf("%s still exists", work)
	}

	data, err := os.ReadFile(filepath.Join(logDir, "log.txt"))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < len(steps) {
		t.Errorf("expected at least %d log lines, got %q", len(steps), data)
	}
	if !strings.HasPrefix(lines[len(lines)-1], "info: delete directory: "+work) {
		t.Errorf("last log line = %q", lines[len(lines)-1])
	}
}

func TestEndToEndMissingPathExitStatus(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	c, errOut, code := newRealCLI(t, "--verbose", "delete", missing)
	c.Run()

	if *code != 2 {
		t.Errorf("exit code = %d, expected ENOENT (2)", *code)
	}
	if !strings.Contains(errOut.String(), "[error] check path failed: "+missing) {
		t.Errorf("verbose log missing from stderr: %q", errOut.String())
	}
}
