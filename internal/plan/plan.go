// Package plan loads YAML files that list file operations to run in order.
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mcdonaldj/bfm/internal/dispatch"
)

// Step is one entry of a plan. Exactly one of Create, Rename, Append, Print
// and Delete must be set.
type Step struct {
	Create    string `yaml:"create,omitempty"`
	Directory bool   `yaml:"directory,omitempty"`

	Rename string `yaml:"rename,omitempty"`
	To     string `yaml:"to,omitempty"`

	Append  string `yaml:"append,omitempty"`
	Text    string `yaml:"text,omitempty"`
	Numbers *int   `yaml:"numbers,omitempty"`

	Print  string `yaml:"print,omitempty"`
	Delete string `yaml:"delete,omitempty"`
}

type Plan struct {
	Steps []Step `yaml:"steps"`
}

// Load reads and parses the plan at path.
func Load(path string) ([]dispatch.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	cmds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cmds, nil
}

// Parse converts a YAML plan into commands. Unknown keys are rejected.
func Parse(data []byte) ([]dispatch.Command, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if len(p.Steps) == 0 {
		return nil, errors.New("plan has no steps")
	}

	cmds := make([]dispatch.Command, 0, len(p.Steps))
	for i, s := range p.Steps {
		cmd, err := s.Command()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Command converts the step into a dispatch command.
func (s Step) Command() (dispatch.Command, error) {
	actions := 0
	for _, set := range []bool{s.Create != "", s.Rename != "", s.Append != "", s.Print != "", s.Delete != ""} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return dispatch.Command{}, fmt.Errorf("expected exactly one action, found %d", actions)
	}
	if s.Directory && s.Create == "" {
		return dispatch.Command{}, errors.New("directory is only valid with create")
	}
	if s.To != "" && s.Rename == "" {
		return dispatch.Command{}, errors.New("to is only valid with rename")
	}
	if (s.Text != "" || s.Numbers != nil) && s.Append == "" {
		return dispatch.Command{}, errors.New("text and numbers are only valid with append")
	}
	if s.Text != "" && s.Numbers != nil {
		return dispatch.Command{}, errors.New("append takes text or numbers, not both")
	}

	cmd := dispatch.Command{
		Create:      s.Create,
		CreateDir:   s.Directory,
		RenameFrom:  s.Rename,
		RenameTo:    s.To,
		Append:      s.Append,
		AppendValue: s.Text,
		Print:       s.Print,
		Delete:      s.Delete,
	}
	if s.Numbers != nil {
		cmd.AppendNumbers = true
		cmd.AppendValue = strconv.Itoa(*s.Numbers)
	}
	if err := cmd.Validate(); err != nil {
		return dispatch.Command{}, err
	}
	return cmd, nil
}
