//go:build !linux

package cli

import (
	"errors"
	"io"

	"github.com/mcdonaldj/bfm/internal/config"
)

func defaultRunner(cfg *config.Config, verbose bool, stderr io.Writer) (Runner, error) {
	return nil, errors.New("bfm reads raw directory entries and only runs on Linux")
}
