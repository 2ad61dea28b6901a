//go:build linux

package cli

import (
	"io"
	"os"

	"github.com/mcdonaldj/bfm/internal/adapters/logger"
	"github.com/mcdonaldj/bfm/internal/adapters/unixfs"
	"github.com/mcdonaldj/bfm/internal/config"
	"github.com/mcdonaldj/bfm/internal/dispatch"
	"github.com/mcdonaldj/bfm/internal/fsops"
	"github.com/mcdonaldj/bfm/internal/ports"
	"github.com/mcdonaldj/bfm/internal/rio"
)

// defaultRunner wires the system call adapter, the configured loggers and
// the operations into a dispatcher.
func defaultRunner(cfg *config.Config, verbose bool, stderr io.Writer) (Runner, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	fsys := unixfs.New()

	var loggers []ports.Logger
	if path := cfg.LogPath(); path != "" {
		loggers = append(loggers, logger.NewFile(rio.New(fsys), path, mode))
	}
	if verbose {
		if stderr == os.Stderr {
			loggers = append(loggers, logger.NewStderr())
		} else {
			loggers = append(loggers, logger.NewConsole(stderr, false))
		}
	}

	var log ports.Logger
	switch len(loggers) {
	case 0:
		log = logger.NewNoop()
	case 1:
		log = loggers[0]
	default:
		log = logger.NewMulti(loggers...)
	}

	ops := fsops.NewService(fsys, log, fsops.Limits{
		AppendLimit:  cfg.AppendLimit,
		ReadBytes:    cfg.ReadBytes,
		CreateMode:   mode,
		DirentBuffer: cfg.DirentBuffer,
	})
	return dispatch.New(ops), nil
}

// Compile-time check that the operations service satisfies the dispatcher.
var _ dispatch.Operations = (*fsops.Service)(nil)
