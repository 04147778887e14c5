package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// newLogger opens the log destination. Logs never go to the terminal the
// ball is drawn on, so without a file they are discarded.
func newLogger(level, path string) (*log.Logger, func() error, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if path == "" {
		return log.New(io.Discard), func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          "discoball",
	})
	return logger, f.Close, nil
}
