package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Options describes the loggers to build at startup
type Options struct {
	Level string
	// File is the destination for the primary log; empty means Writer
	File   string
	Writer io.Writer
	JSON   bool
	Color  bool

	FluentEnabled bool
	FluentHost    string
	FluentPort    int
	FluentLevel   string
	FluentTag     string
}

// Setup builds the logger described by opts. The returned close func releases
// the log file and the fluent connection.
func Setup(opts Options) (Logger, func() error, error) {
	var closers []io.Closer

	w := opts.Writer
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		closers = append(closers, f)
		w = f
	}

	var logger Logger = NewSlogAdapter(SlogConfig{
		Writer:   w,
		Level:    ParseLevel(opts.Level),
		IsJSON:   opts.JSON,
		UseColor: opts.Color && opts.File == "",
	})

	if opts.FluentEnabled {
		client, err := DialFluent(opts.FluentHost, opts.FluentPort)
		if err != nil {
			// fluent is optional; keep the local log working
			logger.Warn("fluent logging disabled", Fields{"error": err.Error()})
		} else {
			fa, err := NewFluentAdapter(client, ParseLevel(opts.FluentLevel), opts.FluentTag)
			if err != nil {
				return nil, nil, err
			}
			closers = append(closers, fa)
			multi, err := NewMultiLogger(logger, fa)
			if err != nil {
				return nil, nil, err
			}
			logger = multi
		}
	}

	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	return logger, closeAll, nil
}
