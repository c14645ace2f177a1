// Package logging configures the process-wide slog default logger.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

var ErrUnknownLevel = errors.New("unexpected log level")

// Configure installs a slog default logger at the given level, writing to
// stdout (text) or to logFile (JSON) when one is given.
//
// Valid levels are "none", "error", "warn", "info", "debug". "none"
// discards all output. Returns the opened log file, if any, so the caller
// can close it on shutdown.
func Configure(level string, logFile string, opts slog.HandlerOptions) (*os.File, error) {
	if level == "none" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	}

	switch level {
	case "error":
		opts.Level = slog.LevelError
	case "warn":
		opts.Level = slog.LevelWarn
	case "info":
		opts.Level = slog.LevelInfo
	case "debug":
		opts.Level = slog.LevelDebug
	default:
		return nil, ErrUnknownLevel
	}

	var file *os.File
	var handler slog.Handler
	if logFile == "" {
		handler = slog.NewTextHandler(os.Stdout, &opts)
	} else {
		var err error
		file, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, err
		}
		handler = slog.NewJSONHandler(file, &opts)
	}

	slog.SetDefault(slog.New(handler))
	return file, nil
}
