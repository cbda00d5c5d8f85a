// Package logging sets up the application's file logger. The TUI owns
// stdout and stderr, so everything is written to a log file instead.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Setup opens the log file and returns a configured logger plus a
// close function. Unknown levels fall back to info.
func Setup(path, level string) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return logger, func() { _ = f.Close() }, nil
}
