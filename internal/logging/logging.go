// Package logging builds the file backed zerolog logger. The terminal belongs
// to the UI, so log output never goes to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultFile returns where verbose logs go when no file is configured.
func DefaultFile() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache dir: %w", err)
	}
	return filepath.Join(dir, "playa", "playa.log"), nil
}

// Setup returns a logger writing to file at level. Verbose forces debug
// level and falls back to DefaultFile. With neither a file nor verbose the
// logger discards everything. The returned closer releases the file.
func Setup(level, file string, verbose bool) (zerolog.Logger, io.Closer, error) {
	if file == "" && !verbose {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}

	lvl := zerolog.DebugLevel
	if !verbose {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("log level: %w", err)
		}
	}

	if file == "" {
		var err error
		if file, err = DefaultFile(); err != nil {
			return zerolog.Nop(), nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return logger, f, nil
}
