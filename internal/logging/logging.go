// Package logging builds the zerolog loggers used by the panel and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jwulff/recite/internal/config"
	"github.com/rs/zerolog"
)

// FieldComponent tags a log line with the emitting component.
const FieldComponent = "component"

// New returns a logger writing to w. JSON output unless console is set.
func New(w io.Writer, level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// ForCLI logs to stderr, human-readable unless cfg asks for JSON.
func ForCLI(cfg config.LogConfig) zerolog.Logger {
	return New(os.Stderr, cfg.Level, !cfg.JSON)
}

// ForPanel logs to cfg.File because the panel owns the terminal. The returned
// closer must be called on exit. An empty path discards logs.
func ForPanel(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, cfg.Level, false), f, nil
}

// Component returns l tagged with name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(FieldComponent, name).Logger()
}
