// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/hymnal/internal/config"
)

// NewLogger creates a [log.Logger] writing to w (stderr when nil) with
// timestamps enabled. An unknown level falls back to info.
func NewLogger(w io.Writer, cfg config.Log) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := log.Options{ReportTimestamp: true, Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts)
}

// ParseLevel maps debug, info, warn and error to their [log.Level].
func ParseLevel(level string) log.Level {
	l, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// Setup creates the logger and installs it as the package default.
func Setup(cfg config.Log) *log.Logger {
	logger := NewLogger(os.Stderr, cfg)
	log.SetDefault(logger)
	return logger
}
