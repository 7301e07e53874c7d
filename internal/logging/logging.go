// Package logging builds the zerolog logger used by the import pipeline.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Level  string
	Format string // console or json
	Output io.Writer
}

// New returns a logger writing to Output (stderr by default).
func New(opts Options) zerolog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	var logger zerolog.Logger
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		})
	}

	return logger.Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
