// Package logging sets up the process-wide zerolog logger: JSON output
// in production, console-pretty when debug is on. Standardizes on
// zerolog (the teacher's own direct go.mod dependency, used in its
// factory.go) rather than the stdlib log/slog the teacher's
// logger.go actually reaches for — see DESIGN.md for why.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures zerolog's global logger and returns it.
func Setup(level string, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = os.Stdout
	if debug {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger().Level(parseLevel(level))
	zerolog.DefaultContextLogger = &logger
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
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
