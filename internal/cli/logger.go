package cli

import (
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the process-wide zerolog.Logger every cobra command
// hands to metadata.NewRecorder. "console" gives the pretty human-readable
// writer for local runs; anything else (including the empty string, which
// should not happen once config.Default applies) falls back to bare JSON
// lines, the shape a log aggregator expects in a deployed environment.
func newLogger(format string) zerolog.Logger {
	if format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
