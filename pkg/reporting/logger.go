// Package reporting persists run manifests and builds the zerolog loggers
// the simulator and batch driver narrate through. Components take a
// zerolog.Logger value directly; a zerolog.Nop() logger silences one.
package reporting

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewRunLogger builds the logger the CLI hands to the simulator and the
// batch driver: phase transitions at info level, per-event dispatch detail
// at debug level when verbose. Console formatting is the default for
// interactive runs; jsonOutput switches to raw zerolog JSON for machine
// consumption.
func NewRunLogger(out io.Writer, verbose, jsonOutput bool) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	w := out
	if !jsonOutput {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
