package game

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns a diagnostics logger writing to w at the given level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "arena",
		ReportTimestamp: true,
	})
}

// NewStderrLogger is the logger the binaries use.
func NewStderrLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return NewLogger(os.Stderr, level)
}

// NewDiscardLogger drops everything; it is the Sim default so tests stay
// quiet.
func NewDiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
