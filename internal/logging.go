package internal

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns the ldl logger writing to w. An unknown level falls back
// to info.
func NewLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "ldl",
		Level:  lvl,
	})
}
