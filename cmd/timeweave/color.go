package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"timeweave/internal/temporal"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// warningColor highlights overflows, which change segment sizes, more
// loudly than timing corrections.
func warningColor(w temporal.Warning) string {
	switch {
	case w.IsOverflow():
		return ansiRed
	case w.Code == temporal.WarnDurationBelowFloor:
		return ansiYellow
	default:
		return ansiBlue
	}
}

func colorize(value, color string, enabled bool) string {
	if !enabled || color == "" {
		return value
	}
	return color + value + ansiReset
}
