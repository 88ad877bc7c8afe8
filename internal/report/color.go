// Package report renders an analyzed binary as a text or JSON report.
package report

import "os"

// ColorMode selects when ANSI colors are emitted.
type ColorMode int

const (
	// ColorAuto enables colors only when stdout is a terminal.
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on.
	ColorAlways
	// ColorNever forces colors off.
	ColorNever
)

// ParseColorMode maps the config/CLI spelling to a ColorMode; anything
// unrecognized falls back to auto.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// ANSI color codes for terminal output.
const (
	ansiReset   = "\x1b[0m"
	ansiBold    = "\x1b[1m"
	ansiDim     = "\x1b[2m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

// ShouldUseColor decides whether to color output, honoring NO_COLOR
// (https://no-color.org/) and TTY detection in auto mode.
func ShouldUseColor(mode ColorMode) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	switch mode {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTerminal(os.Stdout)
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func colorize(s, code string, enabled bool) string {
	if !enabled || s == "" {
		return s
	}
	return code + s + ansiReset
}
