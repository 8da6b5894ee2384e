package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// ASCIILogo is printed at startup unless quiet mode is on
const ASCIILogo = `
    ╔══════════════════════════════════════════╗
    ║   I G D B   C O V E R S                  ║
    ║   cover art fetcher  ·  PS1 / PS2 / PSP  ║
    ╚══════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var (
	output io.Writer = os.Stdout
	quiet  atomic.Bool
)

// SetOutput redirects all terminal output, mainly for tests
func SetOutput(w io.Writer) {
	output = w
}

// SetQuietMode suppresses informational output. Errors are still printed.
func SetQuietMode(q bool) {
	quiet.Store(q)
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	return quiet.Load()
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if IsQuietMode() {
		return
	}
	fmt.Fprint(output, Cyan(ASCIILogo))
}

// PrintError prints an error message in red, with an optional detail
func PrintError(msg string, detail ...string) {
	if len(detail) > 0 && detail[0] != "" {
		msg += ": " + detail[0]
	}
	fmt.Fprintln(output, Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(output, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow, with an optional detail
func PrintWarning(msg string, detail ...string) {
	if len(detail) > 0 && detail[0] != "" {
		msg += ": " + detail[0]
	}
	fmt.Fprintln(output, Yellow(msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(output, Magenta(msg))
}
