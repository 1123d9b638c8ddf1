package main

import (
	"fmt"
	"os"
)

// ANSI codes for terminal output. Helper output goes to stderr so stdout
// stays clean for reply text.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// paint wraps s in the given ANSI code unless --no-color is set.
func paint(code, s string) string {
	if noColor {
		return s
	}
	return code + s + ansiReset
}

// note prints one prefixed, colored line to stderr.
func note(code, prefix, format string, args ...any) {
	fmt.Fprintln(os.Stderr, paint(code, prefix+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { note(ansiGreen, "ok: ", format, args...) }
func printError(format string, args ...any)   { note(ansiRed, "error: ", format, args...) }
func printWarning(format string, args ...any) { note(ansiYellow, "warning: ", format, args...) }
func printStep(format string, args ...any)    { note(ansiCyan, "... ", format, args...) }

// printStatus prints a "Label: value" line with the label bolded.
func printStatus(label, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", paint(ansiBold, label+":"), fmt.Sprintf(format, args...))
}
