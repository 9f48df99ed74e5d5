// Package ui provides consistent styled output for the cfgcheck CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// Writer provides styled output methods that respect color settings.
type Writer struct {
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

// NewWriter creates a Writer for a command's stdout and stderr.
// Color is disabled when noColor is true or the NO_COLOR env var is set.
func NewWriter(out, errOut io.Writer, noColor bool) *Writer {
	return NewWriterWithOutputs(out, errOut, noColor || os.Getenv("NO_COLOR") != "")
}

// NewWriterWithOutputs creates a Writer that colors output unless noColor
// is set, regardless of the environment.
func NewWriterWithOutputs(out, errOut io.Writer, noColor bool) *Writer {
	return &Writer{
		out:     out,
		errOut:  errOut,
		noColor: noColor,
	}
}

// Success prints a success message with a green checkmark prefix.
func (w *Writer) Success(msg string) {
	writeLines(w.out, w.styled(colorGreen, "✓"), msg)
}

// Warning prints a warning message to stderr with a yellow prefix.
func (w *Writer) Warning(msg string) {
	writeLines(w.errOut, w.styled(colorYellow, "warning:"), msg)
}

// Error prints an error message to stderr with a red prefix. Continuation
// lines of a multi-line message are indented under the first.
func (w *Writer) Error(msg string) {
	writeLines(w.errOut, w.styled(colorRed, "error:"), msg)
}

// Bold returns text in bold.
func (w *Writer) Bold(msg string) string {
	return w.styled(colorBold, msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

func (w *Writer) styled(color, text string) string {
	if w.noColor {
		return text
	}

	return color + text + colorReset
}

func writeLines(out io.Writer, prefix, msg string) {
	lines := strings.Split(strings.TrimRight(msg, "\n"), "\n")

	if _, err := fmt.Fprintf(out, "%s %s\n", prefix, lines[0]); err != nil {
		// Best-effort output; if stderr fails there's nothing useful to do.
		return
	}

	for _, line := range lines[1:] {
		if _, err := fmt.Fprintf(out, "  %s\n", line); err != nil {
			return
		}
	}
}
