// Package bufwriter collects the lines of one rendered statement.
package bufwriter

import (
	"fmt"
	"strings"
)

// Writer accumulates SQL lines. The zero value is ready to use.
type Writer struct {
	lines []string
}

// WriteLine appends a line.
func (w *Writer) WriteLine(line string) {
	w.lines = append(w.lines, line)
}

// WriteLinef appends a formatted line.
func (w *Writer) WriteLinef(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

// Reset discards everything written so far.
func (w *Writer) Reset() {
	w.lines = w.lines[:0]
}

// Len returns the number of lines written.
func (w *Writer) Len() int {
	return len(w.lines)
}

// String returns the lines joined with newlines.
func (w *Writer) String() string {
	return strings.Join(w.lines, "\n")
}
