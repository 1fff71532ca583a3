// Package mux frames child process output into tagged, sanitized,
// newline-delimited log lines on the supervisor's own stdout and stderr.
package mux

import (
	"fmt"
	"io"
	"sync"
)

// SystemTag labels status lines emitted by the supervisor itself.
const SystemTag = "SYSTEM"

// Stream identifies which standard stream a line came from. Child stdout
// lines are written to the supervisor's stdout, stderr lines to stderr.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// String returns a human-readable name for the stream.
func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Writer serializes tagged line output. Every line is emitted as exactly one
// write, under a single lock, so lines from different children (or from the
// stdout and stderr of the same child) are never spliced into each other.
type Writer struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	onLine func(stream Stream, length int)
}

// NewWriter creates a Writer emitting to the given destinations.
func NewWriter(stdout, stderr io.Writer) *Writer {
	return &Writer{stdout: stdout, stderr: stderr}
}

// SetLineHook installs a callback invoked after every flushed line.
// Must be called before any lines are written.
func (w *Writer) SetLineHook(fn func(stream Stream, length int)) {
	w.onLine = fn
}

// Line writes one complete tagged line to the destination for stream.
func (w *Writer) Line(tag string, stream Stream, content []byte) {
	dst := w.stdout
	if stream == Stderr {
		dst = w.stderr
	}

	w.mu.Lock()
	fmt.Fprintf(dst, "[%s] %s\n", tag, content)
	w.mu.Unlock()

	if w.onLine != nil {
		w.onLine(stream, len(content))
	}
}

// System writes a supervisor status line to stdout.
func (w *Writer) System(format string, args ...any) {
	w.Line(SystemTag, Stdout, fmt.Appendf(nil, format, args...))
}
