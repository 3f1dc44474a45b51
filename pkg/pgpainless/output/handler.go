// Package output manages what commands print and where. Data goes to stdout,
// warnings and errors go to stderr, and silent mode suppresses everything
// that is not data.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Handler manages output emission for a command invocation.
type Handler struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	silent bool
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithSilent sets silent mode (suppress warnings and success messages).
func WithSilent(silent bool) HandlerOption {
	return func(h *Handler) {
		h.silent = silent
	}
}

// WithStdin sets the reader interactive prompts fall back to.
func WithStdin(stdin io.Reader) HandlerOption {
	return func(h *Handler) {
		h.stdin = stdin
	}
}

// NewHandler creates a new output handler with the given writers and options.
func NewHandler(stdout, stderr io.Writer, opts ...HandlerOption) *Handler {
	h := &Handler{
		stdout: stdout,
		stderr: stderr,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Warnf emits a formatted warning to stderr unless silent.
func (h *Handler) Warnf(format string, args ...interface{}) {
	if !h.silent {
		_, _ = fmt.Fprintf(h.stderr, "warning: "+format+"\n", args...)
	}
}

// Errorf emits a formatted error message to stderr. Errors print even in
// silent mode.
func (h *Handler) Errorf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(h.stderr, format+"\n", args...)
}

// Successf emits a formatted status message to stdout unless silent.
func (h *Handler) Successf(format string, args ...interface{}) {
	if !h.silent {
		_, _ = fmt.Fprintf(h.stdout, format+"\n", args...)
	}
}

// WriteData writes data output to stdout. Data prints even in silent mode;
// the caller is responsible for trailing newlines.
func (h *Handler) WriteData(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(h.stdout, format, args...)
}

// WriteLine writes one line of data output to stdout, appending a newline
// when the message lacks one.
func (h *Handler) WriteLine(message string) {
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	_, _ = fmt.Fprint(h.stdout, message)
}

// IsSilent returns whether silent mode is enabled.
func (h *Handler) IsSilent() bool {
	return h.silent
}

// Stdout returns the stdout writer.
func (h *Handler) Stdout() io.Writer {
	return h.stdout
}

// Stderr returns the stderr writer.
func (h *Handler) Stderr() io.Writer {
	return h.stderr
}

// Stdin returns the configured input reader, or nil when prompts must use
// the terminal.
func (h *Handler) Stdin() io.Reader {
	return h.stdin
}
