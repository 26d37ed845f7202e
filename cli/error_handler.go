package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/tui/theme"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	out     io.Writer
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		out:     os.Stderr,
	}
}

// WithWriter redirects the messages.
func (h *ErrorHandler) WithWriter(w io.Writer) *ErrorHandler {
	h.out = w
	return h
}

// Handle prints a message chosen by the error code and returns err.
func (h *ErrorHandler) Handle(cmd *cobra.Command, err error) error {
	t := theme.DefaultTheme
	fail := func(format string, args ...interface{}) {
		fmt.Fprintf(h.out, "%s %s\n", t.Error.Render(theme.IconError), fmt.Sprintf(format, args...))
	}
	hint := func(format string, args ...interface{}) {
		fmt.Fprintln(h.out, t.Muted.Render(fmt.Sprintf(format, args...)))
	}
	detail := func(key string) interface{} {
		if le, ok := errors.As(err); ok {
			return le.Details[key]
		}
		return ""
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fail("Configuration file not found: %v", detail("path"))
		hint("Run 'linkpicker config show' to see the built-in defaults.")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fail("%v", err)
		hint("Run 'linkpicker config schema' for the accepted format.")

	case errors.ErrCodeDaemonNotRunning:
		fail("The linkpicker daemon is not running (socket %v).", detail("socket"))
		hint("Start it with 'linkpicker daemon start'.")

	case errors.ErrCodeDaemonAlreadyRunning:
		fail("The linkpicker daemon is already running (PID %v).", detail("pid"))
		hint("Stop it with 'linkpicker daemon stop'.")

	case errors.ErrCodeUnknownTarget:
		fail("Unknown target '%v'.", detail("target"))
		hint("Run 'linkpicker state' to list the available targets.")

	case errors.ErrCodeStoreNotReady, errors.ErrCodeStoreShuttingDown:
		fail("%v", err)
		hint("The daemon is starting or stopping; try again in a moment.")

	default:
		fail("Error: %v", err)
		if cmd != nil {
			hint("Run '%s --help' for usage.", cmd.CommandPath())
		}
	}

	if h.Verbose {
		if le, ok := errors.As(err); ok {
			fmt.Fprintf(h.out, "\nError details:\n%s\n", le.ToJSON())
		}
	}
	return err
}
