package logging

import (
	"fmt"
	"io"

	"github.com/grovetools/linkpicker/tui/theme"
)

// Status prints the human-readable result lines of CLI commands such as
// `linkpicker daemon status`. Log entries go through NewLogger instead.
type Status struct {
	w     io.Writer
	theme *theme.Theme
}

// NewStatus writes to w with the default theme.
func NewStatus(w io.Writer) *Status {
	return &Status{w: w, theme: theme.DefaultTheme}
}

// Success prints "✓ message".
func (s *Status) Success(format string, args ...interface{}) {
	s.line(s.theme.Success, theme.IconSuccess, fmt.Sprintf(format, args...))
}

// Warn prints "! message".
func (s *Status) Warn(format string, args ...interface{}) {
	s.line(s.theme.Warning, theme.IconWarning, fmt.Sprintf(format, args...))
}

// Error prints the message followed by err, when there is one.
func (s *Status) Error(message string, err error) {
	if err != nil {
		message += ": " + err.Error()
	}
	s.line(s.theme.Error, theme.IconError, message)
}

// Field prints an indented "key: value" pair under the previous line.
func (s *Status) Field(key string, value interface{}) {
	fmt.Fprintf(s.w, "  %s %s\n", s.theme.Muted.Render(key+":"), s.theme.Bold.Render(fmt.Sprint(value)))
}

func (s *Status) line(style interface{ Render(...string) string }, icon, message string) {
	fmt.Fprintf(s.w, "%s %s\n", style.Render(icon), style.Render(message))
}
