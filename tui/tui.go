// Package tui holds what the linkpicker surfaces share: terminal setup,
// the bridge from a surface store's watch channel into bubbletea, and
// theme detection.
package tui

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/grovetools/linkpicker/logging"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/models"
)

// Dispatcher accepts actions from a surface. *surface.Store implements it.
type Dispatcher interface {
	Dispatch(a action.Action)
}

// TreeMsg carries a new visible tree into the bubbletea loop.
type TreeMsg struct {
	Tree models.Tree
}

// ClosedMsg reports that the watch channel was closed.
type ClosedMsg struct{}

// WaitForTree returns a command that blocks for the next tree on ch. Models
// re-issue it after every TreeMsg.
func WaitForTree(ch <-chan models.Tree) tea.Cmd {
	return func() tea.Msg {
		tree, ok := <-ch
		if !ok {
			return ClosedMsg{}
		}
		return TreeMsg{Tree: tree}
	}
}

// DetectTheme returns a command that asks the terminal for its background
// and dispatches the result. A nil hasDark queries the terminal via termenv.
func DetectTheme(d Dispatcher, accent string, hasDark func() bool) tea.Cmd {
	if hasDark == nil {
		hasDark = termenv.HasDarkBackground
	}
	return func() tea.Msg {
		d.Dispatch(action.ThemeReceived{Dark: hasDark(), Accent: accent})
		return nil
	}
}

// InitializeTUI prepares the terminal environment for TUI applications.
// It checks for environment variables that force color output (`CLICOLOR_FORCE`,
// `COLORTERM`) and sets the appropriate lipgloss color profile when present.
//
// It also sends log output that would reach stderr to io.Discard while the
// TUI owns the screen; the returned func restores it.
func InitializeTUI() (restore func()) {
	if os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor" {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
	return logging.Redirect(io.Discard)
}
