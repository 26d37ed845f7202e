// Package table builds the bordered lipgloss tables used by the TUIs.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/grovetools/linkpicker/tui/theme"
)

// New creates a table styled with t. Row selected (zero based, -1 for
// none) is highlighted.
func New(t *theme.Theme, selected int) *ltable.Table {
	if t == nil {
		t = theme.DefaultTheme
	}
	header := t.Bold.Foreground(t.Colors.Accent).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	highlight := t.Selected.Padding(0, 1)

	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return header
			case row == selected:
				return highlight
			}
			return cell
		})
}
