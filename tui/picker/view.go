package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/tui/theme"
)

// View renders the URL bar, the target list and help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	t := m.theme

	var b strings.Builder
	b.WriteString(m.urlBar())
	b.WriteString("\n")

	targets := m.tree.VisibleTargets()
	if len(targets) == 0 {
		b.WriteString(t.Placeholder.Render("No applications available"))
		b.WriteString("\n")
	}
	for i, target := range targets {
		b.WriteString(m.row(target, i == m.cursor))
		b.WriteString("\n")
	}

	if f := m.tree.Failure; !f.IsZero() {
		b.WriteString("\n")
		b.WriteString(t.Error.Render(fmt.Sprintf("%s %s failed: %s", theme.IconError, f.Kind, f.Reason)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) urlBar() string {
	t := m.theme
	style := t.URLBar
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	if m.tree.URL == "" {
		return style.Render(t.Placeholder.Render("no url"))
	}
	return style.Render(theme.IconLink + " " + m.tree.URL)
}

func (m Model) row(target models.Target, selected bool) string {
	t := m.theme

	hk := m.tree.Hotkeys.Key(target.ID)
	if hk == "" {
		hk = " "
	}
	marker := "  "
	if selected {
		marker = theme.IconArrow + " "
	}
	name := target.DisplayName()
	if target.ID == m.tree.Favourite {
		name += " " + t.Favourite.Render(theme.IconFavourite)
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top,
		marker,
		t.Hotkey.Render("["+hk+"]"),
		" ",
		name,
	)
	if selected {
		return t.Selected.Render(line)
	}
	return line
}
