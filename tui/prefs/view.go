package prefs

import (
	"fmt"
	"strings"

	"github.com/grovetools/linkpicker/tui/components/table"
	"github.com/grovetools/linkpicker/tui/theme"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	t := m.theme

	var b strings.Builder
	b.WriteString(t.Header.Render("linkpicker preferences"))
	b.WriteString("\n")

	if len(m.tree.Targets) == 0 {
		b.WriteString(t.Placeholder.Render("No applications found. Press r to scan again."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.targetTable())
		b.WriteString("\n")
	}

	b.WriteString(m.status())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) targetTable() string {
	t := m.theme
	tbl := table.New(t, m.cursor).Headers("KEY", "APPLICATION", "FAVOURITE", "VISIBLE")
	for i, target := range m.tree.Targets {
		hk := m.tree.Hotkeys.Key(target.ID)
		if m.capturing && i == m.cursor {
			hk = "…"
		}
		fav := ""
		if target.ID == m.tree.Favourite {
			fav = theme.IconFavourite
		}
		visible := theme.IconSuccess
		if m.tree.IsHidden(target.ID) {
			visible = theme.IconHidden
		}
		tbl.Row(hk, target.DisplayName(), fav, visible)
	}
	return tbl.String()
}

func (m Model) status() string {
	t := m.theme
	var parts []string

	if m.tree.EditMode {
		parts = append(parts, t.Accent.Render("EDIT"))
	}
	if m.capturing {
		parts = append(parts, t.Info.Render("press a key for the hotkey, ⌫ to clear"))
	}
	if v := m.tree.Release.Version; v != "" {
		parts = append(parts, t.Muted.Render("v"+v))
	}
	if !m.tree.DefaultClient {
		parts = append(parts, t.Warning.Render(theme.IconWarning+" not the default browser"))
	}
	if f := m.tree.Failure; !f.IsZero() {
		parts = append(parts, t.Error.Render(fmt.Sprintf("%s %s failed: %s", theme.IconError, f.Kind, f.Reason)))
	}
	return strings.Join(parts, "  ")
}
