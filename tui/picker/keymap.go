package picker

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/grovetools/linkpicker/tui/keymap"
)

// KeyMap defines the picker bindings. Target hotkeys come from the state
// tree and are not part of it.
type KeyMap struct {
	keymap.Base
	Open      key.Binding
	Reset     key.Binding
	Copy      key.Binding
	Backspace key.Binding
}

// NewKeyMap returns the default picker bindings with any overrides from
// tui.keys.picker applied.
func NewKeyMap(overrides keymap.Overrides) KeyMap {
	km := KeyMap{
		Base: keymap.NewBase(),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open with selected"),
		),
		Reset: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear url"),
		),
		Copy: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "copy url"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "trim url"),
		),
	}
	keymap.ApplyOverrides(&km, overrides)
	return km
}

// Sections groups the bindings for the help view.
func (k KeyMap) Sections() []keymap.Section {
	return []keymap.Section{
		keymap.NavigationSection(k.Up, k.Down),
		keymap.ActionsSection(k.Open, k.Copy, k.Backspace, k.Reset),
		keymap.SystemSection(k.Help, k.Quit),
	}
}

// ShortHelp returns the short help text for the keymap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Copy, k.Help, k.Quit}
}

// FullHelp returns the full help text for the keymap
func (k KeyMap) FullHelp() [][]key.Binding {
	return keymap.FullHelp(k)
}
