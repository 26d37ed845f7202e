package prefs

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/grovetools/linkpicker/tui/keymap"
)

// KeyMap defines the preferences bindings.
type KeyMap struct {
	keymap.Base
	Edit      key.Binding
	Exit      key.Binding
	Favourite key.Binding
	Hide      key.Binding
	Hotkey    key.Binding
	Rescan    key.Binding
}

// NewKeyMap returns the default bindings with tui.keys.prefs applied.
func NewKeyMap(overrides keymap.Overrides) KeyMap {
	km := KeyMap{
		Base: keymap.NewBase(),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Exit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "done"),
		),
		Favourite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favourite"),
		),
		Hide: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "show/hide"),
		),
		Hotkey: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "set hotkey"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan apps"),
		),
	}
	keymap.ApplyOverrides(&km, overrides)
	return km
}

// editing enables the bindings that only apply in edit mode.
func (k *KeyMap) editing(on bool) {
	k.Favourite.SetEnabled(on)
	k.Hide.SetEnabled(on)
	k.Hotkey.SetEnabled(on)
	k.Exit.SetEnabled(on)
}

func (k KeyMap) Sections() []keymap.Section {
	return []keymap.Section{
		keymap.NavigationSection(k.Up, k.Down),
		keymap.NewSection(keymap.SectionTargets, k.Favourite, k.Hide, k.Hotkey),
		keymap.ActionsSection(k.Edit, k.Exit, k.Rescan),
		keymap.SystemSection(k.Help, k.Quit),
	}
}

// ShortHelp returns the short help text for the keymap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Hotkey, k.Rescan, k.Help, k.Quit}
}

// FullHelp returns the full help text for the keymap
func (k KeyMap) FullHelp() [][]key.Binding {
	return keymap.FullHelp(k)
}
