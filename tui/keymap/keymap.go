// Package keymap holds the key bindings shared by the linkpicker TUIs and
// lets users override them from the tui.keys section of linkpicker.yml:
//
//	tui:
//	  keys:
//	    picker:
//	      copy: ["y", "space"]
package keymap

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/grovetools/linkpicker/config"
)

// Base contains the bindings every linkpicker TUI has.
type Base struct {
	Up   key.Binding
	Down key.Binding
	Help key.Binding
	Quit key.Binding
}

// NewBase returns the default Base bindings. Letters are left free for
// target hotkeys, so navigation uses the arrow keys only.
func NewBase() Base {
	return Base{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Overrides maps a binding's snake_case field name to replacement keys.
type Overrides map[string][]string

// keysConfig is the part of the tui section this package reads.
type keysConfig struct {
	Keys map[string]Overrides `yaml:"keys"`
}

// LoadOverrides returns tui.keys.<name> from the default configuration, or
// nil when there is none.
func LoadOverrides(name string) Overrides {
	cfg, err := config.LoadDefault()
	if err != nil || cfg == nil {
		return nil
	}
	return OverridesFrom(cfg, name)
}

// OverridesFrom returns tui.keys.<name> from cfg.
func OverridesFrom(cfg *config.Config, name string) Overrides {
	var kc keysConfig
	if err := cfg.UnmarshalExtension("tui", &kc); err != nil {
		return nil
	}
	return kc.Keys[name]
}
