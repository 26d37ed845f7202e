package keymap

import "github.com/charmbracelet/bubbles/key"

// Help column titles.
const (
	SectionNavigation = "Navigation"
	SectionActions    = "Actions"
	SectionTargets    = "Targets"
	SectionSystem     = "System"
)

// Section is one titled column of the full help view.
type Section struct {
	Name     string
	Bindings []key.Binding
}

// SectionedKeyMap is implemented by the picker and prefs keymaps.
type SectionedKeyMap interface {
	Sections() []Section
}

func NewSection(name string, bindings ...key.Binding) Section {
	return Section{Name: name, Bindings: bindings}
}

func NavigationSection(bindings ...key.Binding) Section {
	return NewSection(SectionNavigation, bindings...)
}

func ActionsSection(bindings ...key.Binding) Section {
	return NewSection(SectionActions, bindings...)
}

func SystemSection(bindings ...key.Binding) Section {
	return NewSection(SectionSystem, bindings...)
}

// Enabled drops the bindings that are switched off, such as the prefs
// edit-mode keys outside edit mode.
func (s Section) Enabled() []key.Binding {
	var out []key.Binding
	for _, b := range s.Bindings {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

// FullHelp returns one column per section that still has an enabled
// binding, in the shape help.Model.FullHelpView takes.
func FullHelp(km SectionedKeyMap) [][]key.Binding {
	var columns [][]key.Binding
	for _, s := range km.Sections() {
		if enabled := s.Enabled(); len(enabled) > 0 {
			columns = append(columns, enabled)
		}
	}
	return columns
}
