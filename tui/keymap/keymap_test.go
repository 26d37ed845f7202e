package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/linkpicker/config"
)

type testKeyMap struct {
	Base
	EditMode   key.Binding
	Copy       key.Binding
	unexported key.Binding
}

func (k testKeyMap) Sections() []Section {
	return []Section{
		NavigationSection(k.Up, k.Down),
		ActionsSection(k.Copy, k.EditMode),
		NewSection("Empty", key.NewBinding(key.WithKeys("x"), key.WithDisabled())),
		SystemSection(k.Quit),
	}
}

func newTestKeyMap() testKeyMap {
	return testKeyMap{
		Base:     NewBase(),
		EditMode: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit mode")),
		Copy:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "copy")),
	}
}

func TestApplyOverrides(t *testing.T) {
	km := newTestKeyMap()
	ApplyOverrides(&km, Overrides{
		"copy":      {"y", "c"},
		"edit_mode": {"E"},
		"quit":      {"ctrl+q"},
		"missing":   {"z"},
		"up":        {},
	})

	assert.Equal(t, []string{"y", "c"}, km.Copy.Keys())
	assert.Equal(t, "copy", km.Copy.Help().Desc)
	assert.Equal(t, "y", km.Copy.Help().Key)
	assert.Equal(t, []string{"E"}, km.EditMode.Keys())
	assert.Equal(t, []string{"ctrl+q"}, km.Quit.Keys())
	assert.Equal(t, []string{"up"}, km.Up.Keys())
}

func TestApplyOverridesIgnoresNonPointers(t *testing.T) {
	km := newTestKeyMap()
	ApplyOverrides(km, Overrides{"copy": {"y"}})
	assert.Equal(t, []string{" "}, km.Copy.Keys())
	ApplyOverrides(&km, nil)
	assert.Equal(t, []string{" "}, km.Copy.Keys())
}

func TestCamelToSnake(t *testing.T) {
	tests := map[string]string{
		"Copy":      "copy",
		"EditMode":  "edit_mode",
		"SetHotkey": "set_hotkey",
	}
	for in, want := range tests {
		assert.Equal(t, want, camelToSnake(in))
	}
}

func TestFullHelpSkipsEmptySections(t *testing.T) {
	columns := FullHelp(newTestKeyMap())
	require.Len(t, columns, 3)
	assert.Len(t, columns[0], 2)
	assert.Len(t, columns[1], 2)
}

func TestSectionEnabled(t *testing.T) {
	off := key.NewBinding(key.WithKeys("x"), key.WithDisabled())
	s := SystemSection(NewBase().Quit, off, NewBase().Help)
	assert.Equal(t, SectionSystem, s.Name)
	assert.Len(t, s.Bindings, 3)
	assert.Len(t, s.Enabled(), 2)
}

func TestApplyOverridesKeepsDisabled(t *testing.T) {
	km := newTestKeyMap()
	km.EditMode.SetEnabled(false)
	ApplyOverrides(&km, Overrides{"edit_mode": {"E"}})
	assert.Equal(t, []string{"E"}, km.EditMode.Keys())
	assert.False(t, km.EditMode.Enabled())
}

func TestOverridesFrom(t *testing.T) {
	t.Setenv("LINKPICKER_HOME", t.TempDir())
	cfg, err := config.LoadFromBytes([]byte(`
tui:
  keys:
    picker:
      copy: ["y"]
    prefs:
      favourite: ["*"]
`))
	require.NoError(t, err)

	assert.Equal(t, Overrides{"copy": {"y"}}, OverridesFrom(cfg, "picker"))
	assert.Equal(t, Overrides{"favourite": {"*"}}, OverridesFrom(cfg, "prefs"))
	assert.Nil(t, OverridesFrom(cfg, "other"))

	assert.Nil(t, LoadOverrides("picker"))
}
