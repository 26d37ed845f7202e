// Package prefs is the preferences window: every scanned target with its
// hotkey, favourite and visibility, editable in edit mode.
package prefs

import (
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/tui"
	"github.com/grovetools/linkpicker/tui/keymap"
	"github.com/grovetools/linkpicker/tui/theme"
)

// Options configures a prefs Model.
type Options struct {
	ThemeName string
	Accent    string
	HasDark   func() bool
	Overrides keymap.Overrides
}

// Model is the bubbletea model of the preferences window.
type Model struct {
	d     tui.Dispatcher
	watch <-chan models.Tree
	opts  Options

	keys  KeyMap
	help  help.Model
	theme *theme.Theme

	tree      models.Tree
	applied   *models.Theme
	cursor    int
	width     int
	capturing bool
	quitting  bool
}

// New creates a preferences model that dispatches to d.
func New(d tui.Dispatcher, watch <-chan models.Tree, opts Options) Model {
	m := Model{
		d:     d,
		watch: watch,
		opts:  opts,
		keys:  NewKeyMap(opts.Overrides),
		help:  help.New(),
		theme: theme.DefaultTheme,
		tree:  models.NewTree(),
	}
	m.keys.editing(false)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tui.WaitForTree(m.watch),
		tui.DetectTheme(m.d, m.opts.Accent, m.opts.HasDark),
	)
}

// Cursor returns the index of the selected row.
func (m Model) Cursor() int { return m.cursor }

// Capturing reports whether the next key press becomes a hotkey.
func (m Model) Capturing() bool { return m.capturing }

// Quitting reports whether the window has asked the program to exit.
func (m Model) Quitting() bool { return m.quitting }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tui.ClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tui.TreeMsg:
		m.setTree(msg.Tree)
		return m, tui.WaitForTree(m.watch)

	case tea.KeyMsg:
		if m.capturing {
			return m.captureHotkey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setTree(t models.Tree) {
	m.tree = t
	if m.applied == nil || *m.applied != t.Theme {
		th := t.Theme
		m.applied = &th
		m.theme = theme.New(m.opts.ThemeName, th.Dark, th.Accent)
	}
	if n := len(t.Targets); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if !t.EditMode {
		m.capturing = false
	}
	m.keys.editing(t.EditMode)
}

func (m Model) selected() (models.Target, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tree.Targets) {
		return models.Target{}, false
	}
	return m.tree.Targets[m.cursor], true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tree.Targets)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Rescan):
		m.d.Dispatch(action.AppsScanRequested{})
	case key.Matches(msg, m.keys.Edit):
		if m.tree.EditMode {
			m.d.Dispatch(action.EditModeExited{})
		} else {
			m.d.Dispatch(action.EditModeEntered{})
		}
	case key.Matches(msg, m.keys.Exit):
		m.d.Dispatch(action.EscapePressed{})
	case key.Matches(msg, m.keys.Favourite):
		if target, ok := m.selected(); ok {
			id := target.ID
			if m.tree.Favourite == id {
				id = ""
			}
			m.d.Dispatch(action.FavouriteSet{TargetID: id})
		}
	case key.Matches(msg, m.keys.Hide):
		if target, ok := m.selected(); ok {
			m.d.Dispatch(action.TargetVisibilityToggled{TargetID: target.ID})
		}
	case key.Matches(msg, m.keys.Hotkey):
		if _, ok := m.selected(); ok {
			m.capturing = true
		}
	}
	return m, nil
}

// captureHotkey turns the key after k into a HotkeyChanged. Backspace and
// delete unassign; esc and anything that is not one printable rune cancel.
func (m Model) captureHotkey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.capturing = false
	target, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		m.d.Dispatch(action.HotkeyChanged{TargetID: target.ID, Key: ""})
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && !msg.Alt && unicode.IsPrint(msg.Runes[0]) && !unicode.IsSpace(msg.Runes[0]) {
			m.d.Dispatch(action.HotkeyChanged{TargetID: target.ID, Key: string(msg.Runes)})
		}
	}
	return m, nil
}
