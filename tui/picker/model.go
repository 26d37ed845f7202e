// Package picker is the overlay shown when a URL arrives: the URL bar and
// the visible targets, each opened by its hotkey.
package picker

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/hotkey"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/tui"
	"github.com/grovetools/linkpicker/tui/keymap"
	"github.com/grovetools/linkpicker/tui/theme"
)

// Options configures a picker Model.
type Options struct {
	// ThemeName selects the palette; empty uses the configured default.
	ThemeName string
	// Accent overrides the palette accent colour.
	Accent string
	// HasDark reports the terminal background. Nil asks the terminal.
	HasDark   func() bool
	Overrides keymap.Overrides
}

// Model is the bubbletea model of the picker.
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
	launching string
	launchURL string
	// stale is the failure on screen when the launch started. It is
	// ignored until a tree without it arrives.
	stale     models.Failure
	quitting  bool
}

// New creates a picker that dispatches to d and renders every tree read
// from watch.
func New(d tui.Dispatcher, watch <-chan models.Tree, opts Options) Model {
	h := help.New()
	return Model{
		d:     d,
		watch: watch,
		opts:  opts,
		keys:  NewKeyMap(opts.Overrides),
		help:  h,
		theme: theme.DefaultTheme,
		tree:  models.NewTree(),
	}
}

// Init starts reading trees and detecting the terminal background.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tui.WaitForTree(m.watch),
		tui.DetectTheme(m.d, m.opts.Accent, m.opts.HasDark),
	)
}

// Tree returns the tree currently displayed.
func (m Model) Tree() models.Tree { return m.tree }

// Cursor returns the index of the selected row.
func (m Model) Cursor() int { return m.cursor }

// Quitting reports whether the picker has asked the program to exit.
func (m Model) Quitting() bool { return m.quitting }

// Update handles tree updates and key presses.
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
		if m.launched() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tui.WaitForTree(m.watch)

	case tea.KeyMsg:
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
	if n := len(t.VisibleTargets()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// launched reports that the pending launch consumed the URL. A launch
// failure for the same target cancels the wait instead, unless it is the
// failure left over from an earlier attempt.
func (m *Model) launched() bool {
	if m.launching == "" {
		return false
	}
	f := m.tree.Failure
	if f != m.stale {
		m.stale = models.Failure{}
	}
	if f.Kind == models.FailureLaunch && f.TargetID == m.launching && f != m.stale {
		m.launching = ""
		return false
	}
	return m.launchURL != "" && m.tree.URL == ""
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.Reset):
		m.launching = ""
		m.d.Dispatch(action.URLReset{})
		return m, nil
	case key.Matches(msg, m.keys.Open):
		targets := m.tree.VisibleTargets()
		if len(targets) > 0 {
			m.launch(targets[m.cursor].ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		m.d.Dispatch(action.URLCopyRequested{})
		return m, nil
	case key.Matches(msg, m.keys.Backspace):
		m.d.Dispatch(action.URLBackspace{})
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tree.VisibleTargets())-1 {
			m.cursor++
		}
		return m, nil
	}

	if id, ok := m.hotkeyTarget(msg); ok {
		m.launch(id)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// hotkeyTarget maps a single-rune key press to the visible target that
// holds it.
func (m Model) hotkeyTarget(msg tea.KeyMsg) (string, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 || msg.Alt {
		return "", false
	}
	id, ok := m.tree.Hotkeys.Holder(hotkey.Normalize(string(msg.Runes)))
	if !ok || m.tree.IsHidden(id) {
		return "", false
	}
	if _, ok := m.tree.Target(id); !ok {
		return "", false
	}
	return id, true
}

func (m *Model) launch(id string) {
	m.launching = id
	m.launchURL = m.tree.URL
	m.stale = m.tree.Failure
	m.d.Dispatch(action.TargetLaunchRequested{TargetID: id})
}
