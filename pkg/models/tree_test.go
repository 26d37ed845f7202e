package models

import (
	"testing"

	"github.com/grovetools/linkpicker/pkg/hotkey"
	"github.com/stretchr/testify/assert"
)

func TestAvailableTargets(t *testing.T) {
	catalog := []Target{
		{ID: "firefox", AppID: "org.mozilla.firefox"},
		{ID: "chrome", AppID: "com.google.Chrome"},
		{ID: "copy", Command: "wl-copy {URL}"},
	}
	installed := map[string]Presence{
		"org.mozilla.firefox": {AppID: "org.mozilla.firefox", Path: "/usr/bin/firefox"},
	}

	got := AvailableTargets(catalog, installed)
	ids := make([]string, 0, len(got))
	for _, target := range got {
		ids = append(ids, target.ID)
	}
	assert.Equal(t, []string{"firefox", "copy"}, ids)

	assert.Equal(t, []string{"copy"}, idsOf(AvailableTargets(catalog, nil)))
}

func TestVisibleTargets(t *testing.T) {
	tree := NewTree()
	tree.Targets = []Target{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	tree.Hidden = []string{"b"}
	tree.Favourite = "c"

	assert.Equal(t, []string{"c", "a", "d"}, idsOf(tree.VisibleTargets()))

	tree.Hidden = []string{"b", "c"}
	assert.Equal(t, []string{"a", "d"}, idsOf(tree.VisibleTargets()))
}

func TestPersistedRoundTrip(t *testing.T) {
	p := Persisted{
		Favourite: "firefox",
		Hidden:    []string{"safari", "chrome", "safari", ""},
		Hotkeys:   hotkey.Table{"firefox": "f"},
	}
	tree := NewTree().WithPersisted(p)

	assert.Equal(t, "firefox", tree.Favourite)
	assert.Equal(t, []string{"chrome", "safari"}, tree.Hidden)
	assert.True(t, tree.IsHidden("chrome"))
	assert.False(t, tree.IsHidden("firefox"))

	out := tree.Persisted()
	assert.False(t, out.FirstRun)
	assert.Equal(t, hotkey.Table{"firefox": "f"}, out.Hotkeys)

	other := tree.Clone()
	assert.True(t, SamePersisted(tree, other))
	other.Hotkeys = hotkey.Assign(other.Hotkeys, "chrome", "c")
	assert.False(t, SamePersisted(tree, other))
}

func TestWithPersistedRepairsHotkeys(t *testing.T) {
	tree := NewTree().WithPersisted(Persisted{Hotkeys: hotkey.Table{"chrome": "C", "firefox": "c"}})
	assert.Equal(t, hotkey.Table{"chrome": "c", "firefox": ""}, tree.Hotkeys)

	id, ok := tree.Hotkeys.Holder("c")
	assert.True(t, ok)
	assert.Equal(t, "chrome", id)
}

func TestCloneIsIndependent(t *testing.T) {
	tree := NewTree()
	tree.Hidden = []string{"a"}
	tree.Hotkeys = hotkey.Table{"a": "x"}

	c := tree.Clone()
	c.Hidden[0] = "z"
	c.Hotkeys["a"] = "y"

	assert.Equal(t, "a", tree.Hidden[0])
	assert.Equal(t, "x", tree.Hotkeys["a"])
}

func idsOf(targets []Target) []string {
	ids := make([]string, 0, len(targets))
	for _, target := range targets {
		ids = append(ids, target.ID)
	}
	return ids
}
