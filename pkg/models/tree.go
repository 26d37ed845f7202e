// Package models defines the data shared by the canonical store and every
// surface store: the state tree, its slices and the persisted subset.
package models

import (
	"sort"

	"github.com/grovetools/linkpicker/pkg/hotkey"
)

// UpdateStatus reports whether a newer release is available.
type UpdateStatus string

const (
	UpdateNone       UpdateStatus = "no-update"
	UpdateAvailable  UpdateStatus = "available"
	UpdateDownloaded UpdateStatus = "downloaded"
)

// Theme is the colour scheme reported by the host.
type Theme struct {
	Dark   bool   `json:"dark"`
	Accent string `json:"accent,omitempty"`
}

// Release holds version and update information.
type Release struct {
	Version string       `json:"version"`
	Update  UpdateStatus `json:"update"`
}

// FailureKind names the collaborator that failed.
type FailureKind string

const (
	FailureScan   FailureKind = "scan"
	FailureLaunch FailureKind = "launch"
	FailureCopy   FailureKind = "copy"
)

// Failure is the most recent collaborator failure. The zero value means
// nothing has failed since the last success.
type Failure struct {
	Kind     FailureKind `json:"kind,omitempty"`
	TargetID string      `json:"target_id,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// IsZero reports whether f records no failure.
func (f Failure) IsZero() bool {
	return f.Kind == "" && f.Reason == ""
}

// Tree is the complete state tree. Each field is an independent slice that
// changes only through its own reducer. Values are treated as immutable:
// reducers return new maps and slices instead of editing them.
type Tree struct {
	Favourite     string       `json:"favourite"`
	Hidden        []string     `json:"hidden"`
	Hotkeys       hotkey.Table `json:"hotkeys"`
	Targets       []Target     `json:"targets"`
	Theme         Theme        `json:"theme"`
	EditMode      bool         `json:"edit_mode"`
	URL           string       `json:"url"`
	Release       Release      `json:"release"`
	DefaultClient bool         `json:"default_client"`
	Failure       Failure      `json:"failure"`
}

// NewTree returns the initial state of an empty store.
func NewTree() Tree {
	return Tree{
		Hidden:        []string{},
		Hotkeys:       hotkey.Table{},
		Targets:       []Target{},
		Release:       Release{Update: UpdateNone},
		DefaultClient: true,
	}
}

// IsHidden reports whether the target is hidden from the picker.
func (t Tree) IsHidden(id string) bool {
	i := sort.SearchStrings(t.Hidden, id)
	return i < len(t.Hidden) && t.Hidden[i] == id
}

// Target looks up a scanned target by ID.
func (t Tree) Target(id string) (Target, bool) {
	for _, target := range t.Targets {
		if target.ID == id {
			return target, true
		}
	}
	return Target{}, false
}

// VisibleTargets returns the targets shown in the picker: hidden targets are
// dropped and the favourite, if visible, comes first.
func (t Tree) VisibleTargets() []Target {
	out := make([]Target, 0, len(t.Targets))
	var fav *Target
	for i := range t.Targets {
		target := t.Targets[i]
		if t.IsHidden(target.ID) {
			continue
		}
		if target.ID == t.Favourite {
			fav = &target
			continue
		}
		out = append(out, target)
	}
	if fav != nil {
		out = append([]Target{*fav}, out...)
	}
	return out
}

// Clone returns a deep copy safe to hand to code outside the store.
func (t Tree) Clone() Tree {
	c := t
	c.Hidden = append([]string{}, t.Hidden...)
	c.Hotkeys = t.Hotkeys.Clone()
	c.Targets = append([]Target{}, t.Targets...)
	return c
}

// Persisted is the subset of the tree that survives restarts.
type Persisted struct {
	Favourite string       `json:"favourite" yaml:"favourite"`
	Hidden    []string     `json:"hidden" yaml:"hidden"`
	Hotkeys   hotkey.Table `json:"hotkeys" yaml:"hotkeys"`
	FirstRun  bool         `json:"first_run" yaml:"first_run"`
}

// DefaultPersisted is what a first run loads.
func DefaultPersisted() Persisted {
	return Persisted{
		Hidden:   []string{},
		Hotkeys:  hotkey.Table{},
		FirstRun: true,
	}
}

// Persisted extracts the persisted slices. FirstRun is not part of the tree
// and is always false in the result.
func (t Tree) Persisted() Persisted {
	return Persisted{
		Favourite: t.Favourite,
		Hidden:    append([]string{}, t.Hidden...),
		Hotkeys:   t.Hotkeys.Clone(),
	}
}

// WithPersisted returns a copy of t seeded with the persisted slices.
// Hotkeys are sanitized, so a stored table that breaks key uniqueness is
// repaired on the way in.
func (t Tree) WithPersisted(p Persisted) Tree {
	t.Favourite = p.Favourite
	t.Hidden = normalizeSet(p.Hidden)
	if p.Hotkeys != nil {
		t.Hotkeys = hotkey.Sanitize(p.Hotkeys).Clone()
	} else {
		t.Hotkeys = hotkey.Table{}
	}
	return t
}

// SamePersisted reports whether two trees agree on every persisted slice.
func SamePersisted(a, b Tree) bool {
	if a.Favourite != b.Favourite || len(a.Hidden) != len(b.Hidden) || len(a.Hotkeys) != len(b.Hotkeys) {
		return false
	}
	for i := range a.Hidden {
		if a.Hidden[i] != b.Hidden[i] {
			return false
		}
	}
	for id, k := range a.Hotkeys {
		if other, ok := b.Hotkeys[id]; !ok || other != k {
			return false
		}
	}
	return true
}

func normalizeSet(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
