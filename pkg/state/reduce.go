// Package state holds the reducers that compute a new state tree from the
// previous tree and an action. Everything here is pure: no I/O, no clocks
// and no mutation of the input tree.
package state

import (
	"sort"

	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/hotkey"
	"github.com/grovetools/linkpicker/pkg/models"
)

// Reduce applies every slice reducer to a and returns the new tree. A
// Snapshot replaces the whole tree. Actions a slice does not handle leave it
// unchanged, so Unknown is the identity.
func Reduce(t models.Tree, a action.Action) models.Tree {
	if snap, ok := a.(action.Snapshot); ok {
		return fromSnapshot(snap.Tree)
	}

	next := t
	next.Favourite = favourite(t.Favourite, a)
	next.Hidden = hidden(t.Hidden, a)
	next.Hotkeys = hotkeys(t.Hotkeys, a)
	next.Targets = targets(t.Targets, a)
	next.Theme = theme(t.Theme, a)
	next.EditMode = editMode(t.EditMode, a)
	next.URL = currentURL(t.URL, a)
	next.Release = release(t.Release, a)
	next.DefaultClient = defaultClient(t.DefaultClient, a)
	next.Failure = failure(t.Failure, a)
	return next
}

// Fold reduces a sequence of actions left to right starting from t.
func Fold(t models.Tree, actions ...action.Action) models.Tree {
	for _, a := range actions {
		t = Reduce(t, a)
	}
	return t
}

func fromSnapshot(t models.Tree) models.Tree {
	c := t.Clone()
	if c.Hotkeys == nil {
		c.Hotkeys = hotkey.Table{}
	}
	if c.Release.Update == "" {
		c.Release.Update = models.UpdateNone
	}
	return c
}

func favourite(s string, a action.Action) string {
	switch a := a.(type) {
	case action.FavouriteSet:
		return a.TargetID
	case action.Reset:
		return ""
	}
	return s
}

// hidden toggles membership and keeps the set sorted.
func hidden(s []string, a action.Action) []string {
	switch a := a.(type) {
	case action.TargetVisibilityToggled:
		if a.TargetID == "" {
			return s
		}
		i := sort.SearchStrings(s, a.TargetID)
		if i < len(s) && s[i] == a.TargetID {
			out := make([]string, 0, len(s)-1)
			out = append(out, s[:i]...)
			return append(out, s[i+1:]...)
		}
		out := make([]string, 0, len(s)+1)
		out = append(out, s[:i]...)
		out = append(out, a.TargetID)
		out = append(out, s[i:]...)
		return out
	case action.Reset:
		return []string{}
	}
	return s
}

func hotkeys(s hotkey.Table, a action.Action) hotkey.Table {
	switch a := a.(type) {
	case action.HotkeyChanged:
		return hotkey.Assign(s, a.TargetID, a.Key)
	case action.AppsScanned:
		for _, t := range a.Targets {
			s = hotkey.Seed(s, t.ID, t.DefaultHotkey)
		}
		return s
	case action.Reset:
		out := make(hotkey.Table, len(s))
		for id := range s {
			out[id] = ""
		}
		return out
	}
	return s
}

func targets(s []models.Target, a action.Action) []models.Target {
	if a, ok := a.(action.AppsScanned); ok {
		return append([]models.Target{}, a.Targets...)
	}
	return s
}

func theme(s models.Theme, a action.Action) models.Theme {
	if a, ok := a.(action.ThemeReceived); ok {
		return models.Theme{Dark: a.Dark, Accent: a.Accent}
	}
	return s
}

func editMode(s bool, a action.Action) bool {
	switch a.(type) {
	case action.EditModeEntered:
		return true
	case action.EditModeExited, action.EscapePressed, action.URLReceived, action.Reset:
		return false
	}
	return s
}

func currentURL(s string, a action.Action) string {
	switch a := a.(type) {
	case action.URLReceived:
		return a.URL
	case action.URLReset, action.TargetLaunched:
		return ""
	case action.URLBackspace:
		return TrimURL(s)
	}
	return s
}

func release(s models.Release, a action.Action) models.Release {
	switch a := a.(type) {
	case action.VersionReceived:
		s.Version = a.Version
	case action.UpdateAvailable:
		s.Update = models.UpdateAvailable
	case action.UpdateDownloaded:
		s.Update = models.UpdateDownloaded
	}
	return s
}

func defaultClient(s bool, a action.Action) bool {
	if a, ok := a.(action.DefaultClientStatus); ok {
		return a.IsDefault
	}
	return s
}

func failure(s models.Failure, a action.Action) models.Failure {
	switch a := a.(type) {
	case action.AppsScanFailed:
		return models.Failure{Kind: models.FailureScan, Reason: a.Reason}
	case action.TargetLaunchFailed:
		return models.Failure{Kind: models.FailureLaunch, TargetID: a.TargetID, Reason: a.Reason}
	case action.URLCopyFailed:
		return models.Failure{Kind: models.FailureCopy, Reason: a.Reason}
	case action.AppsScanned, action.TargetLaunched, action.EscapePressed, action.Reset:
		return models.Failure{}
	case action.TargetLaunchRequested:
		// A retry supersedes the previous launch failure.
		if s.Kind == models.FailureLaunch {
			return models.Failure{}
		}
	}
	return s
}
