// Package hotkey allocates single-key shortcuts to launchable targets.
//
// A Table maps target IDs to at most one key each, and every key belongs to at
// most one target. All functions are pure: they never mutate the table they
// are given and return the input unchanged when there is nothing to do.
package hotkey

import (
	"sort"
	"strings"
)

// Table maps a target ID to its assigned key. An empty value means the target
// is known but currently has no key.
type Table map[string]string

// Normalize lower-cases and trims a requested key. The empty string means
// "unassign". Validation that the key is a single printable character belongs
// to the input boundary.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Assign grants requestedKey to targetID. Any other target holding the same
// key silently loses it (its entry becomes empty). Re-assigning a key the
// target already holds, or unassigning a target that holds nothing, returns
// the input table.
func Assign(t Table, targetID, requestedKey string) Table {
	key := Normalize(requestedKey)

	current, known := t[targetID]
	if known && current == key {
		return t
	}
	if key == "" && current == "" {
		return t
	}

	next := make(Table, len(t)+1)
	for id, k := range t {
		if id != targetID && key != "" && k == key {
			next[id] = ""
			continue
		}
		next[id] = k
	}
	next[targetID] = key
	return next
}

// Seed registers a newly discovered target. The default key is granted only
// if no other target holds it; Seed never evicts. Targets already present in
// the table are left alone.
func Seed(t Table, targetID, defaultKey string) Table {
	if _, known := t[targetID]; known {
		return t
	}
	key := Normalize(defaultKey)
	if key != "" {
		if _, taken := t.Holder(key); taken {
			key = ""
		}
	}

	next := make(Table, len(t)+1)
	for id, k := range t {
		next[id] = k
	}
	next[targetID] = key
	return next
}

// Sanitize restores the table invariant on data from outside the allocator,
// such as a hand-edited state file. Keys are normalized; when several targets
// hold the same key, the first in ID order keeps it and the rest are left
// without one. A table that already holds is returned unchanged.
func Sanitize(t Table) Table {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	next := make(Table, len(t))
	held := make(map[string]struct{}, len(t))
	changed := false
	for _, id := range ids {
		key := Normalize(t[id])
		if _, dup := held[key]; dup && key != "" {
			key = ""
		}
		if key != "" {
			held[key] = struct{}{}
		}
		if key != t[id] {
			changed = true
		}
		next[id] = key
	}
	if !changed {
		return t
	}
	return next
}

// Remove drops a target entirely. Only the collection owning the targets
// should call this, when a target is permanently gone.
func Remove(t Table, targetID string) Table {
	if _, known := t[targetID]; !known {
		return t
	}
	next := make(Table, len(t))
	for id, k := range t {
		if id != targetID {
			next[id] = k
		}
	}
	return next
}

// Holder returns the target currently holding key.
func (t Table) Holder(key string) (string, bool) {
	key = Normalize(key)
	if key == "" {
		return "", false
	}
	for id, k := range t {
		if k == key {
			return id, true
		}
	}
	return "", false
}

// Key returns the key assigned to targetID, or "".
func (t Table) Key(targetID string) string {
	return t[targetID]
}

// Keys returns the assigned keys in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for _, k := range t {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	next := make(Table, len(t))
	for id, k := range t {
		next[id] = k
	}
	return next
}
