package models

// Target is a launchable application that can open a URL. It is eligible for
// a hotkey and for favourite/hidden status.
type Target struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Command       string `json:"command" yaml:"command"`
	AppID         string `json:"app_id,omitempty" yaml:"app_id,omitempty"`
	DefaultHotkey string `json:"default_hotkey,omitempty" yaml:"default_hotkey,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Presence describes an installed application found by a scan.
type Presence struct {
	AppID string `json:"app_id"`
	Path  string `json:"path,omitempty"`
}

// AvailableTargets filters a catalog down to the targets that can run on
// this host. Targets without an AppID never depend on an installed app and
// are always available. Catalog order is preserved.
func AvailableTargets(catalog []Target, installed map[string]Presence) []Target {
	out := make([]Target, 0, len(catalog))
	for _, t := range catalog {
		if t.AppID == "" {
			out = append(out, t)
			continue
		}
		if _, ok := installed[t.AppID]; ok {
			out = append(out, t)
		}
	}
	return out
}
