// Package action defines the closed set of commands that change the state
// tree. Every kind is an immutable value type; the Type tag identifies it on
// the wire.
package action

import "github.com/grovetools/linkpicker/pkg/models"

// Type is the wire tag of an action kind.
type Type string

// Action is implemented by every action kind.
type Action interface {
	Type() Type
}

const (
	TypeStoreReady              Type = "store/ready"
	TypeSubscribe               Type = "bus/subscribe"
	TypeUnsubscribe             Type = "bus/unsubscribe"
	TypeSnapshot                Type = "store/snapshot"
	TypeReset                   Type = "store/reset"
	TypeURLReceived             Type = "url/received"
	TypeURLReset                Type = "url/reset"
	TypeURLBackspace            Type = "url/backspace"
	TypeURLCopyRequested        Type = "url/copy-requested"
	TypeURLCopyFailed           Type = "url/copy-failed"
	TypeAppsScanRequested       Type = "apps/scan-requested"
	TypeAppsScanned             Type = "apps/scanned"
	TypeAppsScanFailed          Type = "apps/scan-failed"
	TypeTargetLaunchRequested   Type = "target/launch-requested"
	TypeTargetLaunched          Type = "target/launched"
	TypeTargetLaunchFailed      Type = "target/launch-failed"
	TypeFavouriteSet            Type = "target/favourite-set"
	TypeTargetVisibilityToggled Type = "target/visibility-toggled"
	TypeHotkeyChanged           Type = "target/hotkey-changed"
	TypeThemeReceived           Type = "ui/theme-received"
	TypeEditModeEntered         Type = "ui/edit-mode-entered"
	TypeEditModeExited          Type = "ui/edit-mode-exited"
	TypeEscapePressed           Type = "ui/escape-pressed"
	TypeVersionReceived         Type = "release/version-received"
	TypeUpdateAvailable         Type = "release/update-available"
	TypeUpdateDownloaded        Type = "release/update-downloaded"
	TypeDefaultClientStatus     Type = "system/default-client-status"
)

// StoreReady is dispatched once when the canonical store becomes Ready.
type StoreReady struct{}

// Subscribe asks the canonical store for a snapshot and enrolls the sender
// as a broadcast recipient. Reducers ignore it.
type Subscribe struct{}

// Unsubscribe removes the sender from the recipient set. Reducers ignore it.
type Unsubscribe struct{}

// Snapshot replaces every slice with the canonical tree. Ack is the highest
// sequence number from the receiving surface already folded into Tree.
type Snapshot struct {
	Tree models.Tree `json:"tree"`
	Ack  uint64      `json:"ack"`
}

// Reset restores the user-editable slices to their defaults.
type Reset struct{}

// URLReceived carries a URL handed over by the OS.
type URLReceived struct {
	URL string `json:"url"`
}

// URLReset clears the current URL.
type URLReset struct{}

// URLBackspace trims the current URL by one step.
type URLBackspace struct{}

// URLCopyRequested asks for the current URL to be placed on the clipboard.
type URLCopyRequested struct{}

// URLCopyFailed reports a clipboard failure.
type URLCopyFailed struct {
	Reason string `json:"reason"`
}

// AppsScanRequested asks the scanner to look for installed applications.
type AppsScanRequested struct{}

// AppsScanned carries the result of a scan: what is installed and which
// catalog targets are therefore available.
type AppsScanned struct {
	Installed map[string]models.Presence `json:"installed"`
	Targets   []models.Target            `json:"targets"`
}

// AppsScanFailed reports a scanner failure.
type AppsScanFailed struct {
	Reason string `json:"reason"`
}

// TargetLaunchRequested asks to open URL with the target. An empty URL means
// the current URL of the tree.
type TargetLaunchRequested struct {
	TargetID string `json:"target_id"`
	URL      string `json:"url,omitempty"`
}

// TargetLaunched reports that the target's process started.
type TargetLaunched struct {
	TargetID string `json:"target_id"`
}

// TargetLaunchFailed reports that the target could not be started.
type TargetLaunchFailed struct {
	TargetID string `json:"target_id"`
	Reason   string `json:"reason"`
}

// FavouriteSet makes TargetID the single favourite. An empty ID clears it.
type FavouriteSet struct {
	TargetID string `json:"target_id"`
}

// TargetVisibilityToggled hides a visible target or shows a hidden one.
type TargetVisibilityToggled struct {
	TargetID string `json:"target_id"`
}

// HotkeyChanged requests Key for TargetID. An empty key unassigns.
type HotkeyChanged struct {
	TargetID string `json:"target_id"`
	Key      string `json:"key"`
}

// ThemeReceived carries the host colour scheme.
type ThemeReceived struct {
	Dark   bool   `json:"dark"`
	Accent string `json:"accent,omitempty"`
}

type EditModeEntered struct{}

type EditModeExited struct{}

type EscapePressed struct{}

// VersionReceived carries the running version.
type VersionReceived struct {
	Version string `json:"version"`
}

type UpdateAvailable struct{}

type UpdateDownloaded struct{}

// DefaultClientStatus reports whether linkpicker is the default URL handler.
type DefaultClientStatus struct {
	IsDefault bool `json:"is_default"`
}

func (StoreReady) Type() Type              { return TypeStoreReady }
func (Subscribe) Type() Type               { return TypeSubscribe }
func (Unsubscribe) Type() Type             { return TypeUnsubscribe }
func (Snapshot) Type() Type                { return TypeSnapshot }
func (Reset) Type() Type                   { return TypeReset }
func (URLReceived) Type() Type             { return TypeURLReceived }
func (URLReset) Type() Type                { return TypeURLReset }
func (URLBackspace) Type() Type            { return TypeURLBackspace }
func (URLCopyRequested) Type() Type        { return TypeURLCopyRequested }
func (URLCopyFailed) Type() Type           { return TypeURLCopyFailed }
func (AppsScanRequested) Type() Type       { return TypeAppsScanRequested }
func (AppsScanned) Type() Type             { return TypeAppsScanned }
func (AppsScanFailed) Type() Type          { return TypeAppsScanFailed }
func (TargetLaunchRequested) Type() Type   { return TypeTargetLaunchRequested }
func (TargetLaunched) Type() Type          { return TypeTargetLaunched }
func (TargetLaunchFailed) Type() Type      { return TypeTargetLaunchFailed }
func (FavouriteSet) Type() Type            { return TypeFavouriteSet }
func (TargetVisibilityToggled) Type() Type { return TypeTargetVisibilityToggled }
func (HotkeyChanged) Type() Type           { return TypeHotkeyChanged }
func (ThemeReceived) Type() Type           { return TypeThemeReceived }
func (EditModeEntered) Type() Type         { return TypeEditModeEntered }
func (EditModeExited) Type() Type          { return TypeEditModeExited }
func (EscapePressed) Type() Type           { return TypeEscapePressed }
func (VersionReceived) Type() Type         { return TypeVersionReceived }
func (UpdateAvailable) Type() Type         { return TypeUpdateAvailable }
func (UpdateDownloaded) Type() Type        { return TypeUpdateDownloaded }
func (DefaultClientStatus) Type() Type     { return TypeDefaultClientStatus }

// IsControl reports whether a is a channel control signal rather than a
// state change.
func IsControl(a Action) bool {
	switch a.(type) {
	case Subscribe, Unsubscribe:
		return true
	}
	return false
}
