package action

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Unknown holds an action whose type this build does not recognise. It is
// kept so it can be relayed verbatim; reducers treat it as a no-op.
type Unknown struct {
	Kind Type
	Raw  json.RawMessage
}

func (u Unknown) Type() Type { return u.Kind }

// wire is the JSON framing of an action.
type wire struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var registry = map[Type]func() Action{
	TypeStoreReady:              func() Action { return StoreReady{} },
	TypeSubscribe:               func() Action { return Subscribe{} },
	TypeUnsubscribe:             func() Action { return Unsubscribe{} },
	TypeSnapshot:                func() Action { return &Snapshot{} },
	TypeReset:                   func() Action { return Reset{} },
	TypeURLReceived:             func() Action { return &URLReceived{} },
	TypeURLReset:                func() Action { return URLReset{} },
	TypeURLBackspace:            func() Action { return URLBackspace{} },
	TypeURLCopyRequested:        func() Action { return URLCopyRequested{} },
	TypeURLCopyFailed:           func() Action { return &URLCopyFailed{} },
	TypeAppsScanRequested:       func() Action { return AppsScanRequested{} },
	TypeAppsScanned:             func() Action { return &AppsScanned{} },
	TypeAppsScanFailed:          func() Action { return &AppsScanFailed{} },
	TypeTargetLaunchRequested:   func() Action { return &TargetLaunchRequested{} },
	TypeTargetLaunched:          func() Action { return &TargetLaunched{} },
	TypeTargetLaunchFailed:      func() Action { return &TargetLaunchFailed{} },
	TypeFavouriteSet:            func() Action { return &FavouriteSet{} },
	TypeTargetVisibilityToggled: func() Action { return &TargetVisibilityToggled{} },
	TypeHotkeyChanged:           func() Action { return &HotkeyChanged{} },
	TypeThemeReceived:           func() Action { return &ThemeReceived{} },
	TypeEditModeEntered:         func() Action { return EditModeEntered{} },
	TypeEditModeExited:          func() Action { return EditModeExited{} },
	TypeEscapePressed:           func() Action { return EscapePressed{} },
	TypeVersionReceived:         func() Action { return &VersionReceived{} },
	TypeUpdateAvailable:         func() Action { return UpdateAvailable{} },
	TypeUpdateDownloaded:        func() Action { return UpdateDownloaded{} },
	TypeDefaultClientStatus:     func() Action { return &DefaultClientStatus{} },
}

// Types returns every known action type in sorted order.
func Types() []Type {
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether t is a registered action type.
func Known(t Type) bool {
	_, ok := registry[t]
	return ok
}

// Marshal encodes an action with its type tag.
func Marshal(a Action) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("marshal action: nil action")
	}
	if u, ok := a.(Unknown); ok {
		return json.Marshal(wire{Type: u.Kind, Payload: u.Raw})
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", a.Type(), err)
	}
	if string(payload) == "{}" {
		payload = nil
	}
	return json.Marshal(wire{Type: a.Type(), Payload: payload})
}

// Unmarshal decodes an action. Unrecognised types decode to Unknown rather
// than failing; only malformed framing or payloads are errors.
func Unmarshal(data []byte) (Action, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode action frame: %w", err)
	}
	return Decode(w.Type, w.Payload)
}

// Decode builds an action from its type tag and raw JSON payload.
func Decode(t Type, payload json.RawMessage) (Action, error) {
	if t == "" {
		return nil, fmt.Errorf("decode action: missing type")
	}
	factory, ok := registry[t]
	if !ok {
		return Unknown{Kind: t, Raw: payload}, nil
	}
	a := factory()
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, a); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
	}
	return deref(a), nil
}

// deref turns the pointer used for decoding back into the value kind so
// callers can type-switch on values only.
func deref(a Action) Action {
	switch v := a.(type) {
	case *Snapshot:
		return *v
	case *URLReceived:
		return *v
	case *URLCopyFailed:
		return *v
	case *AppsScanned:
		return *v
	case *AppsScanFailed:
		return *v
	case *TargetLaunchRequested:
		return *v
	case *TargetLaunched:
		return *v
	case *TargetLaunchFailed:
		return *v
	case *FavouriteSet:
		return *v
	case *TargetVisibilityToggled:
		return *v
	case *HotkeyChanged:
		return *v
	case *ThemeReceived:
		return *v
	case *VersionReceived:
		return *v
	case *DefaultClientStatus:
		return *v
	}
	return a
}
