// Package bus carries actions between the canonical store and the surface
// stores. Two logical buses exist, one per direction; delivery is FIFO per
// bus and best-effort, with no acknowledgement or retry.
package bus

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/linkpicker/pkg/action"
)

// ID names a logical bus.
type ID string

const (
	// ToCanonical carries actions dispatched by a surface.
	ToCanonical ID = "surface->canonical"
	// ToSurfaces carries snapshots and rebroadcast actions.
	ToSurfaces ID = "canonical->surfaces"
)

// Envelope pairs an action with its routing metadata. Origin and Seq are
// assigned by the dispatching surface; Rev is the canonical revision that
// applied the action and is zero on ToCanonical.
type Envelope struct {
	Bus    ID
	Origin string
	Seq    uint64
	Rev    uint64
	Action action.Action
}

type envelopeJSON struct {
	Bus    ID              `json:"bus"`
	Origin string          `json:"origin,omitempty"`
	Seq    uint64          `json:"seq,omitempty"`
	Rev    uint64          `json:"rev,omitempty"`
	Action json.RawMessage `json:"action"`
}

// MarshalJSON encodes the action with its type tag.
func (e Envelope) MarshalJSON() ([]byte, error) {
	raw, err := action.Marshal(e.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{Bus: e.Bus, Origin: e.Origin, Seq: e.Seq, Rev: e.Rev, Action: raw})
}

// UnmarshalJSON decodes an envelope; unknown action types survive as
// action.Unknown.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var w envelopeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Action) == 0 {
		return fmt.Errorf("envelope on %q has no action", w.Bus)
	}
	a, err := action.Unmarshal(w.Action)
	if err != nil {
		return err
	}
	*e = Envelope{Bus: w.Bus, Origin: w.Origin, Seq: w.Seq, Rev: w.Rev, Action: a}
	return nil
}
