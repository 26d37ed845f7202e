package bus

import (
	"encoding/json"
	"testing"

	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeJSON(t *testing.T) {
	in := Envelope{
		Bus:    ToSurfaces,
		Origin: "surface-1",
		Seq:    4,
		Rev:    12,
		Action: action.HotkeyChanged{TargetID: "firefox", Key: "f"},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"bus": "canonical->surfaces",
		"origin": "surface-1",
		"seq": 4,
		"rev": 12,
		"action": {"type": "target/hotkey-changed", "payload": {"target_id": "firefox", "key": "f"}}
	}`, string(data))

	var out Envelope
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestEnvelopeRejectsMissingAction(t *testing.T) {
	var out Envelope
	assert.Error(t, json.Unmarshal([]byte(`{"bus":"surface->canonical"}`), &out))
}

func TestEnvelopeKeepsUnknownAction(t *testing.T) {
	var out Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"bus":"surface->canonical","action":{"type":"later/kind"}}`), &out))
	assert.Equal(t, action.Type("later/kind"), out.Action.Type())
}
