package action

import (
	"encoding/json"
	"testing"

	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   Action
	}{
		{name: "empty payload", in: StoreReady{}},
		{name: "url received", in: URLReceived{URL: "https://example.com/a?b=c"}},
		{name: "hotkey changed", in: HotkeyChanged{TargetID: "firefox", Key: "f"}},
		{name: "launch failed", in: TargetLaunchFailed{TargetID: "chrome", Reason: "exit status 1"}},
		{name: "theme", in: ThemeReceived{Dark: true, Accent: "#ff0000"}},
		{name: "default client", in: DefaultClientStatus{IsDefault: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.in)
			require.NoError(t, err)

			out, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, tt.in, out)
		})
	}
}

func TestMarshalOmitsEmptyPayload(t *testing.T) {
	data, err := Marshal(URLReset{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"url/reset"}`, string(data))
}

func TestUnmarshalWireFormat(t *testing.T) {
	out, err := Unmarshal([]byte(`{"type":"target/favourite-set","payload":{"target_id":"safari"}}`))
	require.NoError(t, err)
	assert.Equal(t, FavouriteSet{TargetID: "safari"}, out)
}

func TestUnmarshalSnapshot(t *testing.T) {
	tree := models.NewTree()
	tree.Favourite = "firefox"
	tree.Hidden = []string{"chrome"}

	data, err := Marshal(Snapshot{Tree: tree, Ack: 7})
	require.NoError(t, err)

	out, err := Unmarshal(data)
	require.NoError(t, err)
	snap, ok := out.(Snapshot)
	require.True(t, ok)
	assert.Equal(t, uint64(7), snap.Ack)
	assert.Equal(t, "firefox", snap.Tree.Favourite)
	assert.Equal(t, []string{"chrome"}, snap.Tree.Hidden)
}

func TestUnknownTypeIsNotAnError(t *testing.T) {
	raw := []byte(`{"type":"future/thing","payload":{"x":1}}`)

	out, err := Unmarshal(raw)
	require.NoError(t, err)

	u, ok := out.(Unknown)
	require.True(t, ok)
	assert.Equal(t, Type("future/thing"), u.Type())
	assert.JSONEq(t, `{"x":1}`, string(u.Raw))

	// Relaying preserves the original frame.
	again, err := Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `nope`},
		{name: "missing type", data: `{"payload":{}}`},
		{name: "bad payload", data: `{"type":"url/received","payload":{"url":5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestEveryTypeDecodes(t *testing.T) {
	for _, typ := range Types() {
		a, err := Decode(typ, json.RawMessage(`null`))
		require.NoError(t, err, typ)
		assert.Equal(t, typ, a.Type())
		_, isUnknown := a.(Unknown)
		assert.False(t, isUnknown, typ)
	}
	assert.False(t, Known("nope"))
	assert.True(t, Known(TypeReset))
}

func TestIsControl(t *testing.T) {
	assert.True(t, IsControl(Subscribe{}))
	assert.True(t, IsControl(Unsubscribe{}))
	assert.False(t, IsControl(StoreReady{}))
}
