package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/internal/persist"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/bus"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/state"
	"github.com/grovetools/linkpicker/pkg/surface"
)

const wait = 2 * time.Second
const tick = 5 * time.Millisecond

func newTestServer(t *testing.T) (*Server, *store.Store, *httptest.Server) {
	t.Helper()
	st := store.New(persist.NewMemory(), store.Options{FlushDebounce: 10 * time.Millisecond})
	require.NoError(t, st.Start(context.Background()))
	srv := New(st, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
		_ = st.Shutdown(context.Background())
	})
	return srv, st, ts
}

func TestHealth(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetState(t *testing.T) {
	_, st, ts := newTestServer(t)
	require.NoError(t, st.Dispatch(action.FavouriteSet{TargetID: "firefox"}))

	resp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.StateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ready", got.Phase)
	assert.Equal(t, "firefox", got.Tree.Favourite)
	assert.Equal(t, st.Rev(), got.Rev)
	assert.True(t, got.FirstRun)
}

func TestDispatch(t *testing.T) {
	_, st, ts := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   lperrors.ErrorCode
	}{
		{name: "valid", body: `{"type":"url/received","payload":{"url":"https://example.com"}}`, status: http.StatusAccepted},
		{name: "unknown type is relayed", body: `{"type":"future/thing","payload":{"x":1}}`, status: http.StatusAccepted},
		{name: "malformed", body: `{"type":`, status: http.StatusBadRequest, code: lperrors.ErrCodeInvalidInput},
		{name: "missing type", body: `{}`, status: http.StatusBadRequest, code: lperrors.ErrCodeInvalidInput},
		{name: "control action", body: `{"type":"bus/subscribe"}`, status: http.StatusBadRequest, code: lperrors.ErrCodeInvalidInput},
		{name: "snapshot", body: `{"type":"store/snapshot","payload":{"tree":{}}}`, status: http.StatusBadRequest, code: lperrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/dispatch", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.code != "" {
				var le lperrors.LinkError
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&le))
				assert.Equal(t, tt.code, le.Code)
			}
		})
	}
	assert.Equal(t, "https://example.com", st.Tree().URL)

	resp, err := http.Get(ts.URL + "/api/dispatch")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestOpen(t *testing.T) {
	_, st, ts := newTestServer(t)

	body, _ := json.Marshal(models.OpenRequest{URL: "https://go.dev/doc"})
	resp, err := http.Post(ts.URL+"/api/open", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var ack models.DispatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.Equal(t, string(action.TypeURLReceived), ack.Type)
	assert.Equal(t, "https://go.dev/doc", st.Tree().URL)

	resp, err = http.Post(ts.URL+"/api/open", "application/json", strings.NewReader(`{"url":""}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDispatchAfterShutdown(t *testing.T) {
	_, st, ts := newTestServer(t)
	require.NoError(t, st.Shutdown(context.Background()))

	resp, err := http.Post(ts.URL+"/api/dispatch", "application/json", strings.NewReader(`{"type":"url/reset"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetLog(t *testing.T) {
	_, st, ts := newTestServer(t)
	require.NoError(t, st.Dispatch(action.URLReset{}))

	resp, err := http.Get(ts.URL + "/api/log")
	require.NoError(t, err)
	defer resp.Body.Close()

	var entries []state.LogEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.NotEmpty(t, entries)
	assert.Equal(t, action.TypeURLReset, entries[len(entries)-1].Type)
}

func TestGetConfig(t *testing.T) {
	srv, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/config")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv.SetRunningConfig(&models.RunningConfig{Backend: "memory", Catalog: 3})
	resp, err = http.Get(ts.URL + "/api/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	var cfg models.RunningConfig
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, 3, cfg.Catalog)
}

func TestBusReplicatesToSurface(t *testing.T) {
	srv, st, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/bus", nil)
	require.NoError(t, err)
	ws := bus.NewWSConn(conn, nil)
	defer ws.Close()

	sf := surface.New(nil)
	sf.Attach(ws)
	ws.Start()
	defer sf.Close()

	require.Eventually(t, sf.Synced, wait, tick)
	assert.Equal(t, 1, srv.Connections())

	sf.Dispatch(action.TargetVisibilityToggled{TargetID: "chrome"})
	require.Eventually(t, func() bool { return st.Tree().IsHidden("chrome") }, wait, tick)
	require.Eventually(t, func() bool { return sf.Pending() == 0 }, wait, tick)
	assert.True(t, sf.State().IsHidden("chrome"))

	require.NoError(t, st.Dispatch(action.URLReceived{URL: "https://example.com"}))
	require.Eventually(t, func() bool { return sf.State().URL == "https://example.com" }, wait, tick)

	ws.Close()
	require.Eventually(t, func() bool { return srv.Connections() == 0 && st.Subscribers() == 0 }, wait, tick)
}

func TestListenAndServeUnixSocket(t *testing.T) {
	// Unix socket paths are length limited; t.TempDir can be too long.
	dir, err := os.MkdirTemp("", "lp")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	socket := filepath.Join(dir, "d.sock")
	require.NoError(t, os.WriteFile(socket, nil, 0o600)) // stale

	st := store.New(persist.NewMemory(), store.Options{})
	require.NoError(t, st.Start(context.Background()))
	defer st.Shutdown(context.Background())

	srv := New(st, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(socket) }()

	client := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		},
	}}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://unix/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, wait, tick)

	info, err := os.Stat(socket)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.ErrorIs(t, <-errCh, http.ErrServerClosed)
}
