package bus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func TestWSConnRoundTrip(t *testing.T) {
	serverSide := make(chan *WSConn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- NewWSConn(conn, quietLogger()).Start()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := NewWSConn(conn, quietLogger()).Start()
	defer client.Close()

	var server *WSConn
	select {
	case server = <-serverSide:
	case <-time.After(2 * time.Second):
		t.Fatal("no server connection")
	}

	received := newCollector()
	server.OnReceive(ToCanonical, received.handle)
	replies := newCollector()
	client.OnReceive(ToSurfaces, replies.handle)

	client.Send(ToCanonical, Envelope{Origin: "s", Seq: 1, Action: action.FavouriteSet{TargetID: "firefox"}})
	client.Send(ToCanonical, Envelope{Origin: "s", Seq: 2, Action: action.URLReset{}})

	got := received.waitFor(t, 2)
	assert.Equal(t, action.FavouriteSet{TargetID: "firefox"}, got[0].Action)
	assert.Equal(t, uint64(2), got[1].Seq)

	server.Send(ToSurfaces, Envelope{Origin: "s", Seq: 1, Rev: 9, Action: action.FavouriteSet{TargetID: "firefox"}})
	reply := replies.waitFor(t, 1)[0]
	assert.Equal(t, uint64(9), reply.Rev)

	// Closing one side ends the other.
	require.NoError(t, client.Close())
	select {
	case <-server.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("server side not closed")
	}
}

// wsServer upgrades every request and hands the raw connection to accept.
func wsServer(t *testing.T, accept func(*websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accept(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSConnHoldsFramesUntilStart(t *testing.T) {
	received := newCollector()
	url := wsServer(t, func(conn *websocket.Conn) {
		c := NewWSConn(conn, quietLogger())
		// The first frame is already on the wire before any handler exists.
		time.Sleep(100 * time.Millisecond)
		c.OnReceive(ToCanonical, received.handle)
		c.Start()
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := NewWSConn(conn, quietLogger()).Start()
	defer client.Close()

	client.Send(ToCanonical, Envelope{Origin: "s", Action: action.Subscribe{}})
	got := received.waitFor(t, 1)
	assert.Equal(t, action.Subscribe{}, got[0].Action)
}

func TestWSConnSendBeforeStartIsQueued(t *testing.T) {
	frames := make(chan []byte, 1)
	url := wsServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err == nil {
			frames <- data
		}
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := NewWSConn(conn, quietLogger())
	defer client.Close()

	client.Send(ToCanonical, Envelope{Origin: "s", Seq: 1, Action: action.URLReset{}})
	client.Start()

	select {
	case data := <-frames:
		assert.Contains(t, string(data), `"seq":1`)
	case <-time.After(2 * time.Second):
		t.Fatal("queued envelope never written")
	}
}

func TestWSConnCloseBeforeStart(t *testing.T) {
	closed := make(chan struct{})
	url := wsServer(t, func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
		close(closed)
	})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := NewWSConn(conn, quietLogger())
	require.NoError(t, client.Close())
	client.Start()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("socket left open")
	}
}

func TestWSConnKeepalive(t *testing.T) {
	tests := []struct {
		name       string
		peerReads  bool
		wantClosed bool
	}{
		{name: "silent peer is dropped", peerReads: false, wantClosed: true},
		{name: "responsive peer stays", peerReads: true, wantClosed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serverSide := make(chan *WSConn, 1)
			url := wsServer(t, func(conn *websocket.Conn) {
				serverSide <- NewWSConn(conn, quietLogger()).WithPongWait(500 * time.Millisecond).Start()
			})

			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			require.NoError(t, err)
			defer conn.Close()
			if tt.peerReads {
				// Reading answers pings with pongs.
				client := NewWSConn(conn, quietLogger()).Start()
				defer client.Close()
			}

			var server *WSConn
			select {
			case server = <-serverSide:
			case <-time.After(2 * time.Second):
				t.Fatal("no server connection")
			}
			defer server.Close()

			select {
			case <-server.Done():
				assert.True(t, tt.wantClosed, "connection closed unexpectedly")
			case <-time.After(1500 * time.Millisecond):
				assert.False(t, tt.wantClosed, "silent peer kept open")
			}
		})
	}
}
