package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/bus"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/state"
	"github.com/grovetools/linkpicker/version"
)

// baseURL is the dummy host used for Unix socket HTTP requests.
// The actual connection goes through the Unix socket, not this URL.
const baseURL = "http://unix"

// RemoteClient implements Client by calling the daemon's HTTP API over a Unix socket.
type RemoteClient struct {
	httpClient *http.Client
	dialer     *websocket.Dialer
	socketPath string
	logger     *logrus.Entry
}

// NewRemoteClient creates a new RemoteClient for the daemon socket. It does
// not check that the daemon is up; see New.
func NewRemoteClient(socketPath string) *RemoteClient {
	dial := func(ctx context.Context, _, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "unix", socketPath)
	}

	transport := &http.Transport{
		DialContext:     dial,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &RemoteClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   10 * time.Second,
		},
		dialer: &websocket.Dialer{
			NetDialContext:   dial,
			HandshakeTimeout: 5 * time.Second,
		},
		socketPath: socketPath,
		logger:     logrus.NewEntry(logrus.StandardLogger()),
	}
}

// WithLogger sets the logger handed to bus connections.
func (c *RemoteClient) WithLogger(logger *logrus.Entry) *RemoteClient {
	c.logger = logger
	return c
}

// SocketPath returns the socket the client dials.
func (c *RemoteClient) SocketPath() string { return c.socketPath }

// GetState returns the canonical tree.
func (c *RemoteClient) GetState(ctx context.Context) (*models.StateResponse, error) {
	var out models.StateResponse
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Dispatch sends one action.
func (c *RemoteClient) Dispatch(ctx context.Context, a action.Action) (*models.DispatchResponse, error) {
	body, err := action.Marshal(a)
	if err != nil {
		return nil, lperrors.Wrap(err, lperrors.ErrCodeInvalidInput, "failed to encode action")
	}
	var out models.DispatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/dispatch", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenURL hands url to the daemon.
func (c *RemoteClient) OpenURL(ctx context.Context, url string) (*models.DispatchResponse, error) {
	body, err := json.Marshal(models.OpenRequest{URL: url})
	if err != nil {
		return nil, err
	}
	var out models.DispatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/open", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DispatchLog returns the recent dispatch log.
func (c *RemoteClient) DispatchLog(ctx context.Context) ([]state.LogEntry, error) {
	var out []state.LogEntry
	if err := c.do(ctx, http.MethodGet, "/api/log", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetConfig returns the running configuration.
func (c *RemoteClient) GetConfig(ctx context.Context) (*models.RunningConfig, error) {
	var out models.RunningConfig
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connect dials the websocket bus. The returned connection is not started;
// register handlers, then call Start.
func (c *RemoteClient) Connect(ctx context.Context) (*bus.WSConn, error) {
	conn, _, err := c.dialer.DialContext(ctx, "ws://unix/api/bus", nil)
	if err != nil {
		return nil, lperrors.Wrap(err, lperrors.ErrCodeDaemonNotRunning, "failed to connect to daemon bus").
			WithDetail("socket", c.socketPath)
	}
	return bus.NewWSConn(conn, c.logger), nil
}

// IsRunning checks if the daemon is responding.
func (c *RemoteClient) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Close releases idle connections.
func (c *RemoteClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do performs one request. Non-2xx responses carrying a coded error body
// are returned as that error.
func (c *RemoteClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return lperrors.Wrap(err, lperrors.ErrCodeDaemonNotRunning, "failed to reach daemon").
			WithDetail("socket", c.socketPath)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read daemon response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var le lperrors.LinkError
		if json.Unmarshal(data, &le) == nil && le.Code != "" {
			return &le
		}
		return lperrors.New(lperrors.ErrCodeInternal, fmt.Sprintf("daemon returned status %d: %s", resp.StatusCode, bytes.TrimSpace(data))).
			WithDetail("status", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
