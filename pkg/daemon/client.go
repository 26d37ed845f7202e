// Package daemon is the client side of the linkpicker daemon: HTTP calls
// over its unix socket, the websocket bus used by surfaces, and the
// configuration watcher the daemon runs.
package daemon

import (
	"context"

	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/bus"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/state"
)

// Client defines the interface for interacting with the linkpicker daemon.
type Client interface {
	// GetState returns the canonical tree and store status.
	GetState(ctx context.Context) (*models.StateResponse, error)

	// Dispatch applies one action in the daemon.
	Dispatch(ctx context.Context, a action.Action) (*models.DispatchResponse, error)

	// OpenURL hands a URL to the daemon as the OS would.
	OpenURL(ctx context.Context, url string) (*models.DispatchResponse, error)

	// DispatchLog returns the most recent applied actions.
	DispatchLog(ctx context.Context) ([]state.LogEntry, error)

	// GetConfig returns the configuration the daemon is running with.
	GetConfig(ctx context.Context) (*models.RunningConfig, error)

	// Connect opens the replication bus. The caller owns the returned
	// channel and must Close it.
	Connect(ctx context.Context) (*bus.WSConn, error)

	// IsRunning returns true if the daemon is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}

var _ Client = (*RemoteClient)(nil)
