package daemon

import (
	"net"
	"os"
	"time"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/paths"
)

// New returns a RemoteClient for socketPath (the default socket when empty)
// once something is accepting connections on it. Otherwise it returns a
// DAEMON_NOT_RUNNING error.
func New(socketPath string) (*RemoteClient, error) {
	if socketPath == "" {
		socketPath = paths.SocketPath()
	}
	if _, err := os.Stat(socketPath); err != nil {
		return nil, lperrors.DaemonNotRunning(socketPath)
	}
	conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
	if err != nil {
		return nil, lperrors.DaemonNotRunning(socketPath)
	}
	conn.Close()
	return NewRemoteClient(socketPath), nil
}
