package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/linkpicker/errors"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "linkpickerd.pid")

	require.NoError(t, Acquire(path))
	pid, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	running, got, err := IsRunning(path)
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), got)

	// Re-acquiring from the same process is allowed.
	require.NoError(t, Acquire(path))

	require.NoError(t, Release(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, Release(path))
}

func TestAcquireRejectsLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.pid")
	// The parent of the test binary is alive for the duration of the test.
	ppid := os.Getppid()
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(ppid)), 0o644))

	err := Acquire(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonAlreadyRunning))

	// Release leaves another process's file alone.
	require.NoError(t, Release(path))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestAcquireReplacesStaleFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"dead pid", "999999999"},
		{"garbage", "not-a-pid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "d.pid")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			require.NoError(t, Acquire(path))
			pid, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, os.Getpid(), pid)
		})
	}
}

func TestIsRunningMissingFile(t *testing.T) {
	running, pid, err := IsRunning(filepath.Join(t.TempDir(), "none.pid"))
	require.NoError(t, err)
	assert.False(t, running)
	assert.Zero(t, pid)
}

func TestIsRunningGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.pid")
	require.NoError(t, os.WriteFile(path, []byte("zzz"), 0o644))

	running, pid, err := IsRunning(path)
	require.NoError(t, err)
	assert.False(t, running)
	assert.Zero(t, pid)
}
