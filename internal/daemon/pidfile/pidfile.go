// Package pidfile keeps the linkpicker daemon to one instance per user.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/process"
)

// Acquire claims path for the current process. The file is created with
// O_EXCL, so two daemons starting together cannot both win. A file naming
// a live process other than this one yields DAEMON_ALREADY_RUNNING; a file
// naming a dead process or holding garbage is replaced.
func Acquire(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create pid directory: %w", err)
	}
	self := os.Getpid()

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(self))
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(path)
				return fmt.Errorf("write pid file: %w", werr)
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create pid file: %w", err)
		}

		pid, rerr := Read(path)
		switch {
		case rerr == nil && pid == self:
			return nil
		case rerr == nil && process.IsProcessAlive(pid):
			return errors.DaemonAlreadyRunning(pid)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale pid file: %w", err)
		}
	}
	return errors.New(errors.ErrCodeDaemonAlreadyRunning, "pid file was recreated while starting").
		WithDetail("path", path)
}

// Release removes path unless it names another process.
func Release(path string) error {
	pid, err := Read(path)
	switch {
	case os.IsNotExist(err):
		return nil
	case err == nil && pid != os.Getpid():
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Read parses the PID stored in path.
func Read(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(content)))
}

// IsRunning reports whether path names a live process. A missing or
// unreadable file means no daemon.
func IsRunning(path string) (bool, int, error) {
	pid, err := Read(path)
	switch {
	case os.IsNotExist(err):
		return false, 0, nil
	case err != nil:
		if _, garbage := err.(*strconv.NumError); garbage {
			return false, 0, nil
		}
		return false, 0, err
	}
	return process.IsProcessAlive(pid), pid, nil
}
