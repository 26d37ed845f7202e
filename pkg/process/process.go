// Package process inspects and signals other processes.
package process

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// IsProcessAlive checks if a process with the given PID is still running.
// It uses a signal-sending method that is cross-platform for Unix-like systems (macOS, Linux).
func IsProcessAlive(pid int) bool {
	// PID 0 or less is invalid.
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 checks for existence without delivering anything. EPERM means
	// the process exists but belongs to someone else.
	err = process.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}

// Terminate sends SIGTERM to pid and waits up to timeout for it to exit.
// It returns an error if the process is still alive afterwards.
func Terminate(pid int, timeout time.Duration) error {
	if !IsProcessAlive(pid) {
		return nil
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send SIGTERM to %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !IsProcessAlive(pid) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("process %d did not exit within %s", pid, timeout)
}
