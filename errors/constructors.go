package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *LinkError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *LinkError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// DaemonNotRunning creates an error for a missing or unreachable daemon
func DaemonNotRunning(socket string) *LinkError {
	return New(ErrCodeDaemonNotRunning, "linkpicker daemon is not running").
		WithDetail("socket", socket)
}

// DaemonAlreadyRunning creates an error for a second daemon instance
func DaemonAlreadyRunning(pid int) *LinkError {
	return New(ErrCodeDaemonAlreadyRunning, fmt.Sprintf("daemon already running with PID %d", pid)).
		WithDetail("pid", pid)
}

// StoreNotReady creates an error for operations that need a Ready store
func StoreNotReady(phase string) *LinkError {
	return New(ErrCodeStoreNotReady, "store is not ready").
		WithDetail("phase", phase)
}

// StoreShuttingDown creates an error for actions arriving after shutdown began
func StoreShuttingDown() *LinkError {
	return New(ErrCodeStoreShuttingDown, "store is shutting down and accepts no further actions")
}

// PersistFailed wraps a persistence backend failure
func PersistFailed(code ErrorCode, backend string, err error) *LinkError {
	return Wrap(err, code, fmt.Sprintf("persistence backend %s failed", backend)).
		WithDetail("backend", backend)
}

// UnknownTarget creates an error for a target ID missing from the scanned set
func UnknownTarget(id string) *LinkError {
	return New(ErrCodeUnknownTarget, fmt.Sprintf("target '%s' is not available", id)).
		WithDetail("target", id)
}

// LaunchFailed wraps a failure to start a target
func LaunchFailed(id string, err error) *LinkError {
	linkErr := Wrap(err, ErrCodeLaunchFailed, fmt.Sprintf("failed to launch '%s'", id)).
		WithDetail("target", id)

	if exitErr, ok := err.(*exec.ExitError); ok {
		linkErr = linkErr.WithDetail("exitCode", exitErr.ExitCode())
	}
	return linkErr
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *LinkError {
	linkErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		linkErr = linkErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return linkErr
}
