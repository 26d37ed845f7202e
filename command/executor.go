package command

import (
	"context"
	"os/exec"
	"syscall"
	"time"
)

// waitDelay bounds how long a killed helper may keep its output pipes open.
const waitDelay = 2 * time.Second

// Executor builds the processes linkpicker runs. Tests replace it to record
// argv or to run a stub binary instead.
type Executor interface {
	// Command builds a target launch. The process must outlive the caller.
	Command(name string, args ...string) *exec.Cmd
	// CommandContext builds a short-lived helper bound to ctx.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RealExecutor runs programs through os/exec.
type RealExecutor struct{}

// Command starts name in its own session, so signals sent to the daemon's
// process group do not reach the launched application.
func (e *RealExecutor) Command(name string, args ...string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd
}

func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	return cmd
}
