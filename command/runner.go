package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultSettle is how long Launch waits for a process that exits straight
// away before declaring it started.
const DefaultSettle = 750 * time.Millisecond

// Runner starts target applications.
type Runner struct {
	executor Executor
	logger   *logrus.Entry
	settle   time.Duration
}

// NewRunner creates a Runner. A nil executor means RealExecutor.
func NewRunner(executor Executor, logger *logrus.Entry) *Runner {
	if executor == nil {
		executor = &RealExecutor{}
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{executor: executor, logger: logger, settle: DefaultSettle}
}

// WithSettle changes how long Launch watches a new process for early failure.
func (r *Runner) WithSettle(d time.Duration) *Runner {
	r.settle = d
	return r
}

// Launch expands template with url and starts it. If the process exits
// non-zero within the settle window (or before ctx is done), that is
// reported as an error. A process that keeps running is reaped in the
// background and its exit status is only logged.
func (r *Runner) Launch(ctx context.Context, template, url string) error {
	args, err := Split(template)
	if err != nil {
		return err
	}
	argv := Expand(args, url)

	// Not CommandContext: the launched app must outlive the request.
	cmd := r.executor.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	timer := time.NewTimer(r.settle)
	defer timer.Stop()

	select {
	case err := <-exited:
		if err != nil {
			return fmt.Errorf("%s exited: %w", argv[0], err)
		}
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	go func() {
		err := <-exited
		fields := logrus.Fields{"command": argv[0], "pid": cmd.Process.Pid}
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			r.logger.WithFields(fields).Debug("Launched process exited")
		case errors.As(err, &exitErr):
			r.logger.WithFields(fields).WithField("exit_code", exitErr.ExitCode()).Warn("Launched process exited with error")
		default:
			r.logger.WithFields(fields).WithError(err).Warn("Launched process failed")
		}
	}()
	return nil
}
