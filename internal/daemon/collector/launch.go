package collector

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/linkpicker/command"
	"github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/pkg/action"
)

// Launcher starts a command template with a URL.
type Launcher interface {
	Launch(ctx context.Context, template, url string) error
}

var _ Launcher = (*command.Runner)(nil)

// LaunchHandler opens the URL with the requested target.
type LaunchHandler struct {
	launcher Launcher
	timeout  time.Duration
	logger   *logrus.Entry
}

// NewLaunchHandler creates a LaunchHandler. timeout bounds how long a launch
// may take before it is considered started.
func NewLaunchHandler(launcher Launcher, timeout time.Duration, logger *logrus.Entry) *LaunchHandler {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &LaunchHandler{launcher: launcher, timeout: timeout, logger: logger}
}

func (h *LaunchHandler) Name() string { return "launch" }

func (h *LaunchHandler) Handles(a action.Action) bool {
	_, ok := a.(action.TargetLaunchRequested)
	return ok
}

// Run resolves the target against the tree the request was applied to, so
// a rescan racing the request cannot change which command runs.
func (h *LaunchHandler) Run(ctx context.Context, applied store.Applied, dispatch Dispatch) error {
	req := applied.Action.(action.TargetLaunchRequested)
	log := h.logger.WithField("target", req.TargetID)

	fail := func(err error) error {
		log.WithError(err).Warn("Launch failed")
		return dispatch(action.TargetLaunchFailed{TargetID: req.TargetID, Reason: err.Error()})
	}

	target, ok := applied.Tree.Target(req.TargetID)
	if !ok {
		return fail(errors.UnknownTarget(req.TargetID))
	}
	url := req.URL
	if url == "" {
		url = applied.Tree.URL
	}
	if url == "" {
		return fail(errors.New(errors.ErrCodeNoURL, "no URL to open"))
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := h.launcher.Launch(ctx, target.Command, url); err != nil {
		return fail(errors.LaunchFailed(target.ID, err))
	}

	log.WithField("url", url).Info("Launched target")
	return dispatch(action.TargetLaunched{TargetID: target.ID})
}
