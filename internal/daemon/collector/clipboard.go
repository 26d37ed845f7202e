package collector

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/clipboard"
)

// ClipboardHandler copies the current URL.
type ClipboardHandler struct {
	writer clipboard.Writer
	logger *logrus.Entry
}

func NewClipboardHandler(w clipboard.Writer, logger *logrus.Entry) *ClipboardHandler {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ClipboardHandler{writer: w, logger: logger}
}

func (h *ClipboardHandler) Name() string { return "clipboard" }

func (h *ClipboardHandler) Handles(a action.Action) bool {
	_, ok := a.(action.URLCopyRequested)
	return ok
}

func (h *ClipboardHandler) Run(_ context.Context, applied store.Applied, dispatch Dispatch) error {
	url := applied.Tree.URL
	if url == "" {
		return dispatch(action.URLCopyFailed{Reason: "no URL to copy"})
	}
	if err := h.writer.WriteAll(url); err != nil {
		h.logger.WithError(err).Warn("Clipboard write failed")
		return dispatch(action.URLCopyFailed{Reason: err.Error()})
	}
	h.logger.Debug("Copied URL to clipboard")
	return nil
}
