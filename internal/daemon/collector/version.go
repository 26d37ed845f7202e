package collector

import (
	"context"

	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/version"
)

// VersionHandler reports the running build once the store is ready.
type VersionHandler struct {
	// Version defaults to version.Short.
	Version func() string
}

func (h *VersionHandler) Name() string { return "version" }

func (h *VersionHandler) Handles(a action.Action) bool {
	_, ok := a.(action.StoreReady)
	return ok
}

func (h *VersionHandler) Run(_ context.Context, _ store.Applied, dispatch Dispatch) error {
	v := version.Short
	if h.Version != nil {
		v = h.Version
	}
	return dispatch(action.VersionReceived{Version: v()})
}
