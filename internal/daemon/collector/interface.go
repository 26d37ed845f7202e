// Package collector provides the daemon's effect handlers. Each one reacts
// to applied actions by talking to the outside world and reports the
// outcome by dispatching new actions.
package collector

import (
	"context"

	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/pkg/action"
)

// Dispatch applies an action to the canonical store.
type Dispatch func(action.Action) error

// Handler is an effect triggered by applied actions.
type Handler interface {
	// Name returns the handler's name for logging.
	Name() string

	// Handles reports whether Run should be called for a.
	Handles(a action.Action) bool

	// Run performs the effect for one applied action. It runs outside the
	// dispatch path and reports results through dispatch. A returned error
	// is only logged; failures the user should see are dispatched as
	// failure actions.
	Run(ctx context.Context, applied store.Applied, dispatch Dispatch) error
}
