// Package engine runs the daemon's effect handlers against the actions the
// canonical store applies.
package engine

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/linkpicker/internal/daemon/collector"
	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/pkg/action"
)

// Engine manages and runs all handlers.
type Engine struct {
	store    *store.Store
	handlers []collector.Handler
	logger   *logrus.Entry

	applied <-chan store.Applied
	stop    func()
}

// New creates an Engine watching st. It subscribes immediately so no action
// applied after New returns is missed, including StoreReady.
func New(st *store.Store, logger *logrus.Entry) *Engine {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	applied, stop := st.Watch()
	return &Engine{
		store:   st,
		logger:  logger,
		applied: applied,
		stop:    stop,
	}
}

// Register adds a handler to the engine. Call it before Start.
func (e *Engine) Register(h collector.Handler) {
	e.handlers = append(e.handlers, h)
}

// Start runs handlers for applied actions and blocks until ctx is canceled
// or the store closes its watch channel. In-flight handlers are awaited.
func (e *Engine) Start(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()
	defer e.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case applied, ok := <-e.applied:
			if !ok {
				return
			}
			for _, h := range e.handlers {
				if !h.Handles(applied.Action) {
					continue
				}
				wg.Add(1)
				go func(h collector.Handler) {
					defer wg.Done()
					e.run(ctx, h, applied)
				}(h)
			}
		}
	}
}

func (e *Engine) run(ctx context.Context, h collector.Handler, applied store.Applied) {
	log := e.logger.WithFields(logrus.Fields{
		"handler": h.Name(),
		"action":  applied.Action.Type(),
		"rev":     applied.Rev,
	})
	log.Debug("Running handler")

	dispatch := func(a action.Action) error {
		if err := e.store.Dispatch(a); err != nil {
			log.WithError(err).WithField("result", a.Type()).Debug("Result dropped")
			return err
		}
		return nil
	}
	if err := h.Run(ctx, applied, dispatch); err != nil {
		log.WithError(err).Debug("Handler finished with error")
	}
}

// Store returns the engine's state store.
func (e *Engine) Store() *store.Store {
	return e.store
}
