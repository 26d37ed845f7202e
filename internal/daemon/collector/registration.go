package collector

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/registrar"
)

// RegistrationHandler registers linkpicker as the default URL handler on
// the first run and reports the resulting status on every start.
type RegistrationHandler struct {
	registrar registrar.Registrar
	firstRun  func() bool
	logger    *logrus.Entry
}

// NewRegistrationHandler creates a RegistrationHandler. firstRun is asked
// when the store becomes ready.
func NewRegistrationHandler(r registrar.Registrar, firstRun func() bool, logger *logrus.Entry) *RegistrationHandler {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RegistrationHandler{registrar: r, firstRun: firstRun, logger: logger}
}

func (h *RegistrationHandler) Name() string { return "registration" }

func (h *RegistrationHandler) Handles(a action.Action) bool {
	_, ok := a.(action.StoreReady)
	return ok
}

func (h *RegistrationHandler) Run(ctx context.Context, _ store.Applied, dispatch Dispatch) error {
	if h.firstRun != nil && h.firstRun() {
		if err := h.registrar.Register(ctx); err != nil {
			h.logger.WithError(err).Warn("Failed to register as default URL handler")
		} else {
			h.logger.Info("Registered as default URL handler")
		}
	}

	isDefault, err := h.registrar.IsDefault(ctx)
	if err != nil {
		h.logger.WithError(err).Debug("Default handler check failed")
		isDefault = false
	}
	return dispatch(action.DefaultClientStatus{IsDefault: isDefault})
}
