package collector

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/scanner"
)

// ScanHandler looks for installed applications when the store becomes
// ready and whenever a rescan is requested.
type ScanHandler struct {
	mu      sync.RWMutex
	scanner scanner.Scanner
	catalog []models.Target
	timeout time.Duration
	logger  *logrus.Entry

	// running serialises scans; a request arriving mid-scan starts another
	// one afterwards so the latest catalog always wins.
	running sync.Mutex
}

// NewScanHandler creates a ScanHandler. A zero timeout means no bound.
func NewScanHandler(sc scanner.Scanner, catalog []models.Target, timeout time.Duration, logger *logrus.Entry) *ScanHandler {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ScanHandler{scanner: sc, catalog: catalog, timeout: timeout, logger: logger}
}

// SetCatalog replaces the scanner and catalog used by later scans.
func (h *ScanHandler) SetCatalog(sc scanner.Scanner, catalog []models.Target) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scanner = sc
	h.catalog = append([]models.Target{}, catalog...)
}

func (h *ScanHandler) Name() string { return "scan" }

func (h *ScanHandler) Handles(a action.Action) bool {
	switch a.(type) {
	case action.StoreReady, action.AppsScanRequested:
		return true
	}
	return false
}

func (h *ScanHandler) Run(ctx context.Context, _ store.Applied, dispatch Dispatch) error {
	h.running.Lock()
	defer h.running.Unlock()

	h.mu.RLock()
	sc, catalog := h.scanner, h.catalog
	h.mu.RUnlock()

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	installed, err := sc.Scan(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Application scan failed")
		return dispatch(action.AppsScanFailed{Reason: err.Error()})
	}

	targets := models.AvailableTargets(catalog, installed)
	h.logger.WithFields(logrus.Fields{
		"installed": len(installed),
		"targets":   len(targets),
		"took":      time.Since(start).Round(time.Millisecond),
	}).Info("Application scan complete")
	return dispatch(action.AppsScanned{Installed: installed, Targets: targets})
}
