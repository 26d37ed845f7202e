// Package server provides the HTTP server for the linkpicker daemon.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/internal/daemon/store"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/bus"
	"github.com/grovetools/linkpicker/pkg/models"
)

const maxBodySize = 1 << 20

// Server manages the daemon's HTTP server over a Unix socket.
type Server struct {
	logger        *logrus.Entry
	server        *http.Server
	store         *store.Store
	runningConfig *models.RunningConfig
	upgrader      websocket.Upgrader

	mu     sync.Mutex
	conns  map[*bus.WSConn]struct{}
	closed bool
}

// New creates a new Server serving st.
func New(st *store.Store, logger *logrus.Entry) *Server {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		logger: logger,
		store:  st,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		conns: make(map[*bus.WSConn]struct{}),
	}
}

// SetRunningConfig sets the configuration reported by /api/config.
func (s *Server) SetRunningConfig(cfg *models.RunningConfig) {
	s.runningConfig = cfg
}

// Handler returns the routed handler. Plain HTTP/1.1 requests, including
// websocket upgrades, pass through h2c untouched.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/dispatch", s.handleDispatch)
	mux.HandleFunc("/api/open", s.handleOpen)
	mux.HandleFunc("/api/log", s.handleGetLog)
	mux.HandleFunc("/api/config", s.handleGetConfig)
	mux.HandleFunc("/api/bus", s.handleBus)

	return h2c.NewHandler(mux, &http2.Server{})
}

// ListenAndServe starts the daemon on the given unix socket path.
// It blocks until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	// Cleanup stale socket
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	// Set restrictive permissions on socket
	if err := os.Chmod(socketPath, 0o600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = listener.Close()
		return http.ErrServerClosed
	}
	s.server = &http.Server{Handler: s.Handler()}
	srv := s.server
	s.mu.Unlock()

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	return srv.Serve(listener)
}

// Shutdown gracefully stops the server and closes every bus connection,
// which the HTTP server no longer tracks once they are upgraded.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	s.mu.Lock()
	s.closed = true
	srv := s.server
	conns := make([]*bus.WSConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// Connections returns the number of open bus connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// handleGetState returns the canonical tree as JSON.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tree, rev := s.store.Snapshot()
	writeJSON(w, http.StatusOK, models.StateResponse{
		Rev:         rev,
		Phase:       s.store.Phase().String(),
		FirstRun:    s.store.FirstRun(),
		Subscribers: s.store.Subscribers(),
		Tree:        tree,
	})
}

// handleDispatch applies one encoded action.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, lperrors.Wrap(err, lperrors.ErrCodeInvalidInput, "failed to read request body"))
		return
	}
	a, err := action.Unmarshal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, lperrors.Wrap(err, lperrors.ErrCodeInvalidInput, "invalid action"))
		return
	}
	if _, isSnapshot := a.(action.Snapshot); isSnapshot || action.IsControl(a) {
		writeError(w, http.StatusBadRequest, lperrors.New(lperrors.ErrCodeInvalidInput,
			fmt.Sprintf("%s cannot be dispatched", a.Type())))
		return
	}
	s.dispatch(w, r, a)
}

// handleOpen hands a URL to the store.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req models.OpenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, lperrors.Wrap(err, lperrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, lperrors.New(lperrors.ErrCodeNoURL, "url is required"))
		return
	}
	s.dispatch(w, r, action.URLReceived{URL: req.URL})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, a action.Action) {
	if err := s.store.Dispatch(a); err != nil {
		writeError(w, lperrors.HTTPStatus(err), err)
		return
	}
	s.logger.WithFields(logrus.Fields{
		"action": a.Type(),
		"agent":  r.UserAgent(),
	}).Debug("Dispatched over HTTP")
	writeJSON(w, http.StatusAccepted, models.DispatchResponse{Type: string(a.Type()), Rev: s.store.Rev()})
}

// handleGetLog returns the recent dispatch log.
func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.store.DispatchLog())
}

// handleGetConfig returns the running configuration as JSON.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.runningConfig == nil {
		http.Error(w, "config not initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.runningConfig)
}

// handleBus upgrades to a websocket carrying envelopes in both directions
// and attaches it to the store for as long as it stays open.
func (s *Server) handleBus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	ws := bus.NewWSConn(conn, s.logger.WithField("peer", "bus"))
	s.mu.Lock()
	s.conns[ws] = struct{}{}
	s.mu.Unlock()

	s.store.Connect(ws)
	ws.Start()
	s.logger.Debug("Bus client connected")

	go func() {
		<-ws.Done()
		s.mu.Lock()
		delete(s.conns, ws)
		s.mu.Unlock()
		s.logger.Debug("Bus client disconnected")
	}()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err as a coded JSON error body.
func writeError(w http.ResponseWriter, status int, err error) {
	le, ok := lperrors.As(err)
	if !ok {
		le = lperrors.Wrap(err, lperrors.ErrCodeInternal, err.Error())
	}
	writeJSON(w, status, le)
}
