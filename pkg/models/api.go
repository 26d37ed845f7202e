package models

import "time"

// StateResponse is returned by GET /api/state.
type StateResponse struct {
	Rev         uint64 `json:"rev"`
	Phase       string `json:"phase"`
	FirstRun    bool   `json:"first_run"`
	Subscribers int    `json:"subscribers"`
	Tree        Tree   `json:"tree"`
}

// OpenRequest is the body of POST /api/open.
type OpenRequest struct {
	URL string `json:"url"`
}

// DispatchResponse acknowledges POST /api/dispatch and POST /api/open.
type DispatchResponse struct {
	Type string `json:"type"`
	Rev  uint64 `json:"rev"`
}

// RunningConfig is returned by GET /api/config so clients can see what the
// daemon is actually using.
type RunningConfig struct {
	ConfigFile    string        `json:"config_file,omitempty"`
	Socket        string        `json:"socket"`
	Backend       string        `json:"backend"`
	StatePath     string        `json:"state_path,omitempty"`
	Catalog       int           `json:"catalog"`
	FlushDebounce time.Duration `json:"flush_debounce"`
	FlushInterval time.Duration `json:"flush_interval,omitempty"`
	ScanTimeout   time.Duration `json:"scan_timeout"`
	Scanning      bool          `json:"scanning"`
	PID           int           `json:"pid"`
	StartedAt     time.Time     `json:"started_at"`
}
