// Package scanner finds which catalog applications are installed.
package scanner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/grovetools/linkpicker/pkg/models"
)

// Scanner reports installed applications keyed by app ID.
type Scanner interface {
	Scan(ctx context.Context) (map[string]models.Presence, error)
}

// Probe says how to detect one application: Path is either an absolute
// file or directory (an app bundle, say) or a program name looked up on
// PATH. Several probes may share an app ID; the first hit wins.
type Probe struct {
	AppID string
	Path  string
}

// PathScanner checks probes against the filesystem.
type PathScanner struct {
	Probes []Probe
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// NewPathScanner returns a scanner for probes.
func NewPathScanner(probes []Probe) *PathScanner {
	return &PathScanner{Probes: probes, LookPath: exec.LookPath}
}

// Scan probes every application. It stops early when ctx is done and
// returns what it found so far with the context error.
func (s *PathScanner) Scan(ctx context.Context) (map[string]models.Presence, error) {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	found := make(map[string]models.Presence)
	for _, p := range s.Probes {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		if p.AppID == "" || p.Path == "" {
			continue
		}
		if _, ok := found[p.AppID]; ok {
			continue
		}
		if path, ok := probe(p.Path, lookPath); ok {
			found[p.AppID] = models.Presence{AppID: p.AppID, Path: path}
		}
	}
	return found, nil
}

func probe(path string, lookPath func(string) (string, error)) (string, bool) {
	path = expandHome(path)
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
		return "", false
	}
	resolved, err := lookPath(path)
	if err != nil {
		return "", false
	}
	return resolved, true
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Static always returns the same result. It backs tests and the --no-scan
// daemon flag.
type Static struct {
	Installed map[string]models.Presence
	Err       error
}

func (s Static) Scan(ctx context.Context) (map[string]models.Presence, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[string]models.Presence, len(s.Installed))
	for k, v := range s.Installed {
		out[k] = v
	}
	return out, nil
}
