package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/models"
	"gopkg.in/yaml.v3"
)

// YAMLFile stores the persisted slices in a single YAML document.
type YAMLFile struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewYAMLFile returns an adapter for path. The file is created on first save.
func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: path}
}

// Path returns the file location.
func (f *YAMLFile) Path() string { return f.path }

// Load reads the state file. A missing file is a first run.
func (f *YAMLFile) Load(ctx context.Context) (models.Persisted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return models.Persisted{}, fmt.Errorf("yaml state file %s: closed", f.path)
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultPersisted(), nil
		}
		return models.Persisted{}, lperrors.PersistFailed(lperrors.ErrCodePersistLoad, BackendYAML, fmt.Errorf("read state file: %w", err))
	}

	var p models.Persisted
	if err := yaml.Unmarshal(data, &p); err != nil {
		return models.Persisted{}, lperrors.PersistFailed(lperrors.ErrCodePersistLoad, BackendYAML, fmt.Errorf("parse state file: %w", err))
	}
	first := p.FirstRun
	p = normalize(p)
	p.FirstRun = first
	return p, nil
}

// Save writes the state file through a temporary file and rename.
func (f *YAMLFile) Save(ctx context.Context, p models.Persisted) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("yaml state file %s: closed", f.path)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendYAML, fmt.Errorf("create state directory: %w", err))
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendYAML, fmt.Errorf("marshal state: %w", err))
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yml")
	if err != nil {
		return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendYAML, fmt.Errorf("create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendYAML, fmt.Errorf("write state file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendYAML, fmt.Errorf("write state file: %w", err))
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendYAML, fmt.Errorf("replace state file: %w", err))
	}
	return nil
}

// Close marks the adapter closed.
func (f *YAMLFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
