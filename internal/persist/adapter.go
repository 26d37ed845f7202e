// Package persist loads and saves the slices of the state tree that survive
// restarts. Only the canonical store calls into it.
package persist

import (
	"context"
	"fmt"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/models"
)

// Adapter is a persistence backend.
type Adapter interface {
	// Load returns the persisted slices, or models.DefaultPersisted when
	// nothing has been saved yet.
	Load(ctx context.Context) (models.Persisted, error)
	// Save replaces whatever was stored before.
	Save(ctx context.Context, p models.Persisted) error
	// Close releases the backend. Load and Save fail afterwards.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config selects and locates a backend.
type Config struct {
	Backend string `yaml:"backend" toml:"backend" json:"backend,omitempty" jsonschema:"enum=yaml,enum=sqlite,enum=memory"`
	Path    string `yaml:"path" toml:"path" json:"path,omitempty"`
}

// Open creates the configured backend. An empty backend name means YAML.
func Open(cfg Config) (Adapter, error) {
	switch cfg.Backend {
	case "", BackendYAML:
		if cfg.Path == "" {
			return nil, lperrors.ConfigInvalid("persistence.path is required for the yaml backend")
		}
		return NewYAMLFile(cfg.Path), nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, lperrors.ConfigInvalid("persistence.path is required for the sqlite backend")
		}
		return NewSQLite(cfg.Path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, lperrors.New(lperrors.ErrCodePersistBackend,
			fmt.Sprintf("unknown persistence backend %q", cfg.Backend)).
			WithDetail("backend", cfg.Backend)
	}
}

func normalize(p models.Persisted) models.Persisted {
	return models.NewTree().WithPersisted(p).Persisted()
}
