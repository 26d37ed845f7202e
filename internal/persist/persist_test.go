package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/hotkey"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() models.Persisted {
	return models.Persisted{
		Favourite: "firefox",
		Hidden:    []string{"safari", "chrome"},
		Hotkeys:   hotkey.Table{"firefox": "f", "chrome": ""},
	}
}

func TestAdapters(t *testing.T) {
	dir := t.TempDir()
	backends := []struct {
		name string
		open func(t *testing.T) Adapter
	}{
		{name: "yaml", open: func(t *testing.T) Adapter {
			return NewYAMLFile(filepath.Join(dir, "state", "prefs.yml"))
		}},
		{name: "sqlite", open: func(t *testing.T) Adapter {
			a, err := NewSQLite(filepath.Join(dir, "db", "linkpicker.db"))
			require.NoError(t, err)
			return a
		}},
		{name: "memory", open: func(t *testing.T) Adapter { return NewMemory() }},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			a := b.open(t)

			first, err := a.Load(ctx)
			require.NoError(t, err)
			assert.True(t, first.FirstRun)
			assert.Empty(t, first.Hidden)

			require.NoError(t, a.Save(ctx, sample()))

			got, err := a.Load(ctx)
			require.NoError(t, err)
			assert.False(t, got.FirstRun)
			assert.Equal(t, "firefox", got.Favourite)
			assert.Equal(t, []string{"chrome", "safari"}, got.Hidden)
			assert.Equal(t, hotkey.Table{"firefox": "f", "chrome": ""}, got.Hotkeys)

			// Save replaces rather than merges.
			require.NoError(t, a.Save(ctx, models.Persisted{Hidden: []string{}, Hotkeys: hotkey.Table{"x": "y"}}))
			got, err = a.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, got.Favourite)
			assert.Empty(t, got.Hidden)
			assert.Equal(t, hotkey.Table{"x": "y"}, got.Hotkeys)

			require.NoError(t, a.Close())
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "linkpicker.db")

	a, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, sample()))
	require.NoError(t, a.Close())

	b, err := NewSQLite(path)
	require.NoError(t, err)
	defer b.Close()
	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "firefox", got.Favourite)
}

func TestYAMLLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yml")
	require.NoError(t, os.WriteFile(path, []byte("favourite: [unterminated"), 0644))

	_, err := NewYAMLFile(path).Load(context.Background())
	require.Error(t, err)
	assert.True(t, lperrors.Is(err, lperrors.ErrCodePersistLoad))
}

func TestYAMLLoadRepairsHotkeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yml")
	require.NoError(t, os.WriteFile(path, []byte("hotkeys:\n  chrome: C\n  firefox: c\n"), 0644))

	got, err := NewYAMLFile(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hotkey.Table{"chrome": "c", "firefox": ""}, got.Hotkeys)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	a, err := Open(Config{Path: filepath.Join(dir, "prefs.yml")})
	require.NoError(t, err)
	assert.IsType(t, &YAMLFile{}, a)

	a, err = Open(Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, a)

	_, err = Open(Config{Backend: BackendYAML})
	assert.True(t, lperrors.Is(err, lperrors.ErrCodeConfigInvalid))

	_, err = Open(Config{Backend: "etcd", Path: "x"})
	assert.True(t, lperrors.Is(err, lperrors.ErrCodePersistBackend))
}
