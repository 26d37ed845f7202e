package persist

import (
	"context"
	"fmt"
	"sync"

	"github.com/grovetools/linkpicker/pkg/models"
)

// Memory keeps the persisted slices in process. It backs ephemeral daemons
// and tests.
type Memory struct {
	mu      sync.Mutex
	data    *models.Persisted
	saves   int
	closes  int
	LoadErr error
	SaveErr error
}

// NewMemory returns an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWith returns an adapter preloaded with p.
func NewMemoryWith(p models.Persisted) *Memory {
	return &Memory{data: &p}
}

func (m *Memory) Load(ctx context.Context) (models.Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return models.Persisted{}, m.LoadErr
	}
	if m.closes > 0 {
		return models.Persisted{}, fmt.Errorf("memory adapter closed")
	}
	if m.data == nil {
		return models.DefaultPersisted(), nil
	}
	p := *m.data
	p.Hidden = append([]string{}, p.Hidden...)
	p.Hotkeys = p.Hotkeys.Clone()
	return p, nil
}

func (m *Memory) Save(ctx context.Context, p models.Persisted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.closes > 0 {
		return fmt.Errorf("memory adapter closed")
	}
	first := p.FirstRun
	p = normalize(p)
	p.FirstRun = first
	m.data = &p
	m.saves++
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

// Saved returns the last saved value and whether anything was saved.
func (m *Memory) Saved() (models.Persisted, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil || m.saves == 0 {
		return models.Persisted{}, false
	}
	return *m.data, true
}

// Saves returns how many successful saves happened.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Closes returns how many times Close was called.
func (m *Memory) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}
