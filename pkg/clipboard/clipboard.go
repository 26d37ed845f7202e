// Package clipboard places URLs on the system clipboard.
package clipboard

import (
	"errors"
	"sync"

	cb "github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")

// Writer writes text to a clipboard.
type Writer interface {
	WriteAll(text string) error
}

// System is the OS clipboard.
type System struct{}

// WriteAll copies text to the OS clipboard.
func (System) WriteAll(text string) error {
	if cb.Unsupported {
		return ErrUnsupported
	}
	return cb.WriteAll(text)
}

// Memory is an in-process clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
	Err  error
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.text = text
	return nil
}

// Text returns what was last written.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
