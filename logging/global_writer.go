package logging

import (
	"io"
	"os"
	"sync"
)

// switchWriter forwards to a writer that can be replaced while loggers hold
// a reference to it.
type switchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) swap(w io.Writer) io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.w
	s.w = w
	return prev
}

// stderr is the console sink of every logger.
var stderr = &switchWriter{w: os.Stderr}

// SetGlobalOutput sends console log output to w.
func SetGlobalOutput(w io.Writer) {
	stderr.swap(w)
}

// GetGlobalOutput returns the console sink loggers write to.
func GetGlobalOutput() io.Writer {
	return stderr
}

// Redirect sends console log output to w until the returned func is
// called, which restores the previous destination. A TUI uses it to keep
// log lines off the screen it draws.
func Redirect(w io.Writer) (restore func()) {
	prev := stderr.swap(w)
	var once sync.Once
	return func() { once.Do(func() { stderr.swap(prev) }) }
}
