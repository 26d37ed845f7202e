package state

import (
	"sync"
	"time"

	"github.com/grovetools/linkpicker/pkg/action"
)

// LogEntry records one applied action. Payloads are not kept.
type LogEntry struct {
	Type   action.Type `json:"type"`
	Rev    uint64      `json:"rev"`
	Origin string      `json:"origin,omitempty"`
	Seq    uint64      `json:"seq,omitempty"`
	At     time.Time   `json:"at"`
}

// Log is a fixed-size ring of recent dispatches. It is safe for concurrent
// use.
type Log struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

// NewLog creates a log holding at most size entries.
func NewLog(size int) *Log {
	if size <= 0 {
		size = 1
	}
	return &Log{entries: make([]LogEntry, size)}
}

// Add records an entry, overwriting the oldest when full.
func (l *Log) Add(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns the recorded entries, oldest first.
func (l *Log) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.full {
		return append([]LogEntry{}, l.entries[:l.next]...)
	}
	out := make([]LogEntry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	return append(out, l.entries[:l.next]...)
}
