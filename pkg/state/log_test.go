package state

import (
	"testing"

	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/stretchr/testify/assert"
)

func TestLogRing(t *testing.T) {
	l := NewLog(3)
	assert.Empty(t, l.Entries())

	for rev := uint64(1); rev <= 5; rev++ {
		l.Add(LogEntry{Type: action.TypeURLReset, Rev: rev})
	}

	entries := l.Entries()
	revs := make([]uint64, 0, len(entries))
	for _, e := range entries {
		revs = append(revs, e.Rev)
	}
	assert.Equal(t, []uint64{3, 4, 5}, revs)
}
