// Package store provides the canonical state store owned by the linkpicker
// daemon.
package store

import (
	"time"

	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/sirupsen/logrus"
)

// Phase is the lifecycle state of a Store.
type Phase int

const (
	Uninitialized Phase = iota
	Ready
	ShuttingDown
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case ShuttingDown:
		return "shutting-down"
	}
	return "unknown"
}

// Applied describes one action after the reducers ran. Tree is the state
// that resulted from it.
type Applied struct {
	Action action.Action
	Rev    uint64
	Origin string
	Seq    uint64
	Tree   models.Tree
}

// Options configures a Store.
type Options struct {
	// FlushDebounce delays a save after a persisted slice changes so bursts
	// of edits produce one write. Defaults to 250ms.
	FlushDebounce time.Duration
	// FlushInterval, when positive, also saves on a fixed period.
	FlushInterval time.Duration
	// LogSize bounds the dispatch log. Defaults to 200.
	LogSize int
	// WatchBuffer sizes each watcher channel. Defaults to 64.
	WatchBuffer int
	Logger      *logrus.Entry
}

func (o *Options) setDefaults() {
	if o.FlushDebounce <= 0 {
		o.FlushDebounce = 250 * time.Millisecond
	}
	if o.LogSize <= 0 {
		o.LogSize = 200
	}
	if o.WatchBuffer <= 0 {
		o.WatchBuffer = 64
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		o.Logger = logrus.NewEntry(l)
	}
}
