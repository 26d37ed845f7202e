// Package surface implements the mirror store each UI surface keeps of the
// canonical state.
//
// A surface applies its own actions optimistically and forwards them to the
// canonical store. The tree it shows is its pending actions folded over the
// confirmed tree, which only ever advances in canonical order. When the
// canonical rebroadcast of a pending action arrives, the action moves from
// pending into confirmed, so it takes effect exactly once even when the
// reducer is a toggle.
package surface

import (
	"sync"

	"github.com/google/uuid"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/bus"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/state"
	"github.com/sirupsen/logrus"
)

type pendingAction struct {
	seq    uint64
	action action.Action
}

// Store is a surface's local mirror of the canonical tree.
type Store struct {
	id     string
	logger *logrus.Entry

	mu        sync.Mutex
	confirmed models.Tree
	visible   models.Tree
	pending   []pendingAction
	seq       uint64
	lastRev   uint64
	synced    bool
	ch        bus.Channel
	cancel    func()
	watchers  map[chan models.Tree]struct{}
	closed    bool
}

// New returns an unattached surface store with a fresh identity.
func New(logger *logrus.Entry) *Store {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = logrus.NewEntry(l)
	}
	id := uuid.NewString()
	return &Store{
		id:        id,
		logger:    logger.WithField("surface", id),
		confirmed: models.NewTree(),
		visible:   models.NewTree(),
		watchers:  make(map[chan models.Tree]struct{}),
	}
}

// ID returns the surface identity used as the origin of its actions.
func (s *Store) ID() string { return s.id }

// Attach connects the store to the canonical store over ch and subscribes.
// Any previous channel is released. Pending actions are sent again after the
// subscription; the canonical store drops the ones it already applied.
func (s *Store) Attach(ch bus.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.ch = ch
	s.synced = false
	s.lastRev = 0
	s.cancel = ch.OnReceive(bus.ToSurfaces, s.receive)

	ch.Send(bus.ToCanonical, bus.Envelope{Origin: s.id, Action: action.Subscribe{}})
	for _, p := range s.pending {
		ch.Send(bus.ToCanonical, bus.Envelope{Origin: s.id, Seq: p.seq, Action: p.action})
	}
}

// Dispatch applies a locally originated action and forwards it. Channel
// control actions are not dispatchable.
func (s *Store) Dispatch(a action.Action) {
	if a == nil || action.IsControl(a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.seq++
	s.pending = append(s.pending, pendingAction{seq: s.seq, action: a})
	s.visible = state.Reduce(s.visible, a)
	if s.ch != nil {
		s.ch.Send(bus.ToCanonical, bus.Envelope{Origin: s.id, Seq: s.seq, Action: a})
	}
	s.notify()
}

func (s *Store) receive(env bus.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if snap, ok := env.Action.(action.Snapshot); ok {
		if env.Origin != "" && env.Origin != s.id {
			return
		}
		s.confirmed = state.Reduce(s.confirmed, snap)
		s.lastRev = env.Rev
		s.synced = true
		s.confirm(snap.Ack)
		s.rebuild()
		return
	}

	if !s.synced {
		return
	}
	if env.Rev <= s.lastRev {
		return
	}
	if env.Rev > s.lastRev+1 {
		s.logger.WithFields(logrus.Fields{
			"have": s.lastRev,
			"got":  env.Rev,
		}).Warn("Missed canonical actions, requesting a new snapshot")
		s.synced = false
		s.ch.Send(bus.ToCanonical, bus.Envelope{Origin: s.id, Action: action.Subscribe{}})
		return
	}

	s.lastRev = env.Rev
	s.confirmed = state.Reduce(s.confirmed, env.Action)
	if env.Origin == s.id {
		s.confirm(env.Seq)
	}
	s.rebuild()
}

// confirm drops pending actions up to and including seq. Per-origin FIFO
// means anything older was applied or dropped by the canonical store.
func (s *Store) confirm(seq uint64) {
	i := 0
	for i < len(s.pending) && s.pending[i].seq <= seq {
		i++
	}
	if i > 0 {
		s.pending = append([]pendingAction{}, s.pending[i:]...)
	}
}

func (s *Store) rebuild() {
	t := s.confirmed
	for _, p := range s.pending {
		t = state.Reduce(t, p.action)
	}
	s.visible = t
	s.notify()
}

// notify pushes the visible tree to every watcher, replacing any value the
// watcher has not read yet.
func (s *Store) notify() {
	for ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.visible:
		default:
		}
	}
}

// State returns a copy of the tree the surface should display.
func (s *Store) State() models.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible.Clone()
}

// Synced reports whether a snapshot has been received on the current
// channel.
func (s *Store) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Pending returns the number of actions awaiting canonical confirmation.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Watch returns a channel that always holds the latest visible tree. The
// returned func stops the watch and closes the channel.
func (s *Store) Watch() (<-chan models.Tree, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan models.Tree, 1)
	ch <- s.visible
	s.watchers[ch] = struct{}{}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.watchers[ch]; ok {
				delete(s.watchers, ch)
				close(ch)
			}
		})
	}
}

// Close unsubscribes, releases the receive handler and closes every watch
// channel. The channel itself belongs to the caller.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.ch != nil {
		s.ch.Send(bus.ToCanonical, bus.Envelope{Origin: s.id, Action: action.Unsubscribe{}})
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for ch := range s.watchers {
		delete(s.watchers, ch)
		close(ch)
	}
}
