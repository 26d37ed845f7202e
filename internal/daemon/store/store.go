package store

import (
	"context"
	"errors"
	"sync"
	"time"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/internal/persist"
	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/bus"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/grovetools/linkpicker/pkg/state"
	"github.com/sirupsen/logrus"
)

// Store is the canonical state store. Every write goes through one mutex so
// actions are applied strictly in arrival order, and nothing slow ever runs
// while it is held.
type Store struct {
	mu       sync.Mutex
	phase    Phase
	tree     models.Tree
	rev      uint64
	backlog  []pending
	lastSeq  map[string]uint64
	conns    map[*conn]struct{}
	watchers map[chan Applied]struct{}
	log      *state.Log

	adapter  persist.Adapter
	opts     Options
	logger   *logrus.Entry
	firstRun bool

	flushMu     sync.Mutex
	saved       models.Tree
	forceFlush  bool
	dirty       chan struct{}
	stop        chan struct{}
	flusherDone chan struct{}
	releaseErr  error
	closed      chan struct{}
}

// pending is an action that arrived before the store was Ready.
type pending struct {
	conn *conn
	env  bus.Envelope
}

// conn is one connected surface.
type conn struct {
	ch         bus.Channel
	origin     string
	subscribed bool
	cancel     func()
	once       sync.Once
}

// New creates a Store backed by adapter. The store does nothing until Start.
func New(adapter persist.Adapter, opts Options) *Store {
	opts.setDefaults()
	return &Store{
		tree:     models.NewTree(),
		lastSeq:  make(map[string]uint64),
		conns:    make(map[*conn]struct{}),
		watchers: make(map[chan Applied]struct{}),
		log:      state.NewLog(opts.LogSize),
		adapter:  adapter,
		opts:     opts,
		logger:   opts.Logger,
		dirty:    make(chan struct{}, 1),
		stop:     make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

// Start loads the persisted slices, seeds the tree with them, dispatches
// StoreReady and then replays everything that arrived early, in order.
// A failed load is logged and the store starts from defaults.
func (s *Store) Start(ctx context.Context) error {
	p, err := s.adapter.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load persisted state, using defaults")
		p = models.DefaultPersisted()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Uninitialized {
		return lperrors.StoreNotReady(s.phase.String()).WithDetail("reason", "already started")
	}

	s.firstRun = p.FirstRun
	s.forceFlush = p.FirstRun
	s.apply("", 0, action.Snapshot{Tree: models.NewTree().WithPersisted(p)})
	s.saved = s.tree
	s.phase = Ready
	s.apply("", 0, action.StoreReady{})

	backlog := s.backlog
	s.backlog = nil
	for _, item := range backlog {
		if item.conn != nil {
			if _, ok := s.conns[item.conn]; !ok {
				continue
			}
		}
		_ = s.handle(item.conn, item.env)
	}

	s.flusherDone = make(chan struct{})
	go s.flushLoop()
	if s.forceFlush {
		s.markDirty()
	}

	s.logger.WithFields(logrus.Fields{
		"first_run": s.firstRun,
		"replayed":  len(backlog),
	}).Info("Store ready")
	return nil
}

// Dispatch applies an action that originated inside the daemon. Before the
// store is Ready it is queued; after shutdown begins it is rejected.
func (s *Store) Dispatch(a action.Action) error {
	if a == nil {
		return lperrors.New(lperrors.ErrCodeInvalidInput, "nil action")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle(nil, bus.Envelope{Action: a})
}

// OpenURL hands a URL from the OS to the store. URLs arriving before Ready
// are buffered and delivered once Ready is reached.
func (s *Store) OpenURL(url string) error {
	return s.Dispatch(action.URLReceived{URL: url})
}

// Connect attaches a surface connection. The surface is not sent anything
// until it subscribes. The returned func detaches it; the connection is also
// detached when the channel reports Done.
func (s *Store) Connect(ch bus.Channel) (detach func()) {
	c := &conn{ch: ch}

	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	c.cancel = ch.OnReceive(bus.ToCanonical, func(env bus.Envelope) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.conns[c]; !ok {
			return
		}
		if err := s.handle(c, env); err != nil {
			s.logger.WithError(err).WithField("origin", env.Origin).Debug("Dropped surface action")
		}
	})

	detach = func() { s.detach(c) }
	go func() {
		<-ch.Done()
		detach()
	}()
	return detach
}

func (s *Store) detach(c *conn) {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		s.logger.WithField("origin", c.origin).Debug("Surface detached")
	})
}

// handle routes one envelope. s.mu must be held.
func (s *Store) handle(c *conn, env bus.Envelope) error {
	switch s.phase {
	case ShuttingDown:
		return lperrors.StoreShuttingDown()
	case Uninitialized:
		s.backlog = append(s.backlog, pending{conn: c, env: env})
		return nil
	}

	switch env.Action.(type) {
	case action.Subscribe:
		if c == nil {
			return nil
		}
		c.origin = env.Origin
		c.subscribed = true
		c.ch.Send(bus.ToSurfaces, bus.Envelope{
			Origin: env.Origin,
			Rev:    s.rev,
			Action: action.Snapshot{Tree: s.tree.Clone(), Ack: s.lastSeq[env.Origin]},
		})
		s.logger.WithFields(logrus.Fields{"origin": env.Origin, "rev": s.rev}).Debug("Surface subscribed")
		return nil
	case action.Unsubscribe:
		if c != nil {
			c.subscribed = false
		}
		return nil
	case action.Snapshot:
		// Snapshots only flow from the canonical store outwards.
		if c != nil {
			return nil
		}
	}

	if c != nil && env.Origin != "" && env.Seq != 0 {
		if env.Seq <= s.lastSeq[env.Origin] {
			s.logger.WithFields(logrus.Fields{
				"origin": env.Origin,
				"seq":    env.Seq,
			}).Debug("Dropping duplicate action")
			return nil
		}
		s.lastSeq[env.Origin] = env.Seq
	}

	s.apply(env.Origin, env.Seq, env.Action)
	return nil
}

// apply runs the reducers, records the action and fans it out. s.mu must be
// held.
func (s *Store) apply(origin string, seq uint64, a action.Action) {
	prev := s.tree
	s.tree = state.Reduce(s.tree, a)
	s.rev++

	s.log.Add(state.LogEntry{Type: a.Type(), Rev: s.rev, Origin: origin, Seq: seq, At: time.Now()})

	if _, ok := a.(action.Unknown); ok {
		s.logger.WithField("type", a.Type()).Debug("Relaying unknown action")
	}

	env := bus.Envelope{Origin: origin, Seq: seq, Rev: s.rev, Action: a}
	for c := range s.conns {
		if c.subscribed {
			c.ch.Send(bus.ToSurfaces, env)
		}
	}

	applied := Applied{Action: a, Rev: s.rev, Origin: origin, Seq: seq, Tree: s.tree}
	for ch := range s.watchers {
		select {
		case ch <- applied:
		default:
			// Non-blocking send so a slow watcher never stalls dispatch
		}
	}

	if s.phase == Ready && !models.SamePersisted(prev, s.tree) {
		s.markDirty()
	}
}

func (s *Store) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Watch returns a channel receiving every applied action. Slow readers miss
// actions rather than block the store.
func (s *Store) Watch() (<-chan Applied, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Applied, s.opts.WatchBuffer)
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

// Tree returns a copy of the canonical tree.
func (s *Store) Tree() models.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

// Snapshot returns a copy of the tree together with the revision it is at.
func (s *Store) Snapshot() (models.Tree, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone(), s.rev
}

// Rev returns the number of actions applied so far.
func (s *Store) Rev() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// Phase returns the current lifecycle phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// FirstRun reports whether the loaded state was a first run. It is only
// meaningful after Start.
func (s *Store) FirstRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstRun
}

// Subscribers returns the number of subscribed surfaces.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for c := range s.conns {
		if c.subscribed {
			n++
		}
	}
	return n
}

// DispatchLog returns recent dispatches, oldest first.
func (s *Store) DispatchLog() []state.LogEntry {
	return s.log.Entries()
}

func (s *Store) flushLoop() {
	defer close(s.flusherDone)

	var tick <-chan time.Time
	if s.opts.FlushInterval > 0 {
		ticker := time.NewTicker(s.opts.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-s.stop:
			if debounce != nil {
				debounce.Stop()
			}
			return
		case <-s.dirty:
			if debounce == nil {
				debounce = time.NewTimer(s.opts.FlushDebounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(s.opts.FlushDebounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			s.flushLogged()
		case <-tick:
			s.flushLogged()
		}
	}
}

func (s *Store) flushLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to persist state")
	}
}

// Flush saves the persisted slices if they changed since the last save.
func (s *Store) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	current := s.tree
	force := s.forceFlush
	s.mu.Unlock()

	if !force && models.SamePersisted(current, s.saved) {
		return nil
	}
	if err := s.adapter.Save(ctx, current.Persisted()); err != nil {
		return err
	}

	s.mu.Lock()
	s.forceFlush = false
	s.mu.Unlock()
	s.saved = current
	s.logger.Debug("Persisted state saved")
	return nil
}

// Shutdown stops accepting actions, detaches every surface, flushes pending
// writes and releases the persistence handle. It is safe to call more than
// once; only the first call does the work.
func (s *Store) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == ShuttingDown {
		s.mu.Unlock()
		select {
		case <-s.closed:
			return s.releaseErr
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	wasReady := s.phase == Ready
	s.phase = ShuttingDown
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	for ch := range s.watchers {
		delete(s.watchers, ch)
		close(ch)
	}
	s.mu.Unlock()

	for _, c := range conns {
		s.detach(c)
	}

	var errs []error
	if wasReady {
		close(s.stop)
		<-s.flusherDone
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.releaseErr = s.adapter.Close()
	if s.releaseErr != nil {
		errs = append(errs, s.releaseErr)
	}
	close(s.closed)
	s.logger.Info("Store shut down")
	return errors.Join(errs...)
}

// Closed is closed once Shutdown has released the persistence handle.
func (s *Store) Closed() <-chan struct{} { return s.closed }
