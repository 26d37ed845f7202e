package bus

import "sync"

// Handler receives one envelope.
type Handler func(Envelope)

// Channel is one end of a connection between a surface and the canonical
// store.
type Channel interface {
	// Send queues env on the given bus and returns immediately. Messages
	// sent after Close, or that cannot be queued, are dropped.
	Send(bus ID, env Envelope)

	// OnReceive registers h for every message arriving on bus. Handlers run
	// in arrival order, one message at a time. The returned func removes h.
	OnReceive(bus ID, h Handler) (cancel func())

	// Done is closed when the connection is gone.
	Done() <-chan struct{}

	// Close tears the connection down. It is safe to call more than once.
	Close() error
}

// handlers is the registry shared by Channel implementations.
type handlers struct {
	mu     sync.Mutex
	nextID int
	byBus  map[ID]map[int]Handler
	order  map[ID][]int
}

func newHandlers() *handlers {
	return &handlers{
		byBus: make(map[ID]map[int]Handler),
		order: make(map[ID][]int),
	}
}

func (h *handlers) add(bus ID, fn Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	if h.byBus[bus] == nil {
		h.byBus[bus] = make(map[int]Handler)
	}
	h.byBus[bus][id] = fn
	h.order[bus] = append(h.order[bus], id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.byBus[bus], id)
			ids := h.order[bus]
			for i, v := range ids {
				if v == id {
					h.order[bus] = append(ids[:i:i], ids[i+1:]...)
					break
				}
			}
		})
	}
}

// dispatch calls every handler registered for env.Bus in registration order.
func (h *handlers) dispatch(env Envelope) {
	h.mu.Lock()
	ids := h.order[env.Bus]
	fns := make([]Handler, 0, len(ids))
	for _, id := range ids {
		if fn, ok := h.byBus[env.Bus][id]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(env)
	}
}
