package bus

import "sync"

// DefaultQueueSize is the per-endpoint inbox size used by NewPipe.
const DefaultQueueSize = 256

// Endpoint is one side of an in-process Pipe.
type Endpoint struct {
	pipe     *pipe
	peer     *Endpoint
	inbox    chan Envelope
	handlers *handlers
}

type pipe struct {
	done chan struct{}
	once sync.Once
}

// NewPipe returns two linked endpoints. What one sends, the other receives.
// A non-positive size selects DefaultQueueSize. Closing either end closes
// both.
func NewPipe(size int) (*Endpoint, *Endpoint) {
	if size <= 0 {
		size = DefaultQueueSize
	}
	p := &pipe{done: make(chan struct{})}
	a := &Endpoint{pipe: p, inbox: make(chan Envelope, size), handlers: newHandlers()}
	b := &Endpoint{pipe: p, inbox: make(chan Envelope, size), handlers: newHandlers()}
	a.peer, b.peer = b, a

	go a.deliver()
	go b.deliver()
	return a, b
}

func (e *Endpoint) deliver() {
	for {
		select {
		case <-e.pipe.done:
			return
		case env := <-e.inbox:
			e.handlers.dispatch(env)
		}
	}
}

// Send implements Channel.
func (e *Endpoint) Send(bus ID, env Envelope) {
	env.Bus = bus
	select {
	case <-e.pipe.done:
		return
	default:
	}
	select {
	case e.peer.inbox <- env:
	default:
	}
}

// OnReceive implements Channel.
func (e *Endpoint) OnReceive(bus ID, h Handler) func() {
	return e.handlers.add(bus, h)
}

// Done implements Channel.
func (e *Endpoint) Done() <-chan struct{} { return e.pipe.done }

// Close implements Channel. Messages still queued are dropped.
func (e *Endpoint) Close() error {
	e.pipe.once.Do(func() { close(e.pipe.done) })
	return nil
}
