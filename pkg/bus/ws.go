package bus

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/linkpicker/logging"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 1 << 20

	// DefaultPongWait is how long a peer may stay silent before the
	// connection is considered dead. Pings go out at 9/10 of it.
	DefaultPongWait = 60 * time.Second
)

// WSConn is a Channel over a websocket connection. A single goroutine owns
// all writes, including keepalive pings; another reads frames and
// dispatches them to handlers.
type WSConn struct {
	conn     *websocket.Conn
	out      chan Envelope
	handlers *handlers
	done     chan struct{}
	once     sync.Once
	start    sync.Once
	pongWait time.Duration
	logger   *logrus.Entry
}

// NewWSConn wraps an established websocket connection. Nothing is read
// until Start, so handlers registered in between see every frame. The
// connection is owned by the returned WSConn.
func NewWSConn(conn *websocket.Conn, logger *logrus.Entry) *WSConn {
	if logger == nil {
		logger = logging.NewLogger("bus")
	}
	conn.SetReadLimit(maxMessageSize)
	return &WSConn{
		conn:     conn,
		out:      make(chan Envelope, DefaultQueueSize),
		handlers: newHandlers(),
		done:     make(chan struct{}),
		pongWait: DefaultPongWait,
		logger:   logger,
	}
}

// WithPongWait overrides DefaultPongWait. It must be called before Start.
func (c *WSConn) WithPongWait(d time.Duration) *WSConn {
	if d > 0 {
		c.pongWait = d
	}
	return c
}

// Start runs the read and write loops. Envelopes sent earlier are queued
// and written once it runs. Calling it again does nothing.
func (c *WSConn) Start() *WSConn {
	c.start.Do(func() {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		})
		go c.writeLoop()
		go c.readLoop()
	})
	return c
}

// Send implements Channel.
func (c *WSConn) Send(bus ID, env Envelope) {
	env.Bus = bus
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.out <- env:
	default:
		c.logger.WithField("action", env.Action.Type()).Warn("Outbound queue full, dropping message")
	}
}

// OnReceive implements Channel.
func (c *WSConn) OnReceive(bus ID, h Handler) func() {
	return c.handlers.add(bus, h)
}

// Done implements Channel.
func (c *WSConn) Done() <-chan struct{} { return c.done }

// Close implements Channel.
func (c *WSConn) Close() error {
	c.once.Do(func() { close(c.done) })
	// Never started: no write loop will close the socket.
	c.start.Do(func() { _ = c.conn.Close() })
	return nil
}

func (c *WSConn) writeLoop() {
	ping := time.NewTicker(c.pongWait * 9 / 10)
	defer ping.Stop()
	defer c.conn.Close()
	for {
		select {
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.WithError(err).Debug("Ping failed, closing connection")
				_ = c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case env := <-c.out:
			data, err := json.Marshal(env)
			if err != nil {
				c.logger.WithError(err).Error("Failed to encode envelope")
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.WithError(err).Debug("Write failed, closing connection")
				_ = c.Close()
				return
			}
		}
	}
}

func (c *WSConn) readLoop() {
	defer c.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				c.logger.WithError(err).Debug("Read failed, closing connection")
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.WithError(err).Warn("Dropping malformed envelope")
			continue
		}
		c.handlers.dispatch(env)
	}
}
