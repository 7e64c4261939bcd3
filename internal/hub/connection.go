package hub

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/arcadehub/gamehub/internal/config"
	"github.com/arcadehub/gamehub/internal/protocol"
	"golang.org/x/time/rate"
)

// outboundMsg is one frame queued for a connection's writer goroutine.
type outboundMsg struct {
	typ     protocol.Type
	payload any
	closeAfter bool
}

// connection is the CSP "event source" for one client socket: a reader
// goroutine turns bytes into commands posted to the reactor, a writer
// goroutine drains an outbound queue back onto the socket. Neither
// goroutine touches hub state directly.
type connection struct {
	id     connID
	conn   net.Conn
	cfg    *config.Hub
	reactor *Reactor
	limiter *rate.Limiter

	out  chan outboundMsg
	done chan struct{}
}

func newConnection(ctx context.Context, r *Reactor, nc net.Conn, cfg *config.Hub) *connection {
	return &connection{
		id:      nextConnID(),
		conn:    nc,
		cfg:     cfg,
		reactor: r,
		limiter: rate.NewLimiter(rate.Limit(cfg.FrameRateLimit), cfg.FrameRateBurst),
		out:     make(chan outboundMsg, 64),
		done:    make(chan struct{}),
	}
}

func (c *connection) run() {
	defer func() { _ = c.conn.Close() }()
	defer close(c.done)

	remote := c.conn.RemoteAddr().String()
	c.reactor.post(connOpened{id: c.id, remote: remote, out: c.out})
	defer c.reactor.post(connClosed{id: c.id})

	go c.writeLoop()
	c.readLoop()
}

func (c *connection) readLoop() {
	for {
		frame, err := protocol.ReadFrame(c.conn, c.cfg.MaxFrameSize)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				slog.Debug("connection read ended", "conn", c.id, "error", err)
			}
			return
		}
		if !c.limiter.Allow() {
			slog.Warn("connection exceeded frame rate, dropping", "conn", c.id)
			return
		}
		c.reactor.post(frameReceived{id: c.id, frame: frame})
	}
}

func (c *connection) writeLoop() {
	for {
		select {
		case msg, ok := <-c.out:
			if !ok {
				return
			}
			if msg.closeAfter {
				_ = c.conn.Close()
				return
			}
			if err := protocol.WriteFrame(c.conn, msg.typ, msg.payload); err != nil {
				slog.Debug("connection write failed", "conn", c.id, "error", err)
				return
			}
		case <-c.done:
			return
		}
	}
}
