package hub

import (
	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/protocol"
)

// connID identifies one live connection for the lifetime of the process.
type connID uint64

// command is anything posted onto the reactor's single inbound channel.
// The reactor goroutine is the only reader of that channel, so every
// command is handled strictly in arrival order.
type command interface {
	apply(r *Reactor)
}

// connOpened registers a new connection's outbound channel with the
// reactor so later replies/broadcasts can reach it.
type connOpened struct {
	id     connID
	remote string
	out    chan<- outboundMsg
}

// connClosed tells the reactor a connection's reader/writer goroutines
// have exited; the reactor tears down any session/upload/download state
// tied to that connection.
type connClosed struct {
	id connID
}

// frameReceived carries one decoded frame up from a connection's reader
// goroutine.
type frameReceived struct {
	id    connID
	frame protocol.Frame
}

// childExited reports that a spawned game server process has terminated.
type childExited struct {
	gameID int64
	roomID int64
	err    error
}

// readyCheckTimedOut fires when a ready check's deadline goroutine expires
// before every member responded.
type readyCheckTimedOut struct {
	roomID int64
	gen    int64
}

// uploadExtracted reports the result of a background archive-extraction
// worker for a completed upload.
type uploadExtracted struct {
	id      connID
	upload  *model.UploadState
	manifestOK bool
	reason  string
}

// statusQuery asks the reactor for a read-only snapshot of its state,
// used by the admin HTTP surface. reply is buffered with capacity 1 so the
// reactor never blocks delivering it.
type statusQuery struct {
	reply chan StatusSnapshot
}

func (c statusQuery) apply(r *Reactor) { r.onStatusQuery(c) }

func (c connOpened) apply(r *Reactor)        { r.onConnOpened(c) }
func (c connClosed) apply(r *Reactor)        { r.onConnClosed(c) }
func (c frameReceived) apply(r *Reactor)     { r.onFrame(c) }
func (c childExited) apply(r *Reactor)       { r.onChildExited(c) }
func (c readyCheckTimedOut) apply(r *Reactor) { r.onReadyCheckTimeout(c) }
func (c uploadExtracted) apply(r *Reactor)   { r.onUploadExtracted(c) }
