package hub

import (
	"log/slog"

	"github.com/arcadehub/gamehub/internal/protocol"
)

// sendTo queues a frame for delivery to a connection, silently dropping it
// if the connection is no longer known (it raced a close).
func (r *Reactor) sendTo(id connID, typ protocol.Type, payload any) {
	cs, ok := r.conns[id]
	if !ok {
		return
	}
	select {
	case cs.out <- outboundMsg{typ: typ, payload: payload}:
	default:
		slog.Warn("outbound queue full, dropping connection", "conn", id)
		r.closeConn(id)
	}
}

// closeConn asks the connection's writer goroutine to close the socket
// after flushing whatever is already queued.
func (r *Reactor) closeConn(id connID) {
	cs, ok := r.conns[id]
	if !ok {
		return
	}
	select {
	case cs.out <- outboundMsg{closeAfter: true}:
	default:
	}
}

func failPayload(msg string) protocol.GameStartFailPayload {
	return protocol.GameStartFailPayload{Msg: msg}
}

// onFrame is the top-level opcode dispatch, mirroring the handler-switch
// shape every connection's packets flow through.
func (r *Reactor) onFrame(c frameReceived) {
	cs, ok := r.conns[c.id]
	if !ok {
		return
	}

	switch c.frame.Type {
	case protocol.LoginReq:
		r.handleLogin(c.id, c.frame)
	case protocol.RegisterReq:
		r.handleRegister(c.id, c.frame)
	case protocol.UploadInit:
		r.handleUploadInit(c.id, cs, c.frame)
	case protocol.UploadData:
		r.handleUploadData(c.id, cs, c.frame)
	case protocol.UploadEnd:
		r.handleUploadEnd(c.id, cs)
	case protocol.GameRemoveReq:
		r.handleGameRemove(c.id, cs, c.frame)
	case protocol.GameListReq:
		r.handleGameList(c.id, cs)
	case protocol.DownloadReq:
		r.handleDownloadReq(c.id, cs, c.frame)
	case protocol.RoomCreateReq:
		r.handleRoomCreate(c.id, cs, c.frame)
	case protocol.RoomListReq:
		r.handleRoomList(c.id)
	case protocol.RoomJoinReq:
		r.handleRoomJoin(c.id, cs, c.frame)
	case protocol.RoomLeaveReq:
		r.handleRoomLeave(c.id, cs)
	case protocol.GameStartCmd:
		r.handleGameStart(c.id, cs)
	case protocol.GameRateReq:
		r.handleGameRate(c.id, cs, c.frame)
	case protocol.DevMyGamesReq:
		r.handleDevMyGames(c.id, cs)
	case protocol.ReadyCheckResp:
		r.handleReadyCheckResp(c.id, cs, c.frame)
	case protocol.GameDetailReq:
		r.handleGameDetail(c.id, cs, c.frame)
	case protocol.PluginListReq:
		r.handlePluginList(c.id)
	case protocol.PluginDownloadReq:
		r.handlePluginDownload(c.id, c.frame)
	case protocol.RoomChat:
		r.handleRoomChat(c.id, cs, c.frame)
	default:
		slog.Warn("unhandled frame type", "conn", c.id, "type", c.frame.Type)
	}
}
