package hub

import (
	"log/slog"

	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/protocol"
)

// connOf finds the connection currently bound to a player's username, or
// false if they're not connected.
func (r *Reactor) connOf(username string) (connID, bool) {
	id, ok := r.sessionOf[sessionKey{role: model.RolePlayer, username: username}]
	return id, ok
}

func roomSnapshot(room *model.Room, gameName string) protocol.RoomSnapshot {
	return protocol.RoomSnapshot{
		ID:         room.ID,
		Name:       room.Name,
		GameID:     room.GameID,
		GameName:   gameName,
		Host:       room.Host,
		Members:    append([]string(nil), room.Members...),
		MaxPlayers: room.MaxPlayers,
		MinPlayers: room.MinPlayers,
		Status:     string(room.Status),
	}
}

func (r *Reactor) gameNameByID(id int64) string {
	for _, g := range r.games {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

func (r *Reactor) broadcastRoomStatus(room *model.Room) {
	snap := roomSnapshot(room, r.gameNameByID(room.GameID))
	for _, member := range room.Members {
		if id, ok := r.connOf(member); ok {
			r.sendTo(id, protocol.RoomStatusUpdate, protocol.RoomStatusUpdatePayload{Room: snap})
		}
	}
}

func (r *Reactor) broadcastToRoom(room *model.Room, payload protocol.GameStartFailPayload) {
	for _, member := range room.Members {
		if id, ok := r.connOf(member); ok {
			r.sendTo(id, protocol.GameStartFail, payload)
		}
	}
}

func (r *Reactor) handleRoomCreate(id connID, cs *connState, frame protocol.Frame) {
	if !requirePlayer(r, id, cs, func(msg string) {
		r.sendTo(id, protocol.RoomCreateResp, protocol.RoomRespPayload{Status: "error", Msg: msg})
	}) {
		return
	}
	var req protocol.RoomCreateReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.RoomCreateResp, protocol.RoomRespPayload{Status: "error", Msg: "malformed request"})
		return
	}

	var game *model.Game
	for _, g := range r.games {
		if g.ID == req.GameID {
			game = g
			break
		}
	}
	if game == nil {
		r.sendTo(id, protocol.RoomCreateResp, protocol.RoomRespPayload{Status: "error", Msg: "game not found"})
		return
	}

	r.leaveAllRooms(id, cs.username)

	room := &model.Room{
		ID:         r.nextRoomID,
		Name:       req.RoomName,
		GameID:     game.ID,
		Host:       cs.username,
		Members:    []string{cs.username},
		MaxPlayers: game.MaxPlayers,
		MinPlayers: game.MinPlayers,
		Status:     model.RoomWaiting,
	}
	r.nextRoomID++
	r.rooms[room.ID] = room

	snap := roomSnapshot(room, game.Name)
	r.sendTo(id, protocol.RoomCreateResp, protocol.RoomRespPayload{Status: "ok", Room: &snap})
}

func (r *Reactor) handleRoomList(id connID) {
	var rooms []protocol.RoomSnapshot
	for _, room := range r.rooms {
		rooms = append(rooms, roomSnapshot(room, r.gameNameByID(room.GameID)))
	}
	r.sendTo(id, protocol.RoomListResp, protocol.RoomListRespPayload{Rooms: rooms})
}

func (r *Reactor) handleRoomJoin(id connID, cs *connState, frame protocol.Frame) {
	if !requirePlayer(r, id, cs, func(msg string) {
		r.sendTo(id, protocol.RoomJoinResp, protocol.RoomRespPayload{Status: "error", Msg: msg})
	}) {
		return
	}
	var req protocol.RoomJoinReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.RoomJoinResp, protocol.RoomRespPayload{Status: "error", Msg: "malformed request"})
		return
	}

	room, ok := r.rooms[req.RoomID]
	if !ok {
		r.sendTo(id, protocol.RoomJoinResp, protocol.RoomRespPayload{Status: "error", Msg: "room not found"})
		return
	}

	for _, m := range room.Members {
		if m == cs.username {
			snap := roomSnapshot(room, r.gameNameByID(room.GameID))
			r.sendTo(id, protocol.RoomJoinResp, protocol.RoomRespPayload{Status: "ok", Room: &snap})
			return
		}
	}

	if room.Status != model.RoomWaiting {
		r.sendTo(id, protocol.RoomJoinResp, protocol.RoomRespPayload{Status: "error", Msg: "room not accepting players"})
		return
	}
	if len(room.Members) >= room.MaxPlayers {
		r.sendTo(id, protocol.RoomJoinResp, protocol.RoomRespPayload{Status: "error", Msg: "room full"})
		return
	}

	r.leaveAllRooms(id, cs.username)

	room.Members = append(room.Members, cs.username)
	snap := roomSnapshot(room, r.gameNameByID(room.GameID))
	r.sendTo(id, protocol.RoomJoinResp, protocol.RoomRespPayload{Status: "ok", Room: &snap})
	r.broadcastRoomStatus(room)
}

func (r *Reactor) handleRoomLeave(id connID, cs *connState) {
	if !cs.loggedIn {
		return
	}
	r.leaveAllRooms(id, cs.username)
}

// leaveAllRooms removes username from every room it belongs to, promoting
// a new host or disbanding the room if it becomes empty.
func (r *Reactor) leaveAllRooms(id connID, username string) {
	for roomID, room := range r.rooms {
		idx := -1
		for i, m := range room.Members {
			if m == username {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		room.Members = append(room.Members[:idx], room.Members[idx+1:]...)
		if len(room.Members) == 0 {
			delete(r.rooms, roomID)
			delete(r.readyChecks, roomID)
			if ch, ok := r.children[roomID]; ok {
				if ch.cancel != nil {
					ch.cancel()
				}
				delete(r.children, roomID)
			}
			continue
		}
		if room.Host == username {
			room.Host = room.Members[0]
		}
		r.broadcastRoomStatus(room)
	}
}

// requirePlayer rejects the request and returns false if the connection
// isn't a logged-in player. onFail sends the error back using whichever
// response type matches the frame the caller is handling.
func requirePlayer(r *Reactor, id connID, cs *connState, onFail func(msg string)) bool {
	if !cs.loggedIn || cs.role != model.RolePlayer {
		slog.Warn("rejected request from non-player connection", "conn", id)
		onFail("login as a player first")
		return false
	}
	return true
}
