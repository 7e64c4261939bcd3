package hub

import (
	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/protocol"
)

// handleRoomChat relays a chat line to every member of the sender's room,
// the sender included. The hub only stores/forwards; plugin clients own rendering.
func (r *Reactor) handleRoomChat(id connID, cs *connState, frame protocol.Frame) {
	if !cs.loggedIn {
		return
	}
	var req protocol.RoomChatInboundPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		return
	}

	var room *model.Room
	for _, rm := range r.rooms {
		for _, m := range rm.Members {
			if m == cs.username {
				room = rm
				break
			}
		}
		if room != nil {
			break
		}
	}
	if room == nil {
		return
	}

	out := protocol.RoomChatOutboundPayload{User: cs.username, Msg: req.Msg}
	for _, member := range room.Members {
		if mid, ok := r.connOf(member); ok {
			r.sendTo(mid, protocol.RoomChat, out)
		}
	}
}
