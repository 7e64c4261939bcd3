package hub

import (
	"context"
	"time"

	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/protocol"
)

func (r *Reactor) handleGameStart(id connID, cs *connState) {
	if !requirePlayer(r, id, cs, func(msg string) {
		r.sendTo(id, protocol.GameStartFail, failPayload(msg))
	}) {
		return
	}

	var room *model.Room
	for _, rm := range r.rooms {
		if rm.Host == cs.username {
			room = rm
			break
		}
	}
	if room == nil {
		r.sendTo(id, protocol.GameStartFail, failPayload("you are not hosting a room"))
		return
	}
	if room.Status != model.RoomWaiting {
		r.sendTo(id, protocol.GameStartFail, failPayload("room is not in a startable state"))
		return
	}
	if len(room.Members) < room.MinPlayers {
		r.sendTo(id, protocol.GameStartFail, failPayload("not enough players"))
		return
	}

	game := r.gameByID(room.GameID)
	if game == nil {
		r.sendTo(id, protocol.GameStartFail, failPayload("game no longer exists"))
		return
	}

	room.Status = model.RoomReady
	r.broadcastRoomStatus(room)

	rcs := &readyCheckState{
		check: &model.ReadyCheck{
			RoomID:      room.ID,
			GameID:      game.ID,
			VersionName: game.LatestVersion,
			Version:     game.Versions[game.LatestVersion],
			TargetCount: len(room.Members),
			Responses:   make(map[string]bool),
			AllOK:       true,
			Deadline:    time.Now().Add(r.cfg.ReadyCheckTimeout),
		},
		gen: r.nextReadyGen(room.ID),
	}
	r.readyChecks[room.ID] = rcs

	for _, member := range room.Members {
		if mid, ok := r.connOf(member); ok {
			r.sendTo(mid, protocol.ReadyCheckReq, protocol.ReadyCheckReqPayload{
				GameName: game.Name,
				Version:  game.LatestVersion,
			})
		}
	}

	gen := rcs.gen
	roomID := room.ID
	timeout := r.cfg.ReadyCheckTimeout
	go func() {
		t := time.NewTimer(timeout)
		defer t.Stop()
		<-t.C
		r.post(readyCheckTimedOut{roomID: roomID, gen: gen})
	}()
}

var readyGenCounter int64

func (r *Reactor) nextReadyGen(roomID int64) int64 {
	readyGenCounter++
	return readyGenCounter
}

func (r *Reactor) gameByID(id int64) *model.Game {
	for _, g := range r.games {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (r *Reactor) handleReadyCheckResp(id connID, cs *connState, frame protocol.Frame) {
	if !cs.loggedIn {
		return
	}
	var resp protocol.ReadyCheckRespPayload
	if err := protocol.Decode(frame.Payload, &resp); err != nil {
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
	rcs, ok := r.readyChecks[room.ID]
	if !ok {
		return
	}

	rcs.check.Record(cs.username, resp.Status == "ok", resp.Msg)
	if rcs.check.Done() {
		r.finishReadyCheck(room, rcs)
	}
}

func (r *Reactor) onReadyCheckTimeout(c readyCheckTimedOut) {
	rcs, ok := r.readyChecks[c.roomID]
	if !ok || rcs.gen != c.gen {
		return
	}
	room, ok := r.rooms[c.roomID]
	if !ok {
		delete(r.readyChecks, c.roomID)
		return
	}
	rcs.check.AllOK = false
	if rcs.check.FirstFailure == "" {
		for _, member := range room.Members {
			if _, responded := rcs.check.Responses[member]; !responded {
				rcs.check.FirstFailure = member + ": timed out"
				break
			}
		}
	}
	r.finishReadyCheck(room, rcs)
}

func (r *Reactor) finishReadyCheck(room *model.Room, rcs *readyCheckState) {
	delete(r.readyChecks, room.ID)

	if !rcs.check.AllOK {
		room.Status = model.RoomWaiting
		r.broadcastRoomStatus(room)
		r.broadcastToRoom(room, failPayload(rcs.check.FirstFailure))
		return
	}

	game := r.gameByID(rcs.check.GameID)
	if game == nil {
		room.Status = model.RoomWaiting
		r.broadcastRoomStatus(room)
		return
	}

	r.launchGame(context.Background(), room, game, rcs.check.VersionName, rcs.check.Version)
}
