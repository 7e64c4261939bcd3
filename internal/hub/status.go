package hub

import (
	"time"

	"github.com/arcadehub/gamehub/internal/protocol"
)

// StatusSnapshot is a read-only view of reactor state for the admin HTTP
// surface. It's assembled entirely inside the reactor goroutine and handed
// off by value, so the HTTP handler never touches live hub state.
type StatusSnapshot struct {
	UptimeSeconds   float64                 `json:"uptime_seconds"`
	ConnectionCount int                     `json:"connection_count"`
	SessionCount    int                     `json:"session_count"`
	Rooms           []protocol.RoomSnapshot `json:"rooms"`
	Games           []protocol.GameSummary  `json:"games"`
}

// Query fetches a StatusSnapshot from the reactor. Safe to call from any
// goroutine; it posts a command and blocks on the buffered reply channel.
func (r *Reactor) Query() StatusSnapshot {
	reply := make(chan StatusSnapshot, 1)
	r.post(statusQuery{reply: reply})
	return <-reply
}

func (r *Reactor) onStatusQuery(q statusQuery) {
	snap := StatusSnapshot{
		UptimeSeconds:   time.Since(r.startedAt).Seconds(),
		ConnectionCount: len(r.conns),
		SessionCount:    len(r.sessionOf),
	}
	for _, room := range r.rooms {
		snap.Rooms = append(snap.Rooms, roomSnapshot(room, r.gameNameByID(room.GameID)))
	}
	for _, g := range r.games {
		snap.Games = append(snap.Games, protocol.GameSummary{
			ID:            g.ID,
			Name:          g.Name,
			LatestVersion: g.LatestVersion,
			MinPlayers:    g.MinPlayers,
			MaxPlayers:    g.MaxPlayers,
			Owner:         g.Owner,
		})
	}
	q.reply <- snap
}
