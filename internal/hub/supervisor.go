package hub

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/exec"

	"github.com/arcadehub/gamehub/internal/archiveutil"
	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/protocol"
)

// probePort binds to an ephemeral port, reads back what the kernel
// assigned, then releases it so the child process can bind it itself.
// There's a small window where another process could steal the port
// before the child binds it; the spec accepts that race.
func probePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("probing port: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		return 0, fmt.Errorf("releasing probed port: %w", err)
	}
	return port, nil
}

// launchGame spawns the server command captured by the room's ready-check
// snapshot (not whatever the catalogue's latest version happens to be at
// this moment, which a concurrent upload could have advanced), then notifies
// every member where to connect.
func (r *Reactor) launchGame(ctx context.Context, room *model.Room, game *model.Game, versionName string, version model.Version) {
	if len(version.ServerCmd) == 0 {
		room.Status = model.RoomWaiting
		r.broadcastRoomStatus(room)
		r.broadcastToRoom(room, failPayload("game has no runnable server command"))
		return
	}

	port, err := probePort()
	if err != nil {
		room.Status = model.RoomWaiting
		r.broadcastRoomStatus(room)
		r.broadcastToRoom(room, failPayload(err.Error()))
		return
	}

	parts := buildServerArgv(version.ServerCmd, version.ArgsFormat, port)
	if len(parts) == 0 {
		room.Status = model.RoomWaiting
		r.broadcastRoomStatus(room)
		r.broadcastToRoom(room, failPayload("empty server command"))
		return
	}

	cmdCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cmdCtx, parts[0], parts[1:]...)
	cmd.Dir = version.ExtractedTo

	if err := cmd.Start(); err != nil {
		cancel()
		room.Status = model.RoomWaiting
		r.broadcastRoomStatus(room)
		r.broadcastToRoom(room, failPayload(fmt.Sprintf("starting game server: %v", err)))
		return
	}

	r.children[room.ID] = &childHandle{gameID: game.ID, roomID: room.ID, port: port, cancel: cancel}
	room.Status = model.RoomPlaying

	if game.PlayedBy == nil {
		game.PlayedBy = make(map[string]bool)
	}
	for _, member := range room.Members {
		game.PlayedBy[member] = true
	}

	go func() {
		waitErr := cmd.Wait()
		r.post(childExited{gameID: game.ID, roomID: room.ID, err: waitErr})
	}()

	slog.Info("launched game server", "game", game.Name, "room", room.ID, "port", port)

	event := protocol.GameLaunchEventPayload{
		ServerIP: r.cfg.AdvertisedAddress,
		Port:     port,
		GameID:   game.ID,
		Version:  versionName,
	}
	for _, member := range room.Members {
		if mid, ok := r.connOf(member); ok {
			r.sendTo(mid, protocol.GameLaunchEvent, event)
		}
	}
}

// buildServerArgv appends the connect-port flag named by the manifest's
// args_format to its server_cmd argv, per spec §6's execution contract
// (server_cmd/client_cmd are argv arrays, args_format names the flags a
// client substitutes to reach the server). Falls back to "--port" when the
// manifest doesn't name one.
func buildServerArgv(serverCmd []string, args archiveutil.ArgsFormat, port int) []string {
	if len(serverCmd) == 0 {
		return nil
	}
	flag := args.ConnectPort
	if flag == "" {
		flag = "--port"
	}
	portStr := fmt.Sprintf("%d", port)
	out := make([]string, 0, len(serverCmd)+2)
	out = append(out, serverCmd...)
	out = append(out, flag, portStr)
	return out
}
