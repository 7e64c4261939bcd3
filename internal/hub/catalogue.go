package hub

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arcadehub/gamehub/internal/archiveutil"
	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/protocol"
	"github.com/google/uuid"
)

// requireDeveloper checks the caller is logged in as a developer, invoking
// onFail with the reply shaped for whatever request is being handled when
// not.
func requireDeveloper(r *Reactor, id connID, cs *connState, onFail func(msg string)) bool {
	if !cs.loggedIn || cs.role != model.RoleDeveloper {
		onFail("login as a developer first")
		return false
	}
	return true
}

func (r *Reactor) handleUploadInit(id connID, cs *connState, frame protocol.Frame) {
	if !requireDeveloper(r, id, cs, func(msg string) {
		r.sendTo(id, protocol.UploadEnd, protocol.StatusMsgPayload{Status: "error", Msg: msg})
	}) {
		return
	}
	var req protocol.UploadInitPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.UploadEnd, protocol.StatusMsgPayload{Status: "error", Msg: "malformed request"})
		return
	}

	if existing, ok := r.games[req.Name]; ok && existing.Owner != cs.username {
		r.sendTo(id, protocol.UploadEnd, protocol.StatusMsgPayload{Status: "error", Msg: "game owned by another developer"})
		return
	}

	if err := os.MkdirAll(r.cfg.UploadRoot, 0o755); err != nil {
		slog.Error("creating upload root", "error", err)
		r.sendTo(id, protocol.UploadEnd, protocol.StatusMsgPayload{Status: "error", Msg: "server storage error"})
		return
	}

	tmpPath := filepath.Join(r.cfg.UploadRoot, fmt.Sprintf(".upload-%s.zip", uuid.NewString()))
	f, err := os.Create(tmpPath)
	if err != nil {
		slog.Error("creating upload temp file", "error", err)
		r.sendTo(id, protocol.UploadEnd, protocol.StatusMsgPayload{Status: "error", Msg: "server storage error"})
		return
	}
	_ = f.Close()

	r.uploads[id] = &model.UploadState{
		Owner:        cs.username,
		Name:         req.Name,
		Version:      req.Version,
		Description:  req.Description,
		Type:         req.Type,
		MinPlayers:   req.MinPlayers,
		MaxPlayers:   req.MaxPlayers,
		ExpectedSize: req.Size,
		ExpectedSum:  req.Checksum,
		TempPath:     tmpPath,
	}
	r.sendTo(id, protocol.UploadInit, protocol.StatusMsgPayload{Status: "ok"})
}

func (r *Reactor) handleUploadData(id connID, cs *connState, frame protocol.Frame) {
	up, ok := r.uploads[id]
	if !ok {
		return
	}
	f, err := os.OpenFile(up.TempPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("appending upload data", "error", err)
		r.closeConn(id)
		return
	}
	defer func() { _ = f.Close() }()

	n, err := f.Write(frame.Payload)
	if err != nil {
		slog.Error("writing upload chunk", "error", err)
		r.closeConn(id)
		return
	}
	up.BytesWritten += int64(n)
}

func (r *Reactor) handleUploadEnd(id connID, cs *connState) {
	up, ok := r.uploads[id]
	if !ok {
		return
	}
	delete(r.uploads, id)

	if up.ExpectedSize != 0 && up.BytesWritten != up.ExpectedSize {
		_ = os.Remove(up.TempPath)
		r.sendTo(id, protocol.UploadEnd, protocol.StatusMsgPayload{Status: "error", Msg: "size mismatch"})
		return
	}

	connID := id
	uploadRoot := r.cfg.UploadRoot
	go func() {
		reason, manifest, ok := verifyAndExtract(up, uploadRoot)
		if ok && manifest != nil {
			if manifest.Description != "" {
				up.Description = manifest.Description
			}
			if manifest.Type != "" {
				up.Type = manifest.Type
			}
			if manifest.MinPlayers != 0 {
				up.MinPlayers = manifest.MinPlayers
			}
			if manifest.MaxPlayers != 0 {
				up.MaxPlayers = manifest.MaxPlayers
			}
			up.ServerCmd = manifest.Execution.ServerCmd
			up.ClientCmd = manifest.Execution.ClientCmd
			up.ArgsFormat = manifest.Execution.ArgsFormat
		}
		r.post(uploadExtracted{id: connID, upload: up, manifestOK: ok, reason: reason})
	}()
}

// verifyAndExtract runs off the reactor goroutine: it checksums the
// uploaded archive, validates its manifest, commits the archive to its
// final per-version path (write-to-temp-then-rename), and extracts it to a
// version-specific directory.
func verifyAndExtract(up *model.UploadState, uploadRoot string) (reason string, manifest *archiveutil.Manifest, ok bool) {
	sum, err := md5File(up.TempPath)
	if err != nil {
		return fmt.Sprintf("checksum failed: %v", err), nil, false
	}
	if up.ExpectedSum != "" && sum != up.ExpectedSum {
		return "checksum mismatch", nil, false
	}
	up.ExpectedSum = sum

	m, err := archiveutil.ReadManifest(up.TempPath)
	if err != nil {
		return fmt.Sprintf("invalid bundle: %v", err), nil, false
	}

	versionDir := filepath.Join(uploadRoot, up.Name, up.Version)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return fmt.Sprintf("creating version dir: %v", err), nil, false
	}
	finalPath := filepath.Join(versionDir, "game_archive.zip")
	if err := os.Rename(up.TempPath, finalPath); err != nil {
		return fmt.Sprintf("committing archive: %v", err), nil, false
	}
	up.TempPath = finalPath

	destDir := filepath.Join(versionDir, "extracted")
	if err := os.RemoveAll(destDir); err != nil {
		return fmt.Sprintf("clearing prior extraction: %v", err), nil, false
	}
	if err := archiveutil.Extract(finalPath, destDir); err != nil {
		return fmt.Sprintf("extraction failed: %v", err), nil, false
	}
	up.ExtractedTo = destDir
	return "", m, true
}

func md5File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

func (r *Reactor) onUploadExtracted(c uploadExtracted) {
	_, connOK := r.conns[c.id]
	if !c.manifestOK {
		if connOK {
			r.sendTo(c.id, protocol.UploadEnd, protocol.StatusMsgPayload{Status: "error", Msg: c.reason})
		}
		// On checksum mismatch §4.3/§7 require the temporary be left on disk;
		// other failures (invalid manifest, directory errors) clean up since
		// nothing committed references the file.
		if c.upload != nil && c.reason != "checksum mismatch" {
			_ = os.Remove(c.upload.TempPath)
		}
		return
	}

	up := c.upload
	game, exists := r.games[up.Name]
	if !exists {
		game = &model.Game{
			ID:       r.nextGameID,
			Name:     up.Name,
			Owner:    up.Owner,
			Versions: make(map[string]model.Version),
			PlayedBy: make(map[string]bool),
		}
		r.nextGameID++
		r.games[up.Name] = game
	}

	game.Description = up.Description
	game.Type = up.Type
	game.MinPlayers = up.MinPlayers
	game.MaxPlayers = up.MaxPlayers
	game.LatestVersion = up.Version
	game.Versions[up.Version] = model.Version{
		Path:        up.TempPath,
		Size:        up.BytesWritten,
		Checksum:    up.ExpectedSum,
		ServerCmd:   up.ServerCmd,
		ClientCmd:   up.ClientCmd,
		ArgsFormat:  up.ArgsFormat,
		ExtractedTo: up.ExtractedTo,
	}

	if err := r.persistCatalogue(); err != nil {
		slog.Error("persisting catalogue", "error", err)
	}

	if connOK {
		r.sendTo(c.id, protocol.UploadEnd, protocol.StatusMsgPayload{Status: "ok"})
	}
}

func (r *Reactor) handleGameRemove(id connID, cs *connState, frame protocol.Frame) {
	if !requireDeveloper(r, id, cs, func(msg string) {
		r.sendTo(id, protocol.GameRemoveResp, protocol.StatusMsgPayload{Status: "error", Msg: msg})
	}) {
		return
	}
	var req protocol.GameRemoveReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.GameRemoveResp, protocol.StatusMsgPayload{Status: "error", Msg: "malformed request"})
		return
	}

	game, ok := r.games[req.Name]
	if !ok {
		r.sendTo(id, protocol.GameRemoveResp, protocol.StatusMsgPayload{Status: "error", Msg: "game not found"})
		return
	}
	if game.Owner != cs.username {
		r.sendTo(id, protocol.GameRemoveResp, protocol.StatusMsgPayload{Status: "error", Msg: "not the owner"})
		return
	}
	for _, room := range r.rooms {
		if room.GameID == game.ID {
			r.sendTo(id, protocol.GameRemoveResp, protocol.StatusMsgPayload{Status: "error", Msg: "game is in use by a room"})
			return
		}
	}

	delete(r.games, req.Name)
	if err := r.persistCatalogue(); err != nil {
		slog.Error("persisting catalogue", "error", err)
	}
	r.sendTo(id, protocol.GameRemoveResp, protocol.StatusMsgPayload{Status: "ok"})
}

func (r *Reactor) handleGameList(id connID, cs *connState) {
	var games []protocol.GameSummary
	for _, g := range r.games {
		games = append(games, protocol.GameSummary{
			ID:            g.ID,
			Name:          g.Name,
			LatestVersion: g.LatestVersion,
			MinPlayers:    g.MinPlayers,
			MaxPlayers:    g.MaxPlayers,
			Owner:         g.Owner,
		})
	}
	r.sendTo(id, protocol.GameListResp, protocol.GameListRespPayload{Status: "ok", Games: games})
}

func (r *Reactor) handleDevMyGames(id connID, cs *connState) {
	if !requireDeveloper(r, id, cs, func(msg string) {
		r.sendTo(id, protocol.DevMyGamesResp, protocol.DevMyGamesRespPayload{Status: "error"})
	}) {
		return
	}
	var games []protocol.GameSummary
	for _, g := range r.games {
		if g.Owner != cs.username {
			continue
		}
		games = append(games, protocol.GameSummary{
			ID:            g.ID,
			Name:          g.Name,
			LatestVersion: g.LatestVersion,
			MinPlayers:    g.MinPlayers,
			MaxPlayers:    g.MaxPlayers,
			Owner:         g.Owner,
		})
	}
	r.sendTo(id, protocol.DevMyGamesResp, protocol.DevMyGamesRespPayload{Status: "ok", Games: games})
}

func (r *Reactor) handleGameRate(id connID, cs *connState, frame protocol.Frame) {
	if !cs.loggedIn || cs.role != model.RolePlayer {
		r.sendTo(id, protocol.GameRateResp, protocol.StatusMsgPayload{Status: "error", Msg: "login as a player first"})
		return
	}
	var req protocol.GameRateReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		return
	}

	game, ok := r.games[req.GameName]
	if !ok {
		r.sendTo(id, protocol.GameRateResp, protocol.StatusMsgPayload{Status: "error", Msg: "game not found"})
		return
	}
	if !game.PlayedBy[cs.username] {
		r.sendTo(id, protocol.GameRateResp, protocol.StatusMsgPayload{Status: "error", Msg: "you must play the game before rating it"})
		return
	}

	score := req.Score
	if score < 1 {
		score = 1
	}
	if score > 5 {
		score = 5
	}

	game.Reviews = append(game.Reviews, model.Review{
		User:    cs.username,
		Score:   score,
		Comment: req.Comment,
		Time:    time.Now(),
	})
	if err := r.persistCatalogue(); err != nil {
		slog.Error("persisting catalogue", "error", err)
	}
	r.sendTo(id, protocol.GameRateResp, protocol.StatusMsgPayload{Status: "ok"})
}

func (r *Reactor) handleGameDetail(id connID, cs *connState, frame protocol.Frame) {
	var req protocol.GameDetailReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.GameDetailResp, protocol.GameDetailRespPayload{Status: "error"})
		return
	}

	game, ok := r.games[req.GameName]
	if !ok {
		r.sendTo(id, protocol.GameDetailResp, protocol.GameDetailRespPayload{Status: "error"})
		return
	}

	recent := game.Reviews
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	reviews := make([]protocol.Review, 0, len(recent))
	for _, rv := range recent {
		reviews = append(reviews, protocol.Review{
			User:    rv.User,
			Score:   rv.Score,
			Comment: rv.Comment,
			Time:    rv.Time.Format(time.RFC3339),
		})
	}

	r.sendTo(id, protocol.GameDetailResp, protocol.GameDetailRespPayload{
		Status:      "ok",
		Name:        game.Name,
		Version:     game.LatestVersion,
		Owner:       game.Owner,
		Description: game.Description,
		Type:        game.Type,
		MinPlayers:  game.MinPlayers,
		MaxPlayers:  game.MaxPlayers,
		AvgScore:    game.AvgScore(),
		Reviews:     reviews,
		HasPlayed:   cs.loggedIn && game.PlayedBy[cs.username],
	})
}
