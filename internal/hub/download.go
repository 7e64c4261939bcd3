package hub

import (
	"io"
	"log/slog"
	"os"

	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/protocol"
)

func (r *Reactor) handleDownloadReq(id connID, cs *connState, frame protocol.Frame) {
	if !cs.loggedIn {
		return
	}
	var req protocol.DownloadReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.DownloadInit, protocol.DownloadInitPayload{Status: "error"})
		return
	}

	game, ok := r.games[req.GameName]
	if !ok {
		r.sendTo(id, protocol.DownloadInit, protocol.DownloadInitPayload{Status: "error"})
		return
	}
	version, ok := game.Versions[game.LatestVersion]
	if !ok {
		r.sendTo(id, protocol.DownloadInit, protocol.DownloadInitPayload{Status: "error"})
		return
	}

	r.sendTo(id, protocol.DownloadInit, protocol.DownloadInitPayload{
		Status:   "ok",
		Size:     version.Size,
		Checksum: version.Checksum,
		Version:  game.LatestVersion,
		GameName: game.Name,
	})

	r.downloads[id] = &model.DownloadState{
		GameName:  game.Name,
		Path:      version.Path,
		Size:      version.Size,
		ChunkSize: r.cfg.DownloadChunkSize,
	}

	out := cs.out
	go streamDownload(out, version.Path, r.cfg.DownloadChunkSize, id, r)
}

// downloadFinished drops a connection's download bookkeeping once the
// transfer completes or fails; it's posted back to the reactor so the map
// mutation stays on the reactor goroutine.
type downloadFinished struct {
	id connID
}

func (c downloadFinished) apply(r *Reactor) {
	delete(r.downloads, c.id)
}

// streamDownload runs off the reactor goroutine, pushing the archive's
// bytes directly onto the connection's outbound queue so a large transfer
// never blocks other clients' requests. It always posts downloadFinished
// back to the reactor so per-connection download bookkeeping is cleared.
func streamDownload(out chan<- outboundMsg, path string, chunkSize int, id connID, r *Reactor) {
	defer r.post(downloadFinished{id: id})

	f, err := os.Open(path)
	if err != nil {
		slog.Error("opening game archive for download", "conn", id, "error", err)
		out <- outboundMsg{typ: protocol.DownloadEnd, payload: protocol.StatusMsgPayload{Status: "error", Msg: "archive unavailable"}}
		return
	}
	defer func() { _ = f.Close() }()

	if chunkSize <= 0 {
		chunkSize = 64 << 10
	}
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			out <- outboundMsg{typ: protocol.DownloadData, payload: chunk}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("reading game archive for download", "conn", id, "error", err)
			out <- outboundMsg{typ: protocol.DownloadEnd, payload: protocol.StatusMsgPayload{Status: "error", Msg: "read failed"}}
			return
		}
	}
	out <- outboundMsg{typ: protocol.DownloadEnd, payload: protocol.StatusMsgPayload{Status: "ok"}}
}
