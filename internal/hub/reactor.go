package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/arcadehub/gamehub/internal/config"
	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/store"
)

// connState is everything the reactor tracks about one live connection.
type connState struct {
	out      chan<- outboundMsg
	remote   string
	username string
	role     model.Role
	loggedIn bool
}

// Reactor is the single actor goroutine that owns every mutable piece of
// hub state. All reads and writes to the fields below happen only from
// within Run's select loop, so none of them need locks.
type Reactor struct {
	cfg *config.Hub

	startedAt time.Time

	inbox chan command

	conns map[connID]*connState

	// sessionOf maps a (role, username) binding to the one connection
	// currently holding it, enforcing the single-session-per-account rule.
	sessionOf map[sessionKey]connID

	// users is keyed by (role, username): the same username may exist as
	// both a player and a developer account.
	users map[sessionKey]*model.User

	games      map[string]*model.Game
	nextGameID int64

	rooms      map[int64]*model.Room
	nextRoomID int64

	readyChecks map[int64]*readyCheckState

	uploads   map[connID]*model.UploadState
	downloads map[connID]*model.DownloadState

	// children maps a room id to the running game-server child that room
	// launched, so two rooms playing the same game never collide.
	children map[int64]*childHandle

	// plugins is loaded once at startup from cfg.PluginsDir and never
	// rescanned; the directory is read-only at runtime.
	plugins map[string]pluginEntry
}

type sessionKey struct {
	role     model.Role
	username string
}

type readyCheckState struct {
	check *model.ReadyCheck
	gen   int64
}

type childHandle struct {
	gameID  int64
	roomID  int64
	port    int
	cancel  func()
}

// NewReactor constructs a Reactor and loads any persisted catalogue/users
// snapshots from disk.
func NewReactor(cfg *config.Hub) (*Reactor, error) {
	catalogue, err := store.LoadCatalogue(cfg.StatePath)
	if err != nil {
		return nil, err
	}
	usersSnap, err := store.LoadUsers(cfg.UsersPath)
	if err != nil {
		return nil, err
	}
	plugins, err := loadPlugins(cfg.PluginsDir)
	if err != nil {
		return nil, err
	}

	r := &Reactor{
		cfg:         cfg,
		startedAt:   time.Now(),
		inbox:       make(chan command, 256),
		conns:       make(map[connID]*connState),
		sessionOf:   make(map[sessionKey]connID),
		users:       make(map[sessionKey]*model.User),
		games:       make(map[string]*model.Game),
		nextGameID:  catalogue.NextGameID,
		rooms:       make(map[int64]*model.Room),
		nextRoomID:  1,
		readyChecks: make(map[int64]*readyCheckState),
		uploads:     make(map[connID]*model.UploadState),
		downloads:   make(map[connID]*model.DownloadState),
		children:    make(map[int64]*childHandle),
		plugins:     plugins,
	}

	for _, g := range catalogue.Games {
		g := g
		r.games[g.Name] = &g
	}
	for _, u := range usersSnap.Users {
		u := u
		r.users[sessionKey{role: u.Role, username: u.Username}] = &u
	}

	return r, nil
}

// post enqueues a command from any goroutine; it never blocks the reactor
// loop itself since the channel is only ever read there.
func (r *Reactor) post(c command) {
	r.inbox <- c
}

// Run drives the reactor's single-threaded event loop until ctx is done.
func (r *Reactor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case c := <-r.inbox:
			c.apply(r)
		}
	}
}

func (r *Reactor) shutdown() {
	for _, ch := range r.children {
		if ch.cancel != nil {
			ch.cancel()
		}
	}
	if err := r.persistCatalogue(); err != nil {
		slog.Error("persisting catalogue on shutdown", "error", err)
	}
}

func (r *Reactor) persistCatalogue() error {
	snap := &store.CatalogueSnapshot{NextGameID: r.nextGameID}
	for _, g := range r.games {
		snap.Games = append(snap.Games, *g)
	}
	return store.SaveCatalogue(r.cfg.StatePath, snap)
}

func (r *Reactor) persistUsers() error {
	snap := &store.UsersSnapshot{}
	for _, u := range r.users {
		snap.Users = append(snap.Users, *u)
	}
	return store.SaveUsers(r.cfg.UsersPath, snap)
}

func (r *Reactor) onConnOpened(c connOpened) {
	r.conns[c.id] = &connState{out: c.out, remote: c.remote}
	slog.Info("connection opened", "conn", c.id, "remote", c.remote)
}

func (r *Reactor) onConnClosed(c connClosed) {
	cs, ok := r.conns[c.id]
	if !ok {
		return
	}
	if cs.loggedIn {
		delete(r.sessionOf, sessionKey{role: cs.role, username: cs.username})
		r.leaveAllRooms(c.id, cs.username)
	}
	delete(r.uploads, c.id)
	delete(r.downloads, c.id)
	delete(r.conns, c.id)
	slog.Info("connection closed", "conn", c.id, "remote", cs.remote)
}

func (r *Reactor) onChildExited(c childExited) {
	if ch, ok := r.children[c.roomID]; ok && ch.gameID == c.gameID {
		delete(r.children, c.roomID)
	}
	if room, ok := r.rooms[c.roomID]; ok {
		room.Status = model.RoomWaiting
		r.broadcastRoomStatus(room)
		if c.err != nil {
			r.broadcastToRoom(room, failPayload(c.err.Error()))
		}
	}
}
