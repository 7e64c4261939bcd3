// Package hub implements the single-reactor distribution and matchmaking
// server: one goroutine owns every piece of mutable state (sessions,
// catalogue, rooms, ready checks, child processes); connections and
// background workers communicate with it only by posting commands onto a
// channel.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/arcadehub/gamehub/internal/config"
)

// Server accepts game-protocol connections and feeds them to a Reactor.
type Server struct {
	cfg     *config.Hub
	reactor *Reactor

	mu       sync.Mutex
	listener net.Listener
}

// NewServer wires a Server and its Reactor from configuration, loading any
// persisted catalogue/users snapshots.
func NewServer(cfg *config.Hub) (*Server, error) {
	reactor, err := NewReactor(cfg)
	if err != nil {
		return nil, fmt.Errorf("constructing reactor: %w", err)
	}
	return &Server{cfg: cfg, reactor: reactor}, nil
}

// Reactor returns the server's reactor, for wiring a read-only admin
// surface against the same live state.
func (s *Server) Reactor() *Reactor {
	return s.reactor
}

// Addr returns the listener's bound address, or nil before Run/Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close closes the listener, which unblocks the accept loop.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve runs the reactor and accept loop against an already-bound listener,
// useful for tests that want an ephemeral loopback port.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.reactor.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("hub listening", "address", ln.Addr())
		acceptLoop(ctx, &wg, s, ln)
	}()

	wg.Wait()
	return nil
}

func acceptLoop(ctx context.Context, wg *sync.WaitGroup, s *Server, ln net.Listener) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("accept failed", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			newConnection(ctx, s.reactor, conn, s.cfg).run()
		}()
	}
}
