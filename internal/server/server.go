// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

// Package server provides the TCP game server and its session plumbing.
package server

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/samber/oops"

	"github.com/pegasus-emu/pegasus/internal/observability"
	"github.com/pegasus-emu/pegasus/internal/wire"
)

// Server accepts game client connections and hands each one to a
// ConnectionHandler.
type Server struct {
	addr     string
	handlers map[wire.Opcode]MessageHandler
	sessions *SessionManager
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu       sync.RWMutex
	listener net.Listener
}

// NewServer creates a server listening on addr once Run is called.
func NewServer(addr string, sessions *SessionManager, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if sessions == nil {
		return nil, oops.Errorf("session manager is required")
	}
	if metrics == nil {
		return nil, oops.Errorf("metrics are required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr:     addr,
		handlers: make(map[wire.Opcode]MessageHandler),
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Register binds a handler to an opcode. Must be called before Run.
func (s *Server) Register(op wire.Opcode, handler MessageHandler) {
	s.handlers[op] = handler
}

// Sessions returns the server's session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Addr returns the bound listen address, or "" before Run.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run starts accepting connections and blocks until the context is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return oops.Code("SERVER_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("game server started", "addr", listener.Addr().String())

	go func() {
		<-ctx.Done()
		if closeErr := listener.Close(); closeErr != nil {
			s.logger.Debug("error closing listener", "error", closeErr.Error())
		}
	}()

	var wg sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				wg.Wait()
				s.logger.Info("game server stopped")
				return nil
			default:
				s.logger.Error("accept failed", "error", err.Error())
				continue
			}
		}

		handler := NewConnectionHandler(conn, s.handlers, s.sessions, s.metrics, s.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			handler.Handle(ctx)
		}()
	}
}
