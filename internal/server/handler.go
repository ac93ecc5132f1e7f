// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/pegasus-emu/pegasus/internal/observability"
	"github.com/pegasus-emu/pegasus/internal/wire"
	"github.com/pegasus-emu/pegasus/pkg/errutil"
)

// MessageHandler processes one inbound message for a session. Returning an
// error drops the connection.
type MessageHandler interface {
	Handle(ctx context.Context, session *GameSession, msg *wire.Object) error
}

// MessageHandlerFunc adapts a function to the MessageHandler interface.
type MessageHandlerFunc func(ctx context.Context, session *GameSession, msg *wire.Object) error

// Handle calls f.
func (f MessageHandlerFunc) Handle(ctx context.Context, session *GameSession, msg *wire.Object) error {
	return f(ctx, session, msg)
}

// ConnectionHandler owns one client connection: a read loop decoding inbound
// messages and a writer draining the session's outbound queue.
type ConnectionHandler struct {
	conn     net.Conn
	session  *GameSession
	handlers map[wire.Opcode]MessageHandler
	sessions *SessionManager
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewConnectionHandler creates a handler for an accepted connection.
func NewConnectionHandler(conn net.Conn, handlers map[wire.Opcode]MessageHandler, sessions *SessionManager, metrics *observability.Metrics, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		conn:     conn,
		session:  NewGameSession(conn.RemoteAddr().String()),
		handlers: handlers,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle processes the connection until it closes or the context is
// cancelled.
func (h *ConnectionHandler) Handle(ctx context.Context) {
	h.sessions.Add(h.session)
	h.metrics.ConnectionsTotal.Inc()
	h.metrics.ActiveSessions.Inc()

	defer func() {
		h.sessions.Remove(h.session.ID())
		h.metrics.ActiveSessions.Dec()
		if err := h.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			h.logger.Debug("error closing connection", "error", err)
		}
	}()

	writerDone := make(chan struct{})
	go h.writeLoop(writerDone)
	// Closing the session ends the writer; wait for it so queued responses
	// are flushed before the connection closes.
	defer func() {
		h.session.Close()
		<-writerDone
	}()

	msgCh := make(chan *wire.Object)
	errCh := make(chan error, 1)

	// readerStop releases the decode goroutine when Handle returns with a
	// pipelined message still undelivered; the server context may outlive
	// this connection by hours.
	readerStop := make(chan struct{})
	defer close(readerStop)

	go func() {
		decoder := wire.NewDecoder(h.conn)
		for {
			msg, err := decoder.Decode()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case msgCh <- msg:
			case <-readerStop:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-errCh:
			if !errors.Is(err, io.EOF) {
				h.logger.Debug("connection read error",
					"session_id", h.session.ID().String(),
					"error", err.Error(),
				)
			}
			return

		case msg := <-msgCh:
			if !h.dispatch(ctx, msg) {
				return
			}
		}
	}
}

// dispatch routes one message. Returns false when the connection must drop.
func (h *ConnectionHandler) dispatch(ctx context.Context, msg *wire.Object) bool {
	op, err := msg.Opcode()
	if err != nil {
		h.logger.Debug("message without opcode",
			"session_id", h.session.ID().String(),
		)
		return false
	}

	handler, known := h.handlers[op]
	if !known {
		// Unknown opcodes from an unauthenticated client are hostile or
		// broken; after sign-in they are merely unimplemented.
		if !h.session.SignedIn() {
			h.logger.Debug("unknown opcode before sign-in",
				"session_id", h.session.ID().String(),
				"opcode", int64(op),
			)
			return false
		}
		h.logger.Debug("unhandled opcode",
			"session_id", h.session.ID().String(),
			"opcode", int64(op),
		)
		return true
	}

	handlerErr := handler.Handle(ctx, h.session, msg)

	if op == wire.OpcodeAuthenticate {
		h.recordLogin(handlerErr)
	}

	if handlerErr != nil {
		errutil.LogError(h.logger, "message handler failed", handlerErr)
		return false
	}
	return true
}

func (h *ConnectionHandler) recordLogin(err error) {
	switch {
	case err != nil:
		h.metrics.LoginsTotal.WithLabelValues("dropped").Inc()
	case h.session.SignedIn():
		h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	default:
		h.metrics.LoginsTotal.WithLabelValues("rejected").Inc()
	}
}

// writeLoop drains the outbound queue onto the wire. Encode failures end the
// loop; the read side notices the closed connection and tears down.
func (h *ConnectionHandler) writeLoop(done chan<- struct{}) {
	defer close(done)

	encoder := wire.NewEncoder(h.conn)
	for msg := range h.session.Outbound() {
		if err := encoder.Encode(msg); err != nil {
			h.logger.Debug("connection write error",
				"session_id", h.session.ID().String(),
				"error", err.Error(),
			)
			_ = h.conn.Close()
			return
		}
	}
}
