// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package server

import (
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/pegasus-emu/pegasus/internal/auth"
	"github.com/pegasus-emu/pegasus/internal/wire"
)

// outboundBuffer bounds the per-session write queue. A client that stops
// reading long enough to fill it loses messages rather than stalling the
// handler goroutine.
const outboundBuffer = 32

// GameSession is one client connection's session state. It starts
// unauthenticated and transitions to signed-in at most once; there is no way
// back except closing the connection.
type GameSession struct {
	id         ulid.ULID
	remoteAddr string
	out        chan *wire.Object
	closeOnce  sync.Once

	mu          sync.RWMutex
	signedIn    bool
	account     *auth.Account
	displayName string
	character   *auth.CharacterSnapshot
	dropped     uint64
}

// NewGameSession creates an unauthenticated session for a connection.
func NewGameSession(remoteAddr string) *GameSession {
	return &GameSession{
		id:         ulid.Make(),
		remoteAddr: remoteAddr,
		out:        make(chan *wire.Object, outboundBuffer),
	}
}

// ID returns the connection-scoped session ID.
func (s *GameSession) ID() ulid.ULID {
	return s.id
}

// RemoteAddr returns the client's remote address.
func (s *GameSession) RemoteAddr() string {
	return s.remoteAddr
}

// EnqueueMessage queues a message for delivery. Messages to a full queue are
// dropped and counted; the writer is the only consumer and a wedged client
// must not block the session. Callers must not enqueue after Close.
func (s *GameSession) EnqueueMessage(msg *wire.Object) {
	select {
	case s.out <- msg:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Outbound returns the channel the connection writer drains.
func (s *GameSession) Outbound() <-chan *wire.Object {
	return s.out
}

// DroppedMessages returns how many outbound messages were discarded because
// the queue was full.
func (s *GameSession) DroppedMessages() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// SignIn transitions the session to signed-in. A session signs in at most
// once; repeat attempts fail without mutating state.
func (s *GameSession) SignIn(account *auth.Account, displayName string, character *auth.CharacterSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signedIn {
		return oops.Code("SESSION_ALREADY_SIGNED_IN").
			With("session_id", s.id.String()).
			Errorf("session is already signed in")
	}

	s.signedIn = true
	s.account = account
	s.displayName = displayName
	s.character = character
	return nil
}

// SignedIn reports whether the session has authenticated.
func (s *GameSession) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signedIn
}

// Account returns the signed-in account, or nil before sign-in.
func (s *GameSession) Account() *auth.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Character returns the bound character snapshot, or nil before sign-in.
func (s *GameSession) Character() *auth.CharacterSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.character
}

// DisplayName returns the display name presented at sign-in.
func (s *GameSession) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName
}

// Close shuts the outbound queue. Safe to call more than once.
func (s *GameSession) Close() {
	s.closeOnce.Do(func() {
		close(s.out)
	})
}

// Compile-time interface check.
var _ auth.Session = (*GameSession)(nil)
