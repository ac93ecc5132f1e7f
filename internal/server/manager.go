// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package server

import (
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
)

// SessionManager tracks live sessions by connection ID.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[ulid.ULID]*GameSession
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[ulid.ULID]*GameSession),
	}
}

// Add registers a session.
func (sm *SessionManager) Add(session *GameSession) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[session.ID()] = session
}

// Remove unregisters a session. Removing an unknown session is a no-op.
func (sm *SessionManager) Remove(id ulid.ULID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; !exists {
		slog.Debug("remove called for non-existent session", "session_id", id.String())
		return
	}
	delete(sm.sessions, id)
}

// Get returns the session with the given ID, or nil.
func (sm *SessionManager) Get(id ulid.ULID) *GameSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ListSignedIn returns the sessions that have authenticated.
func (sm *SessionManager) ListSignedIn() []*GameSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	signedIn := make([]*GameSession, 0, len(sm.sessions))
	for _, session := range sm.sessions {
		if session.SignedIn() {
			signedIn = append(signedIn, session)
		}
	}
	return signedIn
}
