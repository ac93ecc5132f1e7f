// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import (
	"github.com/samber/oops"

	"github.com/pegasus-emu/pegasus/internal/wire"
)

// Session is the connection-side contract the handshake needs. A session
// starts unauthenticated; the handshake may move it to signed-in exactly
// once, and never back.
type Session interface {
	// EnqueueMessage queues a message for delivery to the client.
	EnqueueMessage(msg *wire.Object)

	// SignIn transitions the session to signed-in, associating it with the
	// account, display name, and character. Fails if already signed in.
	SignIn(account *Account, displayName string, character *CharacterSnapshot) error

	// RemoteAddr returns the client's remote address.
	RemoteAddr() string
}

// Binder performs the final transition of a successful handshake: it assigns
// the next sequence number to the character snapshot, then signs the session
// in. The orchestrator calls it exactly once per successful handshake.
type Binder struct {
	seq SequenceSource
}

// NewBinder creates a Binder drawing from the given sequence source.
func NewBinder(seq SequenceSource) (*Binder, error) {
	if seq == nil {
		return nil, oops.Errorf("sequence source is required")
	}
	return &Binder{seq: seq}, nil
}

// Bind assigns a sequence number and signs the session in.
func (b *Binder) Bind(session Session, account *Account, displayName string, character *CharacterSnapshot) error {
	character.Sequence = b.seq.Next()
	if err := session.SignIn(account, displayName, character); err != nil {
		return oops.Code("AUTH_BIND_FAILED").
			With("username", account.Username).
			Wrap(err)
	}
	return nil
}
