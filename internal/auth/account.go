// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Account is a persisted player account. Usernames are unique with exact,
// case-sensitive matching.
type Account struct {
	ID               ulid.ULID
	Username         string
	PasswordHash     string
	Privileges       Privilege
	LastKnownAddress string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewAccount creates a validated Account with a fresh ID. The password hash
// must already be computed; this package never stores plaintext.
func NewAccount(username, passwordHash, remoteAddr string, privileges Privilege) (*Account, error) {
	if username == "" {
		return nil, oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &Account{
		ID:               ulid.Make(),
		Username:         username,
		PasswordHash:     passwordHash,
		Privileges:       privileges,
		LastKnownAddress: remoteAddr,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// AccountStore manages account persistence. Create must be atomic on the
// username: two concurrent creates for the same never-seen username must
// yield exactly one row, with the loser receiving ErrUsernameTaken. The
// store's unique constraint is the single serialization point for
// provisioning.
type AccountStore interface {
	// GetByUsername retrieves an account by exact username match.
	// Returns ErrNotFound if no account holds the username.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// Create stores a new account. Returns ErrUsernameTaken if the
	// username is already held.
	Create(ctx context.Context, account *Account) error

	// UpdateAddress records the last known remote address for an account.
	UpdateAddress(ctx context.Context, id ulid.ULID, remoteAddr string) error
}
