// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

// Package postgres implements auth.AccountStore using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/pegasus-emu/pegasus/internal/auth"
)

// poolIface is the slice of pgxpool.Pool the repository needs. Narrow so unit
// tests can substitute pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements auth.AccountStore using PostgreSQL.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByUsername retrieves an account by exact, case-sensitive username match.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, privileges, last_known_address,
		       created_at, updated_at
		FROM accounts
		WHERE username = $1
	`, username)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by username").
			With("username", username).
			Wrap(err)
	}
	return account, nil
}

// Create stores a new account. A unique-constraint violation on the username
// surfaces as auth.ErrUsernameTaken so the provisioner can fall back to the
// winning row.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, username, password_hash, privileges, last_known_address,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		account.ID.String(),
		account.Username,
		account.PasswordHash,
		int64(account.Privileges),
		account.LastKnownAddress,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_USERNAME_TAKEN").
				With("username", account.Username).
				Wrap(auth.ErrUsernameTaken)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("username", account.Username).
			Wrap(err)
	}
	return nil
}

// UpdateAddress records the last known remote address for an account.
func (r *AccountRepository) UpdateAddress(ctx context.Context, id ulid.ULID, remoteAddr string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET last_known_address = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), remoteAddr, time.Now().UTC())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_ADDRESS_FAILED").
			With("operation", "update last known address").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		account    auth.Account
		idStr      string
		privileges int64
	)
	err := row.Scan(
		&idStr,
		&account.Username,
		&account.PasswordHash,
		&privileges,
		&account.LastKnownAddress,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_CORRUPT_ID").
			With("id", idStr).
			Wrap(err)
	}
	account.Privileges = auth.Privilege(privileges)
	return &account, nil
}

// Compile-time interface check.
var _ auth.AccountStore = (*AccountRepository)(nil)
